package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
	"smartodo/internal/view"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `smartodo` (no args) and `smartodo list` with view flags.
type ListCmd struct {
	ViewFlags
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "smartodo list [--query <text>] [--category <name>] [--sort manual|due|priority] [--tab incompleted|completed] [--page <n>]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ViewFlags.register(fs)
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	cc := openCache(cfg)
	if err := syncOnce(ctx, cfg, st, cc); err != nil {
		if errors.Is(err, store.ErrAuth) {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return exitcode.AuthError
		}
		// The remote being down does not blank the list; serve the last
		// durable snapshot and say so.
		if !cfg.Quiet {
			fmt.Fprintln(errOut, "warning: remote unavailable, showing last known tasks")
		}
	}

	state, err := c.state(cfg, cc.Categories(), view.TabIncompleted)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	printView(out, cfg, cc, state)
	return exitcode.Success
}
