package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
	"smartodo/internal/view"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd deletes a task, addressed by its number in the current listing.
type RmCmd struct {
	ViewFlags
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "smartodo rm [view flags] <n>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ViewFlags.register(fs)
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	num, code := parseTaskNum(args, errOut)
	if code != exitcode.Success {
		return code
	}

	cc := openCache(cfg)
	if code := mustSync(ctx, cfg, st, cc, errOut); code != exitcode.Success {
		return code
	}

	state, err := c.state(cfg, cc.Categories(), view.TabIncompleted)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	t, err := resolveVisible(cc, state, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := st.DeleteTask(ctx, cfg.UserID, t.ID); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
