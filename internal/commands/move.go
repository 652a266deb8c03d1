package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"smartodo/internal/cache"
	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/reorder"
	"smartodo/internal/store"
	"smartodo/internal/view"
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd reorders the canonical sequence. Both positions are listing
// numbers in the current view; tasks hidden by filters keep their canonical
// slots. With push enabled (flag or pushReorders setting) the new order is
// also written to the remote store.
type MoveCmd struct {
	ViewFlags
	push bool
}

// SetPush enables the remote push (for testing).
func (c *MoveCmd) SetPush(push bool) { c.push = push }

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Reorder tasks" }
func (c *MoveCmd) Usage() string     { return "smartodo move [view flags] [--push] <from> <to>" }
func (c *MoveCmd) NeedsAuth() bool   { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ViewFlags.register(fs)
	fs.BoolVar(&c.push, "push", false, "")
}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: from and to task numbers required")
		return exitcode.UserError
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || from < 1 || to < 1 {
		fmt.Fprintf(errOut, "error: invalid task numbers: %s %s\n", args[0], args[1])
		return exitcode.UserError
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

	visible := view.Visible(cc.Tasks(), state)

	push := c.push || cfg.PushReorders
	engine := reorder.New(cc, st, push, cfg.Logger())

	_, _, err = engine.Reorder(ctx, from-1, to-1, visible)
	if err != nil {
		if errors.Is(err, reorder.ErrVisibleIndexOutOfRange) || errors.Is(err, reorder.ErrNotInSequence) ||
			errors.Is(err, cache.ErrIndexOutOfRange) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		// The local move already happened; only the remote push failed.
		fmt.Fprintf(errOut, "warning: reorder kept locally, remote push failed: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
