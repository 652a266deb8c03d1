package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
	"smartodo/internal/view"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd marks a task completed. The task is addressed by its number in
// the incompleted listing.
type DoneCmd struct {
	ViewFlags
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "smartodo done [view flags] <n>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ViewFlags.register(fs)
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, st, &c.ViewFlags, view.TabIncompleted, true, args, out, errOut)
}

// UndoneCmd moves a task back to the incompleted tab. The task is addressed
// by its number in the completed listing.
type UndoneCmd struct {
	ViewFlags
}

func (c *UndoneCmd) Name() string      { return "undone" }
func (c *UndoneCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string  { return "Mark a task incompleted" }
func (c *UndoneCmd) Usage() string     { return "smartodo undone [view flags] <n>" }
func (c *UndoneCmd) NeedsAuth() bool   { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ViewFlags.register(fs)
}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, st, &c.ViewFlags, view.TabCompleted, false, args, out, errOut)
}

// runSetCompleted is the shared implementation for done and undone.
func runSetCompleted(ctx context.Context, cfg *config.Config, st store.Store, v *ViewFlags, defaultTab view.Tab, completed bool, args []string, out, errOut io.Writer) int {
	num, code := parseTaskNum(args, errOut)
	if code != exitcode.Success {
		return code
	}

	cc := openCache(cfg)
	if code := mustSync(ctx, cfg, st, cc, errOut); code != exitcode.Success {
		return code
	}

	state, err := v.state(cfg, cc.Categories(), defaultTab)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	t, err := resolveVisible(cc, state, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := st.UpdateTask(ctx, cfg.UserID, t.ID, map[string]any{"completed": completed}); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// parseTaskNum parses the single positional listing-number argument.
func parseTaskNum(args []string, errOut io.Writer) (int, int) {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task number required")
		return 0, exitcode.UserError
	}
	num, err := strconv.Atoi(args[0])
	if err != nil || num < 1 {
		fmt.Fprintf(errOut, "error: invalid task number: %s\n", args[0])
		return 0, exitcode.UserError
	}
	return num, exitcode.Success
}
