package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sync"
	"time"

	"smartodo/internal/cache"
	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/output"
	"smartodo/internal/store"
	tasksync "smartodo/internal/sync"
	"smartodo/internal/task"
	"smartodo/internal/view"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd keeps the sync session open and reprints the derived view after
// every remote snapshot, until interrupted.
type WatchCmd struct {
	ViewFlags
}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Follow remote changes live" }
func (c *WatchCmd) Usage() string     { return "smartodo watch [view flags]" }
func (c *WatchCmd) NeedsAuth() bool   { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ViewFlags.register(fs)
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	cc := openCache(cfg)

	// The durable snapshot holds tasks only, so the category filter can
	// resolve only after the first remote category snapshot. Redraws stay
	// silent until the view state is settled.
	var (
		mu    sync.Mutex
		state view.State
		ready bool
	)
	redraw := func() {
		mu.Lock()
		defer mu.Unlock()
		if !ready {
			return
		}
		printView(out, cfg, cc, state)
	}

	tasksCh := make(chan struct{}, 1)
	catsCh := make(chan struct{}, 1)

	sess := tasksync.NewSession(st, cc, cfg.Logger())
	sess.OnTasks = func([]task.Task) {
		select {
		case tasksCh <- struct{}{}:
		default:
		}
		redraw()
	}
	sess.OnCategories = func([]task.Category) {
		select {
		case catsCh <- struct{}{}:
		default:
		}
		redraw()
	}

	if err := sess.Start(ctx); err != nil {
		if errors.Is(err, store.ErrAuth) {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	defer sess.Stop()

	timer := time.NewTimer(syncTimeout)
	defer timer.Stop()

	for _, ch := range []chan struct{}{tasksCh, catsCh} {
		select {
		case <-ch:
			continue
		default:
		}
		select {
		case <-ch:
		case <-timer.C:
			fmt.Fprintln(errOut, "error: backend error: remote snapshot timed out")
			return exitcode.BackendError
		case <-ctx.Done():
			return exitcode.Success
		}
	}

	s, err := c.state(cfg, cc.Categories(), view.TabIncompleted)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	mu.Lock()
	state = s
	ready = true
	mu.Unlock()
	redraw()

	<-ctx.Done()
	return exitcode.Success
}

// printView renders one full derived view, clamping the page to wherever
// the latest snapshot left the tab.
func printView(out io.Writer, cfg *config.Config, cc *cache.Cache, state view.State) {
	res := view.Derive(cc.Tasks(), state)
	if page := view.ClampPage(state.Page(), res.TotalPages); page != state.Page() {
		state.SetPage(page)
		res = view.Derive(cc.Tasks(), state)
	}

	output.FormatTabHeader(out, state.Tab, res.Counts)

	names := categoryNames(cc.Categories())
	start := (state.Page() - 1) * state.PageSize
	for i, t := range res.Items {
		output.FormatTask(out, start+i+1, t, names[t.Category])
	}
	if len(res.Items) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks")
	}
	output.FormatPageFooter(out, state.Page(), res.TotalPages)
}
