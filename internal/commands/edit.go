package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
	"smartodo/internal/task"
	"smartodo/internal/view"
)

func init() {
	Register(&EditCmd{})
}

// stringFlag is a string flag that records whether it was set, so edit can
// tell "not provided" apart from "provided empty" (which clears the field).
type stringFlag struct {
	value string
	set   bool
}

func (f *stringFlag) String() string { return f.value }

func (f *stringFlag) Set(s string) error {
	f.value = s
	f.set = true
	return nil
}

// EditCmd updates individual fields of a task, addressed by its number in
// the current listing. Only the provided flags are written; an empty value
// clears the field.
type EditCmd struct {
	ViewFlags
	title    stringFlag
	notes    stringFlag
	category stringFlag
	priority stringFlag
	due      stringFlag
}

// SetTitle sets the title update (for testing).
func (c *EditCmd) SetTitle(s string) { c.title.Set(s) }

// SetNotes sets the notes update (for testing).
func (c *EditCmd) SetNotes(s string) { c.notes.Set(s) }

// SetEditCategory sets the category update (for testing).
func (c *EditCmd) SetEditCategory(s string) { c.category.Set(s) }

// SetEditPriority sets the priority update (for testing).
func (c *EditCmd) SetEditPriority(s string) { c.priority.Set(s) }

// SetEditDue sets the due date update (for testing).
func (c *EditCmd) SetEditDue(s string) { c.due.Set(s) }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Update fields of a task" }
func (c *EditCmd) Usage() string {
	return "smartodo edit [view flags] <n> [--title <text>] [--notes <text>] [--category <name>] [--priority High|Medium|Low] [--due YYYY-MM-DD]"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ViewFlags.register(fs)
	fs.Var(&c.title, "title", "")
	fs.Var(&c.notes, "notes", "")
	fs.Var(&c.category, "set-category", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	num, code := parseTaskNum(args, errOut)
	if code != exitcode.Success {
		return code
	}

	cc := openCache(cfg)
	if code := mustSync(ctx, cfg, st, cc, errOut); code != exitcode.Success {
		return code
	}

	updates, code := c.buildUpdates(cc.Categories(), errOut)
	if code != exitcode.Success {
		return code
	}
	if len(updates) == 0 {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
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

	if err := st.UpdateTask(ctx, cfg.UserID, t.ID, updates); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// buildUpdates turns the set flags into a field-update map.
func (c *EditCmd) buildUpdates(cats []task.Category, errOut io.Writer) (map[string]any, int) {
	updates := make(map[string]any)

	if c.title.set {
		if strings.TrimSpace(c.title.value) == "" {
			fmt.Fprintln(errOut, "error: title required")
			return nil, exitcode.UserError
		}
		updates["title"] = c.title.value
	}
	if c.notes.set {
		updates["notes"] = c.notes.value
	}
	if c.category.set {
		if c.category.value == "" {
			updates["category"] = ""
		} else {
			id, err := resolveCategory(cats, c.category.value)
			if err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return nil, exitcode.UserError
			}
			updates["category"] = id
		}
	}
	if c.priority.set {
		p, err := parsePriority(c.priority.value)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, exitcode.UserError
		}
		updates["priority"] = string(p)
	}
	if c.due.set {
		if c.due.value == "" {
			updates["due"] = nil
		} else {
			due, err := parseDue(c.due.value)
			if err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return nil, exitcode.UserError
			}
			updates["due"] = *due
		}
	}

	return updates, exitcode.Success
}
