package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
	"smartodo/internal/task"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	notes    string
	category string
	priority string
	due      string
}

// SetNotes sets the notes field (for testing).
func (c *AddCmd) SetNotes(s string) { c.notes = s }

// SetCategory sets the category name (for testing).
func (c *AddCmd) SetCategory(s string) { c.category = s }

// SetPriority sets the priority name (for testing).
func (c *AddCmd) SetPriority(s string) { c.priority = s }

// SetDue sets the due date string (for testing).
func (c *AddCmd) SetDue(s string) { c.due = s }

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "smartodo add [--notes <text>] [--category <name>] [--priority High|Medium|Low] [--due YYYY-MM-DD] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.notes, "notes", "", "")
	fs.StringVar(&c.notes, "n", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	t := task.Task{
		Title: title,
		Notes: c.notes,
	}

	priority, err := parsePriority(c.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	t.Priority = priority

	due, err := parseDue(c.due)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	t.Due = due

	// Category names only resolve against a fresh category list.
	if c.category != "" {
		cc := openCache(cfg)
		if code := mustSync(ctx, cfg, st, cc, errOut); code != exitcode.Success {
			return code
		}
		id, err := resolveCategory(cc.Categories(), c.category)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		t.Category = id
	}

	if err := st.AddTask(ctx, cfg.UserID, t); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// parsePriority parses a priority flag value. Empty means no priority.
func parsePriority(s string) (task.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "high":
		return task.PriorityHigh, nil
	case "medium":
		return task.PriorityMedium, nil
	case "low":
		return task.PriorityLow, nil
	}
	return "", fmt.Errorf("invalid priority: %s", s)
}

// parseDue parses a YYYY-MM-DD due date into epoch milliseconds. Empty means
// no due date.
func parseDue(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date (want YYYY-MM-DD): %s", s)
	}
	m := task.Millis(d)
	return &m, nil
}
