// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"smartodo/internal/task"
	"smartodo/internal/view"
)

// Separator is the separator line above and below section headers.
const Separator = "------------"

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}  ({META})" where META is the category name,
// priority and due date, comma separated, for whichever of those the task has.
func FormatTask(w io.Writer, num int, t task.Task, categoryName string) {
	box := " "
	if t.Completed {
		box = "x"
	}

	line := fmt.Sprintf("%4d  [%s] %s", num, box, normalizeTitle(t.Title))

	var meta []string
	if categoryName != "" {
		meta = append(meta, categoryName)
	}
	if t.Priority != "" {
		meta = append(meta, string(t.Priority))
	}
	if t.Due != nil {
		meta = append(meta, "due "+task.FromMillis(*t.Due).Format("2006-01-02"))
	}
	if len(meta) > 0 {
		line += "  (" + strings.Join(meta, ", ") + ")"
	}

	fmt.Fprintln(w, line)
}

// FormatTabHeader formats the tab bar with both partition counts. The
// selected tab is marked with an asterisk.
func FormatTabHeader(w io.Writer, tab view.Tab, counts view.TabCounts) {
	inc := fmt.Sprintf("incompleted (%d)", counts.Incompleted)
	comp := fmt.Sprintf("completed (%d)", counts.Completed)
	if tab == view.TabCompleted {
		comp = "*" + comp
	} else {
		inc = "*" + inc
	}
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "%s   %s\n", inc, comp)
	fmt.Fprintln(w, Separator)
}

// FormatPageFooter prints the pagination line. With zero or one pages there
// is nothing to paginate and nothing is printed.
func FormatPageFooter(w io.Writer, page, totalPages int) {
	if totalPages <= 1 {
		return
	}
	fmt.Fprintf(w, "page %d/%d\n", page, totalPages)
}

// FormatCategory formats a category line for the categories command.
func FormatCategory(w io.Writer, c task.Category) {
	name := c.Name
	if strings.TrimSpace(name) == "" {
		name = "(untitled)"
	}
	fmt.Fprintf(w, "%s  [%s]\n", name, c.ID)
}

// FormatSuggestions prints suggested titles, one per line, numbered.
func FormatSuggestions(w io.Writer, suggestions []string) {
	for i, s := range suggestions {
		fmt.Fprintf(w, "%4d  %s\n", i+1, s)
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
