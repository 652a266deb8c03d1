// Package view derives filtered, sorted, tab-partitioned, paginated
// projections of the canonical task sequence. Derivation is pure: the input
// sequence is never reordered or mutated, only copied into the result.
package view

import (
	"sort"
	"strings"

	"smartodo/internal/task"
)

// Tab selects one of the two completion partitions.
type Tab string

// The two tabs. A task belongs to exactly one at a time.
const (
	TabIncompleted Tab = "incompleted"
	TabCompleted   Tab = "completed"
)

// SortMode selects the ordering applied to the filtered sequence.
type SortMode string

// Sort modes. Manual preserves canonical relative order.
const (
	SortManual   SortMode = "manual"
	SortDue      SortMode = "due"
	SortPriority SortMode = "priority"
)

// CategoryAll is the category filter value that keeps every task.
const CategoryAll = "All"

// DefaultPageSize is the number of tasks shown per page.
const DefaultPageSize = 5

// State is the full view state. Page numbers are tracked independently per
// tab: switching tabs preserves each tab's own current page.
type State struct {
	Query          string
	CategoryFilter string // CategoryAll or a category id, matched exactly
	Sort           SortMode
	Tab            Tab
	PageSize       int
	Pages          map[Tab]int
}

// NewState returns the default view state: no filters, manual order,
// incompleted tab, page 1 on both tabs.
func NewState() State {
	return State{
		CategoryFilter: CategoryAll,
		Sort:           SortManual,
		Tab:            TabIncompleted,
		PageSize:       DefaultPageSize,
		Pages:          map[Tab]int{TabIncompleted: 1, TabCompleted: 1},
	}
}

// Page returns the current page for the selected tab (1 if unset).
func (s State) Page() int {
	if s.Pages == nil {
		return 1
	}
	if p, ok := s.Pages[s.Tab]; ok && p >= 1 {
		return p
	}
	return 1
}

// SetPage records the page for the selected tab.
func (s *State) SetPage(page int) {
	if s.Pages == nil {
		s.Pages = make(map[Tab]int)
	}
	s.Pages[s.Tab] = page
}

// TabCounts carries both partitions' sizes after filtering, so callers can
// render both tab badges regardless of which tab is selected.
type TabCounts struct {
	Incompleted int
	Completed   int
}

// Result is one rendered page of the derived view.
type Result struct {
	Items      []task.Task
	TotalPages int
	Counts     TabCounts
}

// Derive computes the visible page from the canonical sequence and the view
// state. It is deterministic and never mutates seq. A page beyond TotalPages
// yields an empty Items slice; the pipeline does not clamp (see ClampPage).
func Derive(seq []task.Task, s State) Result {
	selected, counts := split(seq, s)

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := (len(selected) + pageSize - 1) / pageSize

	start := (s.Page() - 1) * pageSize
	var items []task.Task
	if start < len(selected) {
		end := start + pageSize
		if end > len(selected) {
			end = len(selected)
		}
		items = selected[start:end]
	}

	return Result{Items: items, TotalPages: totalPages, Counts: counts}
}

// Visible returns the selected tab's filtered, sorted sequence without
// pagination. Commands use it to address tasks by their listing number
// independent of page boundaries.
func Visible(seq []task.Task, s State) []task.Task {
	selected, _ := split(seq, s)
	return selected
}

// split filters and sorts seq, partitions it by completion and returns the
// selected tab's partition along with both partition sizes.
func split(seq []task.Task, s State) ([]task.Task, TabCounts) {
	filtered := Filtered(seq, s)

	var incompleted, completed []task.Task
	for _, t := range filtered {
		if t.Completed {
			completed = append(completed, t)
		} else {
			incompleted = append(incompleted, t)
		}
	}

	counts := TabCounts{Incompleted: len(incompleted), Completed: len(completed)}

	selected := incompleted
	if s.Tab == TabCompleted {
		selected = completed
	}
	return selected, counts
}

// Filtered applies the text filter, category filter and sort, without tab
// partitioning or pagination. The reorder engine uses it to recover the full
// visible ordering.
func Filtered(seq []task.Task, s State) []task.Task {
	res := make([]task.Task, 0, len(seq))

	query := strings.ToLower(s.Query)
	for _, t := range seq {
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Notes), query) {
			continue
		}
		if s.CategoryFilter != "" && s.CategoryFilter != CategoryAll && t.Category != s.CategoryFilter {
			continue
		}
		res = append(res, t)
	}

	// Ties are expected (equal priorities, equal or missing due dates), so
	// the sort must be stable to preserve canonical relative order.
	switch s.Sort {
	case SortDue:
		sort.SliceStable(res, func(i, j int) bool {
			return dueOrInf(res[i]) < dueOrInf(res[j])
		})
	case SortPriority:
		sort.SliceStable(res, func(i, j int) bool {
			return res[i].Priority.Rank() < res[j].Priority.Rank()
		})
	}

	return res
}

// dueOrInf treats a missing due date as +infinity so undated tasks sort
// after every dated one.
func dueOrInf(t task.Task) int64 {
	if t.Due == nil {
		return int64(^uint64(0) >> 1)
	}
	return *t.Due
}

// ClampPage clamps a page number into [1, totalPages]. An empty view
// (totalPages == 0) clamps to 1. The pipeline itself never clamps; callers
// apply this after a tab or filter change.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
