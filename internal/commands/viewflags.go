package commands

import (
	"flag"
	"fmt"
	"strings"

	"smartodo/internal/config"
	"smartodo/internal/task"
	"smartodo/internal/view"
)

// ViewFlags is the shared set of view-shaping flags carried by every command
// that addresses tasks through the derived listing. Zero values mean "use the
// command's defaults", so a command can be run directly without flag parsing.
type ViewFlags struct {
	query    string
	category string
	sortName string
	tabName  string
	page     int
}

// SetQuery sets the text filter (for testing).
func (v *ViewFlags) SetQuery(q string) { v.query = q }

// SetCategory sets the category filter by name or id (for testing).
func (v *ViewFlags) SetCategory(name string) { v.category = name }

// SetSort sets the sort mode name (for testing).
func (v *ViewFlags) SetSort(name string) { v.sortName = name }

// SetTab sets the tab name (for testing).
func (v *ViewFlags) SetTab(name string) { v.tabName = name }

// SetPage sets the page number (for testing).
func (v *ViewFlags) SetPage(page int) { v.page = page }

func (v *ViewFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&v.query, "query", "", "")
	fs.StringVar(&v.query, "q", "", "")
	fs.StringVar(&v.category, "category", "", "")
	fs.StringVar(&v.category, "c", "", "")
	fs.StringVar(&v.sortName, "sort", "", "")
	fs.StringVar(&v.tabName, "tab", "", "")
	fs.IntVar(&v.page, "page", 0, "")
}

// state resolves the flags into a view state. The category filter accepts a
// category name (case-insensitive) or a raw category id. defaultTab applies
// when --tab was not given; done and undone default to opposite tabs.
func (v *ViewFlags) state(cfg *config.Config, cats []task.Category, defaultTab view.Tab) (view.State, error) {
	s := view.NewState()
	s.Tab = defaultTab
	if cfg.PageSize > 0 {
		s.PageSize = cfg.PageSize
	}
	s.Query = v.query

	if v.sortName != "" {
		switch m := view.SortMode(v.sortName); m {
		case view.SortManual, view.SortDue, view.SortPriority:
			s.Sort = m
		default:
			return s, fmt.Errorf("invalid sort mode: %s", v.sortName)
		}
	}

	if v.tabName != "" {
		switch t := view.Tab(v.tabName); t {
		case view.TabIncompleted, view.TabCompleted:
			s.Tab = t
		default:
			return s, fmt.Errorf("invalid tab: %s", v.tabName)
		}
	}

	page := v.page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return s, fmt.Errorf("invalid page number: %d", page)
	}
	s.SetPage(page)

	if v.category != "" && v.category != view.CategoryAll {
		id, err := resolveCategory(cats, v.category)
		if err != nil {
			return s, err
		}
		s.CategoryFilter = id
	}

	return s, nil
}

// resolveCategory maps a user-supplied category name to its id. Names match
// case-insensitively; a string that matches no name but equals an existing
// id is accepted as-is.
func resolveCategory(cats []task.Category, name string) (string, error) {
	want := strings.ToLower(strings.TrimSpace(name))

	var matches []task.Category
	for _, c := range cats {
		if strings.ToLower(c.Name) == want {
			matches = append(matches, c)
		}
	}
	if len(matches) == 1 {
		return matches[0].ID, nil
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous category name: %s", name)
	}

	for _, c := range cats {
		if c.ID == name {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("category not found: %s", name)
}

// categoryNames builds the id-to-name lookup used for display. A task whose
// category id resolves to nothing renders without a category.
func categoryNames(cats []task.Category) map[string]string {
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}
