package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/output"
	"smartodo/internal/store"
)

func init() {
	Register(&CategoriesCmd{})
	Register(&AddCatCmd{})
	Register(&RenameCatCmd{})
	Register(&RmCatCmd{})
}

// CategoriesCmd lists categories, name ascending.
type CategoriesCmd struct{}

func (c *CategoriesCmd) Name() string      { return "categories" }
func (c *CategoriesCmd) Aliases() []string { return []string{"cats"} }
func (c *CategoriesCmd) Synopsis() string  { return "List categories" }
func (c *CategoriesCmd) Usage() string     { return "smartodo categories" }
func (c *CategoriesCmd) NeedsAuth() bool   { return true }

func (c *CategoriesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CategoriesCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	cc := openCache(cfg)
	if err := syncOnce(ctx, cfg, st, cc); err != nil {
		if errors.Is(err, store.ErrAuth) {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	cats := cc.Categories()
	if len(cats) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no categories")
		}
		return exitcode.Success
	}

	for _, cat := range cats {
		output.FormatCategory(out, cat)
	}
	return exitcode.Success
}

// AddCatCmd creates a category.
type AddCatCmd struct{}

func (c *AddCatCmd) Name() string      { return "addcat" }
func (c *AddCatCmd) Aliases() []string { return nil }
func (c *AddCatCmd) Synopsis() string  { return "Create a category" }
func (c *AddCatCmd) Usage() string     { return "smartodo addcat <name...>" }
func (c *AddCatCmd) NeedsAuth() bool   { return true }

func (c *AddCatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCatCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: category name required")
		return exitcode.UserError
	}

	cc := openCache(cfg)
	if code := mustSync(ctx, cfg, st, cc, errOut); code != exitcode.Success {
		return code
	}
	for _, cat := range cc.Categories() {
		if strings.EqualFold(cat.Name, name) {
			fmt.Fprintf(errOut, "error: category already exists: %s\n", cat.Name)
			return exitcode.UserError
		}
	}

	if err := st.AddCategory(ctx, cfg.UserID, name); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RenameCatCmd renames a category in place. Tasks reference categories by
// id, so they pick up the new name without being touched.
type RenameCatCmd struct{}

func (c *RenameCatCmd) Name() string      { return "renamecat" }
func (c *RenameCatCmd) Aliases() []string { return nil }
func (c *RenameCatCmd) Synopsis() string  { return "Rename a category" }
func (c *RenameCatCmd) Usage() string     { return "smartodo renamecat <name> <new-name>" }
func (c *RenameCatCmd) NeedsAuth() bool   { return true }

func (c *RenameCatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameCatCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: current and new category names required")
		return exitcode.UserError
	}
	newName := strings.TrimSpace(args[1])
	if newName == "" {
		fmt.Fprintln(errOut, "error: category name required")
		return exitcode.UserError
	}

	cc := openCache(cfg)
	if code := mustSync(ctx, cfg, st, cc, errOut); code != exitcode.Success {
		return code
	}

	id, err := resolveCategory(cc.Categories(), args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := st.UpdateCategory(ctx, cfg.UserID, id, map[string]any{"name": newName}); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RmCatCmd deletes a category. Tasks still referencing it keep the dangling
// id and simply render without a category.
type RmCatCmd struct{}

func (c *RmCatCmd) Name() string      { return "rmcat" }
func (c *RmCatCmd) Aliases() []string { return nil }
func (c *RmCatCmd) Synopsis() string  { return "Delete a category" }
func (c *RmCatCmd) Usage() string     { return "smartodo rmcat <name>" }
func (c *RmCatCmd) NeedsAuth() bool   { return true }

func (c *RmCatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCatCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: category name required")
		return exitcode.UserError
	}

	cc := openCache(cfg)
	if code := mustSync(ctx, cfg, st, cc, errOut); code != exitcode.Success {
		return code
	}

	id, err := resolveCategory(cc.Categories(), name)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := st.DeleteCategory(ctx, cfg.UserID, id); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
