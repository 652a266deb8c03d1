package commands

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"

	"smartodo/internal/codec"
	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
)

func init() {
	Register(&ExportCmd{})
	Register(&ImportCmd{})
}

// ExportCmd writes the cached task sequence to a file. The format follows
// the file extension: .json, .csv or .xlsx. Export reads the local cache,
// so it works offline against the last durable snapshot.
type ExportCmd struct{}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export tasks to a file" }
func (c *ExportCmd) Usage() string     { return "smartodo export <path>.json|.csv|.xlsx" }
func (c *ExportCmd) NeedsAuth() bool   { return false }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: output path required")
		return exitcode.UserError
	}
	path := args[0]

	format, err := codec.FormatForPath(path)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	cc := openCache(cfg)
	tasks := cc.Tasks()

	data, err := codec.Serialize(tasks, format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		fmt.Fprintf(errOut, "error: write %s: %v\n", path, err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %d tasks to %s\n", len(tasks), path)
	}
	return exitcode.Success
}

// ImportCmd replaces the cached task sequence with the file's contents.
// The replace is all or nothing: a file that fails to parse leaves the
// cache untouched. The import is local; the next remote snapshot overwrites
// it unless the tasks are also pushed upstream.
type ImportCmd struct{}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Import tasks from a file" }
func (c *ImportCmd) Usage() string     { return "smartodo import <path>.json|.csv|.xlsx" }
func (c *ImportCmd) NeedsAuth() bool   { return false }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: input path required")
		return exitcode.UserError
	}
	path := args[0]

	format, err := codec.FormatForPath(path)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "error: read %s: %v\n", path, err)
		return exitcode.UserError
	}

	tasks, err := codec.Deserialize(data, format)
	if err != nil {
		var perr *codec.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(errOut, "error: %v\n", perr)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	cc := openCache(cfg)
	if err := cc.ReplaceTasks(tasks); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d tasks from %s\n", len(tasks), path)
	}
	return exitcode.Success
}
