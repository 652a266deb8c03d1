package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "smartodo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  smartodo                                       List incompleted tasks
  smartodo list [view flags]
  smartodo add [--notes <text>] [--category <name>] [--priority High|Medium|Low] [--due YYYY-MM-DD] <title...>
  smartodo edit [view flags] <n> [--title <text>] [--notes <text>] [--set-category <name>] [--priority <p>] [--due <date>]
  smartodo done [view flags] <n>
  smartodo undone [view flags] <n>
  smartodo rm [view flags] <n>
  smartodo move [view flags] [--push] <from> <to>
  smartodo categories
  smartodo addcat <name...>
  smartodo renamecat <name> <new-name>
  smartodo rmcat <name>
  smartodo import <path>.json|.csv|.xlsx
  smartodo export <path>.json|.csv|.xlsx
  smartodo suggest <prompt...>
  smartodo watch [view flags]
  smartodo login
  smartodo logout
  smartodo help
  smartodo version

View flags:
  --query <text>       Match against title and notes
  --category <name>    Keep only tasks in the named category
  --sort <mode>        manual (default), due or priority
  --tab <tab>          incompleted (default) or completed
  --page <n>           Page of the selected tab

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Task numbers refer to positions in the listing produced by the same view
flags, counted across pages.
`
