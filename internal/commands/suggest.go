package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"smartodo/internal/config"
	"smartodo/internal/exitcode"
	"smartodo/internal/output"
	"smartodo/internal/store"
	"smartodo/internal/suggest"
)

func init() {
	Register(&SuggestCmd{})
}

// SuggestCmd asks the suggestion service for task titles matching a prompt.
type SuggestCmd struct {
	// Suggester overrides the default OpenAI-backed service (for testing).
	Suggester suggest.Suggester
}

func (c *SuggestCmd) Name() string      { return "suggest" }
func (c *SuggestCmd) Aliases() []string { return nil }
func (c *SuggestCmd) Synopsis() string  { return "Suggest task titles for a prompt" }
func (c *SuggestCmd) Usage() string     { return "smartodo suggest <prompt...>" }
func (c *SuggestCmd) NeedsAuth() bool   { return false }

func (c *SuggestCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SuggestCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		fmt.Fprintln(errOut, "error: prompt required")
		return exitcode.UserError
	}

	svc := c.Suggester
	if svc == nil {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(errOut, "error: OPENAI_API_KEY not set")
			return exitcode.UserError
		}
		svc = suggest.NewOpenAI(apiKey, cfg.OpenAIModel)
	}

	suggestions, err := svc.Suggest(ctx, prompt)
	if err != nil {
		if errors.Is(err, suggest.ErrRateLimited) {
			fmt.Fprintln(errOut, "error: suggestion service rate limited, try again later")
		} else {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		}
		return exitcode.BackendError
	}

	if len(suggestions) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no suggestions")
		}
		return exitcode.Success
	}

	output.FormatSuggestions(out, suggestions)
	return exitcode.Success
}
