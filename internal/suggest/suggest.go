// Package suggest defines the AI title-suggestion collaborator contract.
// The service is opaque and fallible; an empty result means "no suggestion"
// and is not an error.
package suggest

import (
	"context"
	"errors"
	"strings"
)

// ErrRateLimited indicates the suggestion service refused the request due to
// rate limiting. Callers surface it with a message distinct from generic
// failures.
var ErrRateLimited = errors.New("suggestion service rate limited")

// Suggester produces short suggested task titles for a prompt.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) ([]string, error)
}

// parseSuggestions splits a model completion into individual suggestions,
// stripping list markers and blank lines.
func parseSuggestions(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
