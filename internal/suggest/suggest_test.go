package suggest

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	openai "github.com/sashabaranov/go-openai"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			"numbered list",
			"1. Buy milk\n2. Call mom\n3. Book dentist",
			[]string{"Buy milk", "Call mom", "Book dentist"},
		},
		{
			"bullets and blanks",
			"- Buy milk\n\n* Call mom\n",
			[]string{"Buy milk", "Call mom"},
		},
		{
			"quoted single line",
			`"Schedule annual checkup (High)"`,
			[]string{"Schedule annual checkup (High)"},
		},
		{"empty completion", "\n\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSuggestions(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseSuggestions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrapErrorRateLimited(t *testing.T) {
	err := wrapError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("429 not mapped to ErrRateLimited: %v", err)
	}

	generic := wrapError(&openai.APIError{HTTPStatusCode: http.StatusInternalServerError})
	if errors.Is(generic, ErrRateLimited) {
		t.Errorf("500 wrongly mapped to ErrRateLimited")
	}
}
