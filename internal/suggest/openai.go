package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the completion model used for suggestions.
	DefaultModel = openai.GPT4oMini

	// requestTimeout bounds a single suggestion call.
	requestTimeout = 15 * time.Second

	systemPrompt = "You are a helpful assistant for task management."
)

// OpenAI implements Suggester against the OpenAI chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a suggester with the given API key. An empty model
// selects DefaultModel.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

// Suggest asks the model for clear, actionable task titles.
func (o *OpenAI) Suggest(ctx context.Context, prompt string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Suggest a clear, actionable task title and priority for: %s", prompt)},
		},
	})
	if err != nil {
		return nil, wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return parseSuggestions(resp.Choices[0].Message.Content), nil
}

// wrapError translates API errors, keeping rate limiting distinct from
// generic failures.
func wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}
