// Package gemini wraps the Google Gemini API behind a plain text-completion
// call. Consumers depend on a one-method interface they declare themselves,
// so everything above this package is testable without network access.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Parzival048/booksneo-categorizer/internal/logging"
)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gemini-2.0-flash"

// Client is a lazy-initialized Gemini completion client. The underlying
// API client is created on first use so that constructing a Client with an
// empty key stays cheap and error-free.
type Client struct {
	apiKey string
	model  string
	logger logging.Logger

	mu       sync.Mutex
	client   *genai.Client
	genModel *genai.GenerativeModel
}

// NewClient creates a Client. The key is not validated here; a missing or
// bad key surfaces as a completion error on first call.
func NewClient(apiKey, model string, logger logging.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{apiKey: apiKey, model: model, logger: logger}
}

func (c *Client) ensureClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return fmt.Errorf("creating gemini client: %w", err)
	}
	c.client = client
	c.genModel = client.GenerativeModel(c.model)
	return nil
}

// Complete sends the system instruction and user payload as a single
// prompt and returns the raw response text. Callers bound the call with a
// context deadline; a fired deadline cancels the in-flight request.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.ensureClient(ctx); err != nil {
		return "", err
	}

	prompt := system + "\n\n" + user
	resp, err := c.genModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini completion: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini completion: no text parts in response")
	}

	c.logger.WithFields(
		logging.Field{Key: "model", Value: c.model},
		logging.Field{Key: "response_chars", Value: sb.Len()},
	).Debug("gemini completion done")

	return sb.String(), nil
}
