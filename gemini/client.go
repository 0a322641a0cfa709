// Package gemini implements [metachat.Completer] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between metachat's
// domain types and the Gemini API types. Completions are blocking; retry
// policy belongs to the caller.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/fwojciec/metachat"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// Interface compliance check.
var _ metachat.Completer = (*Client)(nil)

// Client implements [metachat.Completer] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the fallback model ID used when a request does not name
// one. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Complete sends a blocking generate-content request and returns the
// generated text.
func (c *Client) Complete(ctx context.Context, req metachat.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	contents := ConvertMessages(req.Messages)
	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", classify(err)
	}
	text := resp.Text()
	if text == "" {
		return "", &metachat.GatewayError{
			Kind:     metachat.GatewayMalformedResponse,
			Provider: providerName,
			Err:      errors.New("response contains no text"),
		}
	}
	return text, nil
}

// ConvertMessages converts metachat messages to Gemini content. User and
// meta messages map to the user role (advice is conditioning input);
// assistant messages map to the model role.
func ConvertMessages(msgs []metachat.Message) []*genai.Content {
	result := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		switch m := msg.(type) {
		case metachat.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		case metachat.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		case metachat.MetaMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}
	return result
}

// classify maps SDK failures to gateway error kinds by HTTP status.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &metachat.GatewayError{
			Kind:     metachat.GatewayTransient,
			Provider: providerName,
			Err:      err,
		}
	}
	kind := metachat.GatewayTransient
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		kind = metachat.GatewayAuthentication
	case apiErr.Code == http.StatusTooManyRequests:
		kind = metachat.GatewayRateLimited
	case apiErr.Code >= 400 && apiErr.Code < 500:
		kind = metachat.GatewayMalformedResponse
	}
	return &metachat.GatewayError{
		Kind:     kind,
		Provider: providerName,
		Status:   apiErr.Code,
		Err:      err,
	}
}
