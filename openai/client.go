// Package openai implements [metachat.Completer] for the OpenAI Chat
// Completions API using the official SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fwojciec/metachat"
)

const (
	providerName = "openai"
	defaultModel = "gpt-4o"
)

// Interface compliance check.
var _ metachat.Completer = (*Client)(nil)

// Client implements [metachat.Completer] for the OpenAI Chat Completions
// API.
type Client struct {
	client openai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the fallback model ID used when a request does not name
// one. Default is gpt-4o.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new OpenAI [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends a blocking chat-completion request and returns the
// generated text.
func (c *Client) Complete(ctx context.Context, req metachat.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		switch m := msg.(type) {
		case metachat.UserMessage:
			messages = append(messages, openai.UserMessage(m.Content))
		case metachat.AssistantMessage:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case metachat.MetaMessage:
			// Supervisory advice reaches the backend as a user-role turn.
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &metachat.GatewayError{
			Kind:     metachat.GatewayMalformedResponse,
			Provider: providerName,
			Err:      fmt.Errorf("response contains no choices with text"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps SDK failures to gateway error kinds by HTTP status.
func classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &metachat.GatewayError{
			Kind:     metachat.GatewayTransient,
			Provider: providerName,
			Err:      err,
		}
	}
	kind := metachat.GatewayTransient
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		kind = metachat.GatewayAuthentication
	case apiErr.StatusCode == http.StatusTooManyRequests:
		kind = metachat.GatewayRateLimited
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		kind = metachat.GatewayMalformedResponse
	}
	return &metachat.GatewayError{
		Kind:     kind,
		Provider: providerName,
		Status:   apiErr.StatusCode,
		Err:      err,
	}
}
