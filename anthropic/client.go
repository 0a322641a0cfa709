package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/metachat"
)

// Interface compliance check.
var _ metachat.Completer = (*Client)(nil)

// Client implements [metachat.Completer] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel sets the fallback model ID used when a request does not name one.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends a blocking request to the Anthropic Messages API and
// returns the generated text.
func (c *Client) Complete(ctx context.Context, req metachat.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	body, err := json.Marshal(c.buildRequestBody(req))
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &metachat.GatewayError{
			Kind:     metachat.GatewayTransient,
			Provider: providerName,
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseHTTPError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &metachat.GatewayError{
			Kind:     metachat.GatewayTransient,
			Provider: providerName,
			Err:      fmt.Errorf("read body: %w", err),
		}
	}
	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return "", &metachat.GatewayError{
			Kind:     metachat.GatewayMalformedResponse,
			Provider: providerName,
			Err:      fmt.Errorf("unmarshal response: %w", err),
		}
	}
	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &metachat.GatewayError{
			Kind:     metachat.GatewayMalformedResponse,
			Provider: providerName,
			Err:      errors.New("response contains no text blocks"),
		}
	}
	return sb.String(), nil
}

func (c *Client) buildRequestBody(req metachat.Request) apiRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	return apiRequest{
		Model:     model,
		MaxTokens: defaultMaxTokens,
		System:    req.SystemPrompt,
		Messages:  convertMessages(req.Messages),
	}
}

// convertMessages converts metachat messages to API messages. User and meta
// messages map to the user role (advice is conditioning input); assistant
// messages keep their role.
func convertMessages(msgs []metachat.Message) []apiMessage {
	result := make([]apiMessage, 0, len(msgs))
	for _, msg := range msgs {
		switch m := msg.(type) {
		case metachat.UserMessage:
			result = append(result, apiMessage{Role: "user", Content: m.Content})
		case metachat.AssistantMessage:
			result = append(result, apiMessage{Role: "assistant", Content: m.Content})
		case metachat.MetaMessage:
			result = append(result, apiMessage{Role: "user", Content: m.Content})
		}
	}
	return result
}

// parseHTTPError maps a non-200 response to a gateway error kind by status.
func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = nil
	}
	cause := fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	var apiErr apiErrorResponse
	if len(body) > 0 && json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		cause = fmt.Errorf("%s: %s", apiErr.Error.Type, apiErr.Error.Message)
	}

	kind := metachat.GatewayTransient
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = metachat.GatewayAuthentication
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = metachat.GatewayRateLimited
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		kind = metachat.GatewayMalformedResponse
	}
	return &metachat.GatewayError{
		Kind:     kind,
		Provider: providerName,
		Status:   resp.StatusCode,
		Err:      cause,
	}
}
