// Package anthropic implements the llm.Client interface for Anthropic's
// messages API using the official anthropic-sdk-go SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/adorton/fileprompt/llm"
)

const defaultRetryAfter = 60 * time.Second

// The messages API requires max_tokens; fall back to a sane value when the
// request leaves it unset.
const defaultMaxTokens = 1024

// Client implements the llm.Client interface for Anthropic's API.
type Client struct {
	api    *anthropic.Client
	model  string // Default model to use if not specified in request
	logger zerolog.Logger
}

// New creates a new Anthropic Client with the given API key.
// Extra request options (such as a base URL override for tests) may be
// supplied through opts.
func New(apiKey, model string, logger zerolog.Logger, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, llm.NewConfigError("anthropic: api key is required")
	}

	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	api := anthropic.NewClient(options...)
	return &Client{
		api:    &api,
		model:  model,
		logger: logger,
	}, nil
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	message, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return nil, convertError(err)
	}

	// Concatenate the text blocks; message-content envelopes may carry
	// more than one.
	var content strings.Builder
	for _, blockUnion := range message.Content {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(block.Text)
		}
	}

	return &llm.Response{
		Content:  content.String(),
		Model:    string(message.Model),
		Provider: llm.ProviderAnthropic,
		Usage: &llm.Usage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
			TotalTokens:  message.Usage.InputTokens + message.Usage.OutputTokens,
		},
		StopReason: string(message.StopReason),
	}, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	stream := c.api.Messages.NewStreaming(ctx, params)
	return newMessageStream(stream, c.logger), nil
}

// buildParams converts a provider-neutral request into messages API params.
func (c *Client) buildParams(req *llm.Request) (anthropic.MessageNewParams, error) {
	if req == nil {
		return anthropic.MessageNewParams{}, llm.NewConfigError("anthropic: request is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return anthropic.MessageNewParams{}, llm.NewConfigError("anthropic: model is required")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system := req.System
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case llm.RoleSystem:
			// Anthropic carries the system prompt outside the messages array
			if system == "" {
				system = msg.Content
			} else {
				system += "\n\n" + msg.Content
			}
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	return params, nil
}

// convertError translates SDK and transport errors into llm.Error values.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return &llm.Error{
				Type:        llm.ErrorTypeTimeout,
				Message:     "anthropic: request timed out",
				Retryable:   true,
				ProviderErr: err,
			}
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return llm.NewNetworkError("anthropic: request failed", err)
		}
		return llm.NewProviderError("anthropic: API error", err)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llm.Error{
			Type:        llm.ErrorTypeAuth,
			Message:     "anthropic: authentication failed",
			Retryable:   false,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError("anthropic: rate limit", &retryAfter, err)
	case http.StatusBadRequest:
		return &llm.Error{
			Type:        llm.ErrorTypeInvalidRequest,
			Message:     "anthropic: invalid request",
			Retryable:   false,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	default:
		if apiErr.StatusCode >= http.StatusInternalServerError {
			return &llm.Error{
				Type:        llm.ErrorTypeProvider,
				Message:     fmt.Sprintf("anthropic: server error (HTTP %d)", apiErr.StatusCode),
				Retryable:   true,
				StatusCode:  apiErr.StatusCode,
				ProviderErr: err,
			}
		}
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("anthropic: API error (HTTP %d)", apiErr.StatusCode),
			Retryable:   false,
			StatusCode:  apiErr.StatusCode,
			ProviderErr: err,
		}
	}
}

var _ llm.Client = (*Client)(nil)
