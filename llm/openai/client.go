// Package openai implements the llm.Client interface for OpenAI's
// chat-completions API using the sashabaranov/go-openai SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/adorton/fileprompt/llm"
)

// The OpenAI API does not expose retry-after headers through the SDK error
// type, so rate limit errors carry a default retry-after duration.
const defaultRetryAfter = 60 * time.Second

// Client implements the llm.Client interface for OpenAI's API.
type Client struct {
	api   *openai.Client
	model string // Default model to use if not specified in request
}

// New creates a new OpenAI Client.
// If baseURL is empty, the default OpenAI API endpoint is used.
// If organization is empty, no organization header is sent.
func New(apiKey, baseURL, model, organization string) (*Client, error) {
	if apiKey == "" {
		return nil, llm.NewConfigError("openai: api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if organization != "" {
		config.OrgID = organization
	}

	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: model,
	}, nil
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	chatReq, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	chatResp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, convertError(err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, llm.NewProviderError("openai: no choices in response", nil)
	}
	choice := chatResp.Choices[0]

	model := chatResp.Model
	if model == "" {
		model = chatReq.Model
	}

	return &llm.Response{
		Content:  choice.Message.Content,
		Model:    model,
		Provider: llm.ProviderOpenAI,
		Usage: &llm.Usage{
			InputTokens:  int64(chatResp.Usage.PromptTokens),
			OutputTokens: int64(chatResp.Usage.CompletionTokens),
			TotalTokens:  int64(chatResp.Usage.TotalTokens),
		},
		StopReason: string(choice.FinishReason),
	}, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	chatReq, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	chatReq.Stream = true
	chatReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := c.api.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, convertError(err)
	}

	return newChatStream(stream), nil
}

// buildRequest converts a provider-neutral request into a chat completion request.
func (c *Client) buildRequest(req *llm.Request) (openai.ChatCompletionRequest, error) {
	if req == nil {
		return openai.ChatCompletionRequest{}, llm.NewConfigError("openai: request is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return openai.ChatCompletionRequest{}, llm.NewConfigError("openai: model is required")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}

	return chatReq, nil
}

// convertError translates SDK and transport errors into llm.Error values.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return &llm.Error{
				Type:        llm.ErrorTypeTimeout,
				Message:     "openai: request timed out",
				Retryable:   true,
				ProviderErr: err,
			}
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return llm.NewNetworkError("openai: request failed", err)
		}
		return llm.NewProviderError("openai: API error", err)
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llm.Error{
			Type:        llm.ErrorTypeAuth,
			Message:     fmt.Sprintf("openai: authentication failed: %s", apiErr.Message),
			Retryable:   false,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError(
			fmt.Sprintf("openai: rate limit: %s", apiErr.Message),
			&retryAfter,
			err,
		)
	case http.StatusBadRequest:
		return &llm.Error{
			Type:        llm.ErrorTypeInvalidRequest,
			Message:     fmt.Sprintf("openai: invalid request: %s", apiErr.Message),
			Retryable:   false,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("openai: server error: %s", apiErr.Message),
			Retryable:   true,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	default:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     fmt.Sprintf("openai: API error: %s", apiErr.Message),
			Retryable:   false,
			StatusCode:  apiErr.HTTPStatusCode,
			ProviderErr: err,
		}
	}
}

var _ llm.Client = (*Client)(nil)
