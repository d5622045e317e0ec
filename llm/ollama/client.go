// Package ollama implements the llm.Client interface for local models
// served by Ollama.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/adorton/fileprompt/llm"
)

// Client implements the llm.Client interface for Ollama's API.
type Client struct {
	api   *api.Client
	model string // Default model to use if not specified in request
}

// New creates a new Client. If host is empty, the default from the
// environment is used (OLLAMA_HOST or http://localhost:11434).
func New(host, model string) (*Client, error) {
	var client *api.Client

	if host != "" {
		baseURL, err := parseHost(host)
		if err != nil {
			return nil, llm.NewConfigError(fmt.Sprintf("ollama: invalid host: %v", err))
		}
		client = api.NewClient(baseURL, &http.Client{})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, llm.NewConfigError(fmt.Sprintf("ollama: creating client: %v", err))
		}
	}

	return &Client{
		api:   client,
		model: model,
	}, nil
}

// parseHost parses a host string into a URL.
func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	chatReq, err := c.buildChatRequest(req, false)
	if err != nil {
		return nil, err
	}

	var chatResp api.ChatResponse
	err = c.api.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	if err != nil {
		return nil, convertError(err)
	}

	stopReason := chatResp.DoneReason
	if stopReason == "" && chatResp.Done {
		stopReason = "stop"
	}

	return &llm.Response{
		Content:    chatResp.Message.Content,
		Model:      chatReq.Model,
		Provider:   llm.ProviderOllama,
		Usage:      usageFrom(&chatResp),
		StopReason: stopReason,
	}, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	chatReq, err := c.buildChatRequest(req, true)
	if err != nil {
		return nil, err
	}

	return newChatStream(ctx, c.api, chatReq), nil
}

// buildChatRequest converts a provider-neutral request into an Ollama chat
// request.
func (c *Client) buildChatRequest(req *llm.Request, stream bool) (*api.ChatRequest, error) {
	if req == nil {
		return nil, llm.NewConfigError("ollama: request is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, llm.NewConfigError("ollama: model is required")
	}

	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, api.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	streamFlag := stream
	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &streamFlag,
		Options:  make(map[string]interface{}),
	}

	if req.MaxTokens > 0 {
		chatReq.Options["num_predict"] = int(req.MaxTokens)
	}
	if req.Temperature != nil {
		chatReq.Options["temperature"] = *req.Temperature
	}

	return chatReq, nil
}

func usageFrom(resp *api.ChatResponse) *llm.Usage {
	usage := &llm.Usage{}
	if resp.PromptEvalCount > 0 {
		usage.InputTokens = int64(resp.PromptEvalCount)
	}
	if resp.EvalCount > 0 {
		usage.OutputTokens = int64(resp.EvalCount)
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	return usage
}

// convertError translates Ollama API and transport errors into llm.Error
// values.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &llm.Error{
				Type:        llm.ErrorTypeAuth,
				Message:     "ollama: authentication failed",
				Retryable:   false,
				StatusCode:  statusErr.StatusCode,
				ProviderErr: err,
			}
		case http.StatusNotFound:
			return &llm.Error{
				Type:        llm.ErrorTypeInvalidRequest,
				Message:     fmt.Sprintf("ollama: %s", statusErr.ErrorMessage),
				Retryable:   false,
				StatusCode:  statusErr.StatusCode,
				ProviderErr: err,
			}
		default:
			return &llm.Error{
				Type:        llm.ErrorTypeProvider,
				Message:     fmt.Sprintf("ollama: API error (HTTP %d)", statusErr.StatusCode),
				Retryable:   statusErr.StatusCode >= http.StatusInternalServerError,
				StatusCode:  statusErr.StatusCode,
				ProviderErr: err,
			}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.Error{
			Type:        llm.ErrorTypeTimeout,
			Message:     "ollama: request timed out",
			Retryable:   true,
			ProviderErr: err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return llm.NewNetworkError("ollama: request failed (is the server running?)", err)
	}

	return llm.NewProviderError("ollama: API error", err)
}

var _ llm.Client = (*Client)(nil)
