// Package custom implements the llm.Client interface for self-hosted or
// third-party endpoints that speak the OpenAI chat-completions wire format.
// It talks HTTP directly rather than going through an SDK so the base URL
// and auth behavior stay fully under the caller's control.
package custom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adorton/fileprompt/llm"
)

const defaultRetryAfter = 60 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// Client implements the llm.Client interface against any endpoint
// compatible with the OpenAI chat-completions API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// New creates a Client for the endpoint at baseURL. The API key is optional;
// many self-hosted endpoints do not require one.
func New(apiKey, baseURL, model string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, llm.NewConfigError("custom: base url is required")
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int64        `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the chat-completions response body.
type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	Delta        chatMessage `json:"delta"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	body, err := c.buildRequestBody(req, false)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llm.NewNetworkError("custom: reading response body", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, statusError(httpResp, respBody)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return nil, llm.NewProviderError("custom: decoding response", err)
	}
	if len(cr.Choices) == 0 {
		return nil, llm.NewProviderError("custom: response contained no choices", nil)
	}

	model := cr.Model
	if model == "" {
		model = c.effectiveModel(req)
	}

	resp := &llm.Response{
		Content:    cr.Choices[0].Message.Content,
		Model:      model,
		Provider:   llm.ProviderCustom,
		StopReason: cr.Choices[0].FinishReason,
	}
	if cr.Usage != nil {
		resp.Usage = &llm.Usage{
			InputTokens:  cr.Usage.PromptTokens,
			OutputTokens: cr.Usage.CompletionTokens,
			TotalTokens:  cr.Usage.TotalTokens,
		}
	}
	return resp, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	body, err := c.buildRequestBody(req, true)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, statusError(httpResp, respBody)
	}

	return newSSEStream(httpResp.Body), nil
}

func (c *Client) buildRequestBody(req *llm.Request, stream bool) ([]byte, error) {
	if req == nil {
		return nil, llm.NewConfigError("custom: request is required")
	}
	model := c.effectiveModel(req)
	if model == "" {
		return nil, llm.NewConfigError("custom: model is required")
	}

	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	cr := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   stream,
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		cr.MaxTokens = &mt
	}
	if req.Temperature != nil {
		cr.Temperature = req.Temperature
	}

	body, err := json.Marshal(cr)
	if err != nil {
		return nil, llm.NewProviderError("custom: encoding request", err)
	}
	return body, nil
}

func (c *Client) effectiveModel(req *llm.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, llm.NewConfigError(fmt.Sprintf("custom: creating request: %v", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &llm.Error{
				Type:        llm.ErrorTypeTimeout,
				Message:     "custom: request timed out",
				Retryable:   true,
				ProviderErr: err,
			}
		}
		return nil, llm.NewNetworkError("custom: request failed", err)
	}
	return httpResp, nil
}

// statusError maps a non-200 HTTP response to an llm.Error.
func statusError(resp *http.Response, body []byte) error {
	message := strings.TrimSpace(string(body))
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llm.Error{
			Type:       llm.ErrorTypeAuth,
			Message:    fmt.Sprintf("custom: authentication failed: %s", message),
			Retryable:  false,
			StatusCode: resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		if header := resp.Header.Get("Retry-After"); header != "" {
			if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return llm.NewRateLimitError(fmt.Sprintf("custom: rate limit: %s", message), &retryAfter, nil)
	case http.StatusBadRequest:
		return &llm.Error{
			Type:       llm.ErrorTypeInvalidRequest,
			Message:    fmt.Sprintf("custom: invalid request: %s", message),
			Retryable:  false,
			StatusCode: resp.StatusCode,
		}
	default:
		return &llm.Error{
			Type:       llm.ErrorTypeProvider,
			Message:    fmt.Sprintf("custom: HTTP %d: %s", resp.StatusCode, message),
			Retryable:  resp.StatusCode >= http.StatusInternalServerError,
			StatusCode: resp.StatusCode,
		}
	}
}

var _ llm.Client = (*Client)(nil)
