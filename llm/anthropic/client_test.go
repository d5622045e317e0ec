package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/adorton/fileprompt/llm"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "claude-3-haiku-20240307", testLogger())
	if err == nil {
		t.Fatal("expected error for empty API key")
	}
	if !llm.IsConfigError(err) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestBuildParams(t *testing.T) {
	client, err := New("test-key", "claude-3-haiku-20240307", testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	temp := 0.7
	req := &llm.Request{
		System: "You are helpful.",
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "Hello"),
			llm.NewTextMessage(llm.RoleAssistant, "Hi there"),
			llm.NewTextMessage(llm.RoleUser, "How are you?"),
		},
		MaxTokens:   512,
		Temperature: &temp,
	}

	params, err := client.buildParams(req)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}

	if string(params.Model) != "claude-3-haiku-20240307" {
		t.Errorf("expected default model, got %q", params.Model)
	}
	if params.MaxTokens != 512 {
		t.Errorf("expected max tokens 512, got %d", params.MaxTokens)
	}
	if len(params.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(params.Messages))
	}
	if len(params.System) != 1 || params.System[0].Text != "You are helpful." {
		t.Errorf("system prompt not carried: %+v", params.System)
	}
}

func TestBuildParams_SystemRoleFoldedIntoSystemPrompt(t *testing.T) {
	client, err := New("test-key", "claude-3-haiku-20240307", testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &llm.Request{
		Messages: []llm.Message{
			llm.NewTextMessage(llm.RoleSystem, "Be concise."),
			llm.NewTextMessage(llm.RoleUser, "Hello"),
		},
	}

	params, err := client.buildParams(req)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}

	if len(params.Messages) != 1 {
		t.Fatalf("expected system message excluded from messages, got %d", len(params.Messages))
	}
	if len(params.System) != 1 || params.System[0].Text != "Be concise." {
		t.Errorf("expected system role folded into system prompt, got %+v", params.System)
	}
	if params.MaxTokens != defaultMaxTokens {
		t.Errorf("expected default max tokens, got %d", params.MaxTokens)
	}
}

func TestBuildParams_ModelRequired(t *testing.T) {
	client, err := New("test-key", "", testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.buildParams(&llm.Request{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "Hello")},
	})
	if !llm.IsConfigError(err) {
		t.Errorf("expected config error for missing model, got %v", err)
	}
}

func TestSynchronous_TextResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model"] != "claude-3-haiku-20240307" {
			t.Errorf("unexpected model %v", body["model"])
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-haiku-20240307",
			"content": [{"type": "text", "text": "Hello from Claude"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 4}
		}`)
	}))
	defer server.Close()

	client, err := New("test-key", "claude-3-haiku-20240307", testLogger(), option.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Synchronous(context.Background(), &llm.Request{
		System:   "You are helpful.",
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "Hello")},
	})
	if err != nil {
		t.Fatalf("Synchronous: %v", err)
	}

	if resp.Content != "Hello from Claude" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Provider != llm.ProviderAnthropic {
		t.Errorf("unexpected provider %q", resp.Provider)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("unexpected stop reason %q", resp.StopReason)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 16 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestConvertError(t *testing.T) {
	networkErr := convertError(&url.Error{Op: "Post", URL: "https://api.anthropic.com", Err: io.ErrUnexpectedEOF})
	if !llm.IsNetworkError(networkErr) {
		t.Errorf("expected network error, got %v", networkErr)
	}

	timeoutErr := convertError(context.DeadlineExceeded)
	if llm.TypeOf(timeoutErr) != llm.ErrorTypeTimeout {
		t.Errorf("expected timeout error, got %v", timeoutErr)
	}
	if !llm.IsRetryableError(timeoutErr) {
		t.Error("expected timeout error to be retryable")
	}

	providerErr := convertError(io.ErrUnexpectedEOF)
	if llm.TypeOf(providerErr) != llm.ErrorTypeProvider {
		t.Errorf("expected provider error, got %v", providerErr)
	}

	if convertError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}
