package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsConfigError(t *testing.T) {
	err := NewConfigError("missing api key")
	if !IsConfigError(err) {
		t.Error("Expected IsConfigError to return true for config error")
	}

	wrapped := fmt.Errorf("loading configuration: %w", err)
	if !IsConfigError(wrapped) {
		t.Error("Expected IsConfigError to return true for wrapped config error")
	}

	if IsConfigError(NewProviderError("some error", nil)) {
		t.Error("Expected IsConfigError to return false for non-config error")
	}
}

func TestIsAuthError(t *testing.T) {
	err := NewAuthError("invalid credentials", nil)
	if !IsAuthError(err) {
		t.Error("Expected IsAuthError to return true for auth error")
	}

	if IsAuthError(NewNetworkError("connection refused", nil)) {
		t.Error("Expected IsAuthError to return false for network error")
	}
}

func TestIsRateLimitError(t *testing.T) {
	err := NewRateLimitError("rate limit exceeded", nil, nil)
	if !IsRateLimitError(err) {
		t.Error("Expected IsRateLimitError to return true for rate limit error")
	}

	regularErr := NewProviderError("some error", nil)
	if IsRateLimitError(regularErr) {
		t.Error("Expected IsRateLimitError to return false for non-rate-limit error")
	}
}

func TestIsNetworkError(t *testing.T) {
	if !IsNetworkError(NewNetworkError("connection reset", nil)) {
		t.Error("Expected IsNetworkError to return true for network error")
	}

	timeoutErr := &Error{Type: ErrorTypeTimeout, Message: "deadline exceeded"}
	if !IsNetworkError(timeoutErr) {
		t.Error("Expected IsNetworkError to return true for timeout error")
	}

	if IsNetworkError(NewAuthError("nope", nil)) {
		t.Error("Expected IsNetworkError to return false for auth error")
	}
}

func TestIsRetryableError(t *testing.T) {
	retryableErr := NewRateLimitError("rate limit", nil, nil)
	if !IsRetryableError(retryableErr) {
		t.Error("Expected IsRetryableError to return true for retryable error")
	}

	nonRetryableErr := NewProviderError("some error", nil)
	if IsRetryableError(nonRetryableErr) {
		t.Error("Expected IsRetryableError to return false for non-retryable error")
	}
}

func TestExtractRetryAfter(t *testing.T) {
	retryAfter := 5 * time.Minute
	err := NewRateLimitError("rate limit", &retryAfter, nil)
	extracted := ExtractRetryAfter(err)
	if extracted == nil {
		t.Fatal("Expected non-nil retry after")
	}
	if *extracted != retryAfter {
		t.Errorf("Expected retry after %v, got %v", retryAfter, *extracted)
	}

	regularErr := NewProviderError("some error", nil)
	if ExtractRetryAfter(regularErr) != nil {
		t.Error("Expected nil retry after for non-rate-limit error")
	}
}

func TestTypeOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorType
	}{
		{NewConfigError("bad"), ErrorTypeConfig},
		{NewAuthError("bad", nil), ErrorTypeAuth},
		{NewRateLimitError("bad", nil, nil), ErrorTypeRateLimit},
		{NewNetworkError("bad", nil), ErrorTypeNetwork},
		{NewProviderError("bad", nil), ErrorTypeProvider},
		{errors.New("plain"), ErrorTypeUnknown},
	}
	for _, tc := range cases {
		if got := TypeOf(tc.err); got != tc.want {
			t.Errorf("TypeOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := NewProviderError("wrapped", originalErr)
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Expected error to unwrap to original error")
	}
}
