package llm

import (
	"context"

	"github.com/rs/zerolog"
)

// LoggingMiddleware logs requests, responses, and errors through zerolog.
// It implements both Middleware and StreamMiddleware.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

// BeforeRequest implements Middleware.BeforeRequest.
func (m *LoggingMiddleware) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	m.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int64("max_tokens", req.MaxTokens).
		Msg("LLM request")
	return req, nil
}

// AfterResponse implements Middleware.AfterResponse.
func (m *LoggingMiddleware) AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	ev := m.logger.Debug().
		Str("model", resp.Model).
		Str("stop_reason", resp.StopReason).
		Int("content_chars", len(resp.Content))
	if resp.Usage != nil {
		ev = ev.Int64("input_tokens", resp.Usage.InputTokens).
			Int64("output_tokens", resp.Usage.OutputTokens)
	}
	ev.Msg("LLM response")
	return resp, nil
}

// OnError implements Middleware.OnError.
func (m *LoggingMiddleware) OnError(ctx context.Context, req *Request, err error) error {
	m.logger.Warn().
		Err(err).
		Str("model", req.Model).
		Str("error_type", string(TypeOf(err))).
		Msg("LLM call failed")
	return err
}

// BeforeStream implements StreamMiddleware.BeforeStream.
func (m *LoggingMiddleware) BeforeStream(ctx context.Context, req *Request) (*Request, error) {
	m.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("LLM stream start")
	return req, nil
}

// OnStreamEvent implements StreamMiddleware.OnStreamEvent.
func (m *LoggingMiddleware) OnStreamEvent(ctx context.Context, req *Request, event *StreamEvent) (*StreamEvent, error) {
	if event.Type == StreamEventTypeStop {
		ev := m.logger.Debug().Str("model", req.Model)
		if event.Usage != nil {
			ev = ev.Int64("output_tokens", event.Usage.OutputTokens)
		}
		ev.Msg("LLM stream complete")
	}
	return event, nil
}

// OnStreamError implements StreamMiddleware.OnStreamError.
func (m *LoggingMiddleware) OnStreamError(ctx context.Context, req *Request, err error) error {
	return m.OnError(ctx, req, err)
}

var (
	_ Middleware       = (*LoggingMiddleware)(nil)
	_ StreamMiddleware = (*LoggingMiddleware)(nil)
)
