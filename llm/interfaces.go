package llm

import (
	"context"
	"strings"
)

// Client provides a provider-neutral interface for making LLM API calls.
// Implementations should handle provider-specific details internally.
type Client interface {
	// Synchronous sends a request and returns a complete response.
	// This is for non-streaming use cases.
	Synchronous(ctx context.Context, req *Request) (*Response, error)

	// Stream sends a request and returns a stream of events.
	// The caller should read from the returned Stream until it's done or an error occurs.
	Stream(ctx context.Context, req *Request) (Stream, error)
}

// Stream represents a streaming response from an LLM.
// A stream is finite and cannot be restarted once consumed.
type Stream interface {
	// Next advances to the next event in the stream.
	// Returns false when the stream is complete or an error occurs.
	Next() bool

	// Event returns the current event.
	// Should only be called after Next() returns true.
	Event() *StreamEvent

	// Err returns any error that occurred during streaming.
	Err() error

	// Close closes the stream and releases resources.
	Close() error
}

// Collect drains a stream into a complete Response. The concatenation of all
// text deltas becomes the response content, so a collected stream is
// content-equivalent to the synchronous call for the same request. When
// onChunk is non-nil it is invoked for each text delta in emission order.
func Collect(s Stream, onChunk func(string)) (*Response, error) {
	defer s.Close()

	var content strings.Builder
	var usage *Usage
	for s.Next() {
		event := s.Event()
		if event == nil {
			continue
		}
		if event.Type == StreamEventTypeContentDelta && event.Text != "" {
			content.WriteString(event.Text)
			if onChunk != nil {
				onChunk(event.Text)
			}
		}
		if event.Usage != nil {
			usage = event.Usage
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return &Response{
		Content:  content.String(),
		Usage:    usage,
		Streamed: true,
	}, nil
}

// Middleware provides hooks for decorating Client calls.
// This allows adding cross-cutting concerns like logging without exposing
// provider implementations to them.
type Middleware interface {
	// BeforeRequest is called before making an API request.
	// It can modify the request or return an error to abort the request.
	BeforeRequest(ctx context.Context, req *Request) (*Request, error)

	// AfterResponse is called after receiving a response.
	// It can modify the response or return an error.
	AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error)

	// OnError is called when an error occurs.
	// It can return a modified error or nil to use the original error.
	OnError(ctx context.Context, req *Request, err error) error
}

// StreamMiddleware provides hooks for decorating streaming calls.
type StreamMiddleware interface {
	// BeforeStream is called before starting a stream.
	BeforeStream(ctx context.Context, req *Request) (*Request, error)

	// OnStreamEvent is called for each stream event.
	// It can modify the event or return an error to abort the stream.
	OnStreamEvent(ctx context.Context, req *Request, event *StreamEvent) (*StreamEvent, error)

	// OnStreamError is called when a stream error occurs.
	OnStreamError(ctx context.Context, req *Request, err error) error
}

// MiddlewareFunc is a function type that implements Middleware.
type MiddlewareFunc struct {
	BeforeRequestFunc func(ctx context.Context, req *Request) (*Request, error)
	AfterResponseFunc func(ctx context.Context, req *Request, resp *Response) (*Response, error)
	OnErrorFunc       func(ctx context.Context, req *Request, err error) error
}

// BeforeRequest calls the BeforeRequestFunc if set.
func (f MiddlewareFunc) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	if f.BeforeRequestFunc != nil {
		return f.BeforeRequestFunc(ctx, req)
	}
	return req, nil
}

// AfterResponse calls the AfterResponseFunc if set.
func (f MiddlewareFunc) AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	if f.AfterResponseFunc != nil {
		return f.AfterResponseFunc(ctx, req, resp)
	}
	return resp, nil
}

// OnError calls the OnErrorFunc if set.
func (f MiddlewareFunc) OnError(ctx context.Context, req *Request, err error) error {
	if f.OnErrorFunc != nil {
		return f.OnErrorFunc(ctx, req, err)
	}
	return err
}

// WrapWithMiddleware wraps a Client with middleware and returns a new Client.
func WrapWithMiddleware(client Client, middleware ...Middleware) Client {
	if len(middleware) == 0 {
		return client
	}
	return &clientWithMiddleware{
		client:     client,
		middleware: middleware,
	}
}

// clientWithMiddleware wraps a Client with middleware.
type clientWithMiddleware struct {
	client     Client
	middleware []Middleware
}

// Synchronous implements Client.Synchronous with middleware support.
func (c *clientWithMiddleware) Synchronous(ctx context.Context, req *Request) (*Response, error) {
	for _, mw := range c.middleware {
		var err error
		req, err = mw.BeforeRequest(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	resp, err := c.client.Synchronous(ctx, req)
	if err != nil {
		for _, mw := range c.middleware {
			err = mw.OnError(ctx, req, err)
			if err == nil {
				break // Middleware handled the error
			}
		}
		return nil, err
	}

	// AfterResponse runs in reverse registration order
	for i := len(c.middleware) - 1; i >= 0; i-- {
		var err error
		resp, err = c.middleware[i].AfterResponse(ctx, req, resp)
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// Stream implements Client.Stream with middleware support.
func (c *clientWithMiddleware) Stream(ctx context.Context, req *Request) (Stream, error) {
	for _, mw := range c.middleware {
		if smw, ok := mw.(StreamMiddleware); ok {
			var err error
			req, err = smw.BeforeStream(ctx, req)
			if err != nil {
				return nil, err
			}
		}
	}

	stream, err := c.client.Stream(ctx, req)
	if err != nil {
		for _, mw := range c.middleware {
			if smw, ok := mw.(StreamMiddleware); ok {
				err = smw.OnStreamError(ctx, req, err)
				if err == nil {
					break
				}
			}
		}
		return nil, err
	}

	return &streamWithMiddleware{
		stream:     stream,
		middleware: c.middleware,
		req:        req,
		ctx:        ctx,
	}, nil
}

// streamWithMiddleware wraps a Stream with middleware.
type streamWithMiddleware struct {
	stream     Stream
	middleware []Middleware
	req        *Request
	ctx        context.Context
	event      *StreamEvent
}

// Next implements Stream.Next with middleware support.
func (s *streamWithMiddleware) Next() bool {
	if !s.stream.Next() {
		return false
	}

	event := s.stream.Event()
	if event == nil {
		return false
	}

	for _, mw := range s.middleware {
		if smw, ok := mw.(StreamMiddleware); ok {
			var err error
			event, err = smw.OnStreamEvent(s.ctx, s.req, event)
			if err != nil || event == nil {
				return false
			}
		}
	}

	s.event = event
	return true
}

// Event implements Stream.Event.
func (s *streamWithMiddleware) Event() *StreamEvent {
	return s.event
}

// Err implements Stream.Err.
func (s *streamWithMiddleware) Err() error {
	err := s.stream.Err()
	if err != nil {
		for _, mw := range s.middleware {
			if smw, ok := mw.(StreamMiddleware); ok {
				err = smw.OnStreamError(s.ctx, s.req, err)
				if err == nil {
					break
				}
			}
		}
	}
	return err
}

// Close implements Stream.Close.
func (s *streamWithMiddleware) Close() error {
	return s.stream.Close()
}

// Ensure wrappers implement their interfaces
var (
	_ Client = (*clientWithMiddleware)(nil)
	_ Stream = (*streamWithMiddleware)(nil)
)
