package openai

import (
	"errors"
	"io"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/adorton/fileprompt/llm"
)

// chatStream implements the llm.Stream interface for OpenAI streaming
// responses. A background goroutine reads SSE chunks from the SDK stream and
// appends events to a buffer; consumers block on a condition variable until
// the next event is available.
type chatStream struct {
	stream  *openai.ChatCompletionStream
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	cond    *sync.Cond
	err     error
	done    bool
	started bool
}

// newChatStream creates a new chatStream.
func newChatStream(stream *openai.ChatCompletionStream) *chatStream {
	cs := &chatStream{
		stream:  stream,
		events:  make([]*llm.StreamEvent, 0),
		current: -1,
	}
	cs.cond = sync.NewCond(&cs.mu)
	return cs
}

// Next advances to the next event in the stream.
func (s *chatStream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		go s.run()
	}

	s.current++

	// Wait for the reader goroutine to produce the next event
	for s.current >= len(s.events) && !s.done && s.err == nil {
		s.cond.Wait()
	}

	if s.err != nil {
		return false
	}
	return s.current < len(s.events)
}

// Event returns the current event.
func (s *chatStream) Event() *llm.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any error that occurred during streaming.
func (s *chatStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the stream and releases resources.
func (s *chatStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.cond.Broadcast()
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

// emit appends an event and wakes any waiting consumer.
// Must be called with s.mu held.
func (s *chatStream) emit(event *llm.StreamEvent) {
	s.events = append(s.events, event)
	s.cond.Broadcast()
}

// run reads SDK chunks until the end-of-stream marker and translates them
// into provider-neutral events.
func (s *chatStream) run() {
	s.mu.Lock()
	s.emit(&llm.StreamEvent{Type: llm.StreamEventTypeStart})
	s.mu.Unlock()

	var usage *llm.Usage

	for {
		response, err := s.stream.Recv()
		if err != nil {
			s.mu.Lock()
			if errors.Is(err, io.EOF) {
				// Explicit end-of-stream marker from the provider
				s.emit(&llm.StreamEvent{Type: llm.StreamEventTypeMessageDelta, Usage: usage})
				s.emit(&llm.StreamEvent{Type: llm.StreamEventTypeStop, Usage: usage, Done: true})
				s.done = true
			} else if !s.done {
				s.err = convertError(err)
			}
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}

		// The final usage chunk arrives with an empty choice list when
		// stream_options.include_usage is set.
		if response.Usage != nil {
			usage = &llm.Usage{
				InputTokens:  int64(response.Usage.PromptTokens),
				OutputTokens: int64(response.Usage.CompletionTokens),
				TotalTokens:  int64(response.Usage.TotalTokens),
			}
		}
		if len(response.Choices) == 0 {
			continue
		}

		if delta := response.Choices[0].Delta.Content; delta != "" {
			s.mu.Lock()
			if s.done {
				s.mu.Unlock()
				return
			}
			s.emit(&llm.StreamEvent{
				Type: llm.StreamEventTypeContentDelta,
				Text: delta,
			})
			s.mu.Unlock()
		}
	}
}

var _ llm.Stream = (*chatStream)(nil)
