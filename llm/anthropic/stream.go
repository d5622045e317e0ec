package anthropic

import (
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/rs/zerolog"

	"github.com/adorton/fileprompt/llm"
)

// messageStream implements the llm.Stream interface for Anthropic streaming
// responses. SDK events are consumed by a background goroutine and buffered;
// Next blocks on a condition variable until the next event arrives.
type messageStream struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	cond    *sync.Cond
	err     error
	done    bool
	started bool
	logger  zerolog.Logger
}

func newMessageStream(stream *ssestream.Stream[anthropic.MessageStreamEventUnion], logger zerolog.Logger) *messageStream {
	ms := &messageStream{
		stream:  stream,
		events:  make([]*llm.StreamEvent, 0),
		current: -1,
		logger:  logger,
	}
	ms.cond = sync.NewCond(&ms.mu)
	return ms
}

// Next advances to the next event in the stream.
func (s *messageStream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		go s.run()
	}

	s.current++

	for s.current >= len(s.events) && !s.done && s.err == nil {
		s.cond.Wait()
	}

	if s.err != nil {
		return false
	}
	if s.done && s.current >= len(s.events) {
		return false
	}

	return s.current < len(s.events)
}

// Event returns the current event.
func (s *messageStream) Event() *llm.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any error that occurred during streaming.
func (s *messageStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the stream and releases resources.
func (s *messageStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.cond.Broadcast()
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

func (s *messageStream) emit(event *llm.StreamEvent) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// run consumes SDK events and translates them into provider-neutral ones.
func (s *messageStream) run() {
	s.emit(&llm.StreamEvent{Type: llm.StreamEventTypeStart})

	var usage *llm.Usage

	for s.stream.Next() {
		event := s.stream.Current()

		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				s.emit(&llm.StreamEvent{
					Type: llm.StreamEventTypeContentDelta,
					Text: delta.Text,
				})
			}

		case anthropic.MessageDeltaEvent:
			usage = &llm.Usage{
				InputTokens:  evt.Usage.InputTokens,
				OutputTokens: evt.Usage.OutputTokens,
				TotalTokens:  evt.Usage.InputTokens + evt.Usage.OutputTokens,
			}

		case anthropic.MessageStopEvent:
			s.emit(&llm.StreamEvent{
				Type:  llm.StreamEventTypeMessageDelta,
				Usage: usage,
			})

			s.mu.Lock()
			s.events = append(s.events, &llm.StreamEvent{
				Type:  llm.StreamEventTypeStop,
				Usage: usage,
				Done:  true,
			})
			s.done = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
	}

	if err := s.stream.Err(); err != nil {
		s.mu.Lock()
		s.err = convertError(err)
		s.done = true
		s.cond.Broadcast()
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if !s.done {
		s.done = true
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

var _ llm.Stream = (*messageStream)(nil)
