package ollama

import (
	"context"
	"sync"

	"github.com/ollama/ollama/api"

	"github.com/adorton/fileprompt/llm"
)

// chatStream implements the llm.Stream interface for Ollama streaming
// responses. The Chat callback runs on a background goroutine; events are
// buffered and handed out by Next, which blocks on a condition variable
// until the next one arrives.
type chatStream struct {
	ctx     context.Context
	client  *api.Client
	req     *api.ChatRequest
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	cond    *sync.Cond
	err     error
	done    bool
	started bool
}

func newChatStream(ctx context.Context, client *api.Client, req *api.ChatRequest) *chatStream {
	s := &chatStream{
		ctx:     ctx,
		client:  client,
		req:     req,
		events:  make([]*llm.StreamEvent, 0),
		current: -1,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
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
	return nil
}

// run issues the chat request and translates callback responses into
// provider-neutral events.
func (s *chatStream) run() {
	s.mu.Lock()
	s.events = append(s.events, &llm.StreamEvent{Type: llm.StreamEventTypeStart})
	s.cond.Broadcast()
	s.mu.Unlock()

	err := s.client.Chat(s.ctx, s.req, func(resp api.ChatResponse) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Ollama sends incremental deltas (the new tokens), not
		// cumulative content.
		if resp.Message.Content != "" {
			s.events = append(s.events, &llm.StreamEvent{
				Type: llm.StreamEventTypeContentDelta,
				Text: resp.Message.Content,
			})
			s.cond.Broadcast()
		}

		if resp.Done {
			usage := usageFrom(&resp)

			s.events = append(s.events, &llm.StreamEvent{
				Type:  llm.StreamEventTypeMessageDelta,
				Usage: usage,
			})
			s.cond.Broadcast()

			s.events = append(s.events, &llm.StreamEvent{
				Type:  llm.StreamEventTypeStop,
				Usage: usage,
				Done:  true,
			})

			s.done = true
			s.cond.Broadcast()
		}

		return nil
	})

	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.err = convertError(err)
		s.done = true
		s.cond.Broadcast()
	}
}

var _ llm.Stream = (*chatStream)(nil)
