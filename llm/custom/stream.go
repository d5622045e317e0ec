package custom

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/adorton/fileprompt/llm"
)

// sseStream implements the llm.Stream interface over a server-sent-events
// response body in the OpenAI "data: {json}" framing. Unlike the SDK-backed
// providers it pulls lazily: each Next call reads from the wire until it has
// an event to hand out.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	pending []*llm.StreamEvent
	event   *llm.StreamEvent
	usage   *llm.Usage
	err     error
	done    bool
	closed  bool
}

func newSSEStream(body io.ReadCloser) *sseStream {
	s := &sseStream{
		body:    body,
		scanner: bufio.NewScanner(body),
	}
	s.pending = append(s.pending, &llm.StreamEvent{Type: llm.StreamEventTypeStart})
	return s
}

// Next advances to the next event in the stream.
func (s *sseStream) Next() bool {
	if s.err != nil || s.closed {
		return false
	}

	for len(s.pending) == 0 && !s.done {
		s.pull()
	}

	if len(s.pending) == 0 {
		return false
	}

	s.event = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

// Event returns the current event.
func (s *sseStream) Event() *llm.StreamEvent {
	return s.event
}

// Err returns any error that occurred during streaming.
func (s *sseStream) Err() error {
	return s.err
}

// Close closes the stream and releases resources.
func (s *sseStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// pull reads wire lines until it has queued at least one event or the
// stream ends.
func (s *sseStream) pull() {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		if data == "[DONE]" {
			s.finish()
			return
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.err = llm.NewProviderError("custom: decoding stream chunk", err)
			s.done = true
			return
		}

		if chunk.Usage != nil {
			s.usage = &llm.Usage{
				InputTokens:  chunk.Usage.PromptTokens,
				OutputTokens: chunk.Usage.CompletionTokens,
				TotalTokens:  chunk.Usage.TotalTokens,
			}
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			s.pending = append(s.pending, &llm.StreamEvent{
				Type: llm.StreamEventTypeContentDelta,
				Text: chunk.Choices[0].Delta.Content,
			})
			return
		}
	}

	if err := s.scanner.Err(); err != nil {
		s.err = llm.NewNetworkError("custom: reading stream", err)
		s.done = true
		return
	}

	// Body ended without a [DONE] marker; treat it as a clean finish.
	s.finish()
}

func (s *sseStream) finish() {
	s.pending = append(s.pending,
		&llm.StreamEvent{Type: llm.StreamEventTypeMessageDelta, Usage: s.usage},
		&llm.StreamEvent{Type: llm.StreamEventTypeStop, Usage: s.usage, Done: true},
	)
	s.done = true
}

var _ llm.Stream = (*sseStream)(nil)
