package llm

// MessageRole represents the role of a message in a conversation.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message represents a single message in a conversation.
// This is provider-neutral and can represent user, assistant, or system messages.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewTextMessage creates a new message with the given role and text content.
func NewTextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Content: text}
}

// Request represents a complete LLM API request.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int64
	Temperature *float64 // Optional temperature override
}

// Response represents a complete LLM API response.
// The JSON tags define the shape used when results are persisted.
type Response struct {
	Content    string `json:"content"`
	Model      string `json:"model"`
	Provider   string `json:"provider"`
	Usage      *Usage `json:"usage,omitempty"`
	StopReason string `json:"finish_reason,omitempty"`
	Streamed   bool   `json:"streamed,omitempty"`
}

// Usage represents token usage information from an LLM response.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Total returns the total token count, deriving it from input and output
// counts when the provider did not report one.
func (u *Usage) Total() int64 {
	if u == nil {
		return 0
	}
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.InputTokens + u.OutputTokens
}

// StreamEventType represents the type of streaming event.
type StreamEventType string

const (
	StreamEventTypeStart        StreamEventType = "start"
	StreamEventTypeContentDelta StreamEventType = "content_delta"
	StreamEventTypeMessageDelta StreamEventType = "message_delta"
	StreamEventTypeStop         StreamEventType = "stop"
)

// StreamEvent represents a single event in a streaming response.
// Text carries the incremental content for content_delta events.
type StreamEvent struct {
	Type  StreamEventType
	Text  string
	Usage *Usage
	Done  bool
}
