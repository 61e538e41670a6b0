package chat

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ToolCall records a backend tool invocation attached to an assistant message.
// Calls are append-only annotations; they never alter message content.
type ToolCall struct {
	Tool   string         `json:"tool"`
	Input  map[string]any `json:"input,omitempty"`
	Result map[string]any `json:"result,omitempty"`
}

// Message is a single turn in the conversation
type Message struct {
	ID          string
	Role        string
	Content     string
	Rendered    string // Cached rendered markdown for assistant messages
	IsStreaming bool
	Timestamp   time.Time
	ToolCalls   []ToolCall
}
