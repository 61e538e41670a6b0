package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the ordered message log and the conversation session flags.
// The stream client is the only writer while a stream is live; the render
// layer reads snapshots. An RWMutex keeps reads safe while the stream
// goroutine appends.
type Store struct {
	mu             sync.RWMutex
	messages       []Message
	conversationID string
	loading        bool
	lastError      string
}

func NewStore() *Store {
	return &Store{}
}

// AddMessage appends a message, generating an id and timestamp when missing.
// If the new message is streaming, any prior streaming message is finalized
// first so at most one message streams at a time.
func (s *Store) AddMessage(m Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	if m.IsStreaming {
		for i := range s.messages {
			s.messages[i].IsStreaming = false
		}
	}

	s.messages = append(s.messages, m)
	return m
}

// AppendToLastMessage concatenates text onto the content of the final
// message. A no-op on an empty log (duplicate or out-of-order events).
func (s *Store) AppendToLastMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return
	}
	s.messages[len(s.messages)-1].Content += text
}

// AddToolCall appends a tool-call annotation to the last message
func (s *Store) AddToolCall(tc ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return
	}
	last := &s.messages[len(s.messages)-1]
	last.ToolCalls = append(last.ToolCalls, tc)
}

// SetToolResult records the result of the most recent unresolved call of the
// named tool on the last message. Unknown tools are dropped silently.
func (s *Store) SetToolResult(tool string, result map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return
	}
	last := &s.messages[len(s.messages)-1]
	for i := len(last.ToolCalls) - 1; i >= 0; i-- {
		if last.ToolCalls[i].Tool == tool && last.ToolCalls[i].Result == nil {
			last.ToolCalls[i].Result = result
			return
		}
	}
}

// FinalizeLastMessage marks the last message immutable (streaming off)
func (s *Store) FinalizeLastMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return
	}
	s.messages[len(s.messages)-1].IsStreaming = false
}

// SetRendered caches the rendered markdown for the message at index i
func (s *Store) SetRendered(i int, rendered string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.messages) {
		return
	}
	s.messages[i].Rendered = rendered
}

// Streaming reports whether any message is still being streamed
func (s *Store) Streaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.messages {
		if s.messages[i].IsStreaming {
			return true
		}
	}
	return false
}

func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetConversationID stores the server-assigned correlation id. Empty ids are
// ignored so an end event without one leaves the prior id unchanged.
func (s *Store) SetConversationID(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = id
}

func (s *Store) ConversationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationID
}

func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Messages returns a snapshot of the log
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// LastMessage returns the final message, if any
func (s *Store) LastMessage() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Reset replaces the log and session id wholesale (loading a saved
// conversation or starting a fresh one)
func (s *Store) Reset(messages []Message, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]Message, len(messages))
	copy(s.messages, messages)
	s.conversationID = conversationID
	s.loading = false
	s.lastError = ""
}
