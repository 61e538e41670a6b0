package chat

// Wire event names on the /api/chat/stream connection
const (
	eventChunk      = "chunk"
	eventToolCall   = "tool_call"
	eventToolResult = "tool_result"
	eventEnd        = "end"
	eventError      = "error"
)

// EventKind classifies events surfaced to the render layer
type EventKind int

const (
	// EventChunk carries incremental assistant text already appended to the store
	EventChunk EventKind = iota
	// EventToolCall and EventToolResult are annotation updates
	EventToolCall
	EventToolResult
	// EventEnd is the single success terminal
	EventEnd
	// EventError is the failure terminal (application error, transport
	// failure, or timeout - inspect Err)
	EventError
)

// Event notifies the render layer that the store changed. Content itself
// lives in the store; the event only says what kind of change happened.
type Event struct {
	Kind EventKind
	Text string // chunk text, for EventChunk
	Err  error  // terminal error, for EventError
}

// chunkPayload is the body of a chunk event
type chunkPayload struct {
	Text string `json:"text"`
}

// toolCallPayload is the body of a tool_call event
type toolCallPayload struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// toolResultPayload is the body of a tool_result event
type toolResultPayload struct {
	Tool   string         `json:"tool"`
	Result map[string]any `json:"result"`
}

// endPayload is the body of the end event
type endPayload struct {
	ConversationID string `json:"conversation_id"`
}

// errorPayload is the body of the error event
type errorPayload struct {
	Error string `json:"error"`
}
