package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"bitui/config"
)

// State of the stream client. Exactly one stream is live at a time; a new
// Send supersedes (and closes) whatever came before it.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrTimeout      = errors.New("stream timed out")
)

// Client drives the chat stream: it opens one SSE connection per user
// message, demultiplexes events into the store, and reports progress on a
// per-send event channel. All state changes go through transition, which is
// the only place edges are checked - "have I already terminated" replaces
// any probing of the transport.
type Client struct {
	store     *Store
	transport Transport
	timeout   time.Duration

	mu     sync.Mutex
	state  State
	gen    uint64 // bumped per send; fences goroutines of superseded streams
	conn   Connection
	cancel context.CancelFunc
}

// NewClient creates a stream client. timeout bounds the whole stream,
// connect included; zero means no deadline.
func NewClient(store *Store, transport Transport, timeout time.Duration) *Client {
	return &Client{
		store:     store,
		transport: transport,
		timeout:   timeout,
		state:     StateIdle,
	}
}

// State returns the current machine state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Store returns the message store the client writes to
func (c *Client) Store() *Store {
	return c.store
}

// transition moves the machine along a legal edge. Returns false (and
// changes nothing) for an illegal move - late events hitting a terminated
// stream land here and are dropped. Callers must hold c.mu.
func (c *Client) transition(to State) bool {
	legal := false
	switch c.state {
	case StateIdle, StateTerminated:
		legal = to == StateConnecting
	case StateConnecting:
		// Connecting -> Connecting is a superseding send
		legal = to == StateStreaming || to == StateTerminated || to == StateConnecting
	case StateStreaming:
		// Streaming -> Connecting is a superseding send
		legal = to == StateTerminated || to == StateConnecting
	}
	if !legal {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[chat] dropped illegal transition %s -> %s", c.state, to)
		}
		return false
	}
	c.state = to
	return true
}

// Send submits a user message. The message must be non-empty after trimming;
// callers gate concurrent sends on the store's loading flag, but a send that
// does arrive mid-stream supersedes the old stream rather than corrupting it.
// Send appends the user message and a streaming assistant placeholder, closes
// any live connection, then opens the new one. The returned channel reports
// stream progress and is closed on termination.
func (c *Client) Send(message string) (<-chan Event, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()

	// Close any live connection before opening the new one: a new send
	// supersedes whatever stream came before it, so at most one connection
	// is ever live. The superseded goroutine notices the closed connection
	// (or cancelled context), sees its generation is stale, and exits.
	c.closeConnLocked()

	if !c.transition(StateConnecting) {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("cannot send in state %s", state)
	}

	c.store.SetError("")
	c.store.SetLoading(true)
	c.store.AddMessage(Message{Role: RoleUser, Content: trimmed})
	c.store.AddMessage(Message{Role: RoleAssistant, IsStreaming: true})

	events := make(chan Event, 64)
	c.gen++
	gen := c.gen

	ctx := context.Background()
	if c.timeout > 0 {
		ctx, c.cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, c.cancel = context.WithCancel(ctx)
	}

	conversationID := c.store.ConversationID()
	c.mu.Unlock()

	go c.run(ctx, gen, trimmed, conversationID, events)

	return events, nil
}

// run owns the connection lifecycle for one send
func (c *Client) run(ctx context.Context, gen uint64, message, conversationID string, events chan Event) {
	conn, err := c.transport.Connect(ctx, message, conversationID)
	if err != nil {
		c.terminate(events, gen, c.classify(ctx, fmt.Errorf("connection failed: %w", err)), "")
		return
	}

	c.mu.Lock()
	if gen != c.gen || !c.transition(StateStreaming) {
		// Superseded while connecting - the new send owns the store now
		c.mu.Unlock()
		conn.Close()
		close(events)
		return
	}
	c.conn = conn
	c.mu.Unlock()

	for {
		name, data, err := conn.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Closed without a terminal event
				c.terminate(events, gen, c.classify(ctx, errors.New("stream closed unexpectedly")), "")
			} else {
				c.terminate(events, gen, c.classify(ctx, fmt.Errorf("stream read failed: %w", err)), "")
			}
			return
		}

		// Cheap early exit before parsing; handleEvent rechecks the
		// generation under the lock before every store write.
		if c.superseded(gen) {
			close(events)
			return
		}
		if done := c.handleEvent(events, gen, name, data); done {
			return
		}
	}
}

// superseded reports whether a newer send took over the store
func (c *Client) superseded(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen != c.gen
}

// mutate applies fn to the store only while gen still owns it. The fence
// check and the write happen under the same lock, so a superseding Send
// cannot slip in between them and hand the stale goroutine the new
// stream's placeholder. Returns false when the stream was superseded.
func (c *Client) mutate(gen uint64, fn func(*Store)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	fn(c.store)
	return true
}

// classify maps a transport-level failure onto a timeout when the stream
// deadline expired
func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// handleEvent dispatches one named event. Returns true when the stream
// reached a terminal event. Malformed JSON payloads are logged and swallowed
// without touching message content.
func (c *Client) handleEvent(events chan Event, gen uint64, name string, data []byte) bool {
	switch name {
	case eventChunk:
		var payload chunkPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			c.logMalformed(name, err)
			return false
		}
		if !c.mutate(gen, func(s *Store) { s.AppendToLastMessage(payload.Text) }) {
			close(events)
			return true
		}
		c.emit(events, Event{Kind: EventChunk, Text: payload.Text})
		return false

	case eventToolCall:
		var payload toolCallPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			c.logMalformed(name, err)
			return false
		}
		if !c.mutate(gen, func(s *Store) { s.AddToolCall(ToolCall{Tool: payload.Tool, Input: payload.Input}) }) {
			close(events)
			return true
		}
		c.emit(events, Event{Kind: EventToolCall})
		return false

	case eventToolResult:
		var payload toolResultPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			c.logMalformed(name, err)
			return false
		}
		if !c.mutate(gen, func(s *Store) { s.SetToolResult(payload.Tool, payload.Result) }) {
			close(events)
			return true
		}
		c.emit(events, Event{Kind: EventToolResult})
		return false

	case eventEnd:
		var payload endPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			// Still a clean terminal, just without a conversation id
			c.logMalformed(name, err)
		}
		c.terminate(events, gen, nil, payload.ConversationID)
		return true

	case eventError:
		var payload errorPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			c.logMalformed(name, err)
		}
		msg := payload.Error
		if msg == "" {
			msg = "stream error"
		}
		c.terminate(events, gen, errors.New(msg), "")
		return true

	default:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[chat] ignoring unknown event %q", name)
		}
		return false
	}
}

func (c *Client) logMalformed(event string, err error) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[chat] malformed %s payload: %v", event, err)
	}
}

// emit delivers a progress event; a stalled reader drops rather than blocks
func (c *Client) emit(events chan Event, ev Event) {
	select {
	case events <- ev:
	default:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[chat] event channel full, dropping %d", ev.Kind)
		}
	}
}

// terminate finishes the stream exactly once: it finalizes the streaming
// message, stores the conversation id on success, records the error on
// failure, closes the connection and the event channel. A second call (late
// transport error, duplicate end) is a no-op because the transition fails.
func (c *Client) terminate(events chan Event, gen uint64, err error, conversationID string) {
	c.mu.Lock()
	if gen != c.gen || !c.transition(StateTerminated) {
		// Superseded or already terminated: this goroutine still owns its
		// channel, so close it to release any reader, but leave the store
		// and machine state to the live stream.
		c.mu.Unlock()
		close(events)
		return
	}
	c.closeConnLocked()

	// Store writes stay under the lock: once we release it a new Send may
	// own the store, and finalizing its fresh placeholder would be the same
	// interleaving bug the generation fence exists to prevent.
	c.store.FinalizeLastMessage()
	c.store.SetLoading(false)
	if err != nil {
		c.store.SetError(err.Error())
	} else {
		c.store.SetConversationID(conversationID)
	}
	c.mu.Unlock()

	if err != nil {
		events <- Event{Kind: EventError, Err: err}
	} else {
		events <- Event{Kind: EventEnd}
	}
	close(events)
}

// closeConnLocked tears down the live connection and its context.
// Callers must hold c.mu.
func (c *Client) closeConnLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Close shuts down any live stream (app exit)
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeConnLocked()
}
