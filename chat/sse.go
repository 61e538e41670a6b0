package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Transport opens one server-push connection per user message. It exists as
// an interface so tests can drive the state machine with a scripted stream.
type Transport interface {
	Connect(ctx context.Context, message, conversationID string) (Connection, error)
}

// Connection is a single live event stream.
type Connection interface {
	// Recv blocks for the next named event. It returns io.EOF when the
	// server closes the stream without a terminal event.
	Recv() (name string, data []byte, err error)
	Close() error
}

// HTTPTransport speaks the backend's SSE chat endpoint
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPTransport creates a transport for GET {baseURL}/api/chat/stream.
// The http.Client should carry no global timeout - the stream deadline is
// owned by the caller's context.
func NewHTTPTransport(baseURL, token string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

func (t *HTTPTransport) Connect(ctx context.Context, message, conversationID string) (Connection, error) {
	q := url.Values{}
	q.Set("message", message)
	if conversationID != "" {
		q.Set("conversation_id", conversationID)
	}

	streamURL := fmt.Sprintf("%s/api/chat/stream?%s", t.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream request failed: %s", resp.Status)
	}

	return newSSEConnection(resp.Body), nil
}

// sseConnection reads the text/event-stream line protocol: an optional
// "event:" line names the event, "data:" lines accumulate the payload, and a
// blank line dispatches it. Comment lines (":") are skipped.
type sseConnection struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newSSEConnection(body io.ReadCloser) *sseConnection {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseConnection{
		body:    body,
		scanner: scanner,
	}
}

func (c *sseConnection) Recv() (string, []byte, error) {
	var eventName string
	var dataBuf strings.Builder

	for c.scanner.Scan() {
		line := c.scanner.Text()

		if line == "" {
			if dataBuf.Len() == 0 {
				eventName = ""
				continue
			}
			name := eventName
			if name == "" {
				name = "message"
			}
			return name, []byte(dataBuf.String()), nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "event:") {
			eventName = strings.TrimSpace(line[6:])
			continue
		}
		if strings.HasPrefix(line, "data:") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimSpace(line[5:]))
		}
	}

	if err := c.scanner.Err(); err != nil {
		return "", nil, err
	}

	// Stream closed mid-event: deliver what accumulated before EOF
	if dataBuf.Len() > 0 {
		name := eventName
		if name == "" {
			name = "message"
		}
		return name, []byte(dataBuf.String()), nil
	}

	return "", nil, io.EOF
}

func (c *sseConnection) Close() error {
	return c.body.Close()
}
