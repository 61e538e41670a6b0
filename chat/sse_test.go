package chat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type wireEvent struct {
	name string
	data string
}

func recvAll(t *testing.T, conn Connection) []wireEvent {
	t.Helper()
	var out []wireEvent
	for {
		name, data, err := conn.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected recv error: %v", err)
		}
		out = append(out, wireEvent{name: name, data: string(data)})
	}
}

func TestSSEConnectionParsing(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []wireEvent
	}{
		{
			name:   "named events",
			stream: "event: chunk\ndata: {\"text\":\"hi\"}\n\nevent: end\ndata: {}\n\n",
			want: []wireEvent{
				{name: "chunk", data: `{"text":"hi"}`},
				{name: "end", data: `{}`},
			},
		},
		{
			name:   "unnamed event defaults to message",
			stream: "data: hello\n\n",
			want:   []wireEvent{{name: "message", data: "hello"}},
		},
		{
			name:   "multi-line data joined with newline",
			stream: "event: chunk\ndata: line one\ndata: line two\n\n",
			want:   []wireEvent{{name: "chunk", data: "line one\nline two"}},
		},
		{
			name:   "comments and keepalives skipped",
			stream: ": keepalive\n\nevent: chunk\ndata: x\n\n: bye\n",
			want:   []wireEvent{{name: "chunk", data: "x"}},
		},
		{
			name:   "blank lines between events reset the name",
			stream: "event: chunk\n\ndata: orphan\n\n",
			want:   []wireEvent{{name: "message", data: "orphan"}},
		},
		{
			name:   "trailing partial event delivered before EOF",
			stream: "event: chunk\ndata: cut off",
			want:   []wireEvent{{name: "chunk", data: "cut off"}},
		},
		{
			name:   "empty stream",
			stream: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newSSEConnection(io.NopCloser(strings.NewReader(tt.stream)))
			got := recvAll(t, conn)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d events, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestHTTPTransportRequest(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("event: end\ndata: {}\n\n"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "secret-token", nil)
	conn, err := transport.Connect(context.Background(), "hi there", "conv-9")
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()

	if gotPath != "/api/chat/stream" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "message=hi+there") || !strings.Contains(gotQuery, "conversation_id=conv-9") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotAccept != "text/event-stream" {
		t.Errorf("unexpected accept header %q", gotAccept)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}

	name, _, err := conn.Recv()
	if err != nil || name != "end" {
		t.Errorf("expected end event, got %q err %v", name, err)
	}
}

func TestHTTPTransportOmitsEmptyFields(t *testing.T) {
	var gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("event: end\ndata: {}\n\n"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL+"/", "", nil)
	conn, err := transport.Connect(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	conn.Close()

	if strings.Contains(gotQuery, "conversation_id") {
		t.Errorf("empty conversation id must be omitted, got %q", gotQuery)
	}
	if gotAuth != "" {
		t.Errorf("expected no auth header, got %q", gotAuth)
	}
}

func TestHTTPTransportNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, "", nil)
	_, err := transport.Connect(context.Background(), "hi", "")
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("expected status in error, got %v", err)
	}
}
