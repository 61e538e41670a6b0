package chat

import (
	"testing"
)

func TestAppendToLastMessageEmptyLog(t *testing.T) {
	s := NewStore()

	// Out-of-order or duplicate delivery against an empty log must be a no-op
	s.AppendToLastMessage("orphan chunk")

	if s.Len() != 0 {
		t.Fatalf("expected empty log, got %d messages", s.Len())
	}
}

func TestAppendToLastMessageAssociative(t *testing.T) {
	chunked := NewStore()
	chunked.AddMessage(Message{Role: RoleAssistant, IsStreaming: true})
	for _, chunk := range []string{"a", "b", "c"} {
		chunked.AppendToLastMessage(chunk)
	}

	whole := NewStore()
	whole.AddMessage(Message{Role: RoleAssistant, IsStreaming: true})
	whole.AppendToLastMessage("abc")

	chunkedLast, _ := chunked.LastMessage()
	wholeLast, _ := whole.LastMessage()

	if chunkedLast.Content != wholeLast.Content {
		t.Errorf("chunked append %q != whole append %q", chunkedLast.Content, wholeLast.Content)
	}
	if chunkedLast.Content != "abc" {
		t.Errorf("expected content %q, got %q", "abc", chunkedLast.Content)
	}
}

func TestAddMessageGeneratesIDAndTimestamp(t *testing.T) {
	s := NewStore()

	added := s.AddMessage(Message{Role: RoleUser, Content: "hello"})

	if added.ID == "" {
		t.Error("expected generated id")
	}
	if added.Timestamp.IsZero() {
		t.Error("expected generated timestamp")
	}
}

func TestAtMostOneStreamingMessage(t *testing.T) {
	s := NewStore()

	s.AddMessage(Message{Role: RoleUser, Content: "first"})
	s.AddMessage(Message{Role: RoleAssistant, IsStreaming: true})
	s.AddMessage(Message{Role: RoleUser, Content: "second"})
	s.AddMessage(Message{Role: RoleAssistant, IsStreaming: true})

	streaming := 0
	for _, m := range s.Messages() {
		if m.IsStreaming {
			streaming++
		}
	}
	if streaming != 1 {
		t.Errorf("expected exactly 1 streaming message, got %d", streaming)
	}

	last, _ := s.LastMessage()
	if !last.IsStreaming {
		t.Error("expected the newest message to be the streaming one")
	}
}

func TestSetConversationIDIgnoresEmpty(t *testing.T) {
	s := NewStore()

	s.SetConversationID("abc123")
	s.SetConversationID("")

	if got := s.ConversationID(); got != "abc123" {
		t.Errorf("expected conversation id %q, got %q", "abc123", got)
	}
}

func TestToolCallAnnotations(t *testing.T) {
	s := NewStore()
	s.AddMessage(Message{Role: RoleAssistant, IsStreaming: true})

	s.AddToolCall(ToolCall{Tool: "query_sales", Input: map[string]any{"period": "today"}})
	s.SetToolResult("query_sales", map[string]any{"total": 42.0})
	// Result for a tool that never ran is dropped
	s.SetToolResult("unknown_tool", map[string]any{"x": 1.0})

	last, _ := s.LastMessage()
	if len(last.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(last.ToolCalls))
	}
	tc := last.ToolCalls[0]
	if tc.Tool != "query_sales" {
		t.Errorf("expected tool %q, got %q", "query_sales", tc.Tool)
	}
	if tc.Result == nil || tc.Result["total"] != 42.0 {
		t.Errorf("expected recorded result, got %v", tc.Result)
	}

	// Annotations never touch content
	if last.Content != "" {
		t.Errorf("tool events must not alter content, got %q", last.Content)
	}
}

func TestResetReplacesLog(t *testing.T) {
	s := NewStore()
	s.AddMessage(Message{Role: RoleUser, Content: "old"})
	s.SetError("stale error")
	s.SetLoading(true)

	s.Reset([]Message{
		{Role: RoleUser, Content: "restored"},
		{Role: RoleAssistant, Content: "reply"},
	}, "conv-9")

	if s.Len() != 2 {
		t.Fatalf("expected 2 messages after reset, got %d", s.Len())
	}
	if s.ConversationID() != "conv-9" {
		t.Errorf("expected conversation id conv-9, got %q", s.ConversationID())
	}
	if s.Loading() {
		t.Error("expected loading cleared after reset")
	}
	if s.Error() != "" {
		t.Errorf("expected error cleared after reset, got %q", s.Error())
	}
}
