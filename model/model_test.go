package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitui/chat"
	"bitui/storage"
)

type noopTransport struct{}

func (noopTransport) Connect(ctx context.Context, message, conversationID string) (chat.Connection, error) {
	return nil, errors.New("no backend in tests")
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	store, err := storage.NewConversationStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	client := chat.NewClient(chat.NewStore(), noopTransport{}, time.Second)
	return NewModel(nil, nil, client, store, nil, storage.NewSearchIndex(store), "test")
}

func TestToStorageMessagesFiltersNonChatRoles(t *testing.T) {
	messages := []chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleSystem, Content: "preamble"},
		{Role: chat.RoleAssistant, Content: "hello"},
	}

	stored := toStorageMessages(messages)
	if len(stored) != 2 {
		t.Fatalf("expected system messages dropped, got %d", len(stored))
	}
	if stored[0].Role != "user" || stored[1].Role != "assistant" {
		t.Errorf("unexpected roles: %+v", stored)
	}
}

func TestMessageConversionPreservesToolCalls(t *testing.T) {
	stored := []storage.Message{
		{
			Role:    "assistant",
			Content: "Sales are up.",
			ToolCalls: []storage.ToolCall{
				{Tool: "sales_summary", Result: map[string]any{"revenue": 100.0}},
			},
		},
	}

	converted := toChatMessages(stored)
	if len(converted) != 1 || len(converted[0].ToolCalls) != 1 {
		t.Fatalf("expected tool calls preserved, got %+v", converted)
	}
	if converted[0].ToolCalls[0].Tool != "sales_summary" {
		t.Errorf("unexpected tool call: %+v", converted[0].ToolCalls[0])
	}

	back := toStorageMessages(converted)
	if len(back) != 1 || len(back[0].ToolCalls) != 1 {
		t.Fatalf("expected round trip to keep tool calls, got %+v", back)
	}
}

func TestResumeSeedsMessageStore(t *testing.T) {
	store, err := storage.NewConversationStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	last := &storage.Conversation{
		ID:             "c1",
		Name:           "resumed",
		ConversationID: "abc123",
		Messages: []storage.Message{
			{Role: "user", Content: "How are sales today?"},
			{Role: "assistant", Content: "Sales are up."},
		},
	}

	client := chat.NewClient(chat.NewStore(), noopTransport{}, time.Second)
	m := NewModel(nil, nil, client, store, last, nil, "test")

	if got := len(m.Messages()); got != 2 {
		t.Fatalf("expected 2 resumed messages, got %d", got)
	}
	if m.Chat.Store().ConversationID() != "abc123" {
		t.Errorf("expected conversation id restored, got %q", m.Chat.Store().ConversationID())
	}
	if !m.NeedsInitialRender {
		t.Error("expected initial render flag for resumed messages")
	}
}

func TestNewConversationResetsStore(t *testing.T) {
	m := newTestModel(t)
	m.Chat.Store().Reset([]chat.Message{
		{Role: chat.RoleUser, Content: "old"},
	}, "old-id")
	m.CurrentConversation = &storage.Conversation{ID: "c1", Name: "old"}

	m.NewConversation()

	if len(m.Messages()) != 0 {
		t.Errorf("expected empty log, got %d messages", len(m.Messages()))
	}
	if m.Chat.Store().ConversationID() != "" {
		t.Errorf("expected cleared conversation id, got %q", m.Chat.Store().ConversationID())
	}
	if m.CurrentConversation != nil {
		t.Error("expected no current conversation")
	}
}

func TestSendChatRejectedLeavesStreamNil(t *testing.T) {
	m := newTestModel(t)

	if cmd := m.SendChat("   "); cmd != nil {
		t.Error("expected nil command for empty message")
	}
	if m.StreamEvents != nil {
		t.Error("expected no stream on rejected send")
	}
	if cmd := m.WaitForStreamEvent(); cmd != nil {
		t.Error("expected no wait command without a live stream")
	}
}
