package storage

import (
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *ConversationStorage {
	t.Helper()
	s, err := NewConversationStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStorage(t)

	conv := &Conversation{
		Name:           "Sales questions",
		ConversationID: "abc123",
		Messages: []Message{
			{Role: "user", Content: "How are sales today?", Timestamp: time.Now()},
			{
				Role:    "assistant",
				Content: "Sales are up.",
				ToolCalls: []ToolCall{
					{Tool: "sales_summary", Result: map[string]any{"revenue": 100.0}},
				},
			},
		},
	}

	if err := s.Save(conv); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected generated id")
	}
	if conv.CreatedAt.IsZero() || conv.UpdatedAt.IsZero() {
		t.Error("expected timestamps filled on save")
	}

	loaded, err := s.Load(conv.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "Sales questions" || loaded.ConversationID != "abc123" {
		t.Errorf("unexpected conversation: %+v", loaded)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded.Messages))
	}
	if len(loaded.Messages[1].ToolCalls) != 1 || loaded.Messages[1].ToolCalls[0].Tool != "sales_summary" {
		t.Errorf("tool call annotations must survive persistence: %+v", loaded.Messages[1])
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStorage(t)

	old := &Conversation{Name: "old"}
	if err := s.Save(old); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	// Force a distinct UpdatedAt for deterministic ordering
	time.Sleep(10 * time.Millisecond)
	recent := &Conversation{Name: "recent"}
	if err := s.Save(recent); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(list))
	}
	if list[0].Name != "recent" || list[1].Name != "old" {
		t.Errorf("expected newest first, got %q then %q", list[0].Name, list[1].Name)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)

	conv := &Conversation{Name: "doomed"}
	if err := s.Save(conv); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Delete(conv.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Load(conv.ID); err == nil {
		t.Error("expected load to fail after delete")
	}
}

func TestRename(t *testing.T) {
	s := newTestStorage(t)

	conv := &Conversation{Name: "before"}
	if err := s.Save(conv); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Rename(conv.ID, "after"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	loaded, err := s.Load(conv.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "after" {
		t.Errorf("expected renamed conversation, got %q", loaded.Name)
	}
}

func TestCurrentConversationID(t *testing.T) {
	s := newTestStorage(t)

	if err := s.SaveCurrentConversationID("conv-7"); err != nil {
		t.Fatalf("save current id failed: %v", err)
	}
	id, err := s.LoadCurrentConversationID()
	if err != nil {
		t.Fatalf("load current id failed: %v", err)
	}
	if id != "conv-7" {
		t.Errorf("expected conv-7, got %q", id)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces and slashes", "sales / report 2026", "sales---report-2026"},
		{"trimmed hyphens", "--hello--", "hello"},
		{"empty falls back", "", "conversation"},
		{"only junk falls back", "///", "conversation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGenerateConversationName(t *testing.T) {
	if got := GenerateConversationName("How are sales today?"); got != "How are sales today?" {
		t.Errorf("short message should be used verbatim, got %q", got)
	}

	long := "this message is much longer than thirty characters total"
	got := GenerateConversationName(long)
	if len(got) != 33 { // 30 chars + "..."
		t.Errorf("expected truncated name, got %q (len %d)", got, len(got))
	}

	if got := GenerateConversationName(""); got == "" {
		t.Error("empty message must still produce a name")
	}
}

func TestSearchMessages(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "How are sales today?"},
		{Role: "assistant", Content: "Sales are up 12% over yesterday."},
		{Role: "system", Content: "sales context preamble"},
		{Role: "user", Content: "What about expenses?"},
	}

	matches := SearchMessages(messages, "SALES")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches (system excluded), got %d", len(matches))
	}
	if matches[0].MessageIndex != 0 || matches[1].MessageIndex != 1 {
		t.Errorf("unexpected match indices: %+v", matches)
	}

	if got := SearchMessages(messages, ""); len(got) != 0 {
		t.Errorf("empty query must match nothing, got %d", len(got))
	}
}

func TestSearchAllConversations(t *testing.T) {
	s := newTestStorage(t)

	first := &Conversation{Name: "first", Messages: []Message{
		{Role: "user", Content: "dead stock report"},
	}}
	second := &Conversation{Name: "second", Messages: []Message{
		{Role: "assistant", Content: "Dead stock is growing in the 90+ bucket."},
	}}
	third := &Conversation{Name: "third", Messages: []Message{
		{Role: "user", Content: "unrelated"},
	}}
	for _, c := range []*Conversation{first, second, third} {
		if err := s.Save(c); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	index := NewSearchIndex(s)
	matches, err := index.SearchAllConversations("dead stock")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.ConversationName == "third" {
			t.Errorf("unexpected match in %q", m.ConversationName)
		}
	}
}

func TestInstanceLock(t *testing.T) {
	s := newTestStorage(t)

	locked, _, err := s.CheckInstanceLock()
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if locked {
		t.Fatal("expected no lock initially")
	}

	if err := s.LockInstance(); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	locked, pid, err := s.CheckInstanceLock()
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !locked || pid == 0 {
		t.Errorf("expected lock held by this process, got locked=%v pid=%d", locked, pid)
	}

	if err := s.UnlockInstance(); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	locked, _, err = s.CheckInstanceLock()
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if locked {
		t.Error("expected lock released")
	}
	// Unlocking twice is fine
	if err := s.UnlockInstance(); err != nil {
		t.Errorf("second unlock must be a no-op, got %v", err)
	}
}
