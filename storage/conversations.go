package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ToolCall is a persisted tool invocation annotation
type ToolCall struct {
	Tool   string         `json:"tool"`
	Input  map[string]any `json:"input,omitempty"`
	Result map[string]any `json:"result,omitempty"`
}

// Message represents a persisted chat message
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Rendered  string     `json:"rendered,omitempty"` // Cached markdown rendering
	Timestamp time.Time  `json:"timestamp"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Conversation represents a saved chat conversation. ConversationID is the
// backend's correlation token; ID is the local file identity.
type Conversation struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ConversationID string    `json:"conversation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Messages       []Message `json:"messages"`
}

// ConversationMetadata is a lightweight version of Conversation for listing
type ConversationMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// ConversationStorage handles conversation persistence
type ConversationStorage struct {
	conversationsDir string
}

// NewConversationStorage creates a new conversation storage
func NewConversationStorage(dataDir string) (*ConversationStorage, error) {
	conversationsDir := filepath.Join(dataDir, "conversations")

	// 0700 - user-only access
	if err := os.MkdirAll(conversationsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}

	return &ConversationStorage{
		conversationsDir: conversationsDir,
	}, nil
}

// Save saves a conversation to disk
func (s *ConversationStorage) Save(conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}

	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	path := filepath.Join(s.conversationsDir, conv.ID+".json")

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// 0600 - conversation files contain business data
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation file: %w", err)
	}

	return nil
}

// Load loads a conversation from disk
func (s *ConversationStorage) Load(id string) (*Conversation, error) {
	path := filepath.Join(s.conversationsDir, id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return &conv, nil
}

// List returns metadata for all conversations, sorted by update time (newest first)
func (s *ConversationStorage) List() ([]ConversationMetadata, error) {
	entries, err := os.ReadDir(s.conversationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations directory: %w", err)
	}

	var conversations []ConversationMetadata

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.conversationsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue // Skip corrupted files
		}

		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			continue // Skip corrupted files
		}

		conversations = append(conversations, ConversationMetadata{
			ID:           conv.ID,
			Name:         conv.Name,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

// Delete deletes a conversation from disk
func (s *ConversationStorage) Delete(id string) error {
	path := filepath.Join(s.conversationsDir, id+".json")

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete conversation file: %w", err)
	}

	return nil
}

// SaveCurrentConversationID saves the ID of the current conversation
func (s *ConversationStorage) SaveCurrentConversationID(id string) error {
	path := filepath.Join(filepath.Dir(s.conversationsDir), "current_conversation.id")
	return os.WriteFile(path, []byte(id), 0600)
}

// LoadCurrentConversationID loads the ID of the last active conversation
func (s *ConversationStorage) LoadCurrentConversationID() (string, error) {
	path := filepath.Join(filepath.Dir(s.conversationsDir), "current_conversation.id")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Rename updates the name of a conversation
func (s *ConversationStorage) Rename(id string, newName string) error {
	conv, err := s.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	conv.Name = newName

	if err := s.Save(conv); err != nil {
		return fmt.Errorf("failed to save renamed conversation: %w", err)
	}

	return nil
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " ", "\n", "\r"} {
		name = strings.ReplaceAll(name, c, "-")
	}

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "conversation"
	}

	return name
}

// GenerateExportPath generates a default export path for a conversation
func GenerateExportPath(conversationName string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE") // Windows fallback
	}

	downloadsDir := filepath.Join(homeDir, "Downloads")
	sanitized := SanitizeFilename(conversationName)
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("bitui-conversation-%s-%s.json", sanitized, timestamp)

	return filepath.Join(downloadsDir, filename)
}

// ExportToJSON exports a conversation to a JSON file at the specified path
func (s *ConversationStorage) ExportToJSON(id string, exportPath string) error {
	conv, err := s.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// GenerateConversationName generates a conversation name from the first user message
func GenerateConversationName(firstMessage string) string {
	if firstMessage == "" {
		return fmt.Sprintf("Conversation %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	name := firstMessage
	if len(name) > 30 {
		name = name[:30] + "..."
	}

	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Conversation %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	return name
}

// MessageMatch represents a search result within a conversation
type MessageMatch struct {
	MessageIndex int
	Role         string
	Content      string
	Preview      string
	Timestamp    time.Time
}

// SearchMessages searches messages in the current conversation
func SearchMessages(messages []Message, query string) []MessageMatch {
	if query == "" {
		return []MessageMatch{}
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for i, msg := range messages {
		if msg.Role == "system" {
			continue
		}

		if strings.Contains(strings.ToLower(msg.Content), queryLower) {
			preview := msg.Content
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}

			matches = append(matches, MessageMatch{
				MessageIndex: i,
				Role:         msg.Role,
				Content:      msg.Content,
				Preview:      preview,
				Timestamp:    msg.Timestamp,
			})
		}
	}

	return matches
}

// LockInstance creates a global lock to ensure single-instance operation.
// Lock file: <data_dir>/bitui.lock, containing the PID of the running
// instance. Two instances would fight over the current-conversation file and
// the response cache.
func (s *ConversationStorage) LockInstance() error {
	dataDir := filepath.Dir(s.conversationsDir)
	lockPath := filepath.Join(dataDir, "bitui.lock")
	pid := os.Getpid()

	return os.WriteFile(lockPath, []byte(fmt.Sprintf("%d", pid)), 0600)
}

// UnlockInstance removes the global instance lock
func (s *ConversationStorage) UnlockInstance() error {
	dataDir := filepath.Dir(s.conversationsDir)
	lockPath := filepath.Join(dataDir, "bitui.lock")

	err := os.Remove(lockPath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// CheckInstanceLock checks if another instance is currently running.
// Returns (isLocked bool, runningPID int, err error).
func (s *ConversationStorage) CheckInstanceLock() (bool, int, error) {
	dataDir := filepath.Dir(s.conversationsDir)
	lockPath := filepath.Join(dataDir, "bitui.lock")

	data, err := os.ReadFile(lockPath)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read lock file: %w", err)
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		// Invalid lock file, clean it up
		_ = os.Remove(lockPath)
		return false, 0, nil
	}

	// os.FindProcess always succeeds on Unix; we use it as a basic
	// cross-platform liveness check without signaling
	_, err = os.FindProcess(pid)
	if err != nil {
		_ = os.Remove(lockPath)
		return false, 0, nil
	}

	return true, pid, nil
}
