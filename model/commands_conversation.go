package model

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bitui/config"
	"bitui/storage"
)

// FetchConversationList retrieves the list of saved conversations
func (m *Model) FetchConversationList() tea.Cmd {
	if m.ConversationStorage == nil {
		return nil
	}
	store := m.ConversationStorage
	return func() tea.Msg {
		conversations, err := store.List()
		return ConversationsListMsg{
			Conversations: conversations,
			Err:           err,
		}
	}
}

// LoadConversation loads a conversation by ID
func (m *Model) LoadConversation(id string) tea.Cmd {
	if m.ConversationStorage == nil {
		return nil
	}

	// Already loaded, just report success
	if m.CurrentConversation != nil && m.CurrentConversation.ID == id {
		current := m.CurrentConversation
		return func() tea.Msg {
			return ConversationLoadedMsg{Conversation: current}
		}
	}

	store := m.ConversationStorage
	return func() tea.Msg {
		conv, err := store.Load(id)
		if err != nil {
			return ConversationLoadedMsg{Err: err}
		}
		return ConversationLoadedMsg{Conversation: conv}
	}
}

// ApplyLoadedConversation swaps the message store to the loaded conversation.
// Called from the update loop on ConversationLoadedMsg.
func (m *Model) ApplyLoadedConversation(conv *storage.Conversation) {
	m.Chat.Close()
	m.StreamEvents = nil
	m.CurrentConversation = conv
	m.Chat.Store().Reset(toChatMessages(conv.Messages), conv.ConversationID)
	m.ConversationDirty = false
	m.NeedsInitialRender = len(conv.Messages) > 0
}

// SaveCurrentConversation saves the current conversation to storage
func (m *Model) SaveCurrentConversation() tea.Cmd {
	if m.ConversationStorage == nil || m.CurrentConversation == nil {
		return nil
	}

	m.CurrentConversation.Messages = toStorageMessages(m.Messages())
	m.CurrentConversation.ConversationID = m.Chat.Store().ConversationID()
	m.CurrentConversation.UpdatedAt = time.Now()

	conv := m.CurrentConversation
	store := m.ConversationStorage

	return func() tea.Msg {
		err := store.Save(conv)
		if err == nil {
			_ = store.SaveCurrentConversationID(conv.ID)
		}
		return ConversationSavedMsg{Err: err}
	}
}

// AutoSaveConversation saves the current conversation, creating one with a
// generated name if none exists yet
func (m *Model) AutoSaveConversation() tea.Cmd {
	if m.ConversationStorage == nil {
		return nil
	}

	if m.CurrentConversation == nil {
		var firstUserMsg string
		for _, msg := range m.Messages() {
			if msg.Role == "user" {
				firstUserMsg = msg.Content
				break
			}
		}

		m.CurrentConversation = &storage.Conversation{
			Name:      storage.GenerateConversationName(firstUserMsg),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Created conversation '%s'", m.CurrentConversation.Name)
		}
	}

	m.ConversationDirty = false
	return m.SaveCurrentConversation()
}

// NewConversation starts a fresh conversation, saving the current one first
// if it has unsaved messages
func (m *Model) NewConversation() tea.Cmd {
	var save tea.Cmd
	if m.ConversationDirty && len(m.Messages()) > 0 {
		save = m.AutoSaveConversation()
	}

	m.Chat.Close()
	m.StreamEvents = nil
	m.CurrentConversation = nil
	m.Chat.Store().Reset(nil, "")
	m.ConversationDirty = false

	return save
}

// RenameConversation updates a conversation's name
func (m *Model) RenameConversation(id, newName string) tea.Cmd {
	if m.ConversationStorage == nil {
		return nil
	}
	store := m.ConversationStorage
	current := m.CurrentConversation
	return func() tea.Msg {
		err := store.Rename(id, newName)
		if err == nil && current != nil && current.ID == id {
			current.Name = newName
		}
		return ConversationRenamedMsg{Err: err}
	}
}

// DeleteConversation removes a conversation, then refreshes the list
func (m *Model) DeleteConversation(id string) tea.Cmd {
	if m.ConversationStorage == nil {
		return nil
	}
	store := m.ConversationStorage

	if m.CurrentConversation != nil && m.CurrentConversation.ID == id {
		m.CurrentConversation = nil
		m.Chat.Store().Reset(nil, "")
	}

	return func() tea.Msg {
		if err := store.Delete(id); err != nil {
			return ConversationsListMsg{Err: fmt.Errorf("failed to delete conversation: %w", err)}
		}
		conversations, err := store.List()
		return ConversationsListMsg{Conversations: conversations, Err: err}
	}
}

// ExportConversation writes a conversation to a JSON file in Downloads
func (m *Model) ExportConversation(id, name string) tea.Cmd {
	if m.ConversationStorage == nil {
		return nil
	}
	store := m.ConversationStorage
	return func() tea.Msg {
		path := storage.GenerateExportPath(name)
		if err := store.ExportToJSON(id, path); err != nil {
			return ConversationExportedMsg{Err: err}
		}
		return ConversationExportedMsg{Path: path}
	}
}

// SearchConversations searches message content across all saved conversations
func (m *Model) SearchConversations(query string) tea.Cmd {
	if m.SearchIndex == nil {
		return nil
	}
	index := m.SearchIndex
	return func() tea.Msg {
		matches, err := index.SearchAllConversations(query)
		return SearchResultsMsg{Query: query, Matches: matches, Err: err}
	}
}
