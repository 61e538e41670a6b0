package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	appmodel "bitui/model"
	"bitui/storage"
)

// visibleConversations returns the filtered list when a filter is active,
// otherwise the full list
func (a AppView) visibleConversations() []storage.ConversationMetadata {
	if a.conversationFilterInput.Value() != "" {
		return a.filteredConversationList
	}
	return a.conversationList
}

func (a *AppView) applyConversationFilter() {
	query := a.conversationFilterInput.Value()
	if query == "" {
		a.filteredConversationList = nil
		return
	}

	targets := make([]string, len(a.conversationList))
	for i, meta := range a.conversationList {
		targets[i] = meta.Name
	}

	matches := fuzzy.Find(query, targets)
	filtered := make([]storage.ConversationMetadata, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, a.conversationList[match.Index])
	}
	a.filteredConversationList = filtered

	if a.selectedConversationIdx >= len(filtered) {
		a.selectedConversationIdx = 0
	}
}

func (a AppView) handleConversationManagerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	kb := a.keys
	list := a.visibleConversations()

	// Export success notice dismisses on any key
	if a.conversationExportSuccess != "" {
		a.conversationExportSuccess = ""
		return a, nil
	}

	// Delete confirmation takes over all input
	if a.confirmDeleteConversation != nil {
		switch key {
		case "y", "Y", "enter":
			id := a.confirmDeleteConversation.ID
			a.confirmDeleteConversation = nil
			return a, a.dataModel.DeleteConversation(id)
		case "n", "N", "esc":
			a.confirmDeleteConversation = nil
		}
		return a, nil
	}

	if a.conversationRenameMode {
		switch key {
		case "enter":
			newName := strings.TrimSpace(a.conversationRenameInput.Value())
			a.conversationRenameMode = false
			if newName == "" || a.selectedConversationIdx >= len(list) {
				return a, nil
			}
			return a, a.dataModel.RenameConversation(list[a.selectedConversationIdx].ID, newName)
		case "esc":
			a.conversationRenameMode = false
			return a, nil
		}
		var cmd tea.Cmd
		a.conversationRenameInput, cmd = a.conversationRenameInput.Update(msg)
		return a, cmd
	}

	if a.conversationFilterMode {
		switch key {
		case "enter":
			a.conversationFilterMode = false
			return a, nil
		case "esc":
			a.conversationFilterMode = false
			a.conversationFilterInput.SetValue("")
			a.filteredConversationList = nil
			return a, nil
		}
		var cmd tea.Cmd
		a.conversationFilterInput, cmd = a.conversationFilterInput.Update(msg)
		a.applyConversationFilter()
		return a, cmd
	}

	switch key {
	case "esc":
		a.showConversationManager = false
		return a, nil

	case kb.GetActionKey("conversation_down"), "down":
		if a.selectedConversationIdx < len(list)-1 {
			a.selectedConversationIdx++
		}
		return a, nil

	case kb.GetActionKey("conversation_up"), "up":
		if a.selectedConversationIdx > 0 {
			a.selectedConversationIdx--
		}
		return a, nil

	case "enter":
		if a.selectedConversationIdx >= len(list) {
			return a, nil
		}
		return a, a.dataModel.LoadConversation(list[a.selectedConversationIdx].ID)

	case kb.GetActionKey("conversation_rename"):
		if a.selectedConversationIdx >= len(list) {
			return a, nil
		}
		a.conversationRenameMode = true
		a.conversationRenameInput.SetValue(list[a.selectedConversationIdx].Name)
		a.conversationRenameInput.CursorEnd()
		a.conversationRenameInput.Focus()
		return a, nil

	case kb.GetActionKey("conversation_delete"):
		if a.selectedConversationIdx >= len(list) {
			return a, nil
		}
		meta := list[a.selectedConversationIdx]
		a.confirmDeleteConversation = &meta
		return a, nil

	case kb.GetActionKey("conversation_export"):
		if a.selectedConversationIdx >= len(list) {
			return a, nil
		}
		meta := list[a.selectedConversationIdx]
		return a, a.dataModel.ExportConversation(meta.ID, meta.Name)

	case kb.GetActionKey("conversation_filter"):
		a.conversationFilterMode = true
		a.conversationFilterInput.Focus()
		return a, nil
	}

	return a, nil
}

func (a AppView) handleMessageSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showMessageSearch = false
		a.messageSearchInput.Blur()
		return a, nil

	case "tab":
		// Promote the query to a search across all conversations
		a.showMessageSearch = false
		a.showGlobalSearch = true
		a.globalSearchInput.SetValue(a.messageSearchInput.Value())
		a.globalSearchInput.CursorEnd()
		a.globalSearchInput.Focus()
		a.selectedGlobalIdx = 0
		return a, a.dataModel.SearchConversations(a.globalSearchInput.Value())

	case "down", "ctrl+n":
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		return a, nil

	case "up", "ctrl+p":
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		return a, nil

	case "enter":
		if a.selectedSearchIdx >= len(a.messageSearchResults) {
			return a, nil
		}
		match := a.messageSearchResults[a.selectedSearchIdx]
		a.showMessageSearch = false
		a.messageSearchInput.Blur()
		a.activeTab = TabChat
		a.highlightedMessageIdx = match.MessageIndex
		a.highlightFlashCount = 0
		a.updateViewportContent(false)
		a.scrollToMessage(match.MessageIndex)
		return a, flashTick()
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	a.messageSearchResults = a.dataModel.SearchCurrentMessages(a.messageSearchInput.Value())
	if a.selectedSearchIdx >= len(a.messageSearchResults) {
		a.selectedSearchIdx = 0
	}
	return a, cmd
}

func (a AppView) handleGlobalSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.showGlobalSearch = false
		a.globalSearchInput.Blur()
		return a, nil

	case "down", "ctrl+n":
		if a.selectedGlobalIdx < len(a.globalSearchResults)-1 {
			a.selectedGlobalIdx++
		}
		return a, nil

	case "up", "ctrl+p":
		if a.selectedGlobalIdx > 0 {
			a.selectedGlobalIdx--
		}
		return a, nil

	case "enter":
		if a.selectedGlobalIdx >= len(a.globalSearchResults) {
			return a, nil
		}
		match := a.globalSearchResults[a.selectedGlobalIdx]
		a.showGlobalSearch = false
		a.globalSearchInput.Blur()
		a.activeTab = TabChat
		a.pendingHighlightIdx = match.MessageIndex
		return a, a.dataModel.LoadConversation(match.ConversationID)
	}

	var cmd tea.Cmd
	a.globalSearchInput, cmd = a.globalSearchInput.Update(msg)
	return a, tea.Batch(cmd, a.dataModel.SearchConversations(a.globalSearchInput.Value()))
}

// handleConversationMessage applies persistence results to the manager state
func (a AppView) handleConversationMessage(msg tea.Msg) (AppView, tea.Cmd) {
	switch msg := msg.(type) {
	case appmodel.ConversationsListMsg:
		if msg.Err != nil {
			a.flash = "Failed to list conversations: " + msg.Err.Error()
			return a, flashTick()
		}
		a.conversationList = msg.Conversations
		a.applyConversationFilter()
		if n := len(a.visibleConversations()); a.selectedConversationIdx >= n {
			a.selectedConversationIdx = max(0, n-1)
		}
		return a, nil

	case appmodel.ConversationLoadedMsg:
		if msg.Err != nil {
			a.flash = "Failed to load conversation: " + msg.Err.Error()
			return a, flashTick()
		}
		a.dataModel.ApplyLoadedConversation(msg.Conversation)
		a.showConversationManager = false
		a.activeTab = TabChat
		a.textarea.Focus()

		var cmds []tea.Cmd
		if a.dataModel.NeedsInitialRender {
			a.dataModel.NeedsInitialRender = false
			cmds = append(cmds, a.initialRenderCmds())
		}

		a.updateViewportContent(false)
		if a.pendingHighlightIdx >= 0 {
			a.highlightedMessageIdx = a.pendingHighlightIdx
			a.highlightFlashCount = 0
			a.pendingHighlightIdx = -1
			a.scrollToMessage(a.highlightedMessageIdx)
			cmds = append(cmds, flashTick())
		} else {
			a.viewport.GotoBottom()
		}
		return a, tea.Batch(cmds...)

	case appmodel.ConversationSavedMsg:
		if msg.Err != nil {
			a.flash = "Save failed: " + msg.Err.Error()
			return a, flashTick()
		}
		return a, nil

	case appmodel.ConversationRenamedMsg:
		if msg.Err != nil {
			a.flash = "Rename failed: " + msg.Err.Error()
			return a, flashTick()
		}
		return a, a.dataModel.FetchConversationList()

	case appmodel.ConversationExportedMsg:
		if msg.Err != nil {
			a.flash = "Export failed: " + msg.Err.Error()
			return a, flashTick()
		}
		a.conversationExportSuccess = msg.Path
		return a, nil

	case appmodel.SearchResultsMsg:
		if msg.Err != nil || !a.showGlobalSearch {
			return a, nil
		}
		// Drop results for stale queries
		if msg.Query != a.globalSearchInput.Value() {
			return a, nil
		}
		a.globalSearchResults = msg.Matches
		if a.selectedGlobalIdx >= len(a.globalSearchResults) {
			a.selectedGlobalIdx = 0
		}
		return a, nil
	}

	return a, nil
}
