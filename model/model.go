package model

import (
	"bitui/api"
	"bitui/chat"
	"bitui/config"
	"bitui/storage"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config              *config.Config
	API                 *api.Client
	Chat                *chat.Client
	ConversationStorage *storage.ConversationStorage
	SearchIndex         *storage.SearchIndex

	// Fetched analytics data, nil until the first successful fetch
	Summary        *api.Summary
	Trend          *api.RevenueTrend
	Sources        *api.SalesBySource
	TopProducts    *api.TopProducts
	Inventory      *api.Inventory
	DeadStock      *api.DeadStock
	ABC            *api.ABCClassification
	Insights       *api.CustomerInsights
	Categories     *api.Series
	Brands         *api.Series
	Cohorts        *api.CohortRetention
	Expenses       *api.Expenses
	ExpenseSummary *api.ExpenseSummary

	// Chat state
	CurrentConversation *storage.Conversation
	StreamEvents        <-chan chat.Event

	// Runtime state (not UI)
	ConversationDirty  bool
	NeedsInitialRender bool
	Quitting           bool

	// Application metadata
	Version string
}

// NewModel creates a new Model with the given configuration
func NewModel(cfg *config.Config, apiClient *api.Client, chatClient *chat.Client, conversationStorage *storage.ConversationStorage, lastConversation *storage.Conversation, searchIndex *storage.SearchIndex, version string) *Model {
	m := &Model{
		Config:              cfg,
		API:                 apiClient,
		Chat:                chatClient,
		ConversationStorage: conversationStorage,
		SearchIndex:         searchIndex,
		CurrentConversation: lastConversation,
		Version:             version,
	}

	// Seed the message store from the last conversation so the chat tab
	// resumes where the user left off
	if lastConversation != nil {
		m.Chat.Store().Reset(toChatMessages(lastConversation.Messages), lastConversation.ConversationID)
		m.NeedsInitialRender = len(lastConversation.Messages) > 0
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Resumed conversation '%s' (%d messages)",
				lastConversation.Name, len(lastConversation.Messages))
		}
	}

	return m
}

// Messages returns a snapshot of the chat message log
func (m *Model) Messages() []chat.Message {
	return m.Chat.Store().Messages()
}

// Streaming reports whether an assistant response is currently arriving
func (m *Model) Streaming() bool {
	return m.Chat.Store().Loading()
}

func toChatMessages(stored []storage.Message) []chat.Message {
	out := make([]chat.Message, len(stored))
	for i, msg := range stored {
		out[i] = chat.Message{
			Role:      msg.Role,
			Content:   msg.Content,
			Rendered:  msg.Rendered,
			Timestamp: msg.Timestamp,
			ToolCalls: toChatToolCalls(msg.ToolCalls),
		}
	}
	return out
}

func toChatToolCalls(stored []storage.ToolCall) []chat.ToolCall {
	if len(stored) == 0 {
		return nil
	}
	out := make([]chat.ToolCall, len(stored))
	for i, tc := range stored {
		out[i] = chat.ToolCall{Tool: tc.Tool, Input: tc.Input, Result: tc.Result}
	}
	return out
}

func toStorageMessages(messages []chat.Message) []storage.Message {
	var out []storage.Message
	for _, msg := range messages {
		if msg.Role != chat.RoleUser && msg.Role != chat.RoleAssistant {
			continue
		}
		out = append(out, storage.Message{
			Role:      msg.Role,
			Content:   msg.Content,
			Rendered:  msg.Rendered,
			Timestamp: msg.Timestamp,
			ToolCalls: toStorageToolCalls(msg.ToolCalls),
		})
	}
	return out
}

func toStorageToolCalls(calls []chat.ToolCall) []storage.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]storage.ToolCall, len(calls))
	for i, tc := range calls {
		out[i] = storage.ToolCall{Tool: tc.Tool, Input: tc.Input, Result: tc.Result}
	}
	return out
}

// SearchCurrentMessages runs a substring search over the live message log
func (m *Model) SearchCurrentMessages(query string) []storage.MessageMatch {
	return storage.SearchMessages(toStorageMessages(m.Messages()), query)
}
