package model

import (
	"bitui/api"
	"bitui/chat"
	"bitui/storage"
)

// StreamEventMsg wraps one chat stream event for the update loop
type StreamEventMsg struct {
	Event chat.Event
}

// StreamClosedMsg signals the event channel closed (terminal already seen,
// or the stream was superseded)
type StreamClosedMsg struct{}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

// Analytics fetch results. Err is set on failure; the previous payload stays
// on the Model so the dashboard keeps showing the last good data.

type SummaryMsg struct {
	Summary *api.Summary
	Err     error
}

type RevenueTrendMsg struct {
	Trend *api.RevenueTrend
	Err   error
}

type SalesBySourceMsg struct {
	Sources *api.SalesBySource
	Err     error
}

type TopProductsMsg struct {
	Products *api.TopProducts
	Err      error
}

type InventoryMsg struct {
	Inventory *api.Inventory
	Err       error
}

type DeadStockMsg struct {
	Stock *api.DeadStock
	Err   error
}

type ABCMsg struct {
	Classification *api.ABCClassification
	Err            error
}

type CustomerInsightsMsg struct {
	Insights *api.CustomerInsights
	Err      error
}

type CategoriesMsg struct {
	Series *api.Series
	Err    error
}

type BrandsMsg struct {
	Series *api.Series
	Err    error
}

type CohortRetentionMsg struct {
	Retention *api.CohortRetention
	Err       error
}

type ExpensesMsg struct {
	Expenses *api.Expenses
	Err      error
}

type ExpenseSummaryMsg struct {
	Summary *api.ExpenseSummary
	Err     error
}

type ExpenseDeletedMsg struct {
	ID  string
	Err error
}

// Conversation persistence results

type ConversationsListMsg struct {
	Conversations []storage.ConversationMetadata
	Err           error
}

type ConversationLoadedMsg struct {
	Conversation *storage.Conversation
	Err          error
}

type ConversationSavedMsg struct {
	Err error
}

type ConversationRenamedMsg struct {
	Err error
}

type ConversationExportedMsg struct {
	Path string
	Err  error
}

type SearchResultsMsg struct {
	Query   string
	Matches []storage.ConversationMessageMatch
	Err     error
}

type FlashTickMsg struct{}
