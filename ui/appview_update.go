package ui

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"bitui/api"
	"bitui/config"
	appmodel "bitui/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Update spinner FIRST to handle TickMsg before anything else
	if a.dataModel.Streaming() {
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for tab bar (1), separator (1), textarea (3), status bar (1)
		viewportHeight := a.height - 6
		a.viewport.Width = a.width
		a.viewport.Height = viewportHeight
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)

		// Render resumed messages now that we have a width
		if a.dataModel.NeedsInitialRender {
			a.dataModel.NeedsInitialRender = false
			return a, a.initialRenderCmds()
		}

		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg, cmds)

	case appmodel.StreamEventMsg, appmodel.StreamClosedMsg, appmodel.MarkdownRenderedMsg:
		a, cmd = a.handleStreamingMessage(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case appmodel.SummaryMsg, appmodel.RevenueTrendMsg, appmodel.SalesBySourceMsg,
		appmodel.TopProductsMsg, appmodel.InventoryMsg, appmodel.DeadStockMsg,
		appmodel.ABCMsg, appmodel.CustomerInsightsMsg, appmodel.CategoriesMsg,
		appmodel.BrandsMsg, appmodel.CohortRetentionMsg, appmodel.ExpensesMsg,
		appmodel.ExpenseSummaryMsg, appmodel.ExpenseDeletedMsg:
		a, cmd = a.handleDataMessage(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case appmodel.ConversationsListMsg, appmodel.ConversationLoadedMsg,
		appmodel.ConversationSavedMsg, appmodel.ConversationRenamedMsg,
		appmodel.ConversationExportedMsg, appmodel.SearchResultsMsg:
		a, cmd = a.handleConversationMessage(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case appmodel.FlashTickMsg:
		a.flash = ""
		if a.highlightedMessageIdx >= 0 {
			a.highlightFlashCount++
			if a.highlightFlashCount >= 6 {
				a.highlightedMessageIdx = -1
				a.highlightFlashCount = 0
			}
			a.updateViewportContent(false)
			if a.highlightedMessageIdx >= 0 {
				return a, flashTick()
			}
		}
		return a, nil
	}

	// Forward everything else to the focused chat components
	if a.activeTab == TabChat {
		a.viewport, cmd = a.viewport.Update(msg)
		cmds = append(cmds, cmd)
		a.textarea, cmd = a.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func flashTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
		return appmodel.FlashTickMsg{}
	})
}

func (a AppView) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	key := msg.String()
	kb := a.keys

	// PRIORITY 0: quit works everywhere
	if key == kb.GetActionKey("quit") {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Quit requested")
		}
		a.dataModel.Quitting = true
		a.dataModel.StopStream()

		if a.dataModel.ConversationDirty && len(a.dataModel.Messages()) > 0 {
			return a, tea.Sequence(a.dataModel.AutoSaveConversation(), tea.Quit)
		}
		return a, tea.Quit
	}

	// PRIORITY 1: modal routing - open modals consume keys first
	if a.showHelp {
		if key == "esc" || key == kb.GetActionKey("help") {
			a.showHelp = false
		}
		return a, nil
	}
	if a.showConversationManager {
		return a.handleConversationManagerKey(msg)
	}
	if a.showMessageSearch {
		return a.handleMessageSearchKey(msg)
	}
	if a.showGlobalSearch {
		return a.handleGlobalSearchKey(msg)
	}
	if a.confirmDeleteExpense != nil {
		return a.handleDeleteExpenseConfirmKey(msg)
	}

	// PRIORITY 2: global shortcuts
	switch key {
	case kb.GetActionKey("help"):
		a.showHelp = true
		return a, nil

	case kb.GetActionKey("next_tab"):
		return a.switchTab(Tab((int(a.activeTab) + 1) % len(tabNames)))

	case kb.GetActionKey("prev_tab"):
		return a.switchTab(Tab((int(a.activeTab) + len(tabNames) - 1) % len(tabNames)))

	case kb.GetActionKey("tab_dashboard"):
		return a.switchTab(TabDashboard)
	case kb.GetActionKey("tab_products"):
		return a.switchTab(TabProducts)
	case kb.GetActionKey("tab_customers"):
		return a.switchTab(TabCustomers)
	case kb.GetActionKey("tab_expenses"):
		return a.switchTab(TabExpenses)
	case kb.GetActionKey("tab_chat"):
		return a.switchTab(TabChat)

	case kb.GetActionKey("refresh"):
		a.flash = "Refreshing..."
		return a, tea.Batch(a.fetchForTab(a.activeTab), flashTick())

	case kb.GetActionKey("new_conversation"):
		a.activeTab = TabChat
		a.textarea.Reset()
		cmd := a.dataModel.NewConversation()
		a.updateViewportContent(true)
		return a, cmd

	case kb.GetActionKey("conversation_manager"):
		a.showConversationManager = true
		a.selectedConversationIdx = 0
		a.conversationFilterMode = false
		a.conversationRenameMode = false
		a.confirmDeleteConversation = nil
		a.conversationExportSuccess = ""
		return a, a.dataModel.FetchConversationList()

	case kb.GetActionKey("search_messages"):
		a.showMessageSearch = true
		a.messageSearchInput.Focus()
		a.messageSearchInput.SetValue("")
		a.messageSearchResults = nil
		a.selectedSearchIdx = 0
		return a, textinput.Blink
	}

	// PRIORITY 3: tab-specific keys
	switch a.activeTab {
	case TabChat:
		return a.handleChatKey(msg, cmds)
	case TabExpenses:
		return a.handleExpensesKey(msg)
	}

	return a, tea.Batch(cmds...)
}

func (a AppView) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	a.activeTab = tab
	if tab == TabChat {
		a.textarea.Focus()
		a.updateViewportContent(true)
		return a, textarea.Blink
	}
	a.textarea.Blur()
	// Refetch on entry; the response cache absorbs rapid tab switching
	return a, a.fetchForTab(tab)
}

func (a AppView) handleChatKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	kb := a.keys
	key := msg.String()

	switch key {
	case "enter":
		text := strings.TrimSpace(a.textarea.Value())
		if text == "" {
			return a, nil
		}
		if a.dataModel.Streaming() {
			// A new send supersedes the in-flight stream
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] Superseding in-flight stream with new send")
			}
		}
		a.textarea.Reset()
		sendCmd := a.dataModel.SendChat(text)
		a.updateViewportContent(true)
		return a, tea.Batch(sendCmd, a.loadingSpinner.Tick)

	case kb.GetActionKey("scroll_down"):
		a.viewport.LineDown(1)
		return a, nil
	case kb.GetActionKey("scroll_up"):
		a.viewport.LineUp(1)
		return a, nil
	case kb.GetActionKey("half_page_down"):
		a.viewport.HalfViewDown()
		return a, nil
	case kb.GetActionKey("half_page_up"):
		a.viewport.HalfViewUp()
		return a, nil
	case kb.GetActionKey("page_down"):
		a.viewport.ViewDown()
		return a, nil
	case kb.GetActionKey("page_up"):
		a.viewport.ViewUp()
		return a, nil
	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil
	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil

	case kb.GetActionKey("yank_last_response"):
		return a.yankLastResponse()

	case kb.GetActionKey("clear_input"):
		a.textarea.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) yankLastResponse() (tea.Model, tea.Cmd) {
	messages := a.dataModel.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" && messages[i].Content != "" {
			if err := clipboard.WriteAll(messages[i].Content); err != nil {
				a.flash = "Clipboard unavailable"
			} else {
				a.flash = "Copied last response"
			}
			return a, flashTick()
		}
	}
	a.flash = "Nothing to copy"
	return a, flashTick()
}

func (a AppView) handleExpensesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys
	expenses := a.expenseRows()

	switch msg.String() {
	case kb.GetActionKey("expense_down"), "down":
		if a.selectedExpenseIdx < len(expenses)-1 {
			a.selectedExpenseIdx++
		}
		return a, nil
	case kb.GetActionKey("expense_up"), "up":
		if a.selectedExpenseIdx > 0 {
			a.selectedExpenseIdx--
		}
		return a, nil
	case kb.GetActionKey("delete_expense"):
		if a.selectedExpenseIdx < len(expenses) {
			expense := expenses[a.selectedExpenseIdx]
			a.confirmDeleteExpense = &expense
		}
		return a, nil
	}
	return a, nil
}

func (a AppView) handleDeleteExpenseConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := a.confirmDeleteExpense.ID
		a.confirmDeleteExpense = nil
		return a, a.dataModel.DeleteExpense(id)
	case "n", "N", "esc":
		a.confirmDeleteExpense = nil
		return a, nil
	}
	return a, nil
}

func (a AppView) expenseRows() []api.Expense {
	if a.dataModel.Expenses == nil {
		return nil
	}
	return a.dataModel.Expenses.Expenses
}

// initialRenderCmds queues markdown rendering for every message loaded from
// disk that has no cached render yet
func (a AppView) initialRenderCmds() tea.Cmd {
	var renderCmds []tea.Cmd
	messages := a.dataModel.Messages()
	for i := range messages {
		if messages[i].Role != "user" && messages[i].Role != "assistant" {
			continue
		}
		if messages[i].Rendered != "" && messages[i].Rendered != messages[i].Content {
			continue
		}
		renderCmds = append(renderCmds, a.renderMarkdownAsync(i, messages[i].Content))
	}
	return tea.Batch(renderCmds...)
}
