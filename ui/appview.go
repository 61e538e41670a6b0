package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bitui/api"
	"bitui/config"
	appmodel "bitui/model"
	"bitui/storage"
)

// Tab identifies one of the top-level views
type Tab int

const (
	TabDashboard Tab = iota
	TabProducts
	TabCustomers
	TabExpenses
	TabChat
)

var tabNames = []string{"Dashboard", "Products", "Customers", "Expenses", "Chat"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "?"
}

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model
	keys      *config.KeyBindingsConfig

	// UI Components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	activeTab Tab
	showHelp  bool

	// Per-endpoint fetch errors, keyed by a short endpoint name. Shown as a
	// banner on the owning tab; the previous payload stays visible below it.
	fetchErrs map[string]string

	// Expenses table state
	selectedExpenseIdx   int
	confirmDeleteExpense *api.Expense

	// Conversation manager
	showConversationManager   bool
	conversationList          []storage.ConversationMetadata
	selectedConversationIdx   int
	conversationRenameMode    bool
	conversationRenameInput   textinput.Model
	conversationFilterMode    bool
	conversationFilterInput   textinput.Model
	filteredConversationList  []storage.ConversationMetadata
	confirmDeleteConversation *storage.ConversationMetadata
	conversationExportSuccess string

	// Message search within the current conversation
	showMessageSearch    bool
	messageSearchInput   textinput.Model
	messageSearchResults []storage.MessageMatch
	selectedSearchIdx    int

	// Message search across all conversations
	showGlobalSearch    bool
	globalSearchInput   textinput.Model
	globalSearchResults []storage.ConversationMessageMatch
	selectedGlobalIdx   int

	highlightedMessageIdx int
	highlightFlashCount   int

	// Message index to highlight once a searched conversation finishes loading
	pendingHighlightIdx int

	// Transient status line feedback (yank confirmation etc.)
	flash string
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask about your sales, products, customers..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	renameInput := textinput.New()
	renameInput.Prompt = "New name: "
	renameInput.CharLimit = 100

	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 64

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	globalSearchInput := textinput.New()
	globalSearchInput.Prompt = "Search all: "
	globalSearchInput.CharLimit = 100

	keys := dataModel.Config.Keybindings
	if keys == nil {
		keys = config.DefaultKeybindings()
	}

	return AppView{
		dataModel:               dataModel,
		keys:                    keys,
		textarea:                ta,
		viewport:                vp,
		loadingSpinner:          sp,
		activeTab:               TabDashboard,
		fetchErrs:               make(map[string]string),
		conversationRenameInput: renameInput,
		conversationFilterInput: filterInput,
		messageSearchInput:      messageSearchInput,
		globalSearchInput:       globalSearchInput,
		highlightedMessageIdx:   -1,
		pendingHighlightIdx:     -1,
	}
}

func (a AppView) Init() tea.Cmd {
	// Markdown rendering waits for the first WindowSizeMsg so it has a width
	return tea.Batch(
		textarea.Blink,
		a.dataModel.FetchAll(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading bitui..."
	}

	// Modal rendering order (top to bottom layers)
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}
	if a.showConversationManager {
		return a.renderConversationManager()
	}
	if a.showMessageSearch {
		return a.renderMessageSearch()
	}
	if a.showGlobalSearch {
		return a.renderGlobalSearch()
	}
	if a.confirmDeleteExpense != nil {
		return a.renderDeleteExpenseConfirm()
	}

	header := a.renderTabBar()

	var body string
	switch a.activeTab {
	case TabDashboard:
		body = a.renderDashboardTab()
	case TabProducts:
		body = a.renderProductsTab()
	case TabCustomers:
		body = a.renderCustomersTab()
	case TabExpenses:
		body = a.renderExpensesTab()
	case TabChat:
		body = a.renderChatTab()
	}

	status := a.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (a AppView) renderTabBar() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == a.activeTab {
			tabs = append(tabs, ActiveTabStyle.Render("["+name+"]"))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	title := TitleStyle.Render(" bitui ")
	return lipgloss.JoinHorizontal(lipgloss.Top, title, bar)
}

func (a AppView) renderStatusBar() string {
	if a.flash != "" {
		return StatusStyle.Render(a.flash)
	}

	switch a.activeTab {
	case TabChat:
		if a.dataModel.Streaming() {
			return StatusStyle.Render(a.loadingSpinner.View() + " streaming... " +
				FormatFooter(a.keys.DisplayActionKey("quit"), "Quit"))
		}
		return StatusStyle.Render(FormatFooter(
			"Enter", "Send",
			a.keys.DisplayActionKey("new_conversation"), "New",
			a.keys.DisplayActionKey("conversation_manager"), "Conversations",
			a.keys.DisplayActionKey("help"), "Help",
		))
	case TabExpenses:
		return StatusStyle.Render(FormatFooter(
			"j/k", "Navigate",
			"d", "Delete",
			a.keys.DisplayActionKey("refresh"), "Refresh",
			a.keys.DisplayActionKey("help"), "Help",
		))
	default:
		return StatusStyle.Render(FormatFooter(
			"Tab", "Next tab",
			a.keys.DisplayActionKey("refresh"), "Refresh",
			a.keys.DisplayActionKey("help"), "Help",
			a.keys.DisplayActionKey("quit"), "Quit",
		))
	}
}

// fetchForTab returns the fetch command that refreshes the given tab
func (a AppView) fetchForTab(tab Tab) tea.Cmd {
	switch tab {
	case TabDashboard:
		return a.dataModel.FetchDashboard()
	case TabProducts:
		return a.dataModel.FetchProducts()
	case TabCustomers:
		return a.dataModel.FetchCustomers()
	case TabExpenses:
		return a.dataModel.FetchExpenses()
	default:
		return nil
	}
}
