package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bitui/metrics"
)

// renderMessageSearch draws the search modal over the current conversation
func (a AppView) renderMessageSearch() string {
	return a.renderSearchModal(
		"Search Messages",
		a.messageSearchInput.View(),
		a.messageSearchLines(),
		"↑/↓: Navigate  Enter: Jump  Tab: All conversations  Esc: Close",
	)
}

// renderGlobalSearch draws the search modal spanning every saved conversation
func (a AppView) renderGlobalSearch() string {
	return a.renderSearchModal(
		"Search All Conversations",
		a.globalSearchInput.View(),
		a.globalSearchLines(),
		"↑/↓: Navigate  Enter: Open  Esc: Close",
	)
}

func (a AppView) messageSearchLines() []string {
	modalWidth := a.searchModalWidth()
	var lines []string
	for i, match := range a.messageSearchResults {
		indicator := "  "
		if i == a.selectedSearchIdx {
			indicator = "▶ "
		}
		role := roleTag(match.Role)
		line := fmt.Sprintf("%s%s %s", indicator, role, match.Preview)
		if i == a.selectedSearchIdx {
			line = SelectedStyle.Render(line)
		}
		lines = append(lines, truncateVisual(line, modalWidth-2))
	}
	return lines
}

func (a AppView) globalSearchLines() []string {
	modalWidth := a.searchModalWidth()
	var lines []string
	for i, match := range a.globalSearchResults {
		indicator := "  "
		if i == a.selectedGlobalIdx {
			indicator = "▶ "
		}
		name := metrics.TruncateLabel(match.ConversationName, 24)
		line := fmt.Sprintf("%s[%s] %s %s", indicator, name, roleTag(match.Role), match.Preview)
		if i == a.selectedGlobalIdx {
			line = SelectedStyle.Render(line)
		}
		lines = append(lines, truncateVisual(line, modalWidth-2))
	}
	return lines
}

func roleTag(role string) string {
	if role == "user" {
		return UserStyle.Render("You:")
	}
	return AssistantStyle.Render("AI:")
}

func (a AppView) searchModalWidth() int {
	modalWidth := a.width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}
	return modalWidth
}

func (a AppView) renderSearchModal(title, input string, results []string, footer string) string {
	modalWidth := a.searchModalWidth()
	maxLines := a.height - 10

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(title)

	inputSection := lipgloss.NewStyle().
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(input)

	if len(results) == 0 {
		results = []string{lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render("No matches")}
	} else if len(results) > maxLines && maxLines > 0 {
		results = results[:maxLines]
	}
	listSection := strings.Join(results, "\n")

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, inputSection, listSection, footerSection}, "\n")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// truncateVisual cuts a styled line to the given visible width
func truncateVisual(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	// Cheap cut: strip styling rather than slicing through ANSI codes.
	// Width is measured in cells so wide runes don't overflow the modal.
	return metrics.TruncateLabel(stripANSI(s), width)
}
