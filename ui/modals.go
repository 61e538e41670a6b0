package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderThreeSectionModal is the standard borderless modal: bold centered
// title, bordered message block, bordered footer hint.
func renderThreeSectionModal(title, message, footer string, titleStyle lipgloss.Style, width, height int) string {
	modalWidth := 60
	if width < modalWidth+10 {
		modalWidth = width - 10
	}

	titleSection := titleStyle.
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(title)

	var messageLines []string
	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	for _, line := range strings.Split(message, "\n") {
		messageLines = append(messageLines, messageStyle.Render(line))
	}

	messageLines = append(messageLines, strings.Repeat(" ", modalWidth))

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(strings.Join(messageLines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderConfirmModal(title, message string, width, height int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(dangerColor)
	return renderThreeSectionModal(title, message, "y: Confirm  n/Esc: Cancel", style, width, height)
}

func renderConfirmlessModal(title, message, footer string, width, height int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(successColor)
	return renderThreeSectionModal(title, message, footer, style, width, height)
}

func (a AppView) renderDeleteExpenseConfirm() string {
	e := a.confirmDeleteExpense
	warningText := lipgloss.NewStyle().Foreground(dangerColor).Render("This action cannot be undone.")
	return renderConfirmModal("⚠ Delete Expense",
		fmt.Sprintf("Delete this expense?\n\n%s  %s\n%s  %s\n\n%s",
			e.Date, e.Category, e.Description, formatAmount(e.Amount), warningText),
		a.width, a.height)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
