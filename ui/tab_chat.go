package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderChatTab() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		a.viewport.View(),
		a.textarea.View(),
	)
}
