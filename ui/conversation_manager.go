package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"bitui/metrics"
)

// renderConversationManager draws the borderless three-section modal listing
// saved conversations with rename, delete, export and filter modes.
func (a AppView) renderConversationManager() string {
	modalWidth := a.width - 10
	if modalWidth > 110 {
		modalWidth = 110
	}
	modalHeight := a.height - 6

	if a.confirmDeleteConversation != nil {
		warningText := lipgloss.NewStyle().Foreground(dangerColor).Render("This action cannot be undone.")
		return renderConfirmModal("⚠ Delete Conversation",
			fmt.Sprintf("Are you sure you want to delete:\n\n\"%s\"\n\n%s", a.confirmDeleteConversation.Name, warningText),
			a.width, a.height)
	}

	if a.conversationExportSuccess != "" {
		return renderConfirmlessModal("Export Complete",
			fmt.Sprintf("Saved to:\n\n%s", a.conversationExportSuccess),
			"Press any key to continue", a.width, a.height)
	}

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Conversations")

	// Header: filter input or count
	var header string
	displayList := a.visibleConversations()
	if a.conversationFilterMode {
		header = a.conversationFilterInput.View()
	} else if len(displayList) == len(a.conversationList) {
		header = fmt.Sprintf("%d conversations", len(a.conversationList))
	} else {
		header = fmt.Sprintf("%d of %d conversations", len(displayList), len(a.conversationList))
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	currentID := ""
	if a.dataModel.CurrentConversation != nil {
		currentID = a.dataModel.CurrentConversation.ID
	}

	var lines []string
	maxLines := modalHeight - 8

	if len(displayList) == 0 {
		emptyMsg := "No conversations yet. Start chatting to create one!"
		if a.conversationFilterInput.Value() != "" {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx, endIdx := listWindow(len(displayList), a.selectedConversationIdx, maxLines)

		for i := startIdx; i < endIdx; i++ {
			meta := displayList[i]

			indicator := "  "
			if i == a.selectedConversationIdx {
				indicator = "▶ "
			}

			var nameDisplay string
			if a.conversationRenameMode && i == a.selectedConversationIdx {
				nameDisplay = lipgloss.NewStyle().
					Foreground(accentColor).
					Bold(true).
					Render(a.conversationRenameInput.View())
			} else {
				nameDisplay = metrics.TruncateLabel(meta.Name, modalWidth-40)
			}

			msgCount := fmt.Sprintf("%d msgs", meta.MessageCount)
			if meta.MessageCount == 1 {
				msgCount = "1 msg"
			}
			rightSide := fmt.Sprintf("%s  %8s", msgCount, formatTimeAgo(meta.UpdatedAt))

			nameStyled := nameDisplay
			if !a.conversationRenameMode {
				if i == a.selectedConversationIdx {
					nameStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(nameDisplay)
				} else if meta.ID == currentID {
					nameStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(nameDisplay)
				}
			}

			leftSide := indicator + nameStyled

			// Cell widths, not byte lengths: names may carry wide runes and
			// the rename input view carries ANSI codes
			leftVisualWidth := lipgloss.Width(indicator) + lipgloss.Width(nameDisplay)
			spacing := modalWidth - 4 - leftVisualWidth - lipgloss.Width(rightSide)
			if meta.ID == currentID {
				spacing -= 10 // " (current)"
			}
			if spacing < 2 {
				spacing = 2
			}

			if meta.ID == currentID {
				markerColor := accentColor
				if i == a.selectedConversationIdx {
					markerColor = successColor
				}
				leftSide += " " + lipgloss.NewStyle().Foreground(markerColor).Render("(current)")
			}

			lines = append(lines, fmt.Sprintf("  %s%s%s", leftSide, strings.Repeat(" ", spacing), DimStyle.Render(rightSide)))
		}
	}

	listSection := strings.Join(lines, "\n")

	footer := FormatFooter(
		a.keys.DisplayActionKey("conversation_up")+"/"+a.keys.DisplayActionKey("conversation_down"), "Navigate",
		"Enter", "Open",
		a.keys.DisplayActionKey("conversation_rename"), "Rename",
		a.keys.DisplayActionKey("conversation_delete"), "Delete",
		a.keys.DisplayActionKey("conversation_export"), "Export",
		a.keys.DisplayActionKey("conversation_filter"), "Filter",
		"Esc", "Close",
	)
	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, headerSection, listSection, footerSection}, "\n")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// listWindow picks the visible slice bounds so the selection stays centered
func listWindow(total, selected, maxLines int) (int, int) {
	if maxLines <= 0 || total <= maxLines {
		return 0, total
	}
	if selected < maxLines/2 {
		return 0, maxLines
	}
	if selected >= total-maxLines/2 {
		return total - maxLines, total
	}
	start := selected - maxLines/2
	return start, start + maxLines
}

// formatTimeAgo formats a time as a relative string (e.g., "2h ago", "3d ago")
func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	} else if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	} else if duration < 30*24*time.Hour {
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	}
	return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
}
