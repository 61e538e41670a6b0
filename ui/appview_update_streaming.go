package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"bitui/config"
	appmodel "bitui/model"
)

// handleStreamingMessage processes live stream events and markdown render
// completions. The chat client already applied each event to the message
// store before it reaches us, so the viewport just repaints.
func (a AppView) handleStreamingMessage(msg tea.Msg) (AppView, tea.Cmd) {
	switch msg := msg.(type) {
	case appmodel.StreamEventMsg:
		ev := msg.Event

		if appmodel.TerminalEvent(ev) {
			if ev.Err != nil {
				a.flash = "Stream error: " + ev.Err.Error()
			}
			a.updateViewportContent(true)

			var cmds []tea.Cmd
			// Keep draining; the channel closes right after the terminal
			cmds = append(cmds, a.dataModel.WaitForStreamEvent())

			// Final render of the completed assistant message
			messages := a.dataModel.Messages()
			if idx := len(messages) - 1; idx >= 0 && messages[idx].Role == "assistant" && messages[idx].Content != "" {
				cmds = append(cmds, a.renderMarkdownAsync(idx, messages[idx].Content))
			}
			cmds = append(cmds, a.dataModel.AutoSaveConversation())
			if ev.Err != nil {
				cmds = append(cmds, flashTick())
			}
			return a, tea.Batch(cmds...)
		}

		a.updateViewportContent(true)
		return a, a.dataModel.WaitForStreamEvent()

	case appmodel.StreamClosedMsg:
		a.dataModel.StreamEvents = nil
		a.updateViewportContent(true)
		return a, nil

	case appmodel.MarkdownRenderedMsg:
		if msg.MessageIndex >= 0 {
			a.dataModel.Chat.Store().SetRendered(msg.MessageIndex, msg.Rendered)
		}
		a.updateViewportContent(false)
		return a, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] Unhandled streaming message %T", msg)
	}
	return a, nil
}
