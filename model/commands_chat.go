package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"bitui/chat"
	"bitui/config"
)

// SendChat starts a streaming exchange. The store is updated synchronously
// with the user message and assistant placeholder before this returns, so
// the UI can repaint immediately; the returned command waits for the first
// stream event.
func (m *Model) SendChat(message string) tea.Cmd {
	events, err := m.Chat.Send(message)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Send rejected: %v", err)
		}
		return nil
	}

	m.StreamEvents = events
	m.ConversationDirty = true
	return m.WaitForStreamEvent()
}

// WaitForStreamEvent blocks on the live event channel and converts the next
// event to a tea.Msg. The update loop re-issues this command after every
// StreamEventMsg until the channel closes.
func (m *Model) WaitForStreamEvent() tea.Cmd {
	events := m.StreamEvents
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return StreamEventMsg{Event: ev}
	}
}

// StopStream closes the live connection, if any. The stream goroutine
// delivers the error terminal through the usual event path.
func (m *Model) StopStream() {
	m.Chat.Close()
}

// TerminalEvent reports whether ev ends the stream
func TerminalEvent(ev chat.Event) bool {
	return ev.Kind == chat.EventEnd || ev.Kind == chat.EventError
}
