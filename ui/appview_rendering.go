package ui

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"bitui/chat"
	"bitui/config"
	appmodel "bitui/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	messages := a.dataModel.Messages()
	if len(messages) == 0 {
		a.viewport.SetContent(DimStyle.Render("No messages yet. Ask about your sales, inventory, or customers."))
		return
	}

	var content strings.Builder

	for i, msg := range messages {
		content.WriteString(a.renderMessage(i, msg))
	}

	if a.dataModel.Chat.Store().Error() != "" {
		content.WriteString(ErrorBannerStyle.Render("Error: "+a.dataModel.Chat.Store().Error()) + "\n")
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a *AppView) renderMessage(i int, msg chat.Message) string {
	highlightPrefix := ""
	if i == a.highlightedMessageIdx && a.highlightFlashCount%2 == 1 {
		highlightPrefix = HighlightStyle.Render(">>> ")
	}

	timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

	if msg.Role == chat.RoleUser {
		return formatUserMessage(highlightPrefix, timestamp, UserStyle.Render("You"), a.displayContent(msg))
	}

	role := AssistantStyle.Render("Assistant")
	if msg.Role == chat.RoleSystem {
		role = DimStyle.Render("System")
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("%s%s %s\n", highlightPrefix, timestamp, role))

	for _, tc := range msg.ToolCalls {
		body.WriteString(DimStyle.Render(formatToolCall(tc)) + "\n")
	}

	body.WriteString(a.displayContent(msg))
	body.WriteString("\n\n")
	return body.String()
}

// displayContent picks the cached markdown render when one exists, falling
// back to the raw text. A streaming message gets a spinner or block cursor.
func (a *AppView) displayContent(msg chat.Message) string {
	if msg.IsStreaming {
		if msg.Content == "" {
			return a.loadingSpinner.View()
		}
		return msg.Content + "▋"
	}
	if msg.Rendered != "" {
		return msg.Rendered
	}
	return msg.Content
}

// formatToolCall renders a one-line annotation for a backend tool invocation
func formatToolCall(tc chat.ToolCall) string {
	status := "..."
	if tc.Result != nil {
		status = "done"
	}
	if len(tc.Input) > 0 {
		// Sorted so repaints during streaming keep the arguments stable
		keys := make([]string, 0, len(tc.Input))
		for k := range tc.Input {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, tc.Input[k]))
		}
		return fmt.Sprintf("  ⚙ %s(%s) %s", tc.Tool, strings.Join(parts, ", "), status)
	}
	return fmt.Sprintf("  ⚙ %s %s", tc.Tool, status)
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// scrollToMessage positions the viewport so the given message is at the top
func (a *AppView) scrollToMessage(idx int) {
	messages := a.dataModel.Messages()
	if idx <= 0 || idx >= len(messages) {
		a.viewport.GotoTop()
		return
	}

	var preceding strings.Builder
	for i := 0; i < idx; i++ {
		preceding.WriteString(a.renderMessage(i, messages[i]))
	}
	offset := strings.Count(preceding.String(), "\n")
	a.viewport.SetYOffset(offset)
}

func (a AppView) renderMarkdownAsync(messageIndex int, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Starting async markdown render for message %d - length: %d chars", messageIndex, len(content))
		}

		// Strip markdown link syntax so URLs come out as plain text the
		// terminal can make clickable
		content = preprocessLinks(content)

		// Disable autolink to keep plain URLs plain
		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		processed := postProcessMarkdown(string(rendered), width)

		return appmodel.MarkdownRenderedMsg{
			MessageIndex: messageIndex,
			Rendered:     processed,
		}
	}
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	rendered = frameCodeBlocks(rendered, width)
	return rendered
}

func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Blue background + italic from the renderer reads poorly; use red text
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		// Skip code blocks (they carry the ┃ prefix from the renderer)
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	closeBlock := func() {
		result = append(result, codeBlockLines...)
		result = append(result, "")
		border := darkGray + strings.Repeat("━", max(width-4, 1)) + reset
		result = append(result, border, "")
		codeBlockLines = nil
		inCodeBlock = false
	}

	for _, line := range lines {
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLines = []string{}
				result = append(result, "")

				label := "[code]"
				lineLen := max(width-4, len(label))
				leftLen := (lineLen - len(label)) / 2
				rightLen := lineLen - len(label) - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border, "")
			}

			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
		} else {
			if inCodeBlock {
				closeBlock()
			}
			result = append(result, line)
		}
	}

	if inCodeBlock && len(codeBlockLines) > 0 {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, "┃")
	if idx >= 0 {
		after := idx + len("┃")
		if after < len(line) && line[after] == ' ' {
			after++
		}
		return line[after:]
	}
	return line
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
