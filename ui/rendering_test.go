package ui

import (
	"strings"
	"testing"

	"bitui/chat"
)

func TestFormatToolCallStableArgumentOrder(t *testing.T) {
	tc := chat.ToolCall{
		Tool:  "query_sales",
		Input: map[string]any{"source": "web", "days": 7, "brand": "acme"},
	}

	first := formatToolCall(tc)
	want := "  ⚙ query_sales(brand=acme, days=7, source=web) ..."
	if first != want {
		t.Fatalf("expected %q, got %q", want, first)
	}

	// Map iteration order must not leak into repaints
	for i := 0; i < 20; i++ {
		if got := formatToolCall(tc); got != first {
			t.Fatalf("argument order changed between renders: %q vs %q", first, got)
		}
	}
}

func TestFormatToolCallStatus(t *testing.T) {
	pending := chat.ToolCall{Tool: "lookup"}
	if got := formatToolCall(pending); got != "  ⚙ lookup ..." {
		t.Errorf("unexpected pending render: %q", got)
	}

	done := chat.ToolCall{Tool: "lookup", Result: map[string]any{"rows": 3}}
	if got := formatToolCall(done); got != "  ⚙ lookup done" {
		t.Errorf("unexpected done render: %q", got)
	}
}

func TestTruncateVisualCutsOnCells(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits untouched", "short line", 20, "short line"},
		{"ascii cut", "abcdefghij", 5, "abcd…"},
		{"wide runes count double", "日本語の会話", 7, "日本語…"},
		{"styled line stripped before cut", "\x1b[1mabcdefghij\x1b[0m", 5, "abcd…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateVisual(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if strings.Contains(got, "�") {
				t.Errorf("truncation split a rune: %q", got)
			}
		})
	}
}
