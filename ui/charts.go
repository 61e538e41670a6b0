package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"bitui/metrics"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// renderBarChart draws a horizontal bar chart, one row per point. Labels are
// right-aligned in a fixed column so the bars line up.
func renderBarChart(points []metrics.Point, width int) string {
	if len(points) == 0 {
		return DimStyle.Render("no data")
	}

	labelWidth := 0
	maxValue := 0.0
	for _, p := range points {
		if w := runewidth.StringWidth(p.Label); w > labelWidth {
			labelWidth = w
		}
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}

	// label + space + bar + space + "$123.45 (99.9%)"
	barWidth := width - labelWidth - 20
	if barWidth < 4 {
		barWidth = 4
	}

	var b strings.Builder
	for _, p := range points {
		barLen := 0
		if maxValue > 0 {
			barLen = int(p.Value / maxValue * float64(barWidth))
		}
		if barLen < 1 && p.Value > 0 {
			barLen = 1
		}

		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).
			Render(strings.Repeat("█", barLen))

		pad := strings.Repeat(" ", labelWidth-runewidth.StringWidth(p.Label))
		b.WriteString(fmt.Sprintf("%s%s %s %s %s\n",
			pad, p.Label, bar,
			metrics.FormatMoney(p.Value),
			DimStyle.Render(fmt.Sprintf("(%.1f%%)", p.SharePct))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSparkline compresses a series into one line of block runes
func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return DimStyle.Render("no data")
	}

	// Downsample by averaging buckets when the series is wider than the line
	if width > 0 && len(values) > width {
		buckets := make([]float64, width)
		per := float64(len(values)) / float64(width)
		for i := range buckets {
			start := int(float64(i) * per)
			end := int(float64(i+1) * per)
			if end > len(values) {
				end = len(values)
			}
			if end <= start {
				end = start + 1
			}
			sum := 0.0
			for _, v := range values[start:end] {
				sum += v
			}
			buckets[i] = sum / float64(end-start)
		}
		values = buckets
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	var b strings.Builder
	span := maxV - minV
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - minV) / span * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// renderCohortTable draws the retention heat table. Unknown cells (periods a
// cohort has not lived through yet) render blank instead of 0%.
func renderCohortTable(rows []metrics.CohortRow) string {
	if len(rows) == 0 {
		return DimStyle.Render("no data")
	}

	periods := len(rows[0].Cells)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-12s %6s", "Cohort", "Size"))
	for p := 0; p < periods; p++ {
		b.WriteString(fmt.Sprintf(" %6s", fmt.Sprintf("M%d", p)))
	}
	b.WriteString("\n")

	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-12s %6d", metrics.TruncateLabel(row.Label, 12), row.Size))
		for _, cell := range row.Cells {
			if !cell.Known {
				b.WriteString(fmt.Sprintf(" %6s", ""))
				continue
			}
			b.WriteString(" " + cohortCellStyle(cell.Pct).Render(fmt.Sprintf("%5.1f%%", cell.Pct)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func cohortCellStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 40:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	case pct >= 20:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	case pct > 0:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	default:
		return DimStyle
	}
}

// renderKPICard draws a bordered card with a dim label over a bold value
func renderKPICard(label, value string, accent lipgloss.Style) string {
	content := CardLabelStyle.Render(label) + "\n" + accent.Render(value)
	return CardStyle.Render(content)
}

// renderTable draws rows under a header with columns padded to fit
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-runewidth.StringWidth(s))
	}

	var b strings.Builder
	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = pad(h, widths[i])
	}
	b.WriteString(DimStyle.Render(strings.Join(headerCells, "  ")) + "\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(widths) {
				cells[i] = pad(cell, widths[i])
			} else {
				cells[i] = cell
			}
		}
		b.WriteString(strings.Join(cells, "  ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
