package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bitui/metrics"
)

func (a AppView) renderDashboardTab() string {
	var b strings.Builder
	b.WriteString(a.renderFetchErrBanner("summary", "revenue trend", "sales by source"))

	if s := a.dataModel.Summary; s != nil {
		change := fmt.Sprintf("%+.1f%%", s.RevenueChangePct)
		changeStyle := PositiveStyle
		if s.RevenueChangePct < 0 {
			changeStyle = NegativeStyle
		}

		cards := lipgloss.JoinHorizontal(lipgloss.Top,
			renderKPICard("Revenue today", metrics.FormatMoney(s.RevenueToday), CardValueStyle),
			renderKPICard("Revenue 7d", metrics.FormatMoney(s.RevenueWeek), CardValueStyle),
			renderKPICard("Revenue 30d", metrics.FormatMoney(s.RevenueMonth), CardValueStyle),
			renderKPICard("vs prev 30d", change, changeStyle),
		)
		b.WriteString(cards + "\n")

		cards = lipgloss.JoinHorizontal(lipgloss.Top,
			renderKPICard("Orders today", fmt.Sprintf("%d", s.OrdersToday), CardValueStyle),
			renderKPICard("Orders 30d", fmt.Sprintf("%d", s.OrdersMonth), CardValueStyle),
			renderKPICard("Avg order", metrics.FormatMoney(s.AvgOrderValue), CardValueStyle),
			renderKPICard("Top source", s.TopSource, CardValueStyle),
		)
		b.WriteString(cards + "\n")
	} else {
		b.WriteString(DimStyle.Render("Loading summary...") + "\n")
	}

	if t := a.dataModel.Trend; t != nil && len(t.Revenue) > 0 {
		b.WriteString("\n" + SectionTitleStyle.Render("Revenue, last 30 days") + "\n")
		b.WriteString(renderSparkline(t.Revenue, a.width-4) + "\n")

		first, last := t.Revenue[0], t.Revenue[len(t.Revenue)-1]
		b.WriteString(DimStyle.Render(fmt.Sprintf("%s %s ... %s %s",
			trendLabel(t.Labels, 0), metrics.FormatMoney(first),
			trendLabel(t.Labels, len(t.Revenue)-1), metrics.FormatMoney(last))) + "\n")
	}

	if src := a.dataModel.Sources; src != nil {
		b.WriteString("\n" + SectionTitleStyle.Render("Sales by source") + "\n")
		b.WriteString(renderBarChart(metrics.SourceSeries(src, 16), a.width-4) + "\n")
	}

	return b.String()
}

func trendLabel(labels []string, i int) string {
	if i >= 0 && i < len(labels) {
		return labels[i]
	}
	return ""
}

// renderFetchErrBanner joins the error banners for the given sections
func (a AppView) renderFetchErrBanner(sections ...string) string {
	var b strings.Builder
	for _, section := range sections {
		if msg, ok := a.fetchErrs[section]; ok {
			b.WriteString(ErrorBannerStyle.Render(fmt.Sprintf("%s: %s", section, msg)) + "\n")
		}
	}
	return b.String()
}
