package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bitui/metrics"
)

func (a AppView) renderCustomersTab() string {
	var b strings.Builder
	b.WriteString(a.renderFetchErrBanner("customer insights", "cohort retention", "categories", "brands"))

	if ci := a.dataModel.Insights; ci != nil {
		cards := lipgloss.JoinHorizontal(lipgloss.Top,
			renderKPICard("New (30d)", fmt.Sprintf("%d", ci.NewCustomers), CardValueStyle),
			renderKPICard("Returning (30d)", fmt.Sprintf("%d", ci.ReturningCustomers), CardValueStyle),
			renderKPICard("Repeat rate", fmt.Sprintf("%.1f%%", ci.RepeatRatePct), CardValueStyle),
			renderKPICard("Avg LTV", metrics.FormatMoney(ci.AvgLifetimeValue), CardValueStyle),
		)
		b.WriteString(cards + "\n")

		if len(ci.TopCustomers) > 0 {
			b.WriteString("\n" + SectionTitleStyle.Render("Top customers") + "\n")
			rows := make([][]string, 0, len(ci.TopCustomers))
			for _, c := range ci.TopCustomers {
				rows = append(rows, []string{
					metrics.TruncateLabel(c.Name, 28),
					fmt.Sprintf("%d", c.Orders),
					metrics.FormatMoney(c.Spend),
				})
			}
			b.WriteString(renderTable([]string{"Customer", "Orders", "Spend"}, rows) + "\n")
		}
	} else {
		b.WriteString(DimStyle.Render("Loading customers...") + "\n")
	}

	if ret := a.dataModel.Cohorts; ret != nil {
		b.WriteString("\n" + SectionTitleStyle.Render("Cohort retention") + "\n")
		b.WriteString(renderCohortTable(metrics.ShapeCohorts(ret)) + "\n")
	}

	if cat := a.dataModel.Categories; cat != nil {
		b.WriteString("\n" + SectionTitleStyle.Render("Revenue by category") + "\n")
		b.WriteString(renderBarChart(metrics.BuildSeries(cat.Labels, cat.Values, 16), a.width-4) + "\n")
	}

	if br := a.dataModel.Brands; br != nil {
		b.WriteString("\n" + SectionTitleStyle.Render("Revenue by brand") + "\n")
		b.WriteString(renderBarChart(metrics.BuildSeries(br.Labels, br.Values, 16), a.width-4) + "\n")
	}

	return b.String()
}
