package ui

import (
	"fmt"
	"strings"

	"bitui/metrics"
)

func (a AppView) renderExpensesTab() string {
	var b strings.Builder
	b.WriteString(a.renderFetchErrBanner("expenses", "expense summary"))

	if es := a.dataModel.ExpenseSummary; es != nil {
		b.WriteString(SectionTitleStyle.Render("Expenses by category") + "\n")
		b.WriteString(renderBarChart(metrics.BuildSeries(es.ByCategory.Labels, es.ByCategory.Values, 16), a.width-4) + "\n")
		b.WriteString(DimStyle.Render("Total: ") + CardValueStyle.Render(metrics.FormatMoney(es.Total)) + "\n\n")
	}

	exp := a.dataModel.Expenses
	if exp == nil {
		b.WriteString(DimStyle.Render("Loading expenses...") + "\n")
		return b.String()
	}

	b.WriteString(SectionTitleStyle.Render("Recent expenses") + "\n")
	if len(exp.Expenses) == 0 {
		b.WriteString(DimStyle.Render("No expenses recorded.") + "\n")
		return b.String()
	}

	for i, e := range exp.Expenses {
		line := fmt.Sprintf("%-10s  %-14s  %-32s  %10s",
			e.Date,
			metrics.TruncateLabel(e.Category, 14),
			metrics.TruncateLabel(e.Description, 32),
			metrics.FormatMoney(e.Amount))
		if i == a.selectedExpenseIdx {
			b.WriteString(SelectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("%d expenses, %s total",
		len(exp.Expenses), metrics.FormatMoney(exp.Total))) + "\n")

	return b.String()
}
