package ui

import (
	"fmt"
	"strings"

	"bitui/metrics"
)

func (a AppView) renderProductsTab() string {
	var b strings.Builder
	b.WriteString(a.renderFetchErrBanner("top products", "inventory", "dead stock", "abc classification"))

	if tp := a.dataModel.TopProducts; tp != nil {
		b.WriteString(SectionTitleStyle.Render("Top products by revenue") + "\n")
		b.WriteString(renderBarChart(metrics.ProductSeries(tp, 24), a.width-4) + "\n\n")
	} else {
		b.WriteString(DimStyle.Render("Loading products...") + "\n")
	}

	if inv := a.dataModel.Inventory; inv != nil {
		kpis := metrics.DeriveTurnover(inv)
		limit := 8
		if len(kpis) < limit {
			limit = len(kpis)
		}

		b.WriteString(SectionTitleStyle.Render("Slowest turnover") + "\n")
		rows := make([][]string, 0, limit)
		for _, kpi := range kpis[:limit] {
			flag := ""
			if kpi.SlowMoving {
				flag = NegativeStyle.Render("slow")
			}
			rows = append(rows, []string{
				kpi.SKU,
				metrics.TruncateLabel(kpi.Name, 24),
				fmt.Sprintf("%d", kpi.Stock),
				fmt.Sprintf("%.2f", kpi.MonthlyRate),
				formatWeeksOnHand(kpi.WeeksOnHand),
				flag,
			})
		}
		b.WriteString(renderTable([]string{"SKU", "Product", "Stock", "Turns/mo", "Weeks", ""}, rows) + "\n\n")
	}

	if ds := a.dataModel.DeadStock; ds != nil {
		b.WriteString(SectionTitleStyle.Render("Dead stock by age") + "\n")
		rows := make([][]string, 0, 4)
		for _, bucket := range metrics.BucketDeadStock(ds) {
			rows = append(rows, []string{
				bucket.Label,
				fmt.Sprintf("%d", bucket.Items),
				metrics.FormatMoney(bucket.StockValue),
			})
		}
		b.WriteString(renderTable([]string{"Age", "Items", "Stock value"}, rows) + "\n\n")
	}

	if abc := a.dataModel.ABC; abc != nil {
		b.WriteString(SectionTitleStyle.Render("ABC classification") + "\n")
		rows := make([][]string, 0, 3)
		for _, g := range metrics.GroupABC(abc) {
			rows = append(rows, []string{
				g.Class,
				fmt.Sprintf("%d", g.Items),
				metrics.FormatMoney(g.Revenue),
				fmt.Sprintf("%.1f%%", g.RevenuePct),
			})
		}
		b.WriteString(renderTable([]string{"Class", "Items", "Revenue", "Share"}, rows) + "\n")
	}

	return b.String()
}

func formatWeeksOnHand(weeks float64) string {
	if weeks <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", weeks)
}
