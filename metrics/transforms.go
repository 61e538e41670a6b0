// Package metrics reshapes raw analytics payloads into chart-ready records.
// Every transform here is pure: same payload in, same records out, no
// network and no shared state.
package metrics

import (
	"fmt"
	"sort"

	"github.com/mattn/go-runewidth"

	"bitui/api"
)

// Palette is the stable chart color cycle, assigned by index. Values are
// lipgloss-compatible ANSI 256 codes.
var Palette = []string{"39", "208", "170", "76", "220", "203", "81", "141"}

// ColorAt returns the palette color for index i, wrapping around
func ColorAt(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Shares converts raw values to percentage shares of their sum. A zero or
// negative sum yields all zeros rather than dividing by zero.
func Shares(values []float64) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum <= 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / sum * 100
	}
	return out
}

// TruncateLabel cuts s to max display cells, appending an ellipsis when
// anything was removed. Width is measured in terminal cells, not bytes, so
// wide runes count double.
func TruncateLabel(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return runewidth.Truncate(s, max-1, "") + "…"
}

// Point is one chart entry: the original value plus everything the render
// layer needs to draw it.
type Point struct {
	Label    string
	Value    float64
	SharePct float64
	Color    string
}

// BuildSeries turns parallel label/value arrays into chart points with
// truncated labels, shares and palette colors. Mismatched lengths are
// tolerated by taking the shorter side.
func BuildSeries(labels []string, values []float64, labelWidth int) []Point {
	n := len(labels)
	if len(values) < n {
		n = len(values)
	}
	shares := Shares(values[:n])

	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{
			Label:    TruncateLabel(labels[i], labelWidth),
			Value:    values[i],
			SharePct: shares[i],
			Color:    ColorAt(i),
		}
	}
	return points
}

// SourceSeries shapes the sales-by-source payload for the shares chart
func SourceSeries(sales *api.SalesBySource, labelWidth int) []Point {
	labels := make([]string, len(sales.Sources))
	values := make([]float64, len(sales.Sources))
	for i, s := range sales.Sources {
		labels[i] = s.Source
		values[i] = s.Revenue
	}
	return BuildSeries(labels, values, labelWidth)
}

// ProductSeries shapes the top-products payload for the bar chart
func ProductSeries(products *api.TopProducts, labelWidth int) []Point {
	labels := make([]string, len(products.Products))
	values := make([]float64, len(products.Products))
	for i, p := range products.Products {
		labels[i] = p.Name
		values[i] = p.Revenue
	}
	return BuildSeries(labels, values, labelWidth)
}

// CohortCell is one month-offset entry of a shaped retention row
type CohortCell struct {
	Pct   float64
	Known bool // false past the cohort's observed horizon
}

// CohortRow is one signup-month row of the shaped matrix
type CohortRow struct {
	Label string
	Size  int
	Cells []CohortCell
}

// ShapeCohorts converts the retention payload to a rectangular matrix of
// percentages. Rows are padded to the widest observed horizon; padded cells
// are marked unknown so the renderer can blank them instead of showing 0%.
func ShapeCohorts(ret *api.CohortRetention) []CohortRow {
	width := 0
	for _, c := range ret.Cohorts {
		if len(c.Retention) > width {
			width = len(c.Retention)
		}
	}

	rows := make([]CohortRow, len(ret.Cohorts))
	for i, c := range ret.Cohorts {
		cells := make([]CohortCell, width)
		for j, frac := range c.Retention {
			cells[j] = CohortCell{Pct: frac * 100, Known: true}
		}
		rows[i] = CohortRow{Label: c.Label, Size: c.Size, Cells: cells}
	}
	return rows
}

// AgingBucket is one dead-stock age band
type AgingBucket struct {
	Label      string
	Items      int
	StockValue float64
}

// agingBands are the lower bounds of the dead-stock age bands, in days
var agingBands = []struct {
	min   int
	label string
}{
	{180, "180+ days"},
	{90, "90-179 days"},
	{60, "60-89 days"},
	{30, "30-59 days"},
}

// BucketDeadStock groups dead stock into age bands, oldest first. Items
// younger than the lowest band are dropped - they are not dead yet.
func BucketDeadStock(stock *api.DeadStock) []AgingBucket {
	buckets := make([]AgingBucket, len(agingBands))
	for i, band := range agingBands {
		buckets[i].Label = band.label
	}

	for _, item := range stock.Items {
		for i, band := range agingBands {
			if item.DaysSinceSale >= band.min {
				buckets[i].Items++
				buckets[i].StockValue += item.StockValue
				break
			}
		}
	}
	return buckets
}

// TurnoverKPI is the derived movement figure for one product
type TurnoverKPI struct {
	SKU         string
	Name        string
	Stock       int
	MonthlyRate float64 // units sold per month relative to stock on hand
	WeeksOnHand float64 // weeks until stock runs out at the current rate
	SlowMoving  bool
}

// slowMovingRate marks products turning less than a quarter of their stock
// per month
const slowMovingRate = 0.25

// DeriveTurnover computes per-product turnover from the inventory payload,
// slowest movers first. Products with no stock are skipped; products with
// stock but no sales get WeeksOnHand 0 meaning "never at this rate".
func DeriveTurnover(inv *api.Inventory) []TurnoverKPI {
	out := make([]TurnoverKPI, 0, len(inv.Items))
	for _, item := range inv.Items {
		if item.Stock <= 0 {
			continue
		}
		kpi := TurnoverKPI{
			SKU:         item.SKU,
			Name:        item.Name,
			Stock:       item.Stock,
			MonthlyRate: float64(item.Units30d) / float64(item.Stock),
		}
		if item.Units30d > 0 {
			kpi.WeeksOnHand = float64(item.Stock) / float64(item.Units30d) * (30.0 / 7.0)
		}
		kpi.SlowMoving = kpi.MonthlyRate < slowMovingRate
		out = append(out, kpi)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MonthlyRate != out[j].MonthlyRate {
			return out[i].MonthlyRate < out[j].MonthlyRate
		}
		return out[i].SKU < out[j].SKU
	})
	return out
}

// ABCGroup is one revenue-contribution class with its aggregates
type ABCGroup struct {
	Class      string
	Items      int
	Revenue    float64
	RevenuePct float64
}

// GroupABC aggregates the server-classified items into the three display
// groups. Classes outside A/B/C are folded into C.
func GroupABC(abc *api.ABCClassification) []ABCGroup {
	groups := []ABCGroup{{Class: "A"}, {Class: "B"}, {Class: "C"}}
	index := map[string]int{"A": 0, "B": 1, "C": 2}

	var total float64
	for _, item := range abc.Items {
		i, ok := index[item.Class]
		if !ok {
			i = 2
		}
		groups[i].Items++
		groups[i].Revenue += item.Revenue
		total += item.Revenue
	}

	if total > 0 {
		for i := range groups {
			groups[i].RevenuePct = groups[i].Revenue / total * 100
		}
	}
	return groups
}

// FormatMoney renders an amount the way the dashboard shows currency
func FormatMoney(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	}
	if v >= 10_000 {
		return fmt.Sprintf("$%.1fk", v/1_000)
	}
	return fmt.Sprintf("$%.2f", v)
}
