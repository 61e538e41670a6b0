package metrics

import (
	"math"
	"testing"

	"bitui/api"
)

func TestShares(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"simple split", []float64{25, 75}, []float64{25, 75}},
		{"uneven split", []float64{1, 1, 2}, []float64{25, 25, 50}},
		{"zero sum yields zeros", []float64{0, 0, 0}, []float64{0, 0, 0}},
		{"empty", nil, []float64{}},
		{"single value", []float64{42}, []float64{100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shares(tt.values)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d shares, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("share %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSharesSumToHundred(t *testing.T) {
	values := []float64{3.7, 19.2, 0.04, 112.9, 55}
	var sum float64
	for _, s := range Shares(values) {
		sum += s
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("expected shares to sum to 100, got %v", sum)
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits untouched", "Shoes", 10, "Shoes"},
		{"exact width untouched", "Shoes", 5, "Shoes"},
		{"truncated with ellipsis", "Running Shoes", 8, "Running…"},
		{"width one", "Shoes", 1, "…"},
		{"zero width", "Shoes", 0, ""},
		{"wide runes measured in cells", "日本語ラベル", 7, "日本語…"},
		{"empty input", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateLabel(tt.in, tt.max); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestColorAtWraps(t *testing.T) {
	if ColorAt(0) != ColorAt(len(Palette)) {
		t.Error("expected palette assignment to wrap")
	}
	if ColorAt(1) == ColorAt(2) {
		t.Error("expected adjacent indices to differ")
	}
}

func TestBuildSeries(t *testing.T) {
	points := BuildSeries([]string{"Online Store", "Marketplace"}, []float64{60, 40}, 6)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Label != "Onlin…" {
		t.Errorf("expected truncated label, got %q", points[0].Label)
	}
	if points[0].SharePct != 60 || points[1].SharePct != 40 {
		t.Errorf("unexpected shares: %+v", points)
	}
	if points[0].Color == points[1].Color {
		t.Error("expected distinct colors for adjacent points")
	}
}

func TestBuildSeriesMismatchedLengths(t *testing.T) {
	points := BuildSeries([]string{"a", "b", "c"}, []float64{1}, 10)
	if len(points) != 1 {
		t.Errorf("expected shorter side to win, got %d points", len(points))
	}
}

func TestShapeCohortsPadsToWidestRow(t *testing.T) {
	ret := &api.CohortRetention{Cohorts: []api.Cohort{
		{Label: "2026-01", Size: 100, Retention: []float64{1, 0.4, 0.25}},
		{Label: "2026-02", Size: 80, Retention: []float64{1, 0.5}},
		{Label: "2026-03", Size: 120, Retention: []float64{1}},
	}}

	rows := ShapeCohorts(ret)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if len(row.Cells) != 3 {
			t.Errorf("row %s: expected width 3, got %d", row.Label, len(row.Cells))
		}
	}
	if rows[0].Cells[1].Pct != 40 || !rows[0].Cells[1].Known {
		t.Errorf("expected 40%% known cell, got %+v", rows[0].Cells[1])
	}
	if rows[2].Cells[1].Known || rows[2].Cells[2].Known {
		t.Error("expected padded cells marked unknown")
	}
}

func TestBucketDeadStock(t *testing.T) {
	stock := &api.DeadStock{Items: []api.DeadStockItem{
		{SKU: "a", DaysSinceSale: 200, StockValue: 500},
		{SKU: "b", DaysSinceSale: 180, StockValue: 100},
		{SKU: "c", DaysSinceSale: 95, StockValue: 50},
		{SKU: "d", DaysSinceSale: 45, StockValue: 25},
		{SKU: "e", DaysSinceSale: 10, StockValue: 999},
	}}

	buckets := BucketDeadStock(stock)
	if len(buckets) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(buckets))
	}
	if buckets[0].Items != 2 || buckets[0].StockValue != 600 {
		t.Errorf("unexpected 180+ band: %+v", buckets[0])
	}
	if buckets[1].Items != 1 || buckets[2].Items != 0 || buckets[3].Items != 1 {
		t.Errorf("unexpected band counts: %+v", buckets)
	}
	// items under 30 days are not dead stock
	total := 0
	for _, b := range buckets {
		total += b.Items
	}
	if total != 4 {
		t.Errorf("expected fresh item excluded, counted %d", total)
	}
}

func TestDeriveTurnover(t *testing.T) {
	inv := &api.Inventory{Items: []api.InventoryItem{
		{SKU: "fast", Stock: 10, Units30d: 30},
		{SKU: "slow", Stock: 100, Units30d: 5},
		{SKU: "dead", Stock: 20, Units30d: 0},
		{SKU: "gone", Stock: 0, Units30d: 12},
	}}

	kpis := DeriveTurnover(inv)
	if len(kpis) != 3 {
		t.Fatalf("expected out-of-stock item skipped, got %d", len(kpis))
	}
	if kpis[0].SKU != "dead" {
		t.Errorf("expected slowest mover first, got %q", kpis[0].SKU)
	}
	if kpis[0].WeeksOnHand != 0 {
		t.Errorf("no sales means no runway estimate, got %v", kpis[0].WeeksOnHand)
	}
	if !kpis[0].SlowMoving || !kpis[1].SlowMoving {
		t.Error("expected dead and slow marked slow-moving")
	}

	last := kpis[2]
	if last.SKU != "fast" || last.SlowMoving {
		t.Errorf("unexpected fastest mover: %+v", last)
	}
	if math.Abs(last.MonthlyRate-3) > 1e-9 {
		t.Errorf("expected monthly rate 3, got %v", last.MonthlyRate)
	}
	wantWeeks := 10.0 / 30.0 * (30.0 / 7.0)
	if math.Abs(last.WeeksOnHand-wantWeeks) > 1e-9 {
		t.Errorf("expected %v weeks on hand, got %v", wantWeeks, last.WeeksOnHand)
	}
}

func TestGroupABC(t *testing.T) {
	abc := &api.ABCClassification{Items: []api.ABCItem{
		{SKU: "1", Revenue: 700, Class: "A"},
		{SKU: "2", Revenue: 200, Class: "B"},
		{SKU: "3", Revenue: 50, Class: "C"},
		{SKU: "4", Revenue: 50, Class: "X"},
	}}

	groups := GroupABC(abc)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Revenue != 700 || groups[0].Items != 1 {
		t.Errorf("unexpected A group: %+v", groups[0])
	}
	if groups[2].Items != 2 || groups[2].Revenue != 100 {
		t.Errorf("expected unknown class folded into C: %+v", groups[2])
	}
	if math.Abs(groups[0].RevenuePct-70) > 1e-9 {
		t.Errorf("expected A at 70%%, got %v", groups[0].RevenuePct)
	}
}

func TestGroupABCZeroRevenue(t *testing.T) {
	groups := GroupABC(&api.ABCClassification{})
	for _, g := range groups {
		if g.RevenuePct != 0 {
			t.Errorf("expected zero shares on empty input, got %+v", g)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.5, "$12.50"},
		{9999, "$9999.00"},
		{10000, "$10.0k"},
		{1260000, "$1.3M"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
