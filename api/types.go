package api

// Series is the common chart payload shape: parallel label and value arrays.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Summary is the headline KPI block on the dashboard
type Summary struct {
	RevenueToday     float64 `json:"revenue_today"`
	RevenueWeek      float64 `json:"revenue_week"`
	RevenueMonth     float64 `json:"revenue_month"`
	OrdersToday      int     `json:"orders_today"`
	OrdersMonth      int     `json:"orders_month"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	TopSource        string  `json:"top_source"`
	RevenueChangePct float64 `json:"revenue_change_pct"`
}

// RevenueTrend is daily revenue over the requested window
type RevenueTrend struct {
	Labels  []string  `json:"labels"`
	Revenue []float64 `json:"revenue"`
	Orders  []int     `json:"orders"`
}

// SourceSales is one sales channel's contribution
type SourceSales struct {
	Source  string  `json:"source"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type SalesBySource struct {
	Sources []SourceSales `json:"sources"`
}

// ProductSales is one row of the top-products table
type ProductSales struct {
	SKU     string  `json:"sku"`
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Units   int     `json:"units"`
}

type TopProducts struct {
	Products []ProductSales `json:"products"`
}

// InventoryItem carries stock plus trailing 30-day movement, from which the
// dashboard derives turnover
type InventoryItem struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Stock      int     `json:"stock"`
	Units30d   int     `json:"units_30d"`
	Revenue30d float64 `json:"revenue_30d"`
}

type Inventory struct {
	Items []InventoryItem `json:"items"`
}

// DeadStockItem is a product with no recent sales
type DeadStockItem struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Stock         int     `json:"stock"`
	DaysSinceSale int     `json:"days_since_sale"`
	StockValue    float64 `json:"stock_value"`
}

type DeadStock struct {
	Items []DeadStockItem `json:"items"`
}

// ABCItem is one product with its server-computed revenue-contribution class
type ABCItem struct {
	SKU     string  `json:"sku"`
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Class   string  `json:"class"`
}

type ABCClassification struct {
	Items []ABCItem `json:"items"`
}

// CustomerSpend is one row of the top-customers table
type CustomerSpend struct {
	Name   string  `json:"name"`
	Orders int     `json:"orders"`
	Spend  float64 `json:"spend"`
}

type CustomerInsights struct {
	NewCustomers       int             `json:"new_customers"`
	ReturningCustomers int             `json:"returning_customers"`
	RepeatRatePct      float64         `json:"repeat_rate_pct"`
	AvgLifetimeValue   float64         `json:"avg_lifetime_value"`
	TopCustomers       []CustomerSpend `json:"top_customers"`
}

// Cohort is one signup-month row of the retention matrix. Retention holds
// the fraction of the cohort still active at each month offset, offset 0
// first.
type Cohort struct {
	Label     string    `json:"label"`
	Size      int       `json:"size"`
	Retention []float64 `json:"retention"`
}

type CohortRetention struct {
	Cohorts []Cohort `json:"cohorts"`
}

// Expense is one manually tracked expense row
type Expense struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type Expenses struct {
	Expenses []Expense `json:"expenses"`
	Total    float64   `json:"total"`
}

type ExpenseSummary struct {
	ByCategory Series  `json:"by_category"`
	Total      float64 `json:"total"`
}
