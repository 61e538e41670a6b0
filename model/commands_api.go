package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bitui/config"
)

// trendDays is the default revenue trend window
const trendDays = 30

// topProductsLimit caps the top-products bar chart
const topProductsLimit = 10

func (m *Model) requestContext() (context.Context, context.CancelFunc) {
	timeout := 15 * time.Second
	if m.Config != nil && m.Config.RequestTimeout > 0 {
		timeout = m.Config.RequestTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// FetchDashboard fetches everything the dashboard tab shows
func (m *Model) FetchDashboard() tea.Cmd {
	return tea.Batch(m.FetchSummary(), m.FetchRevenueTrend(), m.FetchSalesBySource())
}

// FetchProducts fetches everything the products tab shows
func (m *Model) FetchProducts() tea.Cmd {
	return tea.Batch(m.FetchTopProducts(), m.FetchInventory(), m.FetchDeadStock(), m.FetchABC())
}

// FetchCustomers fetches everything the customers tab shows
func (m *Model) FetchCustomers() tea.Cmd {
	return tea.Batch(m.FetchCustomerInsights(), m.FetchCohortRetention(), m.FetchCategories(), m.FetchBrands())
}

// FetchExpenses fetches everything the expenses tab shows
func (m *Model) FetchExpenses() tea.Cmd {
	return tea.Batch(m.FetchExpenseList(), m.FetchExpenseSummary())
}

// FetchAll refreshes every tab's data in one batch
func (m *Model) FetchAll() tea.Cmd {
	return tea.Batch(m.FetchDashboard(), m.FetchProducts(), m.FetchCustomers(), m.FetchExpenses())
}

func (m *Model) FetchSummary() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		summary, err := client.Summary(ctx)
		return SummaryMsg{Summary: summary, Err: err}
	}
}

func (m *Model) FetchRevenueTrend() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		trend, err := client.RevenueTrend(ctx, trendDays)
		return RevenueTrendMsg{Trend: trend, Err: err}
	}
}

func (m *Model) FetchSalesBySource() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		sources, err := client.SalesBySource(ctx)
		return SalesBySourceMsg{Sources: sources, Err: err}
	}
}

func (m *Model) FetchTopProducts() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		products, err := client.TopProducts(ctx, topProductsLimit)
		return TopProductsMsg{Products: products, Err: err}
	}
}

func (m *Model) FetchInventory() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		inventory, err := client.Inventory(ctx)
		return InventoryMsg{Inventory: inventory, Err: err}
	}
}

func (m *Model) FetchDeadStock() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		stock, err := client.DeadStock(ctx)
		return DeadStockMsg{Stock: stock, Err: err}
	}
}

func (m *Model) FetchABC() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		classification, err := client.ABCClassification(ctx)
		return ABCMsg{Classification: classification, Err: err}
	}
}

func (m *Model) FetchCustomerInsights() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		insights, err := client.CustomerInsights(ctx)
		return CustomerInsightsMsg{Insights: insights, Err: err}
	}
}

func (m *Model) FetchCategories() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		series, err := client.Categories(ctx)
		return CategoriesMsg{Series: series, Err: err}
	}
}

func (m *Model) FetchBrands() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		series, err := client.Brands(ctx)
		return BrandsMsg{Series: series, Err: err}
	}
}

func (m *Model) FetchCohortRetention() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		retention, err := client.CohortRetention(ctx)
		return CohortRetentionMsg{Retention: retention, Err: err}
	}
}

func (m *Model) FetchExpenseList() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		expenses, err := client.Expenses(ctx)
		return ExpensesMsg{Expenses: expenses, Err: err}
	}
}

func (m *Model) FetchExpenseSummary() tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		summary, err := client.ExpenseSummary(ctx)
		return ExpenseSummaryMsg{Summary: summary, Err: err}
	}
}

// DeleteExpense removes an expense and reports back so the UI can refetch
func (m *Model) DeleteExpense(id string) tea.Cmd {
	client := m.API
	ctxFn := m.requestContext
	return func() tea.Msg {
		ctx, cancel := ctxFn()
		defer cancel()
		err := client.DeleteExpense(ctx, id)
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Delete expense %s failed: %v", id, err)
		}
		return ExpenseDeletedMsg{ID: id, Err: err}
	}
}
