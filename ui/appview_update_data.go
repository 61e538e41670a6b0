package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"bitui/config"
	appmodel "bitui/model"
)

// handleDataMessage applies analytics responses to the data model. Each
// message carries either a payload or an error; errors land in fetchErrs
// keyed by section so stale data stays visible under the error banner.
func (a AppView) handleDataMessage(msg tea.Msg) (AppView, tea.Cmd) {
	m := a.dataModel

	switch msg := msg.(type) {
	case appmodel.SummaryMsg:
		if msg.Err != nil {
			a.noteFetchErr("summary", msg.Err)
		} else {
			delete(a.fetchErrs, "summary")
			m.Summary = msg.Summary
		}
	case appmodel.RevenueTrendMsg:
		if msg.Err != nil {
			a.noteFetchErr("revenue trend", msg.Err)
		} else {
			delete(a.fetchErrs, "revenue trend")
			m.Trend = msg.Trend
		}
	case appmodel.SalesBySourceMsg:
		if msg.Err != nil {
			a.noteFetchErr("sales by source", msg.Err)
		} else {
			delete(a.fetchErrs, "sales by source")
			m.Sources = msg.Sources
		}
	case appmodel.TopProductsMsg:
		if msg.Err != nil {
			a.noteFetchErr("top products", msg.Err)
		} else {
			delete(a.fetchErrs, "top products")
			m.TopProducts = msg.Products
		}
	case appmodel.InventoryMsg:
		if msg.Err != nil {
			a.noteFetchErr("inventory", msg.Err)
		} else {
			delete(a.fetchErrs, "inventory")
			m.Inventory = msg.Inventory
		}
	case appmodel.DeadStockMsg:
		if msg.Err != nil {
			a.noteFetchErr("dead stock", msg.Err)
		} else {
			delete(a.fetchErrs, "dead stock")
			m.DeadStock = msg.Stock
		}
	case appmodel.ABCMsg:
		if msg.Err != nil {
			a.noteFetchErr("abc classification", msg.Err)
		} else {
			delete(a.fetchErrs, "abc classification")
			m.ABC = msg.Classification
		}
	case appmodel.CustomerInsightsMsg:
		if msg.Err != nil {
			a.noteFetchErr("customer insights", msg.Err)
		} else {
			delete(a.fetchErrs, "customer insights")
			m.Insights = msg.Insights
		}
	case appmodel.CategoriesMsg:
		if msg.Err != nil {
			a.noteFetchErr("categories", msg.Err)
		} else {
			delete(a.fetchErrs, "categories")
			m.Categories = msg.Series
		}
	case appmodel.BrandsMsg:
		if msg.Err != nil {
			a.noteFetchErr("brands", msg.Err)
		} else {
			delete(a.fetchErrs, "brands")
			m.Brands = msg.Series
		}
	case appmodel.CohortRetentionMsg:
		if msg.Err != nil {
			a.noteFetchErr("cohort retention", msg.Err)
		} else {
			delete(a.fetchErrs, "cohort retention")
			m.Cohorts = msg.Retention
		}
	case appmodel.ExpensesMsg:
		if msg.Err != nil {
			a.noteFetchErr("expenses", msg.Err)
		} else {
			delete(a.fetchErrs, "expenses")
			m.Expenses = msg.Expenses
			if n := len(msg.Expenses.Expenses); a.selectedExpenseIdx >= n {
				a.selectedExpenseIdx = max(0, n-1)
			}
		}
	case appmodel.ExpenseSummaryMsg:
		if msg.Err != nil {
			a.noteFetchErr("expense summary", msg.Err)
		} else {
			delete(a.fetchErrs, "expense summary")
			m.ExpenseSummary = msg.Summary
		}
	case appmodel.ExpenseDeletedMsg:
		if msg.Err != nil {
			a.flash = "Delete failed: " + msg.Err.Error()
			return a, flashTick()
		}
		a.flash = "Expense deleted"
		// The cache entry was invalidated; refetch the expense views
		return a, tea.Batch(m.FetchExpenses(), flashTick())
	}

	return a, nil
}

func (a *AppView) noteFetchErr(section string, err error) {
	a.fetchErrs[section] = err.Error()
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] Fetch %s failed: %v", section, err)
	}
}
