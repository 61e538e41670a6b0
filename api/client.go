package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Cache is the read-through layer consulted before the network. Implemented
// by storage.ResponseCache; an interface here so the client stays testable
// without a database.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
	Invalidate(prefix string)
}

// Client talks to the analytics backend. All endpoints are read-only JSON
// except the expense delete.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	cache   Cache
}

// Error carries the HTTP status and whatever message the backend put in its
// structured {"error": ...} body.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api request failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api request failed (%d)", e.StatusCode)
}

// NewClient creates an analytics client. cache may be nil, in which case
// every call hits the network.
func NewClient(baseURL, token string, timeout time.Duration, cache Cache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
	}
}

// getJSON fetches path (plus query) and decodes the response into out. Cache
// hits skip the network entirely.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	key := path
	if len(query) > 0 {
		key = path + "?" + query.Encode()
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return json.Unmarshal(body, out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+key, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	if c.cache != nil {
		c.cache.Put(key, body)
	}
	return nil
}

// decodeError extracts the backend's structured error message when present
func decodeError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &Error{StatusCode: status, Message: payload.Error}
	}
	return &Error{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := c.getJSON(ctx, "/api/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevenueTrend returns daily revenue for the trailing window
func (c *Client) RevenueTrend(ctx context.Context, days int) (*RevenueTrend, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", fmt.Sprintf("%d", days))
	}
	var out RevenueTrend
	if err := c.getJSON(ctx, "/api/revenue/trend", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SalesBySource(ctx context.Context) (*SalesBySource, error) {
	var out SalesBySource
	if err := c.getJSON(ctx, "/api/sales/by-source", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TopProducts(ctx context.Context, limit int) (*TopProducts, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	var out TopProducts
	if err := c.getJSON(ctx, "/api/products/top", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Inventory(ctx context.Context) (*Inventory, error) {
	var out Inventory
	if err := c.getJSON(ctx, "/api/products/inventory", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeadStock(ctx context.Context) (*DeadStock, error) {
	var out DeadStock
	if err := c.getJSON(ctx, "/api/products/dead-stock", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ABCClassification(ctx context.Context) (*ABCClassification, error) {
	var out ABCClassification
	if err := c.getJSON(ctx, "/api/products/abc", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CustomerInsights(ctx context.Context) (*CustomerInsights, error) {
	var out CustomerInsights
	if err := c.getJSON(ctx, "/api/customers/insights", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Categories(ctx context.Context) (*Series, error) {
	var out Series
	if err := c.getJSON(ctx, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Brands(ctx context.Context) (*Series, error) {
	var out Series
	if err := c.getJSON(ctx, "/api/brands", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CohortRetention(ctx context.Context) (*CohortRetention, error) {
	var out CohortRetention
	if err := c.getJSON(ctx, "/api/cohort-retention", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Expenses(ctx context.Context) (*Expenses, error) {
	var out Expenses
	if err := c.getJSON(ctx, "/api/expenses", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExpenseSummary(ctx context.Context) (*ExpenseSummary, error) {
	var out ExpenseSummary
	if err := c.getJSON(ctx, "/api/expenses/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteExpense removes an expense by id and invalidates cached expense data
// so the next fetch reflects the deletion.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("expense id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/api/expenses/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete expense failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return decodeError(resp.StatusCode, body)
	}

	if c.cache != nil {
		c.cache.Invalidate("/api/expenses")
	}
	return nil
}
