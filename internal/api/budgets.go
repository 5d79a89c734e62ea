package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

// ListBudgets returns budgets with server-computed spent, remaining and
// percentage. Zero month or year is omitted from the query.
func (c *Client) ListBudgets(ctx context.Context, month, year int) ([]model.Budget, error) {
	q := url.Values{}
	if month > 0 {
		q.Set("month", strconv.Itoa(month))
	}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	var out budgetsEnvelope
	if err := c.do(ctx, http.MethodGet, "/budgets", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Budgets, nil
}

// GetBudget fetches one budget.
func (c *Client) GetBudget(ctx context.Context, id string) (model.Budget, error) {
	var out budgetEnvelope
	err := c.do(ctx, http.MethodGet, idPath("/budgets", id), nil, nil, &out)
	return out.Budget, err
}

// CreateBudget sets a monthly cap for a category.
func (c *Client) CreateBudget(ctx context.Context, d model.BudgetDraft) (model.Budget, error) {
	var out budgetEnvelope
	err := c.do(ctx, http.MethodPost, "/budgets", nil, d, &out)
	return out.Budget, err
}

// UpdateBudget replaces a budget's editable fields.
func (c *Client) UpdateBudget(ctx context.Context, id string, d model.BudgetDraft) (model.Budget, error) {
	var out budgetEnvelope
	err := c.do(ctx, http.MethodPut, idPath("/budgets", id), nil, d, &out)
	return out.Budget, err
}

// DeleteBudget removes a budget.
func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath("/budgets", id), nil, nil, nil)
}

// BudgetAlerts returns budgets in warning or exceeded state.
func (c *Client) BudgetAlerts(ctx context.Context) ([]model.BudgetAlert, error) {
	var out alertsEnvelope
	if err := c.do(ctx, http.MethodGet, "/budgets/alerts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Alerts, nil
}
