package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/theirongolddev/tally/internal/model"
)

func filterQuery(f model.TransactionFilters) url.Values {
	q := url.Values{}
	if f.Month > 0 {
		q.Set("month", strconv.Itoa(f.Month))
	}
	if f.Year > 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if f.CategoryID != "" {
		q.Set("categoryId", f.CategoryID)
	}
	return q
}

// ListTransactions returns transactions matching f. A zero filter returns
// every transaction of the user.
func (c *Client) ListTransactions(ctx context.Context, f model.TransactionFilters) ([]model.Transaction, error) {
	var out transactionsEnvelope
	if err := c.do(ctx, http.MethodGet, "/transactions", filterQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// GetTransaction fetches one transaction.
func (c *Client) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	var out transactionEnvelope
	err := c.do(ctx, http.MethodGet, idPath("/transactions", id), nil, nil, &out)
	return out.Transaction, err
}

// CreateTransaction records a transaction.
func (c *Client) CreateTransaction(ctx context.Context, d model.TransactionDraft) (model.Transaction, error) {
	var out transactionEnvelope
	err := c.do(ctx, http.MethodPost, "/transactions", nil, d, &out)
	return out.Transaction, err
}

// UpdateTransaction replaces a transaction's editable fields.
func (c *Client) UpdateTransaction(ctx context.Context, id string, d model.TransactionDraft) (model.Transaction, error) {
	var out transactionEnvelope
	err := c.do(ctx, http.MethodPut, idPath("/transactions", id), nil, d, &out)
	return out.Transaction, err
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath("/transactions", id), nil, nil, nil)
}
