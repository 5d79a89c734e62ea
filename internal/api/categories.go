package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/theirongolddev/tally/internal/model"
)

// ListCategories returns categories, optionally of one type.
func (c *Client) ListCategories(ctx context.Context, typ model.Type) ([]model.Category, error) {
	q := url.Values{}
	if typ != "" {
		q.Set("type", string(typ))
	}
	var out categoriesEnvelope
	if err := c.do(ctx, http.MethodGet, "/categories", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// GetCategory fetches one category.
func (c *Client) GetCategory(ctx context.Context, id string) (model.Category, error) {
	var out categoryEnvelope
	err := c.do(ctx, http.MethodGet, idPath("/categories", id), nil, nil, &out)
	return out.Category, err
}

// CreateCategory creates a personal category.
func (c *Client) CreateCategory(ctx context.Context, d model.CategoryDraft) (model.Category, error) {
	var out categoryEnvelope
	err := c.do(ctx, http.MethodPost, "/categories", nil, d, &out)
	return out.Category, err
}

// UpdateCategory replaces a category's editable fields.
func (c *Client) UpdateCategory(ctx context.Context, id string, d model.CategoryDraft) (model.Category, error) {
	var out categoryEnvelope
	err := c.do(ctx, http.MethodPut, idPath("/categories", id), nil, d, &out)
	return out.Category, err
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath("/categories", id), nil, nil, nil)
}
