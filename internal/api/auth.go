package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/model"
)

// Login exchanges credentials for a token. Rejected credentials match
// apperr.ErrAuth.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	var out model.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &out); err != nil {
		var apiErr *apperr.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && len(apiErr.FieldErrors) == 0 {
			return out, fmt.Errorf("%w: %w", apperr.ErrAuth, apiErr)
		}
		return out, err
	}
	if out.Token == "" {
		return out, errors.New("api: login response had no token")
	}
	return out, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.AuthResult, error) {
	var out model.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &out); err != nil {
		return out, err
	}
	if out.Token == "" {
		return out, errors.New("api: register response had no token")
	}
	return out, nil
}

// Me returns the user owning the current token.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}
