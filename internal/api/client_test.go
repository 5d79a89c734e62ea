package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/testutil/fakeapi"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestLogin_ReturnsTokenAndUser(t *testing.T) {
	fake := fakeapi.New(t)
	fake.SeedUser("Ana", "ana@example.com", "secret1")

	c := NewClient(fake.URL())
	res, err := c.Login(context.Background(), model.Credentials{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Ana", res.User.Name)
}

func TestLogin_BadCredentialsIsAuthError(t *testing.T) {
	fake := fakeapi.New(t)
	fake.SeedUser("Ana", "ana@example.com", "secret1")

	_, err := NewClient(fake.URL()).Login(context.Background(), model.Credentials{Email: "ana@example.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAuth))

	apiErr, ok := apperr.AsAPI(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestBearerTokenSentOnceAuthenticated(t *testing.T) {
	fake := fakeapi.New(t)
	_, tok := fake.SeedUser("Ana", "ana@example.com", "secret1")

	c := NewClient(fake.URL())
	_, err := c.Me(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrAuth), "no token must be rejected: %v", err)

	c.SetTokenSource(staticToken(tok))
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Auth)
	assert.Equal(t, "Bearer "+tok, reqs[1].Auth)
}

func TestCategoryCRUD(t *testing.T) {
	fake := fakeapi.New(t)
	_, tok := fake.SeedUser("Ana", "ana@example.com", "secret1")
	fake.SeedCategory(model.Category{Name: "Salary", Type: model.Income})
	c := NewClient(fake.URL(), WithTokenSource(staticToken(tok)))
	ctx := context.Background()

	created, err := c.CreateCategory(ctx, model.CategoryDraft{Name: "Groceries", Type: model.Expense, Color: "#FF6B6B", Icon: "🛒"})
	require.NoError(t, err)
	require.NotNil(t, created.UserID)

	all, err := c.ListCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	expense, err := c.ListCategories(ctx, model.Expense)
	require.NoError(t, err)
	require.Len(t, expense, 1)
	assert.Equal(t, "Groceries", expense[0].Name)
	assert.Equal(t, 1, fake.Count(http.MethodGet, "/categories"), "one call per list")

	updated, err := c.UpdateCategory(ctx, created.ID, model.CategoryDraft{Name: "Food", Type: model.Expense, Color: "#000000", Icon: "🍔"})
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)

	require.NoError(t, c.DeleteCategory(ctx, created.ID))
	_, err = c.GetCategory(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestServerValidationErrorCarriesFields(t *testing.T) {
	fake := fakeapi.New(t)
	_, tok := fake.SeedUser("Ana", "ana@example.com", "secret1")
	c := NewClient(fake.URL(), WithTokenSource(staticToken(tok)))

	_, err := c.CreateCategory(context.Background(), model.CategoryDraft{Name: "ab", Type: model.Expense})
	apiErr, ok := apperr.AsAPI(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Validation failed", apiErr.Message)
	require.Len(t, apiErr.FieldErrors, 1)
	assert.Equal(t, apperr.FieldError{Field: "name", Message: "Name must be at least 3 characters"}, apiErr.FieldErrors[0])
	assert.False(t, errors.Is(err, apperr.ErrAuth))
}

func TestSystemCategoryRejectedByServer(t *testing.T) {
	fake := fakeapi.New(t)
	_, tok := fake.SeedUser("Ana", "ana@example.com", "secret1")
	sys := fake.SeedCategory(model.Category{Name: "Salary", Type: model.Income})
	c := NewClient(fake.URL(), WithTokenSource(staticToken(tok)))

	err := c.DeleteCategory(context.Background(), sys.ID)
	apiErr, ok := apperr.AsAPI(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, 1, fake.Count(http.MethodDelete, "/categories/"+sys.ID))
}

func TestTransactionsQueryAndDecode(t *testing.T) {
	fake := fakeapi.New(t)
	u, tok := fake.SeedUser("Ana", "ana@example.com", "secret1")
	cat := fake.SeedCategory(model.Category{Name: "Food", Type: model.Expense, UserID: &u.ID})
	jan, _ := model.ParseDate("2025-01-05")
	feb, _ := model.ParseDate("2025-02-01")
	fake.SeedTransaction(model.Transaction{UserID: u.ID, CategoryID: cat.ID, Type: model.Expense, Amount: decimal.RequireFromString("12.34"), Date: jan})
	fake.SeedTransaction(model.Transaction{UserID: u.ID, CategoryID: cat.ID, Type: model.Expense, Amount: decimal.NewFromInt(5), Date: feb})

	c := NewClient(fake.URL(), WithTokenSource(staticToken(tok)))
	got, err := c.ListTransactions(context.Background(), model.TransactionFilters{Month: 1, Year: 2025, Type: model.Expense, CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("12.34")))
	assert.Equal(t, "2025-01-05", got[0].Date.String())
	require.NotNil(t, got[0].Category)
	assert.Equal(t, "Food", got[0].Category.Name)

	reqs := fake.Requests()
	assert.Equal(t, "categoryId="+cat.ID+"&month=1&type=expense&year=2025", reqs[len(reqs)-1].Query)
}

func TestBudgetsAndAlerts(t *testing.T) {
	fake := fakeapi.New(t)
	u, tok := fake.SeedUser("Ana", "ana@example.com", "secret1")
	cat := fake.SeedCategory(model.Category{Name: "Food", Type: model.Expense, Color: "#00AA00", Icon: "🍔", UserID: &u.ID})
	d, _ := model.ParseDate("2025-03-10")
	fake.SeedTransaction(model.Transaction{UserID: u.ID, CategoryID: cat.ID, Type: model.Expense, Amount: decimal.NewFromInt(180), Date: d})
	fake.SeedBudget(model.Budget{UserID: u.ID, CategoryID: cat.ID, Amount: decimal.NewFromInt(200), Month: 3, Year: 2025})

	c := NewClient(fake.URL(), WithTokenSource(staticToken(tok)))
	budgets, err := c.ListBudgets(context.Background(), 3, 2025)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.True(t, budgets[0].Percentage.Equal(decimal.NewFromInt(90)))
	assert.True(t, budgets[0].Remaining.Equal(decimal.NewFromInt(20)))

	alerts, err := c.BudgetAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.StatusWarning, alerts[0].Status)
	assert.Equal(t, "Food", alerts[0].CategoryName)
}

func TestDecodesStringAmountsAndTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transactions":[{"id":"t1","amount":"100.50","type":"expense",
			"date":"2025-01-31T23:00:00.000Z","description":"x","userId":"u","categoryId":"c",
			"createdAt":"2025-01-31T23:00:00.000Z","updatedAt":"2025-01-31T23:00:00.000Z"}]}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).ListTransactions(context.Background(), model.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("100.5")))
	assert.True(t, got[0].Date.In(1, 2025))
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListBudgets(context.Background(), 0, 0)
	apiErr, ok := apperr.AsAPI(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.ListCategories(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestRequestIDHeader(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"user":{"id":"u1","name":"A","email":"a@b.c"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Me(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 36)
}
