package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/query"
	"github.com/theirongolddev/tally/internal/service"
)

type fakeBackend struct {
	mu      sync.Mutex
	txs     []model.Transaction
	filters []pipeline.Filter
	deleted []string
	dashErr error
	cache   *query.Client
}

func newFakeBackend(txs ...model.Transaction) *fakeBackend {
	return &fakeBackend{txs: txs, cache: query.New(time.Minute)}
}

func (f *fakeBackend) LoadDashboard(_ context.Context, month, year int, now time.Time) (pipeline.Dashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dashErr != nil {
		return pipeline.Dashboard{}, f.dashErr
	}
	return pipeline.BuildDashboard(f.txs, nil, month, year, now), nil
}

func (f *fakeBackend) FilteredTransactions(_ context.Context, flt pipeline.Filter) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, flt)
	return flt.Apply(f.txs), nil
}

func (f *fakeBackend) CategoryOverview(context.Context) (service.Overview, error) {
	return service.Overview{System: []model.Category{food, salary}}, nil
}

func (f *fakeBackend) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) Cache() *query.Client { return f.cache }

type fakeAuth struct {
	user   model.User
	authed bool
	err    error
}

func (f *fakeAuth) User() (model.User, bool) { return f.user, f.authed }

func (f *fakeAuth) Login(_ context.Context, creds model.Credentials) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	f.user, f.authed = model.User{Name: "Ada", Email: creds.Email}, true
	return f.user, nil
}

var (
	food   = model.Category{ID: "c-food", Name: "Food", Type: model.Expense, Color: "#FF6B6B", Icon: "🍔"}
	salary = model.Category{ID: "c-salary", Name: "Salary", Type: model.Income, Color: "#4ECDC4", Icon: "💰"}
)

func tx(id string, typ model.Type, amount string, day int, desc string) model.Transaction {
	cat := food
	if typ == model.Income {
		cat = salary
	}
	return model.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      decimal.RequireFromString(amount),
		Date:        model.Date{Year: 2025, Month: time.March, Day: day},
		Description: desc,
		CategoryID:  cat.ID,
		Category:    &cat,
	}
}

func newTestApp(t *testing.T, b Backend, auth Auth) App {
	t.Helper()
	t.Setenv("TALLY_CONFIG_DIR", t.TempDir())
	a := NewApp(b, auth)
	a.now = func() time.Time { return time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC) }
	a.month, a.year = 3, 2025
	a.width, a.height = 140, 40
	return a
}

// load runs the initial data load synchronously.
func load(t *testing.T, a App) App {
	t.Helper()
	msg := loadDataCmd(a.backend, a.month, a.year, a.filter(), a.now())()
	m, _ := a.Update(msg)
	return m.(App)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDataLoadedPopulatesScreens(t *testing.T) {
	b := newFakeBackend(
		tx("t1", model.Expense, "40", 3, "Groceries"),
		tx("t2", model.Income, "1000", 1, "Paycheck"),
	)
	a := load(t, newTestApp(t, b, &fakeAuth{authed: true, user: model.User{Name: "Ada"}}))

	require.True(t, a.loaded)
	require.NoError(t, a.loadErr)
	assert.Len(t, a.txs, 2)
	assert.Equal(t, "t1", a.txs[0].ID, "newest first")
	assert.True(t, a.dash.Totals.Balance.Equal(decimal.NewFromInt(960)))
	assert.Len(t, a.categories.System, 2)
}

func TestStaleMonthResponseIgnored(t *testing.T) {
	b := newFakeBackend(tx("t1", model.Expense, "40", 3, "Groceries"))
	a := newTestApp(t, b, &fakeAuth{authed: true})
	a.loaded = true

	stale := loadDataCmd(b, 3, 2025, a.filter(), a.now())

	// User moves to February before March arrives
	m, cmd := a.Update(key("h"))
	a = m.(App)
	require.NotNil(t, cmd)
	assert.Equal(t, 2, a.month)
	assert.True(t, a.loading)

	m, _ = a.Update(stale())
	a = m.(App)
	assert.Empty(t, a.txs, "March data must not land on February")
	assert.True(t, a.loading, "still waiting for February")
}

func TestShiftMonthWrapsYear(t *testing.T) {
	a := newTestApp(t, newFakeBackend(), &fakeAuth{authed: true})
	a.month, a.year = 1, 2025
	a.loaded = true

	m, _ := a.Update(key("["))
	a = m.(App)
	assert.Equal(t, 12, a.month)
	assert.Equal(t, 2024, a.year)

	m, _ = a.Update(key("."))
	a = m.(App)
	assert.Equal(t, 3, a.month)
	assert.Equal(t, 2025, a.year)
}

func TestTypeFilterCyclesAndRefetches(t *testing.T) {
	b := newFakeBackend(
		tx("t1", model.Expense, "40", 3, "Groceries"),
		tx("t2", model.Income, "1000", 1, "Paycheck"),
	)
	a := load(t, newTestApp(t, b, &fakeAuth{authed: true}))
	a.activeTab = tabTransactions

	m, cmd := a.Update(key("f"))
	a = m.(App)
	require.NotNil(t, cmd)
	assert.Equal(t, model.Expense, a.txState.typeFilter)

	m, _ = a.Update(cmd())
	a = m.(App)
	require.Len(t, a.txs, 1)
	assert.Equal(t, "t1", a.txs[0].ID)

	m, _ = a.Update(key("f"))
	a = m.(App)
	assert.Equal(t, model.Income, a.txState.typeFilter)
	m, _ = a.Update(key("f"))
	a = m.(App)
	assert.Equal(t, model.Type(""), a.txState.typeFilter)
}

func TestStaleFilterResponseIgnored(t *testing.T) {
	b := newFakeBackend(tx("t1", model.Expense, "40", 3, "Groceries"))
	a := load(t, newTestApp(t, b, &fakeAuth{authed: true}))

	old := a.filter()
	old.Type = model.Income
	m, _ := a.Update(TransactionsLoadedMsg{Filter: old, Transactions: nil})
	a = m.(App)
	assert.Len(t, a.txs, 1)
}

func TestSearchAppliesOnEnter(t *testing.T) {
	b := newFakeBackend(
		tx("t1", model.Expense, "40", 3, "Groceries"),
		tx("t2", model.Expense, "12", 4, "Coffee"),
	)
	a := load(t, newTestApp(t, b, &fakeAuth{authed: true}))
	a.activeTab = tabTransactions

	m, _ := a.Update(key("/"))
	a = m.(App)
	require.True(t, a.txState.searching)

	m, _ = a.Update(key("coffee"))
	a = m.(App)
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	assert.False(t, a.txState.searching)
	assert.Equal(t, "coffee", a.txState.searchQuery)

	require.NotNil(t, cmd)
	m, _ = a.Update(cmd())
	a = m.(App)
	require.Len(t, a.txs, 1)
	assert.Equal(t, "t2", a.txs[0].ID)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	b := newFakeBackend(
		tx("t1", model.Expense, "40", 3, "Groceries"),
		tx("t2", model.Expense, "12", 4, "Coffee"),
	)
	a := load(t, newTestApp(t, b, &fakeAuth{authed: true}))
	a.activeTab = tabTransactions

	// Anything but y cancels
	m, _ := a.Update(key("d"))
	a = m.(App)
	require.True(t, a.txState.confirmDelete)
	m, cmd := a.Update(key("n"))
	a = m.(App)
	assert.Nil(t, cmd)
	assert.False(t, a.txState.confirmDelete)

	m, _ = a.Update(key("j"))
	a = m.(App)
	m, _ = a.Update(key("d"))
	a = m.(App)
	m, cmd = a.Update(key("y"))
	a = m.(App)
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, DeletedMsg{ID: "t1"}, msg, "cursor 1 is the older transaction")
	assert.Equal(t, []string{"t1"}, b.deleted)

	m, cmd = a.Update(msg)
	a = m.(App)
	assert.NotNil(t, cmd, "a delete reloads the month")
	assert.True(t, a.loading)
}

func TestLoadErrorIsShownNotFatal(t *testing.T) {
	b := newFakeBackend()
	b.dashErr = errors.New("connection refused")
	a := load(t, newTestApp(t, b, &fakeAuth{authed: true}))

	assert.True(t, a.loaded)
	assert.EqualError(t, a.loadErr, "connection refused")
	assert.Contains(t, a.View(), "connection refused")
}

func TestLoginFlow(t *testing.T) {
	auth := &fakeAuth{}
	a := newTestApp(t, newFakeBackend(), auth)
	require.NotNil(t, a.loginForm)

	m, _ := a.Update(LoginDoneMsg{Err: apperr.ErrAuth})
	a = m.(App)
	assert.NotNil(t, a.loginForm, "failed login shows the form again")
	assert.Equal(t, "Invalid email or password.", loginErrorText(a.loginErr))

	m, cmd := a.Update(LoginDoneMsg{User: model.User{Name: "Ada"}})
	a = m.(App)
	assert.Nil(t, a.loginForm)
	assert.True(t, a.authed)
	assert.Equal(t, "Ada", a.user.Name)
	assert.NotNil(t, cmd, "login starts the first load")
}

func TestViewRendersEveryTab(t *testing.T) {
	b := newFakeBackend(
		tx("t1", model.Expense, "40", 3, "Groceries"),
		tx("t2", model.Income, "1000", 1, "Paycheck"),
	)
	a := load(t, newTestApp(t, b, &fakeAuth{authed: true, user: model.User{Name: "Ada"}}))

	for _, width := range []int{100, 140} {
		a.width = width
		for tab := range 5 {
			a.activeTab = tab
			out := a.View()
			assert.NotEmpty(t, out, "tab %d width %d", tab, width)
		}
	}

	a.activeTab = tabTransactions
	assert.Contains(t, a.View(), "Groceries")
	a.activeTab = tabCategories
	assert.Contains(t, a.View(), "Salary")
}

func TestTooNarrow(t *testing.T) {
	a := newTestApp(t, newFakeBackend(), &fakeAuth{authed: true})
	a.width = 60
	assert.Contains(t, a.View(), "Terminal too narrow")
}

func TestNextCategoryWraps(t *testing.T) {
	all := []model.Category{food, salary}
	assert.Equal(t, "c-food", nextCategory(all, ""))
	assert.Equal(t, "c-salary", nextCategory(all, "c-food"))
	assert.Equal(t, "", nextCategory(all, "c-salary"))
	assert.Equal(t, "", nextCategory(nil, ""))
}
