// Package service is the read/write surface used by commands and the TUI.
// Reads go through the query cache; writes validate their draft locally,
// call the API and invalidate the affected resources.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/logger"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/query"
	"github.com/theirongolddev/tally/internal/validate"
)

// API is the subset of *api.Client the service drives.
type API interface {
	ListCategories(ctx context.Context, typ model.Type) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (model.Category, error)
	CreateCategory(ctx context.Context, d model.CategoryDraft) (model.Category, error)
	UpdateCategory(ctx context.Context, id string, d model.CategoryDraft) (model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListTransactions(ctx context.Context, f model.TransactionFilters) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (model.Transaction, error)
	CreateTransaction(ctx context.Context, d model.TransactionDraft) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, d model.TransactionDraft) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	ListBudgets(ctx context.Context, month, year int) ([]model.Budget, error)
	GetBudget(ctx context.Context, id string) (model.Budget, error)
	CreateBudget(ctx context.Context, d model.BudgetDraft) (model.Budget, error)
	UpdateBudget(ctx context.Context, id string, d model.BudgetDraft) (model.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	BudgetAlerts(ctx context.Context) ([]model.BudgetAlert, error)
}

// Service pairs an API with a cache.
type Service struct {
	api API
	q   *query.Client
	log *zap.SugaredLogger
}

// New creates a Service.
func New(api API, q *query.Client) *Service {
	return &Service{api: api, q: q, log: logger.Named("service")}
}

// Cache exposes the underlying query cache.
func (s *Service) Cache() *query.Client { return s.q }

// ---- categories

// Categories lists categories, optionally restricted to one type.
func (s *Service) Categories(ctx context.Context, typ model.Type) ([]model.Category, error) {
	return query.Fetch(ctx, s.q, query.K(query.Categories, string(typ)), func(ctx context.Context) ([]model.Category, error) {
		return s.api.ListCategories(ctx, typ)
	})
}

// Category fetches one category.
func (s *Service) Category(ctx context.Context, id string) (model.Category, error) {
	return query.Fetch(ctx, s.q, query.K(query.Categories, "id", id), func(ctx context.Context) (model.Category, error) {
		return s.api.GetCategory(ctx, id)
	})
}

// CreateCategory validates d and creates a personal category.
func (s *Service) CreateCategory(ctx context.Context, d model.CategoryDraft) (model.Category, error) {
	if err := validate.Category(&d); err != nil {
		return model.Category{}, err
	}
	return query.Mutate(ctx, s.q, query.Categories, func(ctx context.Context) (model.Category, error) {
		return s.api.CreateCategory(ctx, d)
	})
}

// UpdateCategory edits c. System categories are refused without a request.
func (s *Service) UpdateCategory(ctx context.Context, c model.Category, d model.CategoryDraft) (model.Category, error) {
	if c.IsSystem() {
		return model.Category{}, apperr.SystemCategory(c.Name)
	}
	if err := validate.Category(&d); err != nil {
		return model.Category{}, err
	}
	return query.Mutate(ctx, s.q, query.Categories, func(ctx context.Context) (model.Category, error) {
		return s.api.UpdateCategory(ctx, c.ID, d)
	})
}

// DeleteCategory removes c. System categories are refused without a request.
func (s *Service) DeleteCategory(ctx context.Context, c model.Category) error {
	if c.IsSystem() {
		return apperr.SystemCategory(c.Name)
	}
	_, err := query.Mutate(ctx, s.q, query.Categories, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteCategory(ctx, c.ID)
	})
	return err
}

// ---- transactions

// Transactions lists transactions matching f.
func (s *Service) Transactions(ctx context.Context, f model.TransactionFilters) ([]model.Transaction, error) {
	return query.Fetch(ctx, s.q, query.K(query.Transactions, f), func(ctx context.Context) ([]model.Transaction, error) {
		return s.api.ListTransactions(ctx, f)
	})
}

// Transaction fetches one transaction.
func (s *Service) Transaction(ctx context.Context, id string) (model.Transaction, error) {
	return query.Fetch(ctx, s.q, query.K(query.Transactions, "id", id), func(ctx context.Context) (model.Transaction, error) {
		return s.api.GetTransaction(ctx, id)
	})
}

// CreateTransaction validates d, checks it against its category's type and
// creates it. Budgets are invalidated along with transactions.
func (s *Service) CreateTransaction(ctx context.Context, d model.TransactionDraft) (model.Transaction, error) {
	if err := s.checkTransaction(ctx, &d); err != nil {
		return model.Transaction{}, err
	}
	return query.Mutate(ctx, s.q, query.Transactions, func(ctx context.Context) (model.Transaction, error) {
		return s.api.CreateTransaction(ctx, d)
	})
}

// UpdateTransaction replaces transaction id with d.
func (s *Service) UpdateTransaction(ctx context.Context, id string, d model.TransactionDraft) (model.Transaction, error) {
	if err := s.checkTransaction(ctx, &d); err != nil {
		return model.Transaction{}, err
	}
	return query.Mutate(ctx, s.q, query.Transactions, func(ctx context.Context) (model.Transaction, error) {
		return s.api.UpdateTransaction(ctx, id, d)
	})
}

// DeleteTransaction removes transaction id.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	_, err := query.Mutate(ctx, s.q, query.Transactions, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteTransaction(ctx, id)
	})
	return err
}

func (s *Service) checkTransaction(ctx context.Context, d *model.TransactionDraft) error {
	if err := validate.Transaction(d); err != nil {
		return err
	}
	cat, err := s.resolveCategory(ctx, d.CategoryID)
	if err != nil {
		return err
	}
	return validate.TypeMatchesCategory(*d, cat)
}

// resolveCategory finds id in the cached category list, refetching once if
// the cache predates the category.
func (s *Service) resolveCategory(ctx context.Context, id string) (model.Category, error) {
	for attempt := 0; attempt < 2; attempt++ {
		cats, err := s.Categories(ctx, "")
		if err != nil {
			return model.Category{}, fmt.Errorf("resolving category: %w", err)
		}
		for _, c := range cats {
			if c.ID == id {
				return c, nil
			}
		}
		s.q.Invalidate(query.Categories)
	}
	return model.Category{}, apperr.Invalid("categoryId", "does not exist")
}

// ---- budgets

// Budgets lists the budgets of one month.
func (s *Service) Budgets(ctx context.Context, month, year int) ([]model.Budget, error) {
	return query.Fetch(ctx, s.q, query.K(query.Budgets, month, year), func(ctx context.Context) ([]model.Budget, error) {
		return s.api.ListBudgets(ctx, month, year)
	})
}

// Budget fetches one budget.
func (s *Service) Budget(ctx context.Context, id string) (model.Budget, error) {
	return query.Fetch(ctx, s.q, query.K(query.Budgets, id), func(ctx context.Context) (model.Budget, error) {
		return s.api.GetBudget(ctx, id)
	})
}

// BudgetAlerts returns the server's current warning and exceeded budgets.
func (s *Service) BudgetAlerts(ctx context.Context) ([]model.BudgetAlert, error) {
	return query.Fetch(ctx, s.q, query.K(query.Budgets, "alerts"), func(ctx context.Context) ([]model.BudgetAlert, error) {
		return s.api.BudgetAlerts(ctx)
	})
}

// CreateBudget validates d and creates it.
func (s *Service) CreateBudget(ctx context.Context, d model.BudgetDraft) (model.Budget, error) {
	if err := validate.Budget(&d); err != nil {
		return model.Budget{}, err
	}
	return query.Mutate(ctx, s.q, query.Budgets, func(ctx context.Context) (model.Budget, error) {
		return s.api.CreateBudget(ctx, d)
	})
}

// UpdateBudget replaces budget id with d.
func (s *Service) UpdateBudget(ctx context.Context, id string, d model.BudgetDraft) (model.Budget, error) {
	if err := validate.Budget(&d); err != nil {
		return model.Budget{}, err
	}
	return query.Mutate(ctx, s.q, query.Budgets, func(ctx context.Context) (model.Budget, error) {
		return s.api.UpdateBudget(ctx, id, d)
	})
}

// DeleteBudget removes budget id.
func (s *Service) DeleteBudget(ctx context.Context, id string) error {
	_, err := query.Mutate(ctx, s.q, query.Budgets, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteBudget(ctx, id)
	})
	return err
}

// ---- composites

// LoadDashboard fetches every transaction and the month's budgets in
// parallel and aggregates them.
func (s *Service) LoadDashboard(ctx context.Context, month, year int, now time.Time) (pipeline.Dashboard, error) {
	var (
		txs     []model.Transaction
		budgets []model.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.Transactions(gctx, model.TransactionFilters{})
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.Budgets(gctx, month, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return pipeline.Dashboard{}, err
	}
	return pipeline.BuildDashboard(txs, budgets, month, year, now), nil
}

// Overview is what the categories screen shows: system and personal lists.
type Overview struct {
	System   []model.Category
	Personal []model.Category
}

// CategoryOverview splits all categories into system and personal.
func (s *Service) CategoryOverview(ctx context.Context) (Overview, error) {
	cats, err := s.Categories(ctx, "")
	if err != nil {
		return Overview{}, err
	}
	sys, own := pipeline.SplitCategories(cats)
	return Overview{System: sys, Personal: own}, nil
}

// FilteredTransactions applies every filter locally over the full
// transaction set. It shares the unfiltered cache entry with LoadDashboard,
// so changing filters never refetches, and months are bucketed by each
// transaction's calendar date rather than by the server.
func (s *Service) FilteredTransactions(ctx context.Context, f pipeline.Filter) ([]model.Transaction, error) {
	txs, err := s.Transactions(ctx, model.TransactionFilters{})
	if err != nil {
		return nil, err
	}
	out := f.Apply(txs)
	pipeline.SortByDateDesc(out)
	return out, nil
}
