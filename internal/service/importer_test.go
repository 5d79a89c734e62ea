package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/model"
)

func TestImportTransactions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	drafts := []model.TransactionDraft{
		{Amount: decimal.NewFromInt(10), Type: model.Expense, Date: f.january, CategoryID: f.food.ID, Description: "a"},
		{Amount: decimal.NewFromInt(20), Type: model.Expense, Date: f.january, CategoryID: f.salary.ID, Description: "wrong type"},
		{Amount: decimal.NewFromInt(30), Type: model.Income, Date: f.january, CategoryID: f.salary.ID, Description: "c"},
		{Amount: decimal.Zero, Type: model.Expense, Date: f.january, CategoryID: f.food.ID, Description: "zero"},
	}

	var calls atomic.Int64
	var last atomic.Int64
	res := f.svc.ImportTransactions(ctx, drafts, 3, func(current, total int) {
		calls.Add(1)
		assert.Equal(t, len(drafts), total)
		if int64(current) > last.Load() {
			last.Store(int64(current))
		}
	})

	assert.Equal(t, int64(4), calls.Load())
	assert.Equal(t, int64(4), last.Load())
	require.Len(t, res.Created, 2)
	assert.Equal(t, "a", res.Created[0].Description, "input order kept")
	assert.Equal(t, "c", res.Created[1].Description)
	assert.Equal(t, 2, res.Failed)

	assert.NoError(t, res.Errs[0])
	_, ok := apperr.AsValidation(res.Errs[1])
	assert.True(t, ok)
	assert.NoError(t, res.Errs[2])
	_, ok = apperr.AsValidation(res.Errs[3])
	assert.True(t, ok)

	assert.Equal(t, 2, f.fake.Count(http.MethodPost, "/transactions"))
}

func TestImportTransactionsCancelled(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drafts := []model.TransactionDraft{
		{Amount: decimal.NewFromInt(10), Type: model.Expense, Date: f.january, CategoryID: f.food.ID},
		{Amount: decimal.NewFromInt(20), Type: model.Expense, Date: f.january, CategoryID: f.food.ID},
	}
	res := f.svc.ImportTransactions(ctx, drafts, 0, nil)
	assert.Empty(t, res.Created)
	assert.Equal(t, 2, res.Failed)
	assert.ErrorIs(t, res.Errs[0], context.Canceled)
	assert.Empty(t, f.fake.Requests())
}

func TestImportTransactionsEmpty(t *testing.T) {
	f := setup(t)
	res := f.svc.ImportTransactions(context.Background(), nil, 4, nil)
	assert.Empty(t, res.Created)
	assert.Zero(t, res.Failed)
}
