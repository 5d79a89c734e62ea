package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/tally/internal/model"
)

// DefaultImportWorkers bounds concurrent creates during an import.
const DefaultImportWorkers = 4

// ProgressFunc is called after each draft is processed.
// current is the number of drafts done so far, total is the draft count.
type ProgressFunc func(current, total int)

// ImportResult holds the outcome of a bulk import. Errs is parallel to the
// input drafts; a nil entry means the draft was created.
type ImportResult struct {
	Created []model.Transaction
	Errs    []error
	Failed  int
}

// ImportTransactions creates drafts through a bounded worker pool. Each
// draft goes through CreateTransaction, so it is validated and checked
// against its category like a single create. A cancelled ctx stops workers
// picking up new drafts; the remaining entries carry ctx.Err().
func (s *Service) ImportTransactions(ctx context.Context, drafts []model.TransactionDraft, workers int, progressFn ProgressFunc) ImportResult {
	res := ImportResult{Errs: make([]error, len(drafts))}
	if len(drafts) == 0 {
		return res
	}

	if workers < 1 {
		workers = DefaultImportWorkers
	}
	if n := runtime.GOMAXPROCS(0) * 2; workers > n {
		workers = n
	}
	if workers > len(drafts) {
		workers = len(drafts)
	}

	work := make(chan int, len(drafts))
	created := make([]*model.Transaction, len(drafts))
	var wg sync.WaitGroup
	var processed atomic.Int64

	// Feed work
	for i := range drafts {
		work <- i
	}
	close(work)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if err := ctx.Err(); err != nil {
					res.Errs[idx] = err
				} else if tx, err := s.CreateTransaction(ctx, drafts[idx]); err != nil {
					res.Errs[idx] = err
				} else {
					created[idx] = &tx
				}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(drafts))
				}
			}
		}()
	}

	wg.Wait()

	// Collect in input order
	for i, tx := range created {
		if tx != nil {
			res.Created = append(res.Created, *tx)
			continue
		}
		res.Failed++
		s.log.Debugw("import row failed", "index", i, "error", res.Errs[i])
	}
	return res
}
