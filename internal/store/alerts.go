package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// AlertEvent records one budget status transition seen by the daemon.
type AlertEvent struct {
	ID           int64
	BudgetID     string
	CategoryName string
	Previous     model.BudgetStatus
	Status       model.BudgetStatus
	Percentage   decimal.Decimal
	Spent        decimal.Decimal
	BudgetAmount decimal.Decimal
	ObservedAt   time.Time
}

// RecordAlertEvent appends an event and returns its id.
func (s *Store) RecordAlertEvent(e AlertEvent) (int64, error) {
	if e.ObservedAt.IsZero() {
		e.ObservedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO alert_events
		(budget_id, category_name, previous, status, percentage, spent, budget_amount, observed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BudgetID, e.CategoryName, string(e.Previous), string(e.Status),
		e.Percentage.String(), e.Spent.String(), e.BudgetAmount.String(),
		e.ObservedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("store: record alert: %w", err)
	}
	return res.LastInsertId()
}

// AlertEvents returns up to limit events, newest first.
func (s *Store) AlertEvents(limit int) ([]AlertEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, budget_id, category_name, previous, status,
		percentage, spent, budget_amount, observed_at
		FROM alert_events ORDER BY observed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []AlertEvent
	for rows.Next() {
		var e AlertEvent
		var prev, status, pct, spent, amount, observed string
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.CategoryName, &prev, &status,
			&pct, &spent, &amount, &observed); err != nil {
			return nil, err
		}
		e.Previous = model.BudgetStatus(prev)
		e.Status = model.BudgetStatus(status)
		e.Percentage, _ = decimal.NewFromString(pct)
		e.Spent, _ = decimal.NewFromString(spent)
		e.BudgetAmount, _ = decimal.NewFromString(amount)
		e.ObservedAt, _ = time.Parse(time.RFC3339Nano, observed)
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastStatuses returns the most recent recorded status per budget, so a
// restarted watcher does not re-announce transitions it already saw.
func (s *Store) LastStatuses() (map[string]model.BudgetStatus, error) {
	rows, err := s.db.Query(`SELECT e.budget_id, e.status FROM alert_events e
		WHERE e.id = (SELECT MAX(id) FROM alert_events WHERE budget_id = e.budget_id)`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]model.BudgetStatus)
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, err
		}
		out[id] = model.BudgetStatus(status)
	}
	return out, rows.Err()
}
