// Package daemon provides the long-running budget alert watcher.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/theirongolddev/tally/internal/logger"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/store"
)

// Event types.
const (
	EventSnapshot   = "snapshot"
	EventTransition = "budget_transition"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	APIBaseURL   string
}

// AlertSource yields the server's current budget alerts. *api.Client
// satisfies it.
type AlertSource interface {
	BudgetAlerts(ctx context.Context) ([]model.BudgetAlert, error)
}

// History persists transitions. *store.Store satisfies it.
type History interface {
	LastStatuses() (map[string]model.BudgetStatus, error)
	RecordAlertEvent(e store.AlertEvent) (int64, error)
}

// Publisher forwards events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Snapshot is the alert state at one poll.
type Snapshot struct {
	At       time.Time           `json:"at"`
	Warning  int                 `json:"warning"`
	Exceeded int                 `json:"exceeded"`
	Alerts   []model.BudgetAlert `json:"alerts"`
}

// Transition is a budget moving between statuses.
type Transition struct {
	BudgetID     string             `json:"budgetId"`
	CategoryName string             `json:"categoryName"`
	Previous     model.BudgetStatus `json:"previous"`
	Status       model.BudgetStatus `json:"status"`
	Percentage   decimal.Decimal    `json:"percentage"`
	Spent        decimal.Decimal    `json:"spent"`
	BudgetAmount decimal.Decimal    `json:"budgetAmount"`
}

// Event is emitted on the first poll and whenever a budget changes status.
type Event struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"`
	Timestamp   time.Time    `json:"timestamp"`
	Snapshot    Snapshot     `json:"snapshot"`
	Transitions []Transition `json:"transitions,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	APIBaseURL      string    `json:"api_base_url,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	src  AlertSource
	hist History
	pub  Publisher
	log  *zap.SugaredLogger
	now  func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	known       map[string]model.BudgetStatus
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// Option configures a Service.
type Option func(*Service)

// WithHistory persists transitions and seeds known statuses from it.
func WithHistory(h History) Option {
	return func(s *Service) { s.hist = h }
}

// WithPublisher forwards every event to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// New returns a new daemon service with the provided config.
func New(cfg Config, src AlertSource, opts ...Option) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	s := &Service{
		cfg:       cfg,
		src:       src,
		log:       logger.Named("daemon"),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", s.handleHealth)
	r.GET("/v1/status", s.handleStatus)
	r.GET("/v1/events", s.handleEvents)
	r.GET("/v1/stream", s.handleStream)
	return r
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if s.pub != nil {
				_ = s.pub.Close()
			}
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	alerts, err := s.src.BudgetAlerts(ctx)
	now := s.now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warnw("poll failed", "error", err)
		return
	}

	known := s.knownStatuses()
	transitions := Diff(known, alerts)
	for _, t := range transitions {
		s.record(t, now)
	}

	snap := snapshotFromAlerts(alerts, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prevExists := s.hasSnapshot
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	for _, t := range transitions {
		s.known[t.BudgetID] = t.Status
	}

	switch {
	case !prevExists:
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap, Transitions: transitions}
		publish = true
	case len(transitions) > 0:
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventTransition, Timestamp: now, Snapshot: snap, Transitions: transitions}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ctx, ev)
	}
}

// knownStatuses returns a copy of the last seen status per budget, loading
// it from history on first use.
func (s *Service) knownStatuses() map[string]model.BudgetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.known == nil {
		s.known = make(map[string]model.BudgetStatus)
		if s.hist != nil {
			prev, err := s.hist.LastStatuses()
			if err != nil {
				s.log.Warnw("could not load alert history", "error", err)
			}
			for id, st := range prev {
				s.known[id] = st
			}
		}
	}
	out := make(map[string]model.BudgetStatus, len(s.known))
	for id, st := range s.known {
		out[id] = st
	}
	return out
}

func (s *Service) record(t Transition, at time.Time) {
	s.log.Infow("budget status changed",
		"budget", t.BudgetID, "category", t.CategoryName,
		"from", t.Previous, "to", t.Status, "percentage", t.Percentage.String())
	if s.hist == nil {
		return
	}
	_, err := s.hist.RecordAlertEvent(store.AlertEvent{
		BudgetID:     t.BudgetID,
		CategoryName: t.CategoryName,
		Previous:     t.Previous,
		Status:       t.Status,
		Percentage:   t.Percentage,
		Spent:        t.Spent,
		BudgetAmount: t.BudgetAmount,
		ObservedAt:   at,
	})
	if err != nil {
		s.log.Warnw("could not record transition", "budget", t.BudgetID, "error", err)
	}
}

// Diff compares the last known statuses with the current alert list. A
// budget missing from alerts is ok; unknown budgets start from ok.
// Transitions are sorted by budget id.
func Diff(known map[string]model.BudgetStatus, alerts []model.BudgetAlert) []Transition {
	var out []Transition
	seen := make(map[string]bool, len(alerts))
	for _, a := range alerts {
		seen[a.BudgetID] = true
		cur := pipeline.AlertStatus(a)
		prev, ok := known[a.BudgetID]
		if !ok {
			prev = model.StatusOK
		}
		if prev == cur {
			continue
		}
		out = append(out, Transition{
			BudgetID:     a.BudgetID,
			CategoryName: a.CategoryName,
			Previous:     prev,
			Status:       cur,
			Percentage:   a.Percentage,
			Spent:        a.Spent,
			BudgetAmount: a.BudgetAmount,
		})
	}
	for id, prev := range known {
		if seen[id] || prev == model.StatusOK {
			continue
		}
		out = append(out, Transition{BudgetID: id, Previous: prev, Status: model.StatusOK})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BudgetID < out[j].BudgetID })
	return out
}

func snapshotFromAlerts(alerts []model.BudgetAlert, at time.Time) Snapshot {
	snap := Snapshot{At: at, Alerts: alerts}
	for _, a := range alerts {
		switch pipeline.AlertStatus(a) {
		case model.StatusWarning:
			snap.Warning++
		case model.StatusExceeded:
			snap.Exceeded++
		}
	}
	return snap
}

func (s *Service) publishEvent(ctx context.Context, ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()

	if s.pub != nil {
		if err := s.pub.Publish(ctx, ev); err != nil {
			s.log.Warnw("publish failed", "event", ev.ID, "error", err)
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		APIBaseURL:      s.cfg.APIBaseURL,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

func (s *Service) handleStream(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	c.SSEvent(EventSnapshot, Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev := <-ch:
			c.SSEvent(ev.Type, ev)
			return true
		}
	})
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
