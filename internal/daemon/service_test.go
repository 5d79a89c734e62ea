package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/store"
)

type fakeSource struct {
	mu     sync.Mutex
	alerts []model.BudgetAlert
	err    error
}

func (f *fakeSource) set(alerts []model.BudgetAlert, err error) {
	f.mu.Lock()
	f.alerts, f.err = alerts, err
	f.mu.Unlock()
}

func (f *fakeSource) BudgetAlerts(context.Context) ([]model.BudgetAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alerts, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func alert(id string, spent, amount int64) model.BudgetAlert {
	a := model.BudgetAlert{
		BudgetID:     id,
		CategoryName: "cat-" + id,
		BudgetAmount: decimal.NewFromInt(amount),
		Spent:        decimal.NewFromInt(spent),
	}
	a.Percentage = a.Spent.Mul(decimal.NewFromInt(100)).Div(a.BudgetAmount)
	return a
}

func TestDiff(t *testing.T) {
	known := map[string]model.BudgetStatus{
		"a": model.StatusWarning,
		"b": model.StatusWarning,
		"c": model.StatusExceeded,
		"d": model.StatusOK,
	}
	alerts := []model.BudgetAlert{
		alert("a", 90, 100),  // unchanged warning
		alert("b", 120, 100), // warning -> exceeded
		alert("e", 80, 100),  // new warning
	}

	got := Diff(known, alerts)
	require.Len(t, got, 3)

	assert.Equal(t, "b", got[0].BudgetID)
	assert.Equal(t, model.StatusWarning, got[0].Previous)
	assert.Equal(t, model.StatusExceeded, got[0].Status)

	assert.Equal(t, "c", got[1].BudgetID, "dropped from alerts means back to ok")
	assert.Equal(t, model.StatusOK, got[1].Status)

	assert.Equal(t, "e", got[2].BudgetID)
	assert.Equal(t, model.StatusOK, got[2].Previous)
	assert.Equal(t, model.StatusWarning, got[2].Status)
}

func TestDiffNoChanges(t *testing.T) {
	known := map[string]model.BudgetStatus{"a": model.StatusWarning}
	assert.Empty(t, Diff(known, []model.BudgetAlert{alert("a", 85, 100)}))
	assert.Empty(t, Diff(nil, nil))
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, &fakeSource{})

	ctx := context.Background()
	s.publishEvent(ctx, Event{ID: 1})
	s.publishEvent(ctx, Event{ID: 2})
	s.publishEvent(ctx, Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.EqualValues(t, 2, s.events[0].ID)
	assert.EqualValues(t, 3, s.events[1].ID)
}

func TestPollRecordsTransitionsAndPublishes(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	defer st.Close()

	src := &fakeSource{}
	pub := &recordingPublisher{}
	s := New(Config{}, src, WithHistory(st), WithPublisher(pub))
	ctx := context.Background()

	src.set([]model.BudgetAlert{alert("b1", 85, 100)}, nil)
	s.pollOnce(ctx)
	src.set([]model.BudgetAlert{alert("b1", 85, 100)}, nil)
	s.pollOnce(ctx) // no change, no event
	src.set([]model.BudgetAlert{alert("b1", 110, 100)}, nil)
	s.pollOnce(ctx)

	require.Len(t, pub.events, 2)
	assert.Equal(t, EventSnapshot, pub.events[0].Type)
	assert.Equal(t, EventTransition, pub.events[1].Type)
	assert.Equal(t, 1, pub.events[1].Snapshot.Exceeded)

	history, err := st.AlertEvents(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.StatusExceeded, history[0].Status)
	assert.Equal(t, model.StatusWarning, history[0].Previous)

	status := s.snapshotStatus()
	assert.EqualValues(t, 3, status.PollCount)
	assert.Empty(t, status.LastError)
}

func TestRestartDoesNotReannounce(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	defer st.Close()

	src := &fakeSource{}
	src.set([]model.BudgetAlert{alert("b1", 90, 100)}, nil)

	New(Config{}, src, WithHistory(st)).pollOnce(context.Background())

	pub := &recordingPublisher{}
	restarted := New(Config{}, src, WithHistory(st), WithPublisher(pub))
	restarted.pollOnce(context.Background())

	require.Len(t, pub.events, 1)
	assert.Empty(t, pub.events[0].Transitions)

	history, err := st.AlertEvents(10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPollErrorKeepsLastSnapshot(t *testing.T) {
	src := &fakeSource{}
	s := New(Config{}, src)

	src.set([]model.BudgetAlert{alert("b1", 90, 100)}, nil)
	s.pollOnce(context.Background())
	src.set(nil, errors.New("api down"))
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	assert.Equal(t, "api down", st.LastError)
	assert.Equal(t, 1, st.Summary.Warning)
}

func TestHTTPStatusAndEvents(t *testing.T) {
	src := &fakeSource{}
	src.set([]model.BudgetAlert{alert("b1", 150, 100)}, nil)
	s := New(Config{APIBaseURL: "http://api.test"}, src)
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 1, st.Summary.Exceeded)
	assert.Equal(t, "http://api.test", st.APIBaseURL)

	resp2, err := http.Get(srv.URL + "/v1/events")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var events []Event
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, EventSnapshot, events[0].Type)

	resp3, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestStreamSendsSnapshotFirst(t *testing.T) {
	src := &fakeSource{}
	s := New(Config{}, src)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event:snapshot\n", line)
}
