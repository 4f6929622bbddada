package tracking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnis-dev/omnis/internal/logger"
)

var testTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func clicked() Event {
	return Event{TokenID: "tok-1", RecommendationID: "rec-9", Action: ActionClicked}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Converted ")
	require.NoError(t, err)
	assert.Equal(t, ActionConverted, a)

	_, err = ParseAction("liked")
	assert.Error(t, err)
}

func TestEventValidate(t *testing.T) {
	assert.NoError(t, clicked().Validate())
	assert.ErrorIs(t, Event{RecommendationID: "r", Action: ActionClicked}.Validate(), ErrMissingIDs)
	assert.ErrorIs(t, Event{TokenID: "t", RecommendationID: "  ", Action: ActionClicked}.Validate(), ErrMissingIDs)
	assert.Error(t, Event{TokenID: "t", RecommendationID: "r", Action: "liked"}.Validate())
}

func TestClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/interaction", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "tok-1", q.Get("token_id"))
		assert.Equal(t, "rec-9", q.Get("recommendation_id"))
		assert.Equal(t, "clicked", q.Get("action"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Zero(t, r.ContentLength)
		w.Write([]byte(`{"status":"recorded"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/api/v1/interaction").Send(context.Background(), clicked())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, "recorded")
}

func TestClient_SendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Send(context.Background(), clicked())
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	_, err = NewClient(srv.URL).Send(context.Background(), Event{Action: ActionClicked})
	assert.ErrorIs(t, err, ErrMissingIDs)
}

type fakeSender struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (f *fakeSender) Send(_ context.Context, ev Event) (Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if f.err != nil {
		return Response{}, f.err
	}
	return Response{StatusCode: 200, Body: "ok"}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newTestTracker(s Sender, d DedupeStore, dir string) *Tracker {
	tr := NewTracker(s, d, dir, logger.Discard())
	tr.now = func() time.Time { return testTime }
	return tr
}

func TestTracker_SkipsMissingIDs(t *testing.T) {
	dir := t.TempDir()
	s := &fakeSender{}
	tr := newTestTracker(s, nil, dir)

	assert.Equal(t, OutcomeSkipped, tr.Track(context.Background(), Event{TokenID: "t", Action: ActionClicked}))
	assert.Zero(t, s.count())

	entries, err := ReadLog(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, OutcomeSkipped, entries[0].Outcome)
}

func TestTracker_FailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	tr := newTestTracker(&fakeSender{err: errors.New("connection refused")}, nil, dir)

	assert.Equal(t, OutcomeFailed, tr.Track(context.Background(), clicked()))

	entries, err := ReadLog(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, OutcomeFailed, entries[0].Outcome)
	assert.Contains(t, entries[0].Detail, "connection refused")
}

func TestTracker_DedupesConversions(t *testing.T) {
	s := &fakeSender{}
	tr := newTestTracker(s, NewMemoryStore(time.Minute), "")

	conv := Event{TokenID: "t", RecommendationID: "r", Action: ActionConverted}
	assert.Equal(t, OutcomeSent, tr.Track(context.Background(), conv))
	assert.Equal(t, OutcomeDuplicate, tr.Track(context.Background(), conv))

	// Clicks are never deduplicated.
	click := Event{TokenID: "t", RecommendationID: "r", Action: ActionClicked}
	assert.Equal(t, OutcomeSent, tr.Track(context.Background(), click))
	assert.Equal(t, OutcomeSent, tr.Track(context.Background(), click))

	assert.Equal(t, 3, s.count())
}

func TestTracker_FailedConversionCanBeRetried(t *testing.T) {
	s := &fakeSender{err: errors.New("connection refused")}
	tr := newTestTracker(s, NewMemoryStore(time.Minute), "")
	conv := Event{TokenID: "t", RecommendationID: "r", Action: ActionConverted}

	assert.Equal(t, OutcomeFailed, tr.Track(context.Background(), conv))

	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	assert.Equal(t, OutcomeSent, tr.Track(context.Background(), conv))
	assert.Equal(t, OutcomeDuplicate, tr.Track(context.Background(), conv))
	assert.Equal(t, 2, s.count())
}

func TestMemoryStore_Release(t *testing.T) {
	m := NewMemoryStore(time.Minute)
	ok, _ := m.Claim(context.Background(), "k")
	require.True(t, ok)
	require.NoError(t, m.Release(context.Background(), "k"))

	ok, _ = m.Claim(context.Background(), "k")
	assert.True(t, ok)
}

type brokenStore struct{}

func (brokenStore) Release(context.Context, string) error {
	return errors.New("redis down")
}

func (brokenStore) Claim(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestTracker_DedupeErrorStillSends(t *testing.T) {
	s := &fakeSender{}
	tr := newTestTracker(s, brokenStore{}, "")
	conv := Event{TokenID: "t", RecommendationID: "r", Action: ActionConverted}
	assert.Equal(t, OutcomeSent, tr.Track(context.Background(), conv))
	assert.Equal(t, 1, s.count())
}

func TestTracker_GoDetachesFromCancel(t *testing.T) {
	s := &fakeSender{}
	tr := newTestTracker(s, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	tr.Go(ctx, clicked())
	cancel()
	tr.Wait()

	assert.Equal(t, 1, s.count())
}

func TestMemoryStore_Expires(t *testing.T) {
	m := NewMemoryStore(20 * time.Millisecond)
	ok, err := m.Claim(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.Claim(context.Background(), "k")
	assert.False(t, ok)

	time.Sleep(40 * time.Millisecond)
	ok, _ = m.Claim(context.Background(), "k")
	assert.True(t, ok)
}

func TestRedisStore_Claim(t *testing.T) {
	addr := os.Getenv("OMNIS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("OMNIS_TEST_REDIS_ADDR not set")
	}
	r := NewRedisStore(addr, time.Minute)
	defer r.Close()

	key := "test-" + time.Now().Format(time.RFC3339Nano)
	ok, err := r.Claim(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Claim(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Release(context.Background(), key))
	ok, err = r.Claim(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAppendLog_NewAndExisting(t *testing.T) {
	dir := t.TempDir()
	e := LogEntry{Timestamp: testTime, TokenID: "t", RecommendationID: "r", Action: ActionClicked, Outcome: OutcomeSent, Detail: `{"a":1,"b":"x, y"}`}
	require.NoError(t, AppendLog(dir, e))

	e2 := e
	e2.Action = ActionConverted
	require.NoError(t, AppendLog(dir, e2))

	entries, err := ReadLog(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionClicked, entries[0].Action)
	assert.Equal(t, ActionConverted, entries[1].Action)
	assert.Equal(t, e.Detail, entries[0].Detail)
	assert.True(t, entries[0].Timestamp.Equal(testTime))

	data, err := os.ReadFile(dir + "/" + LogFile)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,token_id"))
}

func TestReadLog_Missing(t *testing.T) {
	entries, err := ReadLog(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestReadLog_BadTimestamp(t *testing.T) {
	_, err := readEntries(strings.NewReader("timestamp,token_id,recommendation_id,action,outcome,detail\nyesterday,t,r,clicked,sent,\n"))
	assert.Error(t, err)
}
