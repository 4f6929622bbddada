package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omnis-dev/omnis/internal/logger"
	"github.com/omnis-dev/omnis/internal/model"
)

// StatusSuccess is the nested status reported with a usable feed.
const StatusSuccess = "success"

// Builder runs one fetch, parse and derive cycle.
type Builder struct {
	fetcher  Fetcher
	userID   string
	topK     int
	log      *slog.Logger
	registry *Registry
	now      func() time.Time
}

// NewBuilder returns a builder fetching topK recommendations for userID.
func NewBuilder(fetcher Fetcher, userID string, topK int, log *slog.Logger) *Builder {
	return &Builder{
		fetcher:  fetcher,
		userID:   userID,
		topK:     topK,
		log:      logger.OrDefault(log),
		registry: DefaultRegistry(),
		now:      time.Now,
	}
}

// WithRegistry replaces the decoder registry.
func (b *Builder) WithRegistry(r *Registry) *Builder {
	b.registry = r
	return b
}

// WithNow replaces the clock used for maturity and generated IDs.
func (b *Builder) WithNow(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build fetches the feed and derives cards. The returned error, if any,
// matches one of ErrTransport, ErrIdentityNotFound, ErrEmptyRecommendationSet
// or ErrNoDerivableCards; cards are nil whenever err is non-nil.
func (b *Builder) Build(ctx context.Context) ([]model.Card, error) {
	resp, err := b.fetcher.Fetch(ctx, b.userID, b.topK)
	if err != nil {
		return nil, err
	}

	rec := resp.Recommendations
	if !rec.UserDataFound {
		return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, b.userID)
	}
	if rec.Status != StatusSuccess {
		return nil, fmt.Errorf("%w: status %q", ErrEmptyRecommendationSet, rec.Status)
	}
	if len(rec.ProductRecommended) == 0 {
		return nil, ErrEmptyRecommendationSet
	}

	data, results := b.registry.Parse(rec.ProductRecommended)
	for _, r := range results {
		if !r.Decoded {
			b.log.Warn("skipping feed line", "index", r.Index, "key", r.Key, "error", r.Err)
		}
	}

	cards := Derive(data, b.now())
	if len(cards) == 0 {
		return nil, ErrNoDerivableCards
	}
	b.log.Debug("derived cards", "user_id", b.userID, "lines", len(results), "cards", len(cards))
	return cards, nil
}

// Snapshot is the state a caller renders: loading, or a terminal error, or cards.
type Snapshot struct {
	Loading bool
	Err     error
	Cards   []model.Card
}

// Message returns the user-facing text for Err.
func (s Snapshot) Message() string {
	return UserMessage(s.Err)
}

// Feed owns at most one in-flight build. Starting a new Load cancels the
// previous one and its result is dropped, so Snapshot never shows stale cards.
type Feed struct {
	builder *Builder

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	snap   Snapshot
}

// NewFeed wraps a builder.
func NewFeed(b *Builder) *Feed {
	return &Feed{builder: b}
}

// Load starts a build. The returned channel is closed once the build has
// finished, whether its result was applied or discarded.
func (f *Feed) Load(ctx context.Context) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	gen := f.gen
	f.cancel = cancel
	f.snap = Snapshot{Loading: true}
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		cards, err := f.builder.Build(ctx)

		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.gen {
			return
		}
		f.cancel = nil
		f.snap = Snapshot{Err: err, Cards: cards}
	}()
	return done
}

// Snapshot returns the current state. Cards are replaced wholesale per build.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Close cancels any in-flight build and discards its result.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	f.snap.Loading = false
}
