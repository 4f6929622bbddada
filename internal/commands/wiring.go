package commands

import (
	"log/slog"
	"time"

	"github.com/omnis-dev/omnis/internal/banner"
	"github.com/omnis-dev/omnis/internal/config"
	"github.com/omnis-dev/omnis/internal/feed"
	"github.com/omnis-dev/omnis/internal/flow"
	"github.com/omnis-dev/omnis/internal/model"
	"github.com/omnis-dev/omnis/internal/tracking"
)

// sessionTTL bounds how long an abandoned flow session is kept.
const sessionTTL = 30 * time.Minute

func newFeedBuilder(cfg *config.Config, log *slog.Logger) *feed.Builder {
	client := feed.NewClient(cfg.Feed.Endpoint, feed.WithTimeout(cfg.Feed.Timeout))
	return feed.NewBuilder(client, cfg.Feed.UserID, cfg.Feed.TopK, log)
}

// newTracker returns the tracker and a function releasing its dedupe store.
func newTracker(cfg *config.Config, log *slog.Logger) (*tracking.Tracker, func()) {
	client := tracking.NewClient(cfg.Tracking.Endpoint, tracking.WithTimeout(cfg.Tracking.Timeout))

	var store tracking.DedupeStore
	closeStore := func() {}
	if cfg.Tracking.RedisAddr != "" {
		rs := tracking.NewRedisStore(cfg.Tracking.RedisAddr, cfg.Tracking.DedupeTTL)
		store = rs
		closeStore = func() {
			if err := rs.Close(); err != nil {
				log.Warn("closing redis", "error", err)
			}
		}
		log.Debug("conversion dedupe via redis", "addr", cfg.Tracking.RedisAddr)
	} else if cfg.Tracking.DedupeTTL > 0 {
		store = tracking.NewMemoryStore(cfg.Tracking.DedupeTTL)
	}

	return tracking.NewTracker(client, store, cfg.Tracking.LogDir, log), closeStore
}

func newFlowManager(tracker flow.Tracker, log *slog.Logger) *flow.Manager {
	plan := model.FlexibleSavings(model.DemoUser(time.Now()))
	return flow.NewManager(plan, tracker, sessionTTL, log)
}

func bannerConfig(cfg config.BannerConfig) banner.Config {
	return banner.Config{
		InitialDelay:         cfg.InitialDelay,
		AutoDismiss:          cfg.AutoDismiss,
		Reappear:             cfg.Reappear,
		SwipeThreshold:       cfg.SwipeThreshold,
		OfferID:              cfg.OfferID,
		ReappearAfterDismiss: cfg.ReappearAfterDismiss,
	}
}
