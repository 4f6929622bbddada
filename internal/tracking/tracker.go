package tracking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/omnis-dev/omnis/internal/logger"
)

// Tracker reports interactions on a best-effort basis. Nothing it does can
// fail the caller: every error is logged and recorded, then dropped.
type Tracker struct {
	sender  Sender
	dedupe  DedupeStore
	logDir  string
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time

	wg sync.WaitGroup
}

// NewTracker returns a tracker that sends through sender. dedupe may be
// nil, and so may logDir be empty, to disable either feature.
func NewTracker(sender Sender, dedupe DedupeStore, logDir string, log *slog.Logger) *Tracker {
	return &Tracker{
		sender:  sender,
		dedupe:  dedupe,
		logDir:  logDir,
		timeout: 10 * time.Second,
		log:     logger.OrDefault(log),
		now:     time.Now,
	}
}

// Track sends ev and returns what happened. Events missing an ID are
// skipped with a warning. Repeat conversions are dropped when a dedupe
// store is configured.
func (t *Tracker) Track(ctx context.Context, ev Event) Outcome {
	log := t.log.With("token_id", ev.TokenID, "recommendation_id", ev.RecommendationID, "action", ev.Action)

	if err := ev.Validate(); err != nil {
		log.Warn("skipping tracking call", "error", err)
		t.record(ev, OutcomeSkipped, err.Error())
		return OutcomeSkipped
	}

	claimed := false
	if ev.Action == ActionConverted && t.dedupe != nil {
		fresh, err := t.dedupe.Claim(ctx, ev.key())
		claimed = err == nil && fresh
		if err != nil {
			log.Warn("dedupe store unavailable, sending anyway", "error", err)
		} else if !fresh {
			log.Info("duplicate conversion dropped")
			t.record(ev, OutcomeDuplicate, "")
			return OutcomeDuplicate
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.sender.Send(sendCtx, ev)
	if err != nil {
		log.Error("tracking call failed", "error", err)
		// An undelivered conversion must stay retryable.
		if claimed {
			if rerr := t.dedupe.Release(context.WithoutCancel(ctx), ev.key()); rerr != nil {
				log.Warn("releasing dedupe claim", "error", rerr)
			}
		}
		t.record(ev, OutcomeFailed, err.Error())
		return OutcomeFailed
	}
	log.Info("tracking call sent", "status", resp.StatusCode, "response", resp.Body)
	t.record(ev, OutcomeSent, resp.Body)
	return OutcomeSent
}

// Go runs Track in the background, detached from ctx's cancellation so a
// finished request does not abort the report.
func (t *Tracker) Go(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.Track(ctx, ev)
	}()
}

// Wait blocks until every call started with Go has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) record(ev Event, outcome Outcome, detail string) {
	if t.logDir == "" {
		return
	}
	err := AppendLog(t.logDir, LogEntry{
		Timestamp:        t.now(),
		TokenID:          ev.TokenID,
		RecommendationID: ev.RecommendationID,
		Action:           ev.Action,
		Outcome:          outcome,
		Detail:           detail,
	})
	if err != nil {
		t.log.Warn("writing interaction log", "error", err)
	}
}
