// Package flow holds the short-lived context that follows one opened
// recommendation through viewing, the simulated transaction and feedback.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/omnis-dev/omnis/internal/logger"
	"github.com/omnis-dev/omnis/internal/model"
	"github.com/omnis-dev/omnis/internal/tracking"
)

// Phase is where a session is in the modal flow.
type Phase string

const (
	PhaseViewing     Phase = "viewing"
	PhaseTransacting Phase = "transacting"
	PhaseFeedback    Phase = "feedback"
	PhaseDone        Phase = "done"
	PhaseClosed      Phase = "closed"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseClosed
}

var (
	ErrNotFound          = errors.New("flow session not found")
	ErrInvalidTransition = errors.New("invalid flow transition")
	ErrInvalidRating     = errors.New("rating must be yes or no")
)

// Rating is the answer to "was this recommendation helpful?".
type Rating string

const (
	RatingYes Rating = "yes"
	RatingNo  Rating = "no"
)

// ParseRating accepts yes or no in any case.
func ParseRating(s string) (Rating, error) {
	switch r := Rating(strings.ToLower(strings.TrimSpace(s))); r {
	case RatingYes, RatingNo:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
}

// Feedback is what the user said after the transaction.
type Feedback struct {
	Rating  Rating `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Session is the context of one opened recommendation. The tracking IDs
// live here only until the transaction completes or the flow is closed.
type Session struct {
	ID                  string                   `json:"id"`
	CardID              string                   `json:"cardId"`
	Token               string                   `json:"token,omitempty"`
	APIRecommendationID string                   `json:"apiRecommendationId,omitempty"`
	Recommendation      model.Recommendation     `json:"recommendation"`
	Phase               Phase                    `json:"phase"`
	Result              *model.TransactionResult `json:"result,omitempty"`
	Feedback            *Feedback                `json:"feedback,omitempty"`
	OpenedAt            time.Time                `json:"openedAt"`
	UpdatedAt           time.Time                `json:"updatedAt"`
}

// Tracker reports interactions in the background.
type Tracker interface {
	Go(ctx context.Context, ev tracking.Event)
}

// Manager owns every live session. Sessions expire after the TTL given to
// NewManager whether or not they were finished.
type Manager struct {
	plan    model.Recommendation
	tracker Tracker
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions *cache.Cache
	latest   string
}

// NewManager returns a manager offering plan in every session.
func NewManager(plan model.Recommendation, tracker Tracker, ttl time.Duration, log *slog.Logger) *Manager {
	return &Manager{
		plan:     plan,
		tracker:  tracker,
		log:      logger.OrDefault(log),
		now:      time.Now,
		sessions: cache.New(ttl, 2*ttl),
	}
}

// Open starts a session for cardID and reports a click. Tracking is skipped
// when token or apiRecommendationID is empty.
func (m *Manager) Open(ctx context.Context, cardID, token, apiRecommendationID string) Session {
	now := m.now()
	s := &Session{
		ID:                  uuid.NewString(),
		CardID:              cardID,
		Token:               token,
		APIRecommendationID: apiRecommendationID,
		Recommendation:      m.plan,
		Phase:               PhaseViewing,
		OpenedAt:            now,
		UpdatedAt:           now,
	}

	m.mu.Lock()
	m.sessions.SetDefault(s.ID, s)
	m.latest = s.ID
	out := *s
	m.mu.Unlock()

	m.log.Info("recommendation opened", "session", s.ID, "card", cardID)
	m.track(ctx, s, tracking.ActionClicked)
	return out
}

// Apply reports a conversion and runs the simulated transaction. A zero
// amount lets the simulation pick one.
func (m *Manager) Apply(ctx context.Context, sessionID string, amount decimal.Decimal) (Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.Phase != PhaseViewing {
			return fmt.Errorf("%w: apply from %s", ErrInvalidTransition, s.Phase)
		}
		m.track(ctx, s, tracking.ActionConverted)
		result := model.SimulateTransaction(s.Recommendation, amount)
		s.Result = &result
		s.Phase = PhaseTransacting
		return nil
	})
}

// Complete acknowledges the transaction result, drops the tracking IDs and
// moves on to feedback.
func (m *Manager) Complete(sessionID string) (Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.Phase != PhaseTransacting {
			return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, s.Phase)
		}
		s.Token, s.APIRecommendationID = "", ""
		s.Phase = PhaseFeedback
		return nil
	})
}

// SubmitFeedback records the rating and finishes the flow.
func (m *Manager) SubmitFeedback(sessionID, rating, comment string) (Session, error) {
	r, err := ParseRating(rating)
	if err != nil {
		return Session{}, err
	}
	return m.update(sessionID, func(s *Session) error {
		if s.Phase != PhaseFeedback {
			return fmt.Errorf("%w: feedback from %s", ErrInvalidTransition, s.Phase)
		}
		s.Feedback = &Feedback{Rating: r, Comment: strings.TrimSpace(comment)}
		s.Phase = PhaseDone
		m.log.Info("feedback received", "session", s.ID, "rating", r)
		return nil
	})
}

// Close abandons the flow and clears its tracking context. Closing a
// finished session changes nothing.
func (m *Manager) Close(sessionID string) (Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.Phase.Terminal() {
			return nil
		}
		s.Token, s.APIRecommendationID = "", ""
		s.Phase = PhaseClosed
		return nil
	})
}

// Get returns a copy of the session.
func (m *Manager) Get(sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(sessionID)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return *s, nil
}

// Latest returns the most recently opened session, if it has not expired.
func (m *Manager) Latest() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.lookup(m.latest)
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// OnApplyRecommendation opens a session for the banner's offer.
func (m *Manager) OnApplyRecommendation(cardID, token, apiRecommendationID string) {
	m.Open(context.Background(), cardID, token, apiRecommendationID)
}

// OnViewRecommendation opens a session for the default plan without tracking IDs.
func (m *Manager) OnViewRecommendation() {
	m.Open(context.Background(), m.plan.ID, "", "")
}

func (m *Manager) update(sessionID string, fn func(*Session) error) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookup(sessionID)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err := fn(s); err != nil {
		return *s, err
	}
	s.UpdatedAt = m.now()
	return *s, nil
}

func (m *Manager) lookup(sessionID string) (*Session, bool) {
	if sessionID == "" {
		return nil, false
	}
	v, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (m *Manager) track(ctx context.Context, s *Session, action tracking.Action) {
	if m.tracker == nil {
		return
	}
	m.tracker.Go(ctx, tracking.Event{
		TokenID:          s.Token,
		RecommendationID: s.APIRecommendationID,
		Action:           action,
	})
}
