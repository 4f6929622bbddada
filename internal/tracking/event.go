package tracking

import (
	"errors"
	"fmt"
	"strings"
)

// Action is the kind of interaction reported to the recommendation service.
type Action string

const (
	ActionClicked   Action = "clicked"
	ActionConverted Action = "converted"
)

// ErrMissingIDs is returned when an event lacks a token or recommendation ID.
var ErrMissingIDs = errors.New("token_id and recommendation_id are required")

// ParseAction accepts "clicked" or "converted" in any case.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionClicked, ActionConverted:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q (want clicked or converted)", s)
	}
}

// Event is one interaction with a recommendation.
type Event struct {
	TokenID          string
	RecommendationID string
	Action           Action
}

// Validate reports ErrMissingIDs when either identifier is blank.
func (e Event) Validate() error {
	if strings.TrimSpace(e.TokenID) == "" || strings.TrimSpace(e.RecommendationID) == "" {
		return ErrMissingIDs
	}
	if _, err := ParseAction(string(e.Action)); err != nil {
		return err
	}
	return nil
}

func (e Event) key() string {
	return string(e.Action) + ":" + e.TokenID + ":" + e.RecommendationID
}
