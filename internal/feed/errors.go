package feed

import (
	"errors"
)

// Fetch-cycle errors. All are terminal for the cycle; nothing is retried.
var (
	ErrTransport              = errors.New("recommendation service request failed")
	ErrIdentityNotFound       = errors.New("user not found by recommendation service")
	ErrEmptyRecommendationSet = errors.New("recommendation service returned no recommendations")
	ErrNoDerivableCards       = errors.New("no recommendation cards could be derived")
)

// Line-level errors. A line failing with one of these is skipped.
var (
	ErrNoSeparator = errors.New("missing ':' separator")
	ErrEmptyKey    = errors.New("empty key")
	ErrEmptyValue  = errors.New("empty value")
	ErrUnknownKey  = errors.New("unknown key")
)

// UserMessage maps a fetch-cycle error to the message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIdentityNotFound):
		return "We couldn't find your profile to personalise recommendations."
	case errors.Is(err, ErrEmptyRecommendationSet):
		return "There are no recommendations for you yet. Check back soon."
	case errors.Is(err, ErrNoDerivableCards):
		return "No recommendations could be generated from your profile right now."
	case errors.Is(err, ErrTransport):
		return "We couldn't load your recommendations. Please try again later."
	default:
		return "Something went wrong while loading your recommendations."
	}
}
