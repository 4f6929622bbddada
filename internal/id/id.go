package id

import (
	"fmt"
	"strings"
	"time"
)

// CardID returns a card ID like "high-performer-INV002". An empty sourceID
// yields just the kind.
func CardID(kind, sourceID string) string {
	kind = Slug(kind)
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return kind
	}
	return kind + "-" + sourceID
}

// GeneratedID returns a timestamp-based ID like "loan-1718000000000" for
// cards whose source carries no identifier. Such IDs change on every fetch.
func GeneratedID(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%d", Slug(kind), now.UnixMilli())
}

// Slug lowercases s and joins its words with dashes.
// "Premium Savings" -> "premium-savings"
func Slug(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), "-")
}
