package feed

import (
	"strings"
)

// SplitLine splits a feed line of the form "<ordinal>. <key>: <json>" into
// key and raw JSON value. The ordinal prefix is optional. Only the first ':'
// separates, so the value may contain colons.
func SplitLine(line string) (key, value string, err error) {
	s := stripOrdinal(strings.TrimSpace(line))

	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", "", ErrNoSeparator
	}

	key = strings.TrimSpace(s[:i])
	value = strings.TrimSpace(s[i+1:])
	if key == "" {
		return "", "", ErrEmptyKey
	}
	if value == "" {
		return "", "", ErrEmptyValue
	}
	return key, value, nil
}

// stripOrdinal removes a leading "12." (and the spaces after it).
func stripOrdinal(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '.' {
		return s
	}
	return strings.TrimLeft(s[i+1:], " \t")
}
