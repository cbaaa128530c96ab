package search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength is counted in characters (runes) of the trimmed query.
const MaxQueryLength = 500

const (
	DefaultLimit     = 10
	DefaultThreshold = 0.3
)

// Request is one search. Limit and Threshold are forwarded to the store as given.
type Request struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

// Defaults fills in parameters the caller left out.
type Defaults struct {
	Limit     int
	Threshold float64
}

// orBuiltin replaces an unset Defaults. A zero threshold on its own is a valid choice.
func (d Defaults) orBuiltin() Defaults {
	if d == (Defaults{}) {
		return Defaults{Limit: DefaultLimit, Threshold: DefaultThreshold}
	}
	if d.Limit <= 0 {
		d.Limit = DefaultLimit
	}
	return d
}

// ValidateQuery trims raw and checks that it is present and not too long.
func ValidateQuery(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", &BadRequestError{Message: MsgQueryRequired}
	}
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return "", &BadRequestError{Message: MsgQueryTooLong}
	}
	return q, nil
}

// ParseLimit parses an integer limit. An empty value yields def; an unparseable
// one yields def and an error the caller may log. Parsed values are not clamped.
func ParseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("invalid limit %q: %w", raw, err)
	}
	return n, nil
}

// ParseThreshold parses a float threshold with the same rules as ParseLimit.
func ParseThreshold(raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("invalid threshold %q: %w", raw, err)
	}
	return f, nil
}
