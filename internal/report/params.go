package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ErrInvalidParameter marks malformed report parameters.
var ErrInvalidParameter = errors.New("invalid parameter")

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseBound parses a range endpoint. A bare calendar date yields a
// date-only bound; the other accepted layouts yield an exact instant.
// Values without an offset are interpreted in loc.
func ParseBound(v string, loc *time.Location) (Bound, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Bound{}, nil
	}
	if t, err := time.ParseInLocation(core.DateLayout, v, loc); err == nil {
		return OnDate(t), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return At(t), nil
		}
	}
	return Bound{}, fmt.Errorf("%w: date %q", ErrInvalidParameter, v)
}

// ParseOptionalID parses an optional positive integer id.
func ParseOptionalID(name, v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidParameter, name, v)
	}
	return &id, nil
}
