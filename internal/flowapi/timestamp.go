package flowapi

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the compact ISO-8601 form the backend uses for every date field
const TimestampLayout = "20060102T150405Z"

var parseLayouts = []string{
	"20060102T150405Z07:00",
	"20060102T150405Z0700",
	"20060102T150405Z07",
}

// ParseTimestamp parses a backend timestamp into loc. An empty string yields nil.
func ParseTimestamp(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.In(loc)
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
