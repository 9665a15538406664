package models

import (
	"fmt"
	"strings"
	"time"
)

// LocalDateTimeLayout is the zone-less timestamp format accepted from clients.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// ParseTimestamp accepts RFC 3339 values and zone-less local date-times.
// Zone-less values are interpreted in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{LocalDateTimeLayout, "2006-01-02T15:04", "2006-01-02T15:04:05.999999999"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}
