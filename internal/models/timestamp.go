package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the textual format timestamps are persisted in
const TimestampLayout = time.RFC3339Nano

// legacyLayouts are accepted when reading files written by older versions
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// FormatTimestamp renders t in the persisted layout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
