// Package format computes display values from raw feed data: elapsed-time
// strings, absolute date labels, like membership and tag derivation.
package format

import (
	"fmt"
	"strings"
	"time"
)

const (
	day   = 24 * time.Hour
	month = 30 * day  // approximating a month to 30 days
	year  = 365 * day // approximating a year to 365 days
)

// RelativeTime renders the elapsed time since t as the largest applicable
// unit, floor-rounded, e.g. "5 minutes ago". A zero time yields "";
// callers are expected to guard missing timestamps.
func RelativeTime(t time.Time) string {
	return relativeTimeAt(t, time.Now())
}

func relativeTimeAt(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Minute:
		return pluralize(int64(elapsed/time.Second), "second")
	case elapsed < time.Hour:
		return pluralize(int64(elapsed/time.Minute), "minute")
	case elapsed < day:
		return pluralize(int64(elapsed/time.Hour), "hour")
	case elapsed < month:
		return pluralize(int64(elapsed/day), "day")
	case elapsed < year:
		return pluralize(int64(elapsed/month), "month")
	default:
		return pluralize(int64(elapsed/year), "year")
	}
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// AbsoluteDateTime renders t as a US-style date with 12-hour time,
// e.g. "Mar 5, 2024 at 2:30 PM".
func AbsoluteDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 at 3:04 PM")
}

// IsLikedBy reports whether userID appears in the like list.
func IsLikedBy(likes []string, userID string) bool {
	for _, id := range likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ParseTags splits free-text tag input on commas after stripping spaces.
// Empty input yields an empty set.
func ParseTags(text string) []string {
	text = strings.ReplaceAll(text, " ", "")
	if text == "" {
		return []string{}
	}
	parts := strings.Split(text, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}
