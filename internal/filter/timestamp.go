package filter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var relativeRe = regexp.MustCompile(`^(\d+)\s*(s|sec|secs|second|seconds|m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days)\s+ago$`)

// ParseTimestamp understands the absolute layouts records are stored with as
// well as relative forms like "2 minutes ago", resolved against now.
func ParseTimestamp(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	lower := strings.ToLower(s)
	if lower == "just now" {
		return now, nil
	}

	m := relativeRe.FindStringSubmatch(lower)
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing relative timestamp %q: %w", s, err)
	}

	var unit time.Duration
	switch m[2][0] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	}
	if int64(n) > math.MaxInt64/int64(unit) {
		return time.Time{}, fmt.Errorf("relative timestamp out of range: %q", s)
	}
	return now.Add(-time.Duration(n) * unit), nil
}
