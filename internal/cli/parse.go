package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/petquest/internal/store"
)

var dateLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// parseWhen reads a local date or date-time. "today" and "tomorrow" are
// accepted as shortcuts; a bare date means the end of that day.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	endOfDay := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 23, 59, 0, 0, t.Location())
	}
	switch s {
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			return endOfDay(t), nil
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or YYYY-MM-DD HH:MM)", s)
}

func parsePriority(s string) (store.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return store.PriorityLow, nil
	case "", "m", "med", "medium":
		return store.PriorityMedium, nil
	case "h", "high":
		return store.PriorityHigh, nil
	}
	return "", fmt.Errorf("invalid priority %q (low, medium, high)", s)
}

var weekdays = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// parseWeekday accepts 0-6 (Sunday first) or an English day name.
func parseWeekday(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return int(s[0] - '0'), nil
	}
	if len(s) >= 3 {
		for i, d := range weekdays {
			if strings.HasPrefix(s, d) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid day %q", s)
}

// resolveID expands a unique id prefix.
func resolveID(ids []string, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("id is required")
	}
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no record with id %q: %w", prefix, store.ErrNotFound)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
