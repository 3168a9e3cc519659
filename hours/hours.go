package hours

import (
	"fmt"
	"strings"
	"time"

	"fresh/models"
)

// IsAutoClosed reports whether now falls outside today's declared hours.
// A day with no entry is closed. Equal open and close means open all day,
// and a close earlier than open runs past midnight.
func IsAutoClosed(hours models.OpeningHours, now time.Time) bool {
	day, ok := hours[strings.ToLower(now.Weekday().String())]
	if !ok || day.Open == "" || day.Close == "" {
		return true
	}

	open, err := ParseClock(day.Open)
	if err != nil {
		return true
	}
	closing, err := ParseClock(day.Close)
	if err != nil {
		return true
	}

	minute := now.Hour()*60 + now.Minute()
	switch {
	case open == closing:
		return false
	case open < closing:
		return minute < open || minute >= closing
	default:
		return minute < open && minute >= closing
	}
}

// CanCheckout is false while the restaurant is unpublished or auto-closed.
func CanCheckout(r models.Restaurant, now time.Time) bool {
	return r.IsPublished && !IsAutoClosed(r.OpeningHours, now)
}

// ParseClock turns "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Validate checks weekday keys and clock values.
func Validate(h models.OpeningHours) error {
	for day, dh := range h {
		known := false
		for _, w := range weekdays {
			if w == day {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if dh.Open == "" && dh.Close == "" {
			continue
		}
		if _, err := ParseClock(dh.Open); err != nil {
			return fmt.Errorf("%s open: %w", day, err)
		}
		if _, err := ParseClock(dh.Close); err != nil {
			return fmt.Errorf("%s close: %w", day, err)
		}
	}
	return nil
}
