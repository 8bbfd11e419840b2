// Package timeparse turns user-typed durations such as "30s", "5m" or "2h" into time.Duration values.
package timeparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	// ErrInvalidFormat is returned when the input is not <integer><unit>
	ErrInvalidFormat = errors.New("invalid duration format")
	// ErrTooShort is returned when the duration is below the minimum
	ErrTooShort = errors.New("duration too short")
	// ErrTooLong is returned when the duration exceeds the maximum
	ErrTooLong = errors.New("duration too long")
)

const (
	TimerMin    = time.Second
	TimerMax    = 24 * time.Hour
	ReminderMin = 10 * time.Second
	ReminderMax = 30 * 24 * time.Hour
)

var (
	timerUnits = map[byte]time.Duration{
		's': time.Second,
		'm': time.Minute,
		'h': time.Hour,
	}
	reminderUnits = map[byte]time.Duration{
		's': time.Second,
		'm': time.Minute,
		'h': time.Hour,
		'd': 24 * time.Hour,
	}
)

// ParseTimer parses a timer duration: units s, m or h, between one second and 24 hours
func ParseTimer(input string) (time.Duration, error) {
	d, err := parseUnits(input, timerUnits)
	if err != nil {
		return 0, err
	}
	return d, checkBounds(d, TimerMin, TimerMax)
}

// ParseReminder parses a reminder duration: units s, m, h or d, between 10 seconds and 30 days
func ParseReminder(input string) (time.Duration, error) {
	d, err := parseUnits(input, reminderUnits)
	if err != nil {
		return 0, err
	}
	return d, checkBounds(d, ReminderMin, ReminderMax)
}

// ParseReminderAt accepts either a strict duration or a natural-language time
// ("tomorrow at 9am", "in 2 hours") resolved in loc. The result is the delay from now.
func ParseReminderAt(input string, now time.Time, loc *time.Location) (time.Duration, error) {
	d, err := ParseReminder(input)
	if err == nil || !errors.Is(err, ErrInvalidFormat) {
		return d, err
	}

	if loc == nil {
		loc = time.UTC
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, perr := w.Parse(strings.ToLower(strings.TrimSpace(input)), now.In(loc))
	if perr != nil || r == nil {
		return 0, ErrInvalidFormat
	}

	d = r.Time.Sub(now)
	return d, checkBounds(d, ReminderMin, ReminderMax)
}

func parseUnits(input string, units map[byte]time.Duration) (time.Duration, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) < 2 {
		return 0, ErrInvalidFormat
	}

	unit, ok := units[input[len(input)-1]]
	if !ok {
		return 0, ErrInvalidFormat
	}

	amount, err := strconv.ParseInt(input[:len(input)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	// Guard against overflow before multiplying
	if amount > int64(ReminderMax/unit)+1 {
		return 0, ErrTooLong
	}
	return time.Duration(amount) * unit, nil
}

func checkBounds(d, min, max time.Duration) error {
	if d < min {
		return ErrTooShort
	}
	if d > max {
		return ErrTooLong
	}
	return nil
}

// Humanize renders a timer duration the way it is shown to users: "1 second", "5 minutes", "2 hours"
func Humanize(d time.Duration) string {
	seconds := int64(d / time.Second)
	switch {
	case seconds < 60:
		return plural(seconds, "second")
	case seconds < 3600:
		return plural(seconds/60, "minute")
	default:
		return plural(seconds/3600, "hour")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
