package timeframe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrInvalidTimeframe is returned when a timeframe expression cannot be
// understood as a literal, a relative duration, or a date.
var ErrInvalidTimeframe = errors.New("unrecognized timeframe")

// Resolver turns a free-form timeframe expression into a UTC cutoff instant.
// Recognized forms, tried in order: the literals last_day, last_week and
// last_month; a relative duration such as "3 hours" or "45m"; an absolute
// date such as "2025-01-05" or "Jan 5, 2025".
type Resolver struct {
	now func() time.Time
}

func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

func (r *Resolver) Resolve(expr string) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	now := r.now().UTC()

	switch expr {
	case "last_day":
		return now.AddDate(0, 0, -1), nil
	case "last_week":
		return now.AddDate(0, 0, -7), nil
	case "last_month":
		// Calendar-approximate month: four weeks.
		return now.AddDate(0, 0, -28), nil
	}

	if d, ok := parseRelativeDuration(expr); ok {
		return now.Add(-d), nil
	}

	if t, err := dateparse.ParseIn(expr, time.UTC); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("timeframe: %w: %q", ErrInvalidTimeframe, expr)
}

var unitDurations = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"weeks":   7 * 24 * time.Hour,
}

// parseRelativeDuration accepts Go duration syntax ("90m", "3h30m") and the
// spoken form "<number> <unit>", with an optional trailing "ago".
func parseRelativeDuration(expr string) (time.Duration, bool) {
	if d, err := time.ParseDuration(expr); err == nil && d > 0 {
		return d, true
	}

	fields := strings.Fields(strings.ToLower(expr))
	if len(fields) == 3 && fields[2] == "ago" {
		fields = fields[:2]
	}
	if len(fields) != 2 {
		return 0, false
	}

	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	unit, ok := unitDurations[fields[1]]
	if !ok {
		return 0, false
	}

	return time.Duration(amount * float64(unit)), true
}
