package model

import (
	"errors"
	"fmt"
	"strings"
)

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

const (
	DailyOccurrences  = 90
	WeeklyOccurrences = 12
)

var (
	ErrInvalidRepeat     = errors.New("model: invalid repeat")
	ErrNotRepeating      = errors.New("model: task does not repeat")
	ErrRepeatUnsupported = errors.New("model: repeat kind has no expansion")
)

func ParseRepeat(raw string) (Repeat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "off", "no":
		return RepeatNone, nil
	case "daily", "day", "d":
		return RepeatDaily, nil
	case "weekly", "week", "w":
		return RepeatWeekly, nil
	case "monthly", "month", "m":
		return RepeatMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRepeat, raw)
	}
}

func (r Repeat) IsValid() bool {
	switch r {
	case "", RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	default:
		return false
	}
}

// Normalize maps the zero value to RepeatNone.
func (r Repeat) Normalize() Repeat {
	if r == "" {
		return RepeatNone
	}
	return r
}

func (r Repeat) IsRepeating() bool {
	n := r.Normalize()
	return n != RepeatNone
}

// Next cycles none -> daily -> weekly -> monthly -> none.
func (r Repeat) Next() Repeat {
	switch r.Normalize() {
	case RepeatNone:
		return RepeatDaily
	case RepeatDaily:
		return RepeatWeekly
	case RepeatWeekly:
		return RepeatMonthly
	default:
		return RepeatNone
	}
}

// Occurrences lists the days a repeating task dated from expands into. The
// first day is never from itself.
func (r Repeat) Occurrences(from Day) ([]Day, error) {
	if !from.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDay, from)
	}
	switch r.Normalize() {
	case RepeatDaily:
		return stepDays(from, 1, DailyOccurrences), nil
	case RepeatWeekly:
		return stepDays(from, 7, WeeklyOccurrences), nil
	case RepeatMonthly:
		return nil, fmt.Errorf("%w: %s", ErrRepeatUnsupported, r)
	case RepeatNone:
		return nil, ErrNotRepeating
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRepeat, r)
	}
}

func stepDays(from Day, step, count int) []Day {
	out := make([]Day, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, from.AddDays(i*step))
	}
	return out
}
