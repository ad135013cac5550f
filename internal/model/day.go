package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	ErrInvalidDay   = errors.New("model: invalid day")
	ErrInvalidClock = errors.New("model: invalid clock")
)

// Day is a calendar day in YYYY-MM-DD form. It is the bucket key of the
// task store, so every value is normalized before use.
type Day string

// DayOf strips the time of day from t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

func ParseDay(raw string) (Day, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDay)
	}
	tm, err := time.Parse(DayLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return Day(tm.Format(DayLayout)), nil
}

func (d Day) IsZero() bool { return d == "" }

func (d Day) Valid() bool {
	_, err := time.Parse(DayLayout, string(d))
	return err == nil
}

func (d Day) String() string { return string(d) }

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	tm, err := time.ParseInLocation(DayLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return tm
}

// AddDays steps in UTC so DST transitions never skip or repeat a day.
func (d Day) AddDays(n int) Day {
	tm, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return d
	}
	return Day(tm.AddDate(0, 0, n).Format(DayLayout))
}

func (d Day) Weekday() time.Weekday {
	tm, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Sunday
	}
	return tm.Weekday()
}

// WeekStart returns the first day of the week containing d.
func (d Day) WeekStart(first time.Weekday) Day {
	offset := (int(d.Weekday()) - int(first) + 7) % 7
	return d.AddDays(-offset)
}

// Label renders d the way the week strip shows it, e.g. "Mon 23/10".
func (d Day) Label() string {
	tm, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return string(d)
	}
	return tm.Format("Mon 02/01")
}

// Clock is a wall-clock time in HH:MM form. The zero value means unset.
type Clock string

func ParseClock(raw string) (Clock, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidClock)
	}
	tm, err := time.Parse(ClockLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	return Clock(tm.Format(ClockLayout)), nil
}

func (c Clock) IsZero() bool { return c == "" }

func (c Clock) Valid() bool {
	_, err := time.Parse(ClockLayout, string(c))
	return err == nil
}

func (c Clock) String() string { return string(c) }

// On combines c with day d in loc. ok is false when either part is unset or
// malformed.
func (c Clock) On(d Day, loc *time.Location) (time.Time, bool) {
	if c.IsZero() || d.IsZero() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	tm, err := time.ParseInLocation(DayLayout+" "+ClockLayout, string(d)+" "+string(c), loc)
	if err != nil {
		return time.Time{}, false
	}
	return tm, true
}

// Stamp is a day plus a clock. Either half may be set on its own while the
// user is still editing; the stamp only counts once both are present.
type Stamp struct {
	Day Day
	At  Clock
}

func (s Stamp) IsSet() bool { return !s.Day.IsZero() && !s.At.IsZero() }

func (s Stamp) IsZero() bool { return s.Day.IsZero() && s.At.IsZero() }

func (s Stamp) Time(loc *time.Location) (time.Time, bool) {
	if !s.IsSet() {
		return time.Time{}, false
	}
	return s.At.On(s.Day, loc)
}

// Shift moves the day half of s by n days.
func (s Stamp) Shift(n int) Stamp {
	if s.Day.IsZero() {
		return s
	}
	s.Day = s.Day.AddDays(n)
	return s
}

func (s Stamp) String() string {
	return strings.TrimSpace(string(s.Day) + " " + string(s.At))
}

func (s Stamp) validate(name string) error {
	if !s.Day.IsZero() && !s.Day.Valid() {
		return fmt.Errorf("%w: %s day %q", ErrInvalidDay, name, s.Day)
	}
	if !s.At.IsZero() && !s.At.Valid() {
		return fmt.Errorf("%w: %s time %q", ErrInvalidClock, name, s.At)
	}
	return nil
}
