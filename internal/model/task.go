package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyTitle   = errors.New("model: task title is required")
	ErrInvalidField = errors.New("model: invalid task field")
	ErrInvalidValue = errors.New("model: invalid field value")
)

// Task is one to-do entry. Title identifies it within its Day.
type Task struct {
	Title     string
	Done      bool
	From      Clock
	To        Clock
	Deadline  Stamp
	Reminder  Stamp
	Important bool
	Urgent    bool
	Repeat    Repeat
	Day       Day
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Day.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDay, t.Day)
	}
	if !t.From.IsZero() && !t.From.Valid() {
		return fmt.Errorf("%w: from %q", ErrInvalidClock, t.From)
	}
	if !t.To.IsZero() && !t.To.Valid() {
		return fmt.Errorf("%w: to %q", ErrInvalidClock, t.To)
	}
	if err := t.Deadline.validate("deadline"); err != nil {
		return err
	}
	if err := t.Reminder.validate("reminder"); err != nil {
		return err
	}
	if !t.Repeat.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeat, t.Repeat)
	}
	return nil
}

func (t Task) HasReminder() bool  { return t.Reminder.IsSet() }
func (t Task) HasDeadline() bool  { return t.Deadline.IsSet() }
func (t Task) HasTimeRange() bool { return !t.From.IsZero() && !t.To.IsZero() }

// Occurrence copies t onto day, shifting any reminder or deadline by the
// same number of days, with completion cleared and repeat set to kind.
func (t Task) Occurrence(day Day, kind Repeat) Task {
	out := t
	offset := daysBetween(t.Day, day)
	out.Day = day
	out.Done = false
	out.Repeat = kind
	out.Reminder = t.Reminder.Shift(offset)
	out.Deadline = t.Deadline.Shift(offset)
	return out
}

func daysBetween(from, to Day) int {
	a := from.Time(time.UTC)
	b := to.Time(time.UTC)
	if a.IsZero() || b.IsZero() {
		return 0
	}
	return int(b.Sub(a) / (24 * time.Hour))
}

type Field string

const (
	FieldTitle        Field = "title"
	FieldFrom         Field = "from"
	FieldTo           Field = "to"
	FieldDeadlineDate Field = "deadline-date"
	FieldDeadlineTime Field = "deadline-time"
	FieldReminderDate Field = "reminder-date"
	FieldReminderTime Field = "reminder-time"
	FieldImportant    Field = "important"
	FieldUrgent       Field = "urgent"
	FieldRepeat       Field = "repeat"
)

func ParseField(raw string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case FieldTitle, FieldFrom, FieldTo, FieldDeadlineDate, FieldDeadlineTime,
		FieldReminderDate, FieldReminderTime, FieldImportant, FieldUrgent, FieldRepeat:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidField, raw)
	}
}

// Set validates value and applies it to field. An empty value clears clock
// and stamp fields. Setting a deadline or reminder time without a day fills
// the day in from the task itself.
func (t *Task) Set(field Field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldTitle:
		if value == "" {
			return ErrEmptyTitle
		}
		t.Title = value
	case FieldFrom:
		return setClock(&t.From, value)
	case FieldTo:
		return setClock(&t.To, value)
	case FieldDeadlineDate:
		return setDay(&t.Deadline.Day, value)
	case FieldDeadlineTime:
		if err := setClock(&t.Deadline.At, value); err != nil {
			return err
		}
		if !t.Deadline.At.IsZero() && t.Deadline.Day.IsZero() {
			t.Deadline.Day = t.Day
		}
	case FieldReminderDate:
		return setDay(&t.Reminder.Day, value)
	case FieldReminderTime:
		if err := setClock(&t.Reminder.At, value); err != nil {
			return err
		}
		if !t.Reminder.At.IsZero() && t.Reminder.Day.IsZero() {
			t.Reminder.Day = t.Day
		}
	case FieldImportant:
		v, err := ParseBool(value)
		if err != nil {
			return err
		}
		t.Important = v
	case FieldUrgent:
		v, err := ParseBool(value)
		if err != nil {
			return err
		}
		t.Urgent = v
	case FieldRepeat:
		r, err := ParseRepeat(value)
		if err != nil {
			return err
		}
		t.Repeat = r
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

func setClock(dst *Clock, value string) error {
	if value == "" {
		*dst = ""
		return nil
	}
	c, err := ParseClock(value)
	if err != nil {
		return err
	}
	*dst = c
	return nil
}

func setDay(dst *Day, value string) error {
	if value == "" {
		*dst = ""
		return nil
	}
	d, err := ParseDay(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
	}
}
