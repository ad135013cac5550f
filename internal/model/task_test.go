package model

import (
	"errors"
	"testing"
)

func TestTaskValidateSuccess(t *testing.T) {
	task := Task{
		Title:    "Write report",
		Day:      "2026-10-17",
		From:     "09:00",
		To:       "10:30",
		Reminder: Stamp{Day: "2026-10-17", At: "08:45"},
		Repeat:   RepeatDaily,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateRejectsBadInput(t *testing.T) {
	base := Task{Title: "Task", Day: "2026-10-17"}

	empty := base
	empty.Title = "   "
	if err := empty.Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}

	badDay := base
	badDay.Day = "17/10/2026"
	if err := badDay.Validate(); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}

	badClock := base
	badClock.From = "25:99"
	if err := badClock.Validate(); !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}

	badRepeat := base
	badRepeat.Repeat = Repeat("yearly")
	if err := badRepeat.Validate(); !errors.Is(err, ErrInvalidRepeat) {
		t.Fatalf("expected ErrInvalidRepeat, got %v", err)
	}
}

func TestTaskSetFields(t *testing.T) {
	task := Task{Title: "Call bank", Day: "2026-10-17"}

	if err := task.Set(FieldFrom, "9:05"); err != nil {
		t.Fatalf("set from: %v", err)
	}
	if task.From != "09:05" {
		t.Fatalf("expected normalized from 09:05, got %q", task.From)
	}

	if err := task.Set(FieldReminderTime, "08:30"); err != nil {
		t.Fatalf("set reminder time: %v", err)
	}
	if task.Reminder.Day != task.Day || !task.HasReminder() {
		t.Fatalf("expected reminder day to default to task day, got %+v", task.Reminder)
	}

	if err := task.Set(FieldDeadlineDate, "2026-10-20"); err != nil {
		t.Fatalf("set deadline date: %v", err)
	}
	if task.HasDeadline() {
		t.Fatal("deadline must not count until its time is set")
	}
	if err := task.Set(FieldDeadlineTime, "17:00"); err != nil {
		t.Fatalf("set deadline time: %v", err)
	}
	if task.Deadline.Day != "2026-10-20" || !task.HasDeadline() {
		t.Fatalf("unexpected deadline: %+v", task.Deadline)
	}

	if err := task.Set(FieldImportant, "yes"); err != nil || !task.Important {
		t.Fatalf("set important: err=%v important=%v", err, task.Important)
	}
	if err := task.Set(FieldRepeat, "weekly"); err != nil || task.Repeat != RepeatWeekly {
		t.Fatalf("set repeat: err=%v repeat=%v", err, task.Repeat)
	}

	if err := task.Set(FieldFrom, ""); err != nil || !task.From.IsZero() {
		t.Fatalf("expected from cleared, err=%v from=%q", err, task.From)
	}
}

func TestTaskSetRejectsUnparseableValues(t *testing.T) {
	task := Task{Title: "Call bank", Day: "2026-10-17", From: "10:00"}

	if err := task.Set(FieldFrom, "noon"); !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
	if task.From != "10:00" {
		t.Fatalf("failed set must leave field untouched, got %q", task.From)
	}
	if err := task.Set(FieldReminderDate, "tomorrow"); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
	if err := task.Set(FieldUrgent, "maybe"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if err := task.Set(FieldTitle, ""); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := ParseField("colour"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestTaskOccurrenceShiftsStamps(t *testing.T) {
	task := Task{
		Title:    "Standup",
		Done:     true,
		Day:      "2026-10-17",
		Reminder: Stamp{Day: "2026-10-17", At: "09:00"},
		Deadline: Stamp{Day: "2026-10-18", At: "12:00"},
		Repeat:   RepeatDaily,
	}
	occ := task.Occurrence("2026-10-24", RepeatWeekly)
	if occ.Day != "2026-10-24" || occ.Done || occ.Repeat != RepeatWeekly {
		t.Fatalf("unexpected occurrence: %+v", occ)
	}
	if occ.Reminder.Day != "2026-10-24" || occ.Deadline.Day != "2026-10-25" {
		t.Fatalf("expected stamps shifted by 7 days, got reminder=%v deadline=%v", occ.Reminder, occ.Deadline)
	}
	if !task.Done || task.Day != "2026-10-17" {
		t.Fatal("occurrence must not modify the source task")
	}
}
