package model

import (
	"errors"
	"testing"
)

func TestRepeatDailyOccurrences(t *testing.T) {
	days, err := RepeatDaily.Occurrences("2026-10-17")
	if err != nil {
		t.Fatalf("daily occurrences failed: %v", err)
	}
	if len(days) != DailyOccurrences {
		t.Fatalf("expected %d days, got %d", DailyOccurrences, len(days))
	}
	if days[0] != "2026-10-18" || days[len(days)-1] != Day("2026-10-17").AddDays(90) {
		t.Fatalf("unexpected range %s..%s", days[0], days[len(days)-1])
	}
}

func TestRepeatWeeklyOccurrences(t *testing.T) {
	days, err := RepeatWeekly.Occurrences("2026-10-17")
	if err != nil {
		t.Fatalf("weekly occurrences failed: %v", err)
	}
	if len(days) != WeeklyOccurrences {
		t.Fatalf("expected %d days, got %d", WeeklyOccurrences, len(days))
	}
	want := []Day{"2026-10-24", "2026-10-31", "2026-11-07"}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("occurrence[%d] got %s want %s", i, days[i], want[i])
		}
	}
	if days[11] != Day("2026-10-17").AddDays(84) {
		t.Fatalf("last weekly occurrence got %s", days[11])
	}
}

func TestRepeatWithoutExpansion(t *testing.T) {
	if _, err := RepeatMonthly.Occurrences("2026-10-17"); !errors.Is(err, ErrRepeatUnsupported) {
		t.Fatalf("expected ErrRepeatUnsupported, got %v", err)
	}
	if _, err := RepeatNone.Occurrences("2026-10-17"); !errors.Is(err, ErrNotRepeating) {
		t.Fatalf("expected ErrNotRepeating, got %v", err)
	}
	if _, err := Repeat("").Occurrences("2026-10-17"); !errors.Is(err, ErrNotRepeating) {
		t.Fatalf("expected zero repeat to behave as none, got %v", err)
	}
}

func TestParseRepeatAndCycle(t *testing.T) {
	r, err := ParseRepeat("Weekly")
	if err != nil || r != RepeatWeekly {
		t.Fatalf("ParseRepeat = %q, %v", r, err)
	}
	if _, err := ParseRepeat("yearly"); !errors.Is(err, ErrInvalidRepeat) {
		t.Fatalf("expected ErrInvalidRepeat, got %v", err)
	}
	seq := []Repeat{RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatNone}
	cur := Repeat("")
	for _, want := range seq {
		cur = cur.Next()
		if cur != want {
			t.Fatalf("Next got %s want %s", cur, want)
		}
	}
}
