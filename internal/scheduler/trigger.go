package scheduler

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/daytodo/internal/model"
)

// StartLead is how long before a task's From time the start alarm fires.
const StartLead = 5 * time.Minute

type TriggerKind string

const (
	TriggerReminder TriggerKind = "reminder"
	TriggerDeadline TriggerKind = "deadline"
	TriggerStart    TriggerKind = "start"
)

type Trigger struct {
	Kind    TriggerKind
	At      time.Time
	Message string
}

// SelectTrigger picks the one alarm a task should raise: its reminder, else
// its deadline, else StartLead before its From time. The chosen candidate is
// final; when it is not after now there is no trigger at all.
func SelectTrigger(t model.Task, now time.Time, loc *time.Location) (Trigger, bool) {
	var (
		trig Trigger
		ok   bool
	)
	switch {
	case t.Reminder.IsSet():
		trig.Kind = TriggerReminder
		trig.At, ok = t.Reminder.Time(loc)
	case t.Deadline.IsSet():
		trig.Kind = TriggerDeadline
		trig.At, ok = t.Deadline.Time(loc)
	case !t.From.IsZero():
		trig.Kind = TriggerStart
		trig.At, ok = t.From.On(t.Day, loc)
		trig.At = trig.At.Add(-StartLead)
	}
	if !ok || !trig.At.After(now) {
		return Trigger{}, false
	}
	trig.Message = Message(trig.Kind, t)
	return trig, true
}

// Message renders the notification body for kind.
func Message(kind TriggerKind, t model.Task) string {
	switch kind {
	case TriggerReminder:
		return fmt.Sprintf("Reminder: %s", t.Title)
	case TriggerDeadline:
		return fmt.Sprintf("Deadline: %s %s", t.Deadline.Day, t.Deadline.At)
	case TriggerStart:
		return fmt.Sprintf("Starting soon at %s", t.From)
	default:
		return "Task reminder"
	}
}
