package scheduler

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sandeepkv93/daytodo/internal/model"
)

var alarmNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/sandeepkv93/daytodo/alarm"))

// AlarmID is stable for a (day, title) pair, so re-scheduling a task always
// targets the same pending alarm.
func AlarmID(t model.Task) string {
	return uuid.NewSHA1(alarmNamespace, []byte(string(t.Day)+"\x00"+t.Title)).String()
}

type NotifierOptions struct {
	Logger   *log.Logger
	Now      func() time.Time
	Location *time.Location
}

// Notifier turns tasks into engine alarms.
type Notifier struct {
	engine *Engine
	logger *log.Logger
	now    func() time.Time
	loc    *time.Location
}

func NewNotifier(engine *Engine, opts NotifierOptions) *Notifier {
	n := &Notifier{engine: engine, logger: opts.Logger, now: opts.Now, loc: opts.Location}
	if n.logger == nil {
		n.logger = log.New(io.Discard)
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.loc == nil {
		n.loc = time.Local
	}
	return n
}

// Schedule registers the task's trigger, or cancels its pending alarm when
// it is done or has nothing left to fire.
func (n *Notifier) Schedule(t model.Task) error {
	id := AlarmID(t)
	if t.Done {
		n.Cancel(t)
		return nil
	}
	trig, ok := SelectTrigger(t, n.now(), n.loc)
	if !ok {
		n.Cancel(t)
		return nil
	}
	if err := n.engine.Schedule(Alarm{ID: id, Title: t.Title, Message: trig.Message, At: trig.At}); err != nil {
		return fmt.Errorf("schedule %q on %s: %w", t.Title, t.Day, err)
	}
	n.logger.Debug("alarm scheduled", "id", id, "title", t.Title, "kind", trig.Kind, "at", trig.At.Format(time.RFC3339))
	return nil
}

func (n *Notifier) Cancel(t model.Task) {
	id := AlarmID(t)
	if n.engine.Cancel(id) {
		n.logger.Debug("alarm cancelled", "id", id, "title", t.Title)
	}
}

// RescheduleAll schedules every task independently and returns how many
// alarms are pending afterwards for these tasks plus the first failure.
func (n *Notifier) RescheduleAll(tasks []model.Task) (int, error) {
	var first error
	scheduled := 0
	for _, t := range tasks {
		if err := n.Schedule(t); err != nil {
			if first == nil {
				first = err
			}
			n.logger.Warn("reschedule failed", "title", t.Title, "day", t.Day, "err", err)
			continue
		}
		if n.engine.Pending(AlarmID(t)) {
			scheduled++
		}
	}
	n.logger.Info("alarms restored", "tasks", len(tasks), "scheduled", scheduled)
	return scheduled, first
}

// Test fires a sample alarm right away.
func (n *Notifier) Test(title string) error {
	if title == "" {
		title = "daytodo"
	}
	return n.engine.Schedule(Alarm{
		ID:      "test-" + uuid.NewString(),
		Title:   title,
		Message: Message("", model.Task{Title: title}),
		At:      n.now(),
	})
}
