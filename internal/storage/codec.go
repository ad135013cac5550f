package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sandeepkv93/daytodo/internal/model"
)

//go:embed snapshot.schema.json
var snapshotSchemaJSON []byte

const snapshotSchemaURL = "snapshot.schema.json"

var compileSnapshotSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(snapshotSchemaURL, bytes.NewReader(snapshotSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add snapshot schema: %w", err)
	}
	schema, err := compiler.Compile(snapshotSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}
	return schema, nil
})

type snapshotRecord struct {
	Version int                     `json:"version"`
	Buckets map[string][]taskRecord `json:"buckets"`
}

type taskRecord struct {
	Title       string `json:"title"`
	Done        bool   `json:"done"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	DeadlineDay string `json:"deadline_day,omitempty"`
	DeadlineAt  string `json:"deadline_at,omitempty"`
	ReminderDay string `json:"reminder_day,omitempty"`
	ReminderAt  string `json:"reminder_at,omitempty"`
	Important   bool   `json:"important"`
	Urgent      bool   `json:"urgent"`
	Repeat      string `json:"repeat"`
}

func toRecord(t model.Task) taskRecord {
	return taskRecord{
		Title:       t.Title,
		Done:        t.Done,
		From:        string(t.From),
		To:          string(t.To),
		DeadlineDay: string(t.Deadline.Day),
		DeadlineAt:  string(t.Deadline.At),
		ReminderDay: string(t.Reminder.Day),
		ReminderAt:  string(t.Reminder.At),
		Important:   t.Important,
		Urgent:      t.Urgent,
		Repeat:      string(t.Repeat.Normalize()),
	}
}

func fromRecord(day model.Day, r taskRecord) model.Task {
	return model.Task{
		Title:     r.Title,
		Done:      r.Done,
		From:      model.Clock(r.From),
		To:        model.Clock(r.To),
		Deadline:  model.Stamp{Day: model.Day(r.DeadlineDay), At: model.Clock(r.DeadlineAt)},
		Reminder:  model.Stamp{Day: model.Day(r.ReminderDay), At: model.Clock(r.ReminderAt)},
		Important: r.Important,
		Urgent:    r.Urgent,
		Repeat:    model.Repeat(r.Repeat).Normalize(),
		Day:       day,
	}
}

// Encode renders snap as the version byte followed by a JSON document.
func Encode(snap Snapshot) ([]byte, error) {
	rec := snapshotRecord{
		Version: FormatVersion,
		Buckets: make(map[string][]taskRecord, len(snap.Buckets)),
	}
	for day, tasks := range snap.Buckets {
		if len(tasks) == 0 {
			continue
		}
		items := make([]taskRecord, 0, len(tasks))
		for _, t := range tasks {
			items = append(items, toRecord(t))
		}
		rec.Buckets[string(day)] = items
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(FormatVersion))
	return append(out, body...), nil
}

// Decode parses and validates an encoded snapshot. Any shape problem is
// reported as ErrCorrupt. Empty input decodes to an empty snapshot.
func Decode(raw []byte) (Snapshot, error) {
	if len(raw) == 0 {
		return EmptySnapshot(), nil
	}
	if raw[0] != byte(FormatVersion) {
		return Snapshot{}, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, raw[0])
	}
	body := raw[1:]

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	schema, err := compileSnapshotSchema()
	if err != nil {
		return Snapshot{}, err
	}
	if err := schema.Validate(doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	snap := EmptySnapshot()
	for key, items := range rec.Buckets {
		day, err := model.ParseDay(key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		tasks := make([]model.Task, 0, len(items))
		for _, item := range items {
			t := fromRecord(day, item)
			if err := t.Validate(); err != nil {
				return Snapshot{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, day, err)
			}
			tasks = append(tasks, t)
		}
		if len(tasks) > 0 {
			snap.Buckets[day] = normalizeBucket(day, tasks)
		}
	}
	return snap, nil
}
