package storage

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCodecRoundTripKeepsOrder(t *testing.T) {
	want := sampleSnapshot()
	raw, err := Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw[0] != byte(FormatVersion) {
		t.Fatalf("expected leading version byte %d, got %d", FormatVersion, raw[0])
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want.Buckets, got.Buckets); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	snap, err := Decode(nil)
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if snap.Len() != 0 || snap.Version != FormatVersion {
		t.Fatalf("unexpected empty snapshot %+v", snap)
	}
}

func TestDecodeRejectsMalformedData(t *testing.T) {
	cases := map[string][]byte{
		"future version":  append([]byte{2}, []byte(`{"version":1,"buckets":{}}`)...),
		"not json":        append([]byte{1}, []byte(`{"version":`)...),
		"missing buckets": append([]byte{1}, []byte(`{"version":1}`)...),
		"bad day key":     append([]byte{1}, []byte(`{"version":1,"buckets":{"17/10/2026":[]}}`)...),
		"empty title":     append([]byte{1}, []byte(`{"version":1,"buckets":{"2026-10-17":[{"title":""}]}}`)...),
		"bad clock":       append([]byte{1}, []byte(`{"version":1,"buckets":{"2026-10-17":[{"title":"x","from":"25:00"}]}}`)...),
		"unknown field":   append([]byte{1}, []byte(`{"version":1,"buckets":{"2026-10-17":[{"title":"x","colour":"red"}]}}`)...),
		"impossible day":  append([]byte{1}, []byte(`{"version":1,"buckets":{"2026-02-30":[{"title":"x"}]}}`)...),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(raw); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestDecodeCollapsesDuplicateTitles(t *testing.T) {
	raw := append([]byte{1}, []byte(`{"version":1,"buckets":{"2026-10-17":[
		{"title":"a","done":false},
		{"title":"b"},
		{"title":"a","done":true}
	]}}`)...)
	snap, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tasks := snap.Buckets["2026-10-17"]
	if len(tasks) != 2 || tasks[0].Title != "b" || tasks[1].Title != "a" || !tasks[1].Done {
		t.Fatalf("expected last duplicate to win, got %+v", tasks)
	}
}
