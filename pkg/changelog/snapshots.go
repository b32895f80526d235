package changelog

import (
	"time"
)

// Snapshot is one captured catalog release in a time series.
type Snapshot struct {
	// Payload is the decoded catalog payload. Snapshots without a payload
	// are skipped entirely.
	Payload map[string]any

	// Timestamp, when set, becomes the entry date verbatim. Otherwise Time
	// is used, and failing that the build time.
	Timestamp string
	Time      *time.Time

	// Metadata keys are merged into the entry without overwriting the
	// computed diff keys.
	Metadata map[string]any
}

// BuildFromSnapshots diffs an ordered series of snapshots, threading each
// payload forward as the next diff's previous side.
//
// Entries that record no membership change are suppressed, except the
// series' initial entry which is always kept. The fold is inherently
// sequential: each step's diff depends on the previous snapshot's ID set,
// so snapshots must arrive in chronological order.
func BuildFromSnapshots(snapshots []Snapshot, opts ...Option) []Entry {
	var shared options
	for _, opt := range opts {
		opt(&shared)
	}

	var entries []Entry
	var previous map[string]any

	for _, snapshot := range snapshots {
		if snapshot.Payload == nil {
			continue
		}

		o := shared
		o.timestamp = snapshot.Timestamp
		o.time = snapshot.Time

		entry := build(snapshot.Payload, previous, o)
		entry.Metadata = snapshot.Metadata

		if previous == nil || entry.HasChanges() {
			entries = append(entries, entry)
		}

		previous = snapshot.Payload
	}

	return entries
}
