package tracking

import (
	"sync"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

// DefaultMaxChanges is the default maximum number of changes to track.
const DefaultMaxChanges = 1000

// RevisionID is an alias to buffer.RevisionID for convenience.
type RevisionID = buffer.RevisionID

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxChanges sets the maximum number of changes to track.
// Must only be used during Tracker creation via NewTracker.
func WithMaxChanges(maxChanges int) TrackerOption {
	return func(t *Tracker) {
		if maxChanges > 0 {
			t.maxChanges = maxChanges
			t.changes = make([]trackedChange, maxChanges)
		}
	}
}

// trackedChange pairs a change with the revision it produced.
type trackedChange struct {
	revision RevisionID
	change   buffer.Change
}

// Tracker records changes in a ring buffer.
// All operations are thread-safe.
type Tracker struct {
	mu sync.RWMutex

	changes    []trackedChange
	head       int // Index of oldest entry
	count      int // Number of entries
	maxChanges int
	dropped    RevisionID // newest revision evicted from the ring
}

// NewTracker creates a new change tracker with default settings.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		maxChanges: DefaultMaxChanges,
		changes:    make([]trackedChange, DefaultMaxChanges),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attach subscribes the tracker to a buffer's changes.
func (t *Tracker) Attach(buf *buffer.Buffer) {
	buf.Observe(t.RecordChanges)
}

// RecordChanges records the changes that produced rev.
func (t *Tracker) RecordChanges(rev RevisionID, changes []buffer.Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, change := range changes {
		idx := (t.head + t.count) % t.maxChanges
		if t.count < t.maxChanges {
			t.count++
		} else {
			// Ring buffer is full, advance head
			t.dropped = t.changes[t.head].revision
			t.head = (t.head + 1) % t.maxChanges
		}
		t.changes[idx] = trackedChange{revision: rev, change: change}
	}
}

// ChangesSince returns all changes after rev in chronological order.
// complete is false when older changes were evicted and the result may be
// missing some of them.
func (t *Tracker) ChangesSince(rev RevisionID) (changes []buffer.Change, complete bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := 0; i < t.count; i++ {
		tc := t.changes[(t.head+i)%t.maxChanges]
		if tc.revision > rev {
			changes = append(changes, tc.change)
		}
	}
	return changes, t.dropped <= rev
}

// ChangeCount returns the number of tracked changes.
func (t *Tracker) ChangeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Clear discards all tracked changes.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head = 0
	t.count = 0
	t.dropped = 0
}
