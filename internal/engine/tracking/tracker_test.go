package tracking

import (
	"testing"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

func TestTracker_ChangesSince(t *testing.T) {
	buf := buffer.New("abc")
	tracker := NewTracker()
	tracker.Attach(buf)

	base := buf.Revision()

	if _, err := buf.Apply([]buffer.Edit{buffer.NewInsert(buffer.Point{Line: 0, Column: 0}, "x")}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	mid := buf.Revision()
	if _, err := buf.Apply([]buffer.Edit{
		buffer.NewInsert(buffer.Point{Line: 0, Column: 1}, "y"),
		buffer.NewInsert(buffer.Point{Line: 0, Column: 4}, "z"),
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	changes, complete := tracker.ChangesSince(base)
	if len(changes) != 3 || !complete {
		t.Errorf("ChangesSince(base) = %d changes, complete %v; want 3, true", len(changes), complete)
	}

	changes, _ = tracker.ChangesSince(mid)
	if len(changes) != 2 {
		t.Fatalf("ChangesSince(mid) = %d changes, want 2", len(changes))
	}
	if changes[0].NewText != "y" || changes[1].NewText != "z" {
		t.Errorf("ChangesSince(mid) = %+v, want chronological order", changes)
	}

	changes, _ = tracker.ChangesSince(buf.Revision())
	if len(changes) != 0 {
		t.Errorf("ChangesSince(current) = %d changes, want 0", len(changes))
	}
}

func TestTracker_RingEviction(t *testing.T) {
	tracker := NewTracker(WithMaxChanges(2))

	for rev := RevisionID(2); rev <= 5; rev++ {
		tracker.RecordChanges(rev, []buffer.Change{{NewText: "x"}})
	}

	if tracker.ChangeCount() != 2 {
		t.Errorf("ChangeCount() = %d, want 2", tracker.ChangeCount())
	}

	changes, complete := tracker.ChangesSince(1)
	if len(changes) != 2 {
		t.Errorf("ChangesSince(1) = %d changes, want 2", len(changes))
	}
	if complete {
		t.Error("ChangesSince(1) should report evicted history")
	}

	_, complete = tracker.ChangesSince(3)
	if !complete {
		t.Error("ChangesSince(3) should be complete")
	}

	tracker.Clear()
	if tracker.ChangeCount() != 0 {
		t.Errorf("ChangeCount() after Clear = %d", tracker.ChangeCount())
	}
}
