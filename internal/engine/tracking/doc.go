// Package tracking records buffer changes by revision.
//
// A Tracker keeps a bounded ring of the most recent changes of one buffer,
// each tagged with the revision it produced. It answers "what changed since
// revision X?", which the bulk edit transaction uses to describe conflicts
// with edits that raced a rename.
//
// # Usage
//
//	buf := buffer.New("hello")
//	tracker := tracking.NewTracker()
//	tracker.Attach(buf)
//
//	base := buf.Revision()
//	buf.Apply(...)
//	changes := tracker.ChangesSince(base)
package tracking
