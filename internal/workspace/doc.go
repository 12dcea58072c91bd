// Package workspace manages the documents open in the editor.
//
// A Workspace maps absolute file paths to Documents. Each Document owns a
// buffer.Buffer and a tracking.Tracker attached to it, so every edit is
// recorded with the revision it produced. The bulk edit service asks the
// workspace for documents and revisions when it commits a rename.
//
// A Watcher observes the directories of open documents with fsnotify and
// reloads a buffer when its file is written by another program. The reload
// produces a new revision, which makes an in-flight rename transaction fail
// with a conflict instead of overwriting the external change.
package workspace
