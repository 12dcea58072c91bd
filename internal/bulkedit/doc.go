// Package bulkedit applies text edits across several documents as one
// transaction.
//
// A Transaction is opened before the edits are computed. Opening captures
// the revision of every open document as a baseline. Finish loads the
// documents touched by the accumulated edits, fails with a *ConflictError
// if any of them changed since the baseline, and otherwise applies the
// edits all-or-nothing: when one document rejects its edits, the documents
// already edited are reverted.
//
//	tx := svc.Open("rename", ed)
//	edits := computeEdits()
//	tx.Add(edits)
//	sel, err := tx.Finish(ctx)
package bulkedit
