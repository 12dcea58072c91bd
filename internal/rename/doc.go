// Package rename implements the inline "rename symbol" interaction.
//
// A Controller drives one rename per invocation of Run:
//
//  1. ResolveWord finds the word under the editor's selection. Without a word
//     Run returns StatusNoWord and shows nothing.
//  2. The Session opens the input widget over the word, pre-filled with it and
//     with the selected part highlighted. State.Visible reports true until
//     the session resolves.
//  3. When the user accepts a new name, the Controller opens an edit
//     transaction, asks the Resolver for the edits, and commits them. The
//     transaction is opened before resolving so a document changed while the
//     resolver runs fails the commit with a conflict.
//  4. A rejection from the resolver is shown at SeverityInfo. Any other
//     failure is shown at SeverityError with a generic message and returned.
//
// Cancelling the input (Cancel, Blur or cancelling Run's context) ends the
// run silently. Once a name is accepted the run cannot be cancelled.
//
// The host wires Commands into its dispatcher and key bindings. State is
// the only value the host reads to gate them.
package rename
