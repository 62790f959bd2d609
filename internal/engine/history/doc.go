// Package history provides the undo/redo engine for a text document.
//
// History is stored as a log of EditRecords serialized into one flat,
// resizable byte buffer. Key concepts:
//
// # Records
//
// An EditRecord describes one atomic mutation: an insert, a delete, a
// replace, or a custom1 snapshot that carries no text change. Each
// record has a group id; records sharing a group are undone and redone
// together.
//
// # The Log
//
// Records are laid out back to back:
//
//	kind:1 group:2 pos:4 payload1 NUL payload2 NUL size:4
//
// The trailing size lets Log step backwards in O(1); stepping forwards
// parses the header and scans both payloads. Pushing while records have
// been undone discards them. Capacity doubles while small, grows in 2 MiB
// steps once large, and shrinks again when a write leaves it mostly
// empty. Growth is fallible: a configured limit or a failed allocation
// returns ErrCapacityExceeded.
//
// # Controller
//
// The Controller turns raw mutations into records:
//
//	h := history.NewController()
//	h.RecordEdit(history.Mutation{Pos: 0, Inserted: "c"})
//	h.RecordEdit(history.Mutation{Pos: 1, Inserted: "a"})
//	h.RecordEdit(history.Mutation{Pos: 2, Inserted: "t"})
//	rec, _ := h.Undo() // one insert of "cat" at 0
//
// Consecutive single-character inserts or deletes of the same character
// class coalesce into one record. A space after a word, an undo, or a
// group boundary starts a new record.
//
// # Grouping
//
// Compound operations are bracketed with a group lock:
//
//	h.GroupLock()
//	// ... many edits ...
//	h.GroupUnlock()
//
// UndoGroup and RedoGroup apply a whole group to a TextStore.
//
// # Save point
//
// SetSavePoint marks the clean state; IsAtSavePoint reports whether undo
// or redo returned to it. Once an edit is recorded behind the save point
// it can never report clean again.
package history
