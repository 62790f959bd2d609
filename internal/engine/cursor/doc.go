// Package cursor holds the selection state that edit history snapshots
// capture and restore.
//
// A Selection uses an anchor/head model: Anchor is where the selection
// started and Head is where typing occurs. When Anchor == Head the
// selection is a plain cursor. A CursorSet keeps one or more selections
// sorted and merged, and remembers which of them is primary.
//
// Snapshots serialize a CursorSet into a compact JSON string suitable for
// a history record payload:
//
//	snap := cursor.SnapshotOf(cs)
//	payload := snap.Encode() // {"primary":0,"sels":[[3,7]]}
//
//	restored, err := cursor.DecodeSnapshot(payload)
//	cs.SetAll(restored.Selections)
//
// When no snapshot is available, TransformCursorSet moves selections
// across an applied edit instead.
//
// Selection is an immutable value type. CursorSet is not safe for
// concurrent use.
package cursor
