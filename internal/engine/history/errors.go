package history

import "errors"

// Errors returned by history operations.
var (
	// ErrEmbeddedNUL indicates a payload contains a NUL byte, which the
	// log uses as its payload terminator.
	ErrEmbeddedNUL = errors.New("payload contains NUL byte")

	// ErrInvalidRecord indicates a record with an unknown base kind.
	ErrInvalidRecord = errors.New("invalid edit record")

	// ErrPositionRange indicates a document offset that does not fit the
	// record's 32-bit position field.
	ErrPositionRange = errors.New("position out of range")

	// ErrCapacityExceeded indicates the log could not grow to hold a record.
	ErrCapacityExceeded = errors.New("history capacity exceeded")

	// ErrUndoDisabled indicates edits are not being recorded.
	ErrUndoDisabled = errors.New("undo is disabled")
)

// Errors returned by the replay helpers.
var (
	// ErrNothingToUndo indicates there is no record before the cursor.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates there is no record after the cursor.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrCheckpointLost indicates history diverged past a checkpoint.
	ErrCheckpointLost = errors.New("checkpoint no longer reachable")
)
