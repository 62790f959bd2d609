package history

import (
	"encoding/binary"
	"iter"
)

// Log is a flat, rewindable store of serialized EditRecords.
//
// Bytes [0, high) hold well-formed records. Each record is followed by a
// 4-byte trailer with its total size, so the log is walked forward by
// parsing and backward by jumping over trailers. Records before the
// cursor are undoable; records from the cursor up to high are redoable.
//
// Log is not safe for concurrent use.
type Log struct {
	buf    []byte // len(buf) is the capacity
	cursor int
	high   int
	policy CapacityPolicy

	// redoEnd is the end of the record the cursor rests on after a Redo,
	// or 0 when no redo is pending.
	redoEnd int

	// onResize is called after the buffer is reallocated.
	onResize func(old, cur int)
}

// NewLog creates an empty log using the given capacity policy.
func NewLog(policy CapacityPolicy) *Log {
	policy = policy.normalized()
	return &Log{
		buf:    make([]byte, policy.Floor),
		policy: policy,
	}
}

// Len returns the number of live bytes in the log.
func (l *Log) Len() int {
	return l.high
}

// Cap returns the current buffer capacity.
func (l *Log) Cap() int {
	return len(l.buf)
}

// Policy returns the capacity policy in effect.
func (l *Log) Policy() CapacityPolicy {
	return l.policy
}

// Clear drops every record and resets the buffer to the floor capacity.
func (l *Log) Clear() {
	old := len(l.buf)
	l.buf = make([]byte, l.policy.Floor)
	l.cursor = 0
	l.high = 0
	l.redoEnd = 0
	if old != len(l.buf) && l.onResize != nil {
		l.onResize(old, len(l.buf))
	}
}

// LogicalCursor returns the position callers should treat as current:
// the boundary between undoable and redoable records. After a redo the
// raw cursor still rests on the replayed record, so the logical cursor
// is the end of that record.
func (l *Log) LogicalCursor() int {
	if l.redoEnd > 0 {
		return l.redoEnd
	}
	return l.cursor
}

// settle folds a pending redo into the raw cursor.
func (l *Log) settle() {
	l.cursor = l.LogicalCursor()
	l.redoEnd = 0
}

// HasUndo reports whether there is a record before the logical cursor.
func (l *Log) HasUndo() bool {
	return l.LogicalCursor() > 0
}

// HasRedo reports whether there is a record after the logical cursor.
func (l *Log) HasRedo() bool {
	return l.LogicalCursor() < l.high
}

// Push writes rec at the logical cursor, discarding any redoable records.
// On error the log is left unchanged.
func (l *Log) Push(rec EditRecord) error {
	if err := rec.validate(); err != nil {
		return err
	}
	l.settle()

	need := l.cursor + rec.Size() + TrailerSize
	if need > len(l.buf) {
		if err := l.grow(need); err != nil {
			return err
		}
	}

	// Writing at the cursor truncates [cursor, high).
	n := encodeRecord(l.buf[l.cursor:], &rec)
	l.cursor += n
	l.high = l.cursor

	l.maybeShrink()
	return nil
}

// Pop removes the most recently written record by moving high back to
// its start. A cursor past the new high is pulled back with it; records
// before the cursor stay undoable. It reports false when the log is
// empty.
func (l *Log) Pop() bool {
	l.settle()
	start, ok := l.StepLeftFrom(l.high)
	if !ok {
		return false
	}
	l.high = start
	l.cursor = min(l.cursor, start)
	return true
}

// StepLeft moves the cursor to the start of the previous record.
func (l *Log) StepLeft() bool {
	l.settle()
	prev, ok := l.StepLeftFrom(l.cursor)
	if !ok {
		return false
	}
	l.cursor = prev
	return true
}

// StepRight moves the cursor past the record it rests on.
func (l *Log) StepRight() bool {
	l.settle()
	next, ok := l.StepRightFrom(l.cursor)
	if !ok {
		return false
	}
	l.cursor = next
	return true
}

// StepLeftFrom returns the start of the record ending at pos, using the
// trailer just before pos. It fails at 0 or on a corrupt trailer.
func (l *Log) StepLeftFrom(pos int) (int, bool) {
	if pos < HeaderSize+2+TrailerSize || pos > l.high {
		return pos, false
	}
	size := int(binary.LittleEndian.Uint32(l.buf[pos-TrailerSize : pos]))
	if size < HeaderSize+2+TrailerSize || size > pos {
		return pos, false
	}
	return pos - size, true
}

// StepRightFrom returns the start of the record after the one at pos by
// parsing it forward. It fails at high.
func (l *Log) StepRightFrom(pos int) (int, bool) {
	if pos < 0 || pos >= l.high {
		return pos, false
	}
	p := pos + HeaderSize
	for nuls := 0; nuls < 2; p++ {
		if p >= l.high {
			return pos, false
		}
		if l.buf[p] == 0 {
			nuls++
		}
	}
	next := p + TrailerSize
	if next > l.high {
		return pos, false
	}
	return next, true
}

// ReadAt materializes the record starting at pos. Out-of-range or
// misaligned positions report false.
func (l *Log) ReadAt(pos int) (EditRecord, bool) {
	rec, _, ok := decodeRecord(l.buf, pos, l.high)
	return rec, ok
}

// PeekLeft returns the record an undo would return, without moving.
func (l *Log) PeekLeft() (EditRecord, bool) {
	prev, ok := l.StepLeftFrom(l.LogicalCursor())
	if !ok {
		return EditRecord{}, false
	}
	return l.ReadAt(prev)
}

// PeekRight returns the record a redo would return, without moving.
func (l *Log) PeekRight() (EditRecord, bool) {
	return l.ReadAt(l.LogicalCursor())
}

// Undo moves the cursor back over one record and returns it.
func (l *Log) Undo() (EditRecord, bool) {
	if !l.StepLeft() {
		return EditRecord{}, false
	}
	return l.ReadAt(l.cursor)
}

// Redo returns the record after the logical cursor and moves over it.
// The raw cursor stays on the replayed record until the next operation.
func (l *Log) Redo() (EditRecord, bool) {
	l.settle()
	rec, next, ok := decodeRecord(l.buf, l.cursor, l.high)
	if !ok {
		return EditRecord{}, false
	}
	l.redoEnd = next
	return rec, true
}

// Records iterates over every live record in write order, yielding the
// start offset of each.
func (l *Log) Records() iter.Seq2[int, EditRecord] {
	return func(yield func(int, EditRecord) bool) {
		pos := 0
		for pos < l.high {
			rec, next, ok := decodeRecord(l.buf, pos, l.high)
			if !ok || !yield(pos, rec) {
				return
			}
			pos = next
		}
	}
}

// Count returns the number of undoable and redoable records.
func (l *Log) Count() (undo, redo int) {
	cur := l.LogicalCursor()
	for pos := range l.Records() {
		if pos < cur {
			undo++
		} else {
			redo++
		}
	}
	return undo, redo
}

func (l *Log) grow(need int) error {
	c, err := l.policy.grown(len(l.buf), need)
	if err != nil {
		return err
	}
	return l.resize(c)
}

func (l *Log) maybeShrink() {
	if c := l.policy.shrunk(len(l.buf), l.high); c < len(l.buf) {
		// Shrinking is best effort; keep the larger buffer on failure.
		_ = l.resize(c)
	}
}

func (l *Log) resize(c int) error {
	buf, err := allocate(c)
	if err != nil {
		return err
	}
	copy(buf, l.buf[:l.high])
	old := len(l.buf)
	l.buf = buf
	if l.onResize != nil {
		l.onResize(old, c)
	}
	return nil
}
