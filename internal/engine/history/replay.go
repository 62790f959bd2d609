package history

import (
	"fmt"

	"github.com/dshills/editlog/internal/engine/cursor"
)

// TextStore is the document text a controller's records are applied to.
type TextStore interface {
	Insert(pos int, text string) error
	Delete(pos, n int) error
	Len() int
}

// Edit returns the text change rec describes, or the change that reverts
// it when undo is set. Custom1 records describe no change.
func (r EditRecord) Edit(undo bool) (cursor.Edit, bool) {
	pos := int(r.Pos)
	var e cursor.Edit
	switch r.Kind.Base() {
	case KindInsert:
		e = cursor.InsertEdit(pos, r.Payload1)
	case KindDelete:
		e = cursor.DeleteEdit(pos, len(r.Payload1))
	case KindReplace:
		e = cursor.Edit{Range: cursor.Range{Start: pos, End: pos + len(r.Payload1)}, NewText: r.Payload2}
	default:
		return cursor.Edit{}, false
	}
	if undo {
		e = invert(e, r)
	}
	return e, true
}

func invert(e cursor.Edit, r EditRecord) cursor.Edit {
	removed := r.Payload1
	if r.Kind.Base() == KindInsert {
		removed = ""
	}
	return cursor.Edit{
		Range:   cursor.Range{Start: e.Range.Start, End: e.Range.Start + len(e.NewText)},
		NewText: removed,
	}
}

// Apply applies rec to store, or reverts it when undo is set, and
// returns the change made.
func Apply(store TextStore, rec EditRecord, undo bool) (cursor.Edit, error) {
	e, ok := rec.Edit(undo)
	if !ok {
		return cursor.Edit{}, nil
	}
	if n := e.Range.Len(); n > 0 {
		if err := store.Delete(e.Range.Start, n); err != nil {
			return e, fmt.Errorf("delete %d bytes at %d: %w", n, e.Range.Start, err)
		}
	}
	if e.NewText != "" {
		if err := store.Insert(e.Range.Start, e.NewText); err != nil {
			return e, fmt.Errorf("insert at %d: %w", e.Range.Start, err)
		}
	}
	return e, nil
}

// UndoGroup reverts every record of the most recent group and returns
// how many records were stepped over. When cs is non-nil it is restored
// from a snapshot recorded before the group's first edit, or moved
// along with each reverted edit when there is none.
func (c *Controller) UndoGroup(store TextStore, cs *cursor.CursorSet) (int, error) {
	return c.replayGroup(store, cs, true)
}

// RedoGroup reapplies every record of the next group. Cursor handling
// mirrors UndoGroup using snapshots recorded after the group's last edit.
func (c *Controller) RedoGroup(store TextStore, cs *cursor.CursorSet) (int, error) {
	return c.replayGroup(store, cs, false)
}

func (c *Controller) replayGroup(store TextStore, cs *cursor.CursorSet, undo bool) (int, error) {
	peek, step := c.PeekRedo, c.Redo
	if undo {
		peek, step = c.PeekUndo, c.Undo
	}

	first, ok := peek()
	if !ok {
		if undo {
			return 0, ErrNothingToUndo
		}
		return 0, ErrNothingToRedo
	}

	var snap *cursor.Snapshot
	n := 0
	for {
		next, ok := peek()
		if !ok || next.Group != first.Group {
			break
		}
		rec, _ := step()
		n++

		if rec.Kind.Base() == KindCustom1 {
			if s, err := cursor.DecodeSnapshot(rec.Payload1); err == nil {
				snap = &s
			}
			continue
		}

		e, err := Apply(store, rec, undo)
		if err != nil {
			return n, fmt.Errorf("replay %s: %w", rec, err)
		}
		snap = nil
		if cs != nil {
			cursor.TransformCursorSet(cs, e)
		}
		if undo && rec.Kind.Has(FlagCustom2) {
			if s, err := cursor.DecodeSnapshot(rec.Payload2); err == nil {
				snap = &s
			}
		}
	}

	if cs != nil && snap != nil {
		snap.Restore(cs, store.Len())
	}
	return n, nil
}

// StringStore is a minimal TextStore over a byte slice.
type StringStore struct {
	text []byte
}

// NewStringStore creates a store holding s.
func NewStringStore(s string) *StringStore {
	return &StringStore{text: []byte(s)}
}

// Insert inserts text at pos.
func (s *StringStore) Insert(pos int, text string) error {
	if pos < 0 || pos > len(s.text) {
		return fmt.Errorf("insert at %d: %w", pos, ErrPositionRange)
	}
	s.text = append(s.text[:pos], append([]byte(text), s.text[pos:]...)...)
	return nil
}

// Delete removes n bytes at pos.
func (s *StringStore) Delete(pos, n int) error {
	if pos < 0 || n < 0 || pos+n > len(s.text) {
		return fmt.Errorf("delete [%d,%d): %w", pos, pos+n, ErrPositionRange)
	}
	s.text = append(s.text[:pos], s.text[pos+n:]...)
	return nil
}

// Len returns the text length in bytes.
func (s *StringStore) Len() int {
	return len(s.text)
}

// String returns the text.
func (s *StringStore) String() string {
	return string(s.text)
}
