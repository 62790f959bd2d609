package cursor

// Edit describes a text change: the bytes in Range were replaced by NewText.
type Edit struct {
	Range   Range
	NewText string
}

// InsertEdit returns the edit for inserting text at offset.
func InsertEdit(offset ByteOffset, text string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: text}
}

// DeleteEdit returns the edit for removing n bytes at offset.
func DeleteEdit(offset, n ByteOffset) Edit {
	return Edit{Range: Range{Start: offset, End: offset + n}}
}

// Delta returns the change in document length caused by the edit.
func (e Edit) Delta() ByteOffset {
	return len(e.NewText) - e.Range.Len()
}

// TransformOffset updates an offset after an edit.
//
//   - edit entirely before offset: shift by the edit's delta
//   - edit starts at or after offset: unchanged
//   - edit spans offset: move to the end of the new text
func TransformOffset(offset ByteOffset, edit Edit) ByteOffset {
	if edit.Range.End <= offset {
		if edit.Range.IsEmpty() && edit.Range.Start == offset {
			// Insertion at the offset pushes it along.
			return offset + len(edit.NewText)
		}
		return offset + edit.Delta()
	}
	if edit.Range.Start >= offset {
		return offset
	}
	return edit.Range.Start + len(edit.NewText)
}

// TransformSelection updates both ends of a selection after an edit.
func TransformSelection(sel Selection, edit Edit) Selection {
	return Selection{
		Anchor: TransformOffset(sel.Anchor, edit),
		Head:   TransformOffset(sel.Head, edit),
	}
}

// TransformCursorSet updates all selections in cs after an edit.
func TransformCursorSet(cs *CursorSet, edit Edit) {
	for i := range cs.selections {
		cs.selections[i] = TransformSelection(cs.selections[i], edit)
	}
	cs.normalize()
}
