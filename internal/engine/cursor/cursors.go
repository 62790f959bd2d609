package cursor

import "sort"

// CursorSet manages one or more selections.
// Selections are kept sorted by position and non-overlapping. One of
// them is the primary selection; it survives sorting, and when it is
// merged with others the merged selection becomes primary.
type CursorSet struct {
	selections []Selection
	primary    int
}

// NewCursorSetAt creates a cursor set with a single cursor at offset.
func NewCursorSetAt(offset ByteOffset) *CursorSet {
	return &CursorSet{selections: []Selection{NewCursorSelection(offset)}}
}

// NewCursorSet creates a cursor set from selections.
func NewCursorSet(sels ...Selection) *CursorSet {
	cs := &CursorSet{}
	cs.SetAll(sels)
	return cs
}

// Primary returns the primary selection.
func (cs *CursorSet) Primary() Selection {
	if len(cs.selections) == 0 {
		return Selection{}
	}
	return cs.selections[cs.primary]
}

// PrimaryIndex returns the position of the primary selection in All.
func (cs *CursorSet) PrimaryIndex() int {
	return cs.primary
}

// SetPrimary makes the i-th selection primary. Out-of-range indexes are
// ignored.
func (cs *CursorSet) SetPrimary(i int) {
	if i >= 0 && i < len(cs.selections) {
		cs.primary = i
	}
}

// PrimaryCursor returns the head of the primary selection.
func (cs *CursorSet) PrimaryCursor() ByteOffset {
	return cs.Primary().Head
}

// All returns a copy of all selections.
func (cs *CursorSet) All() []Selection {
	result := make([]Selection, len(cs.selections))
	copy(result, cs.selections)
	return result
}

// Count returns the number of selections.
func (cs *CursorSet) Count() int {
	return len(cs.selections)
}

// HasSelection returns true if any selection has extent.
func (cs *CursorSet) HasSelection() bool {
	for _, sel := range cs.selections {
		if !sel.IsEmpty() {
			return true
		}
	}
	return false
}

// SetAll replaces all selections, making the first one primary. An
// empty slice leaves a cursor at 0.
func (cs *CursorSet) SetAll(sels []Selection) {
	cs.SetAllWithPrimary(sels, 0)
}

// SetAllWithPrimary replaces all selections, making sels[primary] the
// primary one. An out-of-range primary falls back to the first.
func (cs *CursorSet) SetAllWithPrimary(sels []Selection, primary int) {
	if len(sels) == 0 {
		cs.selections = []Selection{NewCursorSelection(0)}
		cs.primary = 0
		return
	}
	if primary < 0 || primary >= len(sels) {
		primary = 0
	}
	cs.selections = make([]Selection, len(sels))
	copy(cs.selections, sels)
	cs.primary = primary
	cs.normalize()
}

// Clamp clamps all selections to [0, maxOffset].
func (cs *CursorSet) Clamp(maxOffset ByteOffset) {
	for i, sel := range cs.selections {
		cs.selections[i] = sel.Clamp(maxOffset)
	}
	cs.normalize()
}

// Clone returns a deep copy of the cursor set.
func (cs *CursorSet) Clone() *CursorSet {
	return &CursorSet{selections: cs.All(), primary: cs.primary}
}

// Equals returns true if both sets hold the same selections.
func (cs *CursorSet) Equals(other *CursorSet) bool {
	if other == nil || cs.Count() != other.Count() || cs.primary != other.primary {
		return false
	}
	for i, sel := range cs.selections {
		if sel != other.selections[i] {
			return false
		}
	}
	return true
}

// normalize sorts selections and merges overlapping ones. Adjacent
// cursors at the same offset collapse into one.
func (cs *CursorSet) normalize() {
	if len(cs.selections) <= 1 {
		cs.primary = 0
		return
	}

	type entry struct {
		sel     Selection
		primary bool
	}
	entries := make([]entry, len(cs.selections))
	for i, sel := range cs.selections {
		entries[i] = entry{sel: sel, primary: i == cs.primary}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		si, sj := entries[i].sel.Start(), entries[j].sel.Start()
		if si != sj {
			return si < sj
		}
		return entries[i].sel.End() > entries[j].sel.End()
	})

	merged := cs.selections[:0]
	cs.primary = 0
	for i, e := range entries {
		if i > 0 {
			last := &merged[len(merged)-1]
			if e.sel.Start() < last.End() || e.sel.Start() == last.Start() {
				*last = last.Merge(e.sel)
				if e.primary {
					cs.primary = len(merged) - 1
				}
				continue
			}
		}
		merged = append(merged, e.sel)
		if e.primary {
			cs.primary = len(merged) - 1
		}
	}
	cs.selections = merged
}
