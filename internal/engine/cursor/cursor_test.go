package cursor

import (
	"testing"
)

// Selection Tests

func TestNewSelection(t *testing.T) {
	sel := NewSelection(10, 20)
	if sel.Anchor != 10 || sel.Head != 20 {
		t.Errorf("expected [10:20], got [%d:%d]", sel.Anchor, sel.Head)
	}
	if sel.IsEmpty() {
		t.Error("selection with extent should not be empty")
	}
}

func TestNewCursorSelection(t *testing.T) {
	sel := NewCursorSelection(15)
	if sel.Anchor != 15 || sel.Head != 15 {
		t.Errorf("expected cursor at 15, got [%d:%d]", sel.Anchor, sel.Head)
	}
	if !sel.IsEmpty() {
		t.Error("cursor selection should be empty")
	}
}

func TestSelectionRange(t *testing.T) {
	forward := NewSelection(10, 20)
	backward := NewSelection(20, 10)

	if forward.Range() != backward.Range() {
		t.Errorf("ranges differ: %v vs %v", forward.Range(), backward.Range())
	}
	r := backward.Range()
	if r.Start != 10 || r.End != 20 || r.Len() != 10 {
		t.Errorf("expected [10:20) len 10, got %v len %d", r, r.Len())
	}
	if !(Range{Start: 5, End: 5}).IsEmpty() {
		t.Error("zero-length range should be empty")
	}
}

func TestSelectionDirection(t *testing.T) {
	if NewSelection(10, 20).IsBackward() {
		t.Error("forward selection reported backward")
	}
	if !NewSelection(20, 10).IsBackward() {
		t.Error("backward selection not reported")
	}
}

func TestSelectionCollapse(t *testing.T) {
	sel := NewSelection(10, 20).Collapse()
	if sel.Anchor != 20 || sel.Head != 20 {
		t.Errorf("expected cursor at head 20, got [%d:%d]", sel.Anchor, sel.Head)
	}
}

func TestSelectionMerge(t *testing.T) {
	merged := NewSelection(20, 10).Merge(NewSelection(15, 30))
	if merged.Start() != 10 || merged.End() != 30 {
		t.Errorf("merged should be [10:30), got [%d:%d)", merged.Start(), merged.End())
	}
}

func TestSelectionClamp(t *testing.T) {
	clamped := NewSelection(-5, 50).Clamp(30)
	if clamped.Anchor != 0 || clamped.Head != 30 {
		t.Errorf("expected clamped to [0:30], got [%d:%d]", clamped.Anchor, clamped.Head)
	}
}

func TestSelectionString(t *testing.T) {
	tests := []struct {
		sel  Selection
		want string
	}{
		{NewCursorSelection(4), "Cursor(4)"},
		{NewSelection(1, 5), "Selection(1→5)"},
		{NewSelection(5, 1), "Selection(5←1)"},
	}
	for _, tt := range tests {
		if got := tt.sel.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// CursorSet Tests

func TestNewCursorSetAt(t *testing.T) {
	cs := NewCursorSetAt(10)
	if cs.Count() != 1 || cs.PrimaryCursor() != 10 {
		t.Errorf("expected one cursor at 10, got %v", cs.All())
	}
}

func TestNewCursorSetEmpty(t *testing.T) {
	cs := NewCursorSet()
	if cs.Count() != 1 || cs.PrimaryCursor() != 0 {
		t.Errorf("empty set should hold a cursor at 0, got %v", cs.All())
	}
}

func TestCursorSetNormalize(t *testing.T) {
	cs := NewCursorSet(
		NewSelection(30, 40),
		NewSelection(10, 20),
		NewSelection(50, 60),
	)

	if cs.Count() != 3 {
		t.Fatalf("expected 3 selections, got %d", cs.Count())
	}
	sels := cs.All()
	if sels[0].Start() != 10 || sels[1].Start() != 30 || sels[2].Start() != 50 {
		t.Error("selections should be sorted by start position")
	}
}

func TestOverlappingSelectionsNormalize(t *testing.T) {
	cs := NewCursorSet(
		NewSelection(0, 20),
		NewSelection(10, 30),
		NewSelection(25, 40),
	)

	if cs.Count() != 1 {
		t.Fatalf("expected 1 merged selection, got %d", cs.Count())
	}
	sel := cs.Primary()
	if sel.Start() != 0 || sel.End() != 40 {
		t.Errorf("expected merged selection [0:40), got [%d:%d)", sel.Start(), sel.End())
	}
}

func TestDuplicateCursorsNormalize(t *testing.T) {
	cs := NewCursorSet(NewCursorSelection(5), NewCursorSelection(5))
	if cs.Count() != 1 {
		t.Errorf("cursors at the same offset should collapse, got %d", cs.Count())
	}
}

func TestCursorSetClamp(t *testing.T) {
	cs := NewCursorSet(
		NewSelection(10, 20),
		NewSelection(40, 60),
	)
	cs.Clamp(50)

	sels := cs.All()
	if sels[1].End() != 50 {
		t.Errorf("second selection should be clamped to 50, got %d", sels[1].End())
	}
}

func TestCursorSetHasSelection(t *testing.T) {
	if NewCursorSet(NewCursorSelection(10), NewCursorSelection(20)).HasSelection() {
		t.Error("cursors only should not have selection")
	}
	if !NewCursorSet(NewCursorSelection(10), NewSelection(20, 30)).HasSelection() {
		t.Error("should have selection")
	}
}

func TestCursorSetCloneAndEquals(t *testing.T) {
	cs := NewCursorSet(NewSelection(10, 20), NewSelection(30, 40))
	clone := cs.Clone()
	if !cs.Equals(clone) {
		t.Fatal("clone should equal original")
	}

	cs.SetAll([]Selection{NewCursorSelection(50)})
	if clone.Count() != 2 {
		t.Error("clone should not be affected by original modifications")
	}
	if cs.Equals(clone) {
		t.Error("modified set should differ from clone")
	}
	if cs.Equals(nil) {
		t.Error("Equals(nil) should return false")
	}
}

func TestCursorSetPrimarySurvivesSort(t *testing.T) {
	cs := NewCursorSet()
	cs.SetAllWithPrimary([]Selection{NewCursorSelection(30), NewCursorSelection(10), NewCursorSelection(20)}, 0)

	if got := cs.PrimaryCursor(); got != 30 {
		t.Errorf("PrimaryCursor() = %d, want 30", got)
	}
	if got := cs.PrimaryIndex(); got != 2 {
		t.Errorf("PrimaryIndex() = %d, want 2", got)
	}

	cs.SetPrimary(0)
	if got := cs.PrimaryCursor(); got != 10 {
		t.Errorf("after SetPrimary(0), PrimaryCursor() = %d, want 10", got)
	}
	cs.SetPrimary(7)
	if got := cs.PrimaryIndex(); got != 0 {
		t.Errorf("out-of-range SetPrimary changed index to %d", got)
	}
}

func TestCursorSetPrimaryFollowsMerge(t *testing.T) {
	cs := NewCursorSet()
	cs.SetAllWithPrimary([]Selection{NewCursorSelection(2), NewSelection(10, 20), NewCursorSelection(15)}, 2)
	if cs.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", cs.Count())
	}
	if got := cs.Primary(); got != NewSelection(10, 20) {
		t.Errorf("Primary() = %v, want the merged selection", got)
	}

	TransformCursorSet(cs, InsertEdit(0, "abc"))
	if got := cs.Primary(); got != NewSelection(13, 23) {
		t.Errorf("Primary() after insert = %v, want 13:23", got)
	}
}

func TestCursorSetEqualsComparesPrimary(t *testing.T) {
	a := NewCursorSet(NewCursorSelection(1), NewCursorSelection(5))
	b := a.Clone()
	if !a.Equals(b) {
		t.Fatal("clone should keep the primary selection")
	}
	b.SetPrimary(1)
	if a.Equals(b) {
		t.Error("sets with different primaries should differ")
	}
}

// Transform Tests

func TestTransformOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		edit   Edit
		want   int
	}{
		{"insert before", 10, InsertEdit(0, "Hello"), 15},
		{"insert after", 10, InsertEdit(20, "Hello"), 10},
		{"insert at offset", 10, InsertEdit(10, "Hello"), 15},
		{"delete before", 10, DeleteEdit(0, 5), 5},
		{"delete after", 10, DeleteEdit(10, 5), 10},
		{"delete spanning", 10, DeleteEdit(5, 10), 5},
		{"replace spanning", 10, Edit{Range: Range{Start: 5, End: 15}, NewText: "abc"}, 8},
		{"replace ending at offset", 10, Edit{Range: Range{Start: 5, End: 10}, NewText: "abc"}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformOffset(tt.offset, tt.edit); got != tt.want {
				t.Errorf("TransformOffset(%d, %+v) = %d, want %d", tt.offset, tt.edit, got, tt.want)
			}
		})
	}
}

func TestEditDelta(t *testing.T) {
	if d := InsertEdit(3, "abc").Delta(); d != 3 {
		t.Errorf("insert delta = %d, want 3", d)
	}
	if d := DeleteEdit(3, 4).Delta(); d != -4 {
		t.Errorf("delete delta = %d, want -4", d)
	}
}

func TestTransformDeleteEntireSelection(t *testing.T) {
	transformed := TransformSelection(NewSelection(10, 20), DeleteEdit(10, 10))
	if transformed.Anchor != 10 || transformed.Head != 10 {
		t.Errorf("expected collapsed at 10, got [%d:%d]", transformed.Anchor, transformed.Head)
	}
}

func TestTransformCursorSetMerges(t *testing.T) {
	cs := NewCursorSet(NewCursorSelection(10), NewCursorSelection(20))
	TransformCursorSet(cs, DeleteEdit(5, 20))

	if cs.Count() != 1 || cs.PrimaryCursor() != 5 {
		t.Errorf("cursors inside a deletion should collapse to 5, got %v", cs.All())
	}
}

func TestMultiCursorEditing(t *testing.T) {
	cs := NewCursorSet(
		NewCursorSelection(10),
		NewCursorSelection(20),
		NewCursorSelection(30),
	)

	// Typing 'x' at each cursor, last one first.
	for _, pos := range []int{30, 20, 10} {
		TransformCursorSet(cs, InsertEdit(pos, "x"))
	}

	sels := cs.All()
	want := []int{11, 22, 33}
	for i, sel := range sels {
		if sel.Head != want[i] {
			t.Errorf("cursor %d at %d, want %d", i, sel.Head, want[i])
		}
	}
}
