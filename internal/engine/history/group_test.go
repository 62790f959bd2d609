package history

import (
	"errors"
	"testing"
)

func TestGroupScope(t *testing.T) {
	c := NewController()

	func() {
		defer c.GroupScope().End()
		record(t, c,
			Mutation{Pos: 0, Inserted: "ab"},
			Mutation{Pos: 2, Inserted: "cd"},
		)
		if !c.IsGroupLocked() {
			t.Error("expected group to be locked inside scope")
		}
	}()

	if c.IsGroupLocked() {
		t.Error("expected group to be unlocked after scope")
	}
	first, _ := c.Undo()
	second, _ := c.Undo()
	if first.Group != second.Group {
		t.Errorf("scoped records in groups %d and %d", first.Group, second.Group)
	}
}

func TestGroupScopeEndTwice(t *testing.T) {
	c := NewController()
	c.GroupLock()
	scope := c.GroupScope()
	scope.End()
	scope.End()
	if !c.IsGroupLocked() {
		t.Error("second End should not release the outer lock")
	}
}

func TestGroupScopeEndAndAdd(t *testing.T) {
	c := NewController()
	scope := c.GroupScope()
	g := c.Group()
	scope.EndAndAdd()
	if c.Group() != g+1 {
		t.Errorf("Group() = %d, want %d", c.Group(), g+1)
	}
	scope.EndAndAdd()
	if c.Group() != g+1 {
		t.Error("second EndAndAdd should have no effect")
	}
}

func TestTransaction(t *testing.T) {
	c := NewController()
	err := c.Transaction(func() error {
		record(t, c,
			Mutation{Pos: 0, Inserted: "ab"},
			Mutation{Pos: 2, Inserted: "cd"},
		)
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
	first, _ := c.Undo()
	second, _ := c.Undo()
	if first.Group != second.Group {
		t.Errorf("transaction records in groups %d and %d", first.Group, second.Group)
	}
}

func TestTransactionError(t *testing.T) {
	c := NewController()
	boom := errors.New("boom")
	err := c.Transaction(func() error {
		record(t, c, Mutation{Pos: 0, Inserted: "ab"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if c.IsGroupLocked() {
		t.Error("lock should be released after a failed transaction")
	}
	if !c.HasUndo() {
		t.Error("records pushed before the failure should stay")
	}
}

func TestCheckpointUndoRedo(t *testing.T) {
	d := newDoc(t, "")
	d.typeAt(0, "abc")
	start := d.h.CreateCheckpoint()
	d.typeAt(3, " def")
	end := d.h.CreateCheckpoint()

	if err := d.h.UndoToCheckpoint(start, d.store, d.cs); err != nil {
		t.Fatalf("UndoToCheckpoint failed: %v", err)
	}
	d.wantText("abc")
	if !end.Valid() {
		t.Error("undo should not invalidate later checkpoints")
	}

	if err := d.h.RedoToCheckpoint(end, d.store, d.cs); err != nil {
		t.Fatalf("RedoToCheckpoint failed: %v", err)
	}
	d.wantText("abc def")
}

func TestCheckpointStopsCoalescing(t *testing.T) {
	d := newDoc(t, "")
	d.typeAt(0, "ab")
	cp := d.h.CreateCheckpoint()
	d.typeAt(2, "cd")

	if err := d.h.UndoToCheckpoint(cp, d.store, d.cs); err != nil {
		t.Fatalf("UndoToCheckpoint failed: %v", err)
	}
	d.wantText("ab")
}

func TestCheckpointLost(t *testing.T) {
	d := newDoc(t, "")
	d.typeAt(0, "abc")
	d.typeAt(3, " def")
	cp := d.h.CreateCheckpoint()

	d.undo()
	d.typeAt(4, "x")
	if cp.Valid() {
		t.Fatal("checkpoint should be lost after editing behind it")
	}
	if err := d.h.UndoToCheckpoint(cp, d.store, d.cs); !errors.Is(err, ErrCheckpointLost) {
		t.Errorf("expected ErrCheckpointLost, got %v", err)
	}
	if err := d.h.RedoToCheckpoint(cp, d.store, d.cs); !errors.Is(err, ErrCheckpointLost) {
		t.Errorf("expected ErrCheckpointLost, got %v", err)
	}
}

func TestCheckpointLostOnClear(t *testing.T) {
	c := NewController()
	cp := c.CreateCheckpoint()
	c.Clear()
	if cp.Valid() {
		t.Error("Clear should invalidate every checkpoint")
	}
}

func TestReleaseCheckpoint(t *testing.T) {
	c := NewController()
	a := c.CreateCheckpoint()
	b := c.CreateCheckpoint()
	c.ReleaseCheckpoint(a)
	if len(c.checkpoints) != 1 || c.checkpoints[0] != b {
		t.Errorf("checkpoints = %v, want only b", c.checkpoints)
	}
	c.ReleaseCheckpoint(a)
	if len(c.checkpoints) != 1 {
		t.Error("releasing twice should be a no-op")
	}
}
