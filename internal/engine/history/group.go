package history

import "github.com/dshills/editlog/internal/engine/cursor"

// GroupScope provides a convenient way to bracket a compound operation
// using defer.
// Usage:
//
//	func replaceAll(c *history.Controller, ...) {
//	    defer c.GroupScope().End()
//	    // ... many RecordEdit calls ...
//	}
type GroupScope struct {
	c      *Controller
	active bool
}

// GroupScope locks the group and returns a scope that unlocks it.
func (c *Controller) GroupScope() *GroupScope {
	c.GroupLock()
	return &GroupScope{c: c, active: true}
}

// End unlocks the group.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.c.GroupUnlock()
		g.active = false
	}
}

// EndAndAdd unlocks the group and advances the group id.
func (g *GroupScope) EndAndAdd() {
	if g.active {
		g.c.GroupUnlockAndAdd()
		g.active = false
	}
}

// Transaction runs fn inside a group lock. The lock is released whether
// or not fn fails; records pushed before a failure stay in history.
func (c *Controller) Transaction(fn func() error) error {
	c.GroupLock()
	defer c.GroupUnlock()
	return fn()
}

// Checkpoint is a history position that can be returned to. It becomes
// unreachable when an edit is recorded behind it.
type Checkpoint struct {
	pos  int
	lost bool
}

// Valid reports whether the checkpoint can still be reached.
func (cp *Checkpoint) Valid() bool {
	return !cp.lost
}

// CreateCheckpoint records the current history position. Release it with
// ReleaseCheckpoint once it is no longer needed.
func (c *Controller) CreateCheckpoint() *Checkpoint {
	cp := &Checkpoint{pos: c.log.LogicalCursor()}
	c.checkpoints = append(c.checkpoints, cp)
	return cp
}

// ReleaseCheckpoint stops tracking cp.
func (c *Controller) ReleaseCheckpoint(cp *Checkpoint) {
	for i, p := range c.checkpoints {
		if p == cp {
			c.checkpoints = append(c.checkpoints[:i], c.checkpoints[i+1:]...)
			return
		}
	}
}

// invalidateCheckpoints marks every checkpoint past at as lost.
func (c *Controller) invalidateCheckpoints(at int) {
	kept := c.checkpoints[:0]
	for _, cp := range c.checkpoints {
		if cp.pos > at {
			cp.lost = true
			continue
		}
		kept = append(kept, cp)
	}
	clear(c.checkpoints[len(kept):])
	c.checkpoints = kept
}

// UndoToCheckpoint undoes whole groups until the checkpoint is reached.
func (c *Controller) UndoToCheckpoint(cp *Checkpoint, store TextStore, cs *cursor.CursorSet) error {
	if cp.lost {
		return ErrCheckpointLost
	}
	for c.log.LogicalCursor() > cp.pos {
		if _, err := c.UndoGroup(store, cs); err != nil {
			return err
		}
	}
	if c.log.LogicalCursor() != cp.pos {
		return ErrCheckpointLost
	}
	return nil
}

// RedoToCheckpoint redoes whole groups until the checkpoint is reached.
func (c *Controller) RedoToCheckpoint(cp *Checkpoint, store TextStore, cs *cursor.CursorSet) error {
	if cp.lost {
		return ErrCheckpointLost
	}
	for c.log.LogicalCursor() < cp.pos {
		if _, err := c.RedoGroup(store, cs); err != nil {
			return err
		}
	}
	if c.log.LogicalCursor() != cp.pos {
		return ErrCheckpointLost
	}
	return nil
}
