package history

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/editlog/internal/engine/charclass"
	"github.com/dshills/editlog/internal/logging"
)

// noSavePoint marks an unset or unreachable save point.
const noSavePoint = -1

// Mutation is a raw change observed by the text storage layer.
//
// Pos is the offset of the first affected byte. For a backspace it is
// the start of the removed text, not the caret position before it.
type Mutation struct {
	Pos       int
	Inserted  string
	Deleted   string
	Backspace bool // Deleted was removed backwards from the caret
	Selection bool // the change consumed an active selection
}

// Controller records raw mutations into a Log, coalescing runs of
// single-character edits and bracketing compound operations into groups.
//
// Controller is not safe for concurrent use; it belongs to the goroutine
// that owns the document.
type Controller struct {
	log      *Log
	policy   CapacityPolicy
	classify charclass.Func

	group     uint16
	lockDepth int

	// prevClass is the class of the previous raw single-character edit,
	// or None when the next edit must start a new record.
	prevClass charclass.Class

	// prevSelDelete is set when the previous raw edit removed a selection.
	prevSelDelete bool

	pendingCustom1 *EditRecord
	pendingCustom2 *string

	savePoint   int
	checkpoints []*Checkpoint
	enabled     bool

	id     string
	logger *logging.Logger
}

// NewController creates a controller with an empty log.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		policy:    DefaultCapacityPolicy(),
		classify:  charclass.Default,
		savePoint: noSavePoint,
		enabled:   true,
		logger:    logging.Null,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	c.logger = c.logger.WithComponent("history").WithField("session", c.id)

	c.log = NewLog(c.policy)
	c.log.onResize = func(old, cur int) {
		c.logger.Debug("log capacity %d -> %d (live %d)", old, cur, c.log.Len())
	}
	return c
}

// ID returns the session id used in log lines.
func (c *Controller) ID() string {
	return c.id
}

// Log returns the underlying log for inspection.
func (c *Controller) Log() *Log {
	return c.log
}

// RecordEdit classifies m and either merges it into the previous record
// or pushes a new one. Mutations that change nothing are ignored.
func (c *Controller) RecordEdit(m Mutation) error {
	if !c.enabled {
		return nil
	}
	if m.Inserted == "" && m.Deleted == "" {
		return nil
	}
	if m.Pos < 0 || m.Pos > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrPositionRange, m.Pos)
	}
	if strings.IndexByte(m.Inserted, 0) >= 0 || strings.IndexByte(m.Deleted, 0) >= 0 {
		return ErrEmbeddedNUL
	}

	if c.lockDepth == 0 {
		c.group++
	}

	var err error
	switch {
	case m.Inserted != "" && m.Deleted != "":
		err = c.recordReplace(m)
	case m.Deleted != "":
		err = c.recordDelete(m)
	default:
		err = c.recordInsert(m)
	}
	if err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Controller) recordReplace(m Mutation) error {
	rec := EditRecord{
		Kind:     KindReplace,
		Group:    c.group,
		Pos:      int32(m.Pos),
		Payload1: m.Deleted,
		Payload2: m.Inserted,
	}
	if m.Selection {
		rec.Kind |= FlagSelected
	}
	c.resetCoalescing()
	if err := c.flushCustom1(); err != nil {
		return err
	}
	return c.push(rec)
}

func (c *Controller) recordDelete(m Mutation) error {
	cls, single := charclass.Single(c.classify, m.Deleted)
	mergeable := single && !m.Selection

	if mergeable && c.canMerge(cls) {
		prev, ok := c.log.PeekLeft()
		if ok && prev.Kind.Base() == KindDelete && !prev.Kind.Has(FlagSelected) &&
			prev.Kind.Has(FlagBackspace) == m.Backspace {
			switch {
			case m.Backspace && m.Pos+len(m.Deleted) == int(prev.Pos):
				prev.PrependPayload1(m.Deleted)
				prev.Pos = int32(m.Pos)
				return c.replaceLast(prev, cls)
			case !m.Backspace && m.Pos == int(prev.Pos):
				prev.AppendPayload1(m.Deleted)
				return c.replaceLast(prev, cls)
			}
		}
	}

	rec := EditRecord{
		Kind:     KindDelete,
		Group:    c.group,
		Pos:      int32(m.Pos),
		Payload1: m.Deleted,
	}
	if m.Backspace {
		rec.Kind |= FlagBackspace
	}
	if m.Selection {
		rec.Kind |= FlagSelected
	}
	if err := c.flushCustom1(); err != nil {
		return err
	}
	if err := c.push(rec); err != nil {
		return err
	}

	c.resetCoalescing()
	if mergeable {
		c.prevClass = cls
	}
	c.prevSelDelete = m.Selection
	return nil
}

func (c *Controller) recordInsert(m Mutation) error {
	if m.Selection && c.prevSelDelete {
		if done, err := c.convertToReplace(m); done || err != nil {
			return err
		}
	}

	cls, single := charclass.Single(c.classify, m.Inserted)
	mergeable := single && !m.Selection

	if mergeable && c.pendingCustom2 == nil && c.canMerge(cls) {
		prev, ok := c.log.PeekLeft()
		if ok && prev.Kind.Base() == KindInsert && !prev.Kind.Has(FlagSelected) && prev.End() == m.Pos {
			prev.AppendPayload1(m.Inserted)
			return c.replaceLast(prev, cls)
		}
	}

	rec := EditRecord{
		Kind:     KindInsert,
		Group:    c.group,
		Pos:      int32(m.Pos),
		Payload1: m.Inserted,
	}
	if m.Selection {
		rec.Kind |= FlagSelected
	}
	if c.pendingCustom2 != nil {
		rec.Kind |= FlagCustom2
		rec.Payload2 = *c.pendingCustom2
	}
	if err := c.flushCustom1(); err != nil {
		return err
	}
	if err := c.push(rec); err != nil {
		return err
	}
	c.pendingCustom2 = nil

	c.resetCoalescing()
	if mergeable {
		c.prevClass = cls
	}
	return nil
}

// convertToReplace turns the selection delete just recorded into a
// replace carrying m's inserted text. It reports whether m was consumed.
func (c *Controller) convertToReplace(m Mutation) (bool, error) {
	if c.pendingCustom1 != nil || c.log.HasRedo() {
		return false, nil
	}
	prev, ok := c.log.PeekLeft()
	if !ok || prev.Kind.Base() != KindDelete || !prev.Kind.Has(FlagSelected) || int(prev.Pos) != m.Pos {
		return false, nil
	}

	rec := prev
	rec.Kind = KindReplace | FlagSelected
	rec.Payload2 = m.Inserted

	c.resetCoalescing()
	c.log.Pop()
	if rec.IsNoop() {
		c.dropUnreachableSavePoint()
		return true, nil
	}
	return true, c.push(rec)
}

// canMerge reports whether an edit of class cls may be folded into the
// record just before the cursor.
func (c *Controller) canMerge(cls charclass.Class) bool {
	if c.prevClass == charclass.None || !cls.Shares(c.prevClass) {
		return false
	}
	if c.pendingCustom1 != nil || c.log.HasRedo() {
		return false
	}
	// Keep saved and checkpointed states reachable by undo.
	at := c.log.LogicalCursor()
	if c.savePoint == at {
		return false
	}
	for _, cp := range c.checkpoints {
		if cp.pos == at {
			return false
		}
	}
	return true
}

func (c *Controller) replaceLast(rec EditRecord, cls charclass.Class) error {
	c.log.Pop()
	if err := c.push(rec); err != nil {
		return err
	}
	c.prevClass = cls
	c.prevSelDelete = false
	return nil
}

// push writes rec, invalidating the save point when the write lands
// behind it.
func (c *Controller) push(rec EditRecord) error {
	at := c.log.LogicalCursor()
	if err := c.log.Push(rec); err != nil {
		return err
	}
	if c.savePoint != noSavePoint && at < c.savePoint {
		c.savePoint = noSavePoint
	}
	c.invalidateCheckpoints(at)
	return nil
}

func (c *Controller) flushCustom1() error {
	if c.pendingCustom1 == nil {
		return nil
	}
	rec := *c.pendingCustom1
	rec.Group = c.group
	if err := c.push(rec); err != nil {
		return err
	}
	c.pendingCustom1 = nil
	return nil
}

func (c *Controller) dropUnreachableSavePoint() {
	if c.savePoint > c.log.Len() {
		c.savePoint = noSavePoint
	}
	c.invalidateCheckpoints(c.log.Len())
}

func (c *Controller) resetCoalescing() {
	c.prevClass = charclass.None
	c.prevSelDelete = false
}

// fail disables undo when the log could not grow; other errors pass through.
func (c *Controller) fail(err error) error {
	if !errors.Is(err, ErrCapacityExceeded) {
		return err
	}
	c.logger.Warn("disabling undo: %v", err)
	c.SetEnabled(false)
	return fmt.Errorf("%w: %w", ErrUndoDisabled, err)
}

// Undo steps back over one record and returns it for the caller to revert.
func (c *Controller) Undo() (EditRecord, bool) {
	c.resetCoalescing()
	return c.log.Undo()
}

// Redo steps forward over one record and returns it for the caller to reapply.
func (c *Controller) Redo() (EditRecord, bool) {
	c.resetCoalescing()
	return c.log.Redo()
}

// PeekUndo returns the record Undo would return.
func (c *Controller) PeekUndo() (EditRecord, bool) {
	return c.log.PeekLeft()
}

// PeekRedo returns the record Redo would return.
func (c *Controller) PeekRedo() (EditRecord, bool) {
	return c.log.PeekRight()
}

// HasUndo reports whether Undo would return a record.
func (c *Controller) HasUndo() bool {
	return c.log.HasUndo()
}

// HasRedo reports whether Redo would return a record.
func (c *Controller) HasRedo() bool {
	return c.log.HasRedo()
}

// Group returns the current group id.
func (c *Controller) Group() uint16 {
	return c.group
}

// GroupLock starts a compound operation: every record pushed until the
// matching unlock shares one group id. Locks nest.
func (c *Controller) GroupLock() {
	if c.lockDepth == 0 {
		c.group++
		c.resetCoalescing()
	}
	c.lockDepth++
}

// GroupUnlock ends a compound operation. The next edit starts a new group.
func (c *Controller) GroupUnlock() {
	if c.lockDepth == 0 {
		return
	}
	c.lockDepth--
	if c.lockDepth == 0 {
		c.resetCoalescing()
	}
}

// GroupUnlockAndAdd ends a compound operation and advances the group id
// immediately, so records added before the next edit, such as a custom1
// snapshot, do not join the closed group.
func (c *Controller) GroupUnlockAndAdd() {
	c.GroupUnlock()
	if c.lockDepth == 0 {
		c.group++
	}
}

// IsGroupLocked reports whether a compound operation is open.
func (c *Controller) IsGroupLocked() bool {
	return c.lockDepth > 0
}

// PrepareCustom1 stores a snapshot that is written right before the next
// recorded edit, in that edit's group. A later call replaces it.
func (c *Controller) PrepareCustom1(snapshot string) error {
	if strings.IndexByte(snapshot, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	if !c.enabled {
		return nil
	}
	c.pendingCustom1 = &EditRecord{Kind: KindCustom1, Payload1: snapshot}
	return nil
}

// AddCustom1 writes a snapshot record immediately, in the current group.
func (c *Controller) AddCustom1(snapshot string) error {
	if strings.IndexByte(snapshot, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	if !c.enabled {
		return nil
	}
	c.pendingCustom1 = nil
	c.resetCoalescing()
	err := c.push(EditRecord{Kind: KindCustom1, Group: c.group, Payload1: snapshot})
	if err != nil {
		return c.fail(err)
	}
	return nil
}

// PrepareCustom2 stores data that is attached to the next pushed insert.
func (c *Controller) PrepareCustom2(data string) error {
	if strings.IndexByte(data, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	if !c.enabled {
		return nil
	}
	c.pendingCustom2 = &data
	return nil
}

// SetSavePoint marks the current position as the saved document state.
func (c *Controller) SetSavePoint() {
	c.savePoint = c.log.LogicalCursor()
}

// ClearSavePoint forgets the saved state; the document reports dirty
// until SetSavePoint is called again.
func (c *Controller) ClearSavePoint() {
	c.savePoint = noSavePoint
}

// IsAtSavePoint reports whether the document is in its saved state.
func (c *Controller) IsAtSavePoint() bool {
	return c.savePoint != noSavePoint && c.log.LogicalCursor() == c.savePoint
}

// Clear drops all history, pending snapshots and the save point.
func (c *Controller) Clear() {
	c.log.Clear()
	c.pendingCustom1 = nil
	c.pendingCustom2 = nil
	c.savePoint = noSavePoint
	c.invalidateCheckpoints(-1)
	c.resetCoalescing()
}

// SetEnabled turns recording on or off. Turning it off clears history.
func (c *Controller) SetEnabled(on bool) {
	if c.enabled == on {
		return
	}
	c.enabled = on
	if !on {
		c.Clear()
	}
	c.logger.Info("undo enabled=%t", on)
}

// Enabled reports whether edits are being recorded.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// Stats describes the controller's log.
type Stats struct {
	Undo     int // records before the cursor
	Redo     int // records after the cursor
	Bytes    int // live bytes
	Capacity int
	Group    uint16
}

// Stats returns a summary of the log.
func (c *Controller) Stats() Stats {
	undo, redo := c.log.Count()
	return Stats{
		Undo:     undo,
		Redo:     redo,
		Bytes:    c.log.Len(),
		Capacity: c.log.Cap(),
		Group:    c.group,
	}
}
