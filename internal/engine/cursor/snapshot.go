package cursor

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidSnapshot indicates a payload that is not an encoded snapshot.
var ErrInvalidSnapshot = errors.New("invalid cursor snapshot")

// Snapshot captures cursor state so history replay can restore it.
type Snapshot struct {
	Selections []Selection
	Primary    int // index of the primary selection
}

// SnapshotOf captures the selections of cs.
func SnapshotOf(cs *CursorSet) Snapshot {
	return Snapshot{Selections: cs.All(), Primary: cs.PrimaryIndex()}
}

// Encode returns the snapshot as compact JSON:
//
//	{"primary":0,"sels":[[anchor,head],...]}
//
// The output never contains a NUL byte.
func (s Snapshot) Encode() string {
	out, _ := sjson.Set("", "primary", s.Primary)
	out, _ = sjson.SetRaw(out, "sels", "[]")
	for _, sel := range s.Selections {
		out, _ = sjson.Set(out, "sels.-1", []int{sel.Anchor, sel.Head})
	}
	return out
}

// DecodeSnapshot parses a payload produced by Encode.
func DecodeSnapshot(payload string) (Snapshot, error) {
	if !gjson.Valid(payload) {
		return Snapshot{}, fmt.Errorf("%w: not JSON", ErrInvalidSnapshot)
	}
	sels := gjson.Get(payload, "sels")
	if !sels.IsArray() {
		return Snapshot{}, fmt.Errorf("%w: missing sels", ErrInvalidSnapshot)
	}

	var snap Snapshot
	var err error
	sels.ForEach(func(_, v gjson.Result) bool {
		pair := v.Array()
		if len(pair) != 2 || pair[0].Type != gjson.Number || pair[1].Type != gjson.Number {
			err = fmt.Errorf("%w: bad selection %s", ErrInvalidSnapshot, v.Raw)
			return false
		}
		snap.Selections = append(snap.Selections, NewSelection(int(pair[0].Int()), int(pair[1].Int())))
		return true
	})
	if err != nil {
		return Snapshot{}, err
	}

	snap.Primary = int(gjson.Get(payload, "primary").Int())
	if snap.Primary < 0 || (len(snap.Selections) > 0 && snap.Primary >= len(snap.Selections)) {
		return Snapshot{}, fmt.Errorf("%w: primary %d out of range", ErrInvalidSnapshot, snap.Primary)
	}
	return snap, nil
}

// Restore applies the snapshot to cs, clamped to docLen, including which
// selection is primary.
func (s Snapshot) Restore(cs *CursorSet, docLen ByteOffset) {
	cs.SetAllWithPrimary(s.Selections, s.Primary)
	cs.Clamp(docLen)
}
