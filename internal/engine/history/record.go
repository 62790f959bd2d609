package history

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Kind identifies what an EditRecord describes.
// The low nibble holds the base kind; the high nibble holds modifier flags.
type Kind uint8

// Base kinds.
const (
	KindInsert  Kind = 1 // Payload1 was inserted at Pos
	KindDelete  Kind = 2 // Payload1 was removed at Pos
	KindReplace Kind = 3 // Payload1 at Pos was replaced by Payload2
	KindCustom1 Kind = 4 // Payload1 is an opaque snapshot, no text change
)

// Modifier flags.
const (
	FlagBackspace Kind = 0x10 // Delete was issued backwards from Pos+len
	FlagSelected  Kind = 0x20 // Edit consumed an active selection
	FlagCustom2   Kind = 0x40 // Insert carries opaque data in Payload2

	baseMask Kind = 0x0f
	flagMask Kind = 0xf0
)

// Base returns the kind with all modifier flags cleared.
func (k Kind) Base() Kind {
	return k & baseMask
}

// Has reports whether all bits of flag are set.
func (k Kind) Has(flag Kind) bool {
	return k&flag == flag
}

// String returns a readable form such as "delete|backspace".
func (k Kind) String() string {
	var name string
	switch k.Base() {
	case KindInsert:
		name = "insert"
	case KindDelete:
		name = "delete"
	case KindReplace:
		name = "replace"
	case KindCustom1:
		name = "custom1"
	default:
		name = fmt.Sprintf("kind(%d)", uint8(k.Base()))
	}
	if k.Has(FlagBackspace) {
		name += "|backspace"
	}
	if k.Has(FlagSelected) {
		name += "|selected"
	}
	if k.Has(FlagCustom2) {
		name += "|custom2"
	}
	return name
}

func (k Kind) valid() bool {
	b := k.Base()
	return b >= KindInsert && b <= KindCustom1
}

// Encoding layout sizes.
const (
	// HeaderSize is the fixed part of a record: kind, group and position.
	HeaderSize = 1 + 2 + 4

	// TrailerSize is the little-endian total size written after every
	// record so the log can be walked backwards.
	TrailerSize = 4
)

// EditRecord is one atomic mutation as stored in the log.
type EditRecord struct {
	Kind  Kind
	Group uint16
	Pos   int32

	// Payload1 holds inserted text (insert), removed text (delete),
	// old text (replace) or an opaque snapshot (custom1).
	Payload1 string

	// Payload2 holds the new text of a replace or custom2 data on an insert.
	Payload2 string
}

// Size returns the number of bytes the record occupies once serialized,
// excluding the trailer.
func (r *EditRecord) Size() int {
	return HeaderSize + len(r.Payload1) + 1 + len(r.Payload2) + 1
}

// AppendPayload1 grows Payload1 at its end.
func (r *EditRecord) AppendPayload1(s string) {
	r.Payload1 += s
}

// PrependPayload1 grows Payload1 at its start.
func (r *EditRecord) PrependPayload1(s string) {
	r.Payload1 = s + r.Payload1
}

// IsNoop reports whether the record leaves the document unchanged.
func (r *EditRecord) IsNoop() bool {
	switch r.Kind.Base() {
	case KindReplace:
		return r.Payload1 == r.Payload2
	case KindInsert, KindDelete:
		return len(r.Payload1) == 0
	}
	return false
}

// End returns the document offset one past the text this record left behind.
func (r *EditRecord) End() int {
	switch r.Kind.Base() {
	case KindInsert:
		return int(r.Pos) + len(r.Payload1)
	case KindReplace:
		return int(r.Pos) + len(r.Payload2)
	}
	return int(r.Pos)
}

// String returns a compact description for logs and dumps.
func (r EditRecord) String() string {
	if r.Kind.Base() == KindReplace {
		return fmt.Sprintf("%s g=%d pos=%d %q->%q", r.Kind, r.Group, r.Pos, r.Payload1, r.Payload2)
	}
	if r.Payload2 != "" {
		return fmt.Sprintf("%s g=%d pos=%d %q +%q", r.Kind, r.Group, r.Pos, r.Payload1, r.Payload2)
	}
	return fmt.Sprintf("%s g=%d pos=%d %q", r.Kind, r.Group, r.Pos, r.Payload1)
}

func (r *EditRecord) validate() error {
	if !r.Kind.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, r.Kind)
	}
	if strings.IndexByte(r.Payload1, 0) >= 0 || strings.IndexByte(r.Payload2, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	return nil
}

// encodeRecord writes rec and its trailer into dst, which must have room
// for rec.Size()+TrailerSize bytes. It returns the number of bytes written.
func encodeRecord(dst []byte, rec *EditRecord) int {
	dst[0] = byte(rec.Kind)
	binary.LittleEndian.PutUint16(dst[1:3], rec.Group)
	binary.LittleEndian.PutUint32(dst[3:7], uint32(rec.Pos))

	n := HeaderSize
	n += copy(dst[n:], rec.Payload1)
	dst[n] = 0
	n++
	n += copy(dst[n:], rec.Payload2)
	dst[n] = 0
	n++

	binary.LittleEndian.PutUint32(dst[n:], uint32(n+TrailerSize))
	return n + TrailerSize
}

// decodeRecord parses the record starting at off within src[:end].
// It returns the record and the offset of the next record.
func decodeRecord(src []byte, off, end int) (EditRecord, int, bool) {
	if off < 0 || off+HeaderSize+2+TrailerSize > end {
		return EditRecord{}, off, false
	}
	rec := EditRecord{
		Kind:  Kind(src[off]),
		Group: binary.LittleEndian.Uint16(src[off+1 : off+3]),
		Pos:   int32(binary.LittleEndian.Uint32(src[off+3 : off+7])),
	}

	p := off + HeaderSize
	p1, p, ok := scanPayload(src, p, end)
	if !ok {
		return EditRecord{}, off, false
	}
	p2, p, ok := scanPayload(src, p, end)
	if !ok {
		return EditRecord{}, off, false
	}
	next := p + TrailerSize
	if next > end {
		return EditRecord{}, off, false
	}
	rec.Payload1 = p1
	rec.Payload2 = p2
	return rec, next, true
}

// scanPayload reads a NUL-terminated payload starting at p. The returned
// string is a copy and does not alias src.
func scanPayload(src []byte, p, end int) (string, int, bool) {
	for i := p; i < end; i++ {
		if src[i] == 0 {
			return string(src[p:i]), i + 1, true
		}
	}
	return "", p, false
}
