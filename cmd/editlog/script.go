package main

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/dshills/editlog/internal/engine/cursor"
	"github.com/dshills/editlog/internal/engine/history"
)

// Script is a recorded editing session.
//
//	text: "hello"
//	steps:
//	  - {op: type, pos: 5, text: " world"}
//	  - {op: backspace, pos: 11, n: 5}
//	  - {op: undo}
type Script struct {
	Text  string `yaml:"text"`
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action.
type Step struct {
	Op        string `yaml:"op"`
	Pos       int    `yaml:"pos"`
	Text      string `yaml:"text"`
	N         int    `yaml:"n"`
	Selection bool   `yaml:"selection"`
}

// ParseScript decodes a YAML script.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	return &s, nil
}

// Session drives a controller and a text store from script steps.
type Session struct {
	Store   *history.StringStore
	Cursors *cursor.CursorSet
	History *history.Controller

	// Width limits each record line of the report to that many terminal
	// columns. Zero means unlimited.
	Width int
}

// NewSession creates a session over text.
func NewSession(text string, h *history.Controller) *Session {
	return &Session{
		Store:   history.NewStringStore(text),
		Cursors: cursor.NewCursorSetAt(len(text)),
		History: h,
	}
}

// Run executes every step of s.
func (s *Session) Run(script *Script) error {
	for i, step := range script.Steps {
		if err := s.Step(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return nil
}

// Step executes one step.
func (s *Session) Step(st Step) error {
	switch st.Op {
	case "type":
		// One mutation per character, the way keystrokes arrive.
		pos := st.Pos
		for _, r := range st.Text {
			ch := string(r)
			if err := s.edit(history.Mutation{Pos: pos, Inserted: ch}); err != nil {
				return err
			}
			pos += len(ch)
		}
	case "insert":
		return s.edit(history.Mutation{Pos: st.Pos, Inserted: st.Text, Selection: st.Selection})
	case "delete":
		return s.deleteAt(st.Pos, st.N, false, st.Selection)
	case "backspace":
		// Pos is the caret; remove N characters before it, one at a time.
		caret := st.Pos
		for range max(st.N, 1) {
			text := s.Store.String()
			if caret <= 0 || caret > len(text) {
				return fmt.Errorf("backspace at %d outside text of %d bytes", caret, len(text))
			}
			_, size := utf8.DecodeLastRuneInString(text[:caret])
			if err := s.deleteAt(caret-size, size, true, false); err != nil {
				return err
			}
			caret -= size
		}
	case "replace":
		old, err := s.slice(st.Pos, st.N)
		if err != nil {
			return err
		}
		return s.edit(history.Mutation{Pos: st.Pos, Deleted: old, Inserted: st.Text, Selection: st.Selection})
	case "undo":
		_, err := s.History.UndoGroup(s.Store, s.Cursors)
		return err
	case "redo":
		_, err := s.History.RedoGroup(s.Store, s.Cursors)
		return err
	case "lock":
		s.History.GroupLock()
	case "unlock":
		s.History.GroupUnlock()
	case "save":
		s.History.SetSavePoint()
	case "snapshot":
		return s.History.PrepareCustom1(cursor.SnapshotOf(s.Cursors).Encode())
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func (s *Session) deleteAt(pos, n int, backspace, selection bool) error {
	old, err := s.slice(pos, n)
	if err != nil {
		return err
	}
	return s.edit(history.Mutation{Pos: pos, Deleted: old, Backspace: backspace, Selection: selection})
}

func (s *Session) slice(pos, n int) (string, error) {
	text := s.Store.String()
	if pos < 0 || n < 0 || pos+n > len(text) {
		return "", fmt.Errorf("range [%d,%d) outside text of %d bytes", pos, pos+n, len(text))
	}
	return text[pos : pos+n], nil
}

// edit applies m to the text, then records it.
func (s *Session) edit(m history.Mutation) error {
	rec := history.EditRecord{Kind: history.KindInsert, Pos: int32(m.Pos), Payload1: m.Inserted}
	switch {
	case m.Deleted != "" && m.Inserted != "":
		rec = history.EditRecord{Kind: history.KindReplace, Pos: int32(m.Pos), Payload1: m.Deleted, Payload2: m.Inserted}
	case m.Deleted != "":
		rec = history.EditRecord{Kind: history.KindDelete, Pos: int32(m.Pos), Payload1: m.Deleted}
	}
	e, err := history.Apply(s.Store, rec, false)
	if err != nil {
		return err
	}
	cursor.TransformCursorSet(s.Cursors, e)
	return s.History.RecordEdit(m)
}

// Report writes the text, stats and log contents to w.
func (s *Session) Report(w io.Writer) {
	st := s.History.Stats()
	fmt.Fprintf(w, "text: %q\n", s.Store.String())
	fmt.Fprintf(w, "cursor: %s\n", s.Cursors.Primary())
	fmt.Fprintf(w, "records: %d undo, %d redo\n", st.Undo, st.Redo)
	fmt.Fprintf(w, "log: %d bytes, capacity %d, group %d\n", st.Bytes, st.Capacity, st.Group)
	fmt.Fprintf(w, "saved: %t\n", s.History.IsAtSavePoint())

	cur := s.History.Log().LogicalCursor()
	for pos, rec := range s.History.Log().Records() {
		mark := " "
		if pos >= cur {
			mark = "~"
		}
		line := fmt.Sprintf("%s %6d  %s", mark, pos, rec)
		if s.Width > 0 {
			line = runewidth.Truncate(line, s.Width, "...")
		}
		fmt.Fprintln(w, line)
	}
}
