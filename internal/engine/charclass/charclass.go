// Package charclass maps characters to the coarse classes the history
// engine uses to decide whether two single-character edits coalesce.
package charclass

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Class is a set of class bits.
type Class uint8

// Class bits. A character normally carries exactly one.
const (
	None    Class = 0
	Space   Class = 1 << iota // horizontal whitespace
	LineEnd                   // \n, \r and other line separators
	Word                      // letters, digits, underscore
	Punct                     // punctuation and symbols
	Other                     // control characters and anything unclassified
)

// String returns the name of the class bits that are set.
func (c Class) String() string {
	if c == None {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		bit  Class
		name string
	}{
		{Space, "space"},
		{LineEnd, "lineend"},
		{Word, "word"},
		{Punct, "punct"},
		{Other, "other"},
	} {
		if c&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Shares reports whether c and other have a class bit in common.
func (c Class) Shares(other Class) bool {
	return c&other != 0
}

// Func classifies a single rune.
type Func func(r rune) Class

// Default classifies runes using the unicode tables. Letters, digits and
// underscore are word characters.
func Default(r rune) Class {
	switch {
	case r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029' || r == '\u0085':
		return LineEnd
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
		return Word
	case unicode.IsSpace(r):
		return Space
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return Punct
	}
	return Other
}

// Table is a classifier with an ASCII lookup table and a fallback for
// everything else.
type Table struct {
	ascii    [128]Class
	fallback Func
}

// NewTable builds a table from Default, treating every rune in
// extraWord as a word character as well.
func NewTable(extraWord string) *Table {
	t := &Table{fallback: Default}
	for r := rune(0); r < 128; r++ {
		t.ascii[r] = Default(r)
	}
	for _, r := range extraWord {
		if r < 128 {
			t.ascii[r] = Word
		}
	}
	if strings.ContainsFunc(extraWord, func(r rune) bool { return r >= 128 }) {
		extra := extraWord
		t.fallback = func(r rune) Class {
			if strings.ContainsRune(extra, r) {
				return Word
			}
			return Default(r)
		}
	}
	return t
}

// Classify implements Func.
func (t *Table) Classify(r rune) Class {
	if r >= 0 && r < 128 {
		return t.ascii[r]
	}
	return t.fallback(r)
}

// Single returns the class of text when it is exactly one user-perceived
// character (one grapheme cluster). Multi-rune clusters, such as a base
// letter with combining marks, are classified by their first rune.
func Single(classify Func, text string) (Class, bool) {
	if text == "" {
		return None, false
	}
	cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(text, -1)
	if rest != "" || cluster == "" {
		return None, false
	}
	if classify == nil {
		classify = Default
	}
	for _, r := range cluster {
		return classify(r), true
	}
	return None, false
}
