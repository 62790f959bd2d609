package charclass

import "testing"

func TestDefault(t *testing.T) {
	tests := []struct {
		r    rune
		want Class
	}{
		{'a', Word},
		{'Z', Word},
		{'7', Word},
		{'_', Word},
		{'é', Word},
		{'日', Word},
		{' ', Space},
		{'\t', Space},
		{'\u00a0', Space},
		{'\n', LineEnd},
		{'\r', LineEnd},
		{'\u2028', LineEnd},
		{'.', Punct},
		{'-', Punct},
		{'+', Punct},
		{'$', Punct},
		{'\x01', Other},
	}
	for _, tt := range tests {
		if got := Default(tt.r); got != tt.want {
			t.Errorf("Default(%q) = %s, want %s", tt.r, got, tt.want)
		}
	}
}

func TestClassString(t *testing.T) {
	tests := []struct {
		c    Class
		want string
	}{
		{None, "none"},
		{Word, "word"},
		{Space | LineEnd, "space|lineend"},
		{Punct | Other, "punct|other"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestClassShares(t *testing.T) {
	if !Word.Shares(Word | Punct) {
		t.Error("Word should share with Word|Punct")
	}
	if Word.Shares(Space) {
		t.Error("Word should not share with Space")
	}
	if None.Shares(None) {
		t.Error("None shares nothing")
	}
}

func TestNewTable(t *testing.T) {
	tbl := NewTable("-λ")

	tests := []struct {
		r    rune
		want Class
	}{
		{'-', Word},
		{'λ', Word},
		{'a', Word},
		{'.', Punct},
		{'\u00a0', Space},
		{'μ', Word},
		{'\u2014', Punct},
	}
	for _, tt := range tests {
		if got := tbl.Classify(tt.r); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.r, got, tt.want)
		}
	}
}

func TestNewTableASCIIOnly(t *testing.T) {
	tbl := NewTable("#")
	if tbl.Classify('#') != Word {
		t.Error("extra ASCII rune should be a word character")
	}
	if tbl.Classify('ü') != Word {
		t.Error("non-ASCII letters use the default classes")
	}
	if tbl.Classify('«') != Punct {
		t.Error("non-ASCII punctuation uses the default classes")
	}
}

func TestSingle(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Class
		single bool
	}{
		{"empty", "", None, false},
		{"letter", "a", Word, true},
		{"two letters", "ab", None, false},
		{"space", " ", Space, true},
		{"multibyte", "\u00e9", Word, true},
		{"combining mark", "e\u0301", Word, true},
		{"crlf", "\r\n", LineEnd, true},
		{"emoji", "👍", Punct, true},
		{"flag", "\U0001F1EB\U0001F1F7", Punct, true},
		{"letter and space", "a ", None, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, single := Single(Default, tt.text)
			if single != tt.single || got != tt.want {
				t.Errorf("Single(%q) = %s, %t; want %s, %t", tt.text, got, single, tt.want, tt.single)
			}
		})
	}
}

func TestSingleCustomClassifier(t *testing.T) {
	allWord := func(rune) Class { return Word }
	if got, ok := Single(allWord, "."); !ok || got != Word {
		t.Errorf("Single with custom classifier = %s, %t", got, ok)
	}
	if got, ok := Single(nil, "."); !ok || got != Punct {
		t.Errorf("Single with nil classifier = %s, %t", got, ok)
	}
}
