package token

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"parens",
			"()",
			[]Token{{"(", LParen, 1}, {")", RParen, 1}},
		},
		{
			"func",
			"(func $f)",
			[]Token{{"(", LParen, 1}, {"func", Ident, 1}, {"$f", Ident, 1}, {")", RParen, 1}},
		},
		{
			"newlines",
			"(\nomp.parallel\n)",
			[]Token{{"(", LParen, 1}, {"omp.parallel", Ident, 2}, {")", RParen, 3}},
		},
		{
			"values",
			"%a %arg0 %0",
			[]Token{{"%a", Ident, 1}, {"%arg0", Ident, 1}, {"%0", Ident, 1}},
		},
		{
			"numbers",
			"42 -7 +3 0x1f",
			[]Token{{"42", Number, 1}, {"-7", Number, 1}, {"+3", Number, 1}, {"0x1f", Number, 1}},
		},
		{
			"string",
			`(func.call "callee")`,
			[]Token{{"(", LParen, 1}, {"func.call", Ident, 1}, {"callee", String, 1}, {")", RParen, 1}},
		},
		{
			"effect specs",
			"(effects read write:heap alloc@%r)",
			[]Token{
				{"(", LParen, 1}, {"effects", Ident, 1}, {"read", Ident, 1},
				{"write:heap", Ident, 1}, {"alloc@%r", Ident, 1}, {")", RParen, 1},
			},
		},
		{
			"line comment",
			";; comment\n(func)",
			[]Token{{"(", LParen, 2}, {"func", Ident, 2}, {")", RParen, 2}},
		},
		{
			"block comment",
			"(; a\nb ;)(func)",
			[]Token{{"(", LParen, 2}, {"func", Ident, 2}, {")", RParen, 2}},
		},
		{
			"nested block comment",
			"(; (; inner ;) ;)x",
			[]Token{{"x", Ident, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestTokenIsValue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"%x", true},
		{"%", false},
		{"$f", false},
	}

	for _, tt := range tests {
		if got := (Token{tt.value, Ident, 1}).IsValue(); got != tt.want {
			t.Errorf("IsValue(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
