package token

import "testing"

func TestNewBuildsKindOnlyToken(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{"assign", ASSIGN},
		{"star", STAR},
		{"lbrace", LBRACE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.kind, 3, 7)
			if got.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Lexeme != string(tt.kind) {
				t.Errorf("Lexeme = %q, want %q", got.Lexeme, string(tt.kind))
			}
			if got.Line != 3 || got.Column != 7 {
				t.Errorf("position = (%d,%d), want (3,7)", got.Line, got.Column)
			}
		})
	}
}

func TestNewLiteralCarriesPayload(t *testing.T) {
	got := NewLiteral(NUMBER, "42", int64(42), 1, 1)
	if got.Lexeme != "42" {
		t.Errorf("Lexeme = %q, want %q", got.Lexeme, "42")
	}
	if got.Literal != int64(42) {
		t.Errorf("Literal = %v, want int64(42)", got.Literal)
	}
}

func TestKeywordsMapEveryReservedWord(t *testing.T) {
	reserved := []string{
		"fn", "let", "return", "if", "else", "while",
		"true", "false", "int", "bool", "str", "void", "ptr",
		"print", "println", "asm", "vm_asm",
	}
	for _, word := range reserved {
		if _, ok := Keywords[word]; !ok {
			t.Errorf("Keywords[%q] missing", word)
		}
	}
	if len(Keywords) != len(reserved) {
		t.Errorf("Keywords has %d entries, want %d", len(Keywords), len(reserved))
	}
}
