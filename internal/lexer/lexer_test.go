package lexer

import (
	"testing"

	"loxwalk/internal/diag"
	"loxwalk/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func eq(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokensBasic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"punctuation", "(){},.-+;*/", []token.Kind{
			token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
			token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON,
			token.STAR, token.SLASH, token.END_OF_FILE,
		}},
		{"two_char_ops", "!= == <= >= ! = < >", []token.Kind{
			token.BANG_EQUAL, token.EQUAL_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL,
			token.BANG, token.EQUAL, token.LESS, token.GREATER, token.END_OF_FILE,
		}},
		{"keywords", "and class else false fun for if nil or print return super this true var while",
			[]token.Kind{
				token.AND, token.CLASS, token.ELSE, token.FALSE, token.FUN, token.FOR,
				token.IF, token.NIL, token.OR, token.PRINT, token.RETURN, token.SUPER,
				token.THIS, token.TRUE, token.VAR, token.WHILE, token.END_OF_FILE,
			}},
		{"identifier", "foo_Bar123", []token.Kind{token.IDENTIFIER, token.END_OF_FILE}},
		{"number_int", "123", []token.Kind{token.NUMBER, token.END_OF_FILE}},
		{"number_float", "1.5", []token.Kind{token.NUMBER, token.END_OF_FILE}},
		{"string", `"hello"`, []token.Kind{token.STRING, token.END_OF_FILE}},
		{"line_comment", "1 // a comment\n2", []token.Kind{token.NUMBER, token.NUMBER, token.END_OF_FILE}},
		{"crlf", "1\r\n2", []token.Kind{token.NUMBER, token.NUMBER, token.END_OF_FILE}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bag diag.Bag
			got := kinds(New(tt.src, &bag).Tokens())
			if !eq(got, tt.want) {
				t.Fatalf("Tokens(%q) = %v, want %v", tt.src, got, tt.want)
			}
			if bag.HadErrors() {
				t.Fatalf("unexpected lex errors: %v", bag.Entries())
			}
		})
	}
}

func TestGreaterVsGreaterEqual(t *testing.T) {
	var bag diag.Bag
	toks := New("> >=", &bag).Tokens()
	if toks[0].Kind != token.GREATER {
		t.Fatalf("first token = %v, want GREATER", toks[0].Kind)
	}
	if toks[1].Kind != token.GREATER_EQUAL {
		t.Fatalf("second token = %v, want GREATER_EQUAL", toks[1].Kind)
	}
}

func TestNumberLiteralValue(t *testing.T) {
	var bag diag.Bag
	toks := New("3.25", &bag).Tokens()
	if got, ok := toks[0].Literal.(float64); !ok || got != 3.25 {
		t.Fatalf("Literal = %#v, want 3.25", toks[0].Literal)
	}
}

func TestStringLiteralStripsQuotes(t *testing.T) {
	var bag diag.Bag
	toks := New(`"hi there"`, &bag).Tokens()
	if got, ok := toks[0].Literal.(string); !ok || got != "hi there" {
		t.Fatalf("Literal = %#v, want \"hi there\"", toks[0].Literal)
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	var bag diag.Bag
	New(`"unterminated`, &bag).Tokens()
	if !bag.HadErrors() {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestUnknownCharacterIsErrorButLexingContinues(t *testing.T) {
	var bag diag.Bag
	toks := New("1 @ 2", &bag).Tokens()
	if !bag.HadErrors() {
		t.Fatal("expected an unknown-character error")
	}
	want := []token.Kind{token.NUMBER, token.NUMBER, token.END_OF_FILE}
	if !eq(kinds(toks), want) {
		t.Fatalf("Tokens = %v, want %v", kinds(toks), want)
	}
}

func TestLexemeRoundTrip(t *testing.T) {
	// Concatenating lexemes with intervening spaces re-lexes to the same
	// sequence of token kinds (comments/whitespace aren't emitted).
	src := "var x = 1 + 2; print x;"
	var bag1 diag.Bag
	first := New(src, &bag1).Tokens()

	var rebuilt string
	for i, tok := range first {
		if i > 0 {
			rebuilt += " "
		}
		rebuilt += tok.Lexeme
	}

	var bag2 diag.Bag
	second := New(rebuilt, &bag2).Tokens()

	if !eq(kinds(first), kinds(second)) {
		t.Fatalf("round trip mismatch: %v vs %v", kinds(first), kinds(second))
	}
}
