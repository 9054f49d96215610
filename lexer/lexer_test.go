package lexer_test

import (
	"testing"

	"loxgo/lexer"
)

func scan(t *testing.T, src string) *lexer.Lexer {
	l := lexer.New(src)
	l.ScanTokens()
	return l
}

func noErrors(t *testing.T, l *lexer.Lexer) bool {
	if len(l.Errors) != 0 {
		t.Errorf("got lexer errors:")
		for _, e := range l.Errors {
			t.Errorf("  %s", e.String())
		}
		return false
	}
	return true
}

func TestLexerValid(t *testing.T) {
	tests := []struct {
		input    string
		expected []lexer.TokenType
	}{
		{"", []lexer.TokenType{lexer.EOF}},
		{"( ) { } , . - + ; / *", []lexer.TokenType{
			lexer.LEFT_PAREN, lexer.RIGHT_PAREN, lexer.LEFT_BRACE, lexer.RIGHT_BRACE,
			lexer.COMMA, lexer.DOT, lexer.MINUS, lexer.PLUS, lexer.SEMICOLON,
			lexer.SLASH, lexer.STAR, lexer.EOF,
		}},
		{"! != = == < <= > >=", []lexer.TokenType{
			lexer.BANG, lexer.BANG_EQUAL, lexer.EQUAL, lexer.EQUAL_EQUAL,
			lexer.LESS, lexer.LESS_EQUAL, lexer.GREATER, lexer.GREATER_EQUAL, lexer.EOF,
		}},
		{`var x = "hi"; print x;`, []lexer.TokenType{
			lexer.VAR, lexer.IDENTIFIER, lexer.EQUAL, lexer.STRING, lexer.SEMICOLON,
			lexer.PRINT, lexer.IDENTIFIER, lexer.SEMICOLON, lexer.EOF,
		}},
		{"1 1.5 1.", []lexer.TokenType{
			lexer.NUMBER, lexer.NUMBER, lexer.NUMBER, lexer.DOT, lexer.EOF,
		}},
		{"// a comment\nand", []lexer.TokenType{lexer.AND, lexer.EOF}},
		{"class fun for if nil or return super this true false while else and",
			[]lexer.TokenType{
				lexer.CLASS, lexer.FUN, lexer.FOR, lexer.IF, lexer.NIL, lexer.OR,
				lexer.RETURN, lexer.SUPER, lexer.THIS, lexer.TRUE, lexer.FALSE,
				lexer.WHILE, lexer.ELSE, lexer.AND, lexer.EOF,
			}},
	}
	for i, test := range tests {
		l := scan(t, test.input)
		if !noErrors(t, l) {
			t.Errorf("tests[%d] (%q) failed", i, test.input)
			continue
		}
		if len(l.Tokens) != len(test.expected) {
			t.Errorf("tests[%d] (%q): expected %d tokens, got %d (%v)",
				i, test.input, len(test.expected), len(l.Tokens), l.Tokens)
			continue
		}
		for j, tok := range l.Tokens {
			if tok.Type != test.expected[j] {
				t.Errorf("tests[%d] (%q): token[%d] expected=%s got=%s",
					i, test.input, j, test.expected[j], tok.Type)
			}
		}
	}
}

func TestLexerNumberLiterals(t *testing.T) {
	l := scan(t, "3.14")
	if !noErrors(t, l) {
		return
	}
	if len(l.Tokens) != 2 || l.Tokens[0].Literal.(float64) != 3.14 {
		t.Errorf("expected a single NUMBER(3.14), got %v", l.Tokens)
	}
}

func TestLexerStringLiteral(t *testing.T) {
	l := scan(t, `"hello\nworld"`)
	if !noErrors(t, l) {
		return
	}
	// no escapes are supported: the backslash and 'n' are literal bytes.
	want := `hello\nworld`
	if l.Tokens[0].Literal.(string) != want {
		t.Errorf("expected %q, got %q", want, l.Tokens[0].Literal)
	}
}

func TestLexerMultilineString(t *testing.T) {
	l := scan(t, "\"line one\nline two\" true")
	if !noErrors(t, l) {
		return
	}
	if l.Tokens[1].Type != lexer.TRUE || l.Tokens[1].Pos.Line != 2 {
		t.Errorf("expected TRUE on line 2, got %+v", l.Tokens[1])
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := scan(t, `"never closes`)
	if len(l.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(l.Errors))
	}
	if l.Errors[0].Message != "Unterminated string" {
		t.Errorf("unexpected message: %s", l.Errors[0].Message)
	}
}

func TestLexerBadInputs(t *testing.T) {
	bad := []string{"@", "#", "`", "\x01"}
	for _, input := range bad {
		l := scan(t, input)
		if len(l.Errors) == 0 {
			t.Errorf("input %q: expected an error, got none", input)
		}
	}
}

func TestLexerTotality(t *testing.T) {
	// Scanner totality: scanning any input
	// either ends in exactly one EOF, or produces at least one error.
	inputs := []string{"", "1+1", "@@@", `"x`, "class A { fun f() {} }"}
	for _, input := range inputs {
		l := scan(t, input)
		if len(l.Errors) == 0 {
			if len(l.Tokens) == 0 || l.Tokens[len(l.Tokens)-1].Type != lexer.EOF {
				t.Errorf("input %q: expected trailing EOF, got %v", input, l.Tokens)
			}
			count := 0
			for _, tok := range l.Tokens {
				if tok.Type == lexer.EOF {
					count++
				}
			}
			if count != 1 {
				t.Errorf("input %q: expected exactly one EOF, got %d", input, count)
			}
		}
	}
}
