package parser

import (
	"fmt"

	"loxgo/lexer"
)

// Error is a parse failure. Parsing is fail-fast: the first Error aborts
// the whole Parse() call, carrying the offending token's lexeme and
// position (or "EOF" / the EOF position, at end of input).
type Error struct {
	Message string
	Lexeme  string
	Pos     lexer.Position
}

func (e *Error) Error() string { return e.String() }
func (e *Error) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}
