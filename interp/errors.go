package interp

import (
	"fmt"

	"loxgo/lexer"
)

// RuntimeError is the fourth and last of the pipeline's error kinds: a
// failure discovered only by actually running the program (a bad
// operand type, an undefined variable, a call to a non-callable, a
// wrong-arity call, a missing property). It carries the token or node
// responsible -- for Call/Get/Set errors, the callee's closing paren or
// the property name token, never a zero position -- so the diagnostic
// can point at the right place in the source.
type RuntimeError struct {
	Message string
	Lexeme  string
	Pos     lexer.Position
}

func (e *RuntimeError) Error() string { return e.String() }
func (e *RuntimeError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func runtimeErr(pos lexer.Position, lexeme, message string) *RuntimeError {
	return &RuntimeError{Message: message, Lexeme: lexeme, Pos: pos}
}
