// Package diag formats the four pipeline error kinds (scan, parse,
// resolve, runtime) into a uniform, colorized diagnostic block printed
// by the CLI driver.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"loxgo/lexer"
)

var headerColor = color.New(color.FgRed, color.Bold)

// Report prints a single diagnostic of the given kind ("Scan", "Parse",
// "Resolve", "Runtime") to w, red-bolding the header unless fatih/color's
// global NoColor is set. That default is derived from whether standard
// output is a terminal (and from NO_COLOR / TERM=dumb); w itself is not
// inspected.
func Report(w io.Writer, kind, message, lexeme string, pos lexer.Position) {
	header := fmt.Sprintf("%s Error - %s", kind, message)
	fmt.Fprintln(w, headerColor.Sprint(header))
	fmt.Fprintf(w, "Lexeme - %s\n", lexeme)
	fmt.Fprintf(w, "Position - (%d, %d)\n", pos.Line, pos.Column)
}
