// Command loxgo runs Lox source files or a REPL.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/kong"
	"github.com/chzyer/readline"

	"loxgo/interp"
	"loxgo/internal/diag"
	"loxgo/lexer"
	"loxgo/parser"
	"loxgo/resolver"
)

const (
	exitOK      = 0
	exitStatic  = 65
	exitRuntime = 70
)

// CLI's only subcommand, Run, is also its default: `loxgo <path>` is
// shorthand for `loxgo run <path>`, and `loxgo` alone starts a REPL.
var CLI struct {
	Run RunCmd `cmd:"" default:"withargs" help:"Run a Lox source file, or start a REPL if no path is given"`
}

// RunCmd runs Path, or starts a REPL when Path is empty.
type RunCmd struct {
	Path string `arg:"" optional:"" help:"Source file to run; omit for an interactive REPL"`
}

func (cmd *RunCmd) Run() error {
	if cmd.Path == "" {
		runREPL()
		return nil
	}
	src, err := ioutil.ReadFile(cmd.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loxgo: %s\n", err)
		os.Exit(exitRuntime)
	}
	os.Exit(runSource(string(src)))
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "loxgo: %s\n", err)
		os.Exit(exitRuntime)
	}
}

// runSource runs one complete program and returns the process exit
// code: 0 on success, 65 on a scan/parse/resolve error, 70 on a
// runtime error.
func runSource(src string) int {
	l := lexer.New(src)
	l.ScanTokens()
	if len(l.Errors) != 0 {
		for _, e := range l.Errors {
			diag.Report(os.Stderr, "Scan", e.Message, e.Lexeme, e.Pos)
		}
		return exitStatic
	}

	stmts, perr := parser.Parse(l.Tokens)
	if perr != nil {
		diag.Report(os.Stderr, "Parse", perr.Message, perr.Lexeme, perr.Pos)
		return exitStatic
	}

	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 0 {
		for _, e := range r.Errors {
			diag.Report(os.Stderr, "Resolve", e.Message, e.Lexeme, e.Pos)
		}
		return exitStatic
	}

	i := interp.New()
	if rerr := i.Interpret(stmts); rerr != nil {
		diag.Report(os.Stderr, "Runtime", rerr.Message, rerr.Lexeme, rerr.Pos)
		return exitRuntime
	}
	return exitOK
}

// runREPL reads one line at a time, resolving and interpreting it
// against the same resolver scope stack and runtime environment chain
// across lines, so a declaration in one line is visible to the next.
func runREPL() {
	rl, err := readline.New("> ")
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	r := resolver.New()
	i := interp.New()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if line == "" {
			continue
		}

		l := lexer.New(line)
		l.ScanTokens()
		if len(l.Errors) != 0 {
			for _, e := range l.Errors {
				diag.Report(os.Stderr, "Scan", e.Message, e.Lexeme, e.Pos)
			}
			continue
		}

		stmts, perr := parser.Parse(l.Tokens)
		if perr != nil {
			diag.Report(os.Stderr, "Parse", perr.Message, perr.Lexeme, perr.Pos)
			continue
		}

		r.Resolve(stmts)
		if len(r.Errors) != 0 {
			for _, e := range r.Errors {
				diag.Report(os.Stderr, "Resolve", e.Message, e.Lexeme, e.Pos)
			}
			r.Errors = nil
			continue
		}

		if rerr := i.Interpret(stmts); rerr != nil {
			diag.Report(os.Stderr, "Runtime", rerr.Message, rerr.Lexeme, rerr.Pos)
		}
	}
}
