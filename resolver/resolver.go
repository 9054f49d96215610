// Package resolver implements the static pre-pass that binds every
// variable reference to the lexical distance at which its declaration
// lives. It is a single pre-order walk of the statement list, recording
// distances for local variables, `this`, and `super` and flagging
// illegal uses of `return`, `this`, `super`, and self-referential
// initializers before the program ever runs.
package resolver

import (
	"fmt"

	"loxgo/lexer"
	"loxgo/parser"
)

// Error is a static-analysis failure: an illegal use of a name, `this`,
// `super`, or `return` that the resolver can prove wrong without running
// the program.
type Error struct {
	Message string
	Lexeme  string
	Pos     lexer.Position
}

func (e *Error) Error() string { return e.String() }
func (e *Error) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// FunctionKind controls the legality of `return` inside the body
// currently being resolved.
type FunctionKind int

const (
	FnNone FunctionKind = iota
	FnFunction
	FnMethod
	FnInitializer
)

// ClassKind controls the legality of `this` and `super`.
type ClassKind int

const (
	ClassNone ClassKind = iota
	ClassClass
	ClassSubclass
)

// Scope maps a name to whether it has finished initializing: false while
// a `var` declaration's own initializer is being resolved, true once the
// declaration completes.
type Scope map[string]bool

// Resolver walks a statement list exactly once, annotating Variable,
// Assignment, This, and Super nodes in place (via parser.Resolvable)
// with their lexical distance, and collecting any static errors found
// along the way.
type Resolver struct {
	scopes       []Scope
	functionKind FunctionKind
	classKind    ClassKind
	Errors       []*Error
}

func New() *Resolver { return &Resolver{} }

// Resolve resolves every statement in stmts, in order. It does not abort
// on the first error: it keeps walking so a single Resolve() call can
// surface more than one problem.
func (r *Resolver) Resolve(stmts []parser.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *Resolver) push() { r.scopes = append(r.scopes, Scope{}) }
func (r *Resolver) pop()  { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) curr() Scope {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) err(tok lexer.Token, message string) {
	r.Errors = append(r.Errors, &Error{Message: message, Lexeme: tok.Lexeme, Pos: tok.Pos})
}

func (r *Resolver) errAt(pos lexer.Position, lexeme, message string) {
	r.Errors = append(r.Errors, &Error{Message: message, Lexeme: lexeme, Pos: pos})
}

// declare records that `name` exists in the current scope but has not
// finished initializing yet. A no-op at global scope (scopes is empty):
// globals are never tracked by the resolver, only by the runtime
// environment.
func (r *Resolver) declare(name string, tok lexer.Token) {
	scope := r.curr()
	if scope == nil {
		return
	}
	if _, ok := scope[name]; ok {
		r.err(tok, "Variable already declared")
	}
	scope[name] = false
}

func (r *Resolver) define(name string) {
	scope := r.curr()
	if scope == nil {
		return
	}
	scope[name] = true
}

// resolveLocal searches the scope stack from innermost outward for name.
// If found at depth d, it records that distance on node. If not found
// anywhere, node is left alone -- it refers to a global, resolved at
// runtime by walking to the outermost environment.
func (r *Resolver) resolveLocal(node parser.Resolvable, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			node.AddLocation(len(r.scopes) - 1 - i)
			return
		}
	}
}

// ==========
// Statements
// ==========

func (r *Resolver) resolveStmt(stmt parser.Stmt) {
	switch node := stmt.(type) {
	case *parser.ExprStmt:
		r.resolveExpr(node.Expr)
	case *parser.VarStmt:
		r.resolveVar(node)
	case *parser.PrintStmt:
		r.resolveExpr(node.Expr)
	case *parser.BlockStmt:
		r.push()
		r.Resolve(node.Stmts)
		r.pop()
	case *parser.IfStmt:
		r.resolveExpr(node.Cond)
		r.resolveStmt(node.Then)
		if node.Else != nil {
			r.resolveStmt(node.Else)
		}
	case *parser.WhileStmt:
		r.resolveExpr(node.Cond)
		r.resolveStmt(node.Body)
	case *parser.FunctionStmt:
		r.declare(node.Name.Name, tokenOf(node.Name))
		r.define(node.Name.Name)
		r.resolveFunction(node, FnFunction)
	case *parser.ReturnStmt:
		r.resolveReturn(node)
	case *parser.ClassStmt:
		r.resolveClass(node)
	default:
		panic(fmt.Sprintf("resolver: unhandled statement %#v", stmt))
	}
}

func (r *Resolver) resolveVar(node *parser.VarStmt) {
	tok := tokenOf(node.Name)
	r.declare(node.Name.Name, tok)
	if node.Init != nil {
		r.resolveExpr(node.Init)
	}
	r.define(node.Name.Name)
}

func (r *Resolver) resolveReturn(node *parser.ReturnStmt) {
	if r.functionKind == FnNone {
		r.errAt(node.Keyword, "return", "Top level return")
	}
	if node.Value != nil {
		if r.functionKind == FnInitializer {
			r.errAt(node.Keyword, "return", "Can't return value from init")
		}
		r.resolveExpr(node.Value)
	}
}

// resolveFunction resolves a function (or method) body in its own scope
// containing the declared parameters, under the given FunctionKind.
func (r *Resolver) resolveFunction(node *parser.FunctionStmt, kind FunctionKind) {
	enclosing := r.functionKind
	r.functionKind = kind
	r.push()
	for _, param := range node.Params {
		tok := tokenOf(param)
		r.declare(param.Name, tok)
		r.define(param.Name)
	}
	r.Resolve(node.Body)
	r.pop()
	r.functionKind = enclosing
}

func (r *Resolver) resolveClass(node *parser.ClassStmt) {
	nameTok := tokenOf(node.Name)
	r.declare(node.Name.Name, nameTok)
	r.define(node.Name.Name)

	enclosingClass := r.classKind
	r.classKind = ClassClass

	if node.Superclass != nil {
		if node.Superclass.Name.Name == node.Name.Name {
			r.errAt(node.Superclass.Name.Pos, node.Superclass.Name.Name, "Can't inherit from self")
		}
		r.resolveExpr(node.Superclass)
		r.classKind = ClassSubclass
		r.push()
		r.curr()["super"] = true
	}

	r.push()
	r.curr()["this"] = true

	for _, method := range node.Methods {
		kind := FnMethod
		if method.Name.Name == "init" {
			kind = FnInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.pop() // the "this" scope
	if node.Superclass != nil {
		r.pop() // the "super" scope
	}
	r.classKind = enclosingClass
}

// ===========
// Expressions
// ===========

func (r *Resolver) resolveExpr(expr parser.Expr) {
	switch node := expr.(type) {
	case *parser.LiteralExpr:
		// nothing to resolve.
	case *parser.VariableExpr:
		r.resolveVariable(node)
	case *parser.AssignExpr:
		r.resolveExpr(node.Value)
		r.resolveLocal(node, node.Name.Name)
	case *parser.UnaryExpr:
		r.resolveExpr(node.Right)
	case *parser.BinaryExpr:
		r.resolveExpr(node.Left)
		r.resolveExpr(node.Right)
	case *parser.LogicalExpr:
		r.resolveExpr(node.Left)
		r.resolveExpr(node.Right)
	case *parser.CallExpr:
		r.resolveExpr(node.Callee)
		for _, arg := range node.Args {
			r.resolveExpr(arg)
		}
	case *parser.GroupingExpr:
		r.resolveExpr(node.Expr)
	case *parser.GetExpr:
		r.resolveExpr(node.Object)
	case *parser.SetExpr:
		r.resolveExpr(node.Value)
		r.resolveExpr(node.Object)
	case *parser.ThisExpr:
		r.resolveThis(node)
	case *parser.SuperExpr:
		r.resolveSuper(node)
	default:
		panic(fmt.Sprintf("resolver: unhandled expression %#v", expr))
	}
}

func (r *Resolver) resolveVariable(node *parser.VariableExpr) {
	if scope := r.curr(); scope != nil {
		if initialised, ok := scope[node.Name.Name]; ok && !initialised {
			r.errAt(node.Name.Pos, node.Name.Name, "Can't read local variable in its own initializer")
			return
		}
	}
	r.resolveLocal(node, node.Name.Name)
}

func (r *Resolver) resolveThis(node *parser.ThisExpr) {
	if r.classKind == ClassNone {
		r.errAt(node.Pos, "this", "Used `this` out of class")
		return
	}
	r.resolveLocal(node, "this")
}

func (r *Resolver) resolveSuper(node *parser.SuperExpr) {
	switch r.classKind {
	case ClassNone:
		r.errAt(node.Pos, "super", "Used `super` out of class")
		return
	case ClassClass:
		r.errAt(node.Pos, "super", "Used `super` in class without superclass")
		return
	}
	r.resolveLocal(node, "super")
}

func tokenOf(ps parser.PosString) lexer.Token {
	return lexer.Token{Type: lexer.IDENTIFIER, Lexeme: ps.Name, Pos: ps.Pos}
}
