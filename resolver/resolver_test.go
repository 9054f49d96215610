package resolver_test

import (
	"testing"

	"loxgo/lexer"
	"loxgo/parser"
	"loxgo/resolver"
)

func parse(t *testing.T, src string) []parser.Stmt {
	l := lexer.New(src)
	l.ScanTokens()
	if len(l.Errors) != 0 {
		t.Fatalf("lexer errors: %v", l.Errors)
	}
	stmts, err := parser.Parse(l.Tokens)
	if err != nil {
		t.Fatalf("parser error: %s", err)
	}
	return stmts
}

func TestResolverLocalFunctionRecursion(t *testing.T) {
	// a locally-declared function may refer to itself by name; the
	// reference inside its own body is one scope further out than a
	// sibling call right after the declaration.
	stmts := parse(t, `
{
  fun f(x) { f(x + 1); return x; }
  f(1);
}
`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	block := stmts[0].(*parser.BlockStmt)
	fn := block.Stmts[0].(*parser.FunctionStmt)
	innerCall := fn.Body[0].(*parser.ExprStmt).Expr.(*parser.CallExpr)
	innerRef := innerCall.Callee.(*parser.VariableExpr)
	if innerRef.Loc != 1 {
		t.Errorf("expected f inside its own body to resolve at depth 1, got %d", innerRef.Loc)
	}
	outerCall := block.Stmts[1].(*parser.ExprStmt).Expr.(*parser.CallExpr)
	outerRef := outerCall.Callee.(*parser.VariableExpr)
	if outerRef.Loc != 0 {
		t.Errorf("expected f right after its declaration to resolve at depth 0, got %d", outerRef.Loc)
	}
}

func TestResolverTopLevelFunctionIsGlobal(t *testing.T) {
	stmts := parse(t, `
fun f(x) { f(x + 1); return x; }
f(1);
`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	fn := stmts[0].(*parser.FunctionStmt)
	innerCall := fn.Body[0].(*parser.ExprStmt).Expr.(*parser.CallExpr)
	innerRef := innerCall.Callee.(*parser.VariableExpr)
	if innerRef.Loc != parser.GlobalLoc {
		t.Errorf("expected f inside its own body to resolve as global, got %d", innerRef.Loc)
	}
	outerCall := stmts[1].(*parser.ExprStmt).Expr.(*parser.CallExpr)
	outerRef := outerCall.Callee.(*parser.VariableExpr)
	if outerRef.Loc != parser.GlobalLoc {
		t.Errorf("expected f at top level to resolve as global, got %d", outerRef.Loc)
	}
}

func TestResolverShadowing(t *testing.T) {
	// Lexical scoping means `show` always prints the `a` that was in
	// scope when it closed over its environment, not whatever `a` is in
	// scope when it's called.
	stmts := parse(t, `
var a = "global";
{
  fun show() { print a; }
  show();
  var a = "local";
  show();
}
`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	block := stmts[1].(*parser.BlockStmt)
	show := block.Stmts[0].(*parser.FunctionStmt)
	printStmt := show.Body[0].(*parser.PrintStmt)
	ref := printStmt.Expr.(*parser.VariableExpr)
	if ref.Loc != parser.GlobalLoc {
		t.Errorf("expected `a` inside show() to resolve as global, got %d", ref.Loc)
	}
}

func TestResolverVariableAlreadyDeclared(t *testing.T) {
	stmts := parse(t, `{ var a = 1; var a = 2; }`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 1 || r.Errors[0].Message != "Variable already declared" {
		t.Fatalf("expected exactly one 'Variable already declared', got %v", r.Errors)
	}
}

func TestResolverReadOwnInitializer(t *testing.T) {
	stmts := parse(t, `{ var a = a; }`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 1 || r.Errors[0].Message != "Can't read local variable in its own initializer" {
		t.Fatalf("expected the self-reference error, got %v", r.Errors)
	}
}

func TestResolverTopLevelReturn(t *testing.T) {
	stmts := parse(t, `return 1;`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 1 || r.Errors[0].Message != "Top level return" {
		t.Fatalf("expected 'Top level return', got %v", r.Errors)
	}
}

func TestResolverReturnValueFromInit(t *testing.T) {
	stmts := parse(t, `class A { init() { return 2; } }`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 1 || r.Errors[0].Message != "Can't return value from init" {
		t.Fatalf("expected \"Can't return value from init\", got %v", r.Errors)
	}
}

func TestResolverBareReturnFromInitIsLegal(t *testing.T) {
	stmts := parse(t, `class A { init() { return; } }`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
}

func TestResolverThisOutOfClass(t *testing.T) {
	stmts := parse(t, `print this;`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 1 || r.Errors[0].Message != "Used `this` out of class" {
		t.Fatalf("expected this-out-of-class error, got %v", r.Errors)
	}
}

func TestResolverSuperWithoutSuperclass(t *testing.T) {
	stmts := parse(t, `class A { f() { super.f(); } }`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 1 || r.Errors[0].Message != "Used `super` in class without superclass" {
		t.Fatalf("expected super-without-superclass error, got %v", r.Errors)
	}
}

func TestResolverSelfInheritance(t *testing.T) {
	// Self-inheritance is a ResolveError, not a runtime crash.
	stmts := parse(t, `class A < A {}`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 1 || r.Errors[0].Message != "Can't inherit from self" {
		t.Fatalf("expected self-inheritance error, got %v", r.Errors)
	}
}

func TestResolverSuperInSubclassIsLegal(t *testing.T) {
	stmts := parse(t, `
class A { greet() { print "a"; } }
class B < A { greet() { super.greet(); print "b"; } }
`)
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
}
