package interp_test

import (
	"strings"
	"testing"

	"loxgo/interp"
	"loxgo/lexer"
	"loxgo/parser"
	"loxgo/resolver"
)

func run(t *testing.T, src string) (string, *interp.RuntimeError) {
	l := lexer.New(src)
	l.ScanTokens()
	if len(l.Errors) != 0 {
		t.Fatalf("lexer errors: %v", l.Errors)
	}
	stmts, perr := parser.Parse(l.Tokens)
	if perr != nil {
		t.Fatalf("parser error: %s", perr)
	}
	r := resolver.New()
	r.Resolve(stmts)
	if len(r.Errors) != 0 {
		t.Fatalf("resolver errors: %v", r.Errors)
	}
	var out []string
	i := interp.New()
	i.Out = func(s string) { out = append(out, s) }
	err := i.Interpret(stmts)
	return strings.Join(out, "\n"), err
}

func TestInterpClosureCapturesOwnEnvironment(t *testing.T) {
	out, err := run(t, `
fun makeCounter() {
  var count = 0;
  fun counter() {
    count = count + 1;
    print count;
  }
  return counter;
}
var counter = makeCounter();
counter();
counter();
`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	if out != "1\n2" {
		t.Errorf("expected 1\\n2, got %q", out)
	}
}

func TestInterpShadowingPrintsEnclosingValue(t *testing.T) {
	out, err := run(t, `
var a = "global";
{
  fun show() { print a; }
  show();
  var a = "local";
  show();
}
`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	if out != "global\nglobal" {
		t.Errorf("expected both calls to print the global, got %q", out)
	}
}

func TestInterpLogicalShortCircuit(t *testing.T) {
	out, err := run(t, `
fun sideEffect(v) { print v; return v; }
print "hi" or sideEffect("never printed");
print nil and sideEffect("never printed either");
`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	if out != "hi\nnil" {
		t.Errorf("expected short-circuited output, got %q", out)
	}
}

func TestInterpInitReturnsThis(t *testing.T) {
	out, err := run(t, `
class A {
  init() {
    this.x = 1;
    return;
  }
}
print A().x;
`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	if out != "1" {
		t.Errorf("expected 1, got %q", out)
	}
}

func TestInterpInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
class A {
  greet() { print "a"; }
}
class B < A {
  greet() {
    super.greet();
    print "b";
  }
}
B().greet();
`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	if out != "a\nb" {
		t.Errorf("expected a\\nb, got %q", out)
	}
}

func TestInterpArityMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `
fun f(a, b) { return a + b; }
f(1);
`)
	if err == nil {
		t.Fatal("expected a runtime error for wrong arity")
	}
}

func TestInterpTruthiness(t *testing.T) {
	out, err := run(t, `
if (0) { print "zero is truthy"; } else { print "zero is falsy"; }
if ("") { print "empty string is truthy"; } else { print "empty string is falsy"; }
if (nil) { print "nil is truthy"; } else { print "nil is falsy"; }
`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	want := "zero is truthy\nempty string is truthy\nnil is falsy"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestInterpForDesugaring(t *testing.T) {
	out, err := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	if out != "0\n1\n2" {
		t.Errorf("expected 0\\n1\\n2, got %q", out)
	}
}

func TestInterpUndefinedVariableIsRuntimeError(t *testing.T) {
	_, err := run(t, `print undefined;`)
	if err == nil {
		t.Fatal("expected a runtime error")
	}
}

func TestInterpStringNumberConcatenationIsRejected(t *testing.T) {
	_, err := run(t, `print "1" + 1;`)
	if err == nil {
		t.Fatal("expected a runtime error for mixed-type +")
	}
}

func TestInterpInstanceEqualityIsNeverEqual(t *testing.T) {
	out, err := run(t, `
class A {}
var a = A();
print a == a;
`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %s", err)
	}
	if out != "false" {
		t.Errorf("expected instances to never compare equal, even to themselves, got %q", out)
	}
}
