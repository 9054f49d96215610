package interp

import (
	"fmt"
	"strconv"

	"loxgo/parser"
)

// Literal is a runtime value: Number, String, Bool, Nil, Function,
// NativeFunction, Class, or Instance.
type Literal interface {
	isLiteral()
}

type Number float64
type String string
type Bool bool

// Nil is the single nil value. NilValue is its only instance.
type Nil struct{}

var NilValue = Nil{}

func (Number) isLiteral() {}
func (String) isLiteral() {}
func (Bool) isLiteral()   {}
func (Nil) isLiteral()    {}

// Function is a user-defined `fun`, a method, or an initializer -- a
// closure pairing the declaration with the environment captured at the
// point the `fun`/method was declared.
type Function struct {
	Name          string
	Decl          *parser.FunctionStmt
	Closure       *Env
	IsInitializer bool
}

func (*Function) isLiteral() {}

func (f *Function) String() string {
	if f.Name == "" {
		return "<fn>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// Arity is the declared number of parameters.
func (f *Function) Arity() int { return len(f.Decl.Params) }

// Bind returns a copy of f whose closure additionally binds "this" to
// instance -- used when a method is looked up off an instance (Get) so
// the returned function value carries its receiver with it.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnv(f.Closure)
	env.Define("this", instance)
	return &Function{Name: f.Name, Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

// NativeFunction is a Go-implemented builtin, e.g. clock().
type NativeFunction struct {
	Name  string
	Arity int
	Fn    func(i *Interp) (Literal, *RuntimeError)
}

func (*NativeFunction) isLiteral() {}

func (n *NativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// Class is a class value: a name, an optional superclass, and its own
// (non-inherited) methods.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (*Class) isLiteral() {}

func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }

// FindMethod looks up name on c, walking the superclass chain.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

// Arity is the initializer's arity, or 0 if the class has none.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Instance is an instance of a Class with its own mutable field map.
// Instance is itself a pointer type, so its Fields map is naturally
// shared through every reference to the same Instance.
type Instance struct {
	Class  *Class
	Fields map[string]Literal
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: map[string]Literal{}}
}

func (*Instance) isLiteral() {}

func (inst *Instance) String() string { return fmt.Sprintf("<instance %s>", inst.Class.Name) }

// callable is implemented by every Literal that Call() can invoke.
type callable interface {
	Literal
	arity() int
}

func (f *Function) arity() int       { return f.Arity() }
func (n *NativeFunction) arity() int { return n.Arity }
func (c *Class) arity() int          { return c.Arity() }

// IsTruthy reports Lox truthiness: false and nil are falsy, everything
// else (including 0 and "") is truthy.
func IsTruthy(v Literal) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal implements Lox's equality rule: structural for
// number/string/bool/nil, reference identity for functions/classes,
// and never-equal for instances.
func Equal(a, b Literal) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case String:
		bs, ok := b.(String)
		return ok && a == bs
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case *Function:
		bf, ok := b.(*Function)
		return ok && a == bf
	case *NativeFunction:
		bn, ok := b.(*NativeFunction)
		return ok && a == bn
	case *Class:
		bc, ok := b.(*Class)
		return ok && a == bc
	case *Instance:
		return false
	}
	return false
}

// Display renders v the way `print` does.
func Display(v Literal) string {
	switch v := v.(type) {
	case Nil:
		return "nil"
	case Bool:
		if v {
			return "true"
		}
		return "false"
	case Number:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case String:
		return string(v)
	case *Function:
		return v.String()
	case *NativeFunction:
		return v.String()
	case *Class:
		return v.String()
	case *Instance:
		return v.String()
	}
	return fmt.Sprintf("%v", v)
}
