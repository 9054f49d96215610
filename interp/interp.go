// Package interp runs a resolved statement list against a chain of
// Env scopes, dispatching on each statement and expression node to
// produce side effects (print, field mutation) and Literal values,
// with classes, instances, closures, and class-scoped `this`/`super`.
package interp

import (
	"fmt"

	"loxgo/lexer"
	"loxgo/parser"
)

// ctrl reports a non-local exit from a statement sequence -- currently
// only `return`. It is returned alongside error from every exec
// method, checked by every statement-sequence caller, rather than
// threaded through Literal as a sentinel value or unwound with
// panic/recover.
type ctrl struct {
	returning bool
	value     Literal
}

var noCtrl = ctrl{}

// Interp walks the resolved AST, evaluating expressions and executing
// statements in the current Env.
type Interp struct {
	globals *Env
	env     *Env
	Out     func(string) // Out receives each `print` statement's rendered line.
}

// New builds an interpreter with a fresh global environment seeded
// with the native functions.
func New() *Interp {
	globals := NewEnv(nil)
	i := &Interp{globals: globals, env: globals, Out: func(s string) { fmt.Println(s) }}
	registerNatives(globals)
	return i
}

// Globals exposes the outermost scope, which holds top-level
// declarations across successive Interpret calls on the same Interp.
func (i *Interp) Globals() *Env { return i.globals }

// Interpret runs stmts in the interpreter's current environment. A
// RuntimeError aborts the whole run and is returned to the caller;
// there is no recovery mid-program.
func (i *Interp) Interpret(stmts []parser.Stmt) *RuntimeError {
	for _, stmt := range stmts {
		c, err := i.exec(stmt)
		if err != nil {
			return err
		}
		if c.returning {
			return runtimeErr(lexer.Position{}, "", "Top level return")
		}
	}
	return nil
}

// ==========
// Statements
// ==========

func (i *Interp) exec(stmt parser.Stmt) (ctrl, *RuntimeError) {
	switch node := stmt.(type) {
	case *parser.ExprStmt:
		_, err := i.eval(node.Expr)
		return noCtrl, err
	case *parser.PrintStmt:
		v, err := i.eval(node.Expr)
		if err != nil {
			return noCtrl, err
		}
		i.Out(Display(v))
		return noCtrl, nil
	case *parser.VarStmt:
		return i.execVar(node)
	case *parser.BlockStmt:
		return i.execBlock(node.Stmts, NewEnv(i.env))
	case *parser.IfStmt:
		return i.execIf(node)
	case *parser.WhileStmt:
		return i.execWhile(node)
	case *parser.FunctionStmt:
		fn := &Function{Name: node.Name.Name, Decl: node, Closure: i.env}
		i.env.Define(node.Name.Name, fn)
		return noCtrl, nil
	case *parser.ReturnStmt:
		return i.execReturn(node)
	case *parser.ClassStmt:
		return i.execClass(node)
	default:
		panic(fmt.Sprintf("interp: unhandled statement %#v", stmt))
	}
}

func (i *Interp) execVar(node *parser.VarStmt) (ctrl, *RuntimeError) {
	var value Literal = NilValue
	if node.Init != nil {
		v, err := i.eval(node.Init)
		if err != nil {
			return noCtrl, err
		}
		value = v
	}
	i.env.Define(node.Name.Name, value)
	return noCtrl, nil
}

// execBlock runs stmts in env, restoring the interpreter's previous
// environment before returning -- including on early return/error, so
// a function that returns from inside nested blocks leaves the caller's
// environment untouched.
func (i *Interp) execBlock(stmts []parser.Stmt, env *Env) (ctrl, *RuntimeError) {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, stmt := range stmts {
		c, err := i.exec(stmt)
		if err != nil || c.returning {
			return c, err
		}
	}
	return noCtrl, nil
}

func (i *Interp) execIf(node *parser.IfStmt) (ctrl, *RuntimeError) {
	cond, err := i.eval(node.Cond)
	if err != nil {
		return noCtrl, err
	}
	if IsTruthy(cond) {
		return i.exec(node.Then)
	}
	if node.Else != nil {
		return i.exec(node.Else)
	}
	return noCtrl, nil
}

func (i *Interp) execWhile(node *parser.WhileStmt) (ctrl, *RuntimeError) {
	for {
		cond, err := i.eval(node.Cond)
		if err != nil {
			return noCtrl, err
		}
		if !IsTruthy(cond) {
			return noCtrl, nil
		}
		c, err := i.exec(node.Body)
		if err != nil || c.returning {
			return c, err
		}
	}
}

func (i *Interp) execReturn(node *parser.ReturnStmt) (ctrl, *RuntimeError) {
	if node.Value == nil {
		return ctrl{returning: true, value: NilValue}, nil
	}
	v, err := i.eval(node.Value)
	if err != nil {
		return noCtrl, err
	}
	return ctrl{returning: true, value: v}, nil
}

func (i *Interp) execClass(node *parser.ClassStmt) (ctrl, *RuntimeError) {
	var super *Class
	if node.Superclass != nil {
		v, err := i.eval(node.Superclass)
		if err != nil {
			return noCtrl, err
		}
		sc, ok := v.(*Class)
		if !ok {
			return noCtrl, runtimeErr(node.Superclass.Name.Pos, node.Superclass.Name.Name, "Superclass must be a class")
		}
		super = sc
	}

	i.env.Define(node.Name.Name, NilValue)

	env := i.env
	if super != nil {
		env = NewEnv(i.env)
		env.Define("super", super)
	}

	methods := map[string]*Function{}
	for _, method := range node.Methods {
		methods[method.Name.Name] = &Function{
			Name:          method.Name.Name,
			Decl:          method,
			Closure:       env,
			IsInitializer: method.Name.Name == "init",
		}
	}

	class := &Class{Name: node.Name.Name, Superclass: super, Methods: methods}
	i.env.Assign(node.Name.Name, class)
	return noCtrl, nil
}

// ===========
// Expressions
// ===========

func (i *Interp) eval(expr parser.Expr) (Literal, *RuntimeError) {
	switch node := expr.(type) {
	case *parser.LiteralExpr:
		return literalValue(node.Value), nil
	case *parser.GroupingExpr:
		return i.eval(node.Expr)
	case *parser.VariableExpr:
		return i.lookup(node.Loc, node.Name)
	case *parser.AssignExpr:
		return i.evalAssign(node)
	case *parser.UnaryExpr:
		return i.evalUnary(node)
	case *parser.BinaryExpr:
		return i.evalBinary(node)
	case *parser.LogicalExpr:
		return i.evalLogical(node)
	case *parser.CallExpr:
		return i.evalCall(node)
	case *parser.GetExpr:
		return i.evalGet(node)
	case *parser.SetExpr:
		return i.evalSet(node)
	case *parser.ThisExpr:
		return i.lookup(node.Loc, parser.PosString{Name: "this", Pos: node.Pos})
	case *parser.SuperExpr:
		return i.evalSuper(node)
	default:
		panic(fmt.Sprintf("interp: unhandled expression %#v", expr))
	}
}

func literalValue(v interface{}) Literal {
	switch v := v.(type) {
	case nil:
		return NilValue
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	default:
		panic(fmt.Sprintf("interp: unexpected literal value %#v", v))
	}
}

// lookup resolves name at the distance the resolver recorded, walking
// to the outermost scope for globals (loc == parser.GlobalLoc).
func (i *Interp) lookup(loc int, name parser.PosString) (Literal, *RuntimeError) {
	var env *Env
	if loc == parser.GlobalLoc {
		env = i.env.Outermost()
	} else {
		env = i.env.Ancestor(loc)
	}
	v, ok := env.Get(name.Name)
	if !ok {
		return nil, runtimeErr(name.Pos, name.Name, "Undefined variable '"+name.Name+"'")
	}
	return v, nil
}

func (i *Interp) evalAssign(node *parser.AssignExpr) (Literal, *RuntimeError) {
	v, err := i.eval(node.Value)
	if err != nil {
		return nil, err
	}
	var env *Env
	if node.Loc == parser.GlobalLoc {
		env = i.env.Outermost()
	} else {
		env = i.env.Ancestor(node.Loc)
	}
	if !env.Assign(node.Name.Name, v) {
		return nil, runtimeErr(node.Name.Pos, node.Name.Name, "Undefined variable '"+node.Name.Name+"'")
	}
	return v, nil
}

func (i *Interp) evalUnary(node *parser.UnaryExpr) (Literal, *RuntimeError) {
	right, err := i.eval(node.Right)
	if err != nil {
		return nil, err
	}
	switch node.Op.Type {
	case lexer.MINUS:
		n, ok := right.(Number)
		if !ok {
			return nil, runtimeErr(node.Op.Pos, node.Op.Lexeme, "Operand must be a number")
		}
		return -n, nil
	case lexer.BANG:
		return Bool(!IsTruthy(right)), nil
	default:
		panic("interp: unhandled unary operator " + node.Op.Lexeme)
	}
}

func (i *Interp) evalLogical(node *parser.LogicalExpr) (Literal, *RuntimeError) {
	left, err := i.eval(node.Left)
	if err != nil {
		return nil, err
	}
	switch node.Op.Type {
	case lexer.OR:
		if IsTruthy(left) {
			return left, nil
		}
	case lexer.AND:
		if !IsTruthy(left) {
			return left, nil
		}
	default:
		panic("interp: unhandled logical operator " + node.Op.Lexeme)
	}
	return i.eval(node.Right)
}

func (i *Interp) evalBinary(node *parser.BinaryExpr) (Literal, *RuntimeError) {
	left, err := i.eval(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op.Type {
	case lexer.PLUS:
		if ln, lok := left.(Number); lok {
			if rn, rok := right.(Number); rok {
				return ln + rn, nil
			}
		}
		if ls, lok := left.(String); lok {
			if rs, rok := right.(String); rok {
				return ls + rs, nil
			}
		}
		return nil, runtimeErr(node.Op.Pos, node.Op.Lexeme, "Operands must be two numbers or two strings")
	case lexer.MINUS, lexer.SLASH, lexer.STAR,
		lexer.GREATER, lexer.GREATER_EQUAL, lexer.LESS, lexer.LESS_EQUAL:
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, runtimeErr(node.Op.Pos, node.Op.Lexeme, "Operands must be numbers")
		}
		switch node.Op.Type {
		case lexer.MINUS:
			return ln - rn, nil
		case lexer.SLASH:
			return ln / rn, nil
		case lexer.STAR:
			return ln * rn, nil
		case lexer.GREATER:
			return Bool(ln > rn), nil
		case lexer.GREATER_EQUAL:
			return Bool(ln >= rn), nil
		case lexer.LESS:
			return Bool(ln < rn), nil
		case lexer.LESS_EQUAL:
			return Bool(ln <= rn), nil
		}
	case lexer.EQUAL_EQUAL:
		return Bool(Equal(left, right)), nil
	case lexer.BANG_EQUAL:
		return Bool(!Equal(left, right)), nil
	}
	panic("interp: unhandled binary operator " + node.Op.Lexeme)
}

func (i *Interp) evalCall(node *parser.CallExpr) (Literal, *RuntimeError) {
	calleeV, err := i.eval(node.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Literal, len(node.Args))
	for idx, arg := range node.Args {
		v, err := i.eval(arg)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return i.call(calleeV, args, node.Paren)
}

func (i *Interp) call(callee Literal, args []Literal, at lexer.Position) (Literal, *RuntimeError) {
	c, ok := callee.(callable)
	if !ok {
		return nil, runtimeErr(at, "", "Can only call functions and classes")
	}
	if len(args) != c.arity() {
		return nil, runtimeErr(at, "", fmt.Sprintf("Expected %d arguments but got %d", c.arity(), len(args)))
	}
	switch c := c.(type) {
	case *Function:
		return i.callFunction(c, args)
	case *NativeFunction:
		return c.Fn(i)
	case *Class:
		instance := NewInstance(c)
		if init := c.FindMethod("init"); init != nil {
			if _, err := i.callFunction(init.Bind(instance), args); err != nil {
				return nil, err
			}
		}
		return instance, nil
	default:
		panic("interp: unhandled callable type")
	}
}

func (i *Interp) callFunction(fn *Function, args []Literal) (Literal, *RuntimeError) {
	env := NewEnv(fn.Closure)
	for idx, param := range fn.Decl.Params {
		env.Define(param.Name, args[idx])
	}
	c, err := i.execBlock(fn.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if fn.IsInitializer {
		v, _ := fn.Closure.Get("this")
		return v, nil
	}
	if c.returning {
		return c.value, nil
	}
	return NilValue, nil
}

func (i *Interp) evalGet(node *parser.GetExpr) (Literal, *RuntimeError) {
	objV, err := i.eval(node.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := objV.(*Instance)
	if !ok {
		return nil, runtimeErr(node.Name.Pos, node.Name.Name, "Only instances have properties")
	}
	if v, ok := instance.Fields[node.Name.Name]; ok {
		return v, nil
	}
	if m := instance.Class.FindMethod(node.Name.Name); m != nil {
		return m.Bind(instance), nil
	}
	return nil, runtimeErr(node.Name.Pos, node.Name.Name, "Undefined property '"+node.Name.Name+"'")
}

func (i *Interp) evalSet(node *parser.SetExpr) (Literal, *RuntimeError) {
	objV, err := i.eval(node.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := objV.(*Instance)
	if !ok {
		return nil, runtimeErr(node.Name.Pos, node.Name.Name, "Only instances have fields")
	}
	v, err := i.eval(node.Value)
	if err != nil {
		return nil, err
	}
	instance.Fields[node.Name.Name] = v
	return v, nil
}

func (i *Interp) evalSuper(node *parser.SuperExpr) (Literal, *RuntimeError) {
	superV, err := i.lookup(node.Loc, parser.PosString{Name: "super", Pos: node.Pos})
	if err != nil {
		return nil, err
	}
	super := superV.(*Class)

	// "this" always lives exactly one scope nearer than "super", per the
	// resolver's class-scope layout (super scope, then this scope).
	thisV, err := i.lookup(node.Loc-1, parser.PosString{Name: "this", Pos: node.Pos})
	if err != nil {
		return nil, err
	}
	instance := thisV.(*Instance)

	method := super.FindMethod(node.Method.Name)
	if method == nil {
		return nil, runtimeErr(node.Method.Pos, node.Method.Name, "Undefined property '"+node.Method.Name+"'")
	}
	return method.Bind(instance), nil
}
