package parser

import (
	"bytes"
	"strconv"
	"strings"
)

// String renders the tree in a fully-parenthesised Lisp-like form, used by
// the parser's own tests to pin down precedence and associativity without
// depending on the evaluator.

func (node *ExprStmt) String() string { return node.Expr.String() + ";" }

func (node *VarStmt) String() string {
	var buf bytes.Buffer
	buf.WriteString("var ")
	buf.WriteString(node.Name.Name)
	if node.Init != nil {
		buf.WriteString(" = ")
		buf.WriteString(node.Init.String())
	}
	buf.WriteString(";")
	return buf.String()
}

func (node *PrintStmt) String() string { return "print " + node.Expr.String() + ";" }

func (node *BlockStmt) String() string {
	stmts := make([]string, len(node.Stmts))
	for i, s := range node.Stmts {
		stmts[i] = s.String()
	}
	return "{" + strings.Join(stmts, "") + "}"
}

func (node *IfStmt) String() string {
	s := "if (" + node.Cond.String() + ") " + node.Then.String()
	if node.Else != nil {
		s += " else " + node.Else.String()
	}
	return s
}

func (node *WhileStmt) String() string {
	return "while (" + node.Cond.String() + ") " + node.Body.String()
}

func (node *FunctionStmt) String() string {
	params := make([]string, len(node.Params))
	for i, p := range node.Params {
		params[i] = p.Name
	}
	body := make([]string, len(node.Body))
	for i, s := range node.Body {
		body[i] = s.String()
	}
	return "fun " + node.Name.Name + "(" + strings.Join(params, ", ") + ") {" +
		strings.Join(body, "") + "}"
}

func (node *ReturnStmt) String() string {
	if node.Value == nil {
		return "return;"
	}
	return "return " + node.Value.String() + ";"
}

func (node *ClassStmt) String() string {
	var buf bytes.Buffer
	buf.WriteString("class ")
	buf.WriteString(node.Name.Name)
	if node.Superclass != nil {
		buf.WriteString(" < ")
		buf.WriteString(node.Superclass.Name.Name)
	}
	buf.WriteString(" {")
	for _, m := range node.Methods {
		buf.WriteString(m.String())
	}
	buf.WriteString("}")
	return buf.String()
}

func (node *LiteralExpr) String() string {
	switch v := node.Value.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	}
	return "?"
}

func (node *VariableExpr) String() string { return node.Name.Name }

func (node *AssignExpr) String() string {
	return "(" + node.Name.Name + " = " + node.Value.String() + ")"
}

func (node *UnaryExpr) String() string {
	return "(" + node.Op.Lexeme + node.Right.String() + ")"
}

func (node *BinaryExpr) String() string {
	return "(" + node.Left.String() + " " + node.Op.Lexeme + " " + node.Right.String() + ")"
}

func (node *LogicalExpr) String() string {
	return "(" + node.Left.String() + " " + node.Op.Lexeme + " " + node.Right.String() + ")"
}

func (node *CallExpr) String() string {
	args := make([]string, len(node.Args))
	for i, a := range node.Args {
		args[i] = a.String()
	}
	return node.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

func (node *GroupingExpr) String() string { return "(" + node.Expr.String() + ")" }

func (node *GetExpr) String() string {
	return "(" + node.Object.String() + "." + node.Name.Name + ")"
}

func (node *SetExpr) String() string {
	return "(" + node.Object.String() + "." + node.Name.Name + " = " + node.Value.String() + ")"
}

func (node *ThisExpr) String() string { return "this" }

func (node *SuperExpr) String() string { return "(super." + node.Method.Name + ")" }
