package parser

import "loxgo/lexer"

// Precedence levels, low to high:
// assignment → or → and → equality → comparison → term →
// factor → unary → call → primary.
const (
	PREC_LOWEST = iota
	PREC_ASSIGN // =
	PREC_OR     // or
	PREC_AND    // and
	PREC_EQ     // == !=
	PREC_CMP    // < <= > >=
	PREC_TERM   // + -
	PREC_FACTOR // * /
	PREC_UNARY  // ! -
	PREC_CALL   // () .
)

const maxArgs = 255

type (
	unaryParseFn  func() Expr
	binaryParseFn func(Expr) Expr
)

// Parser is a recursive-descent parser with a Pratt-style precedence
// table for expressions.
type Parser struct {
	tokens []lexer.Token
	curr   int
	Errors []*Error

	unaryParsers  map[lexer.TokenType]unaryParseFn
	binaryParsers map[lexer.TokenType]binaryParseFn
	precedences   map[lexer.TokenType]int
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens}
	p.unaryParsers = map[lexer.TokenType]unaryParseFn{
		lexer.LEFT_PAREN: p.grouping,
		lexer.IDENTIFIER: p.identifier,
		lexer.NUMBER:     p.literal,
		lexer.STRING:     p.literal,
		lexer.TRUE:       p.literal,
		lexer.FALSE:      p.literal,
		lexer.NIL:        p.literal,
		lexer.BANG:       p.unary,
		lexer.MINUS:      p.unary,
		lexer.THIS:       p.this,
		lexer.SUPER:      p.super,
	}
	// every entry here has a matching entry in precedences.
	p.binaryParsers = map[lexer.TokenType]binaryParseFn{
		lexer.EQUAL:        p.assign,
		lexer.OR:           p.or,
		lexer.AND:          p.and,
		lexer.EQUAL_EQUAL:  p.binary,
		lexer.BANG_EQUAL:   p.binary,
		lexer.GREATER:      p.binary,
		lexer.GREATER_EQUAL: p.binary,
		lexer.LESS:         p.binary,
		lexer.LESS_EQUAL:   p.binary,
		lexer.PLUS:         p.binary,
		lexer.MINUS:        p.binary,
		lexer.STAR:         p.binary,
		lexer.SLASH:        p.binary,
		lexer.DOT:          p.get,
		lexer.LEFT_PAREN:   p.call,
	}
	p.precedences = map[lexer.TokenType]int{
		lexer.EQUAL:        PREC_ASSIGN,
		lexer.OR:           PREC_OR,
		lexer.AND:          PREC_AND,
		lexer.EQUAL_EQUAL:  PREC_EQ,
		lexer.BANG_EQUAL:   PREC_EQ,
		lexer.GREATER:      PREC_CMP,
		lexer.GREATER_EQUAL: PREC_CMP,
		lexer.LESS:           PREC_CMP,
		lexer.LESS_EQUAL:     PREC_CMP,
		lexer.PLUS:           PREC_TERM,
		lexer.MINUS:          PREC_TERM,
		lexer.STAR:           PREC_FACTOR,
		lexer.SLASH:          PREC_FACTOR,
		lexer.DOT:            PREC_CALL,
		lexer.LEFT_PAREN:     PREC_CALL,
	}
	return p
}

// =====
// utils
// =====

func (p *Parser) consume() lexer.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.curr++
	}
	return tok
}

func (p *Parser) previous() lexer.Token { return p.tokens[p.curr-1] }
func (p *Parser) peek() lexer.Token     { return p.tokens[p.curr] }
func (p *Parser) isAtEnd() bool         { return p.peek().Type == lexer.EOF }

func (p *Parser) check(t lexer.TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == t
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.consume()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType, msg string) lexer.Token {
	if !p.check(t) {
		p.fail(msg)
	}
	return p.consume()
}

func (p *Parser) fail(msg string) {
	tok := p.peek()
	err := &Error{Message: msg, Lexeme: tok.Lexeme, Pos: tok.Pos}
	if tok.Type == lexer.EOF {
		err.Lexeme = "EOF"
	}
	p.Errors = append(p.Errors, err)
	panic(err)
}

// ===========
// entry point
// ===========

// Parse parses the whole token stream into a flat statement list.
// Parsing is fail-fast: the first Error aborts the call and is
// returned; there is no error-synchronization/resync loop (see
// DESIGN.md).
func Parse(tokens []lexer.Token) (stmts []Stmt, err *Error) {
	p := New(tokens)
	defer func() {
		if rv := recover(); rv != nil {
			if pe, ok := rv.(*Error); ok {
				err = pe
				return
			}
			panic(rv)
		}
	}()
	for !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	return stmts, nil
}

// =================
// statement parsing
// =================

func (p *Parser) declaration() Stmt {
	switch {
	case p.match(lexer.VAR):
		return p.varDecl()
	case p.match(lexer.FUN):
		return p.function("function")
	case p.match(lexer.CLASS):
		return p.classDecl()
	}
	return p.statement()
}

func (p *Parser) statement() Stmt {
	switch {
	case p.match(lexer.FOR):
		return p.forStmt()
	case p.match(lexer.WHILE):
		return p.whileStmt()
	case p.match(lexer.IF):
		return p.ifStmt()
	case p.match(lexer.PRINT):
		return p.printStmt()
	case p.match(lexer.RETURN):
		return p.returnStmt()
	case p.check(lexer.LEFT_BRACE):
		return p.blockStmt()
	}
	return p.exprStmt()
}

func (p *Parser) varDecl() Stmt {
	name := p.expectIdent("Expected var name")
	var init Expr
	if p.match(lexer.EQUAL) {
		init = p.expression()
	}
	p.expect(lexer.SEMICOLON, "Expected ';'")
	return &VarStmt{Name: name, Init: init}
}

func (p *Parser) printStmt() Stmt {
	keyword := p.previous().Pos
	value := p.expression()
	p.expect(lexer.SEMICOLON, "Expected ';'")
	return &PrintStmt{Keyword: keyword, Expr: value}
}

func (p *Parser) returnStmt() Stmt {
	keyword := p.previous().Pos
	var value Expr
	if !p.check(lexer.SEMICOLON) {
		value = p.expression()
	}
	p.expect(lexer.SEMICOLON, "Expected ';'")
	return &ReturnStmt{Keyword: keyword, Value: value}
}

func (p *Parser) blockStmt() Stmt {
	p.consume() // '{'
	stmts := []Stmt{}
	for !p.isAtEnd() && !p.check(lexer.RIGHT_BRACE) {
		stmts = append(stmts, p.declaration())
	}
	p.expect(lexer.RIGHT_BRACE, "Expected '}'")
	return &BlockStmt{Stmts: stmts}
}

func (p *Parser) ifStmt() Stmt {
	p.expect(lexer.LEFT_PAREN, "Expected '('")
	cond := p.expression()
	p.expect(lexer.RIGHT_PAREN, "Expected ')'")
	then := p.statement()
	var elseStmt Stmt
	if p.match(lexer.ELSE) {
		elseStmt = p.statement()
	}
	return &IfStmt{Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) whileStmt() Stmt {
	p.expect(lexer.LEFT_PAREN, "Expected '('")
	cond := p.expression()
	p.expect(lexer.RIGHT_PAREN, "Expected ')'")
	body := p.statement()
	return &WhileStmt{Cond: cond, Body: body}
}

// forStmt desugars "for (init; cond; inc) body" into
// "{ init; while (cond) { body; inc; } }". A missing cond becomes the
// literal `true`; a missing init/inc is simply omitted.
func (p *Parser) forStmt() Stmt {
	p.expect(lexer.LEFT_PAREN, "Expected '('")

	var init Stmt
	if !p.check(lexer.SEMICOLON) {
		if p.match(lexer.VAR) {
			init = p.varDecl()
		} else {
			init = p.exprStmt()
		}
	} else {
		p.consume() // the ';' terminating an empty init clause
	}

	var cond Expr
	if !p.check(lexer.SEMICOLON) {
		cond = p.expression()
	} else {
		cond = &LiteralExpr{Value: true, Pos: p.peek().Pos}
	}
	p.expect(lexer.SEMICOLON, "Expected ';'")

	var inc Expr
	if !p.check(lexer.RIGHT_PAREN) {
		inc = p.expression()
	}
	p.expect(lexer.RIGHT_PAREN, "Expected ')'")

	body := p.statement()
	if inc != nil {
		body = &BlockStmt{Stmts: []Stmt{body, &ExprStmt{Expr: inc}}}
	}
	loop := Stmt(&WhileStmt{Cond: cond, Body: body})
	if init != nil {
		loop = &BlockStmt{Stmts: []Stmt{init, loop}}
	}
	return loop
}

func (p *Parser) exprStmt() Stmt {
	expr := p.expression()
	p.expect(lexer.SEMICOLON, "Expected ';'")
	return &ExprStmt{Expr: expr}
}

func (p *Parser) function(kind string) *FunctionStmt {
	name := p.expectIdent("Expected " + kind + " name")
	p.expect(lexer.LEFT_PAREN, "Expected '('")
	params := []PosString{}
	if !p.check(lexer.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.fail(">= 255 params")
			}
			params = append(params, p.expectIdent("Expected parameter name"))
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	p.expect(lexer.RIGHT_PAREN, "Expected ')'")
	if !p.check(lexer.LEFT_BRACE) {
		p.fail("Expected '{'")
	}
	body := p.blockStmt().(*BlockStmt).Stmts
	return &FunctionStmt{Name: name, Params: params, Body: body}
}

func (p *Parser) classDecl() Stmt {
	name := p.expectIdent("Expected class name")
	var super *VariableExpr
	if p.match(lexer.LESS) {
		superName := p.expectIdent("Expected superclass name")
		super = &VariableExpr{Name: superName, Loc: GlobalLoc}
	}
	p.expect(lexer.LEFT_BRACE, "Expected '{'")
	methods := []*FunctionStmt{}
	for !p.isAtEnd() && !p.check(lexer.RIGHT_BRACE) {
		methods = append(methods, p.function("method"))
	}
	p.expect(lexer.RIGHT_BRACE, "Expected '}'")
	return &ClassStmt{Name: name, Superclass: super, Methods: methods}
}

func (p *Parser) expectIdent(msg string) PosString {
	tok := p.expect(lexer.IDENTIFIER, msg)
	return PosString{Name: tok.Lexeme, Pos: tok.Pos}
}

// ==================
// expression parsing
// ==================

func (p *Parser) expression() Expr { return p.precedence(PREC_LOWEST) }

func (p *Parser) precedence(prec int) Expr {
	unary, ok := p.unaryParsers[p.peek().Type]
	if !ok {
		p.fail("Expected expr")
	}
	expr := unary()
	for prec < p.peekPrecedence() {
		expr = p.binaryParsers[p.peek().Type](expr)
	}
	return expr
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := p.precedences[p.peek().Type]; ok {
		return prec
	}
	return PREC_LOWEST
}

func (p *Parser) grouping() Expr {
	p.consume() // '('
	expr := p.expression()
	p.expect(lexer.RIGHT_PAREN, "Expected ')'")
	return &GroupingExpr{Expr: expr}
}

func (p *Parser) identifier() Expr {
	tok := p.consume()
	return &VariableExpr{Name: PosString{Name: tok.Lexeme, Pos: tok.Pos}, Loc: GlobalLoc}
}

func (p *Parser) literal() Expr {
	tok := p.consume()
	switch tok.Type {
	case lexer.NUMBER:
		return &LiteralExpr{Value: tok.Literal.(float64), Pos: tok.Pos}
	case lexer.STRING:
		return &LiteralExpr{Value: tok.Literal.(string), Pos: tok.Pos}
	case lexer.TRUE:
		return &LiteralExpr{Value: true, Pos: tok.Pos}
	case lexer.FALSE:
		return &LiteralExpr{Value: false, Pos: tok.Pos}
	default: // lexer.NIL
		return &LiteralExpr{Value: nil, Pos: tok.Pos}
	}
}

func (p *Parser) unary() Expr {
	tok := p.consume()
	return &UnaryExpr{Op: tok, Right: p.precedence(PREC_UNARY - 1)}
}

func (p *Parser) this() Expr {
	tok := p.consume()
	return &ThisExpr{Pos: tok.Pos, Loc: GlobalLoc}
}

func (p *Parser) super() Expr {
	tok := p.consume()
	p.expect(lexer.DOT, "Expected '.' after 'super'")
	method := p.expectIdent("Expected superclass method name")
	return &SuperExpr{Pos: tok.Pos, Method: method, Loc: GlobalLoc}
}

func (p *Parser) assign(left Expr) Expr {
	tok := p.consume()
	right := p.precedence(PREC_ASSIGN - 1)
	switch left := left.(type) {
	case *VariableExpr:
		return &AssignExpr{Name: left.Name, Value: right, Loc: GlobalLoc}
	case *GetExpr:
		return &SetExpr{Object: left.Object, Name: left.Name, Value: right}
	default:
		err := &Error{Message: "Invalid target", Lexeme: tok.Lexeme, Pos: tok.Pos}
		p.Errors = append(p.Errors, err)
		panic(err)
	}
}

func (p *Parser) binary(left Expr) Expr {
	tok := p.consume()
	return &BinaryExpr{Op: tok, Left: left, Right: p.precedence(p.precedences[tok.Type])}
}

func (p *Parser) and(left Expr) Expr {
	tok := p.consume()
	return &LogicalExpr{Op: tok, Left: left, Right: p.precedence(p.precedences[tok.Type])}
}

func (p *Parser) or(left Expr) Expr {
	tok := p.consume()
	return &LogicalExpr{Op: tok, Left: left, Right: p.precedence(p.precedences[tok.Type])}
}

func (p *Parser) get(left Expr) Expr {
	p.consume() // '.'
	name := p.expectIdent("Expected property name after '.'")
	return &GetExpr{Object: left, Name: name}
}

func (p *Parser) call(left Expr) Expr {
	p.consume() // '('
	args := []Expr{}
	if !p.check(lexer.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.fail(">= 255 args")
			}
			args = append(args, p.expression())
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	paren := p.expect(lexer.RIGHT_PAREN, "Expected ')'")
	return &CallExpr{Callee: left, Paren: paren.Pos, Args: args}
}
