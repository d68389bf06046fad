// Package parser builds a Lumen ast.Stmt sequence from a lexer.Token
// stream using recursive descent, one method per grammar production.
package parser

import (
	"fmt"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lexer"
)

// Diagnostic is a parser error. Diagnostics are collected, not raised;
// the parser recovers at the next statement boundary and keeps going so
// a single pass can report more than one mistake.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("[line %d] Parser Error: %s", d.Line, d.Message)
}

type parseError struct{ diag Diagnostic }

func (e *parseError) Error() string { return e.diag.Message }

// Parser consumes a token stream with one token of lookahead (peek)
// plus access to the previously consumed token.
type Parser struct {
	tokens  []lexer.Token
	current int

	funcDepth int
	loopDepth int

	diagnostics []Diagnostic
}

// NewParser prepares a Parser over a complete token stream (as produced
// by lexer.Lexer.ScanTokens, including its trailing EOF token).
func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and returns the program's
// top-level statements along with any diagnostics recorded.
func (p *Parser) Parse() ([]ast.Stmt, []Diagnostic) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmt, err := p.declarationSafe()
		if err != nil {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, p.diagnostics
}

func (p *Parser) declarationSafe() (stmt ast.Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*parseError); ok {
				p.synchronize()
				err = pe
				return
			}
			panic(r)
		}
	}()
	return p.declaration(), nil
}

// --- token-stream primitives ---

func (p *Parser) peek() lexer.Token     { return p.tokens[p.current] }
func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }
func (p *Parser) isAtEnd() bool         { return p.peek().Type == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(typ lexer.TokenType) bool {
	if p.isAtEnd() {
		return typ == lexer.EOF
	}
	return p.peek().Type == typ
}

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(typ lexer.TokenType, message string) lexer.Token {
	if p.check(typ) {
		return p.advance()
	}
	panic(p.error(p.peek(), message))
}

func (p *Parser) error(tok lexer.Token, message string) *parseError {
	where := "at '" + tok.Lexeme + "'"
	if tok.Type == lexer.EOF {
		where = "at end"
	}
	diag := Diagnostic{Line: tok.Line, Message: fmt.Sprintf("%s: %s", where, message)}
	p.diagnostics = append(p.diagnostics, diag)
	return &parseError{diag: diag}
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so one mistake doesn't cascade into a wall of errors.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == lexer.Semicolon {
			return
		}
		switch p.peek().Type {
		case lexer.Class, lexer.Fun, lexer.Var, lexer.For, lexer.If, lexer.While, lexer.Print, lexer.Return:
			return
		}
		p.advance()
	}
}

// --- declarations ---

func (p *Parser) declaration() ast.Stmt {
	if p.match(lexer.Fun) {
		return p.function("function")
	}
	if p.match(lexer.Var) {
		return p.varDeclaration()
	}
	return p.statement()
}

func (p *Parser) function(kind string) *ast.FunctionDecl {
	name := p.consume(lexer.Identifier, "Expect "+kind+" name.")
	p.consume(lexer.LeftParen, "Expect '(' after "+kind+" name.")
	var params []lexer.Token
	if !p.check(lexer.RightParen) {
		for {
			if len(params) >= 255 {
				p.error(p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(lexer.Identifier, "Expect parameter name."))
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.consume(lexer.RightParen, "Expect ')' after parameters.")
	p.consume(lexer.LeftBrace, "Expect '{' before "+kind+" body.")
	p.funcDepth++
	body := p.block()
	p.funcDepth--
	return &ast.FunctionDecl{Name: name, Params: params, Body: body}
}

func (p *Parser) varDeclaration() ast.Stmt {
	name := p.consume(lexer.Identifier, "Expect variable name.")
	var initializer ast.Expr
	if p.match(lexer.Equal) {
		initializer = p.expression()
	}
	p.consume(lexer.Semicolon, "Expect ';' after variable declaration.")
	return &ast.VarStmt{Name: name, Initializer: initializer}
}

// --- statements ---

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(lexer.For):
		return p.forStatement()
	case p.match(lexer.If):
		return p.ifStatement()
	case p.match(lexer.Print):
		return p.printStatement()
	case p.match(lexer.Return):
		return p.returnStatement()
	case p.match(lexer.While):
		return p.whileStatement()
	case p.match(lexer.Break):
		return p.breakStatement()
	case p.match(lexer.Continue):
		return p.continueStatement()
	case p.match(lexer.LeftBrace):
		return &ast.Block{Statements: p.block()}
	}
	return p.expressionStatement()
}

func (p *Parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(lexer.RightBrace) && !p.isAtEnd() {
		stmt, err := p.declarationSafe()
		if err == nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(lexer.RightBrace, "Expect '}' after block.")
	return stmts
}

func (p *Parser) ifStatement() ast.Stmt {
	p.consume(lexer.LeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(lexer.RightParen, "Expect ')' after if condition.")
	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(lexer.Else) {
		elseBranch = p.statement()
	}
	return &ast.If{Condition: condition, Then: thenBranch, Else: elseBranch}
}

func (p *Parser) printStatement() ast.Stmt {
	value := p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after value.")
	return &ast.PrintStmt{Expression: value}
}

func (p *Parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	if p.funcDepth == 0 {
		p.error(keyword, "Can't return from top-level code.")
	}
	var value ast.Expr
	if !p.check(lexer.Semicolon) {
		value = p.expression()
	}
	p.consume(lexer.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value}
}

func (p *Parser) breakStatement() ast.Stmt {
	keyword := p.previous()
	if p.loopDepth == 0 {
		p.error(keyword, "Can't use 'break' outside of a loop.")
	}
	p.consume(lexer.Semicolon, "Expect ';' after 'break'.")
	return &ast.Break{Keyword: keyword}
}

func (p *Parser) continueStatement() ast.Stmt {
	keyword := p.previous()
	if p.loopDepth == 0 {
		p.error(keyword, "Can't use 'continue' outside of a loop.")
	}
	p.consume(lexer.Semicolon, "Expect ';' after 'continue'.")
	return &ast.Continue{Keyword: keyword}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(lexer.LeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(lexer.RightParen, "Expect ')' after condition.")
	p.loopDepth++
	body := p.statement()
	p.loopDepth--
	return &ast.While{Condition: condition, Body: body}
}

// forStatement desugars `for (init; cond; inc) body` into
//
//	{ init; while (cond) { body...; inc; } }
//
// with the increment expressed as its own ast.ForIncrementStmt so
// `continue` inside body runs it before re-testing cond.
func (p *Parser) forStatement() ast.Stmt {
	p.consume(lexer.LeftParen, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(lexer.Semicolon):
		initializer = nil
	case p.match(lexer.Var):
		initializer = p.varDeclaration()
	default:
		initializer = p.expressionStatement()
	}

	var condition ast.Expr
	if !p.check(lexer.Semicolon) {
		condition = p.expression()
	}
	p.consume(lexer.Semicolon, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(lexer.RightParen) {
		increment = p.expression()
	}
	p.consume(lexer.RightParen, "Expect ')' after for clauses.")

	p.loopDepth++
	body := p.statement()
	p.loopDepth--

	bodyStmts := []ast.Stmt{body}
	if increment != nil {
		bodyStmts = append(bodyStmts, &ast.ForIncrementStmt{Expression: increment})
	}

	if condition == nil {
		condition = &ast.Literal{Value: true}
	}

	loop := ast.Stmt(&ast.While{Condition: condition, Body: &ast.Block{Statements: bodyStmts}})

	if initializer == nil {
		return loop
	}
	return &ast.Block{Statements: []ast.Stmt{initializer, loop}}
}

func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(lexer.Semicolon, "Expect ';' after expression.")
	return &ast.ExpressionStmt{Expression: expr}
}

// --- expressions ---

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

var compoundAssignOps = map[lexer.TokenType]lexer.TokenType{
	lexer.PlusEqual:  lexer.Plus,
	lexer.MinusEqual: lexer.Minus,
	lexer.StarEqual:  lexer.Star,
	lexer.SlashEqual: lexer.Slash,
}

func (p *Parser) assignment() ast.Expr {
	expr := p.conditional()

	if p.match(lexer.Equal, lexer.PlusEqual, lexer.MinusEqual, lexer.StarEqual, lexer.SlashEqual) {
		op := p.previous()
		value := p.assignment()

		variable, ok := expr.(*ast.Variable)
		if !ok {
			p.error(op, "Invalid assignment target.")
			return expr
		}

		if op.Type == lexer.Equal {
			return &ast.Assign{Name: variable.Name, Value: value}
		}

		arithOp := lexer.Token{Type: compoundAssignOps[op.Type], Lexeme: string(compoundAssignOps[op.Type]), Line: op.Line, Column: op.Column}
		return &ast.Assign{
			Name: variable.Name,
			Value: &ast.Binary{
				Left:     &ast.Variable{Name: variable.Name},
				Operator: arithOp,
				Right:    value,
			},
		}
	}

	return expr
}

func (p *Parser) conditional() ast.Expr {
	expr := p.or()
	if p.match(lexer.Question) {
		then := p.expression()
		p.consume(lexer.Colon, "Expect ':' after then branch of conditional expression.")
		elseExpr := p.conditional()
		return &ast.Conditional{Condition: expr, Then: then, Else: elseExpr}
	}
	return expr
}

func (p *Parser) or() ast.Expr {
	expr := p.and()
	for p.match(lexer.Or) {
		op := p.previous()
		right := p.and()
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()
	for p.match(lexer.And) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	if p.match(lexer.BangEqual, lexer.EqualEqual) {
		op := p.previous()
		p.error(op, "Missing left-hand operand.")
		_ = p.comparison()
		return &ast.Literal{Value: nil}
	}
	expr := p.comparison()
	for p.match(lexer.BangEqual, lexer.EqualEqual) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	if p.match(lexer.Greater, lexer.GreaterEqual, lexer.Less, lexer.LessEqual) {
		op := p.previous()
		p.error(op, "Missing left-hand operand.")
		_ = p.term()
		return &ast.Literal{Value: nil}
	}
	expr := p.term()
	for p.match(lexer.Greater, lexer.GreaterEqual, lexer.Less, lexer.LessEqual) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	if p.match(lexer.Plus) {
		op := p.previous()
		p.error(op, "Missing left-hand operand.")
		_ = p.factor()
		return &ast.Literal{Value: nil}
	}
	expr := p.factor()
	for p.match(lexer.Minus, lexer.Plus) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	if p.match(lexer.Star, lexer.Slash) {
		op := p.previous()
		p.error(op, "Missing left-hand operand.")
		_ = p.unary()
		return &ast.Literal{Value: nil}
	}
	expr := p.unary()
	for p.match(lexer.Slash, lexer.Star) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(lexer.Bang, lexer.Minus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for p.match(lexer.LeftParen) {
		expr = p.finishCall(expr)
	}
	if p.match(lexer.PlusPlus, lexer.MinusMinus) {
		op := p.previous()
		variable, ok := expr.(*ast.Variable)
		if !ok {
			p.error(op, "Invalid increment/decrement target.")
			return expr
		}
		delta := lexer.Plus
		if op.Type == lexer.MinusMinus {
			delta = lexer.Minus
		}
		arithOp := lexer.Token{Type: delta, Lexeme: string(delta), Line: op.Line, Column: op.Column}
		return &ast.Assign{
			Name: variable.Name,
			Value: &ast.Binary{
				Left:     variable,
				Operator: arithOp,
				Right:    &ast.Literal{Value: 1.0},
			},
		}
	}
	return expr
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(lexer.RightParen) {
		for {
			if len(args) >= 255 {
				p.error(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	paren := p.consume(lexer.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Arguments: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(lexer.False):
		return &ast.Literal{Value: false}
	case p.match(lexer.True):
		return &ast.Literal{Value: true}
	case p.match(lexer.Nil):
		return &ast.Literal{Value: nil}
	case p.match(lexer.Number, lexer.String):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(lexer.Identifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(lexer.LeftParen):
		expr := p.expression()
		p.consume(lexer.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Expression: expr}
	}
	panic(p.error(p.peek(), "Expect expression."))
}
