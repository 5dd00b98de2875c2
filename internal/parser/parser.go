// Package parser implements the recursive-descent parser described in
// spec §4.2. Scope and variable-distance resolution is not done here —
// see internal/resolver — the parser's only job is to turn a token
// stream into an AST.
package parser

import (
	"loxwalk/internal/ast"
	"loxwalk/internal/diag"
	"loxwalk/internal/lexer"
	"loxwalk/internal/token"
)

const maxArgs = 255

// syntaxError unwinds the current declaration when a production cannot
// continue; Parse recovers it and synchronizes to the next statement.
type syntaxError struct{}

type Parser struct {
	toks    []token.Token
	current int

	diags *diag.Bag
}

// New tokenizes source and returns a Parser ready to call Parse on.
// Lex errors (if any) are appended to diags alongside parse errors.
func New(source string, diags *diag.Bag) *Parser {
	toks := lexer.New(source, diags).Tokens()
	return &Parser{toks: toks, diags: diags}
}

// Parse consumes the whole token stream and returns the top-level
// declarations. The result should be discarded (not executed) if diags
// gained any errors during parsing.
func (p *Parser) Parse() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.END_OF_FILE) {
		if s, ok := p.declarationRecover(); ok {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// ParseExpression parses a single expression followed by EOF, used by
// the REPL's expression fallback (spec §6). Returns nil on any error.
func (p *Parser) ParseExpression() (expr ast.Expr, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isSyntaxErr := r.(syntaxError); isSyntaxErr {
				expr, ok = nil, false
				return
			}
			panic(r)
		}
	}()

	e := p.expression()
	if !p.check(token.END_OF_FILE) {
		return nil, false
	}
	return e, true
}

func (p *Parser) declarationRecover() (s ast.Stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isSyntaxErr := r.(syntaxError); isSyntaxErr {
				p.synchronize()
				s, ok = nil, false
				return
			}
			panic(r)
		}
	}()

	return p.declaration(), true
}

// Declarations and statements
// --------------------------------------------------------

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.CLASS):
		return p.classDeclaration()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.VAR):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) classDeclaration() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.LESS) {
		sname := p.consume(token.IDENTIFIER, "Expect superclass name.")
		superclass = &ast.Variable{Name: sname}
	}

	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")

	var methods []*ast.Function
	for !p.check(token.RIGHT_BRACE) && !p.check(token.END_OF_FILE) {
		m := p.function("method")
		methods = append(methods, m.(*ast.Function))
	}

	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")

	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) function(kind string) ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect "+kind+" name.")

	p.consume(token.LEFT_PAREN, "Expect '(' after "+kind+" name.")
	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.errorAt(p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")

	p.consume(token.LEFT_BRACE, "Expect '{' before "+kind+" body.")
	body := p.blockBody()

	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *Parser) varDeclaration() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect a variable name.")

	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: init}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.ASSERT):
		return p.assertStatement()
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.BREAK):
		return p.breakStatement()
	case p.match(token.CONTINUE):
		return p.continueStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.LEFT_BRACE):
		return &ast.Block{Statements: p.blockBody()}
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) assertStatement() ast.Stmt {
	keyword := p.previous()
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Assert{Keyword: keyword, Expression: expr}
}

func (p *Parser) printStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	return &ast.Print{Expression: expr}
}

func (p *Parser) breakStatement() ast.Stmt {
	kw := p.previous()
	p.consume(token.SEMICOLON, "Expect ';' after 'break'.")
	return &ast.Break{Keyword: kw}
}

func (p *Parser) continueStatement() ast.Stmt {
	kw := p.previous()
	p.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
	return &ast.Continue{Keyword: kw}
}

func (p *Parser) returnStatement() ast.Stmt {
	kw := p.previous()
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.Return{Keyword: kw, Value: value}
}

func (p *Parser) ifStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after if condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	// Dangling else binds to the nearest unmatched if: matching it here,
	// immediately after parsing the then-branch, achieves that for free.
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}

	return &ast.If{Condition: cond, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")
	body := p.statement()

	return &ast.While{Condition: cond, Body: body}
}

// forStatement desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }` per spec §4.2.
func (p *Parser) forStatement() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		init = nil
	case p.match(token.VAR):
		init = p.varDeclaration()
	default:
		init = p.expressionStatement()
	}

	var cond ast.Expr = &ast.Literal{Value: true}
	if !p.check(token.SEMICOLON) {
		cond = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var incr ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		incr = p.expression()
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.statement()
	if incr != nil {
		body = ast.NewBlock(body, &ast.Expression{Expression: incr})
	}

	return ast.NewBlock(init, &ast.While{Condition: cond, Body: body})
}

func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Expression{Expression: expr}
}

// blockBody parses declaration* '}', assuming the opening '{' was
// already consumed.
func (p *Parser) blockBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.check(token.END_OF_FILE) {
		stmts = append(stmts, p.declaration())
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

// Expressions, lowest to highest precedence:
// assignment -> or -> and -> equality -> comparison -> term -> factor -> unary -> call -> primary
// --------------------------------------------------------

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: target.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
		default:
			p.errorAt(equals, "Invalid assignment target.")
			return expr
		}
	}

	return expr
}

func (p *Parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.OR) {
		op := p.previous()
		right := p.and()
		expr = &ast.Logical{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.matchAny(token.EQUAL_EQUAL, token.BANG_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.matchAny(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.matchAny(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.matchAny(token.STAR, token.SLASH) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Operator: op, Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.matchAny(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Arguments: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return &ast.Literal{Value: false}
	case p.match(token.TRUE):
		return &ast.Literal{Value: true}
	case p.match(token.NIL):
		return &ast.Literal{Value: nil}
	case p.matchAny(token.NUMBER, token.STRING):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.THIS):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.SUPER):
		return p.super_()
	case p.match(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LEFT_PAREN):
		expr := p.expression()
		p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
		return &ast.Grouping{Expr: expr}
	}

	p.errorAt(p.peek(), "Expect expression.")
	panic(syntaxError{})
}

func (p *Parser) super_() ast.Expr {
	keyword := p.previous()
	p.consume(token.DOT, "Expect '.' after 'super'.")
	method := p.consume(token.IDENTIFIER, "Expect superclass method name.")
	return &ast.Super{Keyword: keyword, Method: method}
}

// Token stream helpers
// --------------------------------------------------------

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) peek() token.Token {
	return p.toks[p.current]
}

func (p *Parser) previous() token.Token {
	return p.toks[p.current-1]
}

func (p *Parser) advance() token.Token {
	if !p.check(token.END_OF_FILE) {
		p.current++
	}
	return p.previous()
}

func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.errorAt(p.peek(), message)
	panic(syntaxError{})
}

func (p *Parser) errorAt(tok token.Token, message string) {
	at := "'" + tok.Lexeme + "'"
	if tok.Kind == token.END_OF_FILE {
		at = "end"
	}
	p.diags.Add(diag.Diagnostic{Stage: diag.Parse, Line: tok.Line, At: at, Message: message})
}

// synchronize discards tokens until a likely statement boundary, so one
// malformed statement doesn't cascade into spurious follow-on errors.
func (p *Parser) synchronize() {
	p.advance()

	for !p.check(token.END_OF_FILE) {
		switch p.toks[p.current-1].Kind {
		case token.SEMICOLON, token.RIGHT_BRACE:
			return
		}

		switch p.peek().Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN, token.ASSERT:
			return
		}

		p.advance()
	}
}
