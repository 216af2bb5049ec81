package mython

import (
	"fmt"
)

type parseError struct {
	pos Position
	msg string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

// parser builds the AST from the lexer's token cursor. Classes are
// resolved while parsing: a constructor call or a base-class reference
// must name a class declared earlier in the program, which holds because
// definitions evaluate top-down.
type parser struct {
	lex     *lexer
	classes map[string]*Class
}

func newParser(l *lexer) *parser {
	return &parser{lex: l, classes: make(map[string]*Class)}
}

func (p *parser) cur() Token {
	return p.lex.current()
}

func (p *parser) next() Token {
	return p.lex.advance()
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	tok := p.cur()
	if tok.Type != tt {
		return Token{}, p.errorExpected(tok, what)
	}
	p.next()
	return tok, nil
}

func (p *parser) errorExpected(tok Token, what string) error {
	found := string(tok.Type)
	if tok.Type == tokenIdent {
		found = tok.Literal
	}
	return &parseError{pos: tok.Pos, msg: fmt.Sprintf("expected %s, found %s", what, found)}
}

func (p *parser) parseProgram() (*Program, error) {
	program := &Program{}
	for p.cur().Type != tokenEOF {
		if p.cur().Type == tokenNewline {
			p.next()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

func (p *parser) parseStatement() (Statement, error) {
	switch p.cur().Type {
	case tokenClass:
		return p.parseClassDef()
	case tokenIf:
		return p.parseIf()
	case tokenReturn:
		return p.parseReturn()
	case tokenPrint:
		return p.parsePrint()
	default:
		return p.parseAssignOrExpr()
	}
}

func (p *parser) parseClassDef() (Statement, error) {
	pos := p.cur().Pos
	p.next()
	nameTok, err := p.expect(tokenIdent, "class name")
	if err != nil {
		return nil, err
	}

	var parent *Class
	if p.cur().Type == tokenLParen {
		p.next()
		baseTok, err := p.expect(tokenIdent, "base class name")
		if err != nil {
			return nil, err
		}
		base, ok := p.classes[baseTok.Literal]
		if !ok {
			return nil, &parseError{pos: baseTok.Pos, msg: fmt.Sprintf("unknown base class %s", baseTok.Literal)}
		}
		parent = base
		if _, err := p.expect(tokenRParen, ")"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(tokenColon, ":"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenNewline, "newline"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenIndent, "indented class body"); err != nil {
		return nil, err
	}

	// Register before the body parses so methods can construct
	// instances of their own class.
	cls := &Class{Name: nameTok.Literal, Parent: parent}
	p.classes[cls.Name] = cls

	for p.cur().Type == tokenDef {
		m, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		cls.Methods = append(cls.Methods, m)
	}
	if len(cls.Methods) == 0 {
		return nil, p.errorExpected(p.cur(), "method definition")
	}
	if _, err := p.expect(tokenDedent, "end of class body"); err != nil {
		return nil, err
	}

	return &ClassDefStmt{Class: cls, position: pos}, nil
}

func (p *parser) parseMethod() (*Method, error) {
	p.next()
	nameTok, err := p.expect(tokenIdent, "method name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}

	// The receiver is declared explicitly, Python style, but it is not a
	// formal parameter: call frames bind self on their own.
	selfTok, err := p.expect(tokenIdent, "self")
	if err != nil {
		return nil, err
	}
	if selfTok.Literal != "self" {
		return nil, &parseError{pos: selfTok.Pos, msg: "first method parameter must be self"}
	}

	var params []string
	for p.cur().Type == tokenComma {
		p.next()
		paramTok, err := p.expect(tokenIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, paramTok.Literal)
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Method{Name: nameTok.Literal, Params: params, Body: body}, nil
}

// parseBlock parses ":" NEWLINE INDENT statement+ DEDENT.
func (p *parser) parseBlock() ([]Statement, error) {
	if _, err := p.expect(tokenColon, ":"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenNewline, "newline"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenIndent, "indented block"); err != nil {
		return nil, err
	}
	var stmts []Statement
	for p.cur().Type != tokenDedent && p.cur().Type != tokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(tokenDedent, "end of block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) parseIf() (Statement, error) {
	pos := p.cur().Pos
	p.next()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var alternate []Statement
	if p.cur().Type == tokenElse {
		p.next()
		alternate, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{Condition: cond, Consequent: consequent, Alternate: alternate, position: pos}, nil
}

func (p *parser) parseReturn() (Statement, error) {
	pos := p.cur().Pos
	p.next()
	var value Expression
	if p.cur().Type != tokenNewline {
		var err error
		value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &ReturnStmt{Value: value, position: pos}, nil
}

func (p *parser) parsePrint() (Statement, error) {
	pos := p.cur().Pos
	p.next()
	var args []Expression
	if p.cur().Type != tokenNewline {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Type != tokenComma {
				break
			}
			p.next()
		}
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}
	return &PrintStmt{Args: args, position: pos}, nil
}

func (p *parser) parseAssignOrExpr() (Statement, error) {
	pos := p.cur().Pos
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.cur().Type != tokenAssign {
		if err := p.endStatement(); err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr, position: pos}, nil
	}

	target, ok := expr.(*VariableExpr)
	if !ok {
		return nil, &parseError{pos: expr.Pos(), msg: "invalid assignment target"}
	}
	p.next()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.endStatement(); err != nil {
		return nil, err
	}

	if len(target.Path) == 1 {
		return &AssignStmt{Name: target.Path[0], Value: value, position: pos}, nil
	}
	object := &VariableExpr{Path: target.Path[:len(target.Path)-1], position: target.position}
	field := target.Path[len(target.Path)-1]
	return &FieldAssignStmt{Object: object, Field: field, Value: value, position: pos}, nil
}

func (p *parser) endStatement() error {
	_, err := p.expect(tokenNewline, "newline")
	return err
}

func (p *parser) parseExpression() (Expression, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expression, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == tokenOr {
		pos := p.cur().Pos
		p.next()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{Op: tokenOr, Lhs: lhs, Rhs: rhs, position: pos}
	}
	return lhs, nil
}

func (p *parser) parseAnd() (Expression, error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == tokenAnd {
		pos := p.cur().Pos
		p.next()
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{Op: tokenAnd, Lhs: lhs, Rhs: rhs, position: pos}
	}
	return lhs, nil
}

func (p *parser) parseNot() (Expression, error) {
	if p.cur().Type == tokenNot {
		pos := p.cur().Pos
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: tokenNot, Operand: operand, position: pos}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expression, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	switch op := p.cur().Type; op {
	case tokenEQ, tokenNotEQ, tokenLT, tokenGT, tokenLTE, tokenGTE:
		pos := p.cur().Pos
		p.next()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs, position: pos}, nil
	}
	return lhs, nil
}

func (p *parser) parseAdditive() (Expression, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == tokenPlus || p.cur().Type == tokenMinus {
		op := p.cur().Type
		pos := p.cur().Pos
		p.next()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs, position: pos}
	}
	return lhs, nil
}

func (p *parser) parseTerm() (Expression, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == tokenAsterisk || p.cur().Type == tokenSlash {
		op := p.cur().Type
		pos := p.cur().Pos
		p.next()
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs, position: pos}
	}
	return lhs, nil
}

func (p *parser) parsePrimary() (Expression, error) {
	tok := p.cur()
	switch tok.Type {
	case tokenInt:
		p.next()
		return &NumberLiteral{Value: tok.Num, position: tok.Pos}, nil
	case tokenString:
		p.next()
		return &StringLiteral{Value: tok.Literal, position: tok.Pos}, nil
	case tokenTrue:
		p.next()
		return &BoolLiteral{Value: true, position: tok.Pos}, nil
	case tokenFalse:
		p.next()
		return &BoolLiteral{Value: false, position: tok.Pos}, nil
	case tokenNone:
		p.next()
		return &NoneLiteral{position: tok.Pos}, nil
	case tokenLParen:
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, ")"); err != nil {
			return nil, err
		}
		return p.parsePostfix(expr)
	case tokenIdent:
		return p.parseIdentifier()
	default:
		return nil, p.errorExpected(tok, "expression")
	}
}

func (p *parser) parseIdentifier() (Expression, error) {
	tok := p.cur()
	p.next()

	if p.cur().Type == tokenLParen {
		if tok.Literal == "str" {
			if _, shadowed := p.classes["str"]; !shadowed {
				p.next()
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(tokenRParen, ")"); err != nil {
					return nil, err
				}
				return p.parsePostfix(&StringifyExpr{Arg: arg, position: tok.Pos})
			}
		}
		cls, ok := p.classes[tok.Literal]
		if !ok {
			return nil, &parseError{pos: tok.Pos, msg: fmt.Sprintf("unknown class %s", tok.Literal)}
		}
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return p.parsePostfix(&NewInstanceExpr{Class: cls, Args: args, position: tok.Pos})
	}

	return p.parsePostfix(&VariableExpr{Path: []string{tok.Literal}, position: tok.Pos})
}

// parsePostfix consumes dotted suffixes: a segment followed by an
// argument list is a method call, a bare segment extends a variable's
// field path.
func (p *parser) parsePostfix(expr Expression) (Expression, error) {
	for p.cur().Type == tokenDot {
		p.next()
		fieldTok, err := p.expect(tokenIdent, "field or method name")
		if err != nil {
			return nil, err
		}
		if p.cur().Type == tokenLParen {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &MethodCallExpr{Receiver: expr, Method: fieldTok.Literal, Args: args, position: fieldTok.Pos}
			continue
		}
		v, ok := expr.(*VariableExpr)
		if !ok {
			return nil, &parseError{pos: fieldTok.Pos, msg: "field access is only allowed on variables"}
		}
		expr = &VariableExpr{Path: append(append([]string{}, v.Path...), fieldTok.Literal), position: v.position}
	}
	return expr, nil
}

func (p *parser) parseCallArgs() ([]Expression, error) {
	if _, err := p.expect(tokenLParen, "("); err != nil {
		return nil, err
	}
	var args []Expression
	if p.cur().Type != tokenRParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Type != tokenComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tokenRParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}
