package filter

import (
	"strings"

	"github.com/simao/jaxe/internal/keypath"
)

// Function names recognized in call position. Keywords are case-sensitive.
const (
	FuncAnd      = "and"
	FuncOr       = "or"
	FuncNot      = "not"
	FuncContains = "contains"
	FuncExists   = "exists"
)

// Parser parses a filter query string into an AST.
//
// It is a recursive descent parser with a single token of lookahead. An identifier
// followed by '(' is a call, an identifier followed by '==' or '!=' is a comparison,
// so a record key named like a keyword ("and == x") still parses as a path.
type Parser struct {
	lexer    *Lexer
	err      error
	curToken Token
}

// NewParser creates a new Parser for the given lexer.
func NewParser(lexer *Lexer) *Parser {
	p := &Parser{lexer: lexer}
	p.nextToken()

	return p
}

// ParseExpression parses the whole input and returns its expression.
// On failure it returns the first error and no expression.
func (p *Parser) ParseExpression() (Expression, error) {
	expr := p.parseExpression()
	if p.err != nil {
		return nil, p.err
	}

	if p.curToken.Type != EOF {
		p.unexpected("unexpected " + describeToken(p.curToken) + " after expression")
		return nil, p.err
	}

	return expr, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.lexer.NextToken()
}

// nextLiteral advances to the next token, reading it as a literal.
func (p *Parser) nextLiteral() {
	p.curToken = p.lexer.NextLiteral()
}

// parseExpression parses expr := comparison | call.
func (p *Parser) parseExpression() Expression {
	switch p.curToken.Type {
	case IDENT:
		ident := p.curToken
		p.nextToken()

		switch p.curToken.Type {
		case LPAREN:
			return p.parseCall(ident)
		case EQ, NEQ:
			return p.parseComparison(ident)
		case EOF:
			p.fail(ErrorKindUnexpectedEOF, "expected '==', '!=' or '(' after "+ident.Literal)
		case ILLEGAL, IDENT, STRING, LITERAL, RPAREN, COMMA:
			p.unexpected("expected '==', '!=' or '(' after " + ident.Literal + ", got " + describeToken(p.curToken))
		}

		return nil
	case EOF:
		p.fail(ErrorKindUnexpectedEOF, "expected an expression")
	case ILLEGAL, STRING, LITERAL, EQ, NEQ, LPAREN, RPAREN, COMMA:
		p.unexpected("expected a path or a function call, got " + describeToken(p.curToken))
	}

	return nil
}

// parseComparison parses path ('==' | '!=') literal. curToken is the operator.
func (p *Parser) parseComparison(ident Token) Expression {
	path := p.toPath(ident)
	if path == nil {
		return nil
	}

	operator := p.curToken.Type

	p.nextLiteral()

	value, ok := p.expectLiteral("after " + operator.String())
	if !ok {
		return nil
	}

	if operator == NEQ {
		return &NotEqualsExpression{Path: path, Value: value}
	}

	return &EqualsExpression{Path: path, Value: value}
}

// parseCall parses a function call. curToken is the opening parenthesis.
func (p *Parser) parseCall(name Token) Expression {
	switch name.Literal {
	case FuncAnd:
		operands := p.parseExpressionList()
		if operands == nil {
			return nil
		}

		return &AndExpression{Operands: operands}
	case FuncOr:
		operands := p.parseExpressionList()
		if operands == nil {
			return nil
		}

		return &OrExpression{Operands: operands}
	case FuncNot:
		p.nextToken()

		operand := p.parseExpression()
		if operand == nil || !p.expectClosingParen() {
			return nil
		}

		return &NotExpression{Operand: operand}
	case FuncContains:
		p.nextToken()

		path := p.parsePathArgument()
		if path == nil {
			return nil
		}

		if p.curToken.Type != COMMA {
			p.expected("',' after the path of contains")
			return nil
		}

		p.nextLiteral()

		value, ok := p.expectLiteral("as the second argument of contains")
		if !ok || !p.expectClosingParen() {
			return nil
		}

		return &ContainsExpression{Path: path, Value: value}
	case FuncExists:
		p.nextToken()

		path := p.parsePathArgument()
		if path == nil || !p.expectClosingParen() {
			return nil
		}

		return &ExistsExpression{Path: path}
	}

	p.err = NewParseError(ErrorKindUnknownFunction,
		"unknown function "+name.Literal+", expected one of and, or, not, contains, exists",
		p.lexer.Input(), name)

	return nil
}

// parseExpressionList parses '(' expr (',' expr)* ')'. curToken is the opening parenthesis.
func (p *Parser) parseExpressionList() []Expression {
	var operands []Expression

	for {
		p.nextToken()

		operand := p.parseExpression()
		if operand == nil {
			return nil
		}

		operands = append(operands, operand)

		if p.curToken.Type != COMMA {
			break
		}
	}

	if !p.expectClosingParen() {
		return nil
	}

	return operands
}

// parsePathArgument parses the path argument of contains and exists.
func (p *Parser) parsePathArgument() keypath.Path {
	if p.curToken.Type != IDENT {
		p.expected("a path")
		return nil
	}

	path := p.toPath(p.curToken)
	if path == nil {
		return nil
	}

	p.nextToken()

	return path
}

// expectLiteral consumes a quoted or bare literal.
func (p *Parser) expectLiteral(context string) (string, bool) {
	if p.curToken.Type != STRING && p.curToken.Type != LITERAL {
		p.expected("a value " + context)
		return "", false
	}

	value := p.curToken.Literal
	p.nextToken()

	return value, true
}

// expectClosingParen consumes ')'.
func (p *Parser) expectClosingParen() bool {
	if p.curToken.Type != RPAREN {
		p.expected("')'")
		return false
	}

	p.nextToken()

	return true
}

// toPath validates an identifier as a dotted path.
func (p *Parser) toPath(ident Token) keypath.Path {
	path := keypath.Parse(ident.Literal)

	for _, segment := range path {
		if segment == "" {
			p.err = NewParseError(ErrorKindUnexpectedToken,
				"empty segment in path "+ident.Literal, p.lexer.Input(), ident)

			return nil
		}
	}

	return path
}

// expected reports that something else was required at the current token.
func (p *Parser) expected(what string) {
	if p.curToken.Type == EOF {
		p.fail(ErrorKindUnexpectedEOF, "expected "+what)
		return
	}

	p.unexpected("expected " + what + ", got " + describeToken(p.curToken))
}

func (p *Parser) unexpected(detail string) {
	p.fail(ErrorKindUnexpectedToken, detail)
}

// fail records the first error; later errors are consequences of it.
func (p *Parser) fail(kind ErrorKind, detail string) {
	if p.err != nil {
		return
	}

	if kind == ErrorKindUnexpectedToken && p.curToken.Type == ILLEGAL && strings.HasPrefix(p.curToken.Literal, `"`) {
		kind = ErrorKindUnexpectedEOF
		detail = "unterminated quoted value"
	}

	p.err = NewParseError(kind, detail, p.lexer.Input(), p.curToken)
}

func describeToken(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of filter"
	case IDENT, LITERAL:
		return "'" + tok.Literal + "'"
	case STRING:
		return "quoted value"
	case ILLEGAL, EQ, NEQ, LPAREN, RPAREN, COMMA:
		return "'" + tok.Literal + "'"
	}

	return tok.Type.String()
}
