package filter

import (
	"strings"
	"unicode"
)

// Lexer tokenizes a filter query string.
//
// Literals are context dependent: after '==', '!=' or the comma of contains(...) the
// parser asks for NextLiteral, which reads a quoted string or everything up to the
// next ',' or ')'. Everywhere else NextToken is used.
type Lexer struct {
	input        string // The input string being tokenized
	position     int    // Current position in input (points to current char)
	readPosition int    // Current reading position in input (after current char)
	ch           byte   // Current char under examination
}

// NewLexer creates a new Lexer for the given input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()

	return l
}

// Input returns the query being tokenized.
func (l *Lexer) Input() string {
	return l.input
}

// NextToken reads and returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	var tok Token

	startPosition := l.position

	if l.atEOF() {
		return NewToken(EOF, "", startPosition)
	}

	switch l.ch {
	case '(':
		tok = NewToken(LPAREN, "(", startPosition)
		l.readChar()
	case ')':
		tok = NewToken(RPAREN, ")", startPosition)
		l.readChar()
	case ',':
		tok = NewToken(COMMA, ",", startPosition)
		l.readChar()
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()

			return NewToken(EQ, "==", startPosition)
		}

		tok = NewToken(ILLEGAL, "=", startPosition)
		l.readChar()
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()

			return NewToken(NEQ, "!=", startPosition)
		}

		tok = NewToken(ILLEGAL, "!", startPosition)
		l.readChar()
	case '"':
		return l.readString()
	default:
		if isIdentifierChar(l.ch) {
			literal := l.readIdentifier()
			return NewToken(IDENT, literal, startPosition)
		}

		tok = NewToken(ILLEGAL, string(l.ch), startPosition)
		l.readChar()
	}

	return tok
}

// NextLiteral reads the right-hand side of a comparison or the value of contains(...).
// Structural tokens (',', ')') and EOF are returned as such so the parser can report them.
func (l *Lexer) NextLiteral() Token {
	l.skipWhitespace()

	startPosition := l.position

	if l.atEOF() {
		return NewToken(EOF, "", startPosition)
	}

	switch l.ch {
	case '"':
		return l.readString()
	case ',', ')':
		return l.NextToken()
	}

	for !l.atEOF() && !isLiteralTerminator(l.ch) {
		l.readChar()
	}

	raw := l.input[startPosition:l.position]
	tok := NewToken(LITERAL, strings.TrimRightFunc(raw, unicode.IsSpace), startPosition)

	return tok
}

// readChar advances the lexer's position and updates the current character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1

		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
}

// atEOF reports whether the whole input has been read. A NUL byte inside the
// input is an ordinary character.
func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// peekChar returns the next character without advancing the position.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}

	return l.input[l.readPosition]
}

// skipWhitespace skips over whitespace characters.
func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && unicode.IsSpace(rune(l.ch)) {
		l.readChar()
	}
}

// readIdentifier reads a path or function name.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isIdentifierChar(l.ch) {
		l.readChar()
	}

	return l.input[position:l.position]
}

// readString reads a double-quoted literal. Inside the quotes, \" and \\ are escapes;
// any other backslash is kept as is. A missing closing quote yields an ILLEGAL token
// spanning the rest of the input.
func (l *Lexer) readString() Token {
	startPosition := l.position

	var sb strings.Builder

	l.readChar() // opening quote

	for {
		if l.atEOF() {
			return Token{
				Type:     ILLEGAL,
				Literal:  l.input[startPosition:],
				Position: startPosition,
				Length:   len(l.input) - startPosition,
			}
		}

		switch l.ch {
		case '"':
			l.readChar()

			return Token{
				Type:     STRING,
				Literal:  sb.String(),
				Position: startPosition,
				Length:   l.position - startPosition,
			}
		case '\\':
			if next := l.peekChar(); next == '"' || next == '\\' {
				sb.WriteByte(next)
				l.readChar()
				l.readChar()

				continue
			}

			sb.WriteByte(l.ch)
			l.readChar()
		default:
			sb.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// isIdentifierChar returns true if the character can be part of a path or function name.
// Bytes of multi-byte UTF-8 sequences are accepted so non-ASCII keys can be addressed.
func isIdentifierChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '_', ch == '-', ch == '.', ch == '@', ch == '$':
		return true
	case ch >= 0x80:
		return true
	}

	return false
}

// isLiteralTerminator returns true if the character ends a bare literal.
func isLiteralTerminator(ch byte) bool {
	return ch == ',' || ch == ')'
}
