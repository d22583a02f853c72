package filter

// TokenType represents the type of a token.
type TokenType int

const (
	// ILLEGAL represents an unknown token or an unterminated quoted literal.
	ILLEGAL TokenType = iota
	// EOF represents the end of input.
	EOF

	// IDENT represents a path or a function name (e.g. "http.status", "contains").
	IDENT
	// STRING represents a double-quoted literal with the quotes removed.
	STRING
	// LITERAL represents a bare literal, read up to the next ',' or ')' and trimmed.
	LITERAL

	// EQ represents the equality operator (==).
	EQ
	// NEQ represents the inequality operator (!=).
	NEQ
	// LPAREN represents '('.
	LPAREN
	// RPAREN represents ')'.
	RPAREN
	// COMMA represents ','.
	COMMA
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	IDENT:   "IDENT",
	STRING:  "STRING",
	LITERAL: "LITERAL",
	EQ:      "==",
	NEQ:     "!=",
	LPAREN:  "(",
	RPAREN:  ")",
	COMMA:   ",",
}

// String returns a string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "UNKNOWN"
}

// Token represents a lexical token with its type, literal value and byte offset.
type Token struct {
	Literal  string
	Type     TokenType
	Position int
	// Length is the number of input bytes the token spans, quotes and escapes included.
	Length int
}

// NewToken creates a new token spanning len(literal) bytes.
func NewToken(tokenType TokenType, literal string, position int) Token {
	return Token{
		Type:     tokenType,
		Literal:  literal,
		Position: position,
		Length:   len(literal),
	}
}
