package filter

import (
	"fmt"

	"github.com/simao/jaxe/internal/errors"
)

// ErrorKind categorizes parse errors.
type ErrorKind int

const (
	// ErrorKindUnexpectedToken is reported for a token that cannot appear at its position.
	ErrorKindUnexpectedToken ErrorKind = iota
	// ErrorKindUnexpectedEOF is reported when the query ends before the expression is complete.
	ErrorKindUnexpectedEOF
	// ErrorKindUnknownFunction is reported for a call to a name other than and, or, not, contains, exists.
	ErrorKindUnknownFunction
)

var errorKindNames = map[ErrorKind]string{
	ErrorKindUnexpectedToken: "unexpected token",
	ErrorKindUnexpectedEOF:   "unexpected end of filter",
	ErrorKindUnknownFunction: "unknown function",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}

	return "parse error"
}

// ParseError represents an error that occurred during parsing.
// No partial expression is ever returned alongside it.
type ParseError struct {
	Query  string // Original filter query
	Token  string // The offending token, empty at end of input
	Detail string
	Kind   ErrorKind
	Offset int // Byte offset of the offending token in Query
	Length int // Width of the offending token, for underlining
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

// NewParseError creates a new ParseError for the given token.
func NewParseError(kind ErrorKind, detail, query string, tok Token) error {
	return errors.New(ParseError{
		Kind:   kind,
		Detail: detail,
		Query:  query,
		Token:  tok.Literal,
		Offset: tok.Position,
		Length: tok.Length,
	})
}

// AsParseError extracts a ParseError from err.
func AsParseError(err error) (ParseError, bool) {
	var perr ParseError
	if errors.As(err, &perr) {
		return perr, true
	}

	return ParseError{}, false
}
