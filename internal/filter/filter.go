package filter

import (
	"github.com/simao/jaxe/internal/model"
)

// Filter represents a parsed filter query that can be evaluated against records.
type Filter struct {
	expr          Expression
	originalQuery string
}

// Parse parses a filter query string and returns a Filter object.
// Returns a ParseError if the query cannot be parsed.
func Parse(filterString string) (*Filter, error) {
	lexer := NewLexer(filterString)
	parser := NewParser(lexer)

	expr, err := parser.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &Filter{
		expr:          expr,
		originalQuery: filterString,
	}, nil
}

// MustParse is like Parse but panics if the query cannot be parsed.
func MustParse(filterString string) *Filter {
	f, err := Parse(filterString)
	if err != nil {
		panic(err)
	}

	return f
}

// Match reports whether record satisfies the filter.
func (f *Filter) Match(record model.Value) bool {
	return Evaluate(f.expr, record)
}

// String returns the original filter query string.
func (f *Filter) String() string {
	return f.originalQuery
}

// Expression returns the parsed AST expression.
func (f *Filter) Expression() Expression {
	return f.expr
}
