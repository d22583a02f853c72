package filter_test

import (
	"testing"

	"github.com/simao/jaxe/internal/filter"
	"github.com/simao/jaxe/internal/keypath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ValidExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expected filter.Expression
		name     string
		input    string
	}{
		{
			name:     "equality with number",
			input:    "http_status == 204",
			expected: &filter.EqualsExpression{Path: keypath.Path{"http_status"}, Value: "204"},
		},
		{
			name:     "inequality",
			input:    "level != DEBUG",
			expected: &filter.NotEqualsExpression{Path: keypath.Path{"level"}, Value: "DEBUG"},
		},
		{
			name:     "bare literal with spaces",
			input:    "msg ==   http request  ",
			expected: &filter.EqualsExpression{Path: keypath.Path{"msg"}, Value: "http request"},
		},
		{
			name:     "no whitespace",
			input:    "a.b==c",
			expected: &filter.EqualsExpression{Path: keypath.Path{"a", "b"}, Value: "c"},
		},
		{
			name:  "contains with nested path",
			input: "contains(http.path, /api/v1)",
			expected: &filter.ContainsExpression{
				Path:  keypath.Path{"http", "path"},
				Value: "/api/v1",
			},
		},
		{
			name:     "contains with quoted value",
			input:    `contains(msg, "a, b)")`,
			expected: &filter.ContainsExpression{Path: keypath.Path{"msg"}, Value: "a, b)"},
		},
		{
			name:     "exists",
			input:    "exists( error.stack )",
			expected: &filter.ExistsExpression{Path: keypath.Path{"error", "stack"}},
		},
		{
			name:  "nested calls",
			input: "and(level == ERROR, not(contains(logger, health)))",
			expected: &filter.AndExpression{Operands: []filter.Expression{
				&filter.EqualsExpression{Path: keypath.Path{"level"}, Value: "ERROR"},
				&filter.NotExpression{Operand: &filter.ContainsExpression{
					Path:  keypath.Path{"logger"},
					Value: "health",
				}},
			}},
		},
		{
			name:  "or of three",
			input: "or(a == 1, b == 2, exists(c))",
			expected: &filter.OrExpression{Operands: []filter.Expression{
				&filter.EqualsExpression{Path: keypath.Path{"a"}, Value: "1"},
				&filter.EqualsExpression{Path: keypath.Path{"b"}, Value: "2"},
				&filter.ExistsExpression{Path: keypath.Path{"c"}},
			}},
		},
		{
			name:     "keyword as a path",
			input:    "and == x",
			expected: &filter.EqualsExpression{Path: keypath.Path{"and"}, Value: "x"},
		},
		{
			name:     "quoted empty value",
			input:    `msg == ""`,
			expected: &filter.EqualsExpression{Path: keypath.Path{"msg"}, Value: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := filter.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.Expression())
			assert.Equal(t, tt.input, f.String())
		})
	}
}

func TestParser_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		token  string
		kind   filter.ErrorKind
		offset int
	}{
		{name: "empty", input: "", kind: filter.ErrorKindUnexpectedEOF, offset: 0},
		{name: "blank", input: "   ", kind: filter.ErrorKindUnexpectedEOF, offset: 3},
		{name: "unclosed call", input: "and(foo", kind: filter.ErrorKindUnexpectedEOF, offset: 7},
		{name: "single equals", input: "level = INFO", token: "=", kind: filter.ErrorKindUnexpectedToken, offset: 6},
		{name: "bang alone", input: "level ! INFO", token: "!", kind: filter.ErrorKindUnexpectedToken, offset: 6},
		{name: "unknown function", input: "foo(a == b)", token: "foo", kind: filter.ErrorKindUnknownFunction, offset: 0},
		{name: "keywords are case sensitive", input: "AND(a == b)", token: "AND", kind: filter.ErrorKindUnknownFunction, offset: 0},
		{name: "empty and", input: "and()", token: ")", kind: filter.ErrorKindUnexpectedToken, offset: 4},
		{name: "missing value", input: "a == ", kind: filter.ErrorKindUnexpectedEOF, offset: 5},
		{name: "missing value before comma", input: "and(a ==, b == c)", token: ",", kind: filter.ErrorKindUnexpectedToken, offset: 8},
		{name: "contains without value", input: "contains(a)", token: ")", kind: filter.ErrorKindUnexpectedToken, offset: 10},
		{name: "exists without path", input: "exists()", token: ")", kind: filter.ErrorKindUnexpectedToken, offset: 7},
		{name: "empty path segment", input: "exists(a..b)", token: "a..b", kind: filter.ErrorKindUnexpectedToken, offset: 7},
		{name: "trailing token", input: "not(a == 1))", token: ")", kind: filter.ErrorKindUnexpectedToken, offset: 11},
		{name: "not with two operands", input: "not(a == 1, b == 2)", token: ",", kind: filter.ErrorKindUnexpectedToken, offset: 10},
		{name: "path without operator", input: "level", kind: filter.ErrorKindUnexpectedEOF, offset: 5},
		{name: "unterminated quote", input: `msg == "abc`, token: `"abc`, kind: filter.ErrorKindUnexpectedEOF, offset: 7},
		{name: "operator first", input: "== x", token: "==", kind: filter.ErrorKindUnexpectedToken, offset: 0},
		{name: "nul byte after expression", input: "exists(a)\x00and(", token: "\x00", kind: filter.ErrorKindUnexpectedToken, offset: 9},
		{name: "nul byte in path position", input: "\x00exists(a)", token: "\x00", kind: filter.ErrorKindUnexpectedToken, offset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := filter.Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, f)

			perr, ok := filter.AsParseError(err)
			require.True(t, ok, "expected a ParseError, got %T", err)

			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, tt.offset, perr.Offset)
			assert.Equal(t, tt.token, perr.Token)
			assert.Equal(t, tt.input, perr.Query)
			assert.NotEmpty(t, perr.Detail)
		})
	}
}

func TestParser_NulBytesAreNotEndOfInput(t *testing.T) {
	t.Parallel()

	f, err := filter.Parse("a == b\x00garbage(")
	require.NoError(t, err)
	assert.Equal(t, &filter.EqualsExpression{Path: keypath.Path{"a"}, Value: "b\x00garbage("}, f.Expression())

	f, err = filter.Parse(`msg == "x` + "\x00" + `y"`)
	require.NoError(t, err)
	assert.Equal(t, &filter.EqualsExpression{Path: keypath.Path{"msg"}, Value: "x\x00y"}, f.Expression())
}

func TestParser_NoPartialExpression(t *testing.T) {
	t.Parallel()

	p := filter.NewParser(filter.NewLexer("and(a == 1, b ="))

	expr, err := p.ParseExpression()
	require.Error(t, err)
	assert.Nil(t, expr)
}

func TestParser_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"http_status == 204",
		"msg != http request",
		`contains(msg, "a, b")`,
		`contains(msg, "say \"hi\" \\o/")`,
		`msg == "  padded  "`,
		`msg == ""`,
		"exists(a.b.c)",
		"and(a == 1, or(b == 2, not(exists(c))))",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			first, err := filter.Parse(input)
			require.NoError(t, err)

			canonical := first.Expression().String()

			second, err := filter.Parse(canonical)
			require.NoError(t, err, "canonical form %q must parse", canonical)

			assert.Equal(t, first.Expression(), second.Expression())
			assert.Equal(t, canonical, second.Expression().String())
		})
	}
}

func TestParseError_Message(t *testing.T) {
	t.Parallel()

	_, err := filter.Parse("and(foo")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "unexpected end of filter at offset 7")
}

func TestCombine(t *testing.T) {
	t.Parallel()

	a := filter.MustParse("a == 1").Expression()
	b := filter.MustParse("b == 2").Expression()

	assert.Nil(t, filter.Combine())
	assert.Same(t, a, filter.Combine(a))
	assert.Equal(t, &filter.AndExpression{Operands: []filter.Expression{a, b}}, filter.Combine(a, b))
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `""`, filter.Describe(nil))
	assert.Equal(t, `"contains(msg, \"a, b\")"`, filter.Describe(filter.MustParse(`contains(msg,"a, b")`).Expression()))
}

func TestMustParse_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { filter.MustParse("and(") })
}
