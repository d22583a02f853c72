package filter

import (
	"strconv"
	"strings"

	"github.com/simao/jaxe/internal/keypath"
)

// Expression is the interface that all AST nodes must implement.
type Expression interface {
	// expressionNode is a marker method to distinguish expression nodes.
	expressionNode()
	// String returns the expression in filter syntax. Parsing it yields an equal tree.
	String() string
}

// EqualsExpression matches records whose value at Path has the string form Value.
type EqualsExpression struct {
	Value string
	Path  keypath.Path
}

func (e *EqualsExpression) expressionNode() {}
func (e *EqualsExpression) String() string {
	return e.Path.String() + " == " + quoteLiteral(e.Value)
}

// NotEqualsExpression is the negation of EqualsExpression; an absent path counts as not equal.
type NotEqualsExpression struct {
	Value string
	Path  keypath.Path
}

func (e *NotEqualsExpression) expressionNode() {}
func (e *NotEqualsExpression) String() string {
	return e.Path.String() + " != " + quoteLiteral(e.Value)
}

// ContainsExpression matches records whose value at Path contains Value as a substring.
type ContainsExpression struct {
	Value string
	Path  keypath.Path
}

func (e *ContainsExpression) expressionNode() {}
func (e *ContainsExpression) String() string {
	return "contains(" + e.Path.String() + ", " + quoteLiteral(e.Value) + ")"
}

// ExistsExpression matches records where Path resolves, null included.
type ExistsExpression struct {
	Path keypath.Path
}

func (e *ExistsExpression) expressionNode() {}
func (e *ExistsExpression) String() string  { return "exists(" + e.Path.String() + ")" }

// AndExpression matches when every operand matches. With no operands it always matches.
type AndExpression struct {
	Operands []Expression
}

func (e *AndExpression) expressionNode() {}
func (e *AndExpression) String() string  { return "and(" + joinExpressions(e.Operands) + ")" }

// OrExpression matches when any operand matches. With no operands it never matches.
type OrExpression struct {
	Operands []Expression
}

func (e *OrExpression) expressionNode() {}
func (e *OrExpression) String() string  { return "or(" + joinExpressions(e.Operands) + ")" }

// NotExpression negates its operand.
type NotExpression struct {
	Operand Expression
}

func (e *NotExpression) expressionNode() {}
func (e *NotExpression) String() string  { return "not(" + e.Operand.String() + ")" }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, expr := range exprs {
		parts[i] = expr.String()
	}

	return strings.Join(parts, ", ")
}

// quoteLiteral returns value as it must be written in a query to read back unchanged.
func quoteLiteral(value string) string {
	needsQuotes := value == "" ||
		strings.ContainsAny(value, `,)"\`) ||
		strings.TrimSpace(value) != value

	if !needsQuotes {
		return value
	}

	var sb strings.Builder

	sb.WriteByte('"')

	for i := 0; i < len(value); i++ {
		if value[i] == '"' || value[i] == '\\' {
			sb.WriteByte('\\')
		}

		sb.WriteByte(value[i])
	}

	sb.WriteByte('"')

	return sb.String()
}

// Combine merges expressions into one: nil for none, the expression itself for one,
// and an AndExpression otherwise.
func Combine(exprs ...Expression) Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}

	return &AndExpression{Operands: exprs}
}

// Describe returns a short quoted description of expr for logs.
func Describe(expr Expression) string {
	if expr == nil {
		return `""`
	}

	return strconv.Quote(expr.String())
}
