package filter

import (
	"strings"

	"github.com/simao/jaxe/internal/keypath"
	"github.com/simao/jaxe/internal/model"
)

// Evaluate reports whether record matches expr. A nil expression matches everything.
// Evaluation never fails: every error is rejected when the query is parsed.
func Evaluate(expr Expression, record model.Value) bool {
	switch node := expr.(type) {
	case nil:
		return true
	case *EqualsExpression:
		return evaluateEquals(node.Path, node.Value, record)
	case *NotEqualsExpression:
		return !evaluateEquals(node.Path, node.Value, record)
	case *ContainsExpression:
		text, ok := textAt(record, node.Path)
		return ok && strings.Contains(text, node.Value)
	case *ExistsExpression:
		_, ok := keypath.Resolve(record, node.Path)
		return ok
	case *AndExpression:
		for _, operand := range node.Operands {
			if !Evaluate(operand, record) {
				return false
			}
		}

		return true
	case *OrExpression:
		for _, operand := range node.Operands {
			if Evaluate(operand, record) {
				return true
			}
		}

		return false
	case *NotExpression:
		return !Evaluate(node.Operand, record)
	}

	return false
}

func evaluateEquals(path keypath.Path, value string, record model.Value) bool {
	text, ok := textAt(record, path)
	return ok && text == value
}

// textAt resolves path and returns the string form of the value found there.
func textAt(record model.Value, path keypath.Path) (string, bool) {
	value, ok := keypath.Resolve(record, path)
	if !ok {
		return "", false
	}

	return value.Text()
}
