package model

import (
	"github.com/simao/jaxe/internal/errors"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrInvalidDocument is returned by Decode for text that is not a single JSON document.
var ErrInvalidDocument = errors.New("invalid JSON document")

// Decode parses text as one complete JSON document.
// Object keys keep their input order; a repeated key keeps its first position and its last value.
func Decode(text string) (Value, error) {
	if !gjson.Valid(text) {
		return Value{}, ErrInvalidDocument
	}

	return fromResult(gjson.Parse(text)), nil
}

// MustDecode is like Decode but panics on invalid input. Intended for tests and literals.
func MustDecode(text string) Value {
	v, err := Decode(text)
	if err != nil {
		panic(err)
	}

	return v
}

func fromResult(res gjson.Result) Value {
	switch res.Type {
	case gjson.Null:
		return NewNull()
	case gjson.False:
		return NewBool(false)
	case gjson.True:
		return NewBool(true)
	case gjson.Number:
		return NewNumber(res.Raw)
	case gjson.String:
		return NewString(res.Str, res.Raw)
	case gjson.JSON:
		if res.IsArray() {
			var items []Value

			res.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})

			return NewArray(items, res.Raw)
		}

		fields := orderedmap.New[string, Value]()

		res.ForEach(func(key, item gjson.Result) bool {
			fields.Set(key.Str, fromResult(item))
			return true
		})

		return NewObject(fields, res.Raw)
	}

	return NewNull()
}
