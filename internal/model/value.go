package model

import (
	"strconv"

	"github.com/tidwall/pretty"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

var kindNames = map[Kind]string{
	NullKind:   "null",
	BoolKind:   "bool",
	NumberKind: "number",
	StringKind: "string",
	ArrayKind:  "array",
	ObjectKind: "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Fields is an object body: keys in the order they appeared in the input.
type Fields = orderedmap.OrderedMap[string, Value]

// Value is one node of a parsed document. It is immutable once built.
// raw holds the exact input text of the node, which keeps number literals
// and compact renderings faithful to the input.
type Value struct {
	kind  Kind
	raw   string
	str   string
	b     bool
	items []Value
	obj   *Fields
}

// NewNull returns the null value.
func NewNull() Value {
	return Value{kind: NullKind, raw: "null"}
}

// NewBool returns a boolean value.
func NewBool(b bool) Value {
	return Value{kind: BoolKind, raw: strconv.FormatBool(b), b: b}
}

// NewNumber returns a number whose textual form is literal, e.g. "204" or "1.5e3".
func NewNumber(literal string) Value {
	return Value{kind: NumberKind, raw: literal}
}

// NewString returns a string value. raw is the quoted input form of s.
func NewString(s, raw string) Value {
	return Value{kind: StringKind, raw: raw, str: s}
}

// NewArray returns an array value. raw is the input text of the whole array.
func NewArray(items []Value, raw string) Value {
	return Value{kind: ArrayKind, raw: raw, items: items}
}

// NewObject returns an object value. raw is the input text of the whole object.
func NewObject(fields *Fields, raw string) Value {
	if fields == nil {
		fields = orderedmap.New[string, Value]()
	}

	return Value{kind: ObjectKind, raw: raw, obj: fields}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == NullKind
}

func (v Value) IsObject() bool {
	return v.kind == ObjectKind
}

func (v Value) IsArray() bool {
	return v.kind == ArrayKind
}

func (v Value) IsString() bool {
	return v.kind == StringKind
}

func (v Value) IsNumber() bool {
	return v.kind == NumberKind
}

// Bool returns the boolean held by a bool value.
func (v Value) Bool() bool {
	return v.b
}

// Items returns the elements of an array value.
func (v Value) Items() []Value {
	return v.items
}

// Raw returns the input text of the value.
func (v Value) Raw() string {
	return v.raw
}

// Str returns the decoded string of a string value and "" for anything else.
func (v Value) Str() string {
	return v.str
}

// Get looks up key in an object. It reports false for missing keys and non-objects.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != ObjectKind {
		return Value{}, false
	}

	return v.obj.Get(key)
}

// Keys returns the keys of an object in input order.
func (v Value) Keys() []string {
	if v.kind != ObjectKind {
		return nil
	}

	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// Len returns the number of fields of an object or items of an array.
func (v Value) Len() int {
	switch v.kind {
	case ObjectKind:
		return v.obj.Len()
	case ArrayKind:
		return len(v.items)
	case NullKind, BoolKind, NumberKind, StringKind:
		return 0
	}

	return 0
}

// Text returns the string form used for comparisons: the string itself, the number
// literal, or "true"/"false". Null, arrays and objects have no string form.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case StringKind:
		return v.str, true
	case NumberKind, BoolKind:
		return v.raw, true
	case NullKind, ArrayKind, ObjectKind:
		return "", false
	}

	return "", false
}

// Compact returns the compact JSON text of the value, keeping the input key order.
func (v Value) Compact() string {
	switch v.kind {
	case ArrayKind, ObjectKind:
		return string(pretty.Ugly([]byte(v.raw)))
	case NullKind, BoolKind, NumberKind, StringKind:
		return v.raw
	}

	return v.raw
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.raw == "" {
		return []byte("null"), nil
	}

	return []byte(v.Compact()), nil
}
