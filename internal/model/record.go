package model

// RawLine is a single line read from an input, without its trailing newline.
type RawLine struct {
	Text   string
	Source string // originating file path, "-" for stdin
}

// RecordKind tells structured records from opaque ones.
type RecordKind int

const (
	// Opaque records are lines that are not a JSON object; they are passed through or dropped.
	Opaque RecordKind = iota
	// Structured records hold a parsed JSON object.
	Structured
)

func (k RecordKind) String() string {
	if k == Structured {
		return "structured"
	}

	return "opaque"
}

// Record is the parse result of one input line.
type Record struct {
	Kind   RecordKind
	Object Value  // set for Structured records
	Line   string // original line text
	Source string
}

// IsStructured reports whether the record holds a parsed object.
func (r Record) IsStructured() bool {
	return r.Kind == Structured
}
