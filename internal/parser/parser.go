package parser

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/model"
)

// Parser converts a raw input line into a Record.
type Parser interface {
	Parse(line model.RawLine) model.Record
}

// ---------------------------------------------------------------------------
// JSON Parser
// ---------------------------------------------------------------------------

// JSONParser treats every line as a complete JSON document.
// Lines that are not valid JSON, or whose top level is not an object, become opaque.
type JSONParser struct {
	log zerolog.Logger
}

func NewJSONParser(log zerolog.Logger) *JSONParser { return &JSONParser{log: log} }

func (p *JSONParser) Parse(line model.RawLine) model.Record {
	record := opaque(line)

	// Cheap rejection of plain text before handing the line to the decoder.
	if !looksLikeObject(line.Text) {
		p.log.Debug().Str("source", line.Source).Msg("line is not structured")
		return record
	}

	value, err := model.Decode(line.Text)
	if err != nil {
		p.log.Debug().Str("source", line.Source).Err(err).Msg("line is not structured")
		return record
	}

	if !value.IsObject() {
		p.log.Debug().Str("source", line.Source).Stringer("kind", value.Kind()).Msg("top level is not an object")
		return record
	}

	record.Kind = model.Structured
	record.Object = value

	return record
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// opaque returns the record for a line that carries no structure.
func opaque(line model.RawLine) model.Record {
	return model.Record{
		Kind:   model.Opaque,
		Line:   line.Text,
		Source: line.Source,
	}
}

// looksLikeObject reports whether the first non-space byte opens an object.
func looksLikeObject(text string) bool {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
