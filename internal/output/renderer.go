package output

import (
	"bytes"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/muesli/termenv"
	"github.com/simao/jaxe/internal/model"
)

// Renderer turns a projection into one output line, without the trailing newline.
type Renderer interface {
	Render(p Projection) string
}

// ---------------------------------------------------------------------------
// Text Renderer (L|time|key=value ...)
// ---------------------------------------------------------------------------

// Styles are bound to a renderer with a fixed ANSI256 profile, whatever the terminal.
var (
	colorRenderer = newColorRenderer()

	styleTrace   = newStyle().Foreground(lipgloss.Color("5")) // magenta
	styleDebug   = newStyle().Foreground(lipgloss.Color("4")) // blue
	styleInfo    = newStyle().Foreground(lipgloss.Color("2")) // green
	styleWarn    = newStyle().Foreground(lipgloss.Color("3")) // yellow
	styleError   = newStyle().Foreground(lipgloss.Color("1")) // red
	styleKey     = newStyle().Foreground(lipgloss.Color("4"))
	styleEquals  = newStyle().Faint(true)
	styleNumeric = newStyle().Foreground(lipgloss.Color("1"))
)

func newColorRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI256)

	return r
}

func newStyle() lipgloss.Style {
	return colorRenderer.NewStyle().Inline(true).TabWidth(lipgloss.NoTabConversion)
}

// TextRenderer writes the level code, the time and the fields as key=value pairs.
type TextRenderer struct {
	colors bool
}

// NewTextRenderer returns a TextRenderer; colors enables ANSI escape sequences.
func NewTextRenderer(colors bool) *TextRenderer {
	return &TextRenderer{colors: colors}
}

func (r *TextRenderer) Render(p Projection) string {
	var sb strings.Builder

	if p.HasLevel() {
		sb.WriteString(r.paint(styleLevel(p.Level), p.Level))
		sb.WriteByte('|')
	}

	if p.HasTime() {
		sb.WriteString(textOf(p.Time))
		sb.WriteByte('|')
	}

	first := true

	for pair := oldest(p); pair != nil; pair = pair.Next() {
		if !first {
			sb.WriteByte(' ')
		}

		first = false

		sb.WriteString(r.paint(styleKey, escapeLineBreaks(pair.Key)))
		sb.WriteString(r.paint(styleEquals, "="))

		text := textOf(pair.Value)
		if isNumeric(pair.Value) {
			text = r.paint(styleNumeric, text)
		}

		sb.WriteString(text)
	}

	return sb.String()
}

func (r *TextRenderer) paint(style lipgloss.Style, s string) string {
	if !r.colors || s == "" {
		return s
	}

	return style.Render(s)
}

func styleLevel(code string) lipgloss.Style {
	switch code {
	case LevelTrace:
		return styleTrace
	case LevelDebug:
		return styleDebug
	case LevelInfo:
		return styleInfo
	case LevelWarn:
		return styleWarn
	default:
		return styleError
	}
}

// textOf renders a value for the text form: strings unquoted with line breaks
// escaped, everything else as compact JSON.
func textOf(v model.Value) string {
	if v.IsString() {
		return escapeLineBreaks(v.Str())
	}

	return v.Compact()
}

var lineBreakReplacer = strings.NewReplacer("\r", `\r`, "\n", `\n`)

func escapeLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}

	return lineBreakReplacer.Replace(s)
}

// isNumeric reports whether v is a number or a string made only of digits.
func isNumeric(v model.Value) bool {
	if v.IsNumber() {
		return true
	}

	if !v.IsString() || v.Str() == "" {
		return false
	}

	for i := 0; i < len(v.Str()); i++ {
		if c := v.Str()[i]; c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer writes each projection as a single compact JSON object: the promoted
// level and time under their original keys, then the selected fields.
type JSONRenderer struct{}

// NewJSONRenderer returns a Renderer that writes JSON lines.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Render(p Projection) string {
	var sb strings.Builder

	sb.WriteByte('{')

	first := true
	member := func(key string, value model.Value) {
		if !first {
			sb.WriteByte(',')
		}

		first = false

		sb.Write(encodeKey(key))
		sb.WriteByte(':')
		sb.WriteString(value.Compact())
	}

	if p.HasLevel() {
		member(p.LevelKey, p.LevelValue)
	}

	if p.HasTime() {
		member(p.TimeKey, p.Time)
	}

	for pair := oldest(p); pair != nil; pair = pair.Next() {
		member(pair.Key, pair.Value)
	}

	sb.WriteByte('}')

	return sb.String()
}

// encodeKey quotes a key as a JSON string. HTML characters are kept as they are,
// like in the values.
func encodeKey(key string) []byte {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(key); err != nil {
		return []byte(`""`)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}
