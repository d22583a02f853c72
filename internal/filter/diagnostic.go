package filter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	diagnosticRenderer = newDiagnosticRenderer()

	styleArrow = diagnosticRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	styleCaret = diagnosticRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleHint  = diagnosticRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

func newDiagnosticRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)

	return r
}

// FormatDiagnostic produces a multi-line error message pointing at the offending part
// of the query. filterIndex is the position of the query among several --filter flags,
// or a negative number when there is only one.
func FormatDiagnostic(err ParseError, filterIndex int, useColor bool) string {
	var sb strings.Builder

	paint := func(style lipgloss.Style, s string) string {
		if !useColor {
			return s
		}

		return style.Render(s)
	}

	fmt.Fprintf(&sb, "Filter parsing error: %s\n", err.Kind)

	arrow := paint(styleArrow, " --> ")
	if filterIndex >= 0 {
		fmt.Fprintf(&sb, "%s--filter[%d] '%s'\n", arrow, filterIndex, err.Query)
	} else {
		fmt.Fprintf(&sb, "%s--filter '%s'\n", arrow, err.Query)
	}

	sb.WriteString("\n")

	const indent = "     "

	fmt.Fprintf(&sb, "%s%s\n", indent, err.Query)

	offset := min(max(err.Offset, 0), len(err.Query))
	spaces := strings.Repeat(" ", lipgloss.Width(err.Query[:offset]))
	carets := strings.Repeat("^", max(lipgloss.Width(err.Token), 1))

	fmt.Fprintf(&sb, "%s%s%s %s\n", indent, spaces, paint(styleCaret, carets), err.Detail)

	if hint := GetHint(err); hint != "" {
		fmt.Fprintf(&sb, "\n  %s %s\n", paint(styleHint, "hint:"), hint)
	}

	return sb.String()
}
