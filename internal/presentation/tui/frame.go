package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// FieldColor returns the border colour of a node field, empty when the field
// has none.
func FieldColor(kind domain.NodeKind, field string) string {
	spec, err := domain.LookupKind(kind)
	if err != nil {
		return ""
	}
	return spec.Colors[field]
}

// Frame draws text inside a box whose border takes the field's colour, the
// way the editor outlines its text widgets. Width is the inner width.
func Frame(kind domain.NodeKind, field, text string, width int) string {
	if width < 10 {
		width = 10
	}
	p := termenv.ColorProfile()
	paint := func(s string) string {
		if c := FieldColor(kind, field); c != "" {
			return termenv.String(s).Foreground(p.Color(c)).String()
		}
		return s
	}

	title := " " + field + " "
	if len(title) > width {
		title = title[:width]
	}

	var b strings.Builder
	b.WriteString(paint("┌" + title + strings.Repeat("─", width-len(title)) + "┐"))
	b.WriteByte('\n')
	for _, line := range wrap(text, width-2) {
		fmt.Fprintf(&b, "%s %-*s %s\n", paint("│"), width-2, line, paint("│"))
	}
	b.WriteString(paint("└" + strings.Repeat("─", width) + "┘"))
	b.WriteByte('\n')
	return b.String()
}

// wrap breaks text at width runes, keeping explicit newlines.
func wrap(text string, width int) []string {
	if text == "" {
		return []string{""}
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return out
}
