package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RecordMarkdown describes a saved record as markdown.
func RecordMarkdown(rec *domain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rec.Name)
	fmt.Fprintf(&b, "*%s*", rec.Type)
	if !rec.Created.IsZero() {
		fmt.Fprintf(&b, " · saved %s", rec.Created.Format("2006-01-02 15:04"))
	}
	b.WriteString("\n\n")

	section := func(title, body string) {
		fmt.Fprintf(&b, "## %s\n\n```\n%s\n```\n\n", title, body)
	}
	switch rec.Type {
	case domain.TypeDualPrompt:
		section("Positive", rec.Positive)
		section("Negative", rec.Negative)
		refs := domain.CombinedWildcards(rec.Positive, rec.Negative)
		writeRefs(&b, refs)
	case domain.TypeSinglePrompt:
		section("Prompt", rec.Prompt)
		writeRefs(&b, domain.ExtractWildcards(rec.Prompt))
	case domain.TypeWildcard:
		fmt.Fprintf(&b, "## Values (%d)\n\n", len(rec.Values))
		for _, v := range rec.Values {
			fmt.Fprintf(&b, "- `%s`\n", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeRefs(b *strings.Builder, refs []string) {
	if len(refs) == 0 {
		return
	}
	b.WriteString("## Wildcard inputs\n\n")
	for _, r := range refs {
		fmt.Fprintf(b, "- `%s`\n", r)
	}
	b.WriteString("\n")
}
