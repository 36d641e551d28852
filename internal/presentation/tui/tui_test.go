package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFieldColor(t *testing.T) {
	assert.Equal(t, "#4ade80", FieldColor(domain.KindDualPrompt, domain.FieldPositive))
	assert.Equal(t, "#f87171", FieldColor(domain.KindDualPrompt, domain.FieldNegative))
	assert.Equal(t, "#c0c0c0", FieldColor(domain.KindSinglePrompt, domain.FieldPrompt))
	assert.Equal(t, "#a855f7", FieldColor(domain.KindWildcard, domain.FieldWildcardValues))
	assert.Equal(t, "", FieldColor(domain.KindCombiner, "string_1"))
	assert.Equal(t, "", FieldColor("Nope", "x"))
}

func TestFrame(t *testing.T) {
	out := Frame(domain.KindSinglePrompt, domain.FieldPrompt, "a cat\nsitting on a very long fence", 16)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Contains(t, lines[0], "prompt")
	assert.Contains(t, out, "a cat")
	assert.Contains(t, out, "sitting on a ")
	assert.Len(t, lines, 5, "top, three wrapped lines, bottom")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{""}, wrap("", 5))
	assert.Equal(t, []string{"abcde", "f", "", "g"}, wrap("abcdef\n\ng", 5))
}

func TestRecordMarkdown(t *testing.T) {
	md := RecordMarkdown(&domain.Record{
		Name:     "portrait",
		Type:     domain.TypeDualPrompt,
		Positive: "a {wildcard_who}",
		Negative: "{wildcard_bad}",
		Created:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, md, "# portrait")
	assert.Contains(t, md, "2026-03-01 10:00")
	assert.Contains(t, md, "- `wildcard_bad`\n- `wildcard_who`")

	md = RecordMarkdown(&domain.Record{Name: "c", Type: domain.TypeWildcard, Values: []string{"red", "blue"}})
	assert.Contains(t, md, "## Values (2)")
	assert.Contains(t, md, "- `blue`")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
