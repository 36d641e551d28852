package domain

import (
	"regexp"
	"strings"
)

// Separator is placed between joined prompt fragments.
const Separator = ", "

var (
	multiSpace   = regexp.MustCompile(` +`)
	commaSpacing = regexp.MustCompile(`\s*,\s*`)
)

// StripCommas trims surrounding whitespace and commas from a fragment.
func StripCommas(text string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), ","))
}

// SmartJoin joins the non-blank fragments with ", ". Commas and whitespace at
// fragment edges are dropped first, so a boundary never doubles a comma and
// the result never starts or ends with a separator.
func SmartJoin(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if cleaned := StripCommas(f); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return strings.Join(parts, Separator)
}

// CombinePrompt wraps text with an optional prefix and suffix.
func CombinePrompt(text, prefix, suffix string) string {
	return SmartJoin(prefix, text, suffix)
}

// CleanPrompt collapses repeated spaces, normalizes comma spacing and drops a
// trailing comma.
func CleanPrompt(text string) string {
	if text == "" {
		return ""
	}
	text = multiSpace.ReplaceAllString(text, " ")
	text = commaSpacing.ReplaceAllString(text, Separator)
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, ",") {
		text = strings.TrimSpace(text[:len(text)-1])
	}
	return text
}

// ProcessPrompt combines text with prefix and suffix, then substitutes
// wildcard values.
func ProcessPrompt(text, prefix, suffix string, values map[string]string) string {
	combined := CombinePrompt(text, prefix, suffix)
	if len(values) == 0 {
		return combined
	}
	return ReplaceWildcards(combined, values)
}
