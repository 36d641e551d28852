package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// WildcardPrefix is the namespace prefix of wildcard references and of the
// dynamic ports derived from them.
const WildcardPrefix = "wildcard_"

var (
	wildcardPattern    = regexp.MustCompile(`\{wildcard_([a-zA-Z0-9_]+)\}`)
	placeholderPattern = regexp.MustCompile(`\{wildcard_([0-9]+)\}`)
	wildcardNameRule   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// ExtractWildcards returns the distinct wildcard references found in texts,
// normalized to "wildcard_<name>" and ordered by first occurrence.
// Texts are scanned as one document joined by newlines; a reference has to
// appear intact inside a single text to match.
func ExtractWildcards(texts ...string) []string {
	joined := strings.Join(texts, "\n")
	if joined == "" {
		return nil
	}

	matches := wildcardPattern.FindAllStringSubmatch(joined, -1)
	if len(matches) == 0 {
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, WildcardPrefix+m[1])
	}
	return lo.Uniq(names)
}

// CombinedWildcards returns the sorted union of the references in the
// positive and negative texts.
func CombinedWildcards(positive, negative string) []string {
	names := lo.Union(ExtractWildcards(positive), ExtractWildcards(negative))
	sort.Strings(names)
	return names
}

// MissingWildcards lists references in text that have no entry in available.
func MissingWildcards(text string, available map[string]string) []string {
	return lo.Filter(ExtractWildcards(text), func(name string, _ int) bool {
		_, ok := available[name]
		return !ok
	})
}

// NextPlaceholder returns the next free numeric placeholder for text.
// Only "{wildcard_<digits>}" references take part in numbering; the result
// is zero-padded to two digits, starting at "{wildcard_01}".
func NextPlaceholder(text string) string {
	highest := 0
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// Digit runs too long for an int cannot be advanced meaningfully.
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("{%s%02d}", WildcardPrefix, highest+1)
}

// ReplaceWildcards substitutes references in text with values.
// Keys may be given with or without the "wildcard_" prefix. Any reference
// left without a value afterwards is replaced by the empty string.
func ReplaceWildcards(text string, values map[string]string) string {
	result := text
	for name, value := range values {
		if !strings.HasPrefix(name, WildcardPrefix) {
			name = WildcardPrefix + name
		}
		result = strings.ReplaceAll(result, "{"+name+"}", value)
	}
	return wildcardPattern.ReplaceAllString(result, "")
}

// ValidateWildcardName reports whether name (without prefix) is usable in a
// reference.
func ValidateWildcardName(name string) bool {
	return wildcardNameRule.MatchString(name)
}
