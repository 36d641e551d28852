package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	parenGroup = regexp.MustCompile(`\([^()]*\)`)
	curlyGroup = regexp.MustCompile(`\{[^{}]*\}`)
)

// ParseValueList splits wildcard list text into values.
//
// Newlines take priority: each non-empty line is split by "|" when it has
// one, otherwise by ",". Without newlines the whole text is split by "|",
// then by ",". Parenthesised groups and curly groups that are not wildcard
// references are kept intact as part of a single value.
func ParseValueList(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	protected, groups := protectGroups(text)

	var raw []string
	switch {
	case strings.Contains(protected, "\n"):
		for _, line := range strings.Split(protected, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			raw = append(raw, splitLine(line)...)
		}
	default:
		raw = splitLine(protected)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if restored := restoreGroups(v, groups); restored != "" {
			values = append(values, restored)
		}
	}
	return values
}

func splitLine(line string) []string {
	var parts []string
	switch {
	case strings.Contains(line, "|"):
		parts = strings.Split(line, "|")
	case strings.Contains(line, ","):
		parts = strings.Split(line, ",")
	default:
		parts = []string{line}
	}

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// protectGroups swaps bracketed groups for opaque tokens, innermost first.
func protectGroups(text string) (string, []string) {
	var groups []string
	token := func() string { return fmt.Sprintf("\x00%d\x00", len(groups)) }

	for {
		loc := parenGroup.FindStringIndex(text)
		if loc == nil {
			break
		}
		t := token()
		groups = append(groups, text[loc[0]:loc[1]])
		text = text[:loc[0]] + t + text[loc[1]:]
	}

	for {
		var loc []int
		for _, candidate := range curlyGroup.FindAllStringIndex(text, -1) {
			if !strings.HasPrefix(text[candidate[0]:], "{"+WildcardPrefix) {
				loc = candidate
				break
			}
		}
		if loc == nil {
			break
		}
		t := token()
		groups = append(groups, text[loc[0]:loc[1]])
		text = text[:loc[0]] + t + text[loc[1]:]
	}

	return text, groups
}

// restoreGroups undoes protectGroups. Later groups may contain earlier tokens,
// so they are expanded first.
func restoreGroups(text string, groups []string) string {
	for i := len(groups) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00%d\x00", i), groups[i])
	}
	return text
}

// FormatDynamicPrompts renders values in "{a|b|c}" form. A single value is
// returned as is.
func FormatDynamicPrompts(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return "{" + strings.Join(values, "|") + "}"
	}
}

// CountValues returns the number of values in text.
func CountValues(text string) int {
	return len(ParseValueList(text))
}

// ValueAt returns the value at index, or "" when out of range.
func ValueAt(text string, index int) string {
	values := ParseValueList(text)
	if index < 0 || index >= len(values) {
		return ""
	}
	return values[index]
}
