package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseValueList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"Empty", "", nil},
		{"Blank", "  \n ", nil},
		{"Single Value", "  red  ", []string{"red"}},
		{"Comma", "red, green ,blue", []string{"red", "green", "blue"}},
		{"Pipe Beats Comma", "red, dark|green", []string{"red, dark", "green"}},
		{"Newlines", "red\n\ngreen\nblue", []string{"red", "green", "blue"}},
		{"Newline Lines Split Further", "a|b\nc, d\ne", []string{"a", "b", "c", "d", "e"}},
		{"Parentheses Grouped", "(red, blue), green", []string{"(red, blue)", "green"}},
		{"Curly Grouped", "{a|b}|c", []string{"{a|b}", "c"}},
		{"Wildcard Reference Not Grouped", "{wildcard_x}, y", []string{"{wildcard_x}", "y"}},
		{"Nested Groups", "(a, (b, c)), d", []string{"(a, (b, c))", "d"}},
		{"Drops Empty Entries", "a,,b, ,", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseValueList(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseValueList(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestFormatDynamicPrompts(t *testing.T) {
	if got := FormatDynamicPrompts(nil); got != "" {
		t.Errorf("FormatDynamicPrompts(nil) = %q", got)
	}
	if got := FormatDynamicPrompts([]string{"a"}); got != "a" {
		t.Errorf("FormatDynamicPrompts([a]) = %q", got)
	}
	if got := FormatDynamicPrompts([]string{"a", "b", "c"}); got != "{a|b|c}" {
		t.Errorf("FormatDynamicPrompts([a b c]) = %q", got)
	}
}

func TestCountAndValueAt(t *testing.T) {
	text := "red\ngreen\nblue"
	if n := CountValues(text); n != 3 {
		t.Errorf("CountValues = %d, want 3", n)
	}
	if v := ValueAt(text, 1); v != "green" {
		t.Errorf("ValueAt(1) = %q", v)
	}
	if v := ValueAt(text, 3); v != "" {
		t.Errorf("ValueAt(3) = %q, want empty", v)
	}
	if v := ValueAt(text, -1); v != "" {
		t.Errorf("ValueAt(-1) = %q, want empty", v)
	}
}
