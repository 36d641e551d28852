package domain

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		current    []string
		required   []string
		wantAdd    []string
		wantRemove []string
	}{
		{
			name:     "Initial Load (No Ports)",
			current:  nil,
			required: []string{"wildcard_a", "wildcard_b"},
			wantAdd:  []string{"wildcard_a", "wildcard_b"},
		},
		{
			name:     "Add New Reference",
			current:  []string{"wildcard_old"},
			required: []string{"wildcard_new", "wildcard_old"},
			wantAdd:  []string{"wildcard_new"},
		},
		{
			name:       "Remove Stale Port",
			current:    []string{"wildcard_a", "wildcard_b"},
			required:   []string{"wildcard_a"},
			wantRemove: []string{"wildcard_b"},
		},
		{
			name:       "Swap",
			current:    []string{"wildcard_a"},
			required:   []string{"wildcard_b"},
			wantAdd:    []string{"wildcard_b"},
			wantRemove: []string{"wildcard_a"},
		},
		{
			name:     "No Changes",
			current:  []string{"wildcard_a", "wildcard_b"},
			required: []string{"wildcard_b", "wildcard_a"},
		},
		{
			name:     "Duplicate Inputs Collapse",
			current:  []string{"wildcard_a", "wildcard_a"},
			required: []string{"wildcard_a", "wildcard_c", "wildcard_c"},
			wantAdd:  []string{"wildcard_c"},
		},
		{
			name:       "Everything Removed",
			current:    []string{"wildcard_a"},
			required:   nil,
			wantRemove: []string{"wildcard_a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.current, tt.required)

			if !sameSet(got.ToAdd, tt.wantAdd) {
				t.Errorf("Reconcile().ToAdd = %v, want %v", got.ToAdd, tt.wantAdd)
			}
			if !sameSet(got.ToRemove, tt.wantRemove) {
				t.Errorf("Reconcile().ToRemove = %v, want %v", got.ToRemove, tt.wantRemove)
			}
			if got.IsEmpty() != (len(tt.wantAdd) == 0 && len(tt.wantRemove) == 0) {
				t.Errorf("Reconcile().IsEmpty() = %v", got.IsEmpty())
			}
		})
	}
}

func TestReconcileIdempotent(t *testing.T) {
	texts := []string{"{wildcard_a} and {wildcard_b}", "{wildcard_c} {wildcard_a}"}
	ports := []string{"wildcard_stale", "wildcard_a"}

	first := Reconcile(ports, ExtractWildcards(texts...))
	if first.IsEmpty() {
		t.Fatal("expected first pass to produce an edit")
	}
	ports = first.Apply(ports)

	second := Reconcile(ports, ExtractWildcards(texts...))
	if !second.IsEmpty() {
		t.Errorf("second pass should be empty, got %+v", second)
	}
	if !sameSet(ports, []string{"wildcard_a", "wildcard_b", "wildcard_c"}) {
		t.Errorf("ports after apply = %v", ports)
	}
}

func TestPortEditApply(t *testing.T) {
	edit := PortEdit{ToAdd: []string{"wildcard_c", "wildcard_a"}, ToRemove: []string{"wildcard_b"}}
	got := edit.Apply([]string{"wildcard_a", "wildcard_b"})
	want := []string{"wildcard_a", "wildcard_c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestDynamicPorts(t *testing.T) {
	names := []string{"positive_prefix", "wildcard_a", "negative_suffix", "wildcard_b", "string_1"}

	got := DynamicPorts(names, WildcardPrefix)
	if strings.Join(got, ",") != "wildcard_a,wildcard_b" {
		t.Errorf("DynamicPorts(wildcard_) = %v", got)
	}

	got = DynamicPorts(names, CombinerPrefix)
	if strings.Join(got, ",") != "string_1" {
		t.Errorf("DynamicPorts(string_) = %v", got)
	}
}

func TestPortEditJSONSerialization(t *testing.T) {
	t.Run("Empty Lists Omitted", func(t *testing.T) {
		bytes, _ := json.Marshal(Reconcile([]string{"wildcard_a"}, []string{"wildcard_a"}))
		if strings.Contains(string(bytes), "to_add") || strings.Contains(string(bytes), "to_remove") {
			t.Errorf("JSON should omit empty lists, got: %s", string(bytes))
		}
	})

	t.Run("Additions Present", func(t *testing.T) {
		bytes, _ := json.Marshal(Reconcile(nil, []string{"wildcard_x"}))
		if !strings.Contains(string(bytes), `"to_add":["wildcard_x"]`) {
			t.Errorf("JSON should contain to_add, got: %s", string(bytes))
		}
	})
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
