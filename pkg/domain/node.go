package domain

import "fmt"

// NodeKind identifies one of the editor node types.
type NodeKind string

// Supported node kinds.
const (
	// KindDualPrompt has a positive and a negative prompt field.
	KindDualPrompt NodeKind = "DualPromptDrafter"
	// KindSinglePrompt has one prompt field.
	KindSinglePrompt NodeKind = "SinglePromptDrafter"
	// KindWildcard holds a list of wildcard values.
	KindWildcard NodeKind = "Wildcard"
	// KindCombiner joins up to MaxCombinerInputs strings.
	KindCombiner NodeKind = "PromptCombiner"
)

// Text field names.
const (
	FieldPositive       = "positive_prompt"
	FieldNegative       = "negative_prompt"
	FieldPrompt         = "prompt"
	FieldWildcardValues = "wildcard_values"
)

// Combiner limits.
const (
	CombinerPrefix       = "string_"
	MinCombinerInputs    = 2
	MaxCombinerInputs    = 25
	DefaultCombinerInput = 2
)

// KindSpec describes how the editor treats a node kind.
type KindSpec struct {
	Kind        NodeKind `json:"kind"`
	DisplayName string   `json:"display_name"`

	// Fields lists the editable text fields scanned for wildcard references.
	Fields []string `json:"fields,omitempty"`

	// Inputs lists the static input ports the node always carries.
	Inputs []string `json:"inputs,omitempty"`

	// Namespace is the prefix of the node's dynamic ports, empty when the
	// node has none.
	Namespace string `json:"namespace,omitempty"`

	// Colors maps each field to its border color.
	Colors map[string]string `json:"colors,omitempty"`
}

var kinds = map[NodeKind]KindSpec{
	KindDualPrompt: {
		Kind:        KindDualPrompt,
		DisplayName: "Dual Prompts - PromptDrafter",
		Fields:      []string{FieldPositive, FieldNegative},
		Inputs:      []string{"positive_prefix", "positive_suffix", "negative_prefix", "negative_suffix"},
		Namespace:   WildcardPrefix,
		Colors:      map[string]string{FieldPositive: "#4ade80", FieldNegative: "#f87171"},
	},
	KindSinglePrompt: {
		Kind:        KindSinglePrompt,
		DisplayName: "Single Prompt - PromptDrafter",
		Fields:      []string{FieldPrompt},
		Inputs:      []string{"prefix", "suffix"},
		Namespace:   WildcardPrefix,
		Colors:      map[string]string{FieldPrompt: "#c0c0c0"},
	},
	KindWildcard: {
		Kind:        KindWildcard,
		DisplayName: "Wildcards - PromptDrafter",
		Fields:      []string{FieldWildcardValues},
		Colors:      map[string]string{FieldWildcardValues: "#a855f7"},
	},
	KindCombiner: {
		Kind:        KindCombiner,
		DisplayName: "String Combiner - PromptDrafter",
		Namespace:   CombinerPrefix,
	},
}

// Kinds returns the specs of every node kind, ordered by kind.
func Kinds() []KindSpec {
	return []KindSpec{kinds[KindCombiner], kinds[KindDualPrompt], kinds[KindSinglePrompt], kinds[KindWildcard]}
}

// LookupKind returns the spec of a node kind.
func LookupKind(kind NodeKind) (KindSpec, error) {
	spec, ok := kinds[kind]
	if !ok {
		return KindSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return spec, nil
}

// HasField reports whether field is one of the kind's text fields.
func (k KindSpec) HasField(field string) bool {
	for _, f := range k.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// CombinerPorts returns the input port names for a combiner with count inputs.
func CombinerPorts(count int) ([]string, error) {
	if count < MinCombinerInputs || count > MaxCombinerInputs {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidInputCount, count, MinCombinerInputs, MaxCombinerInputs)
	}
	names := make([]string, count)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", CombinerPrefix, i+1)
	}
	return names, nil
}
