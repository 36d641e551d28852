package domain

import (
	"fmt"
	"time"
)

// Category groups saved records; each category has its own namespace of names.
type Category string

const (
	CategoryDual     Category = "dual_prompts"
	CategorySingle   Category = "single_prompts"
	CategoryWildcard Category = "wildcards"
)

// Categories lists every library category.
var Categories = []Category{CategoryDual, CategorySingle, CategoryWildcard}

// Record type tags, as written into saved documents.
const (
	TypeDualPrompt   = "dual_prompt"
	TypeSinglePrompt = "single_prompt"
	TypeWildcard     = "wildcard"
)

// ParseCategory accepts either a category ("dual_prompts") or its short
// route form ("dual").
func ParseCategory(s string) (Category, error) {
	switch s {
	case "dual", string(CategoryDual):
		return CategoryDual, nil
	case "single", string(CategorySingle):
		return CategorySingle, nil
	case "wildcard", string(CategoryWildcard):
		return CategoryWildcard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// RecordType returns the type tag stored with records of the category.
func (c Category) RecordType() string {
	switch c {
	case CategoryDual:
		return TypeDualPrompt
	case CategorySingle:
		return TypeSinglePrompt
	case CategoryWildcard:
		return TypeWildcard
	}
	return ""
}

// Record is a saved prompt or wildcard list. Only the fields of its category
// are populated.
type Record struct {
	Name string `json:"name" mapstructure:"name"`
	Type string `json:"type" mapstructure:"type"`

	// Dual prompts.
	Positive string `json:"positive,omitempty" mapstructure:"positive"`
	Negative string `json:"negative,omitempty" mapstructure:"negative"`

	// Single prompts.
	Prompt string `json:"prompt,omitempty" mapstructure:"prompt"`

	// Wildcard lists.
	RawText string   `json:"raw_text,omitempty" mapstructure:"raw_text"`
	Values  []string `json:"values,omitempty" mapstructure:"values"`

	Created time.Time `json:"created" mapstructure:"-"`
}

// Category derives the record's category from its type tag.
func (r *Record) Category() (Category, error) {
	switch r.Type {
	case TypeDualPrompt:
		return CategoryDual, nil
	case TypeSinglePrompt:
		return CategorySingle, nil
	case TypeWildcard:
		return CategoryWildcard, nil
	}
	return "", fmt.Errorf("%w: record type %q", ErrUnknownCategory, r.Type)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.Values != nil {
		c.Values = append([]string(nil), r.Values...)
	}
	return &c
}
