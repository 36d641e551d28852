package domain

import "fmt"

// OutputMode selects how a wildcard list node emits its values.
type OutputMode string

const (
	ModeRandom         OutputMode = "random"
	ModeSequential     OutputMode = "sequential"
	ModeFixed          OutputMode = "fixed"
	ModeDynamicPrompts OutputMode = "dynamic_prompts"
	ModeList           OutputMode = "list (csv)"
)

// OutputModes lists the modes in display order.
var OutputModes = []OutputMode{ModeRandom, ModeSequential, ModeFixed, ModeDynamicPrompts, ModeList}

// ParseOutputMode validates a mode name. The empty string selects ModeRandom.
func ParseOutputMode(s string) (OutputMode, error) {
	if s == "" {
		return ModeRandom, nil
	}
	for _, m := range OutputModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown output mode %q", s)
}

// Volatile reports whether a node in this mode must re-execute on every run.
func (m OutputMode) Volatile() bool {
	return m == ModeRandom || m == ModeSequential
}
