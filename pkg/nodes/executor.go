package nodes

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/aretw0/promptdrafter/pkg/domain"
)

// Output names per node kind.
const (
	OutputPositive = "positive_prompt"
	OutputNegative = "negative_prompt"
	OutputPrompt   = "prompt"
	OutputWildcard = "wildcard_value"
	OutputCombined = "combined"
)

// Request carries everything a node needs to execute.
type Request struct {
	Kind   domain.NodeKind `json:"kind"`
	NodeID string          `json:"node_id"`

	// Texts holds the node's widget text by field name.
	Texts map[string]string `json:"texts,omitempty"`

	// Inputs holds values arriving on ports: prefixes, suffixes, wildcard_*
	// and string_* inputs.
	Inputs map[string]string `json:"inputs,omitempty"`

	// Mode and FixedIndex configure the wildcard list node.
	Mode       domain.OutputMode `json:"output_mode,omitempty"`
	FixedIndex int               `json:"fixed_index,omitempty"`
}

// Result maps output names to values.
type Result map[string]string

// Executor runs nodes. It is safe for concurrent use.
type Executor struct {
	mu      sync.Mutex
	cursors map[string]int
	rng     *rand.Rand
	mode    domain.OutputMode
	logger  *slog.Logger
}

// Option configures the Executor.
type Option func(*Executor)

// WithRand fixes the random source used by random mode.
func WithRand(r *rand.Rand) Option {
	return func(e *Executor) {
		e.rng = r
	}
}

// WithDefaultMode sets the wildcard mode used when a request names none.
func WithDefaultMode(mode domain.OutputMode) Option {
	return func(e *Executor) {
		e.mode = mode
	}
}

// WithLogger configures a logger for the Executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor with no sequential state.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		cursors: make(map[string]int),
		mode:    domain.ModeRandom,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches on the request's kind.
func (e *Executor) Execute(req Request) (Result, error) {
	switch req.Kind {
	case domain.KindDualPrompt:
		pos, neg := Dual(req.Texts, req.Inputs)
		return Result{OutputPositive: pos, OutputNegative: neg}, nil
	case domain.KindSinglePrompt:
		return Result{OutputPrompt: Single(req.Texts[domain.FieldPrompt], req.Inputs)}, nil
	case domain.KindWildcard:
		mode := req.Mode
		if mode == "" {
			mode = e.mode
		}
		v, err := e.Wildcard(req.NodeID, req.Texts[domain.FieldWildcardValues], mode, req.FixedIndex)
		if err != nil {
			return nil, err
		}
		return Result{OutputWildcard: v}, nil
	case domain.KindCombiner:
		return Result{OutputCombined: Combine(req.Inputs)}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, req.Kind)
}

// wildcardInputs keeps only the values arriving on wildcard_ ports.
func wildcardInputs(inputs map[string]string) map[string]string {
	values := make(map[string]string)
	for k, v := range inputs {
		if strings.HasPrefix(k, domain.WildcardPrefix) {
			values[k] = v
		}
	}
	return values
}

// Dual produces the positive and negative prompts of a dual prompt node.
func Dual(texts, inputs map[string]string) (positive, negative string) {
	values := wildcardInputs(inputs)
	positive = domain.CleanPrompt(domain.ProcessPrompt(
		texts[domain.FieldPositive], inputs["positive_prefix"], inputs["positive_suffix"], values))
	negative = domain.CleanPrompt(domain.ProcessPrompt(
		texts[domain.FieldNegative], inputs["negative_prefix"], inputs["negative_suffix"], values))
	return positive, negative
}

// Single produces the prompt of a single prompt node.
func Single(text string, inputs map[string]string) string {
	return domain.CleanPrompt(domain.ProcessPrompt(text, inputs["prefix"], inputs["suffix"], wildcardInputs(inputs)))
}

// Combine smart-joins the non-blank string_1..string_25 inputs in index order.
// Every input is considered regardless of the node's visible input count.
func Combine(inputs map[string]string) string {
	parts := make([]string, 0, domain.MaxCombinerInputs)
	for i := 1; i <= domain.MaxCombinerInputs; i++ {
		v := inputs[fmt.Sprintf("%s%d", domain.CombinerPrefix, i)]
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return domain.SmartJoin(parts...)
}

// Wildcard emits a value of a wildcard list node. With no values it returns "".
func (e *Executor) Wildcard(nodeID, text string, mode domain.OutputMode, fixedIndex int) (string, error) {
	values := domain.ParseValueList(text)
	if len(values) == 0 {
		return "", nil
	}

	switch mode {
	case domain.ModeList:
		return strings.Join(values, domain.Separator), nil
	case domain.ModeDynamicPrompts:
		return domain.FormatDynamicPrompts(values), nil
	case domain.ModeFixed:
		return values[max(0, min(fixedIndex, len(values)-1))], nil
	case domain.ModeSequential:
		return values[e.next(nodeID, len(values))], nil
	case domain.ModeRandom:
		return values[e.intN(len(values))], nil
	}
	return "", fmt.Errorf("unknown output mode %q", mode)
}

// next returns the node's cursor and advances it, wrapping at n.
func (e *Executor) next(nodeID string, n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.cursors[nodeID] % n
	e.cursors[nodeID] = (i + 1) % n
	return i
}

func (e *Executor) intN(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rng != nil {
		return e.rng.IntN(n)
	}
	return rand.IntN(n)
}

// ResetSequential rewinds the sequential cursor of one node.
func (e *Executor) ResetSequential(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cursors[nodeID]; ok {
		e.cursors[nodeID] = 0
	}
	e.logger.Debug("Sequential index reset", "node_id", nodeID)
}

// Forget drops the sequential cursor of a node that no longer exists.
func (e *Executor) Forget(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cursors, nodeID)
}

// ResetAll forgets every sequential cursor.
func (e *Executor) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.cursors)
}
