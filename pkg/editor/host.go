package editor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/aretw0/promptdrafter/pkg/adapters/memory"
	"github.com/aretw0/promptdrafter/pkg/debounce"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/ports"
	"github.com/google/uuid"
)

// Listener receives every applied port edit and node teardown.
// It is called outside the node lock and must not block for long.
type Listener func(event domain.PortEvent)

// Observer is notified about reconciliation passes, typically to record metrics.
type Observer interface {
	Reconciled(kind domain.NodeKind, edit domain.PortEdit, took time.Duration)
	NodesActive(n int)
}

// PortFactory creates the port store of a new node.
type PortFactory func(spec domain.KindSpec) ports.PortStore

// node is a live node. mu serialises reconciliation passes and text updates.
type node struct {
	id   string
	spec domain.KindSpec

	mu         sync.Mutex
	texts      map[string]string
	inputCount int
	ports      ports.PortStore
	destroyed  bool

	debouncer *debounce.Debouncer
}

// View is a snapshot of a node.
type View struct {
	ID         string            `json:"id"`
	Kind       domain.NodeKind   `json:"kind"`
	Texts      map[string]string `json:"texts"`
	Ports      []string          `json:"ports"`
	InputCount int               `json:"input_count,omitempty"`
	Pending    bool              `json:"pending"`
}

// Host is the registry of live nodes.
type Host struct {
	mu    sync.RWMutex
	nodes map[string]*node

	delay     time.Duration
	newPorts  PortFactory
	logger    *slog.Logger
	listeners []Listener
	observer  Observer
}

// Option configures the Host.
type Option func(*Host)

// WithDebounce sets the quiet period between the last text edit and the
// reconciliation pass.
func WithDebounce(delay time.Duration) Option {
	return func(h *Host) {
		h.delay = delay
	}
}

// WithPortFactory replaces the in-memory port stores.
func WithPortFactory(f PortFactory) Option {
	return func(h *Host) {
		h.newPorts = f
	}
}

// WithLogger configures a logger for the Host.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithListener registers a listener for port events.
func WithListener(l Listener) Option {
	return func(h *Host) {
		h.listeners = append(h.listeners, l)
	}
}

// WithObserver registers an observer for reconciliation passes.
func WithObserver(o Observer) Option {
	return func(h *Host) {
		h.observer = o
	}
}

// NewHost creates an empty Host.
func NewHost(opts ...Option) *Host {
	h := &Host{
		nodes:  make(map[string]*node),
		delay:  debounce.DefaultDelay,
		logger: logging.NewNop(),
		newPorts: func(spec domain.KindSpec) ports.PortStore {
			return memory.NewPorts(spec.Inputs...)
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Create registers a new node of the given kind and returns its snapshot.
// A combiner starts with domain.DefaultCombinerInput inputs.
func (h *Host) Create(kind domain.NodeKind) (View, error) {
	spec, err := domain.LookupKind(kind)
	if err != nil {
		return View{}, err
	}

	n := &node{
		id:        uuid.NewString(),
		spec:      spec,
		texts:     make(map[string]string, len(spec.Fields)),
		ports:     h.newPorts(spec),
		debouncer: debounce.New(h.delay),
	}
	for _, f := range spec.Fields {
		n.texts[f] = ""
	}

	if kind == domain.KindCombiner {
		names, _ := domain.CombinerPorts(domain.DefaultCombinerInput)
		n.inputCount = domain.DefaultCombinerInput
		if _, err := SyncNames(n.ports, spec.Namespace, names); err != nil {
			return View{}, err
		}
	}

	h.mu.Lock()
	h.nodes[n.id] = n
	active := len(h.nodes)
	h.mu.Unlock()

	h.logger.Debug("Node created", "node_id", n.id, "kind", kind)
	if h.observer != nil {
		h.observer.NodesActive(active)
	}
	return h.view(n), nil
}

func (h *Host) lookup(id string) (*node, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// Get returns the snapshot of a node.
func (h *Host) Get(id string) (View, error) {
	n, err := h.lookup(id)
	if err != nil {
		return View{}, err
	}
	return h.view(n), nil
}

// List returns the snapshots of every live node, ordered by id.
func (h *Host) List() []View {
	h.mu.RLock()
	nodes := make([]*node, 0, len(h.nodes))
	for _, n := range h.nodes {
		nodes = append(nodes, n)
	}
	h.mu.RUnlock()

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	views := make([]View, len(nodes))
	for i, n := range nodes {
		views[i] = h.view(n)
	}
	return views
}

// Len returns the number of live nodes.
func (h *Host) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// SetText stores the new value of a text field and schedules a debounced
// reconciliation. Only the last value written within the quiet period is
// reconciled.
func (h *Host) SetText(id, field, value string) error {
	n, err := h.lookup(id)
	if err != nil {
		return err
	}
	if !n.spec.HasField(field) {
		return fmt.Errorf("%w: %s has no field %q", domain.ErrUnknownField, n.spec.Kind, field)
	}

	n.mu.Lock()
	n.texts[field] = value
	n.mu.Unlock()

	if n.spec.Namespace == "" {
		return nil
	}
	if !n.debouncer.Trigger(func() { h.reconcile(n) }) {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return nil
}

// Flush runs a pending reconciliation immediately and returns the snapshot.
func (h *Host) Flush(id string) (View, error) {
	n, err := h.lookup(id)
	if err != nil {
		return View{}, err
	}
	n.debouncer.Flush()
	return h.view(n), nil
}

// AppendPlaceholder appends the next free numeric placeholder to a field and
// reconciles right away. It returns the placeholder that was added.
func (h *Host) AppendPlaceholder(id, field string) (string, error) {
	n, err := h.lookup(id)
	if err != nil {
		return "", err
	}
	if !n.spec.HasField(field) || n.spec.Namespace != domain.WildcardPrefix {
		return "", fmt.Errorf("%w: %s has no prompt field %q", domain.ErrUnknownField, n.spec.Kind, field)
	}

	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		return "", fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	text := n.texts[field]
	placeholder := domain.NextPlaceholder(text)
	switch {
	case strings.TrimSpace(text) == "":
		text = placeholder
	case strings.HasSuffix(text, " ") || strings.HasSuffix(text, "\n"):
		text += placeholder
	default:
		text += " " + placeholder
	}
	n.texts[field] = text
	n.mu.Unlock()

	// Replace any pending pass with one that sees the new text, then run it.
	if !n.debouncer.Trigger(func() { h.reconcile(n) }) {
		return "", fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	n.debouncer.Flush()
	return placeholder, nil
}

// SetInputCount resizes a combiner's string_ inputs immediately.
func (h *Host) SetInputCount(id string, count int) (View, error) {
	n, err := h.lookup(id)
	if err != nil {
		return View{}, err
	}
	if n.spec.Kind != domain.KindCombiner {
		return View{}, fmt.Errorf("%w: %s has no input count", domain.ErrUnknownField, n.spec.Kind)
	}
	names, err := domain.CombinerPorts(count)
	if err != nil {
		return View{}, err
	}

	start := time.Now()
	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		return View{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	n.inputCount = count
	edit, err := SyncNames(n.ports, n.spec.Namespace, names)
	current := n.ports.CurrentNames()
	n.mu.Unlock()

	if err != nil {
		return View{}, err
	}
	h.emit(n, edit, current, start)
	return h.view(n), nil
}

// Destroy tears a node down. A pending reconciliation is cancelled and never
// fires afterwards.
func (h *Host) Destroy(id string) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if ok {
		delete(h.nodes, id)
	}
	active := len(h.nodes)
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}

	// Stop waits for a running pass, so it must happen before taking n.mu.
	n.debouncer.Stop()

	n.mu.Lock()
	n.destroyed = true
	n.mu.Unlock()

	h.logger.Debug("Node destroyed", "node_id", id)
	if h.observer != nil {
		h.observer.NodesActive(active)
	}
	h.notify(domain.PortEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeDestroyed},
		NodeID:    id,
	})
	return nil
}

// Close destroys every node.
func (h *Host) Close() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.nodes))
	for id := range h.nodes {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		_ = h.Destroy(id)
	}
}

// reconcile is the debounced pass over a node's texts.
func (h *Host) reconcile(n *node) {
	start := time.Now()

	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		return
	}
	texts := make([]string, 0, len(n.spec.Fields))
	for _, f := range n.spec.Fields {
		texts = append(texts, n.texts[f])
	}
	edit, err := Sync(n.ports, n.spec.Namespace, texts...)
	current := n.ports.CurrentNames()
	n.mu.Unlock()

	if err != nil {
		h.logger.Error("Failed to reconcile ports", "node_id", n.id, "err", err)
		return
	}
	h.emit(n, edit, current, start)
}

func (h *Host) emit(n *node, edit domain.PortEdit, current []string, start time.Time) {
	if h.observer != nil {
		h.observer.Reconciled(n.spec.Kind, edit, time.Since(start))
	}
	if edit.IsEmpty() {
		return
	}

	h.logger.Debug("Ports reconciled",
		"node_id", n.id,
		"added", edit.ToAdd,
		"removed", edit.ToRemove,
	)
	h.notify(domain.PortEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPortsReconciled},
		NodeID:    n.id,
		Edit:      edit,
		Ports:     domain.DynamicPorts(current, n.spec.Namespace),
	})
}

func (h *Host) notify(event domain.PortEvent) {
	for _, l := range h.listeners {
		l(event)
	}
}

func (h *Host) view(n *node) View {
	n.mu.Lock()
	defer n.mu.Unlock()

	texts := make(map[string]string, len(n.texts))
	for k, v := range n.texts {
		texts[k] = v
	}
	return View{
		ID:         n.id,
		Kind:       n.spec.Kind,
		Texts:      texts,
		Ports:      n.ports.CurrentNames(),
		InputCount: n.inputCount,
		Pending:    n.debouncer.Pending(),
	}
}
