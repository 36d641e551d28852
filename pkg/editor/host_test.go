package editor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects events delivered to a listener.
type recorder struct {
	mu     sync.Mutex
	events []domain.PortEvent
}

func (r *recorder) listen(e domain.PortEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []domain.PortEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PortEvent(nil), r.events...)
}

// countingObserver counts reconciliation passes per kind.
type countingObserver struct {
	mu     sync.Mutex
	passes map[domain.NodeKind]int
	active int
}

func (o *countingObserver) Reconciled(kind domain.NodeKind, edit domain.PortEdit, took time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.passes == nil {
		o.passes = map[domain.NodeKind]int{}
	}
	o.passes[kind]++
}

func (o *countingObserver) NodesActive(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = n
}

func TestHost_CreateKinds(t *testing.T) {
	host := editor.NewHost()
	defer host.Close()

	dual, err := host.Create(domain.KindDualPrompt)
	require.NoError(t, err)
	assert.NotEmpty(t, dual.ID)
	assert.Equal(t, map[string]string{domain.FieldPositive: "", domain.FieldNegative: ""}, dual.Texts)
	assert.Equal(t, []string{"positive_prefix", "positive_suffix", "negative_prefix", "negative_suffix"}, dual.Ports)

	comb, err := host.Create(domain.KindCombiner)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCombinerInput, comb.InputCount)
	assert.Equal(t, []string{"string_1", "string_2"}, comb.Ports)

	_, err = host.Create("Upscaler")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	assert.Equal(t, 2, host.Len())
	assert.Len(t, host.List(), 2)
}

func TestHost_DebouncedLastWriteWins(t *testing.T) {
	rec := &recorder{}
	obs := &countingObserver{}
	host := editor.NewHost(
		editor.WithDebounce(20*time.Millisecond),
		editor.WithListener(rec.listen),
		editor.WithObserver(obs),
	)
	defer host.Close()

	node, err := host.Create(domain.KindSinglePrompt)
	require.NoError(t, err)

	// A burst of keystrokes.
	for _, v := range []string{"{wildcard_a", "{wildcard_a}", "{wildcard_a} {wildcard_b}"} {
		require.NoError(t, host.SetText(node.ID, domain.FieldPrompt, v))
	}

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	events := rec.all()
	require.Len(t, events, 1, "one pass for the whole burst")
	assert.Equal(t, domain.EventPortsReconciled, events[0].Type)
	assert.Equal(t, node.ID, events[0].NodeID)
	assert.ElementsMatch(t, []string{"wildcard_a", "wildcard_b"}, events[0].Edit.ToAdd)
	assert.Equal(t, []string{"wildcard_a", "wildcard_b"}, events[0].Ports)

	obs.mu.Lock()
	assert.Equal(t, 1, obs.passes[domain.KindSinglePrompt])
	obs.mu.Unlock()
}

func TestHost_FlushAndDualFields(t *testing.T) {
	host := editor.NewHost(editor.WithDebounce(time.Hour))
	defer host.Close()

	node, err := host.Create(domain.KindDualPrompt)
	require.NoError(t, err)

	require.NoError(t, host.SetText(node.ID, domain.FieldPositive, "a {wildcard_subject}"))
	require.NoError(t, host.SetText(node.ID, domain.FieldNegative, "{wildcard_bad}, {wildcard_subject}"))

	view, err := host.Get(node.ID)
	require.NoError(t, err)
	assert.True(t, view.Pending)
	assert.NotContains(t, view.Ports, "wildcard_subject")

	view, err = host.Flush(node.ID)
	require.NoError(t, err)
	assert.False(t, view.Pending)
	assert.Equal(t, []string{
		"positive_prefix", "positive_suffix", "negative_prefix", "negative_suffix",
		"wildcard_subject", "wildcard_bad",
	}, view.Ports)
}

func TestHost_UnknownFieldAndNode(t *testing.T) {
	host := editor.NewHost()
	defer host.Close()

	node, err := host.Create(domain.KindSinglePrompt)
	require.NoError(t, err)

	assert.ErrorIs(t, host.SetText(node.ID, domain.FieldPositive, "x"), domain.ErrUnknownField)
	assert.ErrorIs(t, host.SetText("missing", domain.FieldPrompt, "x"), domain.ErrNodeNotFound)
	_, err = host.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestHost_WildcardNodeHasNoDynamicPorts(t *testing.T) {
	host := editor.NewHost(editor.WithDebounce(time.Millisecond))
	defer host.Close()

	node, err := host.Create(domain.KindWildcard)
	require.NoError(t, err)
	require.NoError(t, host.SetText(node.ID, domain.FieldWildcardValues, "{wildcard_x}|b"))

	view, err := host.Flush(node.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Ports)
	assert.Equal(t, "{wildcard_x}|b", view.Texts[domain.FieldWildcardValues])
}

func TestHost_AppendPlaceholder(t *testing.T) {
	host := editor.NewHost(editor.WithDebounce(time.Hour))
	defer host.Close()

	node, err := host.Create(domain.KindSinglePrompt)
	require.NoError(t, err)

	ph, err := host.AppendPlaceholder(node.ID, domain.FieldPrompt)
	require.NoError(t, err)
	assert.Equal(t, "{wildcard_01}", ph)

	require.NoError(t, host.SetText(node.ID, domain.FieldPrompt, "a cat, {wildcard_01} {wildcard_07}"))
	ph, err = host.AppendPlaceholder(node.ID, domain.FieldPrompt)
	require.NoError(t, err)
	assert.Equal(t, "{wildcard_08}", ph)

	view, err := host.Get(node.ID)
	require.NoError(t, err)
	assert.Equal(t, "a cat, {wildcard_01} {wildcard_07} {wildcard_08}", view.Texts[domain.FieldPrompt])
	assert.False(t, view.Pending, "placeholder insertion reconciles immediately")
	assert.Equal(t, []string{"prefix", "suffix", "wildcard_01", "wildcard_07", "wildcard_08"}, view.Ports)

	wc, err := host.Create(domain.KindWildcard)
	require.NoError(t, err)
	_, err = host.AppendPlaceholder(wc.ID, domain.FieldWildcardValues)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestHost_SetInputCount(t *testing.T) {
	rec := &recorder{}
	host := editor.NewHost(editor.WithListener(rec.listen))
	defer host.Close()

	node, err := host.Create(domain.KindCombiner)
	require.NoError(t, err)

	view, err := host.SetInputCount(node.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.InputCount)
	assert.Equal(t, []string{"string_1", "string_2", "string_3", "string_4", "string_5"}, view.Ports)

	view, err = host.SetInputCount(node.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"string_1", "string_2", "string_3"}, view.Ports)
	assert.Len(t, rec.all(), 2)

	_, err = host.SetInputCount(node.ID, 26)
	assert.ErrorIs(t, err, domain.ErrInvalidInputCount)
	_, err = host.SetInputCount(node.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInputCount)

	single, err := host.Create(domain.KindSinglePrompt)
	require.NoError(t, err)
	_, err = host.SetInputCount(single.ID, 3)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestHost_DestroyCancelsPendingPass(t *testing.T) {
	rec := &recorder{}
	obs := &countingObserver{}
	host := editor.NewHost(
		editor.WithDebounce(20*time.Millisecond),
		editor.WithListener(rec.listen),
		editor.WithObserver(obs),
	)
	defer host.Close()

	node, err := host.Create(domain.KindSinglePrompt)
	require.NoError(t, err)
	require.NoError(t, host.SetText(node.ID, domain.FieldPrompt, "{wildcard_late}"))

	require.NoError(t, host.Destroy(node.ID))
	time.Sleep(60 * time.Millisecond)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventNodeDestroyed, events[0].Type)
	assert.Equal(t, 0, host.Len())

	obs.mu.Lock()
	assert.Equal(t, 0, obs.passes[domain.KindSinglePrompt])
	assert.Equal(t, 0, obs.active)
	obs.mu.Unlock()

	assert.ErrorIs(t, host.Destroy(node.ID), domain.ErrNodeNotFound)
	assert.ErrorIs(t, host.SetText(node.ID, domain.FieldPrompt, "x"), domain.ErrNodeNotFound)
}

func TestHost_NodesAreIndependent(t *testing.T) {
	host := editor.NewHost(editor.WithDebounce(time.Millisecond))
	defer host.Close()

	var ids []string
	for i := 0; i < 8; i++ {
		v, err := host.Create(domain.KindSinglePrompt)
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = host.SetText(id, domain.FieldPrompt, "{wildcard_shared} {wildcard_n"+string(rune('a'+i))+"}")
			}
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		_, err := host.Flush(id)
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			v, _ := host.Get(id)
			return !v.Pending && len(v.Ports) == 4
		}, time.Second, 5*time.Millisecond)
		view, _ := host.Get(id)
		assert.Equal(t, []string{"prefix", "suffix", "wildcard_shared", "wildcard_n" + string(rune('a'+i))}, view.Ports)
	}
}
