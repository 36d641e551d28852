package editor_test

import (
	"errors"
	"testing"

	"github.com/aretw0/promptdrafter/pkg/adapters/memory"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore rejects every edit.
type failingStore struct{ names []string }

func (f *failingStore) CurrentNames() []string { return f.names }

func (f *failingStore) Apply(edit domain.PortEdit) error { return errors.New("canvas gone") }

func TestSync_AddsAndRemoves(t *testing.T) {
	ports := memory.NewPorts("prefix", "suffix")

	edit, err := editor.Sync(ports, domain.WildcardPrefix, "a {wildcard_animal} in {wildcard_place}")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"wildcard_animal", "wildcard_place"}, edit.ToAdd)
	assert.Empty(t, edit.ToRemove)
	assert.Equal(t, []string{"prefix", "suffix", "wildcard_animal", "wildcard_place"}, ports.CurrentNames())

	edit, err = editor.Sync(ports, domain.WildcardPrefix, "a {wildcard_animal}")
	require.NoError(t, err)
	assert.Equal(t, []string{"wildcard_place"}, edit.ToRemove)
	assert.Equal(t, []string{"prefix", "suffix", "wildcard_animal"}, ports.CurrentNames(), "static ports are never touched")
}

func TestSync_Idempotent(t *testing.T) {
	ports := memory.NewPorts()
	text := "{wildcard_a}, {wildcard_b}{wildcard_a}"

	_, err := editor.Sync(ports, domain.WildcardPrefix, text)
	require.NoError(t, err)
	dirty := ports.DirtyCount()

	edit, err := editor.Sync(ports, domain.WildcardPrefix, text)
	require.NoError(t, err)
	assert.True(t, edit.IsEmpty())
	assert.Equal(t, dirty, ports.DirtyCount(), "an empty edit does not request a redraw")
}

func TestSync_MarksDirtyWithoutResize(t *testing.T) {
	ports := memory.NewPorts()
	size := ports.Size()

	_, err := editor.Sync(ports, domain.WildcardPrefix, "{wildcard_x}")
	require.NoError(t, err)
	assert.Equal(t, 1, ports.DirtyCount())
	assert.Equal(t, size, ports.Size())
	for _, p := range ports.Snapshot() {
		assert.Equal(t, domain.PortType, p.Type)
	}
}

func TestSync_MultipleTexts(t *testing.T) {
	ports := memory.NewPorts()
	_, err := editor.Sync(ports, domain.WildcardPrefix, "{wildcard_pos}", "{wildcard_neg}, {wildcard_pos}")
	require.NoError(t, err)
	assert.Equal(t, []string{"wildcard_pos", "wildcard_neg"}, ports.CurrentNames())
}

func TestSync_NilStorePanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = editor.Sync(nil, domain.WildcardPrefix, "{wildcard_x}")
	})
}

func TestSync_ApplyError(t *testing.T) {
	_, err := editor.Sync(&failingStore{}, domain.WildcardPrefix, "{wildcard_x}")
	assert.ErrorContains(t, err, "canvas gone")
}

func TestSyncNames_Combiner(t *testing.T) {
	ports := memory.NewPorts()
	names, err := domain.CombinerPorts(4)
	require.NoError(t, err)

	_, err = editor.SyncNames(ports, domain.CombinerPrefix, names)
	require.NoError(t, err)
	assert.Equal(t, []string{"string_1", "string_2", "string_3", "string_4"}, ports.CurrentNames())

	names, _ = domain.CombinerPorts(2)
	edit, err := editor.SyncNames(ports, domain.CombinerPrefix, names)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"string_3", "string_4"}, edit.ToRemove)
	assert.Equal(t, []string{"string_1", "string_2"}, ports.CurrentNames())
}
