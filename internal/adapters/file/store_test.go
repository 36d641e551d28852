package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/promptdrafter/internal/adapters/file"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements LibraryStore
var _ ports.LibraryStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir(), nil)
	ports.RunLibraryStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	base := t.TempDir()
	custom := filepath.Join(t.TempDir(), "wc")
	store := file.New(base, map[domain.Category]string{
		domain.CategorySingle:   "singles",
		domain.CategoryWildcard: custom,
	})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.CategoryDual, &domain.Record{Name: "d", Type: domain.TypeDualPrompt}))
	require.NoError(t, store.Save(ctx, domain.CategorySingle, &domain.Record{Name: "s", Type: domain.TypeSinglePrompt}))
	require.NoError(t, store.Save(ctx, domain.CategoryWildcard, &domain.Record{Name: "w", Type: domain.TypeWildcard}))

	assert.FileExists(t, filepath.Join(base, "dual_prompts", "d.json"))
	assert.FileExists(t, filepath.Join(base, "singles", "s.json"))
	assert.FileExists(t, filepath.Join(custom, "w.json"))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Join(base, "dual_prompts"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_SanitizedNames(t *testing.T) {
	base := t.TempDir()
	store := file.New(base, nil)
	ctx := context.Background()

	name := `hair: "long/short"?`
	require.NoError(t, store.Save(ctx, domain.CategoryWildcard, &domain.Record{Name: name, Type: domain.TypeWildcard, RawText: "long|short"}))
	assert.FileExists(t, filepath.Join(base, "wildcards", "hair_ _long_short__.json"))

	// The original name survives the round trip and is what List reports.
	loaded, err := store.Load(ctx, domain.CategoryWildcard, name)
	require.NoError(t, err)
	assert.Equal(t, name, loaded.Name)

	names, err := store.List(ctx, domain.CategoryWildcard)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)
}

func TestFileStore_ListFallsBackToFilename(t *testing.T) {
	base := t.TempDir()
	store := file.New(base, nil)
	dir := filepath.Join(base, "single_prompts")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	names, err := store.List(context.Background(), domain.CategorySingle)
	require.NoError(t, err)
	assert.Equal(t, []string{"broken"}, names)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"), nil)
	names, err := store.List(context.Background(), domain.CategoryDual)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"plain":        "plain",
		`a<b>c:d"e`:    "a_b_c_d_e",
		`x/y\z|w?v*`:   "x_y_z_w_v_",
		"  .dots.  ":   "dots",
		"":             "unnamed",
		" . ":          "unnamed",
		"ünïcode name": "ünïcode name",
	}
	for in, want := range tests {
		assert.Equal(t, want, file.SanitizeFilename(in), "input %q", in)
	}
}
