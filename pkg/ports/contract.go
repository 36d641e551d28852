package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLibraryStoreContract runs a suite of tests to verify that a LibraryStore implementation
// adheres to the defined interface contract.
func RunLibraryStoreContract(t *testing.T, store LibraryStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	t.Run("Save and Load Dual", func(t *testing.T) {
		name := "dual-" + suffix
		rec := &domain.Record{
			Name:     name,
			Type:     domain.TypeDualPrompt,
			Positive: "a {wildcard_animal}, best quality",
			Negative: "blurry",
			Created:  time.Now().UTC(),
		}

		require.NoError(t, store.Save(ctx, domain.CategoryDual, rec), "Save should not return error")

		loaded, err := store.Load(ctx, domain.CategoryDual, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, name, loaded.Name)
		assert.Equal(t, rec.Positive, loaded.Positive)
		assert.Equal(t, rec.Negative, loaded.Negative)
		assert.Equal(t, domain.TypeDualPrompt, loaded.Type)
	})

	t.Run("Save and Load Wildcard", func(t *testing.T) {
		name := "colors-" + suffix
		rec := &domain.Record{
			Name:    name,
			Type:    domain.TypeWildcard,
			RawText: "red\ngreen",
			Values:  []string{"red", "green"},
		}
		require.NoError(t, store.Save(ctx, domain.CategoryWildcard, rec))

		loaded, err := store.Load(ctx, domain.CategoryWildcard, name)
		require.NoError(t, err)
		assert.Equal(t, "red\ngreen", loaded.RawText)
		assert.Equal(t, []string{"red", "green"}, loaded.Values)
	})

	t.Run("Overwrite", func(t *testing.T) {
		name := "single-" + suffix
		require.NoError(t, store.Save(ctx, domain.CategorySingle, &domain.Record{Name: name, Type: domain.TypeSinglePrompt, Prompt: "v1"}))
		require.NoError(t, store.Save(ctx, domain.CategorySingle, &domain.Record{Name: name, Type: domain.TypeSinglePrompt, Prompt: "v2"}))

		loaded, err := store.Load(ctx, domain.CategorySingle, name)
		require.NoError(t, err)
		assert.Equal(t, "v2", loaded.Prompt)
	})

	t.Run("Categories Are Isolated", func(t *testing.T) {
		name := "shared-" + suffix
		require.NoError(t, store.Save(ctx, domain.CategorySingle, &domain.Record{Name: name, Type: domain.TypeSinglePrompt, Prompt: "x"}))

		_, err := store.Load(ctx, domain.CategoryDual, name)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, domain.CategoryDual, "non-existent-"+suffix)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		name := "doomed-" + suffix
		require.NoError(t, store.Save(ctx, domain.CategoryWildcard, &domain.Record{Name: name, Type: domain.TypeWildcard, RawText: "a"}))

		require.NoError(t, store.Delete(ctx, domain.CategoryWildcard, name), "Delete should not return error")

		_, err := store.Load(ctx, domain.CategoryWildcard, name)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")

		err = store.Delete(ctx, domain.CategoryWildcard, name)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "second Delete should return ErrRecordNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := "b-list-" + suffix
		id2 := "a-list-" + suffix
		_ = store.Save(ctx, domain.CategoryDual, &domain.Record{Name: id1, Type: domain.TypeDualPrompt})
		_ = store.Save(ctx, domain.CategoryDual, &domain.Record{Name: id2, Type: domain.TypeDualPrompt})

		defer func() {
			_ = store.Delete(ctx, domain.CategoryDual, id1)
			_ = store.Delete(ctx, domain.CategoryDual, id2)
		}()

		names, err := store.List(ctx, domain.CategoryDual)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names, "List should be sorted")
	})
}
