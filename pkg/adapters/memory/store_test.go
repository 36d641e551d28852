package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/promptdrafter/pkg/adapters/memory"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunLibraryStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	rec := &domain.Record{Name: "w", Type: domain.TypeWildcard, Values: []string{"a"}}
	assert.NoError(t, store.Save(ctx, domain.CategoryWildcard, rec))
	rec.Values[0] = "mutated"

	loaded, err := store.Load(ctx, domain.CategoryWildcard, "w")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, loaded.Values)
}

func TestMemoryStore_RequiresName(t *testing.T) {
	err := memory.NewStore().Save(context.Background(), domain.CategoryDual, &domain.Record{})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}
