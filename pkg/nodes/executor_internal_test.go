package nodes

import (
	"testing"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_ForgetDropsCursor(t *testing.T) {
	exec := NewExecutor()
	for _, id := range []string{"a", "b"} {
		_, err := exec.Wildcard(id, "x|y|z", domain.ModeSequential, 0)
		require.NoError(t, err)
	}
	require.Len(t, exec.cursors, 2)

	exec.ResetSequential("a")
	assert.Len(t, exec.cursors, 2, "a reset keeps the entry")

	exec.Forget("a")
	exec.Forget("missing")
	assert.Len(t, exec.cursors, 1)
	assert.NotContains(t, exec.cursors, "a")

	v, err := exec.Wildcard("a", "x|y|z", domain.ModeSequential, 0)
	require.NoError(t, err)
	assert.Equal(t, "x", v, "a forgotten node starts from the first value")
}
