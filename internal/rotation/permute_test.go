package rotation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityPermuter(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3}, IdentityPermuter{}.Permute(42, 4))
	assert.Empty(t, IdentityPermuter{}.Permute(42, 0))
}

func TestShufflePermuter_IsPermutation(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7, 50} {
		perm := ShufflePermuter{}.Permute(12345, n)
		require.Len(t, perm, n)

		sorted := make([]int, len(perm))
		copy(sorted, perm)
		sort.Ints(sorted)
		assert.Equal(t, IdentityPermuter{}.Permute(0, n), sorted, "n=%d", n)
	}
}

func TestShufflePermuter_DependsOnlyOnSeed(t *testing.T) {
	a := ShufflePermuter{}.Permute(99, 20)
	b := ShufflePermuter{}.Permute(99, 20)
	c := ShufflePermuter{}.Permute(100, 20)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, IdentityPermuter{}.Permute(0, 20), a)
}

func TestPermuterFor(t *testing.T) {
	assert.IsType(t, ShufflePermuter{}, PermuterFor(true))
	assert.IsType(t, IdentityPermuter{}, PermuterFor(false))
}
