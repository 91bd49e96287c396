package rotation

import "math/rand/v2"

// Permuter produces a permutation of 0..n-1 from a section seed. The window
// selector consumes permutations without knowing which Permuter built them.
type Permuter interface {
	Permute(seed uint64, n int) []int
}

// IdentityPermuter keeps document order.
type IdentityPermuter struct{}

func (IdentityPermuter) Permute(_ uint64, n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// ShufflePermuter runs a Fisher-Yates shuffle driven by a PCG generator seeded
// from the section seed. The result depends on the seed only, never on the
// attempt number.
type ShufflePermuter struct{}

// pcgStream is the fixed second PCG word; changing it reshuffles every section.
const pcgStream uint64 = 0x9e3779b97f4a7c15

func (ShufflePermuter) Permute(seed uint64, n int) []int {
	perm := IdentityPermuter{}.Permute(seed, n)
	rng := rand.New(rand.NewPCG(seed, pcgStream))
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// PermuterFor picks the strategy matching a section's shuffle flag.
func PermuterFor(shuffle bool) Permuter {
	if shuffle {
		return ShufflePermuter{}
	}
	return IdentityPermuter{}
}
