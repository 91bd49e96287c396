package rotation

// EffectiveCount returns k, the number of items one attempt draws from a
// section of n items. A nil or saturating select count means all n.
func EffectiveCount(n int, selectCount *int) int {
	if selectCount == nil || *selectCount >= n {
		return n
	}
	return *selectCount
}

// CycleLength is the number of attempts needed to show every item once:
// ceil(n/k). It is 0 for an empty section.
func CycleLength(n, k int) int {
	if n == 0 || k <= 0 {
		return 0
	}
	return (n + k - 1) / k
}

// Window returns the k permuted indices shown on the given 1-based attempt.
// The start advances by k per attempt modulo n, so windows are disjoint until
// the cumulative offset reaches n, and the last window of a non-divisible
// cycle wraps onto the start of the permutation.
func Window(perm []int, k, attempt int) []int {
	n := len(perm)
	if n == 0 || k <= 0 {
		return []int{}
	}
	if k > n {
		k = n
	}
	// (attempt-1)*k can overflow for huge attempt numbers; reduce each factor first.
	start := ((attempt - 1) % n) * (k % n) % n
	out := make([]int, k)
	for j := 0; j < k; j++ {
		out[j] = perm[(start+j)%n]
	}
	return out
}
