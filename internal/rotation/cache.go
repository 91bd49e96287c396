package rotation

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// PermutationCache memoizes section permutations. Entries are keyed by the
// full seed tuple plus bank size and shuffle flag, so a hit always equals a
// recomputation. It never stores attempt positions.
type PermutationCache struct {
	lru *lru.Cache
}

type permutationKey struct {
	baseSeed string
	user     string
	resource string
	section  string
	size     int
	shuffle  bool
}

// NewPermutationCache creates an LRU cache holding up to size permutations.
func NewPermutationCache(size int) (*PermutationCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create permutation cache: %w", err)
	}
	return &PermutationCache{lru: c}, nil
}

func (c *PermutationCache) get(k permutationKey) ([]int, bool) {
	v, ok := c.lru.Get(k)
	if !ok {
		return nil, false
	}
	perm, ok := v.([]int)
	return perm, ok
}

func (c *PermutationCache) add(k permutationKey, perm []int) {
	c.lru.Add(k, perm)
}

// Purge drops every memoized permutation. Call it when a section bank changes.
func (c *PermutationCache) Purge() {
	c.lru.Purge()
}

func (c *PermutationCache) Len() int {
	return c.lru.Len()
}
