package vfssync

import "sync"

type permKey struct {
	uid  int
	perm uint32
}

type permEntry struct {
	allowed    bool
	generation uint64
}

// PermissionCache memoizes (uid, perm) -> allowed decisions, keyed
// additionally by the inode generation they were computed against.
// A lookup whose stored generation no longer matches the inode's
// current generation, or whose uid doesn't match the query, forces a
// re-check (spec.md §4.8).
type PermissionCache struct {
	mu      sync.Mutex
	entries map[permKey]permEntry
}

// NewPermissionCache returns an empty cache.
func NewPermissionCache() *PermissionCache {
	return &PermissionCache{entries: make(map[permKey]permEntry)}
}

// Lookup returns (allowed, true) if a fresh entry exists for
// (uid, perm) at currentGeneration, or (false, false) if the caller
// must recompute.
func (c *PermissionCache) Lookup(uid int, perm uint32, currentGeneration uint64) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[permKey{uid, perm}]
	if !ok || e.generation != currentGeneration {
		return false, false
	}
	return e.allowed, true
}

// Store records a freshly computed decision.
func (c *PermissionCache) Store(uid int, perm uint32, allowed bool, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[permKey{uid, perm}] = permEntry{allowed: allowed, generation: generation}
}
