// Package vfssync provides the VFS-layer synchronization primitives
// (component J): inode generation counters, dentry validity state,
// a permission cache keyed by generation, and the rename lock-
// ordering discipline. RefCount and SeqLock themselves live in
// pkg/ksync and are reused here unchanged; the rest is grounded on the
// lock-ordering discipline documented atop the teacher's vm/as.go
// (Lock_pmap) and the generation bookkeeping in its fs package's
// super.go.
package vfssync

import (
	"sync"

	"github.com/kappaos/kernel/pkg/ksync"
)

// InodeGeneration is a monotonic counter bumped whenever cached state
// derived from an inode (dentries, permission decisions) must be
// treated as stale.
type InodeGeneration struct {
	n ksync.Uint64
}

// Bump increments the generation and returns the new value.
func (g *InodeGeneration) Bump() uint64 { return g.n.Add(1) }

// Current returns the current generation.
func (g *InodeGeneration) Current() uint64 { return g.n.Load() }

// DentryState classifies a cached dentry's validity.
type DentryState int

const (
	DentryValid DentryState = iota
	DentryNegative
	DentryInvalid
)

// DentrySyncInfo pairs a dentry's cached state with the inode
// generation it was derived from.
type DentrySyncInfo struct {
	mu         sync.Mutex
	state      DentryState
	generation uint64
}

// NewDentrySyncInfo returns a valid dentry stamped with generation gen.
func NewDentrySyncInfo(gen uint64) *DentrySyncInfo {
	return &DentrySyncInfo{state: DentryValid, generation: gen}
}

// Set updates the cached state and stamping generation.
func (d *DentrySyncInfo) Set(state DentryState, generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
	d.generation = generation
}

// Get returns the cached state and the generation it was computed
// against.
func (d *DentrySyncInfo) Get() (DentryState, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.generation
}

// Invalidate marks the dentry invalid for the supplied new generation.
func (d *DentrySyncInfo) Invalidate(newGeneration uint64) {
	d.Set(DentryInvalid, newGeneration)
}
