// Package pageref tracks one atomic reference counter per physical
// frame that is shared between address spaces by copy-on-write.
// Grounded on the teacher's mem.Physmem.Refup/Refdown/Refaddr, which
// keep exactly this kind of per-frame counter next to the frame
// allocator.
package pageref

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
	"github.com/kappaos/kernel/pkg/pmm"
)

// Table maps physical frames to their reference counters. Invariant
// (spec.md §3): refcount[frame] == number of VMA-pages referencing it;
// underflow is a bug and is reported as an error rather than silently
// wrapping.
type Table struct {
	mu     sync.Mutex
	counts map[pmm.Frame]*ksync.RefCount
}

// NewTable returns an empty refcount table.
func NewTable() *Table {
	return &Table{counts: make(map[pmm.Frame]*ksync.RefCount)}
}

func (t *Table) entry(f pmm.Frame) *ksync.RefCount {
	t.mu.Lock()
	defer t.mu.Unlock()
	rc, ok := t.counts[f]
	if !ok {
		rc = ksync.NewRefCount(0)
		t.counts[f] = rc
	}
	return rc
}

// Acquire bumps the frame's refcount and returns the new value.
func (t *Table) Acquire(f pmm.Frame) int32 {
	return t.entry(f).Acquire()
}

// Release decrements the frame's refcount and reports whether it
// dropped to zero, meaning the caller should return the frame to the
// allocator. Calling Release on a frame whose count is already zero
// panics with ErrRefCountUnderflow, matching the "underflow is a bug"
// invariant in spec.md §3.
func (t *Table) Release(f pmm.Frame) (zero bool) {
	t.mu.Lock()
	rc, ok := t.counts[f]
	t.mu.Unlock()
	if !ok {
		panic(kerrors.ErrRefCountUnderflow)
	}
	isZero := rc.Release()
	if isZero {
		t.mu.Lock()
		delete(t.counts, f)
		t.mu.Unlock()
	}
	return isZero
}

// Get returns the current refcount of f, or 0 if untracked.
func (t *Table) Get(f pmm.Frame) int32 {
	t.mu.Lock()
	rc, ok := t.counts[f]
	t.mu.Unlock()
	if !ok {
		return 0
	}
	return rc.Get()
}

// Set forcibly initializes f's refcount, used when a freshly copied
// frame becomes the sole owner of its content (spec.md §4.2: "initialize
// the new frame's refcount to 1").
func (t *Table) Set(f pmm.Frame, n int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[f] = ksync.NewRefCount(n)
}
