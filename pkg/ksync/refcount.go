package ksync

import "github.com/kappaos/kernel/pkg/kerrors"

// RefCount is an atomic reference counter shared by the physical-page
// refcount table (component D), VFS dentries/inodes (component J),
// and anything else in the core that needs acquire/release/get with
// resurrection protection. Grounded on mem.Physmem's Refup/Refdown/
// Refaddr CAS-loop idiom in the teacher.
type RefCount struct {
	n Int32
}

// NewRefCount returns a RefCount initialized to n.
func NewRefCount(n int32) *RefCount {
	rc := &RefCount{}
	rc.n.Store(n)
	return rc
}

// Acquire unconditionally increments the count.
func (r *RefCount) Acquire() int32 { return r.n.Add(1) }

// Release decrements the count and reports whether it transitioned
// from 1 to 0 (the resource should now be freed). A release that would
// take the counter negative is a bug and is reported via panic, per
// spec.md §3's "underflow is a bug and must be reported" invariant.
func (r *RefCount) Release() bool {
	v := r.n.Add(-1)
	if v < 0 {
		panic(kerrors.ErrRefCountUnderflow)
	}
	return v == 0
}

// Get returns the current count.
func (r *RefCount) Get() int32 { return r.n.Load() }

// TryAcquire attempts a CAS-based acquire that refuses when the
// current count is zero, preventing resurrection of a resource that
// has already hit zero references.
func (r *RefCount) TryAcquire() bool {
	for {
		cur := r.n.Load()
		if cur == 0 {
			return false
		}
		if r.n.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}
