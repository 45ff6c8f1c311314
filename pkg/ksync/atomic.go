// Package ksync provides the atomics and locking primitives shared by
// every subsystem in the kernel core: typed atomic counters, a
// spinlock, a reader/writer mutex, a one-shot gate, a sequence lock,
// and a reference counter. These mirror the embedded sync.Mutex /
// sync/atomic idioms the teacher kernel uses throughout accnt.Accnt_t
// and mem.Physmem, generalized into reusable types so every other
// package in this module builds on the same small set of primitives
// instead of reinventing them.
package ksync

import "sync/atomic"

// Int32 is a typed wrapper around an atomically accessed int32.
type Int32 struct {
	v int32
}

func (a *Int32) Load() int32        { return atomic.LoadInt32(&a.v) }
func (a *Int32) Store(val int32)    { atomic.StoreInt32(&a.v, val) }
func (a *Int32) Add(delta int32) int32 { return atomic.AddInt32(&a.v, delta) }
func (a *Int32) CompareAndSwap(old, new int32) bool {
	return atomic.CompareAndSwapInt32(&a.v, old, new)
}

// Int64 is a typed wrapper around an atomically accessed int64.
type Int64 struct {
	v int64
}

func (a *Int64) Load() int64        { return atomic.LoadInt64(&a.v) }
func (a *Int64) Store(val int64)    { atomic.StoreInt64(&a.v, val) }
func (a *Int64) Add(delta int64) int64 { return atomic.AddInt64(&a.v, delta) }
func (a *Int64) CompareAndSwap(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&a.v, old, new)
}

// Uint64 is a typed wrapper around an atomically accessed uint64.
type Uint64 struct {
	v uint64
}

func (a *Uint64) Load() uint64     { return atomic.LoadUint64(&a.v) }
func (a *Uint64) Store(val uint64) { atomic.StoreUint64(&a.v, val) }
func (a *Uint64) Add(delta uint64) uint64 { return atomic.AddUint64(&a.v, delta) }
func (a *Uint64) CompareAndSwap(old, new uint64) bool {
	return atomic.CompareAndSwapUint64(&a.v, old, new)
}

// MaxInt64 atomically sets v to max(v, cur) using a CAS loop, returning
// true if the stored value changed. This is the linearizable primitive
// behind ResourceUsage.updateMaxRss (spec.md §4.6, §5).
func (a *Int64) MaxInt64(cur int64) bool {
	for {
		old := a.Load()
		if cur <= old {
			return false
		}
		if a.CompareAndSwap(old, cur) {
			return true
		}
	}
}
