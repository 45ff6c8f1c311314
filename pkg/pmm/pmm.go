// Package pmm implements the physical frame allocator: it hands out
// and reclaims 4 KiB-aligned physical page frames and backs every
// mapping operation in pkg/paging and pkg/vmm. Grounded on the
// teacher's mem.Page_i interface and mem.Physmem free-list discipline
// (mem/mem.go, mem/dmap.go), generalized from a real physical-memory
// bitmap to a free-list over a simulated address range.
package pmm

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kerrors"
)

// PageSize is the frame size in bytes, matching spec.md's 4 KiB frame.
const PageSize = 4096

// Frame identifies a physical page frame by its base address.
type Frame uintptr

// Allocator hands out and reclaims 4 KiB physical frames from a fixed
// range. It is safe for concurrent use.
type Allocator struct {
	mu    sync.Mutex
	base  Frame
	limit Frame
	next  Frame
	free  []Frame
	mem   []byte // simulated physical RAM backing [base, limit)
}

// New creates an Allocator managing the half-open frame range
// [base, base+size), rounding size down to a whole number of frames.
// The allocator also owns a simulated physical-memory buffer so that
// callers (the COW fault handler, user-pointer copies) can read and
// write the bytes a frame actually holds, not just its address.
func New(base uintptr, size uintptr) *Allocator {
	nframes := size / PageSize
	return &Allocator{
		base:  Frame(base),
		limit: Frame(base) + Frame(nframes*PageSize),
		next:  Frame(base),
		mem:   make([]byte, nframes*PageSize),
	}
}

// Bytes returns the PageSize-length slice of simulated physical memory
// backing frame f. It panics if f is not within the managed range,
// since every caller is expected to have validated f via Contains or
// by having received it from Alloc.
func (a *Allocator) Bytes(f Frame) []byte {
	off := uintptr(f - a.base)
	return a.mem[off : off+PageSize]
}

// Alloc returns a fresh, zeroed frame or ErrNoPageAllocator if the
// range is exhausted and the free list is empty.
func (a *Allocator) Alloc() (Frame, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.free); n > 0 {
		f := a.free[n-1]
		a.free = a.free[:n-1]
		clear(a.Bytes(f))
		return f, nil
	}
	if a.next >= a.limit {
		return 0, kerrors.ErrNoPageAllocator
	}
	f := a.next
	a.next += PageSize
	return f, nil
}

// Free returns a frame to the allocator for reuse. Callers must not
// free a frame that is still referenced by any mapping; reference
// counting for shared frames lives in pkg/pageref, one layer up.
func (a *Allocator) Free(f Frame) error {
	if f < a.base || f >= a.limit || f%PageSize != 0 {
		return kerrors.ErrInvalidPhysicalAddress
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, f)
	return nil
}

// Contains reports whether f falls within the allocator's managed
// range, regardless of whether it is currently allocated.
func (a *Allocator) Contains(f Frame) bool {
	return f >= a.base && f < a.limit && f%PageSize == 0
}

// Capacity returns the total number of frames the allocator manages.
func (a *Allocator) Capacity() int {
	return int((a.limit - a.base) / PageSize)
}
