// The copy-on-write fork engine (component F, spec.md §4.2). Grounded
// on vm.Vm_t's fork path and Sys_pgfault's COW branch (vm/as.go): on
// fork, every writable present page of the parent is marked COW and
// read-only and its physical frame's refcount is bumped; the child's
// page table gets an identical (frame, flags) copy. On a later write
// fault to a COW page, the faulting process either claims sole
// ownership of an unshared frame or copies it privately.
package vmm

import (
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/paging"
	"github.com/kappaos/kernel/pkg/pmm"
)

// Fork creates a child address space sharing the parent's writable
// pages copy-on-write. Both parent and child addresses spaces must use
// the same Allocator/PageRefs, since frames are now jointly owned.
func (as *AddressSpace) Fork() (*AddressSpace, error) {
	child := New(as.Allocator, as.PageRefs)

	as.lock.Lock()
	defer as.lock.Unlock()

	for _, v := range as.vmas {
		childVma := &Vma{Start: v.Start, End: v.End, Perms: v.Perms, FileOffset: v.FileOffset}

		for pv := v.Start; pv < v.End; pv += pmm.PageSize {
			frame, ok := as.Mapper.Translate(pv)
			if !ok {
				continue
			}
			flags, err := as.Mapper.GetFlags(pv)
			if err != nil {
				continue
			}

			if v.Perms.Write {
				// Step 1: mark the parent's page COW+read-only and bump
				// the frame's refcount (spec.md §4.2 step 1).
				as.PageRefs.Acquire(frame)
				flags = paging.MarkCOW(flags)
				if err := as.Mapper.UpdateFlags(pv, flags); err != nil {
					return nil, err
				}
			}

			// Step 2: copy the (possibly updated) PTE into the child
			// unchanged — same frame, same flags.
			if err := child.Mapper.Map(pv, frame, flags); err != nil {
				return nil, err
			}
		}
		child.insertSorted(childVma)
	}

	return child, nil
}

// resolveCOWFaultLocked implements spec.md §4.2's write-fault
// resolution. Callers must hold as.lock.
func (as *AddressSpace) resolveCOWFaultLocked(pageVA uintptr) error {
	oldFrame, ok := as.Mapper.Translate(pageVA)
	if !ok {
		return &AccessViolation{Addr: pageVA, Code: SegvMapErr}
	}

	refs := as.PageRefs.Get(oldFrame)
	switch {
	case refs == 1:
		// Sole owner: clear COW, set writable, release the refcount to
		// 0 (the frame stays live because the mapping persists).
		flags, err := as.Mapper.GetFlags(pageVA)
		if err != nil {
			return &AccessViolation{Addr: pageVA, Code: SegvMapErr}
		}
		flags = paging.ClearCOW(flags) | paging.Writable
		if err := as.Mapper.UpdateFlags(pageVA, flags); err != nil {
			return err
		}
		as.PageRefs.Release(oldFrame)
		return nil

	case refs > 1:
		newFrame, err := as.Allocator.Alloc()
		if err != nil {
			return kerrors.ErrNoPageAllocator
		}
		copy(as.Allocator.Bytes(newFrame), as.Allocator.Bytes(oldFrame))

		flags, err := as.Mapper.GetFlags(pageVA)
		if err != nil {
			_ = as.Allocator.Free(newFrame)
			return &AccessViolation{Addr: pageVA, Code: SegvMapErr}
		}
		flags = paging.ClearCOW(flags) | paging.Writable

		if err := as.Mapper.Map(pageVA, newFrame, flags); err != nil {
			_ = as.Allocator.Free(newFrame)
			return err
		}
		as.PageRefs.Set(newFrame, 1)

		if as.PageRefs.Release(oldFrame) {
			_ = as.Allocator.Free(oldFrame)
		}
		return nil

	default:
		// A COW page with refcount 0 means the fork accounting path
		// has a bug; surfaced rather than silently treated as unique.
		return kerrors.ErrRefCountUnderflow
	}
}
