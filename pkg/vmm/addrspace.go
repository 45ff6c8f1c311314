package vmm

import (
	"sort"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
	"github.com/kappaos/kernel/pkg/pageref"
	"github.com/kappaos/kernel/pkg/paging"
	"github.com/kappaos/kernel/pkg/pmm"
)

// AddressSpace is a per-process virtual address space: an ordered
// collection of VMAs plus the page mapper that realizes them. Every
// VMA mutation (map/unmap/fault) takes the address-space lock
// (spec.md §5a).
type AddressSpace struct {
	lock ksync.Mutex

	vmas []*Vma // kept sorted by Start; disjoint (spec.md §3)

	Mapper    *paging.Mapper
	Allocator *pmm.Allocator
	PageRefs  *pageref.Table
}

// New returns an empty address space backed by the given frame
// allocator and refcount table (normally shared process-wide so that
// sibling processes can reference the same physical frames after
// fork).
func New(alloc *pmm.Allocator, refs *pageref.Table) *AddressSpace {
	return &AddressSpace{
		Mapper:    paging.New(alloc),
		Allocator: alloc,
		PageRefs:  refs,
	}
}

// insertSorted inserts vma into vmas keeping the slice sorted by
// Start, at the head position is not meaningful any more (the teacher
// links new VMAs at the list head; the arena-index design cited in
// spec.md §9 instead keeps the slice sorted, which is what findVma and
// the disjointness invariant actually depend on).
func (as *AddressSpace) insertSorted(v *Vma) {
	i := sort.Search(len(as.vmas), func(i int) bool { return as.vmas[i].Start >= v.Start })
	as.vmas = append(as.vmas, nil)
	copy(as.vmas[i+1:], as.vmas[i:])
	as.vmas[i] = v
}

func (as *AddressSpace) removeAt(i int) {
	as.vmas = append(as.vmas[:i], as.vmas[i+1:]...)
}

// findVmaLocked performs the linear scan spec.md §4.1 requires
// ("findVma(addr): linear search over the VMA list") — deliberately
// not a binary search, even though the slice is kept sorted, per the
// documented O(N) lookup contract in spec.md §3.
func (as *AddressSpace) findVmaLocked(addr uintptr) (*Vma, int) {
	for i, v := range as.vmas {
		if v.Contains(addr) {
			return v, i
		}
	}
	return nil, -1
}

// FindVma returns the VMA containing addr, or (nil, false).
func (as *AddressSpace) FindVma(addr uintptr) (*Vma, bool) {
	as.lock.Lock()
	defer as.lock.Unlock()
	v, _ := as.findVmaLocked(addr)
	return v, v != nil
}

// overlaps reports whether [start, end) intersects any existing VMA.
func (as *AddressSpace) overlaps(start, end uintptr) bool {
	for _, v := range as.vmas {
		if start < v.End && end > v.Start {
			return true
		}
	}
	return false
}

func flagsFromPerms(p Permissions) paging.Flags {
	var f paging.Flags
	if p.Write {
		f |= paging.Writable
	}
	if !p.Execute {
		f |= paging.NoExecute
	}
	f |= paging.User
	return f
}

// MapRegion atomically allocates a new VMA covering [va, va+size),
// links it into the sorted VMA list, allocates and maps one physical
// frame per page, and stamps each page with flags derived from perms
// (writable⇐perms.Write, no_execute⇐¬perms.Execute, user=true), per
// spec.md §4.1. On any failure, pages already mapped for this region
// are unmapped and their frames released before the error is returned.
func (as *AddressSpace) MapRegion(va uintptr, size uintptr, perms Permissions) (*Vma, error) {
	if size == 0 {
		return nil, kerrors.ErrInvalidArgument
	}
	start := va
	end := va + pageRound(size)

	as.lock.Lock()
	defer as.lock.Unlock()

	if as.overlaps(start, end) {
		return nil, kerrors.ErrInvalidAddress
	}

	vma := &Vma{Start: start, End: end, Perms: perms}
	flags := flagsFromPerms(perms)

	mapped := make([]uintptr, 0, (end-start)/pmm.PageSize)
	for pv := start; pv < end; pv += pmm.PageSize {
		frame, err := as.Allocator.Alloc()
		if err != nil {
			as.rollback(mapped)
			return nil, err
		}
		if err := as.Mapper.Map(pv, frame, flags); err != nil {
			_ = as.Allocator.Free(frame)
			as.rollback(mapped)
			return nil, err
		}
		as.PageRefs.Set(frame, 1)
		mapped = append(mapped, pv)
	}

	as.insertSorted(vma)
	return vma, nil
}

// rollback unmaps and frees every page address in mapped. Used when
// MapRegion fails partway through.
func (as *AddressSpace) rollback(mapped []uintptr) {
	for _, pv := range mapped {
		if frame, ok := as.Mapper.Translate(pv); ok {
			_ = as.Mapper.Unmap(pv)
			as.PageRefs.Release(frame)
			_ = as.Allocator.Free(frame)
		}
	}
}

// Unmap removes the VMA covering [va, va+size) entirely, unmapping and
// releasing every page within it. This is a supplement to spec.md's
// named operations (§5 SUPPLEMENTED FEATURES in SPEC_FULL.md): the
// teacher's Vm_t exposes the equivalent Page_remove/Uvmfree operations.
func (as *AddressSpace) Unmap(va uintptr, size uintptr) error {
	start := va
	end := va + pageRound(size)

	as.lock.Lock()
	defer as.lock.Unlock()

	v, i := as.findVmaLocked(start)
	if v == nil || v.Start != start || v.End != end {
		return kerrors.ErrNotMapped
	}
	for pv := start; pv < end; pv += pmm.PageSize {
		if frame, ok := as.Mapper.Translate(pv); ok {
			_ = as.Mapper.Unmap(pv)
			if as.PageRefs.Release(frame) {
				_ = as.Allocator.Free(frame)
			}
		}
	}
	as.removeAt(i)
	return nil
}

// ProtectRegion updates the permissions of an existing VMA and the
// page-table flags of its present pages. Supplemented alongside
// MapRegion/Unmap per SPEC_FULL.md §5: the teacher's Vm_t exposes the
// equivalent flag-update path through Page_insert's perms argument.
func (as *AddressSpace) ProtectRegion(va uintptr, size uintptr, perms Permissions) error {
	start := va
	end := va + pageRound(size)

	as.lock.Lock()
	defer as.lock.Unlock()

	v, _ := as.findVmaLocked(start)
	if v == nil || v.Start != start || v.End != end {
		return kerrors.ErrNotMapped
	}
	v.Perms = perms
	flags := flagsFromPerms(perms)
	for pv := start; pv < end; pv += pmm.PageSize {
		if cur, err := as.Mapper.GetFlags(pv); err == nil {
			if paging.IsCOW(cur) {
				flags = paging.MarkCOW(flags)
			}
			_ = as.Mapper.UpdateFlags(pv, flags)
		}
	}
	return nil
}

// VMACount returns the number of VMAs currently tracked, for tests
// asserting the disjointness invariant (spec.md §8 property 3).
func (as *AddressSpace) VMACount() int {
	as.lock.Lock()
	defer as.lock.Unlock()
	return len(as.vmas)
}

// Lock/Unlock expose the address-space lock directly for callers (the
// page-fault dispatcher, the COW engine) that must hold it across a
// multi-step operation, mirroring the teacher's Lock_pmap/Unlock_pmap.
func (as *AddressSpace) Lock()   { as.lock.Lock() }
func (as *AddressSpace) Unlock() { as.lock.Unlock() }
