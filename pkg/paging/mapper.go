// Package paging implements the 4-level page mapper: map/unmap, flag
// queries and updates, address translation, and activation. Grounded
// on the teacher's mem.Pa_t/PTE_* constants and vm.pmap_walk/
// Page_insert/Page_remove (mem/mem.go, vm/as.go), restructured as a
// real 4-level radix tree (PML4/PDPT/PD/PT, 512 entries per level,
// matching x86-64 long-mode paging) instead of the teacher's flat
// [512]Pa_t array walked by hand at each call site.
package paging

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/pmm"
)

const (
	pageSize       = pmm.PageSize
	entriesPerTable = 512
	levels          = 4
)

type entry struct {
	frame pmm.Frame
	flags Flags
	child *table
}

func (e *entry) present() bool { return e.flags&Present != 0 }

type table [entriesPerTable]entry

// Mapper owns exactly one root table and every descendant table it
// allocates (spec.md §4.1: "A mapper holds exclusive ownership of its
// root table and every descendant table it allocates").
type Mapper struct {
	mu    sync.Mutex
	root  *table
	alloc *pmm.Allocator // backs internally-allocated table pages
}

// New returns an empty Mapper. alloc, if non-nil, is used to account
// for the physical frames consumed by internal table pages; it may be
// nil for mappers used purely in tests that don't care about frame
// accounting for table pages themselves.
func New(alloc *pmm.Allocator) *Mapper {
	return &Mapper{root: &table{}, alloc: alloc}
}

func pageAligned(va uintptr) bool { return va%pageSize == 0 }

// index returns the 9-bit index into the page table at the given
// level (0 = PML4, 3 = PT) for virtual address va.
func index(va uintptr, level int) int {
	shift := uint(12 + 9*(levels-1-level))
	return int((va >> shift) & 0x1ff)
}

// walk returns the leaf entry for va, creating intermediate tables
// along the way when create is true. It returns nil if the entry does
// not exist and create is false.
func (m *Mapper) walk(va uintptr, create bool) *entry {
	t := m.root
	for level := 0; level < levels-1; level++ {
		idx := index(va, level)
		e := &t[idx]
		if e.child == nil {
			if !create {
				return nil
			}
			e.child = &table{}
			if m.alloc != nil {
				// Account for the frame the new table page would
				// consume on real hardware; errors are ignored here
				// because exhaustion of table-page frames is not one
				// of the documented mapper error kinds (only mapping
				// of data frames is; table-page accounting is best
				// effort for realism).
				_, _ = m.alloc.Alloc()
			}
		}
		t = e.child
	}
	return &t[index(va, levels-1)]
}

// Map installs a mapping from the page-aligned virtual address va to
// the physical frame pa with the given flags.
func (m *Mapper) Map(va uintptr, pa pmm.Frame, flags Flags) error {
	if !pageAligned(va) {
		return kerrors.ErrInvalidAddress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.walk(va, true)
	e.frame = pa
	e.flags = flags | Present
	return nil
}

// Unmap removes the mapping at va, if any.
func (m *Mapper) Unmap(va uintptr) error {
	if !pageAligned(va) {
		return kerrors.ErrInvalidAddress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.walk(va, false)
	if e == nil || !e.present() {
		return kerrors.ErrNotMapped
	}
	*e = entry{}
	return nil
}

// GetFlags returns the flags currently installed at va.
func (m *Mapper) GetFlags(va uintptr) (Flags, error) {
	if !pageAligned(va) {
		return 0, kerrors.ErrInvalidAddress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.walk(va, false)
	if e == nil || !e.present() {
		return 0, kerrors.ErrNotMapped
	}
	return e.flags, nil
}

// UpdateFlags replaces the flags at va, preserving Present.
func (m *Mapper) UpdateFlags(va uintptr, flags Flags) error {
	if !pageAligned(va) {
		return kerrors.ErrInvalidAddress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.walk(va, false)
	if e == nil || !e.present() {
		return kerrors.ErrNotMapped
	}
	e.flags = flags | Present
	return nil
}

// Translate returns the physical frame mapped at va, if present.
func (m *Mapper) Translate(va uintptr) (pmm.Frame, bool) {
	if !pageAligned(va) {
		return 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.walk(va, false)
	if e == nil || !e.present() {
		return 0, false
	}
	return e.frame, true
}

// activeMapper records which Mapper is currently "loaded" in the
// simulated CPU, the software analogue of writing CR3.
var (
	activeMu sync.Mutex
	active   *Mapper
)

// Activate makes m the active mapper, analogous to loading its root
// table into CR3 on real x86-64 hardware.
func (m *Mapper) Activate() {
	activeMu.Lock()
	defer activeMu.Unlock()
	active = m
}

// Active returns the currently activated Mapper, or nil if none.
func Active() *Mapper {
	activeMu.Lock()
	defer activeMu.Unlock()
	return active
}
