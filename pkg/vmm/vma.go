// Package vmm implements the virtual-memory manager: per-process VMA
// lists, region mapping, page-fault dispatch (including the
// copy-on-write fork engine), user-pointer validation, and path
// sanitization. Grounded on the teacher's vm.Vm_t/vm.Vminfo_t/
// vm.Vmregion_t and Sys_pgfault (vm/as.go), restructured per spec.md
// §9's redesign note: rather than the teacher's intrusive doubly-
// linked list, VMAs are held in a single per-address-space slice kept
// sorted by start address (an arena-index design), so the address
// space exclusively owns all its VMAs and ranges stay sorted without
// raw pointer-chasing.
package vmm

import (
	"github.com/kappaos/kernel/pkg/pmm"
)

// Permissions describes a VMA's access rights and kind.
type Permissions struct {
	Read    bool
	Write   bool
	Execute bool
	Shared  bool
	Stack   bool
	Heap    bool
	Mmap    bool
	Cow     bool
	Locked  bool
}

// Vma is a contiguous, page-aligned virtual memory area.
type Vma struct {
	Start, End uintptr // [Start, End)
	Perms      Permissions
	FileOffset uint64
	refcount   int32
}

// Len returns the length of the VMA in bytes.
func (v *Vma) Len() uintptr { return v.End - v.Start }

// Contains reports whether addr falls within [Start, End).
func (v *Vma) Contains(addr uintptr) bool {
	return addr >= v.Start && addr < v.End
}

// pageRound rounds size up to a whole number of pages.
func pageRound(size uintptr) uintptr {
	const mask = pmm.PageSize - 1
	return (size + mask) &^ mask
}
