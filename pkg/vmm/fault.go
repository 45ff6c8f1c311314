package vmm

import (
	"fmt"

	"github.com/kappaos/kernel/pkg/paging"
	"github.com/kappaos/kernel/pkg/pmm"
)

// SegvCode mirrors the Linux SEGV_* codes a SIGSEGV carries when an
// access violation reaches userland (spec.md §4.3).
type SegvCode int

const (
	SegvMapErr SegvCode = iota + 1 // address not mapped to any object
	SegvAccErr                     // access violated VMA permissions
)

// AccessViolation reports a page-fault that could not be resolved
// in-kernel and must become a SIGSEGV for the faulting process.
type AccessViolation struct {
	Addr uintptr
	Code SegvCode
}

func (e *AccessViolation) Error() string {
	return fmt.Sprintf("access violation at 0x%x (code %d)", e.Addr, e.Code)
}

// HandlePageFault implements the dispatcher from spec.md §4.3:
//  1. find the VMA; no match ⇒ access violation (SegvMapErr).
//  2. read current PTE flags; not present ⇒ access violation (SegvMapErr).
//  3. if the PTE is COW and isWrite, invoke the COW handler; otherwise
//     access violation (SegvAccErr).
//
// Success implies the faulting instruction may be restarted.
func (as *AddressSpace) HandlePageFault(faultVA uintptr, isWrite bool) error {
	pageVA := faultVA &^ (pmm.PageSize - 1)

	as.lock.Lock()
	defer as.lock.Unlock()

	vma, _ := as.findVmaLocked(faultVA)
	if vma == nil {
		return &AccessViolation{Addr: faultVA, Code: SegvMapErr}
	}

	flags, err := as.Mapper.GetFlags(pageVA)
	if err != nil {
		return &AccessViolation{Addr: faultVA, Code: SegvMapErr}
	}

	if paging.IsCOW(flags) && isWrite {
		return as.resolveCOWFaultLocked(pageVA)
	}
	return &AccessViolation{Addr: faultVA, Code: SegvAccErr}
}
