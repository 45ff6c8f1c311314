// Package kasan implements a shadow-memory access-checking detector
// (component L): one shadow byte per 8 tracked bytes, poison/
// unpoison/quarantine, the checkAccess algorithm, an allocation
// tracker, and a stack protector. There is no direct teacher file
// (biscuit carries no sanitizer); the allocation tracker is grounded
// on circbuf.Circbuf_t's ring-buffer discipline, and shadow mutation
// is grounded on mem.Physmem's spinlock-guarded update idiom.
package kasan

import (
	"github.com/kappaos/kernel/internal/klog"
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
)

// Shadow byte values, one per 8 bytes of tracked memory (spec.md §3).
const (
	ShadowAccessible  byte = 0x00 // 0..7 below also mean "accessible up to offset n"
	HeapOverflow1     byte = 0xFF // redzone
	StackFree         byte = 0xFE
	UseAfterFreeByte  byte = 0xFD
	StackOverflowByte byte = 0xFC
	HeapOverflow2     byte = 0xFB
)

// Detector owns the shadow-byte table for a tracked address range and
// the counters of accesses it has flagged.
type Detector struct {
	lock   ksync.SpinLock
	shadow map[uint64]byte

	violations ksync.Int64
}

// New returns an empty detector; every address starts accessible
// (absent from the shadow map is equivalent to shadow byte 0).
func New() *Detector {
	return &Detector{shadow: make(map[uint64]byte)}
}

func shadowIndex(addr uint64) uint64 { return addr >> 3 }

func (d *Detector) getShadow(addr uint64) byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.shadow[shadowIndex(addr)]
}

func (d *Detector) setShadowRange(addr uint64, size uint64, value byte) {
	d.lock.Lock()
	defer d.lock.Unlock()
	start := shadowIndex(addr)
	end := shadowIndex(addr + size - 1)
	for i := start; i <= end; i++ {
		if value == ShadowAccessible {
			delete(d.shadow, i)
		} else {
			d.shadow[i] = value
		}
	}
}

// Poison marks [addr, addr+size) with the given shadow value.
func (d *Detector) Poison(addr, size uint64, value byte) {
	d.setShadowRange(addr, size, value)
}

// Unpoison marks [addr, addr+size) fully accessible.
func (d *Detector) Unpoison(addr, size uint64) {
	d.setShadowRange(addr, size, ShadowAccessible)
}

// Quarantine poisons [addr, addr+size) as use-after-free.
func (d *Detector) Quarantine(addr, size uint64) {
	d.Poison(addr, size, UseAfterFreeByte)
}

// Violations returns how many CheckAccess calls have reported a fault.
func (d *Detector) Violations() int64 { return d.violations.Load() }

// CheckAccess walks [addr, addr+size) eight bytes at a time and
// reports the first violation found, per spec.md §4.10's exact
// dispatch: a partial-access shadow byte s in 1..7 is a heap overflow
// only once the in-block offset reaches s; the fixed poison bytes map
// to their named errors.
func (d *Detector) CheckAccess(addr, size uint64) error {
	for off := uint64(0); off < size; {
		blockStart := (addr + off) &^ 7
		s := d.getShadow(blockStart)

		step := 8 - ((addr + off) & 7)
		if off+step > size {
			step = size - off
		}

		if s == ShadowAccessible {
			off += step
			continue
		}
		if s >= 1 && s <= 7 {
			offsetInBlock := (addr + off) & 7
			if offsetInBlock >= uint64(s) {
				return d.report(addr+off, kerrors.ErrHeapOverflow)
			}
			off += step
			continue
		}

		switch s {
		case HeapOverflow1:
			return d.report(addr+off, kerrors.ErrHeapOverflow)
		case StackFree:
			return d.report(addr+off, kerrors.ErrStackUseAfterFree)
		case UseAfterFreeByte:
			return d.report(addr+off, kerrors.ErrUseAfterFree)
		case StackOverflowByte:
			return d.report(addr+off, kerrors.ErrStackOverflow)
		case HeapOverflow2:
			return d.report(addr+off, kerrors.ErrHeapOverflow)
		default:
			return d.report(addr+off, kerrors.ErrMemoryViolation)
		}
	}
	return nil
}

func (d *Detector) report(addr uint64, err error) error {
	d.violations.Add(1)
	klog.For("kasan").WithField("addr", addr).WithField("error", err).Warn("memory access violation")
	return err
}
