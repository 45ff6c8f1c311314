package kasan

import (
	"time"

	"github.com/google/uuid"
	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
)

// TrackerCapacity is the fixed ring size for allocation records
// (spec.md §4.10).
const TrackerCapacity = kconfig.TrackerCapacity

// AllocRecord is one tracked allocation: (addr, size, timestamp,
// stack, freed). CorrelationID lets a log aggregator join this
// allocation with a later violation report against the same address.
type AllocRecord struct {
	Addr          uint64
	Size          uint64
	Timestamp     time.Time
	Stack         []uintptr
	Freed         bool
	CorrelationID string
}

// Tracker is a spinlocked ring of AllocRecord, grounded on
// circbuf.Circbuf_t's fixed-capacity ring discipline.
type Tracker struct {
	lock  ksync.SpinLock
	buf   [TrackerCapacity]AllocRecord
	index map[uint64]int // addr -> slot, most recent allocation only
	head  int
	count int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{index: make(map[uint64]int)}
}

// TrackAlloc records a new allocation at addr, evicting the oldest
// record once the ring is full, and returns the allocation's fresh
// correlation ID.
func (t *Tracker) TrackAlloc(addr, size uint64, stamp time.Time, stack []uintptr) string {
	id := uuid.New().String()

	t.lock.Lock()
	defer t.lock.Unlock()

	slot := t.head
	if t.count == TrackerCapacity {
		if old, ok := t.index[t.buf[slot].Addr]; ok && old == slot {
			delete(t.index, t.buf[slot].Addr)
		}
	}
	t.buf[slot] = AllocRecord{Addr: addr, Size: size, Timestamp: stamp, Stack: stack, CorrelationID: id}
	t.index[addr] = slot
	t.head = (t.head + 1) % TrackerCapacity
	if t.count < TrackerCapacity {
		t.count++
	}
	return id
}

// TrackFree marks addr's most recent allocation record freed. It
// rejects a double-free (the record is already marked freed) and an
// unknown free (no matching record in the ring, e.g. it aged out or
// was never allocated).
func (t *Tracker) TrackFree(addr uint64) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	slot, ok := t.index[addr]
	if !ok {
		return kerrors.ErrInvalidFree
	}
	if t.buf[slot].Freed {
		return kerrors.ErrDoubleFree
	}
	t.buf[slot].Freed = true
	return nil
}

// Lookup returns the most recent record for addr, if still in the ring.
func (t *Tracker) Lookup(addr uint64) (AllocRecord, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	slot, ok := t.index[addr]
	if !ok {
		return AllocRecord{}, false
	}
	return t.buf[slot], true
}

// OnAlloc is the combined unpoison + track operation run when memory
// is allocated (spec.md §4.10).
func (d *Detector) OnAlloc(tr *Tracker, addr, size uint64, stamp time.Time, stack []uintptr) {
	d.Unpoison(addr, size)
	tr.TrackAlloc(addr, size, stamp, stack)
}

// OnFree is the combined track-free + quarantine operation run when
// memory is freed.
func (d *Detector) OnFree(tr *Tracker, addr, size uint64) error {
	if err := tr.TrackFree(addr); err != nil {
		return err
	}
	d.Quarantine(addr, size)
	return nil
}

// StackProtector unpoisons a stack frame's range on entry and poisons
// it with StackFree on exit, bracketing a function's local-variable
// lifetime.
type StackProtector struct {
	detector   *Detector
	addr, size uint64
}

// NewStackProtector unpoisons [addr, addr+size) and returns a guard
// whose Exit re-poisons it as freed stack memory.
func NewStackProtector(d *Detector, addr, size uint64) *StackProtector {
	d.Unpoison(addr, size)
	return &StackProtector{detector: d, addr: addr, size: size}
}

// Exit poisons the frame's range as StackFree.
func (p *StackProtector) Exit() {
	p.detector.Poison(p.addr, p.size, StackFree)
}
