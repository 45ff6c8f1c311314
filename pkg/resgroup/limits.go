package resgroup

import (
	"sync"

	"github.com/kappaos/kernel/pkg/ksync"
	"github.com/kappaos/kernel/pkg/kerrors"
)

// ThreadLimit enforces per-process, per-UID, and global thread
// ceilings in that order (spec.md §4.7).
type ThreadLimit struct {
	ProcessLimit int64
	UidLimit     int64
	GlobalLimit  int64
	global       ksync.Int64
}

// NewThreadLimit returns a ThreadLimit with the given ceilings.
func NewThreadLimit(processLimit, uidLimit, globalLimit int64) *ThreadLimit {
	return &ThreadLimit{ProcessLimit: processLimit, UidLimit: uidLimit, GlobalLimit: globalLimit}
}

// AllowThreadCreate checks processThreads+1 against ProcessLimit,
// uidThreads+1 against UidLimit, and the live global count+1 against
// GlobalLimit, in that order. On success the global counter is
// incremented.
func (t *ThreadLimit) AllowThreadCreate(processThreads, uidThreads int64) error {
	if t.ProcessLimit > 0 && processThreads+1 > t.ProcessLimit {
		return kerrors.ErrProcessThreadLimitExceeded
	}
	if t.UidLimit > 0 && uidThreads+1 > t.UidLimit {
		return kerrors.ErrUidThreadLimitExceeded
	}
	for {
		cur := t.global.Load()
		if t.GlobalLimit > 0 && cur+1 > t.GlobalLimit {
			return kerrors.ErrGlobalThreadLimitExceeded
		}
		if t.global.CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// GlobalThreadCount returns the live global thread count.
func (t *ThreadLimit) GlobalThreadCount() int64 { return t.global.Load() }

// MemlockLimit bounds locked (unswappable) memory per-process and
// globally. A caller holding CAP_IPC_LOCK bypasses the per-process
// ceiling; the global ceiling always applies (spec.md §4.7).
type MemlockLimit struct {
	mu sync.Mutex

	ProcessLimit int64
	GlobalLimit  int64
	globalLocked int64
}

// NewMemlockLimit returns a MemlockLimit with the given ceilings.
func NewMemlockLimit(processLimit, globalLimit int64) *MemlockLimit {
	return &MemlockLimit{ProcessLimit: processLimit, GlobalLimit: globalLimit}
}

// Lock requests amount more locked memory; processLocked is the
// caller's current locked total. hasCapIpcLock bypasses the
// per-process ceiling.
func (m *MemlockLimit) Lock(amount, processLocked int64, hasCapIpcLock bool) error {
	if !hasCapIpcLock && m.ProcessLimit > 0 && processLocked+amount > m.ProcessLimit {
		return kerrors.ErrMemlockLimitExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GlobalLimit > 0 && m.globalLocked+amount > m.GlobalLimit {
		return kerrors.ErrGlobalMemlockLimitExceeded
	}
	m.globalLocked += amount
	return nil
}

// Unlock releases amount of previously locked memory.
func (m *MemlockLimit) Unlock(amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalLocked -= amount
}

// RtLimit bounds the realtime scheduling priority a process may
// request. CAP_SYS_NICE bypasses MaxRtPriority entirely (spec.md §4.7).
type RtLimit struct {
	MaxRtPriority int
}

// NewRtLimit returns an RtLimit with the given ceiling.
func NewRtLimit(maxRtPriority int) *RtLimit {
	return &RtLimit{MaxRtPriority: maxRtPriority}
}

// AllowRtPriority permits any priority under CAP_SYS_NICE; otherwise
// only 0..MaxRtPriority.
func (r *RtLimit) AllowRtPriority(prio int, hasCapSysNice bool) error {
	if hasCapSysNice {
		return nil
	}
	if prio < 0 || prio > r.MaxRtPriority {
		return kerrors.ErrRtPriorityDenied
	}
	return nil
}
