package accnt

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
)

// MaxUIDs bounds the quota table; UIDs at or above this value are
// silently permitted ("by design, they are unquotaed" — spec.md §4.6).
const MaxUIDs = kconfig.MaxUIDs

// QuotaLimits are the per-UID ceilings from spec.md §4.6.
type QuotaLimits struct {
	MaxCPUTimeUS int64
	MaxMemory    int64
	MaxDisk      int64
	MaxProcesses int64
}

type uidCounters struct {
	cpuTimeUS ksync.Int64
	memory    ksync.Int64
}

// QuotaTable enforces per-UID CPU and memory ceilings.
type QuotaTable struct {
	mu     sync.RWMutex
	limits map[int]QuotaLimits
	live   map[int]*uidCounters
}

// NewQuotaTable returns an empty quota table.
func NewQuotaTable() *QuotaTable {
	return &QuotaTable{
		limits: make(map[int]QuotaLimits),
		live:   make(map[int]*uidCounters),
	}
}

// SetLimits installs the quota ceilings for uid.
func (q *QuotaTable) SetLimits(uid int, limits QuotaLimits) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.limits[uid] = limits
}

func (q *QuotaTable) countersFor(uid int) *uidCounters {
	q.mu.Lock()
	defer q.mu.Unlock()
	c, ok := q.live[uid]
	if !ok {
		c = &uidCounters{}
		q.live[uid] = c
	}
	return c
}

// CheckQuota fails with ErrCpuQuotaExceeded or ErrMemoryQuotaExceeded
// if adding addCPU/addMem would breach uid's ceiling. UIDs >= MaxUIDs
// are unquotaed and always succeed (spec.md §4.6). On success the
// live counters are updated; on failure, no counter changes.
func (q *QuotaTable) CheckQuota(uid int, addCPU, addMem int64) error {
	if uid >= MaxUIDs {
		return nil
	}
	q.mu.RLock()
	limits, ok := q.limits[uid]
	q.mu.RUnlock()
	if !ok {
		return nil
	}

	c := q.countersFor(uid)
	if limits.MaxCPUTimeUS > 0 && c.cpuTimeUS.Load()+addCPU > limits.MaxCPUTimeUS {
		return kerrors.ErrCpuQuotaExceeded
	}
	if limits.MaxMemory > 0 && c.memory.Load()+addMem > limits.MaxMemory {
		return kerrors.ErrMemoryQuotaExceeded
	}
	c.cpuTimeUS.Add(addCPU)
	c.memory.Add(addMem)
	return nil
}
