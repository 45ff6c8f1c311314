// Package resgroup implements hierarchical resource groups and the
// throttle/limit primitives (component I): memory charging that is
// atomic across a parent chain, token-bucket I/O and network
// throttles, and thread/memlock/realtime-priority ceilings. Grounded
// on accnt.Accnt_t.Add's parent/child merge idiom and
// limits.Syslimit_t's single defaults-struct-of-ceilings pattern.
package resgroup

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kerrors"
)

// Group is a node in the resource-group hierarchy: {id, parent?,
// cpu_shares, cpu_quota_ns, memory_limit, memory_usage, io_weight,
// process_count} from spec.md §3.
type Group struct {
	mu sync.Mutex

	ID           string
	Parent       *Group
	CPUShares    int64
	CPUQuotaNS   int64
	MemoryLimit  int64
	memoryUsage  int64
	IOWeight     int64
	ProcessCount int64
}

// New returns a root or child group; pass parent=nil for a root.
func New(id string, parent *Group, memoryLimit int64) *Group {
	return &Group{ID: id, Parent: parent, MemoryLimit: memoryLimit}
}

// MemoryUsage returns the current charged usage.
func (g *Group) MemoryUsage() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.memoryUsage
}

// ChargeMemory increments g's usage by n; if the new usage exceeds
// g.MemoryLimit, the increment is rolled back and
// ErrMemoryLimitExceeded is returned. On success, it recurses into
// the parent; if that recursive charge fails, g's own increment is
// rolled back and the error propagates. The net effect: either every
// ancestor (and self) observes usage += n, or none do (spec.md §4.7).
func (g *Group) ChargeMemory(n int64) error {
	g.mu.Lock()
	g.memoryUsage += n
	if g.MemoryLimit > 0 && g.memoryUsage > g.MemoryLimit {
		g.memoryUsage -= n
		g.mu.Unlock()
		return kerrors.ErrMemoryLimitExceeded
	}
	g.mu.Unlock()

	if g.Parent == nil {
		return nil
	}
	if err := g.Parent.ChargeMemory(n); err != nil {
		g.mu.Lock()
		g.memoryUsage -= n
		g.mu.Unlock()
		return err
	}
	return nil
}

// UnchargeMemory decrements g's usage and recurses unconditionally up
// the parent chain.
func (g *Group) UnchargeMemory(n int64) {
	g.mu.Lock()
	g.memoryUsage -= n
	g.mu.Unlock()
	if g.Parent != nil {
		g.Parent.UnchargeMemory(n)
	}
}
