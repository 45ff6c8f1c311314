package mac

import (
	"github.com/google/uuid"
	"github.com/kappaos/kernel/internal/klog"
	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/ksync"
)

// AVCCapacity is the fixed ring size of the access-vector cache
// (spec.md §4.11).
const AVCCapacity = kconfig.AVCCapacity

type avcEntry struct {
	valid  bool
	source string
	target string
	class  ObjectClass
	vector AccessVector

	// CorrelationID lets a log aggregator join this cached decision
	// with other audit entries (MAC profile denials, KASAN allocation
	// records) logged around the same access.
	CorrelationID string
}

// AVC is a fixed-capacity ring of cached access decisions under a
// single RW lock; it is read-mostly (spec.md §5g).
type AVC struct {
	lock    ksync.RWMutex
	entries [AVCCapacity]avcEntry
	size    uint64

	hits   ksync.Int64
	misses ksync.Int64
}

// NewAVC returns an empty AVC.
func NewAVC() *AVC { return &AVC{} }

// Lookup linearly scans for a matching (source, target, class) entry;
// a hit increments the hit counter and returns its cached vector, a
// miss increments the miss counter.
func (a *AVC) Lookup(source, target string, class ObjectClass) (AccessVector, bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	for _, e := range a.entries {
		if e.valid && e.source == source && e.target == target && e.class == class {
			a.hits.Add(1)
			return e.vector, true
		}
	}
	a.misses.Add(1)
	return 0, false
}

// Insert overwrites the ring slot at size % AVCCapacity with a new
// entry, per spec.md §4.11. The entry is tagged with a fresh
// correlation ID and audited through the shared kernel log so an
// aggregator can join this AVC insert with related MAC/KASAN entries.
func (a *AVC) Insert(source, target string, class ObjectClass, vector AccessVector) string {
	id := uuid.New().String()

	a.lock.Lock()
	slot := a.size % AVCCapacity
	a.entries[slot] = avcEntry{valid: true, source: source, target: target, class: class, vector: vector, CorrelationID: id}
	a.size++
	a.lock.Unlock()

	klog.For("mac/avc").WithField("source", source).WithField("target", target).
		WithField("correlation_id", id).Debug("avc entry inserted")
	return id
}

// Hits returns the lifetime hit counter.
func (a *AVC) Hits() int64 { return a.hits.Load() }

// Misses returns the lifetime miss counter.
func (a *AVC) Misses() int64 { return a.misses.Load() }
