package resgroup

import (
	"sync"
	"time"

	"github.com/kappaos/kernel/pkg/kerrors"
)

// IoThrottle is a token-bucket limiter over bytes and ops per period.
// The period boundary is abrupt: once current-periodStart >= period,
// both counters reset rather than draining gradually (spec.md §4.7).
type IoThrottle struct {
	mu sync.Mutex

	Period      time.Duration
	ByteLimit   int64
	OpLimit     int64
	periodStart time.Time
	bytes       int64
	ops         int64
}

// NewIoThrottle returns a throttle with the given period and ceilings.
func NewIoThrottle(period time.Duration, byteLimit, opLimit int64) *IoThrottle {
	return &IoThrottle{Period: period, ByteLimit: byteLimit, OpLimit: opLimit}
}

// Check requests reqBytes/reqOps at now; on success both counters are
// incremented and nil is returned, otherwise ErrThrottled is returned
// with no side effect.
func (t *IoThrottle) Check(now time.Time, reqBytes, reqOps int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.periodStart.IsZero() || now.Sub(t.periodStart) >= t.Period {
		t.periodStart = now
		t.bytes = 0
		t.ops = 0
	}

	if t.bytes+reqBytes > t.ByteLimit || t.ops+reqOps > t.OpLimit {
		return kerrors.ErrThrottled
	}
	t.bytes += reqBytes
	t.ops += reqOps
	return nil
}

// NetworkThrottle is the same token-bucket discipline as IoThrottle
// but bytes-only (spec.md §4.7).
type NetworkThrottle struct {
	mu sync.Mutex

	Period      time.Duration
	ByteLimit   int64
	periodStart time.Time
	bytes       int64
}

// NewNetworkThrottle returns a throttle with the given period and byte ceiling.
func NewNetworkThrottle(period time.Duration, byteLimit int64) *NetworkThrottle {
	return &NetworkThrottle{Period: period, ByteLimit: byteLimit}
}

// Check requests reqBytes at now.
func (t *NetworkThrottle) Check(now time.Time, reqBytes int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.periodStart.IsZero() || now.Sub(t.periodStart) >= t.Period {
		t.periodStart = now
		t.bytes = 0
	}

	if t.bytes+reqBytes > t.ByteLimit {
		return kerrors.ErrThrottled
	}
	t.bytes += reqBytes
	return nil
}
