package resgroup

import (
	"testing"
	"time"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3: root limit=1000, child limit=500. child.chargeMemory(100) ok;
// root.usage=100 and child.usage=100. child.chargeMemory(500) fails
// MemoryLimitExceeded; both usages remain 100.
func TestScenarioS3QuotaGroup(t *testing.T) {
	root := New("root", nil, 1000)
	child := New("child", root, 500)

	require.NoError(t, child.ChargeMemory(100))
	assert.Equal(t, int64(100), root.MemoryUsage())
	assert.Equal(t, int64(100), child.MemoryUsage())

	err := child.ChargeMemory(500)
	assert.ErrorIs(t, err, kerrors.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(100), root.MemoryUsage())
	assert.Equal(t, int64(100), child.MemoryUsage())
}

// Property 6, second half: unchargeMemory(n) returns every usage in the
// chain to its value before the matching chargeMemory(n).
func TestUnchargeMemoryRestoresOriginalUsage(t *testing.T) {
	root := New("root", nil, 1000)
	child := New("child", root, 500)

	require.NoError(t, child.ChargeMemory(100))
	child.UnchargeMemory(100)

	assert.Equal(t, int64(0), child.MemoryUsage())
	assert.Equal(t, int64(0), root.MemoryUsage())
}

func TestChargeMemoryRollsBackOnParentFailure(t *testing.T) {
	root := New("root", nil, 150)
	child := New("child", root, 1000)

	require.NoError(t, child.ChargeMemory(100))
	err := child.ChargeMemory(100)
	assert.ErrorIs(t, err, kerrors.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(100), child.MemoryUsage(), "child charge must roll back when parent rejects")
	assert.Equal(t, int64(100), root.MemoryUsage())
}

func TestIoThrottlePeriodReset(t *testing.T) {
	th := NewIoThrottle(time.Second, 1024, 10)
	t0 := time.Unix(0, 0)

	require.NoError(t, th.Check(t0, 900, 5))
	assert.ErrorIs(t, th.Check(t0, 200, 1), kerrors.ErrThrottled)

	// abrupt reset once period elapses
	require.NoError(t, th.Check(t0.Add(time.Second), 200, 1))
}

func TestThreadLimitOrdering(t *testing.T) {
	tl := NewThreadLimit(2, 3, 100)
	assert.ErrorIs(t, tl.AllowThreadCreate(2, 0), kerrors.ErrProcessThreadLimitExceeded)
	assert.ErrorIs(t, tl.AllowThreadCreate(0, 3), kerrors.ErrUidThreadLimitExceeded)
	require.NoError(t, tl.AllowThreadCreate(0, 0))
	assert.Equal(t, int64(1), tl.GlobalThreadCount())
}

func TestMemlockLimitCapBypass(t *testing.T) {
	ml := NewMemlockLimit(100, 1000)
	assert.ErrorIs(t, ml.Lock(200, 0, false), kerrors.ErrMemlockLimitExceeded)
	require.NoError(t, ml.Lock(200, 0, true))
}

func TestRtLimit(t *testing.T) {
	rl := NewRtLimit(10)
	assert.ErrorIs(t, rl.AllowRtPriority(20, false), kerrors.ErrRtPriorityDenied)
	require.NoError(t, rl.AllowRtPriority(20, true))
	require.NoError(t, rl.AllowRtPriority(5, false))
}
