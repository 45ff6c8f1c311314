package kasan

import (
	"testing"
	"time"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S5: onAlloc(0x3000, 64); checkAccess(0x3000, 64) ok; onFree(0x3000, 64);
// checkAccess(0x3000, 8) -> UseAfterFree.
func TestScenarioS5UseAfterFree(t *testing.T) {
	d := New()
	tr := NewTracker()

	d.OnAlloc(tr, 0x3000, 64, time.Unix(0, 0), nil)
	require.NoError(t, d.CheckAccess(0x3000, 64))

	require.NoError(t, d.OnFree(tr, 0x3000, 64))

	err := d.CheckAccess(0x3000, 8)
	assert.ErrorIs(t, err, kerrors.ErrUseAfterFree)
	assert.Equal(t, int64(1), d.Violations())
}

func TestDoubleFreeRejected(t *testing.T) {
	d := New()
	tr := NewTracker()
	d.OnAlloc(tr, 0x4000, 32, time.Unix(0, 0), nil)
	require.NoError(t, d.OnFree(tr, 0x4000, 32))

	err := tr.TrackFree(0x4000)
	assert.ErrorIs(t, err, kerrors.ErrDoubleFree)
}

func TestUnknownFreeRejected(t *testing.T) {
	tr := NewTracker()
	err := tr.TrackFree(0xdead)
	assert.ErrorIs(t, err, kerrors.ErrInvalidFree)
}

func TestTrackAllocAssignsUniqueCorrelationIDs(t *testing.T) {
	tr := NewTracker()
	id1 := tr.TrackAlloc(0x7000, 16, time.Unix(0, 0), nil)
	id2 := tr.TrackAlloc(0x8000, 16, time.Unix(0, 0), nil)
	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)

	rec, ok := tr.Lookup(0x7000)
	require.True(t, ok)
	assert.Equal(t, id1, rec.CorrelationID)
}

func TestStackProtectorPoisonsOnExit(t *testing.T) {
	d := New()
	sp := NewStackProtector(d, 0x5000, 16)
	require.NoError(t, d.CheckAccess(0x5000, 16))

	sp.Exit()
	err := d.CheckAccess(0x5000, 8)
	assert.ErrorIs(t, err, kerrors.ErrStackUseAfterFree)
}

func TestPartialBlockHeapOverflow(t *testing.T) {
	d := New()
	// Poison the 8-byte block at 0x6000 with partial-access value 4:
	// bytes 0..3 inside the block are accessible, 4..7 are not.
	d.Poison(0x6000, 8, 4)

	require.NoError(t, d.CheckAccess(0x6000, 4))
	err := d.CheckAccess(0x6004, 4)
	assert.ErrorIs(t, err, kerrors.ErrHeapOverflow)
}
