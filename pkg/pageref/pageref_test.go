package pageref

import (
	"testing"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/pmm"
	"github.com/stretchr/testify/assert"
)

// Property 1: refcount conservation.
func TestRefcountConservation(t *testing.T) {
	tbl := NewTable()
	f := pmm.Frame(0x1000)

	assert.Equal(t, int32(1), tbl.Acquire(f))
	assert.Equal(t, int32(2), tbl.Acquire(f))
	assert.Equal(t, int32(2), tbl.Get(f))

	zero := tbl.Release(f)
	assert.False(t, zero)
	assert.Equal(t, int32(1), tbl.Get(f))

	zero = tbl.Release(f)
	assert.True(t, zero)
	assert.Equal(t, int32(0), tbl.Get(f))
}

func TestReleaseUntrackedFramePanics(t *testing.T) {
	tbl := NewTable()
	assert.PanicsWithValue(t, kerrors.ErrRefCountUnderflow, func() {
		tbl.Release(pmm.Frame(0x9000))
	})
}

func TestSetInitializesFreshOwnership(t *testing.T) {
	tbl := NewTable()
	f := pmm.Frame(0x2000)
	tbl.Set(f, 1)
	assert.Equal(t, int32(1), tbl.Get(f))
}
