package paging

import (
	"testing"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/pmm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapTranslateUnmap(t *testing.T) {
	m := New(nil)
	const va = 0x400000
	require.NoError(t, m.Map(va, pmm.Frame(0x1000), Writable|User))

	pa, ok := m.Translate(va)
	require.True(t, ok)
	assert.Equal(t, pmm.Frame(0x1000), pa)

	require.NoError(t, m.Unmap(va))
	_, ok = m.Translate(va)
	assert.False(t, ok)
}

func TestMapRejectsUnalignedAddress(t *testing.T) {
	m := New(nil)
	err := m.Map(0x401, pmm.Frame(0x1000), Writable)
	assert.ErrorIs(t, err, kerrors.ErrInvalidAddress)
}

func TestUnmapNotMapped(t *testing.T) {
	m := New(nil)
	err := m.Unmap(0x500000)
	assert.ErrorIs(t, err, kerrors.ErrNotMapped)
}

func TestGetAndUpdateFlagsPreservesPresent(t *testing.T) {
	m := New(nil)
	const va = 0x600000
	require.NoError(t, m.Map(va, pmm.Frame(0x2000), Writable))

	flags, err := m.GetFlags(va)
	require.NoError(t, err)
	assert.True(t, flags&Present != 0)
	assert.True(t, flags&Writable != 0)

	require.NoError(t, m.UpdateFlags(va, 0))
	flags, err = m.GetFlags(va)
	require.NoError(t, err)
	assert.True(t, flags&Present != 0)
	assert.False(t, flags&Writable != 0)
}

func TestCOWFlagHelpers(t *testing.T) {
	f := Writable | User
	cow := MarkCOW(f)
	assert.True(t, IsCOW(cow))
	assert.False(t, cow&Writable != 0)

	cleared := ClearCOW(cow)
	assert.False(t, IsCOW(cleared))
}

func TestActivateAndActive(t *testing.T) {
	m := New(nil)
	m.Activate()
	assert.Same(t, m, Active())
}

func TestMultipleEntriesAcrossTables(t *testing.T) {
	m := New(nil)
	// Addresses far enough apart to land in distinct PDPT/PD slots.
	addrs := []uintptr{0x0, 0x40000000, 0x8000000000}
	for i, va := range addrs {
		require.NoError(t, m.Map(va, pmm.Frame(uintptr(i+1)*pmm.PageSize), Writable))
	}
	for i, va := range addrs {
		pa, ok := m.Translate(va)
		require.True(t, ok)
		assert.Equal(t, pmm.Frame(uintptr(i+1)*pmm.PageSize), pa)
	}
}
