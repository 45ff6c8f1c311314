package vmm

import (
	"testing"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/pageref"
	"github.com/kappaos/kernel/pkg/paging"
	"github.com/kappaos/kernel/pkg/pmm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddrSpace(t *testing.T) *AddressSpace {
	t.Helper()
	alloc := pmm.New(0x1000, 4096*pmm.PageSize)
	refs := pageref.NewTable()
	return New(alloc, refs)
}

func writeByte(t *testing.T, as *AddressSpace, va uintptr, b byte) {
	t.Helper()
	frame, ok := as.Mapper.Translate(va &^ (pmm.PageSize - 1))
	require.True(t, ok)
	as.Allocator.Bytes(frame)[va&(pmm.PageSize-1)] = b
}

func readByte(t *testing.T, as *AddressSpace, va uintptr) byte {
	t.Helper()
	frame, ok := as.Mapper.Translate(va &^ (pmm.PageSize - 1))
	require.True(t, ok)
	return as.Allocator.Bytes(frame)[va&(pmm.PageSize-1)]
}

// S1 (COW fork): Parent maps VA 0x400000 writable, writes byte 0x42.
// Fork child. Both read VA 0x400000 -> 0x42. Parent writes 0x99. Child
// reads VA 0x400000 -> 0x42. Parent reads -> 0x99.
func TestScenarioS1COWFork(t *testing.T) {
	parent := newAddrSpace(t)
	const va = 0x400000

	_, err := parent.MapRegion(va, pmm.PageSize, Permissions{Read: true, Write: true})
	require.NoError(t, err)
	writeByte(t, parent, va, 0x42)

	child, err := parent.Fork()
	require.NoError(t, err)

	assert.Equal(t, byte(0x42), readByte(t, parent, va))
	assert.Equal(t, byte(0x42), readByte(t, child, va))

	// Parent write triggers a COW fault.
	require.NoError(t, parent.HandlePageFault(va, true))
	writeByte(t, parent, va, 0x99)

	assert.Equal(t, byte(0x42), readByte(t, child, va))
	assert.Equal(t, byte(0x99), readByte(t, parent, va))
}

func TestCOWPageIsReadOnlyAndRefcountedAfterFork(t *testing.T) {
	parent := newAddrSpace(t)
	const va = 0x500000
	_, err := parent.MapRegion(va, pmm.PageSize, Permissions{Read: true, Write: true})
	require.NoError(t, err)

	child, err := parent.Fork()
	require.NoError(t, err)

	flags, err := parent.Mapper.GetFlags(va)
	require.NoError(t, err)
	assert.True(t, paging.IsCOW(flags), "fork must mark the parent's page COW")
	assert.False(t, flags&paging.Writable != 0, "COW page must not be writable")

	frame, ok := parent.Mapper.Translate(va)
	require.True(t, ok)
	assert.GreaterOrEqual(t, parent.PageRefs.Get(frame), int32(1))

	_ = child
}

// Property 2 (COW safety), sole-owner branch: a COW write fault on a
// frame with refcount 1 clears COW and sets writable without copying.
func TestSoleOwnerWriteFaultClearsCOWWithoutCopy(t *testing.T) {
	as := newAddrSpace(t)
	const va = 0x600000
	_, err := as.MapRegion(va, pmm.PageSize, Permissions{Read: true, Write: true})
	require.NoError(t, err)

	frame, ok := as.Mapper.Translate(va)
	require.True(t, ok)

	flags, err := as.Mapper.GetFlags(va)
	require.NoError(t, err)
	require.NoError(t, as.Mapper.UpdateFlags(va, paging.MarkCOW(flags)))
	require.NoError(t, as.HandlePageFault(va, true))

	flags, err = as.Mapper.GetFlags(va)
	require.NoError(t, err)
	assert.False(t, paging.IsCOW(flags))
	assert.True(t, flags&paging.Writable != 0)
	assert.Equal(t, int32(0), as.PageRefs.Get(frame))
}

func TestHandlePageFaultNoVma(t *testing.T) {
	as := newAddrSpace(t)
	err := as.HandlePageFault(0xdeadbeef, false)
	var av *AccessViolation
	require.ErrorAs(t, err, &av)
	assert.Equal(t, SegvMapErr, av.Code)
}

func TestHandlePageFaultNonCOWWriteIsAccessViolation(t *testing.T) {
	as := newAddrSpace(t)
	const va = 0x700000
	_, err := as.MapRegion(va, pmm.PageSize, Permissions{Read: true, Write: true})
	require.NoError(t, err)

	err = as.HandlePageFault(va, true)
	var av *AccessViolation
	require.ErrorAs(t, err, &av)
	assert.Equal(t, SegvAccErr, av.Code)
}

// Property 3: address-space disjointness.
func TestMapRegionRejectsOverlap(t *testing.T) {
	as := newAddrSpace(t)
	_, err := as.MapRegion(0x800000, 2*pmm.PageSize, Permissions{Read: true})
	require.NoError(t, err)

	_, err = as.MapRegion(0x800000+pmm.PageSize, pmm.PageSize, Permissions{Read: true})
	assert.ErrorIs(t, err, kerrors.ErrInvalidAddress)
}

func TestUnmapReleasesFrames(t *testing.T) {
	as := newAddrSpace(t)
	const va = 0x900000
	_, err := as.MapRegion(va, pmm.PageSize, Permissions{Read: true, Write: true})
	require.NoError(t, err)

	require.NoError(t, as.Unmap(va, pmm.PageSize))
	_, ok := as.Mapper.Translate(va)
	assert.False(t, ok)
	assert.Equal(t, 0, as.VMACount())
}

func TestProtectRegionPreservesCOWBit(t *testing.T) {
	parent := newAddrSpace(t)
	const va = 0xa00000
	_, err := parent.MapRegion(va, pmm.PageSize, Permissions{Read: true, Write: true})
	require.NoError(t, err)

	_, err = parent.Fork()
	require.NoError(t, err)

	require.NoError(t, parent.ProtectRegion(va, pmm.PageSize, Permissions{Read: true, Write: true}))
	flags, err := parent.Mapper.GetFlags(va)
	require.NoError(t, err)
	assert.True(t, paging.IsCOW(flags), "COW bit must persist across ProtectRegion")
}
