package pmm

import (
	"testing"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocExhaustion(t *testing.T) {
	a := New(0x1000, 2*PageSize)
	f1, err := a.Alloc()
	require.NoError(t, err)
	f2, err := a.Alloc()
	require.NoError(t, err)
	assert.NotEqual(t, f1, f2)

	_, err = a.Alloc()
	assert.ErrorIs(t, err, kerrors.ErrNoPageAllocator)
}

func TestFreeAndReuse(t *testing.T) {
	a := New(0x2000, PageSize)
	f, err := a.Alloc()
	require.NoError(t, err)
	require.NoError(t, a.Free(f))

	f2, err := a.Alloc()
	require.NoError(t, err)
	assert.Equal(t, f, f2)
}

func TestFreeRejectsOutOfRange(t *testing.T) {
	a := New(0x3000, PageSize)
	err := a.Free(Frame(0xdead0000))
	assert.ErrorIs(t, err, kerrors.ErrInvalidPhysicalAddress)
}

func TestBytesRoundTrip(t *testing.T) {
	a := New(0x4000, PageSize)
	f, err := a.Alloc()
	require.NoError(t, err)

	buf := a.Bytes(f)
	buf[0] = 0x42
	assert.Equal(t, byte(0x42), a.Bytes(f)[0])
}

func TestContainsAndCapacity(t *testing.T) {
	a := New(0x5000, 4*PageSize)
	assert.Equal(t, 4, a.Capacity())
	assert.True(t, a.Contains(Frame(0x5000)))
	assert.False(t, a.Contains(Frame(0x5000+4*PageSize)))
	assert.False(t, a.Contains(Frame(0x5001)))
}
