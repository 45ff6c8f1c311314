package ramfs

import (
	"testing"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S4: Mount ramfs with max_bytes=4096. Create /a. Write 4096 bytes ok.
// Write 1 more byte -> NoSpace.
func TestScenarioS4RamfsQuota(t *testing.T) {
	sb := Mount("ramfs", 4096)
	root := sb.Root()

	a, err := sb.Create(root, "a", 0644, 0, 0)
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := a.Write(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4096, n)
	assert.Equal(t, int64(4096), sb.BytesUsed())

	_, err = a.Write([]byte{0x42}, 4096)
	assert.ErrorIs(t, err, kerrors.ErrNoSpace)
	assert.Equal(t, int64(4096), sb.BytesUsed())
}

func TestMkdirSeedsDotAndDotDot(t *testing.T) {
	sb := Mount("ramfs", 0)
	root := sb.Root()

	sub, err := sb.Mkdir(root, "sub", 0755, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Nlink)
	assert.Equal(t, 3, root.Nlink, "parent nlink bumps from mkdir")

	entries, err := sb.Readdir(sub)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ".", entries[0].Name)
	assert.Equal(t, "..", entries[1].Name)
}

func TestRmdirRequiresEmptyDirectory(t *testing.T) {
	sb := Mount("ramfs", 0)
	root := sb.Root()

	sub, err := sb.Mkdir(root, "sub", 0755, 0, 0)
	require.NoError(t, err)

	_, err = sb.Create(sub, "file", 0644, 0, 0)
	require.NoError(t, err)

	err = sb.Rmdir(root, "sub")
	assert.ErrorIs(t, err, kerrors.ErrDirectoryNotEmpty)

	require.NoError(t, sb.Unlink(sub, "file"))
	require.NoError(t, sb.Rmdir(root, "sub"))
}

func TestWriteZeroFillsGap(t *testing.T) {
	sb := Mount("ramfs", 0)
	root := sb.Root()
	f, err := sb.Create(root, "f", 0644, 0, 0)
	require.NoError(t, err)

	_, err = f.Write([]byte("hi"), 10)
	require.NoError(t, err)

	buf := make([]byte, 12)
	n, err := f.Read(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	for i := 0; i < 10; i++ {
		assert.Equal(t, byte(0), buf[i])
	}
	assert.Equal(t, "hi", string(buf[10:12]))
}

func TestTruncateShrinkGrowZero(t *testing.T) {
	sb := Mount("ramfs", 0)
	root := sb.Root()
	f, err := sb.Create(root, "f", 0644, 0, 0)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello world"), 0)
	require.NoError(t, err)

	require.NoError(t, f.Truncate(5))
	assert.Equal(t, 5, f.Size())

	require.NoError(t, f.Truncate(10))
	assert.Equal(t, 10, f.Size())

	require.NoError(t, f.Truncate(0))
	assert.Equal(t, 0, f.Size())
}

func TestSymlinkAndReadlink(t *testing.T) {
	sb := Mount("ramfs", 0)
	root := sb.Root()
	_, err := sb.Symlink(root, "link", "/etc/passwd", 0, 0)
	require.NoError(t, err)

	target, err := sb.Lookup(root, "link")
	require.NoError(t, err)
	s, err := target.Readlink()
	require.NoError(t, err)
	assert.Equal(t, "/etc/passwd", s)
}

func TestMountByNameRegistersBothNames(t *testing.T) {
	ramfsSb, ok := MountByName("ramfs", 0)
	require.True(t, ok)
	assert.Equal(t, "ramfs", ramfsSb.Name)

	tmpfsSb, ok := MountByName("tmpfs", 0)
	require.True(t, ok)
	assert.Equal(t, "tmpfs", tmpfsSb.Name)

	_, ok = MountByName("ext4", 0)
	assert.False(t, ok)
}
