// Package ramfs implements an in-memory filesystem (component K):
// regular files backed by a growable byte buffer, directories holding
// ordered (name, inode) entries seeded with "." and "..", symlinks,
// and quota-enforced writes. Registered under both "ramfs" and
// "tmpfs". Grounded on fs.Superblock_t's accessor style and ufs's
// inode/dentry split, restyled as an in-memory byte-buffer
// filesystem.
package ramfs

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kerrors"
)

// InodeType enumerates the kinds of inode this filesystem supports.
type InodeType int

const (
	Regular InodeType = iota
	Directory
	Symlink
)

// direntry is one (name, inode) pair inside a directory.
type direntry struct {
	name  string
	inode *Inode
}

// Inode is a ramfs inode: {ino, type, mode, uid, gid, nlink, size,
// private} plus a superblock pointer, per spec.md §3. Regular files
// carry a growable byte buffer; symlinks carry a target path;
// directories carry an ordered entry list.
type Inode struct {
	mu sync.Mutex

	Ino  uint64
	Type InodeType
	Mode uint32
	Uid  int
	Gid  int
	Nlink int

	sb *Superblock

	data    []byte     // Regular
	target  string     // Symlink
	entries []direntry // Directory
}

// Size returns the inode's logical size: buffer length for regular
// files, target length for symlinks, entry count for directories.
func (ino *Inode) Size() int {
	ino.mu.Lock()
	defer ino.mu.Unlock()
	switch ino.Type {
	case Regular:
		return len(ino.data)
	case Symlink:
		return len(ino.target)
	default:
		return len(ino.entries)
	}
}

// Stat returns the inode's {mode, uid, gid, nlink} (supplemented
// accessor; spec.md's inode model carries these fields but §4.9 omits
// explicit getters).
type Stat struct {
	Ino   uint64
	Type  InodeType
	Mode  uint32
	Uid   int
	Gid   int
	Nlink int
	Size  int
}

func (ino *Inode) Stat() Stat {
	return Stat{
		Ino:   ino.Ino,
		Type:  ino.Type,
		Mode:  ino.Mode,
		Uid:   ino.Uid,
		Gid:   ino.Gid,
		Nlink: ino.Nlink,
		Size:  ino.Size(),
	}
}

// Chmod updates the inode's mode bits.
func (ino *Inode) Chmod(mode uint32) {
	ino.mu.Lock()
	defer ino.mu.Unlock()
	ino.Mode = mode
}

// Chown updates the inode's owning uid/gid.
func (ino *Inode) Chown(uid, gid int) {
	ino.mu.Lock()
	defer ino.mu.Unlock()
	ino.Uid = uid
	ino.Gid = gid
}

// Readlink returns a symlink's target.
func (ino *Inode) Readlink() (string, error) {
	ino.mu.Lock()
	defer ino.mu.Unlock()
	if ino.Type != Symlink {
		return "", kerrors.ErrInvalidPath
	}
	return ino.target, nil
}

// Read copies up to len(buf) bytes starting at off into buf, returning
// the number of bytes copied.
func (ino *Inode) Read(buf []byte, off int) (int, error) {
	ino.mu.Lock()
	defer ino.mu.Unlock()
	if ino.Type != Regular {
		return 0, kerrors.ErrIsADirectory
	}
	if off >= len(ino.data) {
		return 0, nil
	}
	n := copy(buf, ino.data[off:])
	return n, nil
}

// Write writes data at offset off, zero-filling any gap between the
// old size and off, extending the backing buffer as needed, and
// updating the superblock's bytes_used (spec.md §4.9). Fails with
// ErrNoSpace if the superblock has a positive max_bytes and the write
// would exceed it; in that case neither the buffer nor bytes_used is
// changed.
func (ino *Inode) Write(data []byte, off int) (int, error) {
	ino.mu.Lock()
	defer ino.mu.Unlock()
	if ino.Type != Regular {
		return 0, kerrors.ErrIsADirectory
	}

	newLen := off + len(data)
	var grow int
	if newLen > len(ino.data) {
		grow = newLen - len(ino.data)
	}
	if grow > 0 {
		if err := ino.sb.chargeBytes(int64(grow)); err != nil {
			return 0, err
		}
	}

	if newLen > len(ino.data) {
		extended := make([]byte, newLen)
		copy(extended, ino.data)
		ino.data = extended
	}
	copy(ino.data[off:], data)
	return len(data), nil
}

// Truncate resizes the backing buffer: to 0 frees it, larger
// zero-extends, smaller shrinks (spec.md §4.9). Updates bytes_used
// accordingly.
func (ino *Inode) Truncate(size int) error {
	ino.mu.Lock()
	defer ino.mu.Unlock()
	if ino.Type != Regular {
		return kerrors.ErrIsADirectory
	}

	old := len(ino.data)
	if size == old {
		return nil
	}
	if size > old {
		grow := int64(size - old)
		if err := ino.sb.chargeBytes(grow); err != nil {
			return err
		}
		extended := make([]byte, size)
		copy(extended, ino.data)
		ino.data = extended
		return nil
	}

	ino.sb.unchargeBytes(int64(old - size))
	if size == 0 {
		ino.data = nil
		return nil
	}
	ino.data = ino.data[:size]
	return nil
}
