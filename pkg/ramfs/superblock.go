package ramfs

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kerrors"
)

// Magic is the ramfs/tmpfs superblock magic number (spec.md §6).
const Magic = 0x858458f6

// BlockSize is the nominal filesystem block size.
const BlockSize = 4096

// Superblock owns the inode namespace for one mounted ramfs/tmpfs
// instance, including the byte quota enforced across every inode's
// data (spec.md §4.9: "every change of byte-sized data updates the
// superblock's bytes_used atomically").
type Superblock struct {
	mu sync.Mutex

	Name     string // "ramfs" or "tmpfs"
	MaxBytes int64  // 0 = unlimited
	bytesUsed int64
	nextIno  uint64
	root     *Inode
}

// Mount creates a fresh superblock named name (expected "ramfs" or
// "tmpfs") with the given byte quota and a root directory.
func Mount(name string, maxBytes int64) *Superblock {
	sb := &Superblock{Name: name, MaxBytes: maxBytes}
	sb.root = sb.newInode(Directory, 0755, 0, 0)
	sb.root.entries = []direntry{
		{name: ".", inode: sb.root},
		{name: "..", inode: sb.root},
	}
	sb.root.Nlink = 2
	return sb
}

// Kill tears down the superblock, matching the mount/kill callback
// pair ramfs and tmpfs share (spec.md §4.9).
func (sb *Superblock) Kill() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.root = nil
	sb.bytesUsed = 0
}

// Root returns the superblock's root directory inode.
func (sb *Superblock) Root() *Inode { return sb.root }

// BytesUsed returns the current quota-tracked byte usage.
func (sb *Superblock) BytesUsed() int64 {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.bytesUsed
}

func (sb *Superblock) newInode(t InodeType, mode uint32, uid, gid int) *Inode {
	sb.mu.Lock()
	sb.nextIno++
	ino := sb.nextIno
	sb.mu.Unlock()

	return &Inode{Ino: ino, Type: t, Mode: mode, Uid: uid, Gid: gid, sb: sb}
}

func (sb *Superblock) chargeBytes(n int64) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.MaxBytes > 0 && sb.bytesUsed+n > sb.MaxBytes {
		return kerrors.ErrNoSpace
	}
	sb.bytesUsed += n
	return nil
}

func (sb *Superblock) unchargeBytes(n int64) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.bytesUsed -= n
}
