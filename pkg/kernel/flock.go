package kernel

import (
	"sync"

	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/kerrors"
)

// LockType is the flock() lock kind.
type LockType int

const (
	Unlock LockType = iota
	Shared
	Exclusive
)

// LockMode distinguishes an advisory lock (cooperating callers only)
// from a mandatory one (the core itself would enforce it on read/write).
type LockMode int

const (
	Advisory LockMode = iota
	Mandatory
)

// MaxLocksPerFile and MaxLockedFilesPerProcess bound the flock table
// (spec.md §7: TooManyLocks, TooManyLockedFiles).
const (
	MaxLocksPerFile          = kconfig.MaxLocksPerFile
	MaxLockedFilesPerProcess = kconfig.MaxLockedFilesPerProcess
)

type heldLock struct {
	pid  int
	typ  LockType
	mode LockMode
}

type inodeLocks struct {
	holders []heldLock
}

// FlockTable tracks advisory/mandatory locks keyed by inode identity.
type FlockTable struct {
	mu         sync.Mutex
	byInode    map[uint64]*inodeLocks
	perProcess map[int]map[uint64]bool
}

// NewFlockTable returns an empty lock table.
func NewFlockTable() *FlockTable {
	return &FlockTable{
		byInode:    make(map[uint64]*inodeLocks),
		perProcess: make(map[int]map[uint64]bool),
	}
}

func (f *FlockTable) removeHolder(inode *inodeLocks, pid int) bool {
	for i, h := range inode.holders {
		if h.pid == pid {
			inode.holders = append(inode.holders[:i], inode.holders[i+1:]...)
			return true
		}
	}
	return false
}

func conflicts(existing []heldLock, pid int, typ LockType) bool {
	for _, h := range existing {
		if h.pid == pid {
			continue
		}
		if h.typ == Exclusive || typ == Exclusive {
			return true
		}
	}
	return false
}

// Flock implements flock(inode, type, mode) for the given pid: Unlock
// releases pid's lock on inode (silently tolerating an unlock pid
// never held, per spec.md §7); Shared/Exclusive requests a new lock,
// failing LockConflict if incompatible with an existing holder,
// TooManyLocks if the inode's holder list is full, or
// TooManyLockedFiles if pid would exceed its distinct-locked-files
// ceiling. NoProcess signals an invalid pid (spec.md §6).
func (f *FlockTable) Flock(pid int, inodeIno uint64, typ LockType, mode LockMode) error {
	if pid <= 0 {
		return kerrors.ErrNoProcess
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	inode, ok := f.byInode[inodeIno]
	if typ == Unlock {
		if ok {
			f.removeHolder(inode, pid)
		}
		if files, ok := f.perProcess[pid]; ok {
			delete(files, inodeIno)
		}
		return nil
	}

	if !ok {
		inode = &inodeLocks{}
		f.byInode[inodeIno] = inode
	}

	if conflicts(inode.holders, pid, typ) {
		return kerrors.ErrLockConflict
	}
	if !containsPid(inode.holders, pid) && len(inode.holders) >= MaxLocksPerFile {
		return kerrors.ErrTooManyLocks
	}

	files, ok := f.perProcess[pid]
	if !ok {
		files = make(map[uint64]bool)
		f.perProcess[pid] = files
	}
	if !files[inodeIno] && len(files) >= MaxLockedFilesPerProcess {
		return kerrors.ErrTooManyLockedFiles
	}

	f.removeHolder(inode, pid)
	inode.holders = append(inode.holders, heldLock{pid: pid, typ: typ, mode: mode})
	files[inodeIno] = true
	return nil
}

func containsPid(holders []heldLock, pid int) bool {
	for _, h := range holders {
		if h.pid == pid {
			return true
		}
	}
	return false
}
