package vfssync

import "github.com/kappaos/kernel/pkg/ksync"

// DirSync is the per-directory synchronization state a rename needs
// to acquire: a mutex protecting directory-entry mutation and a
// SeqLock readers can use for optimistic lookups. Each directory gets
// a stable Addr used purely to order lock acquisition.
type DirSync struct {
	Addr uintptr
	Mu   ksync.Mutex
	Seq  ksync.SeqLock
}

// NewDirSync returns a DirSync stamped with the given ordering address.
func NewDirSync(addr uintptr) *DirSync {
	return &DirSync{Addr: addr}
}

// RenameContext coordinates a cross-directory rename: it locks the
// source and destination parent directories in ascending address
// order (never the reverse) to avoid an ABBA deadlock against a
// concurrent rename in the other direction, then begins both
// directories' sequence-lock writes.
type RenameContext struct {
	first, second *DirSync
}

// LockForRename locks src and dst in ascending Addr order and begins
// both SeqLock writes. It is safe to call with src == dst (renaming
// within one directory): the lock and seqlock are then each acquired
// once.
func LockForRename(src, dst *DirSync) *RenameContext {
	first, second := src, dst
	if dst.Addr < src.Addr {
		first, second = dst, src
	}

	first.Mu.Lock()
	if second != first {
		second.Mu.Lock()
	}
	first.Seq.WriteLock()
	if second != first {
		second.Seq.WriteLock()
	}

	return &RenameContext{first: first, second: second}
}

// Unlock ends both sequence-lock writes and releases both directory
// mutexes, in the reverse order they were acquired.
func (r *RenameContext) Unlock() {
	if r.second != r.first {
		r.second.Seq.WriteUnlock()
	}
	r.first.Seq.WriteUnlock()

	if r.second != r.first {
		r.second.Mu.Unlock()
	}
	r.first.Mu.Unlock()
}
