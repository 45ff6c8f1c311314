package ksync

import "sync/atomic"

// SeqLock is a writer-serialized, reader-optimistic lock: an odd
// sequence number means a write is in flight, an even one means the
// data is stable. Readers never block; they retry if the sequence
// changed during the read. Used by dentry/inode synchronization
// (component J) and by the rename context, which begins sequence-lock
// writes on both parent directories under ascending-address ordering.
type SeqLock struct {
	seq   Uint64
	write Mutex
}

// WriteLock serializes writers and bumps the sequence number to odd.
// WriteUnlock bumps it back to even. Both use release-store semantics
// (spec.md §5: "state transitions that must be observed before
// dependent reads ... use release-store/acquire-load pairing").
func (s *SeqLock) WriteLock() {
	s.write.Lock()
	atomic.AddUint64(&s.seq.v, 1)
}

func (s *SeqLock) WriteUnlock() {
	atomic.AddUint64(&s.seq.v, 1)
	s.write.Unlock()
}

// ReadBegin spins while the sequence is odd (a write is in flight) and
// returns the even sequence number observed.
func (s *SeqLock) ReadBegin() uint64 {
	for {
		seq := s.seq.Load()
		if seq&1 == 0 {
			return seq
		}
	}
}

// ReadValidate reports whether the sequence number is unchanged since
// ReadBegin, meaning the optimistic read was consistent.
func (s *SeqLock) ReadValidate(seq uint64) bool {
	return s.seq.Load() == seq
}
