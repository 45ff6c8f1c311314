package ksync

import "sync"

// SpinLock is a mutual-exclusion lock for short, non-blocking critical
// sections: accounting rings, KASAN shadow updates, AVC/TE tables. On
// a hosted Go runtime there is no benefit to a true busy-wait spin, so
// this is backed by sync.Mutex; the type exists so call sites document
// the "never block on I/O or user memory while held" discipline from
// spec.md §5 rather than reusing a general-purpose mutex type that
// invites longer critical sections.
type SpinLock struct {
	mu sync.Mutex
}

func (s *SpinLock) Lock()   { s.mu.Lock() }
func (s *SpinLock) Unlock() { s.mu.Unlock() }

// RWMutex wraps sync.RWMutex. AVC/TE/keyring tables are read-mostly
// (spec.md §5g) so readers use RLock/RUnlock.
type RWMutex struct {
	mu sync.RWMutex
}

func (m *RWMutex) Lock()    { m.mu.Lock() }
func (m *RWMutex) Unlock()  { m.mu.Unlock() }
func (m *RWMutex) RLock()   { m.mu.RLock() }
func (m *RWMutex) RUnlock() { m.mu.RUnlock() }

// Mutex wraps sync.Mutex for address-space and directory locks that
// may be held across longer operations (VMA mutation, rename).
type Mutex struct {
	mu sync.Mutex
}

func (m *Mutex) Lock()   { m.mu.Lock() }
func (m *Mutex) Unlock() { m.mu.Unlock() }

// Once wraps sync.Once for one-shot idempotent initialization of the
// process-wide singletons named in spec.md §9 (KASAN, MAC, netfilter
// chains, SMP context, module verifier).
type Once struct {
	once sync.Once
}

func (o *Once) Do(f func()) { o.once.Do(f) }
