package ksync

import (
	"sync"
	"testing"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/stretchr/testify/assert"
)

func TestInt32LoadStoreAddCAS(t *testing.T) {
	var a Int32
	a.Store(5)
	assert.Equal(t, int32(5), a.Load())
	assert.Equal(t, int32(8), a.Add(3))
	assert.True(t, a.CompareAndSwap(8, 10))
	assert.False(t, a.CompareAndSwap(8, 99))
	assert.Equal(t, int32(10), a.Load())
}

func TestInt64MaxInt64IsMonotonic(t *testing.T) {
	var a Int64
	assert.True(t, a.MaxInt64(100))
	assert.False(t, a.MaxInt64(50))
	assert.Equal(t, int64(100), a.Load())
	assert.True(t, a.MaxInt64(250))
	assert.Equal(t, int64(250), a.Load())
}

func TestInt64MaxInt64ConcurrentConvergesToTrueMax(t *testing.T) {
	var a Int64
	var wg sync.WaitGroup
	for i := int64(1); i <= 100; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			a.MaxInt64(v)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(100), a.Load())
}

func TestUint64LoadStoreAddCAS(t *testing.T) {
	var u Uint64
	u.Store(1)
	assert.Equal(t, uint64(3), u.Add(2))
	assert.True(t, u.CompareAndSwap(3, 7))
	assert.Equal(t, uint64(7), u.Load())
}

func TestRefCountAcquireReleaseAndUnderflowPanics(t *testing.T) {
	rc := NewRefCount(1)
	assert.Equal(t, int32(2), rc.Acquire())
	assert.False(t, rc.Release())
	assert.True(t, rc.Release())
	assert.Equal(t, int32(0), rc.Get())

	assert.PanicsWithValue(t, kerrors.ErrRefCountUnderflow, func() {
		rc.Release()
	})
}

func TestRefCountTryAcquireRefusesAtZero(t *testing.T) {
	rc := NewRefCount(1)
	a := assert.New(t)
	a.True(rc.Release())
	a.False(rc.TryAcquire(), "must not resurrect a resource at zero references")
	a.Equal(int32(0), rc.Get())
}

func TestSeqLockReadValidateDetectsConcurrentWrite(t *testing.T) {
	var s SeqLock
	seq := s.ReadBegin()
	assert.True(t, s.ReadValidate(seq))

	s.WriteLock()
	s.WriteUnlock()

	assert.False(t, s.ReadValidate(seq), "a completed write must invalidate the prior read")
}

func TestSeqLockWriteLockSerializesWriters(t *testing.T) {
	var s SeqLock
	var mu sync.Mutex
	order := make([]int, 0, 4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.WriteLock()
			defer s.WriteUnlock()
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	assert.Len(t, order, 4)
}

func TestMutexAndRWMutexAndOnce(t *testing.T) {
	var m Mutex
	m.Lock()
	m.Unlock()

	var rw RWMutex
	rw.RLock()
	rw.RUnlock()
	rw.Lock()
	rw.Unlock()

	var once Once
	calls := 0
	for i := 0; i < 3; i++ {
		once.Do(func() { calls++ })
	}
	assert.Equal(t, 1, calls)
}
