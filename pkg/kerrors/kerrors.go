// Package kerrors defines the sentinel errors shared across the kernel
// core's subsystems. Every exported error here corresponds to one of
// the error kinds catalogued in the specification's error-handling
// design; callers compare against these with errors.Is, and wrap them
// with github.com/pkg/errors when they need to attach context (which
// address, which uid, which rule) without losing the sentinel.
package kerrors

import "errors"

// Memory / mapping errors.
var (
	ErrInvalidAddress         = errors.New("invalid address")
	ErrNotMapped              = errors.New("address not mapped")
	ErrAccessDenied           = errors.New("access denied")
	ErrInvalidPhysicalAddress = errors.New("invalid physical address")
	ErrRefCountUnderflow      = errors.New("refcount underflow")
	ErrNoPageAllocator        = errors.New("no page allocator")
	ErrPhysicalAddressOutOfRange = errors.New("physical address out of range")
)

// Process / signal errors.
var (
	ErrNoProcess       = errors.New("no process")
	ErrNoSuchProcess   = errors.New("no such process")
	ErrInvalidSignal   = errors.New("invalid signal")
	ErrCannotCatch     = errors.New("signal cannot be caught or blocked")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Quota / limit errors.
var (
	ErrCpuQuotaExceeded          = errors.New("cpu quota exceeded")
	ErrMemoryQuotaExceeded       = errors.New("memory quota exceeded")
	ErrMemoryLimitExceeded       = errors.New("memory limit exceeded")
	ErrProcessThreadLimitExceeded = errors.New("process thread limit exceeded")
	ErrUidThreadLimitExceeded    = errors.New("uid thread limit exceeded")
	ErrGlobalThreadLimitExceeded = errors.New("global thread limit exceeded")
	ErrMemlockLimitExceeded      = errors.New("memlock limit exceeded")
	ErrGlobalMemlockLimitExceeded = errors.New("global memlock limit exceeded")
	ErrRtPriorityDenied          = errors.New("rt priority denied")
	ErrThrottled                 = errors.New("throttled")
)

// Locking errors.
var (
	ErrLockConflict      = errors.New("lock conflict")
	ErrTooManyLocks      = errors.New("too many locks")
	ErrTooManyLockedFiles = errors.New("too many locked files")
)

// VFS errors.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrNotADirectory    = errors.New("not a directory")
	ErrIsADirectory     = errors.New("is a directory")
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	ErrNoSpace          = errors.New("no space")
	ErrBufferTooSmall   = errors.New("buffer too small")
	ErrExist            = errors.New("already exists")
	ErrInvalidPath      = errors.New("invalid path")
)

// KASAN errors.
var (
	ErrHeapOverflow      = errors.New("heap buffer overflow")
	ErrStackOverflow     = errors.New("stack buffer overflow")
	ErrStackUseAfterFree = errors.New("stack use after free")
	ErrUseAfterFree      = errors.New("use after free")
	ErrRedzoneViolation  = errors.New("redzone violation")
	ErrDoubleFree        = errors.New("double free")
	ErrInvalidFree       = errors.New("invalid free")
	ErrMemoryViolation   = errors.New("memory violation")
)

// MAC / module-signing errors.
var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrKeyNotFound         = errors.New("key not found")
	ErrKeyMismatch         = errors.New("key mismatch")
	ErrHashMismatch        = errors.New("hash mismatch")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrSignatureRequired   = errors.New("signature required")
	ErrTooManyRules        = errors.New("too many rules")
	ErrNameTooLong         = errors.New("name too long")
	ErrDescriptionTooLong  = errors.New("description too long")
)

// SMP errors.
var (
	ErrNoMadt             = errors.New("no MADT found")
	ErrNoApic             = errors.New("no local APIC found")
	ErrInvalidCpuId       = errors.New("invalid cpu id")
	ErrCannotStartBsp     = errors.New("cannot start the bootstrap processor")
	ErrCannotOfflineBsp   = errors.New("cannot offline the bootstrap processor")
	ErrApStartupTimeout   = errors.New("application processor startup timed out")
)
