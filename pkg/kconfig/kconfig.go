// Package kconfig collects the kernel core's tunable constants in one
// place, the way the teacher's limits.Syslimit_t bundles every
// resource ceiling into a single defaults struct instead of scattering
// them across subsystems. There is no configuration file to parse —
// the core is parameterized entirely by constructor arguments (UID
// quota tables, resource-group trees, firewall chains) — so these are
// plain typed constants, re-exported by each owning package under its
// own name for call-site readability.
package kconfig

const (
	// MaxUIDs bounds the per-UID quota table (pkg/accnt, spec.md §4.6).
	// UIDs at or above this value are silently unquotaed.
	MaxUIDs = 65536

	// ExitLogCapacity is the fixed ring size of the process-exit
	// accounting log (pkg/accnt, spec.md §4.6).
	ExitLogCapacity = 1024
)

const (
	// CanonicalUserLimit is the exclusive upper bound of the canonical
	// x86-64 user address range (pkg/vmm, spec.md §4.4).
	CanonicalUserLimit uintptr = 0x0000_7FFF_FFFF_FFFF

	// MaxReadWriteSize bounds a single CopyFromUser/CopyToUser request
	// (pkg/vmm, spec.md §4.4).
	MaxReadWriteSize = (2 << 30) - 4096 // 2 GiB - 4 KiB

	// MaxPathLen bounds a single path passed to SanitizePath
	// (pkg/vmm, spec.md §4.4).
	MaxPathLen = 4096

	// MaxArgLen bounds a single CopyStringFromUser request
	// (pkg/vmm, spec.md §4.4).
	MaxArgLen = 128 * 1024
)

const (
	// AVCCapacity is the fixed ring size of the access-vector cache
	// (pkg/mac, spec.md §4.11).
	AVCCapacity = 256

	// MaxTERules bounds the type-enforcement rule table (pkg/mac,
	// spec.md §4.11).
	MaxTERules = 1024

	// MaxProfileRules bounds an AppArmor-style profile's rule table
	// (pkg/mac, spec.md §4.11).
	MaxProfileRules = 128

	// MaxKeys bounds the module-signing public-key ring (pkg/mac,
	// spec.md §4.11).
	MaxKeys = 16
)

const (
	// TrackerCapacity is the fixed ring size for KASAN allocation
	// records (pkg/kasan, spec.md §4.10).
	TrackerCapacity = 1024
)

const (
	// MaxLocksPerFile and MaxLockedFilesPerProcess bound the flock
	// table (pkg/kernel, spec.md §6).
	MaxLocksPerFile          = 64
	MaxLockedFilesPerProcess = 256
)

const (
	// KernelStackSize is the fixed per-CPU kernel stack allocation
	// (pkg/smp, spec.md §4.13).
	KernelStackSize = 16 * 1024
)
