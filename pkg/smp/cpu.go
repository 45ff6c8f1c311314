// Package smp implements multiprocessor bring-up (component O): MADT-
// driven CPU discovery, BSP identification, and AP INIT/SIPI/SIPI
// bring-up. Grounded on vm.Cpumap/Tlbshoot's per-CPU APIC-id
// addressing idiom; AP bring-up concurrency uses
// golang.org/x/sync/errgroup.
package smp

import (
	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/ksync"
)

// CpuInfo is one ACPI MADT Local-APIC entry: {cpu_id, processor_id,
// apic_id, enabled, is_bsp} (spec.md §4.13).
type CpuInfo struct {
	CpuID       int
	ProcessorID int
	ApicID      int
	Enabled     bool
	IsBSP       bool
}

// KernelStackSize is the fixed per-CPU kernel stack allocation
// (spec.md §4.13).
const KernelStackSize = kconfig.KernelStackSize

// PerCpuData is the per-CPU state allocated at bring-up: a kernel
// stack and an online flag.
type PerCpuData struct {
	Info   CpuInfo
	Stack  []byte
	online ksync.Int32
}

func newPerCpuData(info CpuInfo) *PerCpuData {
	return &PerCpuData{Info: info, Stack: make([]byte, KernelStackSize)}
}

// Online reports whether this CPU has completed bring-up.
func (d *PerCpuData) Online() bool { return d.online.Load() != 0 }

// MarkOnline flags the CPU online; called once the CPU's entry point
// runs (for the BSP, at init; for an AP, when it reaches its idle loop).
func (d *PerCpuData) MarkOnline() { d.online.Store(1) }
