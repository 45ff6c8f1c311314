package smp

import "github.com/kappaos/kernel/pkg/kerrors"

// MadtEntry mirrors one ACPI MADT Local-APIC record as the firmware
// would report it.
type MadtEntry struct {
	ProcessorID int
	ApicID      int
	Enabled     bool
}

// Madt is the parsed subset of the MADT this core needs: the raw
// Local-APIC entries and the apic id of the currently running CPU
// (used to identify the BSP).
type Madt struct {
	Entries       []MadtEntry
	RunningApicID int
}

// DiscoverCPUs yields one CpuInfo per enabled Local-APIC entry in
// madt, assigning sequential CpuID values in entry order. The BSP is
// the CPU whose ApicID matches madt.RunningApicID (spec.md §4.13).
func DiscoverCPUs(madt Madt) ([]CpuInfo, error) {
	if len(madt.Entries) == 0 {
		return nil, kerrors.ErrNoMadt
	}

	var cpus []CpuInfo
	foundBSP := false
	id := 0
	for _, e := range madt.Entries {
		if !e.Enabled {
			continue
		}
		isBSP := e.ApicID == madt.RunningApicID
		foundBSP = foundBSP || isBSP
		cpus = append(cpus, CpuInfo{
			CpuID:       id,
			ProcessorID: e.ProcessorID,
			ApicID:      e.ApicID,
			Enabled:     true,
			IsBSP:       isBSP,
		})
		id++
	}
	if !foundBSP {
		return nil, kerrors.ErrNoApic
	}
	return cpus, nil
}
