package smp

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kappaos/kernel/pkg/kerrors"
)

// InitDelay and SipiDelay are the spin-wait delays spec.md §4.13
// prescribes between IPIs during AP bring-up.
const (
	InitDelay = 10 * time.Millisecond
	SipiDelay = 200 * time.Microsecond
)

// Apic sends the interprocessor interrupts one AP's bring-up requires.
type Apic interface {
	SendInit(apicID int)
	SendSipi(apicID int, vector byte)
}

// Sleeper abstracts the spin-wait delay so tests can run bring-up
// without real wall-clock waits.
type Sleeper func(time.Duration)

// BringUpAP drives one AP through INIT-IPI, SIPI, SIPI with the
// prescribed delays, then polls its online flag until it goes online
// or pollTimeout elapses (spec.md §4.13). entry is invoked once, as
// the AP's execution would be after SIPI, to let it mark itself
// online; in a hosted simulation this stands in for the AP jumping to
// its real-mode entry point.
func BringUpAP(ctx context.Context, cpu *PerCpuData, apic Apic, vector byte, pollTimeout time.Duration, sleep Sleeper, entry func(*PerCpuData)) error {
	apic.SendInit(cpu.Info.ApicID)
	sleep(InitDelay)
	apic.SendSipi(cpu.Info.ApicID, vector)
	sleep(SipiDelay)
	apic.SendSipi(cpu.Info.ApicID, vector)

	go entry(cpu)

	deadline := time.Now().Add(pollTimeout)
	for !cpu.Online() {
		if time.Now().After(deadline) {
			return kerrors.ErrApStartupTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

// BringUpAll brings up every non-BSP CPU in cpus concurrently, one
// goroutine per AP via errgroup, and returns the PerCpuData for every
// CPU (including the BSP, already marked online) keyed by CpuID
// order. If any AP times out, the whole bring-up fails with that
// AP's error and the rest are left to converge or time out on their
// own goroutines, which the errgroup drains before returning.
func BringUpAll(ctx context.Context, cpus []CpuInfo, apic Apic, vector byte, pollTimeout time.Duration, sleep Sleeper, entry func(*PerCpuData)) ([]*PerCpuData, error) {
	perCpu := make([]*PerCpuData, len(cpus))
	for i, c := range cpus {
		perCpu[i] = newPerCpuData(c)
		if c.IsBSP {
			perCpu[i].MarkOnline()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range cpus {
		if c.IsBSP {
			continue
		}
		cpu := perCpu[i]
		g.Go(func() error {
			return BringUpAP(gctx, cpu, apic, vector, pollTimeout, sleep, entry)
		})
	}
	if err := g.Wait(); err != nil {
		return perCpu, err
	}
	return perCpu, nil
}
