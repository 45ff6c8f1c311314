// Package kernel wires the core's per-process state together
// (component P): a Process binds an address space, signal queue,
// resource usage, and resource group, and exposes the syscalls the
// core surfaces (sys_kill, sys_sigaction, sys_sigprocmask,
// sys_sigpending, flock). Grounded on the conceptual shape of small
// glue functions like defs.Mkdev, generalized to spec.md §6.
package kernel

import (
	"sync"

	"github.com/kappaos/kernel/pkg/accnt"
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
	"github.com/kappaos/kernel/pkg/resgroup"
	"github.com/kappaos/kernel/pkg/signal"
	"github.com/kappaos/kernel/pkg/vmm"
)

// ProcessState enumerates the process lifecycle states of spec.md §3's
// data model.
type ProcessState int

const (
	StateNew ProcessState = iota
	StateReady
	StateRunning
	StateSleeping
	StateStopped
	StateZombie
)

// Process binds the per-process subsystems of this core.
type Process struct {
	PID, PPID  int
	UID, GID   int
	EUID       int
	Name       string
	MainThread int // this core models one thread per process; MainThread == PID

	ExitCode ksync.Int64
	state    ksync.Int32

	AddrSpace *vmm.AddressSpace
	Signals   *signal.Queue
	Usage     *accnt.ResourceUsage
	Group     *resgroup.Group
}

// NewProcess constructs a Process with freshly initialized subsystems,
// starting in state Ready.
func NewProcess(pid, ppid, uid, gid, euid int, name string, as *vmm.AddressSpace, group *resgroup.Group) *Process {
	p := &Process{
		PID:        pid,
		PPID:       ppid,
		UID:        uid,
		GID:        gid,
		EUID:       euid,
		Name:       name,
		MainThread: pid,
		AddrSpace:  as,
		Signals:    signal.New(),
		Usage:      accnt.New(),
		Group:      group,
	}
	p.state.Store(int32(StateReady))
	return p
}

// State returns the process's current lifecycle state.
func (p *Process) State() ProcessState { return ProcessState(p.state.Load()) }

func (p *Process) setState(s ProcessState) { p.state.Store(int32(s)) }

// Exit transitions p to Zombie and records exitCode, per spec.md §5's
// cancellation invariant: delivery of SIGKILL marks the process Zombie
// on next check.
func (p *Process) Exit(exitCode int) {
	p.ExitCode.Store(int64(exitCode))
	p.setState(StateZombie)
}

// Stop transitions p to Stopped, per spec.md §5: SIGSTOP moves the
// process to Stopped.
func (p *Process) Stop() { p.setState(StateStopped) }

// Resume transitions a Stopped process back to Running on SIGCONT.
func (p *Process) Resume() { p.setState(StateRunning) }

// Table is the process table sys_kill looks processes up in.
type Table struct {
	mu        sync.RWMutex
	processes map[int]*Process
}

// NewTable returns an empty process table.
func NewTable() *Table {
	return &Table{processes: make(map[int]*Process)}
}

// Add registers proc in the table.
func (t *Table) Add(proc *Process) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processes[proc.PID] = proc
}

// Remove deregisters the process with the given pid.
func (t *Table) Remove(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.processes, pid)
}

// Find looks up a process by pid.
func (t *Table) Find(pid int) (*Process, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.processes[pid]
	if !ok {
		return nil, kerrors.ErrNoSuchProcess
	}
	return p, nil
}

// notifyParent routes a child state-transition SIGCHLD to proc's
// parent, if the parent is still present in the table (an orphaned
// process with no reachable parent is silently not notified).
func (t *Table) notifyParent(proc *Process, event signal.ChildEvent, exitCode int) {
	parent, err := t.Find(proc.PPID)
	if err != nil {
		return
	}
	parent.Signals.NotifyParent(event, proc.PID, exitCode)
}
