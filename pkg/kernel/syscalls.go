package kernel

import (
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/signal"
)

// SysKill implements sys_kill(pid, sig): looks pid up in the process
// table and queues sig on its signal queue. Fails InvalidSignal for
// sig outside [0, 32) and NoSuchProcess for an unknown pid (spec.md
// §6). SIGKILL/SIGSTOP/SIGCONT additionally drive the process state
// machine and notify the parent's signal queue with SIGCHLD, per
// spec.md §5's cancellation invariant and §4.5's parent-notification
// rule.
func (t *Table) SysKill(pid, sig int) error {
	if sig < 0 || sig >= signal.NumSignals+1 {
		return kerrors.ErrInvalidSignal
	}
	proc, err := t.Find(pid)
	if err != nil {
		return err
	}
	if sig == 0 {
		return nil // signal 0 is the existence probe; no delivery
	}
	proc.Signals.Queue(sig, signal.Info{Signal: sig, PID: pid, UID: proc.UID})

	switch sig {
	case signal.SIGKILL:
		proc.Exit(128 + sig)
		t.notifyParent(proc, signal.ChildExited, int(proc.ExitCode.Load()))
	case signal.SIGSTOP:
		proc.Stop()
		t.notifyParent(proc, signal.ChildStopped, 0)
	case signal.SIGCONT:
		proc.Resume()
		t.notifyParent(proc, signal.ChildContinued, 0)
	}
	return nil
}

// SysSigaction implements sys_sigaction(sig, act?, oldact?): installs
// act (if non-nil) for sig on proc and returns the previously
// installed action in oldact (if non-nil). Fails InvalidSignal for 0
// or >= 32, CannotCatch for SIGKILL/SIGSTOP when act requests a
// handler (spec.md §6).
func SysSigaction(proc *Process, sig int, act *signal.Action, oldact *signal.Action) error {
	if sig <= 0 || sig > signal.NumSignals {
		return kerrors.ErrInvalidSignal
	}
	if oldact != nil {
		prev, err := proc.Signals.GetAction(sig)
		if err != nil {
			return err
		}
		*oldact = prev
	}
	if act != nil {
		if err := proc.Signals.SetAction(sig, *act); err != nil {
			return err
		}
	}
	return nil
}

// SigprocmaskHow enumerates sys_sigprocmask's mask-update modes.
type SigprocmaskHow int

const (
	SETMASK SigprocmaskHow = iota
	BLOCK
	UNBLOCK
)

// SysSigprocmask implements sys_sigprocmask(how, set?, oldset?).
// Fails InvalidArgument for an unrecognized how (spec.md §6).
func SysSigprocmask(proc *Process, how SigprocmaskHow, set *signal.Set, oldset *signal.Set) error {
	if oldset != nil {
		*oldset = proc.Signals.Blocked()
	}
	if set == nil {
		return nil
	}
	switch how {
	case SETMASK:
		proc.Signals.SetBlocked(*set)
	case BLOCK:
		proc.Signals.Block(*set)
	case UNBLOCK:
		proc.Signals.Unblock(*set)
	default:
		return kerrors.ErrInvalidArgument
	}
	return nil
}

// SysSigpending implements sys_sigpending(set): writes proc's pending
// mask into set (spec.md §6).
func SysSigpending(proc *Process, set *signal.Set) {
	*set = proc.Signals.Pending()
}
