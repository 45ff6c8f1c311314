package signal

import (
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
)

// Queue is a per-process signal queue: pending/blocked masks, a
// 32-slot action table, and a FIFO of Info records. Grounded on the
// embedded-lock idiom of accnt.Accnt_t, generalized to spec.md §4.5's
// queue/dequeue algorithm. The lock is a spinlock: blocking operations
// must never hold it (spec.md §5c).
type Queue struct {
	lock ksync.SpinLock

	pending Set
	blocked Set
	actions [NumSignals + 1]Action
	infos   []Info // ordered FIFO
}

// New returns an empty signal queue with every action defaulted.
func New() *Queue {
	return &Queue{}
}

// Queue records sig as pending, per spec.md §4.5: SIGKILL/SIGSTOP are
// always recorded; any other signal is recorded only if it is not
// currently blocked. Records are appended to the ordered info FIFO.
func (q *Queue) Queue(sig int, info Info) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if !IsUncatchable(sig) && q.blocked.Contains(sig) {
		return
	}
	q.pending = q.pending.Add(sig)
	q.infos = append(q.infos, info)
}

// Dequeue computes deliverable = pending &^ blocked, picks the lowest
// numbered signal, removes the first matching Info from the FIFO and
// clears the pending bit. If no matching Info is queued (can happen
// for a bare synthesized signal), a zero-value Info carrying just the
// signal number is returned.
func (q *Queue) Dequeue() (Info, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	deliverable := q.pending.Intersect(^q.blocked)
	sig, ok := deliverable.FirstSignal()
	if !ok {
		return Info{}, false
	}

	q.pending = q.pending.Remove(sig)
	for i, info := range q.infos {
		if info.Signal == sig {
			q.infos = append(q.infos[:i], q.infos[i+1:]...)
			return info, true
		}
	}
	return Info{Signal: sig}, true
}

// HasPending reports whether any deliverable signal is currently
// pending (used by scenario S2: a blocked signal must not count).
func (q *Queue) HasPending() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return !q.pending.Intersect(^q.blocked).Empty()
}

// Pending returns a snapshot of the raw pending mask, for sys_sigpending.
func (q *Queue) Pending() Set {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.pending
}

// Blocked returns a snapshot of the blocked mask.
func (q *Queue) Blocked() Set {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.blocked
}

// Block adds mask to the blocked set. SIGKILL/SIGSTOP can never be
// blocked regardless of what mask requests.
func (q *Queue) Block(mask Set) {
	q.lock.Lock()
	defer q.lock.Unlock()
	mask = mask.Remove(SIGKILL).Remove(SIGSTOP)
	q.blocked = q.blocked.Merge(mask)
}

// Unblock removes mask from the blocked set.
func (q *Queue) Unblock(mask Set) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.blocked = q.blocked.Intersect(^mask)
}

// SetBlocked replaces the blocked mask wholesale (sys_sigprocmask's
// SETMASK behavior).
func (q *Queue) SetBlocked(mask Set) {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.blocked = mask.Remove(SIGKILL).Remove(SIGSTOP)
}

// SetAction installs act for signal sig. SIGKILL/SIGSTOP reject any
// attempt to install a handler (spec.md §6: CannotCatch).
func (q *Queue) SetAction(sig int, act Action) error {
	if sig <= 0 || sig > NumSignals {
		return kerrors.ErrInvalidSignal
	}
	if IsUncatchable(sig) && act.Disposition == DispositionHandle {
		return kerrors.ErrCannotCatch
	}
	q.lock.Lock()
	defer q.lock.Unlock()
	q.actions[sig] = act
	return nil
}

// GetAction returns the currently installed action for sig.
func (q *Queue) GetAction(sig int) (Action, error) {
	if sig <= 0 || sig > NumSignals {
		return Action{}, kerrors.ErrInvalidSignal
	}
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.actions[sig], nil
}

// ResetOnExec reverts every non-ignored handler to default, clears the
// blocked mask, and keeps pending signals intact (spec.md §4.5 "exec
// reset").
func (q *Queue) ResetOnExec() {
	q.lock.Lock()
	defer q.lock.Unlock()
	for i := range q.actions {
		if q.actions[i].Disposition == DispositionHandle {
			q.actions[i] = Action{}
		}
	}
	q.blocked = 0
}
