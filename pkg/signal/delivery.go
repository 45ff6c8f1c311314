package signal

// Outcome describes what happened when Deliver processed a dequeued
// signal.
type Outcome int

const (
	OutcomeHandled Outcome = iota // userland handler frame should be built
	OutcomeIgnored
	OutcomeStopped
	OutcomeContinued
	OutcomeTerminated
	OutcomeTerminatedCore
)

// Deliver applies q's installed action for info.Signal, or the
// default action table from spec.md §4.5 if none is installed.
func (q *Queue) Deliver(info Info) Outcome {
	act, err := q.GetAction(info.Signal)
	if err == nil && act.Disposition == DispositionHandle {
		return OutcomeHandled
	}
	if err == nil && act.Disposition == DispositionIgnore {
		return OutcomeIgnored
	}

	switch DefaultActionFor(info.Signal) {
	case ActionIgnore:
		return OutcomeIgnored
	case ActionStop:
		return OutcomeStopped
	case ActionContinue:
		return OutcomeContinued
	case ActionTerminateCore:
		return OutcomeTerminatedCore
	default:
		return OutcomeTerminated
	}
}

// ChildEvent enumerates the reasons a parent receives SIGCHLD
// (spec.md §4.5).
type ChildEvent int

const (
	ChildExited ChildEvent = iota
	ChildStopped
	ChildContinued
)

// Child SIGCHLD si_code values, per spec.md §4.5.
const (
	CLDExited    = 1
	CLDStopped   = 5
	CLDContinued = 6
)

// NotifyParent queues the SIGCHLD a parent receives when a child
// transitions state, with code and value set per spec.md §4.5:
// Exited (code=1, value=exit_code), Stopped (code=5), Continued (code=6).
func (parent *Queue) NotifyParent(event ChildEvent, childPID, exitCode int) {
	info := Info{Signal: SIGCHLD, PID: childPID}
	switch event {
	case ChildExited:
		info.Code = CLDExited
		info.Value = exitCode
	case ChildStopped:
		info.Code = CLDStopped
	case ChildContinued:
		info.Code = CLDContinued
	}
	parent.Queue(SIGCHLD, info)
}
