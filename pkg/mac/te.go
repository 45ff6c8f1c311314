package mac

import (
	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
)

// MaxTERules bounds the type-enforcement rule table (spec.md §4.11).
const MaxTERules = kconfig.MaxTERules

// TERule is one (source_domain, target_domain, class, allowed) rule.
type TERule struct {
	SourceDomain string
	TargetDomain string
	Class        ObjectClass
	Allowed      AccessVector
}

// TypeEnforcement holds up to MaxTERules TERule records under a
// single RW lock.
type TypeEnforcement struct {
	lock  ksync.RWMutex
	rules []TERule
}

// NewTypeEnforcement returns an empty rule table.
func NewTypeEnforcement() *TypeEnforcement {
	return &TypeEnforcement{}
}

// AddRule appends rule, failing with ErrTooManyRules once MaxTERules
// is reached.
func (te *TypeEnforcement) AddRule(rule TERule) error {
	te.lock.Lock()
	defer te.lock.Unlock()
	if len(te.rules) >= MaxTERules {
		return kerrors.ErrTooManyRules
	}
	te.rules = append(te.rules, rule)
	return nil
}

// CheckAccess returns true iff a matching (source, target, class) rule
// exists whose Allowed vector covers every bit of requested; any
// unmatched source/target/class combination is default-deny (spec.md
// §4.11).
func (te *TypeEnforcement) CheckAccess(source, target string, class ObjectClass, requested AccessVector) bool {
	te.lock.RLock()
	defer te.lock.RUnlock()
	for _, r := range te.rules {
		if r.SourceDomain == source && r.TargetDomain == target && r.Class == class {
			if requested&r.Allowed == requested {
				return true
			}
		}
	}
	return false
}
