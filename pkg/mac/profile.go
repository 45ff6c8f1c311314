package mac

import (
	"github.com/kappaos/kernel/internal/klog"
	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/ksync"
)

// MaxProfileRules bounds an AppArmor-style profile's rule table
// (spec.md §4.11).
const MaxProfileRules = kconfig.MaxProfileRules

// ProfileMode enumerates a Profile's enforcement mode.
type ProfileMode int

const (
	Enforce ProfileMode = iota
	Complain
	Disabled
)

// ProfileRule is a single (path, access) rule; matching is
// exact-string for this core.
type ProfileRule struct {
	Path   string
	Access AccessVector
}

// Profile is an AppArmor-style confinement profile: {name, mode,
// rules[128]}.
type Profile struct {
	lock ksync.RWMutex

	Name  string
	Mode  ProfileMode
	rules []ProfileRule

	audited ksync.Int64
}

// NewProfile returns an empty profile in the given mode.
func NewProfile(name string, mode ProfileMode) *Profile {
	return &Profile{Name: name, Mode: mode}
}

// AddRule appends rule if under MaxProfileRules; excess rules are
// silently dropped (the profile format has no overflow error kind in
// spec.md §4.11, only a fixed-size array).
func (p *Profile) AddRule(rule ProfileRule) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if len(p.rules) >= MaxProfileRules {
		return
	}
	p.rules = append(p.rules, rule)
}

// Check evaluates path/access against the profile: in Disabled mode
// everything is allowed; in Enforce mode a non-matching access is
// denied; in Complain mode a denial is instead audited and allowed
// (spec.md §4.11).
func (p *Profile) Check(path string, access AccessVector) (allowed bool, audited bool) {
	if p.Mode == Disabled {
		return true, false
	}

	p.lock.RLock()
	matched := false
	for _, r := range p.rules {
		if r.Path == path && access&r.Access == access {
			matched = true
			break
		}
	}
	p.lock.RUnlock()

	if matched {
		return true, false
	}
	if p.Mode == Complain {
		p.audited.Add(1)
		klog.For("mac/profile").WithField("profile", p.Name).WithField("path", path).
			Warn("complain-mode denial audited and allowed")
		return true, true
	}
	return false, false
}

// AuditCount returns how many Complain-mode denials have been audited.
func (p *Profile) AuditCount() int64 { return p.audited.Load() }
