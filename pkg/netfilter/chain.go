package netfilter

import (
	"sync"

	"github.com/kappaos/kernel/internal/klog"
)

// FilterChain holds rules sorted in ascending priority plus a default
// action applied when no rule matches.
type FilterChain struct {
	mu      sync.RWMutex
	Name    string
	Default Action
	rules   []*FilterRule
}

// NewFilterChain returns an empty chain with the given default action.
func NewFilterChain(name string, def Action) *FilterChain {
	return &FilterChain{Name: name, Default: def}
}

// AddRule inserts rule so the chain stays sorted by ascending
// priority (spec.md §4.12 / §3).
func (c *FilterChain) AddRule(rule *FilterRule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := 0
	for i < len(c.rules) && c.rules[i].Priority <= rule.Priority {
		i++
	}
	c.rules = append(c.rules, nil)
	copy(c.rules[i+1:], c.rules[i:])
	c.rules[i] = rule
}

// Rules returns the chain's rules in evaluation order.
func (c *FilterChain) Rules() []*FilterRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*FilterRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Evaluate walks the chain in priority order. A LOG-action match
// updates its counters and continues to the next rule; any other
// matching rule's action terminates evaluation and is returned. No
// match returns the chain's default action (spec.md §4.12).
func (c *FilterChain) Evaluate(p Packet) Action {
	c.mu.RLock()
	rules := c.rules
	c.mu.RUnlock()

	for _, r := range rules {
		if !r.Matches(p) {
			continue
		}
		r.packetCount.Add(1)
		r.byteCount.Add(int64(p.Size))
		if r.Action == LOG {
			klog.For("netfilter").WithField("chain", c.Name).WithField("priority", r.Priority).
				WithField("direction", p.Direction).Info("rule hit")
			continue
		}
		return r.Action
	}
	return c.Default
}

// Chains bundles the predefined INPUT/OUTPUT/FORWARD chains and the
// global enable gate; when disabled, Evaluate short-circuits to
// ACCEPT for every chain (spec.md §4.12).
type Chains struct {
	Enabled bool

	Input   *FilterChain
	Output  *FilterChain
	Forward *FilterChain
}

// NewChains returns the three predefined chains, each defaulting to
// ACCEPT, with filtering enabled.
func NewChains() *Chains {
	return &Chains{
		Enabled: true,
		Input:   NewFilterChain("INPUT", ACCEPT),
		Output:  NewFilterChain("OUTPUT", ACCEPT),
		Forward: NewFilterChain("FORWARD", ACCEPT),
	}
}

func (c *Chains) chainFor(dir Direction) *FilterChain {
	switch dir {
	case INPUT:
		return c.Input
	case OUTPUT:
		return c.Output
	default:
		return c.Forward
	}
}

// Evaluate dispatches p to the chain matching its direction, or
// ACCEPT unconditionally if the global gate is disabled.
func (c *Chains) Evaluate(p Packet) Action {
	if !c.Enabled {
		return ACCEPT
	}
	return c.chainFor(p.Direction).Evaluate(p)
}
