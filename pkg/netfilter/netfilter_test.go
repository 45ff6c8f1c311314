package netfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// S6: Chain default ACCEPT; add (DROP, dst_port=22, TCP, INPUT,
// priority=50). Packet dst_port=22,TCP,INPUT -> DROP. Packet
// dst_port=80,TCP,INPUT -> ACCEPT.
func TestScenarioS6Netfilter(t *testing.T) {
	chain := NewFilterChain("INPUT", ACCEPT)
	chain.AddRule(&FilterRule{
		Action: DROP, DstPort: 22, Protocol: TCP, Direction: INPUT, Priority: 50,
	})

	ssh := Packet{DstPort: 22, Protocol: TCP, Direction: INPUT}
	assert.Equal(t, DROP, chain.Evaluate(ssh))

	http := Packet{DstPort: 80, Protocol: TCP, Direction: INPUT}
	assert.Equal(t, ACCEPT, chain.Evaluate(http))
}

func TestLogContinuesEvaluation(t *testing.T) {
	chain := NewFilterChain("INPUT", ACCEPT)
	logRule := &FilterRule{Action: LOG, Direction: INPUT, Priority: 10}
	dropRule := &FilterRule{Action: DROP, Direction: INPUT, Priority: 20}
	chain.AddRule(dropRule)
	chain.AddRule(logRule)

	pkt := Packet{Direction: INPUT}
	assert.Equal(t, DROP, chain.Evaluate(pkt))
	assert.Equal(t, int64(1), logRule.PacketCount())
	assert.Equal(t, int64(1), dropRule.PacketCount())
}

func TestRulesStaySortedByPriority(t *testing.T) {
	chain := NewFilterChain("INPUT", ACCEPT)
	chain.AddRule(&FilterRule{Priority: 30})
	chain.AddRule(&FilterRule{Priority: 10})
	chain.AddRule(&FilterRule{Priority: 20})

	rules := chain.Rules()
	assert.Equal(t, 10, rules[0].Priority)
	assert.Equal(t, 20, rules[1].Priority)
	assert.Equal(t, 30, rules[2].Priority)
}

func TestGlobalGateShortCircuitsToAccept(t *testing.T) {
	chains := NewChains()
	chains.Input.AddRule(&FilterRule{Action: DROP, Direction: INPUT, Priority: 1})
	chains.Enabled = false

	assert.Equal(t, ACCEPT, chains.Evaluate(Packet{Direction: INPUT}))
}

func TestIPMaskMatching(t *testing.T) {
	chain := NewFilterChain("INPUT", ACCEPT)
	// 10.0.0.0/8
	chain.AddRule(&FilterRule{
		Action: DROP, SrcIP: 0x0A000000, SrcMask: 0xFF000000, Direction: INPUT, Priority: 1,
	})

	inSubnet := Packet{SrcIP: 0x0A010203, Direction: INPUT}
	assert.Equal(t, DROP, chain.Evaluate(inSubnet))

	outSubnet := Packet{SrcIP: 0x0B010203, Direction: INPUT}
	assert.Equal(t, ACCEPT, chain.Evaluate(outSubnet))
}
