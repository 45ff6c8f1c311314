// Package netfilter implements the packet-filter core (component N):
// FilterRule matching, priority-ordered FilterChain evaluation with
// LOG-continues semantics, and the predefined INPUT/OUTPUT/FORWARD
// chains. No direct teacher file; the rule fields follow
// limits.Syslimit_t's struct-of-ceilings style and priority-ordered
// insertion follows vm.Vmregion_t's sorted-insert discipline.
package netfilter

import "github.com/kappaos/kernel/pkg/ksync"

// Action is the disposition a matching rule applies.
type Action int

const (
	ACCEPT Action = iota
	DROP
	REJECT
	LOG
)

// Direction is the traffic direction a rule and packet are matched on.
type Direction int

const (
	INPUT Direction = iota
	OUTPUT
	FORWARD
)

// Protocol identifies a packet's transport protocol; ANY on a rule
// matches every packet protocol.
type Protocol int

const (
	ANY Protocol = iota
	TCP
	UDP
	ICMP
)

// FilterRule is {src_ip, src_mask, dst_ip, dst_mask, src_port,
// dst_port, protocol, action, direction, priority, packet_count,
// byte_count} from spec.md §3.
type FilterRule struct {
	SrcIP, SrcMask uint32
	DstIP, DstMask uint32
	SrcPort        uint16 // 0 = any
	DstPort        uint16 // 0 = any
	Protocol       Protocol
	Action         Action
	Direction      Direction
	Priority       int

	packetCount ksync.Int64
	byteCount   ksync.Int64
}

// PacketCount and ByteCount return the rule's lifetime match counters.
func (r *FilterRule) PacketCount() int64 { return r.packetCount.Load() }
func (r *FilterRule) ByteCount() int64   { return r.byteCount.Load() }

// Packet is the minimal shape a FilterChain evaluates a rule against.
type Packet struct {
	SrcIP, DstIP     uint32
	SrcPort, DstPort uint16
	Protocol         Protocol
	Direction        Direction
	Size             int
}

func ipMatches(ip, ruleIP, ruleMask uint32) bool {
	return ip&ruleMask == ruleIP&ruleMask
}

// Matches reports whether p matches r: direction, protocol (ANY
// matches all), source/destination IP-under-mask, and source/
// destination port (0 = any) all agree (spec.md §4.12).
func (r *FilterRule) Matches(p Packet) bool {
	if r.Direction != p.Direction {
		return false
	}
	if r.Protocol != ANY && r.Protocol != p.Protocol {
		return false
	}
	if !ipMatches(p.SrcIP, r.SrcIP, r.SrcMask) {
		return false
	}
	if !ipMatches(p.DstIP, r.DstIP, r.DstMask) {
		return false
	}
	if r.SrcPort != 0 && r.SrcPort != p.SrcPort {
		return false
	}
	if r.DstPort != 0 && r.DstPort != p.DstPort {
		return false
	}
	return true
}
