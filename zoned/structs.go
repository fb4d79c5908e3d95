/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"
	"net"
	"sync"

	"github.com/miekg/dns"
)

// Action is the verdict an ACL rule or ACL default assigns to a remote.
type Action uint8

const (
	Deny Action = iota
	Accept
)

func (a Action) String() string {
	if a == Accept {
		return "ACCEPT"
	}
	return "DENY"
}

// ACLRule is a single (address, action) entry in an ordered ACL.
type ACLRule struct {
	Net    *net.IPNet
	Port   uint16 // 0 means "any port"
	Action Action
}

// ACL is an ordered rule set with a default action, per spec.md §3/§4.2.
type ACL struct {
	Rules   []ACLRule
	Default Action
}

// NewDenyACL returns an empty ACL whose default action is DENY.
func NewDenyACL() *ACL {
	return &ACL{Default: Deny}
}

// Match returns the action for the given remote, first rule wins, else Default.
func (a *ACL) Match(ip net.IP, port uint16) Action {
	if a == nil {
		return Deny
	}
	for _, r := range a.Rules {
		if !r.Net.Contains(ip) {
			continue
		}
		if r.Port != 0 && port != 0 && r.Port != port {
			continue
		}
		return r.Action
	}
	return a.Default
}

func (a *ACL) Empty() bool {
	return a == nil || len(a.Rules) == 0
}

// ZoneACLSet is a zone's four ACLs, per spec.md §3.
type ZoneACLSet struct {
	XfrOut    *ACL
	XfrIn     *ACL
	NotifyIn  *ACL
	NotifyOut *ACL
}

// XfrInPhase is the AXFR-IN per-zone state machine's current state (spec.md §4.4).
type XfrInPhase uint8

const (
	PhaseIdle XfrInPhase = iota
	PhaseRefreshing
	PhaseRetrying
	PhaseExpired
)

var xfrInPhaseToString = map[XfrInPhase]string{
	PhaseIdle:       "IDLE",
	PhaseRefreshing: "REFRESHING",
	PhaseRetrying:   "RETRYING",
	PhaseExpired:    "EXPIRED",
}

func (p XfrInPhase) String() string { return xfrInPhaseToString[p] }

// MasterAddr is the (family, address, port) of a zone's transfer-in master.
type MasterAddr struct {
	Family  string // "ip4" | "ip6"
	Address string
	Port    uint16
}

func (m *MasterAddr) UDPAddr() *net.UDPAddr {
	if m == nil {
		return nil
	}
	return &net.UDPAddr{IP: net.ParseIP(m.Address), Port: int(m.Port)}
}

func (m *MasterAddr) String() string {
	if m == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s/%s:%d", m.Family, m.Address, m.Port)
}

// XfrInState is a zone's transfer-in operational state (spec.md §3).
// The timer callbacks mutate it on the scheduler's single event thread
// (spec.md §5); the Reconciler and TimersUpdate also mutate it from the
// reloading goroutine. Both sides hold mu while doing so.
type XfrInState struct {
	mu          sync.Mutex
	Master      *MasterAddr
	Ifaces      *IfaceRef
	pollEvent   *Event
	expireEvent *Event
	NextID      int32 // -1 iff no SOA query outstanding
	State       XfrInPhase
}

func newXfrInState() *XfrInState {
	return &XfrInState{NextID: -1, State: PhaseIdle}
}

// Zone is a named collection of resource records rooted at an apex node,
// plus per-instance operational state (spec.md §3).
type Zone struct {
	Name    string // canonical (lowercased, fully-qualified) domain name
	Apex    *ApexNode
	Version uint32
	ACL     ZoneACLSet
	XfrIn   *XfrInState
	Expired bool // query-path visibility flag when expire policy keeps, rather than drops, the zone
}

// ApexNode holds the apex's SOA RRset (and any other apex RRs a loader
// chooses to keep around; the query processor is out of this core's scope,
// so RRs beyond the SOA are opaque bytes to this package).
type ApexNode struct {
	SOA *dns.SOA
	RRs []dns.RR
}

func newZone(name string) *Zone {
	return &Zone{
		Name:  canonicalName(name),
		XfrIn: newXfrInState(),
	}
}

// GetSOA returns the zone's apex SOA RRset's first (only) RDATA.
// Callers must not invoke this on a zone lacking an apex SOA (spec.md §4.1);
// the Loader rejects such zones before they ever reach a ZoneDB.
func (z *Zone) GetSOA() (*dns.SOA, error) {
	if z.Apex == nil || z.Apex.SOA == nil {
		return nil, fmt.Errorf("zone %s: no apex SOA", z.Name)
	}
	return z.Apex.SOA, nil
}

func canonicalName(name string) string {
	return dns.CanonicalName(name)
}
