/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */

// Package edns0 is a minimal EDNS(0) OPT pseudo-RR accessor, grounded on
// tdns/edns0's small-constants-file style. spec.md §6 documents this
// surface as belonging to an external collaborator (the query
// processor's EDNS(0) library); this package carries only the
// constants and the narrow OPT-building helper the AXFR-IN scheduler
// needs to set a conservative UDP payload size on outgoing SOA queries.
// It does not parse or process queries.
package edns0

import (
	"encoding/hex"

	"github.com/miekg/dns"
)

// Semantic constants from spec.md §6.
const (
	MinUDPPayload     = 512
	MinDNSSECPayload  = 1220
	MaxUDPPayload     = 4096
	Version           = 0
	OptionCodeNSID    = 3
	MinWireSize       = 11
	PerOptionOverhead = 4
	ExtRcodeBadVers   = 16
)

// AddOPT appends an OPT pseudo-RR to m advertising udpSize as the
// maximum UDP payload, DO bit clear. An OPT record already on m is not
// removed.
func AddOPT(m *dns.Msg, udpSize uint16) {
	m.SetEdns0(udpSize, false)
}

// DOBit reports whether the DNSSEC OK bit is set on m's OPT record, if any.
func DOBit(m *dns.Msg) bool {
	opt := m.IsEdns0()
	if opt == nil {
		return false
	}
	return opt.Do()
}

// NSID returns the NSID option's raw value from m's OPT record, if present.
func NSID(m *dns.Msg) ([]byte, bool) {
	opt := m.IsEdns0()
	if opt == nil {
		return nil, false
	}
	for _, o := range opt.Option {
		if n, ok := o.(*dns.EDNS0_NSID); ok {
			nsid, err := hex.DecodeString(n.Nsid)
			if err != nil {
				return nil, false
			}
			return nsid, true
		}
	}
	return nil, false
}
