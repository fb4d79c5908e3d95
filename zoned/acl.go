/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"
	"log"
	"net"
)

// RebuildACL is the ACL Builder (C2): it replaces an ACL slot's contents
// with a fresh ACL built from an ordered remote list, default-denying
// everything not explicitly accepted. Grounded on
// user00265-rbldnsd/acl.FromRules, generalized from plain IP/CIDR strings
// to spec.md's (family, address, port) remote shape.
//
// Address-resolution failures are skipped and logged, never aborting the
// rebuild (spec.md §4.2, §7).
func RebuildACL(rules []RemoteConf) *ACL {
	acl := NewDenyACL()

	for _, r := range rules {
		ipnet, err := resolveRemote(r)
		if err != nil {
			log.Printf("RebuildACL: skipping rule %+v: %v", r, err)
			continue
		}
		acl.Rules = append(acl.Rules, ACLRule{Net: ipnet, Port: r.Port, Action: Accept})
	}
	return acl
}

// rebuildZoneACLs rebuilds all four of a zone's ACLs from its configured
// remote lists (spec.md §4.5 step 5).
func rebuildZoneACLs(z *Zone, conf ACLConf) {
	z.ACL.XfrIn = RebuildACL(conf.XfrIn)
	z.ACL.XfrOut = RebuildACL(conf.XfrOut)
	z.ACL.NotifyIn = RebuildACL(conf.NotifyIn)
	z.ACL.NotifyOut = RebuildACL(conf.NotifyOut)
}

func resolveRemote(r RemoteConf) (*net.IPNet, error) {
	ip := net.ParseIP(r.Address)
	if ip == nil {
		addrs, err := net.LookupIP(r.Address)
		if err != nil {
			return nil, err
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("no addresses found for %q", r.Address)
		}
		ip = addrs[0]
	}

	bits := 32
	if ip4 := ip.To4(); ip4 == nil {
		bits = 128
	} else {
		ip = ip4
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}
