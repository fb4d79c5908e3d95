/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"
	"log"
	"net"
	"sync"
)

// iface is one bound UDP socket on the server, keyed by address family.
type iface struct {
	family string // "ip4" | "ip6"
	conn   *net.UDPConn
}

// InterfaceTable is the process-global table of bound UDP sockets
// (spec.md §3 "Ownership", §9 "Back-reference from zone to interfaces").
// A Zone never holds the table directly; it holds an IfaceRef, a weak
// reference that is only resolved while the referenced generation is
// still current, modeling spec.md's "index into a table ... lookups
// check the generation number".
type InterfaceTable struct {
	mu         sync.RWMutex
	generation uint64
	ifaces     []iface
}

func NewInterfaceTable() *InterfaceTable {
	return &InterfaceTable{generation: 1}
}

// Bind replaces the interface table's sockets, invalidating any
// previously issued IfaceRef.
func (t *InterfaceTable) Bind(ifaces []iface) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ifaces = ifaces
	t.generation++
}

// BindAddresses resolves each of addrs (host:port) and binds a UDP
// socket for it, then replaces the table's contents in one generation
// bump, giving cmd/zoned an exported way to drive the table from
// DnsEngineConf.Addresses without exposing the unexported iface type
// (spec.md §3's ownership model; grounded on rbldnsd/server/server.go's
// net.ResolveUDPAddr + net.ListenUDP pairing). An address that fails to
// resolve or bind is logged and skipped, not fatal to the rest, the
// same "skip and continue" behavior RebuildACL uses for bad ACL rules.
func (t *InterfaceTable) BindAddresses(addrs []string) error {
	built := make([]iface, 0, len(addrs))
	for _, addr := range addrs {
		udpAddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			log.Printf("BindAddresses: resolve %s: %v", addr, err)
			continue
		}

		conn, err := net.ListenUDP("udp", udpAddr)
		if err != nil {
			log.Printf("BindAddresses: listen %s: %v", addr, err)
			continue
		}

		family := "ip4"
		if udpAddr.IP.To4() == nil {
			family = "ip6"
		}
		built = append(built, iface{family: family, conn: conn})
		log.Printf("BindAddresses: bound %s socket on %s", family, addr)
	}

	if len(built) == 0 && len(addrs) > 0 {
		return fmt.Errorf("BindAddresses: none of %d configured addresses could be bound", len(addrs))
	}

	t.Bind(built)
	return nil
}

// Ref returns a weak reference bound to the table's current generation.
func (t *InterfaceTable) Ref() *IfaceRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &IfaceRef{table: t, generation: t.generation}
}

// socketFor iterates the interface table under a reader lock and returns
// the first UDP socket whose family matches (spec.md §4.4 "Socket
// selection").
func (t *InterfaceTable) socketFor(family string, generation uint64) (*net.UDPConn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if generation != t.generation {
		return nil, fmt.Errorf("interface table: stale generation %d (current %d)", generation, t.generation)
	}
	for _, ifc := range t.ifaces {
		if ifc.family == family {
			return ifc.conn, nil
		}
	}
	return nil, fmt.Errorf("interface table: no socket for family %q", family)
}

// IfaceRef is a weak reference to a server's InterfaceTable: it must
// never be "upgraded" (resolved) after the table has moved past the
// generation the reference was issued for.
type IfaceRef struct {
	table      *InterfaceTable
	generation uint64
}

// SocketFor resolves the weak reference to a live UDP socket matching
// family, or an error if the table has since been rebound.
func (r *IfaceRef) SocketFor(family string) (*net.UDPConn, error) {
	if r == nil || r.table == nil {
		return nil, fmt.Errorf("interface table: nil reference")
	}
	return r.table.socketFor(family, r.generation)
}
