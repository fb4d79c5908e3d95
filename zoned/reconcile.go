/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"log"
	"os"
)

// Reconcile is the Zone DB Reconciler (C5): for every configured zone it
// decides whether to reuse the in-memory copy, reload from the compiled
// form, or (implicitly, by omission) drop it, transferring ACLs and
// AXFR-IN master bindings to the surviving copy (spec.md §4.5). It
// returns the number of zones successfully present in newDB.
//
// Grounded on tdns/refreshengine.go's "zone exists? / zone new?"
// branching and tdnsd/zone_ops.go's reload-logging register.
func Reconcile(old *ZoneDB, zones []ZoneConf, newDB *ZoneDB, ns *NameServer, openFn OpenCompiledZoneFunc) int {
	inserted := 0
	ns.Metrics.Reconciliations.Inc()

	for _, zc := range zones {
		name := canonicalName(zc.Name)
		if name == "" || name == "." && zc.Name != "." {
			log.Printf("Reconcile: invalid zone name %q, aborting reconciliation", zc.Name)
			return inserted
		}

		existing, exists := old.FindZone(name)

		reload := !exists
		if exists {
			if info, err := os.Stat(zc.Db); err == nil && uint32(info.ModTime().Unix()) > existing.Version {
				reload = true
			}
		}

		var z *Zone
		var err error

		switch {
		case reload:
			z, err = Load(newDB, openFn, name, zc.File, zc.Db)
			if err != nil {
				log.Printf("Reconcile: zone %s: load failed: %v", name, err)
				ns.Metrics.ZoneLoadFailures.Inc()
				continue
			}
			log.Printf("Reconcile: zone %s: reloaded, version=%d", name, z.Version)

		default: // carry-over
			// existing is still reachable through old (readers may be
			// looking it up this instant), so carry over a shallow copy
			// rather than mutating it in place below. The AXFR-IN state
			// (and its scheduler events) is intentionally shared, not
			// copied: that is what "carry over the transfer-in state" means.
			cp := *existing
			z = &cp
			if err = newDB.insert(z); err != nil {
				log.Printf("Reconcile: zone %s: carry-over insert failed: %v", name, err)
				continue
			}
			log.Printf("Reconcile: zone %s: carried over, version=%d", name, z.Version)
		}

		rebuildZoneACLs(z, zc.ACL)
		z.XfrIn.mu.Lock()
		z.XfrIn.Ifaces = ns.Ifaces.Ref()
		z.XfrIn.Master = nil
		if len(zc.ACL.XfrIn) > 0 {
			head := zc.ACL.XfrIn[0]
			z.XfrIn.Master = &MasterAddr{Family: head.Family, Address: head.Address, Port: head.Port}
		}
		z.XfrIn.mu.Unlock()

		TimersUpdate(ns, z)

		inserted++
	}

	return inserted
}

// RemoveConfiguredZones is C6's sibling "remove_zones": for every
// configured zone name it removes (without freeing) that name from old.
// What remains in old afterward is exactly the set of zones the caller
// must let drain before it is reclaimed (spec.md §4.6 step 6).
func RemoveConfiguredZones(zones []ZoneConf, old *ZoneDB) {
	for _, zc := range zones {
		old.remove(zc.Name)
	}
}
