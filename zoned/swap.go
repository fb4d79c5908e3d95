/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/axfrcore/zoned/metrics"
)

// NameServer is the server-side handle spec.md calls `ns`: the
// published zone database, the RCU domain guarding it, the shared
// AXFR-IN scheduler and the interface table zones bind their transfer
// sockets against.
type NameServer struct {
	zoneDB atomic.Pointer[ZoneDB]
	rcu    *RCUDomain

	Sched    *Scheduler
	Ifaces   *InterfaceTable
	Metrics  *metrics.Metrics
	registry *prometheus.Registry

	// ExpireRemovesZone resolves spec.md §9's open question: true means
	// expireFired removes an EXPIRED zone from the live database at once
	// (a zone the config still names is reloaded by the next
	// reconciliation); false means it is retained but flagged unavailable.
	ExpireRemovesZone bool
}

// NewNameServer builds a NameServer with an empty, published ZoneDB. Its
// Prometheus collectors are registered on a dedicated registry (Registry)
// rather than the global default, so cmd/zoned can serve it on /metrics
// the way user00265-rbldnsd/metrics/metrics.go wires promhttp.Handler.
func NewNameServer() *NameServer {
	reg := prometheus.NewRegistry()
	ns := &NameServer{
		rcu:               &RCUDomain{},
		Sched:             NewScheduler(),
		Ifaces:            NewInterfaceTable(),
		Metrics:           metrics.New(reg),
		registry:          reg,
		ExpireRemovesZone: true,
	}
	ns.zoneDB.Store(NewZoneDB())
	return ns
}

// Registry returns the Prometheus registry backing ns.Metrics, for the
// CLI to expose via promhttp.
func (ns *NameServer) Registry() *prometheus.Registry {
	return ns.registry
}

// ZoneDB returns the currently-published zone database. Callers that
// intend to dereference zones it contains should wrap the call in a
// reader critical section via ReadLocked, unless they already hold one.
func (ns *NameServer) ZoneDB() *ZoneDB {
	return ns.zoneDB.Load()
}

// ReadLocked runs fn with a reader-side critical section held, mirroring
// the query processor's use of find_zone (spec.md §6): a ZoneDB obtained
// inside fn stays valid for the duration of fn even if a reload
// publishes a new one concurrently.
func (ns *NameServer) ReadLocked(fn func(db *ZoneDB)) {
	release := ns.rcu.ReadLock()
	defer release()
	fn(ns.zoneDB.Load())
}

// UpdateDBFromConfig is the DB Swap Coordinator (C6): it reconciles a
// fresh ZoneDB from the currently-published one plus configuration,
// publishes it atomically, and returns the zones that must be destroyed
// once readers have drained (spec.md §4.6).
func UpdateDBFromConfig(ns *NameServer, zones []ZoneConf, openFn OpenCompiledZoneFunc) (oldDB *ZoneDB, err error) {
	release := ns.rcu.ReadLock()
	defer release()

	old := ns.zoneDB.Load()
	if old == nil {
		return nil, fmt.Errorf("UpdateDBFromConfig: %w: no published zone database", ErrGeneric)
	}

	newDB := NewZoneDB()

	log.Printf("UpdateDBFromConfig: loading %d zones", len(zones))
	inserted := Reconcile(old, zones, newDB, ns, openFn)
	if inserted != len(zones) {
		log.Printf("UpdateDBFromConfig: WARNING: loaded %d of %d zones", inserted, len(zones))
	} else {
		log.Printf("UpdateDBFromConfig: loaded %d of %d zones", inserted, len(zones))
	}

	ns.zoneDB.Store(newDB)
	ns.Metrics.Swaps.Inc()
	ns.Metrics.ZonesLoaded.Set(float64(newDB.Len()))

	RemoveConfiguredZones(zones, old)

	return old, nil
}
