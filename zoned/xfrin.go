/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"log"

	"github.com/miekg/dns"

	"github.com/axfrcore/zoned/edns0"
)

// xfrInCtx is the scheduler event data for a zone's POLL/EXPIRE events:
// a back-pointer to the zone and the server handle it belongs to.
type xfrInCtx struct {
	zone *Zone
	ns   *NameServer
}

// TimersUpdate drives the AXFR-IN state machine's IDLE<->REFRESHING
// transitions (spec.md §4.4). It runs off the scheduler's event thread
// (called by the Reconciler, C5), so it takes the zone's own xfr_in lock
// rather than relying on the scheduler-thread-only invariant that
// protects the POLL/RETRYING/EXPIRE transitions below.
func TimersUpdate(ns *NameServer, z *Zone) {
	x := z.XfrIn
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.Master == nil {
		ns.Sched.Cancel(x.pollEvent)
		x.pollEvent = nil
		ns.Sched.Cancel(x.expireEvent)
		x.expireEvent = nil
		x.NextID = -1
		x.State = PhaseIdle
		return
	}

	// Cancel any lingering EXPIRE timer from a prior AXFR-IN chain.
	if x.expireEvent != nil {
		ns.Sched.Cancel(x.expireEvent)
		x.expireEvent = nil
	}

	refreshMs, err := SoaRefreshMs(z)
	if err != nil {
		log.Printf("TimersUpdate: zone %s: %v", z.Name, err)
		return
	}

	ctx := &xfrInCtx{zone: z, ns: ns}
	if x.pollEvent != nil {
		ns.Sched.Schedule(x.pollEvent, refreshMs)
	} else {
		x.pollEvent = ns.Sched.ScheduleCB(pollFired, ctx, refreshMs)
	}
	x.State = PhaseRefreshing
}

// pollFired is the POLL timer callback: REFRESHING/RETRYING -> RETRYING
// (spec.md §4.4). It always runs on the scheduler's single event thread.
func pollFired(data any) {
	ctx := data.(*xfrInCtx)
	z, ns := ctx.zone, ctx.ns
	x := z.XfrIn

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.Master == nil {
		// Master was cleared by a reload racing this fire; nothing to do.
		return
	}

	x.NextID = sendSOAQuery(ns, z, x)

	if x.expireEvent == nil {
		if expireMs, err := SoaExpireMs(z); err != nil {
			log.Printf("pollFired: zone %s: %v", z.Name, err)
		} else {
			x.expireEvent = ns.Sched.ScheduleCB(expireFired, ctx, expireMs)
		}
	}

	if retryMs, err := SoaRetryMs(z); err != nil {
		log.Printf("pollFired: zone %s: %v", z.Name, err)
	} else {
		ns.Sched.Schedule(x.pollEvent, retryMs)
	}

	x.State = PhaseRetrying
	ns.Metrics.PollsSent.Inc()
}

// expireFired is the EXPIRE timer callback: any -> EXPIRED (spec.md §4.4).
func expireFired(data any) {
	ctx := data.(*xfrInCtx)
	z, ns := ctx.zone, ctx.ns
	x := z.XfrIn

	x.mu.Lock()
	if x.pollEvent != nil {
		ns.Sched.EventFree(x.pollEvent)
		x.pollEvent = nil
	}
	x.expireEvent = nil
	x.NextID = -1
	x.State = PhaseExpired
	z.Expired = true
	// After a carry-over the published zone is a copy of z sharing x;
	// flag that copy too so the query path sees the expiry.
	if live, ok := ns.ZoneDB().FindZone(z.Name); ok && live.XfrIn == x {
		live.Expired = true
	}
	master := x.Master
	x.mu.Unlock()

	log.Printf("expireFired: zone %s: EXPIRE fired with no fresh SOA answer from %s", z.Name, master)
	ns.Metrics.ExpiresFired.Inc()

	if ns.ExpireRemovesZone {
		if _, removed := ns.ZoneDB().remove(z.Name); removed {
			log.Printf("expireFired: zone %s: removed from live zone database", z.Name)
		}
	}
}

// sendSOAQuery builds and sends a SOA query to the zone's transfer-in
// master over a UDP socket whose family matches (spec.md §4.4). Send
// failures are logged and ignored; the caller advances the retry timer
// regardless (spec.md §7). Returns the wire message ID, or -1 on any
// failure to construct or send.
func sendSOAQuery(ns *NameServer, z *Zone, x *XfrInState) int32 {
	conn, err := x.Ifaces.SocketFor(x.Master.Family)
	if err != nil {
		log.Printf("sendSOAQuery: zone %s: %v", z.Name, err)
		return -1
	}

	m := new(dns.Msg)
	m.SetQuestion(z.Name, dns.TypeSOA)
	m.Id = dns.Id()
	edns0.AddOPT(m, edns0.MinDNSSECPayload)

	wire, err := m.Pack()
	if err != nil {
		log.Printf("sendSOAQuery: zone %s: pack: %v", z.Name, err)
		return -1
	}

	if _, err := conn.WriteToUDP(wire, x.Master.UDPAddr()); err != nil {
		log.Printf("sendSOAQuery: zone %s: sendto %s: %v", z.Name, x.Master, err)
		return -1
	}

	return int32(m.Id)
}
