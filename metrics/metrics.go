/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */

// Package metrics exposes Prometheus counters/gauges for the zone
// database lifecycle, grounded on user00265-rbldnsd/metrics.Metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters the reconciler, scheduler and swap
// coordinator increment as they run. Callers that don't want Prometheus
// wiring can use New(nil) to get counters that are never registered and
// simply accumulate in memory.
type Metrics struct {
	ZonesLoaded      prometheus.Gauge
	Reconciliations  prometheus.Counter
	Swaps            prometheus.Counter
	PollsSent        prometheus.Counter
	ExpiresFired     prometheus.Counter
	ZoneLoadFailures prometheus.Counter
}

// New builds a Metrics and, if reg is non-nil, registers every collector
// on it the way rbldnsd's metrics.New registers onto a *prometheus.Registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ZonesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zoned_zones_loaded",
			Help: "Number of zones currently present in the published zone database.",
		}),
		Reconciliations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoned_reconciliations_total",
			Help: "Number of zone-database reconciliation passes run.",
		}),
		Swaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoned_db_swaps_total",
			Help: "Number of atomic zone-database publications.",
		}),
		PollsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoned_axfrin_polls_total",
			Help: "Number of AXFR-IN SOA poll queries sent to masters.",
		}),
		ExpiresFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoned_axfrin_expires_total",
			Help: "Number of AXFR-IN EXPIRE timers that fired.",
		}),
		ZoneLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoned_zone_load_failures_total",
			Help: "Number of per-zone load failures during reconciliation.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ZonesLoaded, m.Reconciliations, m.Swaps, m.PollsSent, m.ExpiresFired, m.ZoneLoadFailures)
	}
	return m
}
