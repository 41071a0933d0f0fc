package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IgorHrabrov/openiddict-core/internal/evictor"
	"github.com/IgorHrabrov/openiddict-core/internal/janitor"
)

// Metrics is a prometheus.Collector reading the live atomic counters on
// scrape, so no separate update loop is required and the exported values
// always agree with Metrics() snapshots.
type Metrics struct {
	cache    Cacher
	evictor  evictor.Evictor
	janitor  janitor.Janitor
	registry RegistryStat

	hitsDesc        *prometheus.Desc
	missesDesc      *prometheus.Desc
	revocationsDesc *prometheus.Desc
	evictionsDesc   *prometheus.Desc
	reapedDesc      *prometheus.Desc
	entriesDesc     *prometheus.Desc
	weightDesc      *prometheus.Desc
	signalsDesc     *prometheus.Desc
}

func newMetrics(cache Cacher, ev evictor.Evictor, jn janitor.Janitor, registry RegistryStat) *Metrics {
	const ns, sub = "openiddict", "authorization_cache"
	return &Metrics{
		cache:    cache,
		evictor:  ev,
		janitor:  jn,
		registry: registry,

		hitsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "hits_total"),
			"Total number of cache hits",
			nil, nil,
		),
		missesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "misses_total"),
			"Total number of cache misses",
			nil, nil,
		),
		revocationsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "revocations_total"),
			"Total number of entries expired by a revoked invalidation signal",
			nil, nil,
		),
		evictionsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "evictions_total"),
			"Total number of entries evicted to stay within the weight limit",
			[]string{"kind"}, nil,
		),
		reapedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "signals_reaped_total"),
			"Total number of idle signals reaped from the registry",
			nil, nil,
		),
		entriesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "entries"),
			"Current number of cache entries",
			nil, nil,
		),
		weightDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "weight"),
			"Current aggregate entry weight in units",
			nil, nil,
		),
		signalsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(ns, sub, "signals"),
			"Current number of registered invalidation signals",
			nil, nil,
		),
	}
}

// MustRegister registers the collector with the given Prometheus registry.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(m)
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.hitsDesc
	ch <- m.missesDesc
	ch <- m.revocationsDesc
	ch <- m.evictionsDesc
	ch <- m.reapedDesc
	ch <- m.entriesDesc
	ch <- m.weightDesc
	ch <- m.signalsDesc
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	hits, misses, revocations, hardItems, _ := m.cache.Metrics()
	_, _, softItems, _ := m.evictor.Metrics()
	_, reaped := m.janitor.Metrics()

	ch <- prometheus.MustNewConstMetric(m.hitsDesc, prometheus.CounterValue, float64(hits))
	ch <- prometheus.MustNewConstMetric(m.missesDesc, prometheus.CounterValue, float64(misses))
	ch <- prometheus.MustNewConstMetric(m.revocationsDesc, prometheus.CounterValue, float64(revocations))
	ch <- prometheus.MustNewConstMetric(m.evictionsDesc, prometheus.CounterValue, float64(hardItems), "hard")
	ch <- prometheus.MustNewConstMetric(m.evictionsDesc, prometheus.CounterValue, float64(softItems), "soft")
	ch <- prometheus.MustNewConstMetric(m.reapedDesc, prometheus.CounterValue, float64(reaped))
	ch <- prometheus.MustNewConstMetric(m.entriesDesc, prometheus.GaugeValue, float64(m.cache.Len()))
	ch <- prometheus.MustNewConstMetric(m.weightDesc, prometheus.GaugeValue, float64(m.cache.Weight()))
	ch <- prometheus.MustNewConstMetric(m.signalsDesc, prometheus.GaugeValue, float64(m.registry.Len()))
}
