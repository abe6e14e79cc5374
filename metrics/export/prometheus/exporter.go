package prometheus

import (
	"net/http"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/metrics/export/internaldefs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSource is what the exporter scrapes. *goSaaS.Engine satisfies it.
type MetricsSource interface {
	MetricsSnapshot() goSaaS.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter turns engine snapshots into Prometheus counters.
type Exporter struct {
	source  MetricsSource
	counter map[goSaaS.MetricID]*prometheus.Desc
	order   []goSaaS.MetricID
	guards  *prometheus.Desc
	dropped *prometheus.Desc
}

var _ prometheus.Collector = (*Exporter)(nil)

// NewExporter builds a collector over source.
func NewExporter(source MetricsSource) *Exporter {
	e := &Exporter{
		source:  source,
		counter: make(map[goSaaS.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
		order:   make([]goSaaS.MetricID, 0, len(internaldefs.CounterDefs)),
		guards: prometheus.NewDesc(
			internaldefs.GuardOutcomes.Name,
			internaldefs.GuardOutcomes.Help,
			internaldefs.GuardOutcomes.Labels,
			nil,
		),
		dropped: prometheus.NewDesc(internaldefs.AuditDropped.Name, internaldefs.AuditDropped.Help, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		e.counter[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
		e.order = append(e.order, def.ID)
	}
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, id := range e.order {
		ch <- e.counter[id]
	}
	ch <- e.guards
	ch <- e.dropped
}

// Collect implements prometheus.Collector. A disabled engine yields only the audit
// drop counter.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e.source == nil {
		return
	}
	snap := e.source.MetricsSnapshot()
	for _, id := range e.order {
		v, ok := snap.Counters[id]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(e.counter[id], prometheus.CounterValue, float64(v))
	}
	for key, v := range snap.Guards {
		ch <- prometheus.MustNewConstMetric(e.guards, prometheus.CounterValue, float64(v), key.Guard, key.Outcome)
	}
	ch <- prometheus.MustNewConstMetric(e.dropped, prometheus.CounterValue, float64(e.source.AuditDropped()))
}

// Handler serves the exporter together with the Go runtime and process collectors on a
// private registry.
func (e *Exporter) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		e,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
