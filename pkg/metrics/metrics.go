package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace for crane metrics
const DefaultNamespace = "crane"

// Fetch stages
const (
	StageCache  = "cache"
	StageTarget = "target"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics held in a private registry
type Metrics struct {
	registry *prometheus.Registry

	visits        *prometheus.CounterVec
	visitDuration *prometheus.HistogramVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	checkouts     *prometheus.CounterVec
	components    prometheus.Gauge
}

// New set of metrics, registered in a fresh registry
func New(opts ...Option) *Metrics {
	s := defaultSettings()
	for _, apply := range opts {
		apply(s)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		visits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   s.namespace,
			Subsystem:   "engine",
			Name:        "visits_total",
			Help:        "Component visits, by visitor, component kind and result.",
			ConstLabels: s.constLabels,
		}, []string{"visitor", "kind", "result"}),
		visitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   s.namespace,
			Subsystem:   "engine",
			Name:        "visit_duration_seconds",
			Help:        "Time spent visiting a component.",
			ConstLabels: s.constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"visitor"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   s.namespace,
			Subsystem:   "vcs",
			Name:        "fetches_total",
			Help:        "Fetches from remotes, into the cache or a checkout.",
			ConstLabels: s.constLabels,
		}, []string{"stage", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   s.namespace,
			Subsystem:   "vcs",
			Name:        "fetch_duration_seconds",
			Help:        "Time spent fetching from remotes.",
			ConstLabels: s.constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.05, 4, 8),
		}, []string{"stage"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   s.namespace,
			Subsystem:   "cache",
			Name:        "hits_total",
			Help:        "Cache fetches skipped because the same refs were already fetched.",
			ConstLabels: s.constLabels,
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   s.namespace,
			Subsystem:   "vcs",
			Name:        "checkouts_total",
			Help:        "Working tree checkouts.",
			ConstLabels: s.constLabels,
		}, []string{"result"}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   s.namespace,
			Subsystem:   "engine",
			Name:        "components",
			Help:        "Components in the graph after the last traversal.",
			ConstLabels: s.constLabels,
		}),
	}

	m.registry.MustRegister(
		m.visits,
		m.visitDuration,
		m.fetches,
		m.fetchDuration,
		m.cacheHits,
		m.checkouts,
		m.components,
	)
	return m
}

// Registry holding these metrics
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Visit records a component visit
func (m *Metrics) Visit(visitor, kind string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.visits.WithLabelValues(visitor, kind, result(err)).Inc()
	m.visitDuration.WithLabelValues(visitor).Observe(elapsed.Seconds())
}

// Fetch records a fetch at some stage (StageCache or StageTarget)
func (m *Metrics) Fetch(stage string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(stage, result(err)).Inc()
	m.fetchDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// CacheHit records a fetch saved by the cache
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// Checkout records a checkout
func (m *Metrics) Checkout(err error) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result(err)).Inc()
}

// Components sets the size of the graph
func (m *Metrics) Components(n int) {
	if m == nil {
		return
	}
	m.components.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
