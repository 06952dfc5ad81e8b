package colormix

import (
	"expvar"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts blend activity. Attach it to a Mixer with WithMetrics.
// The counters can be published through expvar, which serves them at
// /debug/vars when an HTTP server is running.
//
// Safe for concurrent use.
type Metrics struct {
	blends         atomic.Int64
	failures       atomic.Int64
	complementary  atomic.Int64
	lookupFailures atomic.Int64
	configReloads  atomic.Int64

	blendLatencyNs    atomic.Int64
	blendLatencyCount atomic.Int64
}

var (
	expvarOnce   sync.Once
	expvarTarget atomic.Pointer[Metrics]
)

// NewMetrics creates a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the counters under "colormix_*" names. expvar
// names are process-global, so the published values always follow the most
// recently registered Metrics.
func (m *Metrics) RegisterExpvar() {
	expvarTarget.Store(m)
	expvarOnce.Do(publishExpvar)
}

func publishExpvar() {
	counter := func(name string, load func(*Metrics) int64) {
		expvar.Publish(name, expvar.Func(func() any { return load(expvarTarget.Load()) }))
	}
	counter("colormix_blends_total", func(m *Metrics) int64 { return m.blends.Load() })
	counter("colormix_failures_total", func(m *Metrics) int64 { return m.failures.Load() })
	counter("colormix_complementary_total", func(m *Metrics) int64 { return m.complementary.Load() })
	counter("colormix_lookup_failures_total", func(m *Metrics) int64 { return m.lookupFailures.Load() })
	counter("colormix_config_reloads_total", func(m *Metrics) int64 { return m.configReloads.Load() })
	expvar.Publish("colormix_blend_latency_avg_us", expvar.Func(func() any {
		m := expvarTarget.Load()
		return float64(averageLatency(m.blendLatencyNs.Load(), m.blendLatencyCount.Load())) / 1e3
	}))
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Blends          int64
	Failures        int64
	Complementary   int64
	LookupFailures  int64
	ConfigReloads   int64
	BlendLatencyAvg time.Duration
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Blends:          m.blends.Load(),
		Failures:        m.failures.Load(),
		Complementary:   m.complementary.Load(),
		LookupFailures:  m.lookupFailures.Load(),
		ConfigReloads:   m.configReloads.Load(),
		BlendLatencyAvg: averageLatency(m.blendLatencyNs.Load(), m.blendLatencyCount.Load()),
	}
}

// IncrementConfigReloads records a palette reload.
func (m *Metrics) IncrementConfigReloads() {
	m.configReloads.Add(1)
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.blends.Store(0)
	m.failures.Store(0)
	m.complementary.Store(0)
	m.lookupFailures.Store(0)
	m.configReloads.Store(0)
	m.blendLatencyNs.Store(0)
	m.blendLatencyCount.Store(0)
}

// recordBlend is called once per Blend or BlendSpec.
func (m *Metrics) recordBlend(d time.Duration, complementary bool, err error) {
	m.blendLatencyNs.Add(d.Nanoseconds())
	m.blendLatencyCount.Add(1)
	if err != nil {
		m.failures.Add(1)
		return
	}
	m.blends.Add(1)
	if complementary {
		m.complementary.Add(1)
	}
}

func (m *Metrics) recordLookupFailure() {
	m.lookupFailures.Add(1)
}

func averageLatency(totalNs, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(totalNs / count)
}
