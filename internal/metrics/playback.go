package metrics

// PlaybackMetrics holds the metrics recorded by the playback engine.
type PlaybackMetrics struct {
	registry *Registry

	PlaybacksTotal        *Counter
	BatchesTotal          *Counter
	RecordsTotal          *Counter
	TransmitFailuresTotal *Counter
	CanceledReleasesTotal *Counter

	DeferredPending *Gauge

	TransmitSeconds *Histogram
}

// NewPlaybackMetrics creates and registers the playback metrics.
func NewPlaybackMetrics(registry *Registry) *PlaybackMetrics {
	if registry == nil {
		registry = Default()
	}

	return &PlaybackMetrics{
		registry: registry,

		PlaybacksTotal: registry.RegisterCounter(
			"playbacks_total",
			"Total number of chord playbacks started",
			nil,
		),
		BatchesTotal: registry.RegisterCounter(
			"batches_total",
			"Total number of transmission calls issued",
			nil,
		),
		RecordsTotal: registry.RegisterCounter(
			"records_total",
			"Total number of key event records transmitted",
			nil,
		),
		TransmitFailuresTotal: registry.RegisterCounter(
			"transmit_failures_total",
			"Total number of failed transmission calls",
			nil,
		),
		CanceledReleasesTotal: registry.RegisterCounter(
			"canceled_releases_total",
			"Total number of deferred releases dropped by cancellation",
			nil,
		),
		DeferredPending: registry.RegisterGauge(
			"deferred_pending",
			"Deferred releases currently waiting on their hold",
			nil,
		),
		TransmitSeconds: registry.RegisterHistogram(
			"transmit_seconds",
			"Latency of a single transmission call",
			nil,
			DurationBuckets,
		),
	}
}

// Registry returns the registry the metrics are registered in.
func (m *PlaybackMetrics) Registry() *Registry {
	return m.registry
}
