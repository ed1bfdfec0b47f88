package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the layers module. All methods are safe
// to call on a nil receiver so tests and tools can run without a registry.
type Metrics struct {
	// Controller transitions by kind ("toggle", "select_field")
	Transitions *prometheus.CounterVec

	// Transitions ignored because the layer or field is not in the catalog
	LookupMisses *prometheus.CounterVec

	// Notifications handed to the renderer by kind ("visibility", "style")
	Notifications *prometheus.CounterVec

	// Renderer notifications that failed to apply
	DispatchFailures prometheus.Counter

	// Legends resolved by the rule that produced them
	LegendResolutions *prometheus.CounterVec

	// Mounted viewer sessions
	ActiveSessions prometheus.Gauge
}

// New creates the layers metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mapview_layer_transitions_total",
			Help: "Viewer state transitions by kind",
		}, []string{"kind"}),

		LookupMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mapview_layer_lookup_misses_total",
			Help: "Transitions ignored because the layer or field is unknown",
		}, []string{"kind"}),

		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mapview_renderer_notifications_total",
			Help: "Notifications dispatched to the map renderer by kind",
		}, []string{"kind"}),

		DispatchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "mapview_renderer_dispatch_failures_total",
			Help: "Renderer notifications that failed to apply",
		}),

		LegendResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mapview_legend_resolutions_total",
			Help: "Legends resolved by source rule",
		}, []string{"source"}),

		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "mapview_active_sessions",
			Help: "Currently mounted viewer sessions",
		}),
	}
}

func (m *Metrics) IncTransition(kind string) {
	if m != nil {
		m.Transitions.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncLookupMiss(kind string) {
	if m != nil {
		m.LookupMisses.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncNotification(kind string) {
	if m != nil {
		m.Notifications.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncDispatchFailure() {
	if m != nil {
		m.DispatchFailures.Inc()
	}
}

func (m *Metrics) IncLegend(source string) {
	if m != nil {
		m.LegendResolutions.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}
