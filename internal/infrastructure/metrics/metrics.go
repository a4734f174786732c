// Package metrics colectores Prometheus de HTTP y de transiciones de negocio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/erp-core/internal/application/ports"
)

var _ ports.TransitionRecorder = (*Metrics)(nil)

// Metrics registro propio (no el global) con los colectores de la aplicación.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// New registra los colectores con el prefijo dado (METRICS_PREFIX).
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total de requests HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de los requests HTTP en segundos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "state_transitions_total",
			Help:      "Transiciones de estado aplicadas por entidad y acción.",
		}, []string{"entity", "action"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "state_transitions_rejected_total",
			Help:      "Transiciones rechazadas por entidad, acción y motivo.",
		}, []string{"entity", "action", "reason"}),
	}
}

// Transition implementa ports.TransitionRecorder.
func (m *Metrics) Transition(entity, action string) {
	m.transitions.WithLabelValues(entity, action).Inc()
}

// Rejected implementa ports.TransitionRecorder.
func (m *Metrics) Rejected(entity, action, reason string) {
	m.rejections.WithLabelValues(entity, action, reason).Inc()
}

// ObserveRequest registra un request terminado. route es el patrón (/api/sales-orders/:id), no la URL.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	s := strconv.Itoa(status)
	m.requests.WithLabelValues(method, route, s).Inc()
	m.duration.WithLabelValues(method, route, s).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato de texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry para tests y colectores adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
