package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del servicio sobre un registry privado,
// para no depender del registry global de prometheus.
type Metrics struct {
	registry         *prometheus.Registry
	cacheRequests    *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epidash_cache_requests_total",
		Help: "Cache lookups by operation and result (hit, miss, error)",
	}, []string{"operation", "result"})

	upstreamRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "epidash_upstream_requests_total",
		Help: "Upstream HTTP calls by provider and outcome (ok, error)",
	}, []string{"provider", "outcome"})

	registry.MustRegister(cacheRequests, upstreamRequests)

	return &Metrics{
		registry:         registry,
		cacheRequests:    cacheRequests,
		upstreamRequests: upstreamRequests,
	}
}

// ObserveCache registra el resultado de una consulta a la caché.
// Seguro con receptor nil para que las métricas sean opcionales en tests.
func (m *Metrics) ObserveCache(operation, result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(operation, result).Inc()
}

// ObserveUpstream registra el desenlace de una llamada a un proveedor.
func (m *Metrics) ObserveUpstream(provider, outcome string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(provider, outcome).Inc()
}

// Handler expone el registry privado en formato prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
