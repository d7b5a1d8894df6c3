package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	leadsCriados = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_criados_total",
			Help: "Total de leads criados, por origem",
		},
		[]string{"origem"},
	)

	transicoesDeEtapa = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_transicoes_total",
			Help: "Total de avanços de etapa, por etapa de destino",
		},
		[]string{"etapa"},
	)

	aprovacoes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_aprovacoes_total",
			Help: "Total de decisões de aprovação, por trilha e resultado",
		},
		[]string{"trilha", "resultado"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RegistrarLeadCriado(origem string) {
	leadsCriados.WithLabelValues(origem).Inc()
}

func RegistrarTransicao(etapa string) {
	transicoesDeEtapa.WithLabelValues(etapa).Inc()
}

func RegistrarAprovacao(trilha, resultado string) {
	aprovacoes.WithLabelValues(trilha, resultado).Inc()
}
