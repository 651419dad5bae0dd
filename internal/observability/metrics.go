package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metricas agrupa os coletores HTTP e de sincronização offline
type Metricas struct {
	registry      *prometheus.Registry
	requisicoes   *prometheus.CounterVec
	duracao       *prometheus.HistogramVec
	syncAplicadas prometheus.Counter
	syncConflitos prometheus.Counter
	syncLotes     prometheus.Counter
}

// NovasMetricas cria um registry próprio com os coletores do processo
func NovasMetricas() *Metricas {
	registry := prometheus.NewRegistry()

	requisicoes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "progestao_http_requests_total",
		Help: "Total de requisições HTTP por rota, método e status.",
	}, []string{"route", "method", "status"})
	duracao := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "progestao_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP em segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	syncAplicadas := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progestao_sync_applied_total",
		Help: "Alterações offline aplicadas.",
	})
	syncConflitos := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progestao_sync_conflicts_total",
		Help: "Alterações offline rejeitadas.",
	})
	syncLotes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progestao_sync_batches_total",
		Help: "Lotes de sincronização processados.",
	})

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requisicoes, duracao, syncAplicadas, syncConflitos, syncLotes,
	)

	return &Metricas{
		registry:      registry,
		requisicoes:   requisicoes,
		duracao:       duracao,
		syncAplicadas: syncAplicadas,
		syncConflitos: syncConflitos,
		syncLotes:     syncLotes,
	}
}

// Middleware registra contagem e duração por rota registrada
func (m *Metricas) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		inicio := time.Now()
		c.Next()

		rota := c.FullPath()
		if rota == "" {
			rota = "desconhecida"
		}
		metodo := c.Request.Method
		m.requisicoes.WithLabelValues(rota, metodo, strconv.Itoa(c.Writer.Status())).Inc()
		m.duracao.WithLabelValues(rota, metodo).Observe(time.Since(inicio).Seconds())
	}
}

// RegistrarSync contabiliza o resultado de um lote sincronizado
func (m *Metricas) RegistrarSync(aplicados, conflitos int) {
	if m == nil {
		return
	}
	m.syncLotes.Inc()
	m.syncAplicadas.Add(float64(aplicados))
	m.syncConflitos.Add(float64(conflitos))
}

// Handler expõe o registry no formato de exposição do Prometheus
func (m *Metricas) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry retorna o registry usado pelos coletores
func (m *Metricas) Registry() *prometheus.Registry {
	return m.registry
}
