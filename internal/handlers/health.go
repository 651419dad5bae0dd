package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger é satisfeito pelos stores
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler informa se a API e o store estão respondendo
type HealthHandler struct {
	store   Pinger
	backend string
	logger  *logrus.Logger
}

// NewHealthHandler cria uma nova instância do HealthHandler
func NewHealthHandler(store Pinger, backend string, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{store: store, backend: backend, logger: logger}
}

// HealthCheck godoc
// @Summary Health check
// @Description Verifica se a aplicação e o armazenamento estão funcionando
// @Tags health
// @Produce json
// @Success 200 {object} models.Resposta
// @Failure 503 {object} models.Resposta
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{
		"service":   "progestao-os",
		"backend":   h.backend,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("Health check falhou")
		status["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "data": status})
		return
	}

	status["status"] = "healthy"
	responderOK(c, http.StatusOK, status)
}
