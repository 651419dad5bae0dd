package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
)

// ChaveRequestID é a chave do id da requisição no contexto do gin
const ChaveRequestID = "request_id"

// RequestIDMiddleware usa o Idempotency-Key recebido ou gera um UUID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ChaveRequestID, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// LoggerMiddleware registra cada requisição com logrus
func LoggerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()

		fields := logrus.Fields{
			"request_id":  c.GetString(ChaveRequestID),
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(inicio).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("HTTP Request")
		case status >= 400:
			entry.Warn("HTTP Request")
		default:
			entry.Info("HTTP Request")
		}
	}
}

// RecoveryMiddleware captura panics e responde com o envelope de erro interno
func RecoveryMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"panic":      recovered,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(ChaveRequestID),
		}).Error("Panic recuperado")

		abortarComErro(c, models.NewInternalError("Erro interno do servidor"))
	})
}
