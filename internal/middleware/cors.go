package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// OrigemPadrao é devolvida quando a origem da requisição não é permitida
const OrigemPadrao = "https://progestao.netlify.app"

var origensPermitidas = []string{
	"https://progestao.netlify.app",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
}

var padroesOrigem = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^https://(deploy-preview-\d+--|[a-z0-9-]+--)progestao\.netlify\.app$`),
	regexp.MustCompile(`^http://(localhost|127\.0\.0\.1):\d{2,5}$`),
}

const (
	metodosPermitidos    = "GET,POST,PUT,DELETE,OPTIONS"
	cabecalhosPermitidos = "authorization, x-client-info, apikey, content-type, idempotency-key"
)

// CORSConfig define origens extras e a origem de fallback
type CORSConfig struct {
	OrigensExtras []string
	OrigemPadrao  string
}

// OrigemPermitida informa se a origem está na lista ou casa com algum padrão
func OrigemPermitida(origem string, extras []string) bool {
	if origem == "" {
		return false
	}
	for _, o := range origensPermitidas {
		if o == origem {
			return true
		}
	}
	for _, o := range extras {
		if strings.TrimSpace(o) == origem {
			return true
		}
	}
	for _, p := range padroesOrigem {
		if p.MatchString(origem) {
			return true
		}
	}
	return false
}

// CORSMiddleware responde com a origem permitida ou com a origem padrão.
// Origens fora da lista não são rejeitadas; o navegador bloqueia pelo cabeçalho.
func CORSMiddleware(cfg CORSConfig) gin.HandlerFunc {
	padrao := cfg.OrigemPadrao
	if padrao == "" {
		padrao = OrigemPadrao
	}

	return func(c *gin.Context) {
		origem := c.GetHeader("Origin")
		permitida := padrao
		if OrigemPermitida(origem, cfg.OrigensExtras) {
			permitida = origem
		}

		c.Header("Access-Control-Allow-Origin", permitida)
		c.Header("Access-Control-Allow-Methods", metodosPermitidos)
		c.Header("Access-Control-Allow-Headers", cabecalhosPermitidos)
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
