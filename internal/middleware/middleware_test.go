package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"progestao-os/internal/auth"
)

const segredoTeste = "segredo-de-teste"

func init() {
	gin.SetMode(gin.TestMode)
}

func loggerSilencioso() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestOrigemPermitida(t *testing.T) {
	casos := []struct {
		origem   string
		extras   []string
		esperado bool
	}{
		{"https://progestao.netlify.app", nil, true},
		{"https://deploy-preview-42--progestao.netlify.app", nil, true},
		{"https://feature-x--progestao.netlify.app", nil, true},
		{"http://localhost:5173", nil, true},
		{"http://127.0.0.1:3000", nil, true},
		{"https://app.cliente.com.br", []string{" https://app.cliente.com.br "}, true},
		{"https://evil.com", nil, false},
		{"https://progestao.netlify.app.evil.com", nil, false},
		{"", nil, false},
	}

	for _, tc := range casos {
		t.Run(tc.origem, func(t *testing.T) {
			assert.Equal(t, tc.esperado, OrigemPermitida(tc.origem, tc.extras))
		})
	}
}

func TestCORSOrigemNaoPermitidaRecebePadrao(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(CORSConfig{OrigemPadrao: "https://padrao.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://padrao.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func gerarToken(t *testing.T, segredo string, expira time.Time) string {
	t.Helper()
	claims := auth.SupabaseClaims{
		Email: "tecnico@progestao.app",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(expira),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(segredo))
	require.NoError(t, err)
	return token
}

func routerAuth(cfg AuthConfig, usuario *string) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(cfg))
	r.GET("/x", func(c *gin.Context) {
		if u, err := auth.GetUserFromContext(c.Request.Context()); err == nil {
			*usuario = u.UserID
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	valido := gerarToken(t, segredoTeste, time.Now().Add(time.Hour))
	expirado := gerarToken(t, segredoTeste, time.Now().Add(-time.Hour))
	outroSegredo := gerarToken(t, "outro", time.Now().Add(time.Hour))

	casos := []struct {
		nome        string
		obrigatorio bool
		header      string
		status      int
		usuario     string
	}{
		{"sem token opcional", false, "", http.StatusOK, ""},
		{"sem token obrigatório", true, "", http.StatusUnauthorized, ""},
		{"formato inválido", false, "Token abc", http.StatusUnauthorized, ""},
		{"token válido", true, "Bearer " + valido, http.StatusOK, "user-123"},
		{"token expirado obrigatório", true, "Bearer " + expirado, http.StatusUnauthorized, ""},
		{"token expirado opcional", false, "Bearer " + expirado, http.StatusOK, ""},
		{"assinatura errada", true, "Bearer " + outroSegredo, http.StatusUnauthorized, ""},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			var usuario string
			r := routerAuth(AuthConfig{JWTSecret: segredoTeste, Obrigatorio: tc.obrigatorio, Logger: loggerSilencioso()}, &usuario)

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.usuario, usuario)
			if tc.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

type validadorFake struct {
	err error
}

func (v validadorFake) ValidarToken(_ context.Context, token string) (*auth.UserContext, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &auth.UserContext{UserID: "remoto-" + token}, nil
}

func TestAuthMiddlewareComValidadorRemoto(t *testing.T) {
	var usuario string
	r := routerAuth(AuthConfig{Validador: validadorFake{}, Obrigatorio: true}, &usuario)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer opaco")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "remoto-opaco", usuario)

	r = routerAuth(AuthConfig{Validador: validadorFake{err: errors.New("sessão revogada")}, Obrigatorio: true}, &usuario)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareComChaveDeServico(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("chave-sync"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := AuthConfig{JWTSecret: segredoTeste, ChaveServicoHash: string(hash), Obrigatorio: true}

	casos := []struct {
		nome    string
		token   string
		status  int
		usuario string
	}{
		{"chave correta", "chave-sync", http.StatusOK, UsuarioServico},
		{"chave errada", "outra-chave", http.StatusUnauthorized, ""},
		{"jwt continua aceito", gerarToken(t, segredoTeste, time.Now().Add(time.Hour)), http.StatusOK, "user-123"},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			var usuario string
			r := routerAuth(cfg, &usuario)

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.usuario, usuario)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	var capturado string
	r.GET("/x", func(c *gin.Context) {
		capturado = c.GetString(ChaveRequestID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Idempotency-Key", "rascunho-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "rascunho-7", capturado)
	assert.Equal(t, "rascunho-7", w.Header().Get("X-Request-Id"))

	req.Header.Set("Idempotency-Key", strings.Repeat("k", 200))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, capturado, 36)
}

func TestRecoveryDevolveErroInterno(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(loggerSilencioso()))
	r.GET("/panico", func(c *gin.Context) { panic("falhou") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panico", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
}
