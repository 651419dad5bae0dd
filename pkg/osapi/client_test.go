package osapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progestao-os/internal/models"
)

func novoCliente(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(srv.URL+"/api", "chave", logger, WithEsperaInicial(time.Millisecond)), srv
}

func responder(w http.ResponseWriter, status int, corpo models.Resposta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(corpo)
}

func TestListarOrdensEnviaFiltros(t *testing.T) {
	c, _ := novoCliente(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "tela", r.URL.Query().Get("query"))
		assert.Equal(t, "aberta", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.False(t, r.URL.Query().Has("date_from"))
		assert.Equal(t, "Bearer chave", r.Header.Get("Authorization"))

		pagina := models.NovaPagina([]models.OrdemServico{{ID: "o1"}}, models.NovaPaginacao(2, 20, 21))
		responder(w, http.StatusOK, models.Resposta{OK: true, Data: pagina})
	})

	pagina, err := c.ListarOrdens(context.Background(), models.FiltroOrdens{Query: "tela", Status: "aberta", Page: 2})

	require.NoError(t, err)
	require.Len(t, pagina.Items, 1)
	assert.Equal(t, "o1", pagina.Items[0].ID)
	assert.Equal(t, 2, pagina.Pagination.Pages)
}

func TestErroDaAPIViraAPIError(t *testing.T) {
	c, _ := novoCliente(t, func(w http.ResponseWriter, r *http.Request) {
		responder(w, http.StatusBadRequest, models.Resposta{
			OK:    false,
			Error: models.NewValidationError("Dados inválidos", "Data é obrigatória"),
		})
	})

	_, err := c.CriarOrdem(context.Background(), &models.OrdemRequest{})

	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, models.ErrorCodeValidation, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"Data é obrigatória"}, apiErr.Details)
}

func TestLeituraRepeteEmErroDoServidor(t *testing.T) {
	var chamadas atomic.Int32
	c, _ := novoCliente(t, func(w http.ResponseWriter, r *http.Request) {
		if chamadas.Add(1) < 3 {
			responder(w, http.StatusInternalServerError, models.Resposta{Error: models.NewInternalError("Erro interno do servidor")})
			return
		}
		responder(w, http.StatusOK, models.Resposta{OK: true, Data: models.OrdemServico{ID: "o1"}})
	})

	ordem, err := c.BuscarOrdem(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, "o1", ordem.ID)
	assert.Equal(t, int32(3), chamadas.Load())
}

func TestEscritaNaoRepete(t *testing.T) {
	var chamadas atomic.Int32
	c, _ := novoCliente(t, func(w http.ResponseWriter, r *http.Request) {
		chamadas.Add(1)
		responder(w, http.StatusInternalServerError, models.Resposta{Error: models.NewInternalError("Erro interno do servidor")})
	})

	err := c.RemoverOrdem(context.Background(), "o1")

	assert.True(t, models.IsCode(err, models.ErrorCodeInternal))
	assert.Equal(t, int32(1), chamadas.Load())
}

func TestSemConexao(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := New(url+"/api", "", logger, WithEsperaInicial(time.Millisecond))

	_, err := c.Sincronizar(context.Background(), nil)
	assert.True(t, ErroDeRede(err))
	assert.False(t, c.Online(context.Background()))
}

func TestOnlineUsaHealth(t *testing.T) {
	c, _ := novoCliente(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			responder(w, http.StatusOK, models.Resposta{OK: true})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	assert.True(t, c.Online(context.Background()))
}
