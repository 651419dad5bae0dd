// Package osapi é o cliente HTTP tipado da API de ordens de serviço.
package osapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
)

const (
	tentativasExtras = 2
	esperaInicial    = 200 * time.Millisecond
)

// ErrSemConexao indica que a API não pôde ser alcançada
var ErrSemConexao = errors.New("sem conexão com a API")

// Client conversa com a API usando o envelope {ok,data,error}
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
	espera     time.Duration
}

// Option ajusta o cliente na criação
type Option func(*Client)

// WithHTTPClient troca o http.Client usado nas requisições
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithEsperaInicial define a espera antes da primeira nova tentativa de leitura
func WithEsperaInicial(d time.Duration) Option {
	return func(c *Client) { c.espera = d }
}

// New cria o cliente para a URL base da API (ex.: http://localhost:8080/api)
func New(baseURL, apiKey string, logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		espera:     esperaInicial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListarOrdens consulta a listagem paginada de ordens
func (c *Client) ListarOrdens(ctx context.Context, filtro models.FiltroOrdens) (models.Pagina[models.OrdemServico], error) {
	q := url.Values{}
	definir := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	definir("query", filtro.Query)
	definir("status", filtro.Status)
	definir("date_from", filtro.DateFrom)
	definir("date_to", filtro.DateTo)
	if filtro.Page > 0 {
		q.Set("page", strconv.Itoa(filtro.Page))
	}
	if filtro.Size > 0 {
		q.Set("size", strconv.Itoa(filtro.Size))
	}

	var pagina models.Pagina[models.OrdemServico]
	err := c.executar(ctx, http.MethodGet, "/orders", q, nil, &pagina)
	return pagina, err
}

// BuscarOrdem retorna uma OS completa
func (c *Client) BuscarOrdem(ctx context.Context, id string) (*models.OrdemServico, error) {
	var ordem models.OrdemServico
	if err := c.executar(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &ordem); err != nil {
		return nil, err
	}
	return &ordem, nil
}

// CriarOrdem envia um novo rascunho ou OS aberta
func (c *Client) CriarOrdem(ctx context.Context, req *models.OrdemRequest) (*models.OrdemServico, error) {
	var ordem models.OrdemServico
	if err := c.executar(ctx, http.MethodPost, "/orders", nil, req, &ordem); err != nil {
		return nil, err
	}
	return &ordem, nil
}

// AtualizarOrdem envia uma atualização parcial
func (c *Client) AtualizarOrdem(ctx context.Context, id string, req *models.AtualizarOrdemRequest) (*models.OrdemServico, error) {
	var ordem models.OrdemServico
	if err := c.executar(ctx, http.MethodPut, "/orders/"+url.PathEscape(id), nil, req, &ordem); err != nil {
		return nil, err
	}
	return &ordem, nil
}

// RemoverOrdem pede a exclusão lógica da OS
func (c *Client) RemoverOrdem(ctx context.Context, id string) error {
	var removido models.Removido
	return c.executar(ctx, http.MethodDelete, "/orders/"+url.PathEscape(id), nil, nil, &removido)
}

// Sincronizar envia um lote de rascunhos offline
func (c *Client) Sincronizar(ctx context.Context, alteracoes []models.OrdemRequest) (models.ResultadoSync, error) {
	var resultado models.ResultadoSync
	err := c.executar(ctx, http.MethodPost, "/orders/sync", nil, models.SyncRequest{Changes: alteracoes}, &resultado)
	return resultado, err
}

// CriarCliente cadastra um cliente
func (c *Client) CriarCliente(ctx context.Context, req *models.ClienteRequest) (*models.Cliente, error) {
	var cliente models.Cliente
	if err := c.executar(ctx, http.MethodPost, "/clients", nil, req, &cliente); err != nil {
		return nil, err
	}
	return &cliente, nil
}

// Online informa se a API responde ao health check
func (c *Client) Online(ctx context.Context) bool {
	base := strings.TrimSuffix(c.baseURL, "/api")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// executar faz a requisição; leituras são repetidas em falhas de rede e 5xx
func (c *Client) executar(ctx context.Context, metodo, caminho string, q url.Values, corpo, destino any) error {
	var payload []byte
	if corpo != nil {
		b, err := json.Marshal(corpo)
		if err != nil {
			return fmt.Errorf("erro ao serializar body: %w", err)
		}
		payload = b
	}

	if metodo != http.MethodGet {
		return c.tentar(ctx, metodo, caminho, q, payload, destino)
	}

	backoff := retry.WithMaxRetries(tentativasExtras, retry.NewExponential(c.espera))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.tentar(ctx, metodo, caminho, q, payload, destino)
		if repetivel(err) {
			c.logger.WithError(err).WithField("path", caminho).Debug("Nova tentativa de leitura")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) tentar(ctx context.Context, metodo, caminho string, q url.Values, payload []byte, destino any) error {
	endpoint := c.baseURL + caminho
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, metodo, endpoint, body)
	if err != nil {
		return fmt.Errorf("erro ao criar requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrSemConexao, err)
	}
	defer resp.Body.Close()

	var envelope struct {
		OK    bool             `json:"ok"`
		Data  json.RawMessage  `json:"data"`
		Error *models.APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return &models.APIError{Code: models.ErrorCodeInternal, Message: resp.Status, StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	if !envelope.OK || resp.StatusCode >= http.StatusBadRequest {
		apiErr := envelope.Error
		if apiErr == nil {
			apiErr = &models.APIError{Code: models.ErrorCodeInternal, Message: resp.Status}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if destino != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, destino); err != nil {
			return fmt.Errorf("erro ao decodificar dados: %w", err)
		}
	}
	return nil
}

// repetivel informa se a falha é de rede ou do servidor
func repetivel(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSemConexao) {
		return true
	}
	var apiErr *models.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError
}

// ErroDeRede informa se err indica que a API está inacessível
func ErroDeRede(err error) bool {
	return errors.Is(err, ErrSemConexao)
}
