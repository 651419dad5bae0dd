package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const codigoViolacaoUnica = "23505"

// ErroPostgREST representa a resposta de erro da API REST do Supabase
type ErroPostgREST struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

// Error implementa a interface error
func (e *ErroPostgREST) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("erro HTTP %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("erro HTTP %d: %s", e.StatusCode, e.Message)
}

// violacaoUnica informa se err é uma violação de unicidade que menciona o termo
func violacaoUnica(err error, termo string) bool {
	var pgErr *ErroPostgREST
	if !errors.As(err, &pgErr) || pgErr.Code != codigoViolacaoUnica {
		return false
	}
	return termo == "" || strings.Contains(pgErr.Message, termo) || strings.Contains(pgErr.Details, termo)
}

// Client representa o store sobre a API REST (PostgREST) do Supabase
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient cria uma nova instância do cliente Supabase
func NewClient(supabaseURL, key string, logger *logrus.Logger) (*Client, error) {
	if supabaseURL == "" || key == "" {
		return nil, fmt.Errorf("SUPABASE_URL e SUPABASE_KEY são obrigatórios")
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(supabaseURL, "/") + "/rest/v1",
		apiKey:  key,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// Close não mantém conexões próprias além do pool HTTP
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ping verifica se a API REST está respondendo
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")
	_, err := c.makeRequest(ctx, requisicao{metodo: http.MethodGet, recurso: "ordens_servico", query: q}, nil)
	return err
}

type requisicao struct {
	metodo  string
	recurso string
	query   url.Values
	corpo   any
	prefer  []string
}

// makeRequest faz uma requisição HTTP para o Supabase.
// Retorna o total informado em Content-Range, ou -1 quando ausente.
func (c *Client) makeRequest(ctx context.Context, r requisicao, resultado any) (int, error) {
	var reqBody io.Reader
	if r.corpo != nil {
		b, err := json.Marshal(r.corpo)
		if err != nil {
			return -1, fmt.Errorf("erro ao serializar body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	endpoint := c.baseURL + "/" + r.recurso
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.metodo, endpoint, reqBody)
	if err != nil {
		return -1, fmt.Errorf("erro ao criar requisição: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if len(r.prefer) > 0 {
		req.Header.Set("Prefer", strings.Join(r.prefer, ","))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return -1, fmt.Errorf("erro ao fazer requisição: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		pgErr := &ErroPostgREST{StatusCode: resp.StatusCode}
		if b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); len(b) > 0 {
			if json.Unmarshal(b, pgErr) != nil {
				pgErr.Message = string(b)
			}
		}
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"recurso":     r.recurso,
			"method":      r.metodo,
			"code":        pgErr.Code,
		}).Error("Erro HTTP detalhado")
		return -1, pgErr
	}

	if resultado != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(resultado); err != nil {
			return -1, fmt.Errorf("erro ao decodificar resposta: %w", err)
		}
	}

	return totalContentRange(resp.Header.Get("Content-Range")), nil
}

// totalContentRange extrai o total de "0-19/57" ou "*/0"
func totalContentRange(v string) int {
	_, total, ok := strings.Cut(v, "/")
	if !ok || total == "*" {
		return -1
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return -1
	}
	return n
}

var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, ``)

// padraoContem monta o filtro ilike.*termo* com curingas escapados
func padraoContem(termo string) string {
	return "ilike.*" + escapeLike.Replace(termo) + "*"
}

// valorEntreAspas protege valores usados dentro de filtros or=(...)
func valorEntreAspas(v string) string {
	v = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v)
	return `"` + v + `"`
}

// listaIn monta o filtro in.(a,b,c)
func listaIn(ids []string) string {
	return "in.(" + strings.Join(ids, ",") + ")"
}

func paginar(q url.Values, offset, limit int) {
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
}
