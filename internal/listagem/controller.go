// Package listagem mantém o estado da tela de listagem de OS:
// filtros, página atual, busca textual com debounce e recarga após alterações.
package listagem

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
	"progestao-os/pkg/osapi"
)

// AtrasoBusca é o debounce aplicado à digitação na busca textual
const AtrasoBusca = 450 * time.Millisecond

// API é o subconjunto da API usado pela listagem
type API interface {
	ListarOrdens(ctx context.Context, filtro models.FiltroOrdens) (models.Pagina[models.OrdemServico], error)
	AtualizarOrdem(ctx context.Context, id string, req *models.AtualizarOrdemRequest) (*models.OrdemServico, error)
	RemoverOrdem(ctx context.Context, id string) error
}

// Estado é o que a tela exibe
type Estado struct {
	Filtro     models.FiltroOrdens
	Itens      []models.OrdemServico
	Paginacao  models.Paginacao
	Carregando bool
	Erro       string
}

// Controller coordena as consultas; respostas de consultas superadas são descartadas
type Controller struct {
	api         API
	logger      *logrus.Logger
	ctx         context.Context
	atraso      time.Duration
	aoAtualizar func(Estado)

	mu     sync.Mutex
	estado Estado
	seq    uint64
	timer  *time.Timer
}

// NewController cria a listagem; aoAtualizar é chamado a cada mudança de estado
func NewController(ctx context.Context, api API, logger *logrus.Logger, aoAtualizar func(Estado)) *Controller {
	return &Controller{
		api:         api,
		logger:      logger,
		ctx:         ctx,
		atraso:      AtrasoBusca,
		aoAtualizar: aoAtualizar,
		estado: Estado{
			Filtro: models.FiltroOrdens{Page: models.PaginaPadrao, Size: models.TamanhoPadrao},
			Itens:  []models.OrdemServico{},
		},
	}
}

// Estado retorna uma cópia do estado atual
func (c *Controller) Estado() Estado {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copiarEstado()
}

func (c *Controller) copiarEstado() Estado {
	e := c.estado
	e.Itens = append([]models.OrdemServico(nil), c.estado.Itens...)
	return e
}

// BuscarTexto agenda a consulta para depois que a digitação parar
func (c *Controller) BuscarTexto(q string) {
	c.mu.Lock()
	c.estado.Filtro.Query = q
	c.estado.Filtro.Page = models.PaginaPadrao
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.atraso, func() {
		_ = c.Recarregar()
	})
	c.mu.Unlock()
}

// DefinirStatus filtra por status; vazio remove o filtro
func (c *Controller) DefinirStatus(status string) error {
	c.mu.Lock()
	c.estado.Filtro.Status = status
	c.estado.Filtro.Page = models.PaginaPadrao
	c.mu.Unlock()
	return c.Recarregar()
}

// DefinirPeriodo filtra por data (RFC3339 ou AAAA-MM-DD); vazio remove o limite
func (c *Controller) DefinirPeriodo(de, ate string) error {
	c.mu.Lock()
	c.estado.Filtro.DateFrom = de
	c.estado.Filtro.DateTo = ate
	c.estado.Filtro.Page = models.PaginaPadrao
	c.mu.Unlock()
	return c.Recarregar()
}

// IrParaPagina muda a página mantendo os filtros
func (c *Controller) IrParaPagina(pagina int) error {
	if pagina < 1 {
		pagina = 1
	}
	c.mu.Lock()
	c.estado.Filtro.Page = pagina
	c.mu.Unlock()
	return c.Recarregar()
}

// AlterarStatus muda o status de uma OS e recarrega a lista
func (c *Controller) AlterarStatus(id string, status models.StatusOrdem) error {
	if _, err := c.api.AtualizarOrdem(c.ctx, id, &models.AtualizarOrdemRequest{Status: &status}); err != nil {
		c.registrarErro(err)
		return err
	}
	return c.Recarregar()
}

// Remover exclui logicamente uma OS e recarrega a lista
func (c *Controller) Remover(id string) error {
	if err := c.api.RemoverOrdem(c.ctx, id); err != nil {
		c.registrarErro(err)
		return err
	}
	return c.Recarregar()
}

// Recarregar consulta a API com os filtros atuais
func (c *Controller) Recarregar() error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	filtro := c.estado.Filtro
	c.estado.Carregando = true
	c.notificar()
	c.mu.Unlock()

	pagina, err := c.api.ListarOrdens(c.ctx, filtro)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// uma consulta mais nova já foi disparada
		return nil
	}

	c.estado.Carregando = false
	if err != nil {
		c.logger.WithError(err).WithField("query", filtro.Query).Warn("Erro ao carregar ordens")
		c.estado.Erro = MensagemErro(err)
		c.notificar()
		return err
	}

	c.estado.Erro = ""
	c.estado.Itens = pagina.Items
	if c.estado.Itens == nil {
		c.estado.Itens = []models.OrdemServico{}
	}
	c.estado.Paginacao = pagina.Pagination
	c.notificar()
	return nil
}

// Parar cancela uma busca com debounce ainda pendente
func (c *Controller) Parar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}

func (c *Controller) registrarErro(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.estado.Erro = MensagemErro(err)
	c.notificar()
}

// notificar deve ser chamado com mu travado
func (c *Controller) notificar() {
	if c.aoAtualizar != nil {
		c.aoAtualizar(c.copiarEstado())
	}
}

// MensagemErro traduz falhas de consulta para exibição na lista
func MensagemErro(err error) string {
	if osapi.ErroDeRede(err) {
		return "Sem conexão com o servidor. Verifique sua internet."
	}

	var apiErr *models.APIError
	if !errors.As(err, &apiErr) {
		return "Erro inesperado ao carregar as ordens de serviço."
	}
	switch apiErr.Code {
	case models.ErrorCodeValidation:
		if len(apiErr.Details) > 0 {
			return "Filtro inválido: " + strings.Join(apiErr.Details, ", ")
		}
		return apiErr.Message
	case models.ErrorCodeQuery, models.ErrorCodeInternal:
		return "Erro ao carregar as ordens de serviço. Tente novamente."
	default:
		return apiErr.Message
	}
}
