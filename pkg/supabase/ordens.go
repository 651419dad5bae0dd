package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
)

const (
	constraintNumeroOS = "uq_ordens_servico_numero"
	selectOrdem        = "*,clientes(*),equipamento_os(*),servicos_os(*),produtos_os(*),despesas_os(*)"
)

var tabelasItens = []string{"equipamento_os", "servicos_os", "produtos_os", "despesas_os"}

// linhaOrdem decodifica a ordem com relacionamentos embutidos.
// equipamento_os chega como objeto ou lista conforme a cardinalidade detectada.
type linhaOrdem struct {
	models.OrdemServico
	Equipamento    json.RawMessage `json:"equipamento_os"`
	FormaPagamento *string         `json:"forma_pagamento"`
}

func (l *linhaOrdem) paraModelo() (models.OrdemServico, error) {
	o := l.OrdemServico
	if l.FormaPagamento != nil {
		o.FormaPagamento = *l.FormaPagamento
	}

	o.Equipamento = nil
	raw := bytes.TrimSpace(l.Equipamento)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		var lista []models.EquipamentoOS
		if err := json.Unmarshal(raw, &lista); err != nil {
			return o, fmt.Errorf("erro ao decodificar equipamento: %w", err)
		}
		if len(lista) > 0 {
			o.Equipamento = &lista[0]
		}
	default:
		var e models.EquipamentoOS
		if err := json.Unmarshal(raw, &e); err != nil {
			return o, fmt.Errorf("erro ao decodificar equipamento: %w", err)
		}
		o.Equipamento = &e
	}

	if o.Servicos == nil {
		o.Servicos = []models.ServicoOS{}
	}
	if o.Produtos == nil {
		o.Produtos = []models.ProdutoOS{}
	}
	if o.Despesas == nil {
		o.Despesas = []models.DespesaOS{}
	}
	return o, nil
}

// gravacaoOrdem contém apenas as colunas de ordens_servico
type gravacaoOrdem struct {
	ID             string             `json:"id,omitempty"`
	OSNumeroHumano string             `json:"os_numero_humano,omitempty"`
	ClienteID      string             `json:"cliente_id"`
	FormaPagamento *string            `json:"forma_pagamento"`
	Garantia       *string            `json:"garantia"`
	Observacoes    *string            `json:"observacoes"`
	Data           time.Time          `json:"data"`
	Status         models.StatusOrdem `json:"status"`
	SyncStatus     models.StatusSync  `json:"sync_status"`
	TotalServicos  decimal.Decimal    `json:"total_servicos"`
	TotalProdutos  decimal.Decimal    `json:"total_produtos"`
	TotalDespesas  decimal.Decimal    `json:"total_despesas"`
	TotalGeral     decimal.Decimal    `json:"total_geral"`
	CreatedAt      *time.Time         `json:"created_at,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func novaGravacao(o *models.OrdemServico, completa bool) gravacaoOrdem {
	g := gravacaoOrdem{
		ClienteID:      o.ClienteID,
		FormaPagamento: nuloSeVazio(o.FormaPagamento),
		Garantia:       o.Garantia,
		Observacoes:    o.Observacoes,
		Data:           o.Data,
		Status:         o.Status,
		SyncStatus:     o.SyncStatus,
		TotalServicos:  o.TotalServicos,
		TotalProdutos:  o.TotalProdutos,
		TotalDespesas:  o.TotalDespesas,
		TotalGeral:     o.TotalGeral,
		UpdatedAt:      o.UpdatedAt,
	}
	if completa {
		criada := o.CreatedAt
		g.ID = o.ID
		g.OSNumeroHumano = o.OSNumeroHumano
		g.CreatedAt = &criada
	}
	return g
}

func filtroID(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}

// CriarOrdem grava a ordem e seus itens; se algum item falhar a ordem é apagada
func (c *Client) CriarOrdem(ctx context.Context, ordem *models.OrdemServico) error {
	_, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodPost,
		recurso: "ordens_servico",
		corpo:   novaGravacao(ordem, true),
		prefer:  []string{"return=minimal"},
	}, nil)
	if err != nil {
		if violacaoUnica(err, constraintNumeroOS) {
			return models.ErrNumeroDuplicado
		}
		return fmt.Errorf("erro ao inserir ordem: %w", err)
	}

	if err := c.inserirRelacionados(ctx, ordem.Equipamento, ordem.Servicos, ordem.Produtos, ordem.Despesas); err != nil {
		c.logger.WithError(err).WithField("ordem_id", ordem.ID).Error("Erro ao gravar itens da OS, desfazendo")
		if _, errDel := c.makeRequest(ctx, requisicao{
			metodo:  http.MethodDelete,
			recurso: "ordens_servico",
			query:   filtroID(ordem.ID),
		}, nil); errDel != nil {
			c.logger.WithError(errDel).WithField("ordem_id", ordem.ID).Error("Erro ao desfazer OS parcial")
		}
		return err
	}
	return nil
}

// UpsertOrdem atualiza a ordem existente ou insere uma nova com o mesmo id
func (c *Client) UpsertOrdem(ctx context.Context, ordem *models.OrdemServico) error {
	var existentes []struct {
		ID string `json:"id"`
	}
	q := filtroID(ordem.ID)
	q.Set("select", "id")
	if _, err := c.makeRequest(ctx, requisicao{metodo: http.MethodGet, recurso: "ordens_servico", query: q}, &existentes); err != nil {
		return fmt.Errorf("erro ao verificar ordem: %w", err)
	}

	if len(existentes) == 0 {
		return c.CriarOrdem(ctx, ordem)
	}

	if _, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodPatch,
		recurso: "ordens_servico",
		query:   filtroID(ordem.ID),
		corpo:   novaGravacao(ordem, false),
	}, nil); err != nil {
		return fmt.Errorf("erro ao atualizar ordem: %w", err)
	}

	for _, tabela := range tabelasItens {
		if err := c.removerRelacionados(ctx, tabela, ordem.ID); err != nil {
			return err
		}
	}
	return c.inserirRelacionados(ctx, ordem.Equipamento, ordem.Servicos, ordem.Produtos, ordem.Despesas)
}

// BuscarOrdem retorna a ordem não removida com cliente, equipamento e itens
func (c *Client) BuscarOrdem(ctx context.Context, id string) (*models.OrdemServico, error) {
	q := filtroID(id)
	q.Set("select", selectOrdem)
	q.Set("deleted_at", "is.null")

	var linhas []linhaOrdem
	if _, err := c.makeRequest(ctx, requisicao{metodo: http.MethodGet, recurso: "ordens_servico", query: q}, &linhas); err != nil {
		return nil, fmt.Errorf("erro ao buscar ordem: %w", err)
	}
	if len(linhas) == 0 {
		return nil, models.ErrNaoEncontrado
	}

	ordem, err := linhas[0].paraModelo()
	if err != nil {
		return nil, err
	}
	return &ordem, nil
}

// ListarOrdens retorna a página de ordens e o total informado pelo PostgREST
func (c *Client) ListarOrdens(ctx context.Context, consulta models.ConsultaOrdens) ([]models.OrdemServico, int, error) {
	if consulta.IDs != nil && len(consulta.IDs) == 0 {
		return []models.OrdemServico{}, 0, nil
	}

	q := montarFiltroOrdens(consulta)
	q.Set("select", selectOrdem)
	q.Set("order", "created_at.desc,id.desc")
	paginar(q, consulta.Offset, consulta.Limit)

	var linhas []linhaOrdem
	total, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodGet,
		recurso: "ordens_servico",
		query:   q,
		prefer:  []string{"count=exact"},
	}, &linhas)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar ordens: %w", err)
	}

	ordens := make([]models.OrdemServico, 0, len(linhas))
	for i := range linhas {
		o, err := linhas[i].paraModelo()
		if err != nil {
			return nil, 0, err
		}
		ordens = append(ordens, o)
	}
	if total < 0 {
		total = consulta.Offset + len(ordens)
	}
	return ordens, total, nil
}

// montarFiltroOrdens traduz a consulta para filtros PostgREST
func montarFiltroOrdens(consulta models.ConsultaOrdens) url.Values {
	q := url.Values{}
	q.Set("deleted_at", "is.null")
	if consulta.Status != "" {
		q.Set("status", "eq."+string(consulta.Status))
	}
	if consulta.DataDe != nil {
		q.Add("data", "gte."+consulta.DataDe.UTC().Format(time.RFC3339Nano))
	}
	if consulta.DataAte != nil {
		q.Add("data", "lte."+consulta.DataAte.UTC().Format(time.RFC3339Nano))
	}
	if consulta.IDs != nil {
		q.Set("id", listaIn(consulta.IDs))
	}
	return q
}

// AtualizarOrdem grava os campos informados e substitui as listas enviadas
func (c *Client) AtualizarOrdem(ctx context.Context, id string, campos models.CamposOrdem) error {
	q := filtroID(id)
	q.Set("deleted_at", "is.null")
	q.Set("select", "id")

	var atualizadas []struct {
		ID string `json:"id"`
	}
	if _, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodPatch,
		recurso: "ordens_servico",
		query:   q,
		corpo:   montarAtualizacao(campos),
		prefer:  []string{"return=representation"},
	}, &atualizadas); err != nil {
		c.logger.WithError(err).WithField("ordem_id", id).Error("Erro ao atualizar OS")
		return fmt.Errorf("erro ao atualizar ordem: %w", err)
	}
	if len(atualizadas) == 0 {
		return models.ErrNaoEncontrado
	}

	var servicos []models.ServicoOS
	var produtos []models.ProdutoOS
	var despesas []models.DespesaOS
	if campos.Equipamento != nil {
		if err := c.removerRelacionados(ctx, "equipamento_os", id); err != nil {
			return err
		}
	}
	if campos.Servicos != nil {
		if err := c.removerRelacionados(ctx, "servicos_os", id); err != nil {
			return err
		}
		servicos = *campos.Servicos
	}
	if campos.Produtos != nil {
		if err := c.removerRelacionados(ctx, "produtos_os", id); err != nil {
			return err
		}
		produtos = *campos.Produtos
	}
	if campos.Despesas != nil {
		if err := c.removerRelacionados(ctx, "despesas_os", id); err != nil {
			return err
		}
		despesas = *campos.Despesas
	}
	return c.inserirRelacionados(ctx, campos.Equipamento, servicos, produtos, despesas)
}

// montarAtualizacao monta o corpo do PATCH parcial
func montarAtualizacao(campos models.CamposOrdem) map[string]any {
	corpo := map[string]any{
		"sync_status": campos.SyncStatus,
		"updated_at":  campos.UpdatedAt,
	}
	if campos.ClienteID != nil {
		corpo["cliente_id"] = *campos.ClienteID
	}
	if campos.FormaPagamento != nil {
		corpo["forma_pagamento"] = nuloSeVazio(*campos.FormaPagamento)
	}
	if campos.Garantia != nil {
		corpo["garantia"] = nuloSeVazio(*campos.Garantia)
	}
	if campos.Observacoes != nil {
		corpo["observacoes"] = nuloSeVazio(*campos.Observacoes)
	}
	if campos.Data != nil {
		corpo["data"] = *campos.Data
	}
	if campos.Status != nil {
		corpo["status"] = *campos.Status
	}
	if campos.Totais != nil {
		corpo["total_servicos"] = campos.Totais.TotalServicos
		corpo["total_produtos"] = campos.Totais.TotalProdutos
		corpo["total_despesas"] = campos.Totais.TotalDespesas
		corpo["total_geral"] = campos.Totais.TotalGeral
	}
	return corpo
}

// RemoverOrdem marca deleted_at sem apagar a linha
func (c *Client) RemoverOrdem(ctx context.Context, id string, em time.Time) error {
	q := filtroID(id)
	q.Set("deleted_at", "is.null")
	q.Set("select", "id")

	var removidas []struct {
		ID string `json:"id"`
	}
	_, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodPatch,
		recurso: "ordens_servico",
		query:   q,
		corpo:   map[string]any{"deleted_at": em, "updated_at": em},
		prefer:  []string{"return=representation"},
	}, &removidas)
	if err != nil {
		c.logger.WithError(err).WithField("ordem_id", id).Error("Erro ao remover OS")
		return fmt.Errorf("erro ao remover ordem: %w", err)
	}
	if len(removidas) == 0 {
		return models.ErrNaoEncontrado
	}
	return nil
}

// BuscarIDsPorFaceta executa uma das buscas independentes da pesquisa textual
func (c *Client) BuscarIDsPorFaceta(ctx context.Context, faceta models.Faceta, termo string) ([]string, error) {
	var tabela, coluna, campo string
	switch faceta {
	case models.FacetaNomeCliente:
		tabela, coluna, campo = "clientes", "nome", "id"
	case models.FacetaServico:
		tabela, coluna, campo = "servicos_os", "nome_servico", "ordem_servico_id"
	case models.FacetaProduto:
		tabela, coluna, campo = "produtos_os", "nome_produto", "ordem_servico_id"
	case models.FacetaNumero:
		tabela, coluna, campo = "ordens_servico", "os_numero_humano", "id"
	default:
		return nil, fmt.Errorf("faceta desconhecida: %s", faceta)
	}

	q := url.Values{}
	q.Set("select", campo)
	q.Set(coluna, padraoContem(termo))
	return c.listarIDs(ctx, tabela, campo, q)
}

// BuscarIDsPorClientes retorna as ordens dos clientes informados
func (c *Client) BuscarIDsPorClientes(ctx context.Context, clienteIDs []string) ([]string, error) {
	if len(clienteIDs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("select", "id")
	q.Set("cliente_id", listaIn(clienteIDs))
	return c.listarIDs(ctx, "ordens_servico", "id", q)
}

func (c *Client) listarIDs(ctx context.Context, tabela, campo string, q url.Values) ([]string, error) {
	var linhas []map[string]any
	if _, err := c.makeRequest(ctx, requisicao{metodo: http.MethodGet, recurso: tabela, query: q}, &linhas); err != nil {
		return nil, fmt.Errorf("erro na busca de ids: %w", err)
	}

	vistos := make(map[string]struct{}, len(linhas))
	ids := make([]string, 0, len(linhas))
	for _, l := range linhas {
		id, ok := l[campo].(string)
		if !ok {
			continue
		}
		if _, dup := vistos[id]; dup {
			continue
		}
		vistos[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Client) inserirRelacionados(ctx context.Context, equipamento *models.EquipamentoOS, servicos []models.ServicoOS, produtos []models.ProdutoOS, despesas []models.DespesaOS) error {
	if equipamento != nil {
		if err := c.inserirLote(ctx, "equipamento_os", equipamento); err != nil {
			return err
		}
	}
	if len(servicos) > 0 {
		if err := c.inserirLote(ctx, "servicos_os", servicos); err != nil {
			return err
		}
	}
	if len(produtos) > 0 {
		if err := c.inserirLote(ctx, "produtos_os", produtos); err != nil {
			return err
		}
	}
	if len(despesas) > 0 {
		return c.inserirLote(ctx, "despesas_os", despesas)
	}
	return nil
}

func (c *Client) inserirLote(ctx context.Context, tabela string, corpo any) error {
	_, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodPost,
		recurso: tabela,
		corpo:   corpo,
		prefer:  []string{"return=minimal"},
	}, nil)
	if err != nil {
		return fmt.Errorf("erro ao inserir em %s: %w", tabela, err)
	}
	return nil
}

func (c *Client) removerRelacionados(ctx context.Context, tabela, ordemID string) error {
	q := url.Values{}
	q.Set("ordem_servico_id", "eq."+ordemID)
	if _, err := c.makeRequest(ctx, requisicao{metodo: http.MethodDelete, recurso: tabela, query: q}, nil); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"tabela": tabela, "ordem_id": ordemID}).Error("Erro ao remover itens da OS")
		return fmt.Errorf("erro ao remover %s: %w", tabela, err)
	}
	return nil
}

func nuloSeVazio(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
