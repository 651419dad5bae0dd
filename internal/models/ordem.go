package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// valores monetários trafegam como números JSON
	decimal.MarshalJSONWithoutQuotes = true
}

// StatusOrdem representa o ciclo de vida de uma ordem de serviço
type StatusOrdem string

const (
	StatusRascunho    StatusOrdem = "rascunho"
	StatusAberta      StatusOrdem = "aberta"
	StatusEmAndamento StatusOrdem = "em_andamento"
	StatusConcluida   StatusOrdem = "concluida"
	StatusCancelada   StatusOrdem = "cancelada"
)

var rotulosStatus = map[StatusOrdem]string{
	StatusRascunho:    "Rascunho",
	StatusAberta:      "Aberta",
	StatusEmAndamento: "Em andamento",
	StatusConcluida:   "Concluída",
	StatusCancelada:   "Cancelada",
}

// Valido informa se o status é conhecido
func (s StatusOrdem) Valido() bool {
	_, ok := rotulosStatus[s]
	return ok
}

// Rotulo retorna o nome de exibição do status
func (s StatusOrdem) Rotulo() string {
	if r, ok := rotulosStatus[s]; ok {
		return r
	}
	return string(s)
}

// StatusSync distingue ordens persistidas de ordens enfileiradas localmente
type StatusSync string

const (
	SyncSynced   StatusSync = "synced"
	SyncPending  StatusSync = "pending"
	SyncConflict StatusSync = "conflict"
)

var formasPagamento = map[string]string{
	"dinheiro":       "Dinheiro",
	"pix":            "PIX",
	"cartao_debito":  "Cartão de Débito",
	"cartao_credito": "Cartão de Crédito",
	"boleto":         "Boleto",
	"transferencia":  "Transferência",
}

// FormaPagamentoValida informa se a forma de pagamento é aceita
func FormaPagamentoValida(forma string) bool {
	_, ok := formasPagamento[forma]
	return ok
}

// RotuloFormaPagamento retorna o nome de exibição da forma de pagamento
func RotuloFormaPagamento(forma string) string {
	if r, ok := formasPagamento[forma]; ok {
		return r
	}
	return forma
}

// Totais agrupa os subtotais calculados de uma OS
type Totais struct {
	TotalServicos decimal.Decimal `json:"total_servicos" db:"total_servicos"`
	TotalProdutos decimal.Decimal `json:"total_produtos" db:"total_produtos"`
	TotalDespesas decimal.Decimal `json:"total_despesas" db:"total_despesas"`
	TotalGeral    decimal.Decimal `json:"total_geral" db:"total_geral"`
}

// EquipamentoOS representa o equipamento atendido pela OS
type EquipamentoOS struct {
	ID             string  `json:"id,omitempty" db:"id"`
	OrdemServicoID string  `json:"ordem_servico_id,omitempty" db:"ordem_servico_id"`
	TipoID         int64   `json:"tipo_id" db:"tipo_id"`
	MarcaID        *int64  `json:"marca_id,omitempty" db:"marca_id"`
	Modelo         *string `json:"modelo,omitempty" db:"modelo"`
	NumeroSerie    *string `json:"numero_serie,omitempty" db:"numero_serie"`
}

// ServicoOS representa um serviço prestado; a quantidade é sempre 1
type ServicoOS struct {
	ID             string          `json:"id,omitempty" db:"id"`
	OrdemServicoID string          `json:"ordem_servico_id,omitempty" db:"ordem_servico_id"`
	NomeServico    string          `json:"nome_servico" db:"nome_servico"`
	Quantidade     int             `json:"quantidade" db:"quantidade"`
	ValorUnitario  decimal.Decimal `json:"valor_unitario" db:"valor_unitario"`
	ValorTotal     decimal.Decimal `json:"valor_total" db:"valor_total"`
}

// ProdutoOS representa um produto utilizado na OS
type ProdutoOS struct {
	ID             string          `json:"id,omitempty" db:"id"`
	OrdemServicoID string          `json:"ordem_servico_id,omitempty" db:"ordem_servico_id"`
	NomeProduto    string          `json:"nome_produto" db:"nome_produto"`
	Quantidade     int             `json:"quantidade" db:"quantidade"`
	ValorUnitario  decimal.Decimal `json:"valor_unitario" db:"valor_unitario"`
	ValorTotal     decimal.Decimal `json:"valor_total" db:"valor_total"`
}

// DespesaOS representa uma despesa lançada na OS
type DespesaOS struct {
	ID             string          `json:"id,omitempty" db:"id"`
	OrdemServicoID string          `json:"ordem_servico_id,omitempty" db:"ordem_servico_id"`
	Descricao      string          `json:"descricao" db:"descricao"`
	Valor          decimal.Decimal `json:"valor" db:"valor"`
}

// OrdemServico representa uma ordem de serviço com seus relacionamentos
type OrdemServico struct {
	ID             string         `json:"id" db:"id"`
	OSNumeroHumano string         `json:"os_numero_humano" db:"os_numero_humano"`
	ClienteID      string         `json:"cliente_id" db:"cliente_id"`
	Cliente        *Cliente       `json:"clientes,omitempty"`
	Equipamento    *EquipamentoOS `json:"equipamento_os,omitempty"`
	Servicos       []ServicoOS    `json:"servicos_os"`
	Produtos       []ProdutoOS    `json:"produtos_os"`
	Despesas       []DespesaOS    `json:"despesas_os"`
	FormaPagamento string         `json:"forma_pagamento" db:"forma_pagamento"`
	Garantia       *string        `json:"garantia,omitempty" db:"garantia"`
	Observacoes    *string        `json:"observacoes,omitempty" db:"observacoes"`
	Data           time.Time      `json:"data" db:"data"`
	Status         StatusOrdem    `json:"status" db:"status"`
	SyncStatus     StatusSync     `json:"sync_status" db:"sync_status"`
	Totais
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// OrdemRequest representa o rascunho de uma OS enviado pelo cliente.
// Totais enviados pelo chamador são ignorados e recalculados.
type OrdemRequest struct {
	ID             string          `json:"id,omitempty"`
	ClienteID      string          `json:"cliente_id,omitempty"`
	Cliente        *ClienteRequest `json:"cliente,omitempty"`
	Equipamento    *EquipamentoOS  `json:"equipamento,omitempty"`
	Servicos       []ServicoOS     `json:"servicos"`
	Produtos       []ProdutoOS     `json:"produtos"`
	Despesas       []DespesaOS     `json:"despesas"`
	FormaPagamento string          `json:"forma_pagamento,omitempty"`
	Garantia       *string         `json:"garantia,omitempty"`
	Observacoes    *string         `json:"observacoes,omitempty"`
	Data           *time.Time      `json:"data,omitempty"`
	Status         StatusOrdem     `json:"status,omitempty"`
}

// AtualizarOrdemRequest enumera os campos atualizáveis de uma OS.
// Campos ausentes permanecem inalterados; listas de itens substituem as atuais.
type AtualizarOrdemRequest struct {
	ClienteID      *string        `json:"cliente_id,omitempty"`
	FormaPagamento *string        `json:"forma_pagamento,omitempty"`
	Garantia       *string        `json:"garantia,omitempty"`
	Observacoes    *string        `json:"observacoes,omitempty"`
	Data           *time.Time     `json:"data,omitempty"`
	Status         *StatusOrdem   `json:"status,omitempty"`
	Equipamento    *EquipamentoOS `json:"equipamento,omitempty"`
	Servicos       *[]ServicoOS   `json:"servicos,omitempty"`
	Produtos       *[]ProdutoOS   `json:"produtos,omitempty"`
	Despesas       *[]DespesaOS   `json:"despesas,omitempty"`
}

// AlteraItens informa se a requisição substitui alguma lista de itens
func (r *AtualizarOrdemRequest) AlteraItens() bool {
	return r.Servicos != nil || r.Produtos != nil || r.Despesas != nil
}

// CamposOrdem é o conjunto de colunas gravado por uma atualização parcial
type CamposOrdem struct {
	ClienteID      *string
	FormaPagamento *string
	Garantia       *string
	Observacoes    *string
	Data           *time.Time
	Status         *StatusOrdem
	Totais         *Totais
	Equipamento    *EquipamentoOS
	Servicos       *[]ServicoOS
	Produtos       *[]ProdutoOS
	Despesas       *[]DespesaOS
	SyncStatus     StatusSync
	UpdatedAt      time.Time
}

// FiltroOrdens representa os parâmetros de listagem recebidos na query string
type FiltroOrdens struct {
	Query    string `form:"query" json:"query,omitempty"`
	Status   string `form:"status" json:"status,omitempty"`
	DateFrom string `form:"date_from" json:"date_from,omitempty"`
	DateTo   string `form:"date_to" json:"date_to,omitempty"`
	Page     int    `form:"page" json:"page,omitempty"`
	Size     int    `form:"size" json:"size,omitempty"`
}

// ConsultaOrdens é a consulta final enviada ao store.
// IDs nil significa sem restrição de ids.
type ConsultaOrdens struct {
	Status  StatusOrdem
	DataDe  *time.Time
	DataAte *time.Time
	IDs     []string
	Offset  int
	Limit   int
}

// Faceta identifica uma das buscas independentes da pesquisa textual
type Faceta string

const (
	FacetaNomeCliente Faceta = "nome_cliente"
	FacetaServico     Faceta = "servico"
	FacetaProduto     Faceta = "produto"
	FacetaNumero      Faceta = "numero"
)

// SyncRequest representa o lote de alterações offline
type SyncRequest struct {
	Changes []OrdemRequest `json:"changes"`
}

// ConflitoSync descreve uma alteração que não pôde ser aplicada
type ConflitoSync struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// ResultadoSync representa o resultado de uma sincronização
type ResultadoSync struct {
	Applied   []string       `json:"applied"`
	Conflicts []ConflitoSync `json:"conflicts"`
}
