package services

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"progestao-os/internal/models"
)

// Mensagens de validação exibidas ao usuário
const (
	MsgClienteObrigatorio     = "Cliente é obrigatório"
	MsgNomeClienteObrigatorio = "Nome do cliente é obrigatório"
	MsgTelefoneInvalido       = "Informe um telefone válido com DDD"
	MsgEmailInvalido          = "Email inválido"
	MsgDataObrigatoria        = "Data é obrigatória"
	MsgStatusInvalido         = "Status inválido"
	MsgFormaPagamento         = "Forma de pagamento é obrigatória"
	MsgFormaPagamentoInvalida = "Forma de pagamento inválida"
	MsgTipoEquipamento        = "Tipo de equipamento é obrigatório"
	MsgItemObrigatorio        = "Deve ter pelo menos um serviço ou produto válido"
	MsgTotalNegativo          = "Total geral deve ser >= 0"
	MsgDadosInvalidos         = "Dados inválidos"
	MsgStatusCriacaoInvalido  = "OS deve ser criada como rascunho ou aberta"
	MsgClienteNaoEncontrado   = "Cliente não encontrado"
	MsgTipoNaoEncontrado      = "Tipo de equipamento não encontrado"
	MsgMarcaNaoEncontrada     = "Marca não encontrada"
	MsgErroInterno            = "Erro interno do servidor"
	MsgIDInvalido             = "id inválido"
	TamanhoMaximoBusca        = 100
	MsgBuscaMuitoLonga        = "Busca deve ter no máximo 100 caracteres"
	MsgParametrosInvalidos    = "Parâmetros inválidos"
)

var validate = validator.New()

// valorPositivo compara já em centavos, como o valor é gravado
func valorPositivo(v decimal.Decimal) bool {
	return v.Round(2).IsPositive()
}

// ServicoValido informa se o serviço tem nome e valor positivo
func ServicoValido(s models.ServicoOS) bool {
	return strings.TrimSpace(s.NomeServico) != "" && valorPositivo(s.ValorUnitario)
}

// ProdutoValido informa se o produto tem nome, quantidade e valor positivos
func ProdutoValido(p models.ProdutoOS) bool {
	return strings.TrimSpace(p.NomeProduto) != "" && p.Quantidade >= 1 && valorPositivo(p.ValorUnitario)
}

// DespesaValida informa se a despesa tem descrição e valor positivo
func DespesaValida(d models.DespesaOS) bool {
	return strings.TrimSpace(d.Descricao) != "" && valorPositivo(d.Valor)
}

// NormalizarServicos descarta serviços inválidos e fixa a quantidade em 1
func NormalizarServicos(servicos []models.ServicoOS) []models.ServicoOS {
	var out []models.ServicoOS
	for _, s := range servicos {
		if !ServicoValido(s) {
			continue
		}
		valor := s.ValorUnitario.Round(2)
		out = append(out, models.ServicoOS{
			ID:            s.ID,
			NomeServico:   strings.TrimSpace(s.NomeServico),
			Quantidade:    1,
			ValorUnitario: valor,
			ValorTotal:    valor,
		})
	}
	return out
}

// NormalizarProdutos descarta produtos inválidos e recalcula valor_total
func NormalizarProdutos(produtos []models.ProdutoOS) []models.ProdutoOS {
	var out []models.ProdutoOS
	for _, p := range produtos {
		if !ProdutoValido(p) {
			continue
		}
		valor := p.ValorUnitario.Round(2)
		out = append(out, models.ProdutoOS{
			ID:            p.ID,
			NomeProduto:   strings.TrimSpace(p.NomeProduto),
			Quantidade:    p.Quantidade,
			ValorUnitario: valor,
			ValorTotal:    valor.Mul(decimal.NewFromInt(int64(p.Quantidade))),
		})
	}
	return out
}

// NormalizarDespesas descarta despesas inválidas
func NormalizarDespesas(despesas []models.DespesaOS) []models.DespesaOS {
	var out []models.DespesaOS
	for _, d := range despesas {
		if !DespesaValida(d) {
			continue
		}
		out = append(out, models.DespesaOS{
			ID:        d.ID,
			Descricao: strings.TrimSpace(d.Descricao),
			Valor:     d.Valor.Round(2),
		})
	}
	return out
}

// SomarTotais soma itens já normalizados
func SomarTotais(servicos []models.ServicoOS, produtos []models.ProdutoOS, despesas []models.DespesaOS) models.Totais {
	var t models.Totais
	for _, s := range servicos {
		t.TotalServicos = t.TotalServicos.Add(s.ValorTotal)
	}
	for _, p := range produtos {
		t.TotalProdutos = t.TotalProdutos.Add(p.ValorTotal)
	}
	for _, d := range despesas {
		t.TotalDespesas = t.TotalDespesas.Add(d.Valor)
	}
	t.TotalGeral = t.TotalServicos.Add(t.TotalProdutos).Add(t.TotalDespesas)
	return t
}

// CalcularTotais calcula os totais considerando apenas itens válidos
func CalcularTotais(r *models.OrdemRequest) models.Totais {
	return SomarTotais(NormalizarServicos(r.Servicos), NormalizarProdutos(r.Produtos), NormalizarDespesas(r.Despesas))
}

// ValidarCliente valida os dados de um cliente a ser criado
func ValidarCliente(c *models.ClienteRequest) []string {
	var erros []string
	if strings.TrimSpace(c.Nome) == "" {
		erros = append(erros, MsgNomeClienteObrigatorio)
	}
	if !TelefoneValido(c.Telefone) {
		erros = append(erros, MsgTelefoneInvalido)
	}
	if email := strings.TrimSpace(c.Email); email != "" && validate.Var(email, "email") != nil {
		erros = append(erros, MsgEmailInvalido)
	}
	return erros
}

// ValidarOrdem valida um rascunho de OS e retorna as mensagens de erro em ordem.
// Lista vazia significa rascunho válido.
func ValidarOrdem(r *models.OrdemRequest) []string {
	var erros []string

	if strings.TrimSpace(r.ClienteID) == "" {
		if r.Cliente == nil {
			erros = append(erros, MsgClienteObrigatorio)
		} else {
			erros = append(erros, ValidarCliente(r.Cliente)...)
		}
	}

	if r.Data == nil || r.Data.IsZero() {
		erros = append(erros, MsgDataObrigatoria)
	}

	status := r.Status
	if status == "" {
		status = models.StatusRascunho
	}
	if !status.Valido() {
		erros = append(erros, MsgStatusInvalido)
	}

	forma := strings.TrimSpace(r.FormaPagamento)
	switch {
	case forma == "" && status != models.StatusRascunho:
		erros = append(erros, MsgFormaPagamento)
	case forma != "" && !models.FormaPagamentoValida(forma):
		erros = append(erros, MsgFormaPagamentoInvalida)
	}

	if r.Equipamento != nil && r.Equipamento.TipoID <= 0 {
		erros = append(erros, MsgTipoEquipamento)
	}

	if len(NormalizarServicos(r.Servicos)) == 0 && len(NormalizarProdutos(r.Produtos)) == 0 {
		erros = append(erros, MsgItemObrigatorio)
	}

	if CalcularTotais(r).TotalGeral.IsNegative() {
		erros = append(erros, MsgTotalNegativo)
	}

	return erros
}

// SanitizarBusca troca caracteres de controle por espaço e apara o texto
func SanitizarBusca(q string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, q))
}

func idValido(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func textoOpcional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
