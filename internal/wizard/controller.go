// Package wizard conduz o preenchimento de uma OS em seis etapas,
// validando cada etapa e enviando o resultado para a API ou para a fila offline.
package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
	"progestao-os/internal/services"
	"progestao-os/pkg/osapi"
)

// Etapa identifica a tela atual do wizard
type Etapa int

const (
	EtapaCliente Etapa = iota + 1
	EtapaEquipamento
	EtapaServicos
	EtapaProdutos
	EtapaDespesas
	EtapaResumo
)

const (
	msgEtapaFinal        = "Conclua as etapas anteriores antes de salvar"
	msgErroInterno       = "Erro interno do servidor. Tente novamente em alguns instantes."
	msgNumeroDuplicado   = "Número da OS já existe. Tente salvar novamente."
	msgErroInesperado    = "Erro inesperado. Tente novamente."
	msgItemInvalido      = "Item inválido"
	msgIndiceInexistente = "Item não encontrado"
)

// API é o subconjunto da API usado pelo wizard
type API interface {
	CriarCliente(ctx context.Context, req *models.ClienteRequest) (*models.Cliente, error)
	CriarOrdem(ctx context.Context, req *models.OrdemRequest) (*models.OrdemServico, error)
	AtualizarOrdem(ctx context.Context, id string, req *models.AtualizarOrdemRequest) (*models.OrdemServico, error)
}

// FilaOffline guarda rascunhos quando a API não está acessível
type FilaOffline interface {
	Enfileirar(ctx context.Context, ordem models.OrdemRequest) (string, error)
}

// Resultado descreve o desfecho de um salvamento
type Resultado struct {
	Ordem   *models.OrdemServico
	Offline bool
	ID      string
}

// Controller mantém o rascunho em edição. Não é seguro para uso concorrente.
type Controller struct {
	api    API
	fila   FilaOffline
	online func(context.Context) bool
	logger *logrus.Logger
	agora  func() time.Time

	etapa       Etapa
	rascunho    models.OrdemRequest
	ordemID     string
	idFila      string
	statusAtual models.StatusOrdem
	numeroAtual string
}

// NewController cria o wizard; online informa a conectividade antes de cada envio
func NewController(api API, fila FilaOffline, online func(context.Context) bool, logger *logrus.Logger) *Controller {
	c := &Controller{
		api:    api,
		fila:   fila,
		online: online,
		logger: logger,
		agora:  time.Now,
	}
	c.Novo()
	return c
}

// Novo inicia uma OS em branco na etapa de cliente com a data de hoje
func (c *Controller) Novo() {
	hoje := c.agora()
	c.etapa = EtapaCliente
	c.rascunho = models.OrdemRequest{Data: &hoje}
	c.ordemID = ""
	c.idFila = ""
	c.statusAtual = ""
	c.numeroAtual = ""
}

// Editar carrega uma OS existente e abre direto no resumo
func (c *Controller) Editar(o *models.OrdemServico) {
	c.rascunho = rascunhoDe(o)
	c.ordemID = o.ID
	c.idFila = ""
	c.statusAtual = o.Status
	c.numeroAtual = o.OSNumeroHumano
	c.etapa = EtapaResumo
}

// Duplicar usa a OS como modelo de uma nova: ids, número e status não são herdados
func (c *Controller) Duplicar(o *models.OrdemServico) {
	r := rascunhoDe(o)
	hoje := c.agora()
	r.ID = ""
	r.Status = ""
	r.Data = &hoje
	if r.Equipamento != nil {
		r.Equipamento.ID = ""
		r.Equipamento.OrdemServicoID = ""
	}
	for i := range r.Servicos {
		r.Servicos[i].ID, r.Servicos[i].OrdemServicoID = "", ""
	}
	for i := range r.Produtos {
		r.Produtos[i].ID, r.Produtos[i].OrdemServicoID = "", ""
	}
	for i := range r.Despesas {
		r.Despesas[i].ID, r.Despesas[i].OrdemServicoID = "", ""
	}

	c.rascunho = r
	c.ordemID = ""
	c.idFila = ""
	c.statusAtual = ""
	c.numeroAtual = ""
	c.etapa = EtapaCliente
}

func rascunhoDe(o *models.OrdemServico) models.OrdemRequest {
	data := o.Data
	r := models.OrdemRequest{
		ID:             o.ID,
		ClienteID:      o.ClienteID,
		Servicos:       append([]models.ServicoOS(nil), o.Servicos...),
		Produtos:       append([]models.ProdutoOS(nil), o.Produtos...),
		Despesas:       append([]models.DespesaOS(nil), o.Despesas...),
		FormaPagamento: o.FormaPagamento,
		Garantia:       copiarTexto(o.Garantia),
		Observacoes:    copiarTexto(o.Observacoes),
		Data:           &data,
		Status:         o.Status,
	}
	if o.Equipamento != nil {
		e := *o.Equipamento
		r.Equipamento = &e
	}
	return r
}

func copiarTexto(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Etapa retorna a etapa atual
func (c *Controller) Etapa() Etapa {
	return c.etapa
}

// Editando informa se o wizard altera uma OS existente
func (c *Controller) Editando() bool {
	return c.ordemID != ""
}

// NumeroAtual retorna o número da OS em edição, se houver
func (c *Controller) NumeroAtual() string {
	return c.numeroAtual
}

// Rascunho retorna uma cópia do rascunho atual
func (c *Controller) Rascunho() models.OrdemRequest {
	r := c.rascunho
	r.Servicos = append([]models.ServicoOS(nil), c.rascunho.Servicos...)
	r.Produtos = append([]models.ProdutoOS(nil), c.rascunho.Produtos...)
	r.Despesas = append([]models.DespesaOS(nil), c.rascunho.Despesas...)
	return r
}

// Totais recalcula os subtotais a partir dos itens válidos atuais
func (c *Controller) Totais() models.Totais {
	return services.CalcularTotais(&c.rascunho)
}

// Resumo é o que a etapa final exibe
type Resumo struct {
	Numero         string
	Status         string
	FormaPagamento string
	Totais         models.Totais
}

// Resumo monta a etapa final com os rótulos de exibição.
// OS ainda não salva aparece como rascunho.
func (c *Controller) Resumo() Resumo {
	status := c.statusAtual
	if status == "" {
		status = models.StatusRascunho
	}
	return Resumo{
		Numero:         c.numeroAtual,
		Status:         status.Rotulo(),
		FormaPagamento: models.RotuloFormaPagamento(c.rascunho.FormaPagamento),
		Totais:         c.Totais(),
	}
}

// SelecionarCliente associa um cliente já cadastrado
func (c *Controller) SelecionarCliente(id string) {
	c.rascunho.ClienteID = strings.TrimSpace(id)
	c.rascunho.Cliente = nil
}

// DefinirCliente informa os dados de um cliente a ser criado no envio
func (c *Controller) DefinirCliente(cliente models.ClienteRequest) {
	c.rascunho.ClienteID = ""
	c.rascunho.Cliente = &cliente
}

// DefinirEquipamento informa o equipamento atendido; nil remove
func (c *Controller) DefinirEquipamento(e *models.EquipamentoOS) {
	if e == nil {
		c.rascunho.Equipamento = nil
		return
	}
	copia := *e
	c.rascunho.Equipamento = &copia
}

// AdicionarServico inclui um serviço; a quantidade é sempre 1
func (c *Controller) AdicionarServico(nome string, valor decimal.Decimal) error {
	s := models.ServicoOS{NomeServico: strings.TrimSpace(nome), Quantidade: 1, ValorUnitario: valor, ValorTotal: valor}
	if !services.ServicoValido(s) {
		return models.NewValidationError(msgItemInvalido, "Informe o nome e um valor maior que zero")
	}
	c.rascunho.Servicos = append(c.rascunho.Servicos, s)
	return nil
}

// RemoverServico remove o serviço na posição i
func (c *Controller) RemoverServico(i int) error {
	if i < 0 || i >= len(c.rascunho.Servicos) {
		return models.NewValidationError(msgIndiceInexistente)
	}
	c.rascunho.Servicos = append(c.rascunho.Servicos[:i], c.rascunho.Servicos[i+1:]...)
	return nil
}

// AdicionarProduto inclui um produto com quantidade e valor unitário
func (c *Controller) AdicionarProduto(nome string, quantidade int, valor decimal.Decimal) error {
	p := models.ProdutoOS{
		NomeProduto:   strings.TrimSpace(nome),
		Quantidade:    quantidade,
		ValorUnitario: valor,
		ValorTotal:    valor.Mul(decimal.NewFromInt(int64(quantidade))),
	}
	if !services.ProdutoValido(p) {
		return models.NewValidationError(msgItemInvalido, "Informe o nome, quantidade mínima 1 e valor maior que zero")
	}
	c.rascunho.Produtos = append(c.rascunho.Produtos, p)
	return nil
}

// RemoverProduto remove o produto na posição i
func (c *Controller) RemoverProduto(i int) error {
	if i < 0 || i >= len(c.rascunho.Produtos) {
		return models.NewValidationError(msgIndiceInexistente)
	}
	c.rascunho.Produtos = append(c.rascunho.Produtos[:i], c.rascunho.Produtos[i+1:]...)
	return nil
}

// AdicionarDespesa inclui uma despesa
func (c *Controller) AdicionarDespesa(descricao string, valor decimal.Decimal) error {
	d := models.DespesaOS{Descricao: strings.TrimSpace(descricao), Valor: valor}
	if !services.DespesaValida(d) {
		return models.NewValidationError(msgItemInvalido, "Informe a descrição e um valor maior que zero")
	}
	c.rascunho.Despesas = append(c.rascunho.Despesas, d)
	return nil
}

// RemoverDespesa remove a despesa na posição i
func (c *Controller) RemoverDespesa(i int) error {
	if i < 0 || i >= len(c.rascunho.Despesas) {
		return models.NewValidationError(msgIndiceInexistente)
	}
	c.rascunho.Despesas = append(c.rascunho.Despesas[:i], c.rascunho.Despesas[i+1:]...)
	return nil
}

// DefinirPagamento preenche os dados da etapa de resumo
func (c *Controller) DefinirPagamento(forma string, garantia, observacoes *string) {
	c.rascunho.FormaPagamento = strings.TrimSpace(forma)
	c.rascunho.Garantia = copiarTexto(garantia)
	c.rascunho.Observacoes = copiarTexto(observacoes)
}

// DefinirData altera a data da OS
func (c *Controller) DefinirData(t time.Time) {
	c.rascunho.Data = &t
}

// Avancar valida a etapa atual e segue para a próxima
func (c *Controller) Avancar() error {
	if c.etapa == EtapaResumo {
		return nil
	}
	if erros := c.validarEtapa(c.etapa); len(erros) > 0 {
		return models.NewValidationError(services.MsgDadosInvalidos, erros...)
	}
	c.etapa++
	return nil
}

// Voltar retorna para a etapa anterior sem validar
func (c *Controller) Voltar() {
	if c.etapa > EtapaCliente {
		c.etapa--
	}
}

func (c *Controller) validarEtapa(e Etapa) []string {
	switch e {
	case EtapaCliente:
		if c.rascunho.ClienteID != "" {
			return nil
		}
		if c.rascunho.Cliente == nil {
			return []string{services.MsgClienteObrigatorio}
		}
		return services.ValidarCliente(c.rascunho.Cliente)
	case EtapaEquipamento:
		if c.rascunho.Equipamento != nil && c.rascunho.Equipamento.TipoID <= 0 {
			return []string{services.MsgTipoEquipamento}
		}
	}
	return nil
}

// SalvarRascunho grava a OS como rascunho; forma de pagamento não é exigida
func (c *Controller) SalvarRascunho(ctx context.Context) (*Resultado, error) {
	return c.salvar(ctx, models.StatusRascunho)
}

// Finalizar grava a OS como aberta com validação completa
func (c *Controller) Finalizar(ctx context.Context) (*Resultado, error) {
	return c.salvar(ctx, models.StatusAberta)
}

func (c *Controller) salvar(ctx context.Context, alvo models.StatusOrdem) (*Resultado, error) {
	if c.etapa != EtapaResumo {
		return nil, models.NewValidationError(msgEtapaFinal)
	}

	r := c.Rascunho()
	r.Status = c.statusDestino(alvo)
	if erros := services.ValidarOrdem(&r); len(erros) > 0 {
		return nil, models.NewValidationError(services.MsgDadosInvalidos, erros...)
	}

	// OS nova que já está na fila continua na fila até a sincronização
	if c.idFila != "" && c.ordemID == "" {
		return c.enfileirar(ctx, r)
	}
	if c.online != nil && !c.online(ctx) {
		return c.enfileirar(ctx, r)
	}

	ordem, err := c.enviar(ctx, &r)
	if err != nil {
		if osapi.ErroDeRede(err) {
			c.logger.WithError(err).Warn("API inacessível, rascunho guardado localmente")
			return c.enfileirar(ctx, r)
		}
		return nil, err
	}

	c.ordemID = ordem.ID
	c.statusAtual = ordem.Status
	c.numeroAtual = ordem.OSNumeroHumano
	c.rascunho.ClienteID = ordem.ClienteID
	c.rascunho.Cliente = nil

	c.logger.WithFields(logrus.Fields{
		"ordem_id": ordem.ID,
		"numero":   ordem.OSNumeroHumano,
		"status":   ordem.Status,
	}).Info("OS salva pelo wizard")
	return &Resultado{Ordem: ordem, ID: ordem.ID}, nil
}

// statusDestino preserva status já avançados ao editar uma OS existente
func (c *Controller) statusDestino(alvo models.StatusOrdem) models.StatusOrdem {
	switch c.statusAtual {
	case models.StatusEmAndamento, models.StatusConcluida, models.StatusCancelada:
		return c.statusAtual
	}
	return alvo
}

func (c *Controller) enviar(ctx context.Context, r *models.OrdemRequest) (*models.OrdemServico, error) {
	if r.ClienteID == "" && r.Cliente != nil {
		cliente, err := c.api.CriarCliente(ctx, r.Cliente)
		if err != nil {
			return nil, err
		}
		r.ClienteID = cliente.ID
		r.Cliente = nil
		c.rascunho.ClienteID = cliente.ID
		c.rascunho.Cliente = nil
	}

	if c.ordemID == "" {
		return c.api.CriarOrdem(ctx, r)
	}

	status := r.Status
	return c.api.AtualizarOrdem(ctx, c.ordemID, &models.AtualizarOrdemRequest{
		ClienteID:      &r.ClienteID,
		FormaPagamento: &r.FormaPagamento,
		Garantia:       r.Garantia,
		Observacoes:    r.Observacoes,
		Data:           r.Data,
		Status:         &status,
		Equipamento:    r.Equipamento,
		Servicos:       &r.Servicos,
		Produtos:       &r.Produtos,
		Despesas:       &r.Despesas,
	})
}

func (c *Controller) enfileirar(ctx context.Context, r models.OrdemRequest) (*Resultado, error) {
	if c.fila == nil {
		return nil, osapi.ErrSemConexao
	}
	switch {
	case c.ordemID != "":
		r.ID = c.ordemID
	case c.idFila != "":
		r.ID = c.idFila
	}
	id, err := c.fila.Enfileirar(ctx, r)
	if err != nil {
		return nil, err
	}
	if c.ordemID == "" {
		c.idFila = id
	}
	return &Resultado{Offline: true, ID: id}, nil
}

// MensagemErro traduz um erro de salvamento para exibição ao usuário
func MensagemErro(err error) string {
	var apiErr *models.APIError
	if !errors.As(err, &apiErr) {
		if osapi.ErroDeRede(err) {
			return "Sem conexão com o servidor. Tente novamente."
		}
		return msgErroInesperado
	}

	switch apiErr.Code {
	case models.ErrorCodeValidation:
		if len(apiErr.Details) == 0 {
			return apiErr.Message
		}
		return "Dados inválidos: " + strings.Join(apiErr.Details, ", ")
	case models.ErrorCodeInternal:
		return msgErroInterno
	case models.ErrorCodeDuplicateNumber:
		return msgNumeroDuplicado
	default:
		return apiErr.Message
	}
}
