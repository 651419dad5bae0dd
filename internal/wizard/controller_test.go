package wizard

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progestao-os/internal/models"
	"progestao-os/internal/services"
	"progestao-os/pkg/osapi"
)

type apiFake struct {
	clientes    int
	criadas     []models.OrdemRequest
	atualizadas map[string]*models.AtualizarOrdemRequest
	errCriar    error
}

func (a *apiFake) CriarCliente(_ context.Context, req *models.ClienteRequest) (*models.Cliente, error) {
	a.clientes++
	return &models.Cliente{ID: fmt.Sprintf("cliente-%d", a.clientes), Nome: req.Nome}, nil
}

func (a *apiFake) CriarOrdem(_ context.Context, req *models.OrdemRequest) (*models.OrdemServico, error) {
	if a.errCriar != nil {
		return nil, a.errCriar
	}
	a.criadas = append(a.criadas, *req)
	return &models.OrdemServico{
		ID:             fmt.Sprintf("ordem-%d", len(a.criadas)),
		OSNumeroHumano: fmt.Sprintf("OS-202403-%05d", len(a.criadas)),
		ClienteID:      req.ClienteID,
		Status:         req.Status,
	}, nil
}

func (a *apiFake) AtualizarOrdem(_ context.Context, id string, req *models.AtualizarOrdemRequest) (*models.OrdemServico, error) {
	if a.atualizadas == nil {
		a.atualizadas = make(map[string]*models.AtualizarOrdemRequest)
	}
	a.atualizadas[id] = req
	return &models.OrdemServico{ID: id, ClienteID: *req.ClienteID, Status: *req.Status}, nil
}

type filaFake struct {
	rascunhos map[string]models.OrdemRequest
	seq       int
}

func (f *filaFake) Enfileirar(_ context.Context, ordem models.OrdemRequest) (string, error) {
	if f.rascunhos == nil {
		f.rascunhos = make(map[string]models.OrdemRequest)
	}
	if ordem.ID == "" {
		f.seq++
		ordem.ID = fmt.Sprintf("local-%d", f.seq)
	}
	f.rascunhos[ordem.ID] = ordem
	return ordem.ID, nil
}

func novoWizard(online bool) (*Controller, *apiFake, *filaFake) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	api := &apiFake{}
	fila := &filaFake{}
	c := NewController(api, fila, func(context.Context) bool { return online }, logger)
	return c, api, fila
}

// preencher percorre as seis etapas com um cliente novo e um serviço
func preencher(t *testing.T, c *Controller) {
	t.Helper()
	c.DefinirCliente(models.ClienteRequest{Nome: "Paulo", Telefone: "11987654321"})
	require.NoError(t, c.Avancar())
	c.DefinirEquipamento(&models.EquipamentoOS{TipoID: 3})
	require.NoError(t, c.Avancar())
	require.NoError(t, c.AdicionarServico("Troca de tela", decimal.RequireFromString("200")))
	require.NoError(t, c.Avancar())
	require.NoError(t, c.Avancar())
	require.NoError(t, c.Avancar())
	require.Equal(t, EtapaResumo, c.Etapa())
}

func TestAvancarValidaCliente(t *testing.T) {
	c, _, _ := novoWizard(true)

	err := c.Avancar()
	require.Error(t, err)
	assert.Contains(t, err.(*models.APIError).Details, services.MsgClienteObrigatorio)
	assert.Equal(t, EtapaCliente, c.Etapa())

	c.DefinirCliente(models.ClienteRequest{Nome: "Paulo", Telefone: "12"})
	err = c.Avancar()
	require.Error(t, err)
	assert.Contains(t, err.(*models.APIError).Details, services.MsgTelefoneInvalido)

	c.SelecionarCliente("cliente-existente")
	require.NoError(t, c.Avancar())
	assert.Equal(t, EtapaEquipamento, c.Etapa())
}

func TestAvancarValidaEquipamento(t *testing.T) {
	c, _, _ := novoWizard(true)
	c.SelecionarCliente("c1")
	require.NoError(t, c.Avancar())

	c.DefinirEquipamento(&models.EquipamentoOS{})
	err := c.Avancar()
	require.Error(t, err)
	assert.Contains(t, err.(*models.APIError).Details, services.MsgTipoEquipamento)

	// equipamento é opcional
	c.DefinirEquipamento(nil)
	require.NoError(t, c.Avancar())

	c.Voltar()
	c.Voltar()
	c.Voltar()
	assert.Equal(t, EtapaCliente, c.Etapa())
}

func TestItensETotais(t *testing.T) {
	c, _, _ := novoWizard(true)

	assert.Error(t, c.AdicionarServico("", decimal.NewFromInt(10)))
	assert.Error(t, c.AdicionarProduto("Cabo", 0, decimal.NewFromInt(10)))
	assert.Error(t, c.AdicionarDespesa("Frete", decimal.Zero))

	require.NoError(t, c.AdicionarServico("Limpeza", decimal.NewFromInt(80)))
	require.NoError(t, c.AdicionarProduto("Pasta térmica", 2, decimal.RequireFromString("12.50")))
	require.NoError(t, c.AdicionarDespesa("Frete", decimal.NewFromInt(15)))

	totais := c.Totais()
	assert.Equal(t, "80.00", totais.TotalServicos.StringFixed(2))
	assert.Equal(t, "25.00", totais.TotalProdutos.StringFixed(2))
	assert.Equal(t, "120.00", totais.TotalGeral.StringFixed(2))

	require.NoError(t, c.RemoverProduto(0))
	assert.Error(t, c.RemoverProduto(0))
	assert.Equal(t, "95.00", c.Totais().TotalGeral.StringFixed(2))
}

func TestSalvarExigeResumo(t *testing.T) {
	c, api, _ := novoWizard(true)
	c.SelecionarCliente("c1")

	_, err := c.SalvarRascunho(context.Background())

	require.Error(t, err)
	assert.Empty(t, api.criadas)
}

func TestFinalizarOnline(t *testing.T) {
	c, api, fila := novoWizard(true)
	preencher(t, c)
	ctx := context.Background()

	_, err := c.Finalizar(ctx)
	require.Error(t, err)
	assert.Contains(t, err.(*models.APIError).Details, services.MsgFormaPagamento)

	c.DefinirPagamento("pix", nil, nil)
	res, err := c.Finalizar(ctx)
	require.NoError(t, err)

	assert.False(t, res.Offline)
	assert.Equal(t, "ordem-1", res.ID)
	assert.Equal(t, 1, api.clientes)
	require.Len(t, api.criadas, 1)
	assert.Equal(t, models.StatusAberta, api.criadas[0].Status)
	assert.Equal(t, "cliente-1", api.criadas[0].ClienteID)
	assert.Nil(t, api.criadas[0].Cliente)
	assert.Empty(t, fila.rascunhos)
	assert.True(t, c.Editando())
	assert.Equal(t, "OS-202403-00001", c.NumeroAtual())

	// um segundo salvamento atualiza a mesma OS sem recriar o cliente
	res, err = c.SalvarRascunho(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ordem-1", res.ID)
	assert.Equal(t, 1, api.clientes)
	require.Contains(t, api.atualizadas, "ordem-1")
}

func TestResumoUsaRotulos(t *testing.T) {
	c, _, _ := novoWizard(true)
	preencher(t, c)

	r := c.Resumo()
	assert.Equal(t, "Rascunho", r.Status)
	assert.Empty(t, r.FormaPagamento)
	assert.Empty(t, r.Numero)
	assert.Equal(t, "200.00", r.Totais.TotalGeral.StringFixed(2))

	c.DefinirPagamento("cartao_credito", nil, nil)
	_, err := c.Finalizar(context.Background())
	require.NoError(t, err)

	r = c.Resumo()
	assert.Equal(t, "Aberta", r.Status)
	assert.Equal(t, "Cartão de Crédito", r.FormaPagamento)
	assert.Equal(t, "OS-202403-00001", r.Numero)

	c.Editar(ordemExistente(models.StatusEmAndamento))
	assert.Equal(t, "Em andamento", c.Resumo().Status)
}

func TestSalvarOffline(t *testing.T) {
	c, api, fila := novoWizard(false)
	preencher(t, c)
	ctx := context.Background()

	res, err := c.SalvarRascunho(ctx)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Equal(t, "local-1", res.ID)
	assert.Empty(t, api.criadas)
	assert.Equal(t, models.StatusRascunho, fila.rascunhos["local-1"].Status)

	// salvar de novo atualiza o mesmo rascunho local
	obs := "Aguardando peça"
	c.DefinirPagamento("", nil, &obs)
	res, err = c.SalvarRascunho(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local-1", res.ID)
	assert.Len(t, fila.rascunhos, 1)
	assert.Equal(t, "Aguardando peça", *fila.rascunhos["local-1"].Observacoes)
}

func TestSalvarCaiParaFilaEmErroDeRede(t *testing.T) {
	c, api, fila := novoWizard(true)
	api.errCriar = fmt.Errorf("%w: connection refused", osapi.ErrSemConexao)
	preencher(t, c)

	res, err := c.SalvarRascunho(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Len(t, fila.rascunhos, 1)
}

func TestSalvarRepassaErroDaAPI(t *testing.T) {
	c, api, fila := novoWizard(true)
	api.errCriar = models.NewDuplicateNumberError()
	preencher(t, c)

	_, err := c.SalvarRascunho(context.Background())

	require.Error(t, err)
	assert.Empty(t, fila.rascunhos)
	assert.Equal(t, "Número da OS já existe. Tente salvar novamente.", MensagemErro(err))
}

func ordemExistente(status models.StatusOrdem) *models.OrdemServico {
	garantia := "90 dias"
	return &models.OrdemServico{
		ID:             "ordem-9",
		OSNumeroHumano: "OS-202402-00009",
		ClienteID:      "cliente-9",
		Equipamento:    &models.EquipamentoOS{ID: "eq-9", OrdemServicoID: "ordem-9", TipoID: 1},
		Servicos: []models.ServicoOS{
			{ID: "s-9", OrdemServicoID: "ordem-9", NomeServico: "Reparo", Quantidade: 1, ValorUnitario: decimal.NewFromInt(300)},
		},
		FormaPagamento: "dinheiro",
		Garantia:       &garantia,
		Data:           time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:         status,
	}
}

func TestEditarPreservaStatusAvancado(t *testing.T) {
	c, api, _ := novoWizard(true)
	c.Editar(ordemExistente(models.StatusEmAndamento))

	assert.Equal(t, EtapaResumo, c.Etapa())
	assert.True(t, c.Editando())

	_, err := c.Finalizar(context.Background())
	require.NoError(t, err)

	req := api.atualizadas["ordem-9"]
	require.NotNil(t, req)
	assert.Equal(t, models.StatusEmAndamento, *req.Status)
	assert.Equal(t, "cliente-9", *req.ClienteID)
	assert.Empty(t, api.criadas)
}

func TestDuplicar(t *testing.T) {
	c, api, _ := novoWizard(true)
	agora := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	c.agora = func() time.Time { return agora }

	c.Duplicar(ordemExistente(models.StatusConcluida))

	assert.Equal(t, EtapaCliente, c.Etapa())
	assert.False(t, c.Editando())
	assert.Empty(t, c.NumeroAtual())

	r := c.Rascunho()
	assert.Empty(t, r.ID)
	assert.Empty(t, r.Status)
	assert.Equal(t, "cliente-9", r.ClienteID)
	assert.Equal(t, agora, *r.Data)
	assert.Empty(t, r.Equipamento.ID)
	assert.Empty(t, r.Servicos[0].ID)
	assert.Empty(t, r.Servicos[0].OrdemServicoID)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Avancar())
	}
	res, err := c.SalvarRascunho(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ordem-1", res.ID)
	require.Len(t, api.criadas, 1)
	assert.Equal(t, models.StatusRascunho, api.criadas[0].Status)
}

func TestMensagemErro(t *testing.T) {
	casos := []struct {
		err      error
		esperado string
	}{
		{models.NewValidationError("Dados inválidos", "Data é obrigatória", "Cliente é obrigatório"), "Dados inválidos: Data é obrigatória, Cliente é obrigatório"},
		{models.NewInternalError("boom"), "Erro interno do servidor. Tente novamente em alguns instantes."},
		{models.NewNotFoundError("OS não encontrada"), "OS não encontrada"},
		{osapi.ErrSemConexao, "Sem conexão com o servidor. Tente novamente."},
		{fmt.Errorf("outra coisa"), "Erro inesperado. Tente novamente."},
	}

	for _, tc := range casos {
		assert.Equal(t, tc.esperado, MensagemErro(tc.err))
	}
}
