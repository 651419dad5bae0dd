package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progestao-os/internal/models"
	"progestao-os/pkg/memoria"
)

func novoLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type ambiente struct {
	store    *memoria.Store
	clientes *ClienteService
	ordens   *OrdemService
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	store := memoria.New()
	logger := novoLogger()
	ctx := context.Background()
	// tipos 1 e 2, marca 1
	for _, nome := range []string{"Celular", "Notebook"} {
		_, err := store.CriarItemCatalogo(ctx, models.CatalogoTiposEquipamentos, nome)
		require.NoError(t, err)
	}
	_, err := store.CriarItemCatalogo(ctx, models.CatalogoMarcas, "Samsung")
	require.NoError(t, err)

	clientes := NewClienteService(store, logger)
	ordens := NewOrdemService(store, clientes, NewCatalogoService(store, logger), logger)

	inicio := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	passos := 0
	ordens.agora = func() time.Time {
		passos++
		return inicio.Add(time.Duration(passos) * time.Second)
	}
	seq := 0
	ordens.gerarNumero = func(time.Time) string {
		seq++
		return fmt.Sprintf("OS-202403-%05d", seq)
	}
	return &ambiente{store: store, clientes: clientes, ordens: ordens}
}

func dataEm(dia int, hora int) *time.Time {
	d := time.Date(2024, 3, dia, hora, 0, 0, 0, time.UTC)
	return &d
}

func requisicaoValida() *models.OrdemRequest {
	return &models.OrdemRequest{
		Cliente: &models.ClienteRequest{Nome: "Maria Souza", Telefone: "(11) 98765-4321"},
		Servicos: []models.ServicoOS{
			{NomeServico: "Troca de tela", Quantidade: 1, ValorUnitario: decimal.RequireFromString("150")},
		},
		Data: dataEm(10, 9),
	}
}

func criar(t *testing.T, a *ambiente, req *models.OrdemRequest) *models.OrdemServico {
	t.Helper()
	ordem, err := a.ordens.Criar(context.Background(), req)
	require.NoError(t, err)
	return ordem
}

func TestCriarOrdem(t *testing.T) {
	a := novoAmbiente(t)
	req := requisicaoValida()
	req.Produtos = []models.ProdutoOS{
		{NomeProduto: "Película", Quantidade: 2, ValorUnitario: decimal.RequireFromString("15.50")},
		{NomeProduto: "Inválido", Quantidade: 0, ValorUnitario: decimal.RequireFromString("10")},
	}
	req.Despesas = []models.DespesaOS{{Descricao: "Frete", Valor: decimal.RequireFromString("10")}}
	req.Equipamento = &models.EquipamentoOS{TipoID: 1}

	ordem := criar(t, a, req)

	assert.Equal(t, "OS-202403-00001", ordem.OSNumeroHumano)
	assert.Equal(t, models.StatusRascunho, ordem.Status)
	assert.Equal(t, models.SyncSynced, ordem.SyncStatus)
	assert.Len(t, ordem.Produtos, 1)
	assert.Equal(t, "31.00", ordem.TotalProdutos.StringFixed(2))
	assert.Equal(t, "191.00", ordem.TotalGeral.StringFixed(2))
	require.NotNil(t, ordem.Equipamento)
	assert.Equal(t, ordem.ID, ordem.Equipamento.OrdemServicoID)

	cliente, err := a.clientes.Buscar(context.Background(), ordem.ClienteID)
	require.NoError(t, err)
	assert.Equal(t, "+5511987654321", cliente.Telefone)

	salva, err := a.ordens.Buscar(context.Background(), ordem.ID)
	require.NoError(t, err)
	require.NotNil(t, salva.Cliente)
	assert.Equal(t, "Maria Souza", salva.Cliente.Nome)
}

func TestCriarOrdemRejeitaStatusAvancado(t *testing.T) {
	a := novoAmbiente(t)
	req := requisicaoValida()
	req.Status = models.StatusConcluida
	req.FormaPagamento = "pix"

	_, err := a.ordens.Criar(context.Background(), req)

	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.ErrorCodeValidation))
	assert.Contains(t, err.(*models.APIError).Details, MsgStatusCriacaoInvalido)
}

func TestCriarOrdemClienteInexistente(t *testing.T) {
	a := novoAmbiente(t)
	req := requisicaoValida()
	req.Cliente = nil
	req.ClienteID = "6f1c1d3e-0000-4000-8000-000000000001"

	_, err := a.ordens.Criar(context.Background(), req)

	require.Error(t, err)
	assert.Contains(t, err.(*models.APIError).Details, MsgClienteNaoEncontrado)
}

func TestCriarOrdemRepeteNumeroDuplicado(t *testing.T) {
	a := novoAmbiente(t)
	criar(t, a, requisicaoValida())

	numeros := []string{"OS-202403-00001", "OS-202403-00002"}
	a.ordens.gerarNumero = func(time.Time) string {
		n := numeros[0]
		numeros = numeros[1:]
		return n
	}

	ordem := criar(t, a, requisicaoValida())
	assert.Equal(t, "OS-202403-00002", ordem.OSNumeroHumano)
}

func TestCriarOrdemNumeroDuplicadoDuasVezes(t *testing.T) {
	a := novoAmbiente(t)
	criar(t, a, requisicaoValida())
	a.ordens.gerarNumero = func(time.Time) string { return "OS-202403-00001" }

	_, err := a.ordens.Criar(context.Background(), requisicaoValida())

	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.ErrorCodeDuplicateNumber))
	assert.Equal(t, 409, err.(*models.APIError).StatusCode)
}

func TestBuscarIDInvalido(t *testing.T) {
	a := novoAmbiente(t)

	_, err := a.ordens.Buscar(context.Background(), "nao-e-uuid")

	assert.True(t, models.IsCode(err, models.ErrorCodeNotFound))
}

func TestAtualizarParcial(t *testing.T) {
	a := novoAmbiente(t)
	ordem := criar(t, a, requisicaoValida())
	ctx := context.Background()

	obs := "  Cliente pediu urgência "
	atualizada, err := a.ordens.Atualizar(ctx, ordem.ID, &models.AtualizarOrdemRequest{Observacoes: &obs})
	require.NoError(t, err)

	require.NotNil(t, atualizada.Observacoes)
	assert.Equal(t, "Cliente pediu urgência", *atualizada.Observacoes)
	assert.Equal(t, ordem.OSNumeroHumano, atualizada.OSNumeroHumano)
	assert.Equal(t, ordem.ClienteID, atualizada.ClienteID)
	assert.Len(t, atualizada.Servicos, 1)
	assert.Equal(t, "150.00", atualizada.TotalGeral.StringFixed(2))

	servicos := []models.ServicoOS{
		{NomeServico: "Limpeza", ValorUnitario: decimal.RequireFromString("40")},
		{NomeServico: "Solda", ValorUnitario: decimal.RequireFromString("60")},
	}
	atualizada, err = a.ordens.Atualizar(ctx, ordem.ID, &models.AtualizarOrdemRequest{Servicos: &servicos})
	require.NoError(t, err)

	assert.Len(t, atualizada.Servicos, 2)
	assert.Equal(t, "100.00", atualizada.TotalServicos.StringFixed(2))
	assert.Equal(t, "100.00", atualizada.TotalGeral.StringFixed(2))
	require.NotNil(t, atualizada.Observacoes)
}

func TestAtualizarParaAbertaExigePagamento(t *testing.T) {
	a := novoAmbiente(t)
	ordem := criar(t, a, requisicaoValida())

	status := models.StatusAberta
	_, err := a.ordens.Atualizar(context.Background(), ordem.ID, &models.AtualizarOrdemRequest{Status: &status})

	require.Error(t, err)
	assert.Contains(t, err.(*models.APIError).Details, MsgFormaPagamento)

	forma := "pix"
	atualizada, err := a.ordens.Atualizar(context.Background(), ordem.ID, &models.AtualizarOrdemRequest{Status: &status, FormaPagamento: &forma})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAberta, atualizada.Status)
}

func TestAtualizarClienteInexistente(t *testing.T) {
	a := novoAmbiente(t)
	ordem := criar(t, a, requisicaoValida())
	ctx := context.Background()

	outro := "11111111-1111-4111-8111-111111111111"
	_, err := a.ordens.Atualizar(ctx, ordem.ID, &models.AtualizarOrdemRequest{ClienteID: &outro})

	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, models.ErrorCodeValidation, apiErr.Code)
	assert.Equal(t, []string{MsgClienteNaoEncontrado}, apiErr.Details)

	salva, err := a.ordens.Buscar(ctx, ordem.ID)
	require.NoError(t, err)
	assert.Equal(t, ordem.ClienteID, salva.ClienteID)
	require.NotNil(t, salva.Cliente)
}

func TestCatalogoDoEquipamentoPrecisaExistir(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	marcaInexistente := int64(99)
	req := requisicaoValida()
	req.Equipamento = &models.EquipamentoOS{TipoID: 424242, MarcaID: &marcaInexistente}

	_, err := a.ordens.Criar(ctx, req)
	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{MsgTipoNaoEncontrado, MsgMarcaNaoEncontrada}, apiErr.Details)

	marca := int64(1)
	req.Equipamento = &models.EquipamentoOS{TipoID: 2, MarcaID: &marca}
	ordem := criar(t, a, req)

	_, err = a.ordens.Atualizar(ctx, ordem.ID, &models.AtualizarOrdemRequest{Equipamento: &models.EquipamentoOS{TipoID: 3}})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{MsgTipoNaoEncontrado}, apiErr.Details)
}

func TestRemoverLogicamente(t *testing.T) {
	a := novoAmbiente(t)
	ordem := criar(t, a, requisicaoValida())
	ctx := context.Background()

	require.NoError(t, a.ordens.RemoverLogicamente(ctx, ordem.ID))

	assert.True(t, a.store.Removida(ordem.ID))

	_, err := a.ordens.Buscar(ctx, ordem.ID)
	assert.True(t, models.IsCode(err, models.ErrorCodeNotFound))

	pagina, err := a.ordens.Listar(ctx, models.FiltroOrdens{})
	require.NoError(t, err)
	assert.Empty(t, pagina.Items)

	err = a.ordens.RemoverLogicamente(ctx, ordem.ID)
	assert.True(t, models.IsCode(err, models.ErrorCodeNotFound))
}

func TestListarPaginacao(t *testing.T) {
	a := novoAmbiente(t)
	for i := 0; i < 25; i++ {
		criar(t, a, requisicaoValida())
	}
	ctx := context.Background()

	pagina, err := a.ordens.Listar(ctx, models.FiltroOrdens{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, pagina.Items, 10)
	assert.Equal(t, models.Paginacao{Page: 2, Size: 10, Total: 25, Pages: 3}, pagina.Pagination)
	// mais recentes primeiro
	assert.Equal(t, "OS-202403-00015", pagina.Items[0].OSNumeroHumano)

	pagina, err = a.ordens.Listar(ctx, models.FiltroOrdens{Page: 3, Size: 10})
	require.NoError(t, err)
	assert.Len(t, pagina.Items, 5)

	pagina, err = a.ordens.Listar(ctx, models.FiltroOrdens{})
	require.NoError(t, err)
	assert.Equal(t, 20, pagina.Pagination.Size)
	assert.Equal(t, 1, pagina.Pagination.Page)
}

func TestListarPaginaMuitoGrande(t *testing.T) {
	a := novoAmbiente(t)
	criar(t, a, requisicaoValida())

	pagina, err := a.ordens.Listar(context.Background(), models.FiltroOrdens{Page: math.MaxInt, Size: 20})

	require.NoError(t, err)
	assert.Empty(t, pagina.Items)
	assert.Equal(t, 1, pagina.Pagination.Total)
	assert.Positive(t, pagina.Pagination.Page)
}

func TestListarBuscaTextual(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	maria := criar(t, a, requisicaoValida())

	joao := requisicaoValida()
	joao.Cliente = &models.ClienteRequest{Nome: "João Lima", Telefone: "21987654321"}
	joao.Servicos = []models.ServicoOS{{NomeServico: "Formatação", ValorUnitario: decimal.RequireFromString("80")}}
	joao.Produtos = []models.ProdutoOS{{NomeProduto: "Cabo USB", Quantidade: 1, ValorUnitario: decimal.RequireFromString("25")}}
	ordemJoao := criar(t, a, joao)

	casos := []struct {
		nome     string
		query    string
		esperado []string
	}{
		{"nome do cliente", "maria", []string{maria.ID}},
		{"serviço", "TELA", []string{maria.ID}},
		{"produto", "usb", []string{ordemJoao.ID}},
		{"número", "00002", []string{ordemJoao.ID}},
		{"união de facetas", "o", []string{ordemJoao.ID, maria.ID}},
		{"sem resultado", "geladeira", nil},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			pagina, err := a.ordens.Listar(ctx, models.FiltroOrdens{Query: tc.query})
			require.NoError(t, err)

			var ids []string
			for _, o := range pagina.Items {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tc.esperado, ids)
			assert.Equal(t, len(tc.esperado), pagina.Pagination.Total)
			assert.NotNil(t, pagina.Items)
		})
	}
}

func TestListarFiltros(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	r1 := requisicaoValida()
	r1.Data = dataEm(5, 10)
	criar(t, a, r1)

	r2 := requisicaoValida()
	r2.Data = dataEm(10, 18)
	r2.Status = models.StatusAberta
	r2.FormaPagamento = "pix"
	aberta := criar(t, a, r2)

	pagina, err := a.ordens.Listar(ctx, models.FiltroOrdens{Status: "aberta"})
	require.NoError(t, err)
	require.Len(t, pagina.Items, 1)
	assert.Equal(t, aberta.ID, pagina.Items[0].ID)

	// date_to só com data inclui o dia inteiro
	pagina, err = a.ordens.Listar(ctx, models.FiltroOrdens{DateFrom: "2024-03-06", DateTo: "2024-03-10"})
	require.NoError(t, err)
	require.Len(t, pagina.Items, 1)
	assert.Equal(t, aberta.ID, pagina.Items[0].ID)

	pagina, err = a.ordens.Listar(ctx, models.FiltroOrdens{DateTo: "2024-03-10T12:00:00Z"})
	require.NoError(t, err)
	assert.Len(t, pagina.Items, 1)
}

func TestListarParametrosInvalidos(t *testing.T) {
	a := novoAmbiente(t)
	longa := make([]byte, TamanhoMaximoBusca+1)
	for i := range longa {
		longa[i] = 'a'
	}

	casos := []models.FiltroOrdens{
		{Query: string(longa)},
		{Status: "arquivada"},
		{DateFrom: "10/03/2024"},
	}
	for _, filtro := range casos {
		_, err := a.ordens.Listar(context.Background(), filtro)
		assert.True(t, models.IsCode(err, models.ErrorCodeValidation), "filtro %+v", filtro)
	}
}

type metricasFake struct {
	aplicados, conflitos int
}

func (m *metricasFake) RegistrarSync(aplicados, conflitos int) {
	m.aplicados += aplicados
	m.conflitos += conflitos
}

func TestSincronizar(t *testing.T) {
	a := novoAmbiente(t)
	metricas := &metricasFake{}
	a.ordens.SetMetricas(metricas)
	ctx := context.Background()

	valida := *requisicaoValida()
	valida.ID = "0b9f4c5e-8f3a-4c3e-9d59-5b2f7f0a1c01"

	semItens := *requisicaoValida()
	semItens.ID = "0b9f4c5e-8f3a-4c3e-9d59-5b2f7f0a1c02"
	semItens.Servicos = nil

	semID := *requisicaoValida()
	semID.ID = "x"

	resultado := a.ordens.Sincronizar(ctx, []models.OrdemRequest{valida, semItens, semID})

	assert.Equal(t, []string{valida.ID}, resultado.Applied)
	require.Len(t, resultado.Conflicts, 2)
	assert.Equal(t, semItens.ID, resultado.Conflicts[0].ID)
	assert.Contains(t, resultado.Conflicts[0].Error, MsgItemObrigatorio)
	assert.Equal(t, "x", resultado.Conflicts[1].ID)
	assert.Equal(t, 1, metricas.aplicados)
	assert.Equal(t, 2, metricas.conflitos)

	original, err := a.ordens.Buscar(ctx, valida.ID)
	require.NoError(t, err)

	// a última escrita vence, mas o número é preservado
	obs := "Reenviado"
	valida.Observacoes = &obs
	resultado = a.ordens.Sincronizar(ctx, []models.OrdemRequest{valida})
	require.Equal(t, []string{valida.ID}, resultado.Applied)

	atualizada, err := a.ordens.Buscar(ctx, valida.ID)
	require.NoError(t, err)
	assert.Equal(t, original.OSNumeroHumano, atualizada.OSNumeroHumano)
	require.NotNil(t, atualizada.Observacoes)
	assert.Equal(t, "Reenviado", *atualizada.Observacoes)
}

// storeFalho falha a gravação de um id específico
type storeFalho struct {
	*memoria.Store
	falharID string
}

func (s *storeFalho) UpsertOrdem(ctx context.Context, ordem *models.OrdemServico) error {
	if ordem.ID == s.falharID {
		return errors.New("pq: connection reset by peer")
	}
	return s.Store.UpsertOrdem(ctx, ordem)
}

func TestSincronizarFalhaNoMeioNaoInterrompeLote(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	ids := []string{
		"5d0c1e2a-3b4c-4d5e-8f60-7a8b9c0d1e01",
		"5d0c1e2a-3b4c-4d5e-8f60-7a8b9c0d1e02",
		"5d0c1e2a-3b4c-4d5e-8f60-7a8b9c0d1e03",
	}
	a.ordens.store = &storeFalho{Store: a.store, falharID: ids[1]}

	lote := make([]models.OrdemRequest, len(ids))
	for i, id := range ids {
		lote[i] = *requisicaoValida()
		lote[i].ID = id
	}

	resultado := a.ordens.Sincronizar(ctx, lote)

	assert.Equal(t, []string{ids[0], ids[2]}, resultado.Applied)
	require.Len(t, resultado.Conflicts, 1)
	assert.Equal(t, ids[1], resultado.Conflicts[0].ID)
	assert.Equal(t, MsgErroInterno, resultado.Conflicts[0].Error)

	primeira, err := a.ordens.Buscar(ctx, ids[0])
	require.NoError(t, err)

	// reenvio do mesmo id atualiza a OS existente e mantém o número
	lote[0].FormaPagamento = "dinheiro"
	resultado = a.ordens.Sincronizar(ctx, lote[:1])
	require.Equal(t, []string{ids[0]}, resultado.Applied)

	reenviada, err := a.ordens.Buscar(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, primeira.OSNumeroHumano, reenviada.OSNumeroHumano)
	assert.Equal(t, "dinheiro", reenviada.FormaPagamento)

	pagina, err := a.ordens.Listar(ctx, models.FiltroOrdens{})
	require.NoError(t, err)
	assert.Equal(t, 2, pagina.Pagination.Total)
}
