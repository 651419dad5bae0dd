package offline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progestao-os/internal/models"
)

func novaFilaTeste(t *testing.T) (*Fila, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := NovaFila(rdb, "", logger)
	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	n := 0
	f.agora = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return f, mr
}

type sincronizadorFake struct {
	recebido  []models.OrdemRequest
	resultado models.ResultadoSync
	err       error
}

func (s *sincronizadorFake) Sincronizar(_ context.Context, alteracoes []models.OrdemRequest) (models.ResultadoSync, error) {
	s.recebido = alteracoes
	return s.resultado, s.err
}

// sincronizadorQueEdita simula o usuário salvando rascunhos enquanto o lote está em trânsito
type sincronizadorQueEdita struct {
	fila      *Fila
	editar    []models.OrdemRequest
	resultado models.ResultadoSync
}

func (s *sincronizadorQueEdita) Sincronizar(ctx context.Context, _ []models.OrdemRequest) (models.ResultadoSync, error) {
	for _, o := range s.editar {
		if _, err := s.fila.Enfileirar(ctx, o); err != nil {
			return models.ResultadoSync{}, err
		}
	}
	return s.resultado, nil
}

func TestEnfileirarGeraIDEPreservaOrdem(t *testing.T) {
	f, mr := novaFilaTeste(t)
	ctx := context.Background()

	id1, err := f.Enfileirar(ctx, models.OrdemRequest{ClienteID: "c1"})
	require.NoError(t, err)
	assert.Len(t, id1, 36)

	id2, err := f.Enfileirar(ctx, models.OrdemRequest{ID: "fixo", ClienteID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "fixo", id2)

	assert.True(t, mr.Exists(ChavePadrao))

	pendentes, err := f.Pendentes(ctx)
	require.NoError(t, err)
	require.Len(t, pendentes, 2)
	assert.Equal(t, id1, pendentes[0].Ordem.ID)
	assert.Equal(t, "fixo", pendentes[1].Ordem.ID)
	assert.Equal(t, models.SyncPending, pendentes[0].SyncStatus)
}

func TestEnfileirarMesmoIDSobrescreve(t *testing.T) {
	f, _ := novaFilaTeste(t)
	ctx := context.Background()

	_, err := f.Enfileirar(ctx, models.OrdemRequest{ID: "r1", FormaPagamento: "pix"})
	require.NoError(t, err)
	_, err = f.Enfileirar(ctx, models.OrdemRequest{ID: "r1", FormaPagamento: "dinheiro"})
	require.NoError(t, err)

	pendentes, err := f.Pendentes(ctx)
	require.NoError(t, err)
	require.Len(t, pendentes, 1)
	assert.Equal(t, "dinheiro", pendentes[0].Ordem.FormaPagamento)
}

func TestPendentesIgnoraEntradaIlegivel(t *testing.T) {
	f, mr := novaFilaTeste(t)
	ctx := context.Background()

	_, err := f.Enfileirar(ctx, models.OrdemRequest{ID: "ok"})
	require.NoError(t, err)
	mr.HSet(ChavePadrao, "quebrado", "{nao-json")

	pendentes, err := f.Pendentes(ctx)
	require.NoError(t, err)
	require.Len(t, pendentes, 1)
	assert.Equal(t, "ok", pendentes[0].Ordem.ID)
}

func TestEnviarRemoveAplicadosEMarcaConflitos(t *testing.T) {
	f, mr := novaFilaTeste(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := f.Enfileirar(ctx, models.OrdemRequest{ID: id})
		require.NoError(t, err)
	}

	s := &sincronizadorFake{resultado: models.ResultadoSync{
		Applied:   []string{"a", "c"},
		Conflicts: []models.ConflitoSync{{ID: "b", Error: "Dados inválidos: Data é obrigatória"}},
	}}

	resultado, err := f.Enviar(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, s.resultado, resultado)
	require.Len(t, s.recebido, 3)
	assert.Equal(t, "a", s.recebido[0].ID)

	chaves, err := mr.HKeys(ChavePadrao)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, chaves)

	pendentes, err := f.Pendentes(ctx)
	require.NoError(t, err)
	require.Len(t, pendentes, 1)
	assert.Equal(t, models.SyncConflict, pendentes[0].SyncStatus)
	assert.Equal(t, "Dados inválidos: Data é obrigatória", pendentes[0].Erro)
}

func TestEnviarFalhaMantemFila(t *testing.T) {
	f, _ := novaFilaTeste(t)
	ctx := context.Background()
	_, err := f.Enfileirar(ctx, models.OrdemRequest{ID: "a"})
	require.NoError(t, err)

	_, err = f.Enviar(ctx, &sincronizadorFake{err: errors.New("sem conexão")})
	require.Error(t, err)

	pendentes, err := f.Pendentes(ctx)
	require.NoError(t, err)
	require.Len(t, pendentes, 1)
	assert.Equal(t, models.SyncPending, pendentes[0].SyncStatus)
}

func TestEnviarFilaVaziaNaoChamaAPI(t *testing.T) {
	f, _ := novaFilaTeste(t)
	s := &sincronizadorFake{err: errors.New("não deveria ser chamado")}

	resultado, err := f.Enviar(context.Background(), s)

	require.NoError(t, err)
	assert.Nil(t, s.recebido)
	assert.Empty(t, resultado.Applied)
	assert.NotNil(t, resultado.Conflicts)
}

func TestRemover(t *testing.T) {
	f, mr := novaFilaTeste(t)
	ctx := context.Background()
	_, err := f.Enfileirar(ctx, models.OrdemRequest{ID: "a"})
	require.NoError(t, err)

	require.NoError(t, f.Remover(ctx, "a"))

	assert.False(t, mr.Exists(ChavePadrao))
}

func TestEnviarPreservaRascunhoSalvoDuranteEnvio(t *testing.T) {
	f, mr := novaFilaTeste(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := f.Enfileirar(ctx, models.OrdemRequest{ID: id, FormaPagamento: "pix"})
		require.NoError(t, err)
	}

	s := &sincronizadorQueEdita{
		fila: f,
		editar: []models.OrdemRequest{
			{ID: "a", FormaPagamento: "dinheiro"},
			{ID: "b", FormaPagamento: "cartao_credito"},
		},
		resultado: models.ResultadoSync{
			Applied:   []string{"a", "c"},
			Conflicts: []models.ConflitoSync{{ID: "b", Error: "Dados inválidos: Data é obrigatória"}},
		},
	}

	resultado, err := f.Enviar(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, s.resultado, resultado)

	chaves, err := mr.HKeys(ChavePadrao)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, chaves)

	pendentes, err := f.Pendentes(ctx)
	require.NoError(t, err)
	require.Len(t, pendentes, 2)
	for _, p := range pendentes {
		assert.Equal(t, models.SyncPending, p.SyncStatus, p.Ordem.ID)
		assert.Empty(t, p.Erro)
	}
	assert.Equal(t, "dinheiro", pendentes[0].Ordem.FormaPagamento)
	assert.Equal(t, "cartao_credito", pendentes[1].Ordem.FormaPagamento)
}
