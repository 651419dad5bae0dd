package database

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"progestao-os/internal/models"
)

func TestPadraoContem(t *testing.T) {
	assert.Equal(t, "%tela%", padraoContem("tela"))
	assert.Equal(t, `%50\%\_off%`, padraoContem("50%_off"))
	assert.Equal(t, `%a\\b%`, padraoContem(`a\b`))
}

func TestMontarFiltroOrdens(t *testing.T) {
	t.Run("apenas não removidas", func(t *testing.T) {
		where, args := montarFiltroOrdens(models.ConsultaOrdens{})
		assert.Equal(t, "WHERE o.deleted_at IS NULL", where)
		assert.Empty(t, args)
	})

	t.Run("todos os filtros", func(t *testing.T) {
		de := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		ate := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
		where, args := montarFiltroOrdens(models.ConsultaOrdens{
			Status:  models.StatusConcluida,
			DataDe:  &de,
			DataAte: &ate,
			IDs:     []string{"a", "b"},
		})

		assert.Equal(t, "WHERE o.deleted_at IS NULL AND o.status = $1 AND o.data >= $2 AND o.data <= $3 AND o.id = ANY($4)", where)
		assert.Len(t, args, 4)
		assert.Equal(t, "concluida", args[0])
		assert.Equal(t, de, args[1])
		assert.Equal(t, ate, args[2])
		assert.Equal(t, pq.Array([]string{"a", "b"}), args[3])
	})

	t.Run("numeração acompanha filtros ausentes", func(t *testing.T) {
		ate := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		where, args := montarFiltroOrdens(models.ConsultaOrdens{DataAte: &ate})
		assert.Equal(t, "WHERE o.deleted_at IS NULL AND o.data <= $1", where)
		assert.Equal(t, []any{ate}, args)
	})
}

func TestMontarAtualizacao(t *testing.T) {
	agora := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	status := models.StatusAberta
	vazio := ""

	query, args := montarAtualizacao("os-1", models.CamposOrdem{
		Status:      &status,
		Observacoes: &vazio,
		Totais: &models.Totais{
			TotalServicos: decimal.NewFromInt(100),
			TotalProdutos: decimal.Zero,
			TotalDespesas: decimal.Zero,
			TotalGeral:    decimal.NewFromInt(100),
		},
		SyncStatus: models.SyncSynced,
		UpdatedAt:  agora,
	})

	assert.Equal(t, "UPDATE ordens_servico SET observacoes = $1, status = $2, total_servicos = $3, total_produtos = $4, "+
		"total_despesas = $5, total_geral = $6, sync_status = $7, updated_at = $8 WHERE id = $9 AND deleted_at IS NULL", query)
	assert.Len(t, args, 9)
	assert.Nil(t, args[0].(*string))
	assert.Equal(t, "aberta", args[1])
	assert.Equal(t, "synced", args[6])
	assert.Equal(t, agora, args[7])
	assert.Equal(t, "os-1", args[8])
}
