package database

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"progestao-os/internal/models"
)

var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// padraoContem monta o padrão ILIKE '%termo%' com curingas escapados
func padraoContem(termo string) string {
	return "%" + escapeLike.Replace(termo) + "%"
}

// montarFiltroOrdens monta a cláusula WHERE da listagem e seus argumentos
func montarFiltroOrdens(consulta models.ConsultaOrdens) (string, []any) {
	condicoes := []string{"o.deleted_at IS NULL"}
	var args []any
	argIndex := 1

	if consulta.Status != "" {
		condicoes = append(condicoes, fmt.Sprintf("o.status = $%d", argIndex))
		args = append(args, string(consulta.Status))
		argIndex++
	}
	if consulta.DataDe != nil {
		condicoes = append(condicoes, fmt.Sprintf("o.data >= $%d", argIndex))
		args = append(args, *consulta.DataDe)
		argIndex++
	}
	if consulta.DataAte != nil {
		condicoes = append(condicoes, fmt.Sprintf("o.data <= $%d", argIndex))
		args = append(args, *consulta.DataAte)
		argIndex++
	}
	if consulta.IDs != nil {
		condicoes = append(condicoes, fmt.Sprintf("o.id = ANY($%d)", argIndex))
		args = append(args, pq.Array(consulta.IDs))
	}

	return "WHERE " + strings.Join(condicoes, " AND "), args
}

// montarAtualizacao monta o UPDATE parcial da ordem com os campos informados
func montarAtualizacao(id string, campos models.CamposOrdem) (string, []any) {
	var setParts []string
	var args []any
	argIndex := 1

	set := func(coluna string, valor any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", coluna, argIndex))
		args = append(args, valor)
		argIndex++
	}

	if campos.ClienteID != nil {
		set("cliente_id", *campos.ClienteID)
	}
	if campos.FormaPagamento != nil {
		set("forma_pagamento", nuloSeVazio(*campos.FormaPagamento))
	}
	if campos.Garantia != nil {
		set("garantia", nuloSeVazio(*campos.Garantia))
	}
	if campos.Observacoes != nil {
		set("observacoes", nuloSeVazio(*campos.Observacoes))
	}
	if campos.Data != nil {
		set("data", *campos.Data)
	}
	if campos.Status != nil {
		set("status", string(*campos.Status))
	}
	if campos.Totais != nil {
		set("total_servicos", campos.Totais.TotalServicos)
		set("total_produtos", campos.Totais.TotalProdutos)
		set("total_despesas", campos.Totais.TotalDespesas)
		set("total_geral", campos.Totais.TotalGeral)
	}
	set("sync_status", string(campos.SyncStatus))
	set("updated_at", campos.UpdatedAt)

	query := fmt.Sprintf("UPDATE ordens_servico SET %s WHERE id = $%d AND deleted_at IS NULL",
		strings.Join(setParts, ", "), argIndex)
	args = append(args, id)
	return query, args
}

func nuloSeVazio(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
