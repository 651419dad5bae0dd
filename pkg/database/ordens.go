package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
)

const constraintNumeroOS = "uq_ordens_servico_numero"

const colunasOrdem = `
	o.id, o.os_numero_humano, o.cliente_id, COALESCE(o.forma_pagamento, ''), o.garantia,
	o.observacoes, o.data, o.status, o.sync_status,
	o.total_servicos, o.total_produtos, o.total_despesas, o.total_geral,
	o.created_at, o.updated_at, o.deleted_at,
	c.id, c.nome, c.telefone, c.email, c.importado_da_agenda, c.created_at, c.updated_at`

type escaneavel interface {
	Scan(dest ...any) error
}

func escanearOrdem(row escaneavel) (*models.OrdemServico, error) {
	var o models.OrdemServico
	var c models.Cliente
	err := row.Scan(
		&o.ID, &o.OSNumeroHumano, &o.ClienteID, &o.FormaPagamento, &o.Garantia,
		&o.Observacoes, &o.Data, &o.Status, &o.SyncStatus,
		&o.TotalServicos, &o.TotalProdutos, &o.TotalDespesas, &o.TotalGeral,
		&o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
		&c.ID, &c.Nome, &c.Telefone, &c.Email, &c.ImportadoDaAgenda, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Cliente = &c
	return &o, nil
}

// CriarOrdem grava a ordem, o equipamento e os itens em uma única transação
func (c *Client) CriarOrdem(ctx context.Context, ordem *models.OrdemServico) error {
	err := c.transacao(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO ordens_servico (
				id, os_numero_humano, cliente_id, forma_pagamento, garantia, observacoes,
				data, status, sync_status, total_servicos, total_produtos, total_despesas,
				total_geral, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

		if _, err := tx.ExecContext(ctx, query, argumentosOrdem(ordem)...); err != nil {
			return erroInsercaoOrdem(err)
		}
		return inserirRelacionados(ctx, tx, ordem)
	})
	if err != nil && !errors.Is(err, models.ErrNumeroDuplicado) {
		c.logger.WithError(err).WithField("ordem_id", ordem.ID).Error("Erro ao criar OS")
	}
	return err
}

// UpsertOrdem sobrescreve a ordem pelo id preservando número, criação e remoção
func (c *Client) UpsertOrdem(ctx context.Context, ordem *models.OrdemServico) error {
	return c.transacao(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO ordens_servico (
				id, os_numero_humano, cliente_id, forma_pagamento, garantia, observacoes,
				data, status, sync_status, total_servicos, total_produtos, total_despesas,
				total_geral, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				cliente_id = EXCLUDED.cliente_id,
				forma_pagamento = EXCLUDED.forma_pagamento,
				garantia = EXCLUDED.garantia,
				observacoes = EXCLUDED.observacoes,
				data = EXCLUDED.data,
				status = EXCLUDED.status,
				sync_status = EXCLUDED.sync_status,
				total_servicos = EXCLUDED.total_servicos,
				total_produtos = EXCLUDED.total_produtos,
				total_despesas = EXCLUDED.total_despesas,
				total_geral = EXCLUDED.total_geral,
				updated_at = EXCLUDED.updated_at`

		if _, err := tx.ExecContext(ctx, query, argumentosOrdem(ordem)...); err != nil {
			return erroInsercaoOrdem(err)
		}

		for _, tabela := range []string{"equipamento_os", "servicos_os", "produtos_os", "despesas_os"} {
			if err := c.removerRelacionados(ctx, tx, tabela, ordem.ID); err != nil {
				return err
			}
		}
		return inserirRelacionados(ctx, tx, ordem)
	})
}

// BuscarOrdem retorna a ordem não removida com cliente, equipamento e itens
func (c *Client) BuscarOrdem(ctx context.Context, id string) (*models.OrdemServico, error) {
	query := `SELECT ` + colunasOrdem + `
		FROM ordens_servico o
		JOIN clientes c ON c.id = o.cliente_id
		WHERE o.id = $1 AND o.deleted_at IS NULL`

	ordem, err := escanearOrdem(c.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao buscar ordem: %w", err)
	}

	ordem.Equipamento, err = c.buscarEquipamento(ctx, id)
	if err != nil {
		return nil, err
	}

	ordens := []models.OrdemServico{*ordem}
	if err := c.carregarItens(ctx, ordens); err != nil {
		return nil, err
	}
	return &ordens[0], nil
}

// ListarOrdens retorna a página de ordens e o total exato de registros
func (c *Client) ListarOrdens(ctx context.Context, consulta models.ConsultaOrdens) ([]models.OrdemServico, int, error) {
	where, args := montarFiltroOrdens(consulta)

	var total int
	countQuery := "SELECT COUNT(*) FROM ordens_servico o " + where
	if err := c.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar ordens: %w", err)
	}
	if total == 0 {
		return []models.OrdemServico{}, 0, nil
	}

	query := fmt.Sprintf(`SELECT %s
		FROM ordens_servico o
		JOIN clientes c ON c.id = o.cliente_id
		%s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d`, colunasOrdem, where, len(args)+1, len(args)+2)

	rows, err := c.db.QueryContext(ctx, query, append(args, consulta.Limit, consulta.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar ordens: %w", err)
	}
	defer rows.Close()

	ordens := []models.OrdemServico{}
	for rows.Next() {
		o, err := escanearOrdem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("erro ao escanear ordem: %w", err)
		}
		ordens = append(ordens, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("erro ao percorrer ordens: %w", err)
	}

	if err := c.carregarItens(ctx, ordens); err != nil {
		return nil, 0, err
	}
	return ordens, total, nil
}

// AtualizarOrdem grava os campos informados e substitui as listas enviadas
func (c *Client) AtualizarOrdem(ctx context.Context, id string, campos models.CamposOrdem) error {
	return c.transacao(ctx, func(tx *sql.Tx) error {
		query, args := montarAtualizacao(id, campos)
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			c.logger.WithError(err).WithField("ordem_id", id).Error("Erro ao atualizar OS")
			return fmt.Errorf("erro ao atualizar ordem: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return models.ErrNaoEncontrado
		}

		if campos.Equipamento != nil {
			if err := c.removerRelacionados(ctx, tx, "equipamento_os", id); err != nil {
				return err
			}
			if err := inserirEquipamento(ctx, tx, campos.Equipamento); err != nil {
				return err
			}
		}
		if campos.Servicos != nil {
			if err := c.removerRelacionados(ctx, tx, "servicos_os", id); err != nil {
				return err
			}
			if err := inserirServicos(ctx, tx, *campos.Servicos); err != nil {
				return err
			}
		}
		if campos.Produtos != nil {
			if err := c.removerRelacionados(ctx, tx, "produtos_os", id); err != nil {
				return err
			}
			if err := inserirProdutos(ctx, tx, *campos.Produtos); err != nil {
				return err
			}
		}
		if campos.Despesas != nil {
			if err := c.removerRelacionados(ctx, tx, "despesas_os", id); err != nil {
				return err
			}
			if err := inserirDespesas(ctx, tx, *campos.Despesas); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoverOrdem marca deleted_at sem apagar a linha
func (c *Client) RemoverOrdem(ctx context.Context, id string, em time.Time) error {
	result, err := c.db.ExecContext(ctx,
		`UPDATE ordens_servico SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, em)
	if err != nil {
		c.logger.WithError(err).WithField("ordem_id", id).Error("Erro ao remover OS")
		return fmt.Errorf("erro ao remover ordem: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNaoEncontrado
	}
	return nil
}

// BuscarIDsPorFaceta executa uma das buscas independentes da pesquisa textual
func (c *Client) BuscarIDsPorFaceta(ctx context.Context, faceta models.Faceta, termo string) ([]string, error) {
	var query string
	switch faceta {
	case models.FacetaNomeCliente:
		query = `SELECT id FROM clientes WHERE nome ILIKE $1`
	case models.FacetaServico:
		query = `SELECT DISTINCT ordem_servico_id FROM servicos_os WHERE nome_servico ILIKE $1`
	case models.FacetaProduto:
		query = `SELECT DISTINCT ordem_servico_id FROM produtos_os WHERE nome_produto ILIKE $1`
	case models.FacetaNumero:
		query = `SELECT id FROM ordens_servico WHERE os_numero_humano ILIKE $1`
	default:
		return nil, fmt.Errorf("faceta desconhecida: %s", faceta)
	}
	return c.listarIDs(ctx, query, padraoContem(termo))
}

// BuscarIDsPorClientes retorna as ordens dos clientes informados
func (c *Client) BuscarIDsPorClientes(ctx context.Context, clienteIDs []string) ([]string, error) {
	return c.listarIDs(ctx, `SELECT id FROM ordens_servico WHERE cliente_id = ANY($1)`, pq.Array(clienteIDs))
}

func (c *Client) listarIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro na busca de ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (c *Client) buscarEquipamento(ctx context.Context, ordemID string) (*models.EquipamentoOS, error) {
	var e models.EquipamentoOS
	err := c.db.QueryRowContext(ctx, `
		SELECT id, ordem_servico_id, tipo_id, marca_id, modelo, numero_serie
		FROM equipamento_os WHERE ordem_servico_id = $1`, ordemID,
	).Scan(&e.ID, &e.OrdemServicoID, &e.TipoID, &e.MarcaID, &e.Modelo, &e.NumeroSerie)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar equipamento: %w", err)
	}
	return &e, nil
}

// carregarItens preenche serviços, produtos e despesas das ordens informadas
func (c *Client) carregarItens(ctx context.Context, ordens []models.OrdemServico) error {
	if len(ordens) == 0 {
		return nil
	}
	indice := make(map[string]int, len(ordens))
	ids := make([]string, len(ordens))
	for i, o := range ordens {
		indice[o.ID] = i
		ids[i] = o.ID
		ordens[i].Servicos = []models.ServicoOS{}
		ordens[i].Produtos = []models.ProdutoOS{}
		ordens[i].Despesas = []models.DespesaOS{}
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, ordem_servico_id, nome_servico, quantidade, valor_unitario, valor_total
		FROM servicos_os WHERE ordem_servico_id = ANY($1) ORDER BY nome_servico`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("erro ao buscar serviços: %w", err)
	}
	for rows.Next() {
		var s models.ServicoOS
		if err := rows.Scan(&s.ID, &s.OrdemServicoID, &s.NomeServico, &s.Quantidade, &s.ValorUnitario, &s.ValorTotal); err != nil {
			rows.Close()
			return fmt.Errorf("erro ao escanear serviço: %w", err)
		}
		i := indice[s.OrdemServicoID]
		ordens[i].Servicos = append(ordens[i].Servicos, s)
	}
	rows.Close()

	rows, err = c.db.QueryContext(ctx, `
		SELECT id, ordem_servico_id, nome_produto, quantidade, valor_unitario, valor_total
		FROM produtos_os WHERE ordem_servico_id = ANY($1) ORDER BY nome_produto`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("erro ao buscar produtos: %w", err)
	}
	for rows.Next() {
		var p models.ProdutoOS
		if err := rows.Scan(&p.ID, &p.OrdemServicoID, &p.NomeProduto, &p.Quantidade, &p.ValorUnitario, &p.ValorTotal); err != nil {
			rows.Close()
			return fmt.Errorf("erro ao escanear produto: %w", err)
		}
		i := indice[p.OrdemServicoID]
		ordens[i].Produtos = append(ordens[i].Produtos, p)
	}
	rows.Close()

	rows, err = c.db.QueryContext(ctx, `
		SELECT id, ordem_servico_id, descricao, valor
		FROM despesas_os WHERE ordem_servico_id = ANY($1) ORDER BY descricao`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("erro ao buscar despesas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d models.DespesaOS
		if err := rows.Scan(&d.ID, &d.OrdemServicoID, &d.Descricao, &d.Valor); err != nil {
			return fmt.Errorf("erro ao escanear despesa: %w", err)
		}
		i := indice[d.OrdemServicoID]
		ordens[i].Despesas = append(ordens[i].Despesas, d)
	}
	return rows.Err()
}

func argumentosOrdem(o *models.OrdemServico) []any {
	return []any{
		o.ID, o.OSNumeroHumano, o.ClienteID, nuloSeVazio(o.FormaPagamento), o.Garantia, o.Observacoes,
		o.Data, string(o.Status), string(o.SyncStatus), o.TotalServicos, o.TotalProdutos, o.TotalDespesas,
		o.TotalGeral, o.CreatedAt, o.UpdatedAt,
	}
}

func erroInsercaoOrdem(err error) error {
	if constraint, ok := violacaoUnica(err); ok && constraint == constraintNumeroOS {
		return models.ErrNumeroDuplicado
	}
	return fmt.Errorf("erro ao inserir ordem: %w", err)
}

func inserirRelacionados(ctx context.Context, tx consultor, o *models.OrdemServico) error {
	if o.Equipamento != nil {
		if err := inserirEquipamento(ctx, tx, o.Equipamento); err != nil {
			return err
		}
	}
	if err := inserirServicos(ctx, tx, o.Servicos); err != nil {
		return err
	}
	if err := inserirProdutos(ctx, tx, o.Produtos); err != nil {
		return err
	}
	return inserirDespesas(ctx, tx, o.Despesas)
}

func inserirEquipamento(ctx context.Context, tx consultor, e *models.EquipamentoOS) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO equipamento_os (id, ordem_servico_id, tipo_id, marca_id, modelo, numero_serie)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.OrdemServicoID, e.TipoID, e.MarcaID, e.Modelo, e.NumeroSerie)
	if err != nil {
		return fmt.Errorf("erro ao inserir equipamento: %w", err)
	}
	return nil
}

func inserirServicos(ctx context.Context, tx consultor, servicos []models.ServicoOS) error {
	for _, s := range servicos {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO servicos_os (id, ordem_servico_id, nome_servico, quantidade, valor_unitario, valor_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.OrdemServicoID, s.NomeServico, s.Quantidade, s.ValorUnitario, s.ValorTotal)
		if err != nil {
			return fmt.Errorf("erro ao inserir serviço: %w", err)
		}
	}
	return nil
}

func inserirProdutos(ctx context.Context, tx consultor, produtos []models.ProdutoOS) error {
	for _, p := range produtos {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO produtos_os (id, ordem_servico_id, nome_produto, quantidade, valor_unitario, valor_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.OrdemServicoID, p.NomeProduto, p.Quantidade, p.ValorUnitario, p.ValorTotal)
		if err != nil {
			return fmt.Errorf("erro ao inserir produto: %w", err)
		}
	}
	return nil
}

func inserirDespesas(ctx context.Context, tx consultor, despesas []models.DespesaOS) error {
	for _, d := range despesas {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO despesas_os (id, ordem_servico_id, descricao, valor)
			VALUES ($1, $2, $3, $4)`,
			d.ID, d.OrdemServicoID, d.Descricao, d.Valor)
		if err != nil {
			return fmt.Errorf("erro ao inserir despesa: %w", err)
		}
	}
	return nil
}

// removerRelacionados apaga as linhas dependentes de uma ordem; tabela é sempre constante interna
func (c *Client) removerRelacionados(ctx context.Context, tx consultor, tabela, ordemID string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+tabela+" WHERE ordem_servico_id = $1", ordemID); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{"tabela": tabela, "ordem_id": ordemID}).Error("Erro ao remover itens da OS")
		return fmt.Errorf("erro ao remover %s: %w", tabela, err)
	}
	return nil
}
