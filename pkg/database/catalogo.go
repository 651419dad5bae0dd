package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"progestao-os/internal/models"
)

func tabelaCatalogo(catalogo models.Catalogo) (string, error) {
	if !catalogo.Valido() {
		return "", fmt.Errorf("catálogo desconhecido: %s", catalogo)
	}
	return string(catalogo), nil
}

// ListarCatalogo lista os itens do catálogo em ordem alfabética
func (c *Client) ListarCatalogo(ctx context.Context, catalogo models.Catalogo, termo string, offset, limit int) ([]models.ItemCatalogo, int, error) {
	tabela, err := tabelaCatalogo(catalogo)
	if err != nil {
		return nil, 0, err
	}

	where := ""
	var args []any
	if termo != "" {
		where = "WHERE nome ILIKE $1"
		args = append(args, padraoContem(termo))
	}

	var total int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+tabela+" "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar %s: %w", tabela, err)
	}

	query := fmt.Sprintf("SELECT id, nome, created_at FROM %s %s ORDER BY nome ASC LIMIT $%d OFFSET $%d",
		tabela, where, len(args)+1, len(args)+2)
	rows, err := c.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar %s: %w", tabela, err)
	}
	defer rows.Close()

	itens := []models.ItemCatalogo{}
	for rows.Next() {
		var item models.ItemCatalogo
		if err := rows.Scan(&item.ID, &item.Nome, &item.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("erro ao escanear %s: %w", tabela, err)
		}
		itens = append(itens, item)
	}
	return itens, total, rows.Err()
}

// BuscarCatalogoPorNome busca um item pelo nome sem diferenciar maiúsculas
func (c *Client) BuscarCatalogoPorNome(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error) {
	tabela, err := tabelaCatalogo(catalogo)
	if err != nil {
		return nil, err
	}

	var item models.ItemCatalogo
	err = c.db.QueryRowContext(ctx,
		"SELECT id, nome, created_at FROM "+tabela+" WHERE lower(nome) = lower($1) LIMIT 1", nome,
	).Scan(&item.ID, &item.Nome, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao buscar %s: %w", tabela, err)
	}
	return &item, nil
}

// BuscarItemCatalogo busca um item pelo id
func (c *Client) BuscarItemCatalogo(ctx context.Context, catalogo models.Catalogo, id int64) (*models.ItemCatalogo, error) {
	tabela, err := tabelaCatalogo(catalogo)
	if err != nil {
		return nil, err
	}

	var item models.ItemCatalogo
	err = c.db.QueryRowContext(ctx,
		"SELECT id, nome, created_at FROM "+tabela+" WHERE id = $1", id,
	).Scan(&item.ID, &item.Nome, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao buscar %s: %w", tabela, err)
	}
	return &item, nil
}

// CriarItemCatalogo insere um item; o índice único em lower(nome) barra duplicados
func (c *Client) CriarItemCatalogo(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error) {
	tabela, err := tabelaCatalogo(catalogo)
	if err != nil {
		return nil, err
	}

	var item models.ItemCatalogo
	err = c.db.QueryRowContext(ctx,
		"INSERT INTO "+tabela+" (nome) VALUES ($1) RETURNING id, nome, created_at", nome,
	).Scan(&item.ID, &item.Nome, &item.CreatedAt)
	if err != nil {
		if _, ok := violacaoUnica(err); ok {
			return nil, models.ErrDuplicado
		}
		c.logger.WithError(err).WithField("tabela", tabela).Error("Erro ao inserir item de catálogo")
		return nil, fmt.Errorf("erro ao inserir em %s: %w", tabela, err)
	}
	return &item, nil
}
