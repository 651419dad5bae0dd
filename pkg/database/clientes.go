package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"progestao-os/internal/models"
)

// CriarCliente insere um novo cliente
func (c *Client) CriarCliente(ctx context.Context, cliente *models.Cliente) error {
	query := `
		INSERT INTO clientes (id, nome, telefone, email, importado_da_agenda, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := c.db.ExecContext(ctx, query,
		cliente.ID, cliente.Nome, cliente.Telefone, cliente.Email,
		cliente.ImportadoDaAgenda, cliente.CreatedAt, cliente.UpdatedAt,
	)
	if err != nil {
		c.logger.WithError(err).Error("Erro ao salvar cliente")
		return fmt.Errorf("erro ao inserir cliente: %w", err)
	}
	return nil
}

// BuscarCliente retorna um cliente pelo id
func (c *Client) BuscarCliente(ctx context.Context, id string) (*models.Cliente, error) {
	var cl models.Cliente
	err := c.db.QueryRowContext(ctx, `
		SELECT id, nome, telefone, email, importado_da_agenda, created_at, updated_at
		FROM clientes WHERE id = $1`, id,
	).Scan(&cl.ID, &cl.Nome, &cl.Telefone, &cl.Email, &cl.ImportadoDaAgenda, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao buscar cliente: %w", err)
	}
	return &cl, nil
}

// ListarClientes lista clientes por nome filtrando por nome, telefone ou email
func (c *Client) ListarClientes(ctx context.Context, termo string, offset, limit int) ([]models.Cliente, int, error) {
	where := ""
	var args []any
	if termo != "" {
		where = "WHERE nome ILIKE $1 OR telefone ILIKE $1 OR COALESCE(email, '') ILIKE $1"
		args = append(args, padraoContem(termo))
	}

	var total int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clientes "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("erro ao contar clientes: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, nome, telefone, email, importado_da_agenda, created_at, updated_at
		FROM clientes %s
		ORDER BY nome ASC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := c.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar clientes: %w", err)
	}
	defer rows.Close()

	clientes := []models.Cliente{}
	for rows.Next() {
		var cl models.Cliente
		if err := rows.Scan(&cl.ID, &cl.Nome, &cl.Telefone, &cl.Email, &cl.ImportadoDaAgenda, &cl.CreatedAt, &cl.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("erro ao escanear cliente: %w", err)
		}
		clientes = append(clientes, cl)
	}
	return clientes, total, rows.Err()
}
