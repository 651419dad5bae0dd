package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"progestao-os/internal/models"
)

// CriarCliente insere um novo cliente
func (c *Client) CriarCliente(ctx context.Context, cliente *models.Cliente) error {
	_, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodPost,
		recurso: "clientes",
		corpo:   cliente,
		prefer:  []string{"return=minimal"},
	}, nil)
	if err != nil {
		c.logger.WithError(err).Error("Erro ao salvar cliente")
		return fmt.Errorf("erro ao inserir cliente: %w", err)
	}
	return nil
}

// BuscarCliente retorna um cliente pelo id
func (c *Client) BuscarCliente(ctx context.Context, id string) (*models.Cliente, error) {
	q := filtroID(id)
	q.Set("select", "*")

	var clientes []models.Cliente
	if _, err := c.makeRequest(ctx, requisicao{metodo: http.MethodGet, recurso: "clientes", query: q}, &clientes); err != nil {
		return nil, fmt.Errorf("erro ao buscar cliente: %w", err)
	}
	if len(clientes) == 0 {
		return nil, models.ErrNaoEncontrado
	}
	return &clientes[0], nil
}

// ListarClientes lista clientes por nome filtrando por nome, telefone ou email
func (c *Client) ListarClientes(ctx context.Context, termo string, offset, limit int) ([]models.Cliente, int, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "nome.asc")
	if termo != "" {
		padrao := valorEntreAspas("*" + escapeLike.Replace(termo) + "*")
		filtros := make([]string, 0, 3)
		for _, coluna := range []string{"nome", "telefone", "email"} {
			filtros = append(filtros, coluna+".ilike."+padrao)
		}
		q.Set("or", "("+strings.Join(filtros, ",")+")")
	}
	paginar(q, offset, limit)

	clientes := []models.Cliente{}
	total, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodGet,
		recurso: "clientes",
		query:   q,
		prefer:  []string{"count=exact"},
	}, &clientes)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar clientes: %w", err)
	}
	if total < 0 {
		total = offset + len(clientes)
	}
	return clientes, total, nil
}
