package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/text/cases"

	"progestao-os/internal/models"
)

// ListarCatalogo lista os itens do catálogo em ordem alfabética
func (c *Client) ListarCatalogo(ctx context.Context, catalogo models.Catalogo, termo string, offset, limit int) ([]models.ItemCatalogo, int, error) {
	if !catalogo.Valido() {
		return nil, 0, fmt.Errorf("catálogo desconhecido: %s", catalogo)
	}

	q := url.Values{}
	q.Set("select", "id,nome,created_at")
	q.Set("order", "nome.asc")
	if termo != "" {
		q.Set("nome", padraoContem(termo))
	}
	paginar(q, offset, limit)

	itens := []models.ItemCatalogo{}
	total, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodGet,
		recurso: string(catalogo),
		query:   q,
		prefer:  []string{"count=exact"},
	}, &itens)
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao listar %s: %w", catalogo, err)
	}
	if total < 0 {
		total = offset + len(itens)
	}
	return itens, total, nil
}

// BuscarCatalogoPorNome busca um item pelo nome sem diferenciar maiúsculas
func (c *Client) BuscarCatalogoPorNome(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error) {
	if !catalogo.Valido() {
		return nil, fmt.Errorf("catálogo desconhecido: %s", catalogo)
	}

	q := url.Values{}
	q.Set("select", "id,nome,created_at")
	q.Set("nome", "ilike."+escapeLike.Replace(nome))

	var itens []models.ItemCatalogo
	if _, err := c.makeRequest(ctx, requisicao{metodo: http.MethodGet, recurso: string(catalogo), query: q}, &itens); err != nil {
		return nil, fmt.Errorf("erro ao buscar %s: %w", catalogo, err)
	}

	fold := cases.Fold()
	alvo := fold.String(nome)
	for i := range itens {
		if fold.String(itens[i].Nome) == alvo {
			return &itens[i], nil
		}
	}
	return nil, models.ErrNaoEncontrado
}

// BuscarItemCatalogo busca um item pelo id
func (c *Client) BuscarItemCatalogo(ctx context.Context, catalogo models.Catalogo, id int64) (*models.ItemCatalogo, error) {
	if !catalogo.Valido() {
		return nil, fmt.Errorf("catálogo desconhecido: %s", catalogo)
	}

	q := url.Values{}
	q.Set("select", "id,nome,created_at")
	q.Set("id", "eq."+strconv.FormatInt(id, 10))

	var itens []models.ItemCatalogo
	if _, err := c.makeRequest(ctx, requisicao{metodo: http.MethodGet, recurso: string(catalogo), query: q}, &itens); err != nil {
		return nil, fmt.Errorf("erro ao buscar %s: %w", catalogo, err)
	}
	if len(itens) == 0 {
		return nil, models.ErrNaoEncontrado
	}
	return &itens[0], nil
}

// CriarItemCatalogo insere um item; o índice único em lower(nome) barra duplicados
func (c *Client) CriarItemCatalogo(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error) {
	if !catalogo.Valido() {
		return nil, fmt.Errorf("catálogo desconhecido: %s", catalogo)
	}

	q := url.Values{}
	q.Set("select", "id,nome,created_at")

	var itens []models.ItemCatalogo
	_, err := c.makeRequest(ctx, requisicao{
		metodo:  http.MethodPost,
		recurso: string(catalogo),
		query:   q,
		corpo:   map[string]string{"nome": nome},
		prefer:  []string{"return=representation"},
	}, &itens)
	if err != nil {
		if violacaoUnica(err, "") {
			return nil, models.ErrDuplicado
		}
		c.logger.WithError(err).WithField("tabela", string(catalogo)).Error("Erro ao inserir item de catálogo")
		return nil, fmt.Errorf("erro ao inserir em %s: %w", catalogo, err)
	}
	if len(itens) == 0 {
		return nil, fmt.Errorf("erro ao inserir em %s: resposta vazia", catalogo)
	}
	return &itens[0], nil
}
