package models

import "math"

const (
	PaginaPadrao  = 1
	TamanhoPadrao = 20
	TamanhoMaximo = 100
)

// Resposta é o envelope padrão de todas as respostas da API
type Resposta struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// Paginacao descreve a página retornada por uma listagem
type Paginacao struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NovaPaginacao calcula o número de páginas a partir do total exato
func NovaPaginacao(page, size, total int) Paginacao {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Paginacao{Page: page, Size: size, Total: total, Pages: pages}
}

// Pagina agrupa os itens e a paginação de uma listagem
type Pagina[T any] struct {
	Items      []T       `json:"items"`
	Pagination Paginacao `json:"pagination"`
}

// NovaPagina garante que items seja serializado como lista vazia
func NovaPagina[T any](items []T, pag Paginacao) Pagina[T] {
	if items == nil {
		items = []T{}
	}
	return Pagina[T]{Items: items, Pagination: pag}
}

// NormalizarPaginacao aplica os padrões e limites de página e tamanho
func NormalizarPaginacao(page, size int) (int, int) {
	if page < 1 {
		page = PaginaPadrao
	}
	if size == 0 {
		size = TamanhoPadrao
	}
	if size < 1 {
		size = 1
	}
	if size > TamanhoMaximo {
		size = TamanhoMaximo
	}
	// o deslocamento (page-1)*size precisa caber em um OFFSET de 32 bits
	if maxPage := math.MaxInt32/size + 1; page > maxPage {
		page = maxPage
	}
	return page, size
}

// Removido é o corpo da resposta de exclusão lógica
type Removido struct {
	Deleted bool `json:"deleted"`
}
