package models

import "time"

// Catalogo identifica uma tabela de catálogo
type Catalogo string

const (
	CatalogoTiposEquipamentos Catalogo = "tipos_equipamentos"
	CatalogoMarcas            Catalogo = "marcas"
)

// Valido informa se o catálogo é conhecido
func (c Catalogo) Valido() bool {
	return c == CatalogoTiposEquipamentos || c == CatalogoMarcas
}

// MensagemDuplicado retorna a mensagem de conflito de nome do catálogo
func (c Catalogo) MensagemDuplicado() string {
	if c == CatalogoMarcas {
		return "Marca já existe"
	}
	return "Tipo já existe"
}

// ItemCatalogo representa um tipo de equipamento ou uma marca
type ItemCatalogo struct {
	ID        int64     `json:"id" db:"id"`
	Nome      string    `json:"nome" db:"nome"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ItemCatalogoRequest representa os dados para criação de um item de catálogo
type ItemCatalogoRequest struct {
	Nome string `json:"nome"`
}

// FiltroCatalogo representa os parâmetros de listagem de catálogo
type FiltroCatalogo struct {
	Q    string `form:"q"`
	Page int    `form:"page"`
	Size int    `form:"size"`
}
