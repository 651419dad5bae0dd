package models

import "time"

// Cliente representa um cliente atendido pela empresa
type Cliente struct {
	ID                string    `json:"id" db:"id"`
	Nome              string    `json:"nome" db:"nome"`
	Telefone          string    `json:"telefone" db:"telefone"`
	Email             *string   `json:"email,omitempty" db:"email"`
	ImportadoDaAgenda bool      `json:"importado_da_agenda" db:"importado_da_agenda"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ClienteRequest representa os dados para criação de um cliente
type ClienteRequest struct {
	Nome              string `json:"nome" binding:"required"`
	Telefone          string `json:"telefone" binding:"required,telefone"`
	Email             string `json:"email,omitempty" binding:"omitempty,email"`
	ImportadoDaAgenda bool   `json:"importado_da_agenda"`
}

// FiltroClientes representa os parâmetros de listagem de clientes
type FiltroClientes struct {
	Q    string `form:"q"`
	Page int    `form:"page"`
	Size int    `form:"size"`
}
