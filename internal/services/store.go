package services

import (
	"context"
	"time"

	"progestao-os/internal/models"
)

// OrdemStore é o acesso a ordens de serviço e seus itens.
// Os métodos retornam models.ErrNaoEncontrado para ids ausentes ou removidos
// e models.ErrNumeroDuplicado quando os_numero_humano colide na inserção.
type OrdemStore interface {
	// CriarOrdem grava a ordem, o equipamento e os itens de forma atômica
	CriarOrdem(ctx context.Context, ordem *models.OrdemServico) error
	BuscarOrdem(ctx context.Context, id string) (*models.OrdemServico, error)
	ListarOrdens(ctx context.Context, consulta models.ConsultaOrdens) ([]models.OrdemServico, int, error)
	AtualizarOrdem(ctx context.Context, id string, campos models.CamposOrdem) error
	RemoverOrdem(ctx context.Context, id string, em time.Time) error
	// UpsertOrdem sobrescreve a ordem com o mesmo id, preservando número e criação
	UpsertOrdem(ctx context.Context, ordem *models.OrdemServico) error
	// BuscarIDsPorFaceta retorna ids de clientes para FacetaNomeCliente e ids de ordens nas demais
	BuscarIDsPorFaceta(ctx context.Context, faceta models.Faceta, termo string) ([]string, error)
	BuscarIDsPorClientes(ctx context.Context, clienteIDs []string) ([]string, error)
}

// ClienteStore é o acesso ao cadastro de clientes
type ClienteStore interface {
	CriarCliente(ctx context.Context, cliente *models.Cliente) error
	BuscarCliente(ctx context.Context, id string) (*models.Cliente, error)
	ListarClientes(ctx context.Context, termo string, offset, limit int) ([]models.Cliente, int, error)
}

// CatalogoStore é o acesso aos catálogos de tipos de equipamento e marcas
type CatalogoStore interface {
	ListarCatalogo(ctx context.Context, catalogo models.Catalogo, termo string, offset, limit int) ([]models.ItemCatalogo, int, error)
	BuscarCatalogoPorNome(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error)
	BuscarItemCatalogo(ctx context.Context, catalogo models.Catalogo, id int64) (*models.ItemCatalogo, error)
	CriarItemCatalogo(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error)
}

// Store agrupa todos os acessos e o ciclo de vida da conexão
type Store interface {
	OrdemStore
	ClienteStore
	CatalogoStore
	Ping(ctx context.Context) error
	Close() error
}
