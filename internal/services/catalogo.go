package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
)

const tamanhoMaximoNome = 100

// CatalogoService gerencia os catálogos de tipos de equipamento e marcas
type CatalogoService struct {
	store  CatalogoStore
	logger *logrus.Logger
}

// NewCatalogoService cria uma nova instância do CatalogoService
func NewCatalogoService(store CatalogoStore, logger *logrus.Logger) *CatalogoService {
	return &CatalogoService{store: store, logger: logger}
}

// NormalizarNomeCatalogo apara o nome e colapsa espaços internos
func NormalizarNomeCatalogo(nome string) string {
	return strings.Join(strings.Fields(nome), " ")
}

// Listar lista os itens do catálogo em ordem alfabética
func (s *CatalogoService) Listar(ctx context.Context, catalogo models.Catalogo, filtro models.FiltroCatalogo) (models.Pagina[models.ItemCatalogo], error) {
	page, size := models.NormalizarPaginacao(filtro.Page, filtro.Size)
	vazia := models.NovaPagina[models.ItemCatalogo](nil, models.NovaPaginacao(page, size, 0))

	termo := SanitizarBusca(filtro.Q)
	if utf8.RuneCountInString(termo) > TamanhoMaximoBusca {
		return vazia, models.NewValidationError(MsgParametrosInvalidos, MsgBuscaMuitoLonga)
	}

	itens, total, err := s.store.ListarCatalogo(ctx, catalogo, termo, (page-1)*size, size)
	if err != nil {
		s.logger.WithError(err).WithField("catalogo", catalogo).Error("Erro ao listar catálogo")
		return vazia, models.NewQueryError("Erro ao consultar catálogo")
	}
	return models.NovaPagina(itens, models.NovaPaginacao(page, size, total)), nil
}

// Existe informa se o id está cadastrado no catálogo
func (s *CatalogoService) Existe(ctx context.Context, catalogo models.Catalogo, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	if _, err := s.store.BuscarItemCatalogo(ctx, catalogo, id); err != nil {
		if errors.Is(err, models.ErrNaoEncontrado) {
			return false, nil
		}
		return false, fmt.Errorf("erro ao verificar %s %d: %w", catalogo, id, err)
	}
	return true, nil
}

// Criar grava um novo item rejeitando nomes repetidos sem diferenciar maiúsculas
func (s *CatalogoService) Criar(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error) {
	nome = NormalizarNomeCatalogo(nome)
	if nome == "" {
		return nil, models.NewValidationError("Nome é obrigatório")
	}
	if utf8.RuneCountInString(nome) > tamanhoMaximoNome {
		return nil, models.NewValidationError("Nome deve ter no máximo 100 caracteres")
	}

	existente, err := s.store.BuscarCatalogoPorNome(ctx, catalogo, nome)
	if err != nil && !errors.Is(err, models.ErrNaoEncontrado) {
		return nil, fmt.Errorf("erro ao verificar %s: %w", catalogo, err)
	}
	if existente != nil {
		return nil, models.NewDuplicateError(catalogo.MensagemDuplicado())
	}

	item, err := s.store.CriarItemCatalogo(ctx, catalogo, nome)
	if err != nil {
		if errors.Is(err, models.ErrDuplicado) {
			return nil, models.NewDuplicateError(catalogo.MensagemDuplicado())
		}
		return nil, fmt.Errorf("erro ao criar item em %s: %w", catalogo, err)
	}

	s.logger.WithFields(logrus.Fields{
		"catalogo": catalogo,
		"id":       item.ID,
		"nome":     item.Nome,
	}).Info("Item de catálogo criado")
	return item, nil
}
