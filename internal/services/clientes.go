package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
)

// ClienteService gerencia o cadastro de clientes
type ClienteService struct {
	store  ClienteStore
	logger *logrus.Logger
	agora  func() time.Time
}

// NewClienteService cria uma nova instância do ClienteService
func NewClienteService(store ClienteStore, logger *logrus.Logger) *ClienteService {
	return &ClienteService{store: store, logger: logger, agora: time.Now}
}

// Criar valida e grava um novo cliente com telefone normalizado
func (s *ClienteService) Criar(ctx context.Context, req *models.ClienteRequest) (*models.Cliente, error) {
	if req == nil {
		return nil, models.NewValidationError(MsgDadosInvalidos, MsgClienteObrigatorio)
	}
	if erros := ValidarCliente(req); len(erros) > 0 {
		return nil, models.NewValidationError(MsgDadosInvalidos, erros...)
	}

	agora := s.agora()
	cliente := &models.Cliente{
		ID:                uuid.NewString(),
		Nome:              strings.TrimSpace(req.Nome),
		Telefone:          NormalizarTelefone(req.Telefone),
		Email:             textoOpcional(&req.Email),
		ImportadoDaAgenda: req.ImportadoDaAgenda,
		CreatedAt:         agora,
		UpdatedAt:         agora,
	}

	if err := s.store.CriarCliente(ctx, cliente); err != nil {
		return nil, fmt.Errorf("erro ao criar cliente: %w", err)
	}

	s.logger.WithField("cliente_id", cliente.ID).Info("Cliente criado com sucesso")
	return cliente, nil
}

// Buscar retorna um cliente pelo id
func (s *ClienteService) Buscar(ctx context.Context, id string) (*models.Cliente, error) {
	if !idValido(id) {
		return nil, models.NewNotFoundError(MsgClienteNaoEncontrado)
	}

	cliente, err := s.store.BuscarCliente(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNaoEncontrado) {
			return nil, models.NewNotFoundError(MsgClienteNaoEncontrado)
		}
		return nil, fmt.Errorf("erro ao buscar cliente %s: %w", id, err)
	}
	return cliente, nil
}

// Listar lista clientes por nome, filtrando por nome, telefone ou email
func (s *ClienteService) Listar(ctx context.Context, filtro models.FiltroClientes) (models.Pagina[models.Cliente], error) {
	page, size := models.NormalizarPaginacao(filtro.Page, filtro.Size)
	vazia := models.NovaPagina[models.Cliente](nil, models.NovaPaginacao(page, size, 0))

	termo := SanitizarBusca(filtro.Q)
	if utf8.RuneCountInString(termo) > TamanhoMaximoBusca {
		return vazia, models.NewValidationError(MsgParametrosInvalidos, MsgBuscaMuitoLonga)
	}

	clientes, total, err := s.store.ListarClientes(ctx, termo, (page-1)*size, size)
	if err != nil {
		s.logger.WithError(err).Error("Erro ao listar clientes")
		return vazia, models.NewQueryError("Erro ao consultar clientes")
	}
	return models.NovaPagina(clientes, models.NovaPaginacao(page, size, total)), nil
}
