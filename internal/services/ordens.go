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
	"golang.org/x/sync/errgroup"

	"progestao-os/internal/models"
)

const (
	tentativasNumero    = 2
	msgOSNaoEncontrada  = "OS não encontrada"
	msgErroConsultaOS   = "Erro ao consultar ordens de serviço"
	formatoDataConsulta = "2006-01-02"
)

// MetricasSync recebe o resultado de cada lote sincronizado
type MetricasSync interface {
	RegistrarSync(aplicados, conflitos int)
}

// OrdemService gerencia o ciclo de vida das ordens de serviço
type OrdemService struct {
	store       OrdemStore
	clientes    *ClienteService
	catalogo    *CatalogoService
	logger      *logrus.Logger
	metricas    MetricasSync
	agora       func() time.Time
	gerarNumero func(time.Time) string
}

// NewOrdemService cria uma nova instância do OrdemService
func NewOrdemService(store OrdemStore, clientes *ClienteService, catalogo *CatalogoService, logger *logrus.Logger) *OrdemService {
	return &OrdemService{
		store:       store,
		clientes:    clientes,
		catalogo:    catalogo,
		logger:      logger,
		agora:       time.Now,
		gerarNumero: GerarNumeroOS,
	}
}

// SetMetricas registra o coletor de métricas de sincronização
func (s *OrdemService) SetMetricas(m MetricasSync) {
	s.metricas = m
}

// Criar valida o rascunho, recalcula os totais e grava a OS com seus itens
func (s *OrdemService) Criar(ctx context.Context, req *models.OrdemRequest) (*models.OrdemServico, error) {
	r := *req
	if r.Status == "" {
		r.Status = models.StatusRascunho
	}

	erros := ValidarOrdem(&r)
	if r.Status.Valido() && r.Status != models.StatusRascunho && r.Status != models.StatusAberta {
		erros = append(erros, MsgStatusCriacaoInvalido)
	}
	errosEquip, err := s.validarEquipamento(ctx, r.Equipamento)
	if err != nil {
		return nil, err
	}
	erros = append(erros, errosEquip...)
	if len(erros) > 0 {
		return nil, models.NewValidationError(MsgDadosInvalidos, erros...)
	}

	clienteID, err := s.resolverCliente(ctx, &r)
	if err != nil {
		return nil, err
	}

	ordem := s.montarOrdem(&r, uuid.NewString(), clienteID)
	if err := s.gravarComNumero(ctx, ordem, s.store.CriarOrdem); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ordem_id":    ordem.ID,
		"numero":      ordem.OSNumeroHumano,
		"status":      ordem.Status,
		"total_geral": ordem.TotalGeral.StringFixed(2),
	}).Info("OS criada com sucesso")

	return ordem, nil
}

// Buscar retorna a OS com cliente, equipamento e itens
func (s *OrdemService) Buscar(ctx context.Context, id string) (*models.OrdemServico, error) {
	if !idValido(id) {
		return nil, models.NewNotFoundError(msgOSNaoEncontrada)
	}

	ordem, err := s.store.BuscarOrdem(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNaoEncontrado) {
			return nil, models.NewNotFoundError(msgOSNaoEncontrada)
		}
		return nil, fmt.Errorf("erro ao buscar OS %s: %w", id, err)
	}
	return ordem, nil
}

// Atualizar aplica somente os campos informados e marca a OS como sincronizada
func (s *OrdemService) Atualizar(ctx context.Context, id string, req *models.AtualizarOrdemRequest) (*models.OrdemServico, error) {
	atual, err := s.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	campos := models.CamposOrdem{
		SyncStatus: models.SyncSynced,
		UpdatedAt:  s.agora(),
	}
	var erros []string

	if req.ClienteID != nil {
		v := strings.TrimSpace(*req.ClienteID)
		switch {
		case v == "":
			erros = append(erros, MsgClienteObrigatorio)
		case v != atual.ClienteID:
			if _, err := s.clientes.Buscar(ctx, v); err != nil {
				if !models.IsCode(err, models.ErrorCodeNotFound) {
					return nil, err
				}
				erros = append(erros, MsgClienteNaoEncontrado)
			}
		}
		campos.ClienteID = &v
	}
	if req.Data != nil {
		if req.Data.IsZero() {
			erros = append(erros, MsgDataObrigatoria)
		}
		campos.Data = req.Data
	}
	if req.Status != nil {
		if !req.Status.Valido() {
			erros = append(erros, MsgStatusInvalido)
		}
		campos.Status = req.Status
	}
	if req.FormaPagamento != nil {
		v := strings.TrimSpace(*req.FormaPagamento)
		if v != "" && !models.FormaPagamentoValida(v) {
			erros = append(erros, MsgFormaPagamentoInvalida)
		}
		campos.FormaPagamento = &v
	}
	if req.Garantia != nil {
		v := strings.TrimSpace(*req.Garantia)
		campos.Garantia = &v
	}
	if req.Observacoes != nil {
		v := strings.TrimSpace(*req.Observacoes)
		campos.Observacoes = &v
	}
	if req.Equipamento != nil {
		if req.Equipamento.TipoID <= 0 {
			erros = append(erros, MsgTipoEquipamento)
		}
		errosEquip, err := s.validarEquipamento(ctx, req.Equipamento)
		if err != nil {
			return nil, err
		}
		erros = append(erros, errosEquip...)
		campos.Equipamento = novoEquipamento(req.Equipamento, id)
	}

	servicos, produtos, despesas := atual.Servicos, atual.Produtos, atual.Despesas
	if req.Servicos != nil {
		servicos = novosServicos(*req.Servicos, id)
		campos.Servicos = &servicos
	}
	if req.Produtos != nil {
		produtos = novosProdutos(*req.Produtos, id)
		campos.Produtos = &produtos
	}
	if req.Despesas != nil {
		despesas = novasDespesas(*req.Despesas, id)
		campos.Despesas = &despesas
	}
	if req.AlteraItens() {
		totais := SomarTotais(servicos, produtos, despesas)
		campos.Totais = &totais
	}

	// o estado resultante precisa continuar válido fora de rascunho
	status := atual.Status
	if campos.Status != nil {
		status = *campos.Status
	}
	forma := atual.FormaPagamento
	if campos.FormaPagamento != nil {
		forma = *campos.FormaPagamento
	}
	if status != models.StatusRascunho && (req.Status != nil || req.FormaPagamento != nil || req.AlteraItens()) {
		if forma == "" {
			erros = append(erros, MsgFormaPagamento)
		}
		if len(servicos) == 0 && len(produtos) == 0 {
			erros = append(erros, MsgItemObrigatorio)
		}
	}

	if len(erros) > 0 {
		return nil, models.NewValidationError(MsgDadosInvalidos, erros...)
	}

	if err := s.store.AtualizarOrdem(ctx, id, campos); err != nil {
		if errors.Is(err, models.ErrNaoEncontrado) {
			return nil, models.NewNotFoundError(msgOSNaoEncontrada)
		}
		return nil, fmt.Errorf("erro ao atualizar OS %s: %w", id, err)
	}

	s.logger.WithFields(logrus.Fields{
		"ordem_id": id,
		"status":   status,
	}).Info("OS atualizada com sucesso")

	return s.Buscar(ctx, id)
}

// RemoverLogicamente marca a OS como removida sem apagar o registro
func (s *OrdemService) RemoverLogicamente(ctx context.Context, id string) error {
	if !idValido(id) {
		return models.NewNotFoundError(msgOSNaoEncontrada)
	}

	if err := s.store.RemoverOrdem(ctx, id, s.agora()); err != nil {
		if errors.Is(err, models.ErrNaoEncontrado) {
			return models.NewNotFoundError(msgOSNaoEncontrada)
		}
		return fmt.Errorf("erro ao remover OS %s: %w", id, err)
	}

	s.logger.WithField("ordem_id", id).Info("OS removida")
	return nil
}

// Listar executa a busca filtrada e paginada de ordens de serviço.
// A busca textual une os resultados das facetas antes da consulta final.
func (s *OrdemService) Listar(ctx context.Context, filtro models.FiltroOrdens) (models.Pagina[models.OrdemServico], error) {
	page, size := models.NormalizarPaginacao(filtro.Page, filtro.Size)
	vazia := models.NovaPagina[models.OrdemServico](nil, models.NovaPaginacao(page, size, 0))

	consulta, termo, err := montarConsulta(filtro, page, size)
	if err != nil {
		return vazia, err
	}

	if termo != "" {
		ids, err := s.buscarIDs(ctx, termo)
		if err != nil {
			s.logger.WithError(err).WithField("query", termo).Error("Erro na busca por facetas")
			return vazia, models.NewQueryError(msgErroConsultaOS)
		}
		if len(ids) == 0 {
			return vazia, nil
		}
		consulta.IDs = ids
	}

	itens, total, err := s.store.ListarOrdens(ctx, consulta)
	if err != nil {
		s.logger.WithError(err).Error("Erro ao listar ordens de serviço")
		return vazia, models.NewQueryError(msgErroConsultaOS)
	}

	return models.NovaPagina(itens, models.NovaPaginacao(page, size, total)), nil
}

// Sincronizar aplica um lote de rascunhos offline.
// Cada alteração é independente: uma falha não interrompe as demais.
func (s *OrdemService) Sincronizar(ctx context.Context, alteracoes []models.OrdemRequest) models.ResultadoSync {
	resultado := models.ResultadoSync{
		Applied:   []string{},
		Conflicts: []models.ConflitoSync{},
	}

	for i := range alteracoes {
		alt := alteracoes[i]
		if err := s.aplicarAlteracao(ctx, &alt); err != nil {
			s.logger.WithError(err).WithField("ordem_id", alt.ID).Warn("Alteração offline não aplicada")
			resultado.Conflicts = append(resultado.Conflicts, models.ConflitoSync{
				ID:    alt.ID,
				Error: mensagemConflito(err),
			})
			continue
		}
		resultado.Applied = append(resultado.Applied, alt.ID)
	}

	if s.metricas != nil {
		s.metricas.RegistrarSync(len(resultado.Applied), len(resultado.Conflicts))
	}

	s.logger.WithFields(logrus.Fields{
		"aplicadas": len(resultado.Applied),
		"conflitos": len(resultado.Conflicts),
		"recebidas": len(alteracoes),
	}).Info("Sincronização concluída")

	return resultado
}

func (s *OrdemService) aplicarAlteracao(ctx context.Context, alt *models.OrdemRequest) error {
	alt.ID = strings.TrimSpace(alt.ID)
	if !idValido(alt.ID) {
		return models.NewValidationError(MsgDadosInvalidos, MsgIDInvalido)
	}
	if alt.Status == "" {
		alt.Status = models.StatusRascunho
	}

	erros := ValidarOrdem(alt)
	errosEquip, err := s.validarEquipamento(ctx, alt.Equipamento)
	if err != nil {
		return err
	}
	if erros = append(erros, errosEquip...); len(erros) > 0 {
		return models.NewValidationError(MsgDadosInvalidos, erros...)
	}

	clienteID, err := s.resolverCliente(ctx, alt)
	if err != nil {
		return err
	}

	ordem := s.montarOrdem(alt, alt.ID, clienteID)
	return s.gravarComNumero(ctx, ordem, s.store.UpsertOrdem)
}

// mensagemConflito expõe apenas erros da API; falhas do store viram mensagem genérica
func mensagemConflito(err error) string {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return MsgErroInterno
}

// validarEquipamento confere se tipo e marca existem nos catálogos
func (s *OrdemService) validarEquipamento(ctx context.Context, e *models.EquipamentoOS) ([]string, error) {
	if e == nil || e.TipoID <= 0 {
		return nil, nil
	}

	var erros []string
	ok, err := s.catalogo.Existe(ctx, models.CatalogoTiposEquipamentos, e.TipoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		erros = append(erros, MsgTipoNaoEncontrado)
	}

	if e.MarcaID != nil {
		ok, err := s.catalogo.Existe(ctx, models.CatalogoMarcas, *e.MarcaID)
		if err != nil {
			return nil, err
		}
		if !ok {
			erros = append(erros, MsgMarcaNaoEncontrada)
		}
	}
	return erros, nil
}

// gravarComNumero gera o número humano e repete uma única vez em caso de colisão
func (s *OrdemService) gravarComNumero(ctx context.Context, ordem *models.OrdemServico, gravar func(context.Context, *models.OrdemServico) error) error {
	for tentativa := 1; tentativa <= tentativasNumero; tentativa++ {
		ordem.OSNumeroHumano = s.gerarNumero(s.agora())
		err := gravar(ctx, ordem)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrNumeroDuplicado) {
			return fmt.Errorf("erro ao gravar OS %s: %w", ordem.ID, err)
		}
		s.logger.WithFields(logrus.Fields{
			"numero":    ordem.OSNumeroHumano,
			"tentativa": tentativa,
		}).Warn("Número da OS já existe")
	}
	return models.NewDuplicateNumberError()
}

func (s *OrdemService) resolverCliente(ctx context.Context, r *models.OrdemRequest) (string, error) {
	if id := strings.TrimSpace(r.ClienteID); id != "" {
		if _, err := s.clientes.Buscar(ctx, id); err != nil {
			if models.IsCode(err, models.ErrorCodeNotFound) {
				return "", models.NewValidationError(MsgDadosInvalidos, MsgClienteNaoEncontrado)
			}
			return "", err
		}
		return id, nil
	}

	cliente, err := s.clientes.Criar(ctx, r.Cliente)
	if err != nil {
		return "", err
	}
	return cliente.ID, nil
}

func (s *OrdemService) montarOrdem(r *models.OrdemRequest, id, clienteID string) *models.OrdemServico {
	agora := s.agora()
	servicos := novosServicos(r.Servicos, id)
	produtos := novosProdutos(r.Produtos, id)
	despesas := novasDespesas(r.Despesas, id)

	ordem := &models.OrdemServico{
		ID:             id,
		ClienteID:      clienteID,
		Servicos:       servicos,
		Produtos:       produtos,
		Despesas:       despesas,
		FormaPagamento: strings.TrimSpace(r.FormaPagamento),
		Garantia:       textoOpcional(r.Garantia),
		Observacoes:    textoOpcional(r.Observacoes),
		Data:           r.Data.UTC(),
		Status:         r.Status,
		SyncStatus:     models.SyncSynced,
		Totais:         SomarTotais(servicos, produtos, despesas),
		CreatedAt:      agora,
		UpdatedAt:      agora,
	}
	if r.Equipamento != nil {
		ordem.Equipamento = novoEquipamento(r.Equipamento, id)
	}
	return ordem
}

func (s *OrdemService) buscarIDs(ctx context.Context, termo string) ([]string, error) {
	var porCliente, porServico, porProduto, porNumero []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clienteIDs, err := s.store.BuscarIDsPorFaceta(gctx, models.FacetaNomeCliente, termo)
		if err != nil {
			return fmt.Errorf("faceta %s: %w", models.FacetaNomeCliente, err)
		}
		if len(clienteIDs) == 0 {
			return nil
		}
		porCliente, err = s.store.BuscarIDsPorClientes(gctx, clienteIDs)
		return err
	})
	g.Go(func() (err error) {
		porServico, err = s.store.BuscarIDsPorFaceta(gctx, models.FacetaServico, termo)
		return err
	})
	g.Go(func() (err error) {
		porProduto, err = s.store.BuscarIDsPorFaceta(gctx, models.FacetaProduto, termo)
		return err
	})
	g.Go(func() (err error) {
		porNumero, err = s.store.BuscarIDsPorFaceta(gctx, models.FacetaNumero, termo)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return uniao(porCliente, porServico, porProduto, porNumero), nil
}

func montarConsulta(filtro models.FiltroOrdens, page, size int) (models.ConsultaOrdens, string, error) {
	consulta := models.ConsultaOrdens{
		Offset: (page - 1) * size,
		Limit:  size,
	}
	var erros []string

	termo := SanitizarBusca(filtro.Query)
	if utf8.RuneCountInString(termo) > TamanhoMaximoBusca {
		erros = append(erros, MsgBuscaMuitoLonga)
	}

	if status := strings.TrimSpace(filtro.Status); status != "" {
		consulta.Status = models.StatusOrdem(status)
		if !consulta.Status.Valido() {
			erros = append(erros, MsgStatusInvalido)
		}
	}

	if de := strings.TrimSpace(filtro.DateFrom); de != "" {
		t, _, err := parseDataConsulta(de)
		if err != nil {
			erros = append(erros, "date_from inválido")
		} else {
			consulta.DataDe = &t
		}
	}
	if ate := strings.TrimSpace(filtro.DateTo); ate != "" {
		t, soData, err := parseDataConsulta(ate)
		if err != nil {
			erros = append(erros, "date_to inválido")
		} else {
			if soData {
				// data sem hora inclui o dia inteiro
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			consulta.DataAte = &t
		}
	}

	if len(erros) > 0 {
		return consulta, "", models.NewValidationError(MsgParametrosInvalidos, erros...)
	}
	return consulta, termo, nil
}

func parseDataConsulta(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(formatoDataConsulta, v)
	return t, true, err
}

func uniao(conjuntos ...[]string) []string {
	vistos := make(map[string]struct{})
	var ids []string
	for _, conjunto := range conjuntos {
		for _, id := range conjunto {
			if _, ok := vistos[id]; ok {
				continue
			}
			vistos[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func novoEquipamento(e *models.EquipamentoOS, ordemID string) *models.EquipamentoOS {
	return &models.EquipamentoOS{
		ID:             uuid.NewString(),
		OrdemServicoID: ordemID,
		TipoID:         e.TipoID,
		MarcaID:        e.MarcaID,
		Modelo:         textoOpcional(e.Modelo),
		NumeroSerie:    textoOpcional(e.NumeroSerie),
	}
}

func novosServicos(itens []models.ServicoOS, ordemID string) []models.ServicoOS {
	servicos := NormalizarServicos(itens)
	for i := range servicos {
		servicos[i].ID = uuid.NewString()
		servicos[i].OrdemServicoID = ordemID
	}
	return servicos
}

func novosProdutos(itens []models.ProdutoOS, ordemID string) []models.ProdutoOS {
	produtos := NormalizarProdutos(itens)
	for i := range produtos {
		produtos[i].ID = uuid.NewString()
		produtos[i].OrdemServicoID = ordemID
	}
	return produtos
}

func novasDespesas(itens []models.DespesaOS, ordemID string) []models.DespesaOS {
	despesas := NormalizarDespesas(itens)
	for i := range despesas {
		despesas[i].ID = uuid.NewString()
		despesas[i].OrdemServicoID = ordemID
	}
	return despesas
}
