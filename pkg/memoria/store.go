// Package memoria implementa o store em memória usado em desenvolvimento local e testes.
package memoria

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"progestao-os/internal/models"
)

// Store guarda clientes, ordens e catálogos em memória
type Store struct {
	mu        sync.RWMutex
	clientes  map[string]models.Cliente
	ordens    map[string]*models.OrdemServico
	numeros   map[string]string
	catalogos map[models.Catalogo][]models.ItemCatalogo
	sequencia map[models.Catalogo]int64
	agora     func() time.Time
}

// New cria um store vazio
func New() *Store {
	return &Store{
		clientes:  make(map[string]models.Cliente),
		ordens:    make(map[string]*models.OrdemServico),
		numeros:   make(map[string]string),
		catalogos: make(map[models.Catalogo][]models.ItemCatalogo),
		sequencia: make(map[models.Catalogo]int64),
		agora:     time.Now,
	}
}

// Ping sempre responde, o store não depende de rede
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close não tem recursos a liberar
func (s *Store) Close() error { return nil }

// contem compara como ILIKE '%termo%'
func contem(valor, termo string) bool {
	return strings.Contains(cases.Fold().String(valor), cases.Fold().String(termo))
}

func mesmoNome(a, b string) bool {
	return cases.Fold().String(a) == cases.Fold().String(b)
}

// Clientes

func (s *Store) CriarCliente(ctx context.Context, cliente *models.Cliente) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientes[cliente.ID] = *cliente
	return nil
}

func (s *Store) BuscarCliente(ctx context.Context, id string) (*models.Cliente, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clientes[id]
	if !ok {
		return nil, models.ErrNaoEncontrado
	}
	return &c, nil
}

func (s *Store) ListarClientes(ctx context.Context, termo string, offset, limit int) ([]models.Cliente, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var todos []models.Cliente
	for _, c := range s.clientes {
		email := ""
		if c.Email != nil {
			email = *c.Email
		}
		if termo == "" || contem(c.Nome, termo) || contem(c.Telefone, termo) || contem(email, termo) {
			todos = append(todos, c)
		}
	}
	sort.Slice(todos, func(i, j int) bool {
		return cases.Fold().String(todos[i].Nome) < cases.Fold().String(todos[j].Nome)
	})
	return pagina(todos, offset, limit), len(todos), nil
}

// Catálogos

func (s *Store) ListarCatalogo(ctx context.Context, catalogo models.Catalogo, termo string, offset, limit int) ([]models.ItemCatalogo, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var itens []models.ItemCatalogo
	for _, item := range s.catalogos[catalogo] {
		if termo == "" || contem(item.Nome, termo) {
			itens = append(itens, item)
		}
	}
	sort.Slice(itens, func(i, j int) bool {
		return cases.Fold().String(itens[i].Nome) < cases.Fold().String(itens[j].Nome)
	})
	return pagina(itens, offset, limit), len(itens), nil
}

func (s *Store) BuscarCatalogoPorNome(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.catalogos[catalogo] {
		if mesmoNome(item.Nome, nome) {
			encontrado := item
			return &encontrado, nil
		}
	}
	return nil, models.ErrNaoEncontrado
}

func (s *Store) BuscarItemCatalogo(ctx context.Context, catalogo models.Catalogo, id int64) (*models.ItemCatalogo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.catalogos[catalogo] {
		if item.ID == id {
			encontrado := item
			return &encontrado, nil
		}
	}
	return nil, models.ErrNaoEncontrado
}

func (s *Store) CriarItemCatalogo(ctx context.Context, catalogo models.Catalogo, nome string) (*models.ItemCatalogo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.catalogos[catalogo] {
		if mesmoNome(item.Nome, nome) {
			return nil, models.ErrDuplicado
		}
	}
	s.sequencia[catalogo]++
	item := models.ItemCatalogo{ID: s.sequencia[catalogo], Nome: nome, CreatedAt: s.agora()}
	s.catalogos[catalogo] = append(s.catalogos[catalogo], item)
	return &item, nil
}

// Ordens

func (s *Store) CriarOrdem(ctx context.Context, ordem *models.OrdemServico) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.numeros[ordem.OSNumeroHumano]; ok {
		return models.ErrNumeroDuplicado
	}
	s.ordens[ordem.ID] = copiarOrdem(ordem)
	s.numeros[ordem.OSNumeroHumano] = ordem.ID
	return nil
}

func (s *Store) UpsertOrdem(ctx context.Context, ordem *models.OrdemServico) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	atual, ok := s.ordens[ordem.ID]
	if !ok {
		if _, dup := s.numeros[ordem.OSNumeroHumano]; dup {
			return models.ErrNumeroDuplicado
		}
		s.ordens[ordem.ID] = copiarOrdem(ordem)
		s.numeros[ordem.OSNumeroHumano] = ordem.ID
		return nil
	}

	nova := copiarOrdem(ordem)
	nova.OSNumeroHumano = atual.OSNumeroHumano
	nova.CreatedAt = atual.CreatedAt
	nova.DeletedAt = atual.DeletedAt
	s.ordens[ordem.ID] = nova
	return nil
}

func (s *Store) BuscarOrdem(ctx context.Context, id string) (*models.OrdemServico, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.ordens[id]
	if !ok || o.DeletedAt != nil {
		return nil, models.ErrNaoEncontrado
	}
	return s.comCliente(o), nil
}

// Removida informa se a ordem existe e foi removida logicamente
func (s *Store) Removida(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.ordens[id]
	return ok && o.DeletedAt != nil
}

func (s *Store) ListarOrdens(ctx context.Context, consulta models.ConsultaOrdens) ([]models.OrdemServico, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var permitidos map[string]struct{}
	if consulta.IDs != nil {
		permitidos = make(map[string]struct{}, len(consulta.IDs))
		for _, id := range consulta.IDs {
			permitidos[id] = struct{}{}
		}
	}

	var filtradas []models.OrdemServico
	for _, o := range s.ordens {
		if o.DeletedAt != nil {
			continue
		}
		if permitidos != nil {
			if _, ok := permitidos[o.ID]; !ok {
				continue
			}
		}
		if consulta.Status != "" && o.Status != consulta.Status {
			continue
		}
		if consulta.DataDe != nil && o.Data.Before(*consulta.DataDe) {
			continue
		}
		if consulta.DataAte != nil && o.Data.After(*consulta.DataAte) {
			continue
		}
		filtradas = append(filtradas, *s.comCliente(o))
	}

	sort.SliceStable(filtradas, func(i, j int) bool {
		if filtradas[i].CreatedAt.Equal(filtradas[j].CreatedAt) {
			return filtradas[i].ID > filtradas[j].ID
		}
		return filtradas[i].CreatedAt.After(filtradas[j].CreatedAt)
	})
	return pagina(filtradas, consulta.Offset, consulta.Limit), len(filtradas), nil
}

func (s *Store) AtualizarOrdem(ctx context.Context, id string, campos models.CamposOrdem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.ordens[id]
	if !ok || o.DeletedAt != nil {
		return models.ErrNaoEncontrado
	}

	if campos.ClienteID != nil {
		o.ClienteID = *campos.ClienteID
	}
	if campos.FormaPagamento != nil {
		o.FormaPagamento = *campos.FormaPagamento
	}
	if campos.Garantia != nil {
		o.Garantia = vazioComoNil(*campos.Garantia)
	}
	if campos.Observacoes != nil {
		o.Observacoes = vazioComoNil(*campos.Observacoes)
	}
	if campos.Data != nil {
		o.Data = *campos.Data
	}
	if campos.Status != nil {
		o.Status = *campos.Status
	}
	if campos.Totais != nil {
		o.Totais = *campos.Totais
	}
	if campos.Equipamento != nil {
		e := *campos.Equipamento
		o.Equipamento = &e
	}
	if campos.Servicos != nil {
		o.Servicos = append([]models.ServicoOS(nil), (*campos.Servicos)...)
	}
	if campos.Produtos != nil {
		o.Produtos = append([]models.ProdutoOS(nil), (*campos.Produtos)...)
	}
	if campos.Despesas != nil {
		o.Despesas = append([]models.DespesaOS(nil), (*campos.Despesas)...)
	}
	o.SyncStatus = campos.SyncStatus
	o.UpdatedAt = campos.UpdatedAt
	return nil
}

func (s *Store) RemoverOrdem(ctx context.Context, id string, em time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.ordens[id]
	if !ok || o.DeletedAt != nil {
		return models.ErrNaoEncontrado
	}
	o.DeletedAt = &em
	return nil
}

func (s *Store) BuscarIDsPorFaceta(ctx context.Context, faceta models.Faceta, termo string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	if faceta == models.FacetaNomeCliente {
		for _, c := range s.clientes {
			if contem(c.Nome, termo) {
				ids = append(ids, c.ID)
			}
		}
		sort.Strings(ids)
		return ids, nil
	}

	for _, o := range s.ordens {
		if ordemCasaFaceta(o, faceta, termo) {
			ids = append(ids, o.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) BuscarIDsPorClientes(ctx context.Context, clienteIDs []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alvo := make(map[string]struct{}, len(clienteIDs))
	for _, id := range clienteIDs {
		alvo[id] = struct{}{}
	}
	var ids []string
	for _, o := range s.ordens {
		if _, ok := alvo[o.ClienteID]; ok {
			ids = append(ids, o.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func ordemCasaFaceta(o *models.OrdemServico, faceta models.Faceta, termo string) bool {
	switch faceta {
	case models.FacetaServico:
		for _, item := range o.Servicos {
			if contem(item.NomeServico, termo) {
				return true
			}
		}
	case models.FacetaProduto:
		for _, item := range o.Produtos {
			if contem(item.NomeProduto, termo) {
				return true
			}
		}
	case models.FacetaNumero:
		return contem(o.OSNumeroHumano, termo)
	}
	return false
}

// comCliente devolve uma cópia com o cliente embutido; exige lock de leitura
func (s *Store) comCliente(o *models.OrdemServico) *models.OrdemServico {
	c := copiarOrdem(o)
	if cliente, ok := s.clientes[o.ClienteID]; ok {
		c.Cliente = &cliente
	}
	return c
}

func copiarOrdem(o *models.OrdemServico) *models.OrdemServico {
	c := *o
	c.Cliente = nil
	if o.Equipamento != nil {
		e := *o.Equipamento
		c.Equipamento = &e
	}
	c.Servicos = append([]models.ServicoOS(nil), o.Servicos...)
	c.Produtos = append([]models.ProdutoOS(nil), o.Produtos...)
	c.Despesas = append([]models.DespesaOS(nil), o.Despesas...)
	return &c
}

func vazioComoNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func pagina[T any](itens []T, offset, limit int) []T {
	if offset < 0 || offset >= len(itens) {
		return []T{}
	}
	fim := len(itens)
	if limit > 0 && offset+limit < fim {
		fim = offset + limit
	}
	return itens[offset:fim]
}
