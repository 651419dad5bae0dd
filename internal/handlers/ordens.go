package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
	"progestao-os/internal/services"
)

// OrdemHandler expõe as operações de ordens de serviço
type OrdemHandler struct {
	service *services.OrdemService
	logger  *logrus.Logger
}

// NewOrdemHandler cria uma nova instância do OrdemHandler
func NewOrdemHandler(service *services.OrdemService, logger *logrus.Logger) *OrdemHandler {
	return &OrdemHandler{service: service, logger: logger}
}

// Listar godoc
// @Summary Listar ordens de serviço
// @Description Busca paginada com filtros de status, período e texto livre (cliente, serviço, produto ou número)
// @Tags ordens
// @Produce json
// @Param query query string false "Texto livre (até 100 caracteres)"
// @Param status query string false "Status" Enums(rascunho, aberta, em_andamento, concluida, cancelada)
// @Param date_from query string false "Data inicial (RFC3339 ou AAAA-MM-DD)"
// @Param date_to query string false "Data final (RFC3339 ou AAAA-MM-DD)"
// @Param page query int false "Página" default(1)
// @Param size query int false "Tamanho da página" default(20)
// @Success 200 {object} models.Resposta{data=models.Pagina[models.OrdemServico]}
// @Failure 400 {object} models.Resposta
// @Failure 500 {object} models.Resposta
// @Router /api/orders [get]
func (h *OrdemHandler) Listar(c *gin.Context) {
	var filtro models.FiltroOrdens
	if err := c.ShouldBindQuery(&filtro); err != nil {
		responderErro(c, h.logger, erroDeConsulta(c, h.logger, err))
		return
	}

	pagina, err := h.service.Listar(c.Request.Context(), filtro)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	responderOK(c, http.StatusOK, pagina)
}

// Buscar godoc
// @Summary Buscar ordem de serviço
// @Description Retorna a OS com cliente, equipamento, serviços, produtos e despesas
// @Tags ordens
// @Produce json
// @Param id path string true "ID da OS"
// @Success 200 {object} models.Resposta{data=models.OrdemServico}
// @Failure 404 {object} models.Resposta
// @Router /api/orders/{id} [get]
func (h *OrdemHandler) Buscar(c *gin.Context) {
	ordem, err := h.service.Buscar(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	responderOK(c, http.StatusOK, ordem)
}

// Criar godoc
// @Summary Criar ordem de serviço
// @Description Valida o rascunho, recalcula os totais e grava a OS com um número gerado
// @Tags ordens
// @Accept json
// @Produce json
// @Param ordem body models.OrdemRequest true "Rascunho da OS"
// @Success 201 {object} models.Resposta{data=models.OrdemServico}
// @Failure 400 {object} models.Resposta
// @Failure 409 {object} models.Resposta
// @Failure 500 {object} models.Resposta
// @Router /api/orders [post]
func (h *OrdemHandler) Criar(c *gin.Context) {
	var req models.OrdemRequest
	if err := decodificarJSON(c, &req); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	ordem, err := h.service.Criar(c.Request.Context(), &req)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	h.registrarAutor(c, ordem.ID, "criacao")
	responderOK(c, http.StatusCreated, ordem)
}

// Atualizar godoc
// @Summary Atualizar ordem de serviço
// @Description Atualização parcial; campos ausentes ficam inalterados e listas de itens são substituídas
// @Tags ordens
// @Accept json
// @Produce json
// @Param id path string true "ID da OS"
// @Param ordem body models.AtualizarOrdemRequest true "Campos a atualizar"
// @Success 200 {object} models.Resposta{data=models.OrdemServico}
// @Failure 400 {object} models.Resposta
// @Failure 404 {object} models.Resposta
// @Router /api/orders/{id} [put]
func (h *OrdemHandler) Atualizar(c *gin.Context) {
	var req models.AtualizarOrdemRequest
	if err := decodificarJSON(c, &req); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	ordem, err := h.service.Atualizar(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}

	h.registrarAutor(c, ordem.ID, "atualizacao")
	responderOK(c, http.StatusOK, ordem)
}

// Remover godoc
// @Summary Remover ordem de serviço
// @Description Exclusão lógica: marca deleted_at e oculta a OS de buscas e listagens
// @Tags ordens
// @Produce json
// @Param id path string true "ID da OS"
// @Success 200 {object} models.Resposta{data=models.Removido}
// @Failure 404 {object} models.Resposta
// @Router /api/orders/{id} [delete]
func (h *OrdemHandler) Remover(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.RemoverLogicamente(c.Request.Context(), id); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	h.registrarAutor(c, id, "remocao")
	responderOK(c, http.StatusOK, models.Removido{Deleted: true})
}

// Sincronizar godoc
// @Summary Sincronizar rascunhos offline
// @Description Aplica cada alteração por upsert (última escrita vence); falhas individuais não interrompem o lote
// @Tags ordens
// @Accept json
// @Produce json
// @Param lote body models.SyncRequest true "Alterações pendentes"
// @Success 200 {object} models.Resposta{data=models.ResultadoSync}
// @Failure 400 {object} models.Resposta
// @Router /api/orders/sync [post]
func (h *OrdemHandler) Sincronizar(c *gin.Context) {
	var req models.SyncRequest
	if err := decodificarJSON(c, &req); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	resultado := h.service.Sincronizar(c.Request.Context(), req.Changes)
	responderOK(c, http.StatusOK, resultado)
}

func (h *OrdemHandler) registrarAutor(c *gin.Context, ordemID, operacao string) {
	usuario, ok := UsuarioAtual(c)
	if !ok {
		return
	}
	h.logger.WithFields(logrus.Fields{
		"ordem_id": ordemID,
		"operacao": operacao,
		"user_id":  usuario.UserID,
	}).Debug("Operação autenticada em OS")
}
