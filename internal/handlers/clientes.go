package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
	"progestao-os/internal/services"
)

// ClienteHandler expõe o cadastro de clientes
type ClienteHandler struct {
	service *services.ClienteService
	logger  *logrus.Logger
}

// NewClienteHandler cria uma nova instância do ClienteHandler
func NewClienteHandler(service *services.ClienteService, logger *logrus.Logger) *ClienteHandler {
	return &ClienteHandler{service: service, logger: logger}
}

// Listar godoc
// @Summary Listar clientes
// @Tags clientes
// @Produce json
// @Param q query string false "Filtro por nome, telefone ou email"
// @Param page query int false "Página" default(1)
// @Param size query int false "Tamanho da página" default(20)
// @Success 200 {object} models.Resposta{data=models.Pagina[models.Cliente]}
// @Failure 400 {object} models.Resposta
// @Router /api/clients [get]
func (h *ClienteHandler) Listar(c *gin.Context) {
	var filtro models.FiltroClientes
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
// @Summary Buscar cliente
// @Tags clientes
// @Produce json
// @Param id path string true "ID do cliente"
// @Success 200 {object} models.Resposta{data=models.Cliente}
// @Failure 404 {object} models.Resposta
// @Router /api/clients/{id} [get]
func (h *ClienteHandler) Buscar(c *gin.Context) {
	cliente, err := h.service.Buscar(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	responderOK(c, http.StatusOK, cliente)
}

// Criar godoc
// @Summary Criar cliente
// @Description Valida nome, telefone (normalizado para E.164) e email
// @Tags clientes
// @Accept json
// @Produce json
// @Param cliente body models.ClienteRequest true "Dados do cliente"
// @Success 201 {object} models.Resposta{data=models.Cliente}
// @Failure 400 {object} models.Resposta
// @Router /api/clients [post]
func (h *ClienteHandler) Criar(c *gin.Context) {
	var req models.ClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Debug("Erro ao fazer bind do JSON")
		responderErro(c, h.logger, erroDeBind(err))
		return
	}

	cliente, err := h.service.Criar(c.Request.Context(), &req)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	responderOK(c, http.StatusCreated, cliente)
}
