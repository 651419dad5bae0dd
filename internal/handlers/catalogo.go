package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progestao-os/internal/models"
	"progestao-os/internal/services"
)

// CatalogoHandler atende um dos catálogos (tipos de equipamento ou marcas)
type CatalogoHandler struct {
	service  *services.CatalogoService
	catalogo models.Catalogo
	logger   *logrus.Logger
}

// NewCatalogoHandler cria o handler de um catálogo específico
func NewCatalogoHandler(service *services.CatalogoService, catalogo models.Catalogo, logger *logrus.Logger) *CatalogoHandler {
	return &CatalogoHandler{service: service, catalogo: catalogo, logger: logger}
}

// Listar godoc
// @Summary Listar itens de catálogo
// @Description Usado por /api/equipment-types e /api/brands
// @Tags catalogo
// @Produce json
// @Param q query string false "Filtro por nome"
// @Param page query int false "Página" default(1)
// @Param size query int false "Tamanho da página" default(20)
// @Success 200 {object} models.Resposta{data=models.Pagina[models.ItemCatalogo]}
// @Failure 400 {object} models.Resposta
// @Router /api/equipment-types [get]
// @Router /api/brands [get]
func (h *CatalogoHandler) Listar(c *gin.Context) {
	var filtro models.FiltroCatalogo
	if err := c.ShouldBindQuery(&filtro); err != nil {
		responderErro(c, h.logger, erroDeConsulta(c, h.logger, err))
		return
	}

	pagina, err := h.service.Listar(c.Request.Context(), h.catalogo, filtro)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	responderOK(c, http.StatusOK, pagina)
}

// Criar godoc
// @Summary Criar item de catálogo
// @Description Normaliza o nome e rejeita duplicados sem diferenciar maiúsculas
// @Tags catalogo
// @Accept json
// @Produce json
// @Param item body models.ItemCatalogoRequest true "Nome do item"
// @Success 201 {object} models.Resposta{data=models.ItemCatalogo}
// @Failure 400 {object} models.Resposta
// @Failure 409 {object} models.Resposta
// @Router /api/equipment-types [post]
// @Router /api/brands [post]
func (h *CatalogoHandler) Criar(c *gin.Context) {
	var req models.ItemCatalogoRequest
	if err := decodificarJSON(c, &req); err != nil {
		responderErro(c, h.logger, err)
		return
	}

	item, err := h.service.Criar(c.Request.Context(), h.catalogo, req.Nome)
	if err != nil {
		responderErro(c, h.logger, err)
		return
	}
	responderOK(c, http.StatusCreated, item)
}
