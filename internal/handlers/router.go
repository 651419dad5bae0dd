package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"progestao-os/internal/middleware"
	"progestao-os/internal/models"
	"progestao-os/internal/observability"
	"progestao-os/internal/services"
)

// Dependencias reúne o que o roteador precisa para montar as rotas
type Dependencias struct {
	Ordens      *services.OrdemService
	Clientes    *services.ClienteService
	Catalogo    *services.CatalogoService
	Store       Pinger
	Backend     string
	Metricas    *observability.Metricas
	Auth        middleware.AuthConfig
	CORS        middleware.CORSConfig
	SSLRedirect bool
	Logger      *logrus.Logger
}

// SetupRouter monta o engine do gin com middlewares e rotas da API
func SetupRouter(d Dependencias) *gin.Engine {
	RegistrarValidacoes()

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(d.Logger))
	router.Use(middleware.LoggerMiddleware(d.Logger))
	if d.Metricas != nil {
		router.Use(d.Metricas.Middleware())
	}
	router.Use(middleware.SecurityMiddleware(d.SSLRedirect, gin.Mode() != gin.ReleaseMode))
	router.Use(middleware.CORSMiddleware(d.CORS))

	router.NoRoute(rotaNaoEncontrada)
	router.NoMethod(metodoNaoPermitido)

	health := NewHealthHandler(d.Store, d.Backend, d.Logger)
	router.GET("/health", health.HealthCheck)
	router.GET("/", func(c *gin.Context) {
		responderOK(c, http.StatusOK, gin.H{
			"message": "ProGestão OS API",
			"version": "1.0.0",
			"status":  "running",
		})
	})
	if d.Metricas != nil {
		router.GET("/metrics", gin.WrapH(d.Metricas.Handler()))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	ordens := NewOrdemHandler(d.Ordens, d.Logger)
	clientes := NewClienteHandler(d.Clientes, d.Logger)
	tipos := NewCatalogoHandler(d.Catalogo, models.CatalogoTiposEquipamentos, d.Logger)
	marcas := NewCatalogoHandler(d.Catalogo, models.CatalogoMarcas, d.Logger)

	if d.Auth.Logger == nil {
		d.Auth.Logger = d.Logger
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Auth))
	{
		api.GET("/orders", ordens.Listar)
		api.POST("/orders", ordens.Criar)
		api.POST("/orders/sync", ordens.Sincronizar)
		api.GET("/orders/:id", ordens.Buscar)
		api.PUT("/orders/:id", ordens.Atualizar)
		api.DELETE("/orders/:id", ordens.Remover)

		api.GET("/clients", clientes.Listar)
		api.POST("/clients", clientes.Criar)
		api.GET("/clients/:id", clientes.Buscar)

		api.GET("/equipment-types", tipos.Listar)
		api.POST("/equipment-types", tipos.Criar)
		api.GET("/brands", marcas.Listar)
		api.POST("/brands", marcas.Criar)
	}

	return router
}
