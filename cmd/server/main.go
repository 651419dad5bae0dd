package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	_ "progestao-os/docs"
	"progestao-os/internal/config"
	"progestao-os/internal/handlers"
	"progestao-os/internal/middleware"
	"progestao-os/internal/observability"
	"progestao-os/internal/services"
	"progestao-os/pkg/database"
	"progestao-os/pkg/memoria"
	"progestao-os/pkg/supabase"
)

// @title ProGestão OS API
// @version 1.0
// @description API de ordens de serviço: clientes, equipamentos, serviços, produtos, despesas e sincronização offline
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Carregar configuração
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}

	// Configurar logger
	logger := config.SetupLogger(cfg.LogLevel)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := abrirStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Erro ao inicializar armazenamento")
	}

	metricas := observability.NovasMetricas()

	// Serviços
	clientes := services.NewClienteService(store, logger)
	catalogo := services.NewCatalogoService(store, logger)
	ordens := services.NewOrdemService(store, clientes, catalogo, logger)
	ordens.SetMetricas(metricas)

	authCfg := middleware.AuthConfig{
		JWTSecret:        cfg.SupabaseJWTSecret,
		ChaveServicoHash: cfg.ServiceKeyHash,
		Obrigatorio:      cfg.AuthRequired,
		Logger:           logger,
	}
	if cfg.SupabaseJWTSecret == "" && cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		authCfg.Validador = supabase.NewAuthClient(cfg.SupabaseURL, cfg.SupabaseKey)
	}

	router := handlers.SetupRouter(handlers.Dependencias{
		Ordens:      ordens,
		Clientes:    clientes,
		Catalogo:    catalogo,
		Store:       store,
		Backend:     cfg.StoreBackend,
		Metricas:    metricas,
		Auth:        authCfg,
		CORS:        middleware.CORSConfig{OrigensExtras: cfg.CORSAllowedOrigins, OrigemPadrao: cfg.CORSDefaultOrigin},
		SSLRedirect: cfg.SecureSSLRedirect,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"backend": cfg.StoreBackend,
		}).Info("Iniciando servidor")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Erro ao iniciar servidor")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := multierr.Combine(srv.Shutdown(shutdownCtx), store.Close()); err != nil {
		logger.WithError(err).Error("Erro ao encerrar servidor")
		os.Exit(1)
	}
}

// abrirStore escolhe o backend de armazenamento configurado
func abrirStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (services.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.NewClient(
			cfg.DBHost, cfg.DBPort, cfg.DBName,
			cfg.DBUser, cfg.DBPassword, cfg.DBSSLMode,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao inicializar cliente PostgreSQL: %w", err)
		}
		if cfg.DBAutoMigrate {
			if err := db.RunMigrations(ctx); err != nil {
				return nil, multierr.Append(err, db.Close())
			}
		}
		return db, nil

	case config.BackendSupabase:
		sb, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, logger)
		if err != nil {
			return nil, fmt.Errorf("erro ao inicializar cliente Supabase: %w", err)
		}
		return sb, nil

	default:
		logger.Warn("Usando armazenamento em memória; os dados serão perdidos ao reiniciar")
		return memoria.New(), nil
	}
}
