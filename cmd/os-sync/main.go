// os-sync envia para a API os rascunhos de OS guardados na fila offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"progestao-os/internal/config"
	"progestao-os/internal/offline"
	"progestao-os/pkg/osapi"
)

func main() {
	intervalo := flag.Duration("intervalo", 0, "intervalo entre envios; 0 envia uma vez e sai")
	gerarHash := flag.Bool("gerar-hash", false, "imprime o SERVICE_KEY_HASH de OS_API_KEY e sai")
	flag.Parse()

	cfg, err := config.Carregar()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}

	if *gerarHash {
		if cfg.OSAPIKey == "" {
			log.Fatal("OS_API_KEY não definida")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.OSAPIKey), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Erro ao gerar hash da chave: %v", err)
		}
		fmt.Println(string(hash))
		return
	}
	logger := config.SetupLogger(cfg.LogLevel)

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("REDIS_URL inválida")
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fila := offline.NovaFila(rdb, cfg.OfflineQueueKey, logger)
	api := osapi.New(cfg.OSAPIURL, cfg.OSAPIKey, logger)

	if *intervalo <= 0 {
		if err := enviar(ctx, fila, api, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(*intervalo)
	defer ticker.Stop()
	for {
		_ = enviar(ctx, fila, api, logger)
		select {
		case <-ctx.Done():
			logger.Info("Sincronização encerrada")
			return
		case <-ticker.C:
		}
	}
}

func enviar(ctx context.Context, fila *offline.Fila, api *osapi.Client, logger *logrus.Logger) error {
	if !api.Online(ctx) {
		logger.Info("API indisponível, rascunhos mantidos na fila")
		return nil
	}

	resultado, err := fila.Enviar(ctx, api)
	if err != nil {
		logger.WithError(err).Error("Erro ao enviar fila offline")
		return err
	}
	for _, c := range resultado.Conflicts {
		logger.WithFields(logrus.Fields{
			"ordem_id": c.ID,
			"erro":     c.Error,
		}).Warn("Rascunho rejeitado pela API")
	}
	return nil
}
