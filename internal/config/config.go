package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Backends de armazenamento suportados
const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMemoria  = "memoria"
)

// Config representa a configuração da aplicação
type Config struct {
	// Servidor
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	// PostgreSQL Database
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string `envconfig:"DB_PORT" default:"5432"`
	DBName        string `envconfig:"DB_NAME" default:"progestao"`
	DBUser        string `envconfig:"DB_USER"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBSSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	// Supabase
	SupabaseURL       string `envconfig:"SUPABASE_URL"`
	SupabaseKey       string `envconfig:"SUPABASE_KEY"`
	SupabaseJWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`
	AuthRequired      bool   `envconfig:"AUTH_REQUIRED" default:"false"`
	ServiceKeyHash    string `envconfig:"SERVICE_KEY_HASH"`

	// CORS e segurança
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	CORSDefaultOrigin  string   `envconfig:"CORS_DEFAULT_ORIGIN" default:"https://progestao.netlify.app"`
	SecureSSLRedirect  bool     `envconfig:"SECURE_SSL_REDIRECT" default:"false"`

	// Fila offline e cliente da API
	RedisURL        string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	OfflineQueueKey string `envconfig:"OFFLINE_QUEUE_KEY" default:"os_rascunhos"`
	OSAPIURL        string `envconfig:"OS_API_URL" default:"http://localhost:8080/api"`
	OSAPIKey        string `envconfig:"OS_API_KEY"`
}

// LoadConfig carrega e valida a configuração do servidor
func LoadConfig() (*Config, error) {
	cfg, err := Carregar()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validar(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Carregar lê .env e variáveis de ambiente sem validar o backend,
// usado por ferramentas que não abrem o armazenamento
func Carregar() (*Config, error) {
	// Carregar arquivo .env se existir
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("erro ao ler variáveis de ambiente: %w", err)
	}
	return &cfg, nil
}

// Validar verifica as chaves obrigatórias do backend escolhido
func (c *Config) Validar() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))

	switch c.StoreBackend {
	case BackendPostgres:
		if c.DBHost == "" {
			return fmt.Errorf("DB_HOST é obrigatório")
		}
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME é obrigatório")
		}
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER é obrigatório")
		}
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD é obrigatório")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL é obrigatório")
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_KEY é obrigatório")
		}
	case BackendMemoria:
	default:
		return fmt.Errorf("STORE_BACKEND inválido: %q (use postgres, supabase ou memoria)", c.StoreBackend)
	}

	if c.AuthRequired && c.SupabaseJWTSecret == "" && (c.SupabaseURL == "" || c.SupabaseKey == "") && c.ServiceKeyHash == "" {
		return fmt.Errorf("AUTH_REQUIRED exige SUPABASE_JWT_SECRET, SUPABASE_URL e SUPABASE_KEY ou SERVICE_KEY_HASH")
	}
	return nil
}

// SetupLogger configura o logger baseado no nível de log
func SetupLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warn("Nível de log inválido, usando 'info'")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
