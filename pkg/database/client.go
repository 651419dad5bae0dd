package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const codigoViolacaoUnica = "23505"

// consultor é satisfeito por *sql.DB e *sql.Tx
type consultor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Client representa o store PostgreSQL
type Client struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewClient cria uma nova instância do cliente PostgreSQL
func NewClient(host, port, dbname, user, password, sslmode string, logger *logrus.Logger) (*Client, error) {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		host, port, dbname, user, password, sslmode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar com PostgreSQL: %w", err)
	}

	// Configurar pool de conexões
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao testar conexão PostgreSQL: %w", err)
	}

	logger.Info("Conectado ao PostgreSQL com sucesso")

	return &Client{
		db:     db,
		logger: logger,
	}, nil
}

// Close fecha a conexão com o banco
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifica se o banco está respondendo
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// transacao executa fn dentro de uma transação, desfazendo em caso de erro
func (c *Client) transacao(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		c.logger.WithError(err).Error("Erro ao fazer commit da transação")
		return fmt.Errorf("erro ao confirmar transação: %w", err)
	}
	return nil
}

// violacaoUnica retorna a constraint violada quando err é uma violação de unicidade
func violacaoUnica(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codigoViolacaoUnica {
		return pqErr.Constraint, true
	}
	return "", false
}
