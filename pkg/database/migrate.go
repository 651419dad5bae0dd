package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations aplica as migrations pendentes embutidas no binário
func (c *Client) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("erro ao configurar dialeto das migrations: %w", err)
	}

	c.logger.Info("Executando migrations")
	if err := goose.UpContext(ctx, c.db, "migrations"); err != nil {
		return fmt.Errorf("erro ao executar migrations: %w", err)
	}
	c.logger.Info("Migrations executadas com sucesso")
	return nil
}
