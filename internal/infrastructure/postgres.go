package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresClient{Pool: pool}, nil
}

// Migrate creates the contact and message tables. Safe to run repeatedly.
func (p *PostgresClient) Migrate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS contatos (
			tenant VARCHAR(64) NOT NULL,
			telefone VARCHAR(64) NOT NULL,
			status VARCHAR(32) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (tenant, telefone)
		);
	`)
	if err != nil {
		return fmt.Errorf("create contatos table: %w", err)
	}

	// message_id is NULL when the provider sends no stable id; NULLs never collide
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS mensagens (
			id BIGSERIAL PRIMARY KEY,
			tenant VARCHAR(64) NOT NULL,
			telefone VARCHAR(64) NOT NULL,
			origem VARCHAR(16) NOT NULL,
			autor VARCHAR(16) NOT NULL,
			tipo VARCHAR(16) NOT NULL DEFAULT 'text',
			conteudo TEXT NOT NULL,
			message_id VARCHAR(255),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT mensagens_tenant_message_id_key UNIQUE (tenant, message_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("create mensagens table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS mensagens_history_idx
		ON mensagens (tenant, telefone, created_at DESC, id DESC);
	`)
	if err != nil {
		return fmt.Errorf("create mensagens history index: %w", err)
	}

	slog.Info("postgres schema ready")
	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
