package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"project_atendimento/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the store needs
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertMessage(ctx context.Context, msg *entities.Message) (bool, error) {
	msg.Type = msgType(msg)
	err := s.db.QueryRow(ctx, `
		INSERT INTO mensagens (tenant, telefone, origem, autor, tipo, conteudo, message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		ON CONFLICT DO NOTHING
		RETURNING id, created_at
	`, msg.TenantID, msg.Contact, string(msg.Channel), string(msg.Author), msg.Type,
		msg.Content, nullable(msg.ProviderMessageID), nullableTime(msg.CreatedAt)).Scan(&msg.ID, &msg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // dedup hit
	}
	if err != nil {
		return false, fmt.Errorf("insert message: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) HasProviderMessage(ctx context.Context, tenantID, providerMessageID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM mensagens WHERE tenant = $1 AND message_id = $2)",
		tenantID, providerMessageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup message id: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) RecentMessages(ctx context.Context, tenantID, contact string, limit int, excludeID int64) ([]entities.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, tenant, telefone, origem, autor, tipo, conteudo, COALESCE(message_id, ''), created_at
		FROM mensagens
		WHERE tenant = $1 AND telefone = $2 AND id <> $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, tenantID, contact, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	messages := []entities.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	slices.Reverse(messages)
	return messages, nil
}

func (s *PostgresStore) LastMessage(ctx context.Context, tenantID, contact string) (*entities.Message, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, tenant, telefone, origem, autor, tipo, conteudo, COALESCE(message_id, ''), created_at
		FROM mensagens
		WHERE tenant = $1 AND telefone = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, tenantID, contact)
	m, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) GetStatus(ctx context.Context, tenantID, contact string) (entities.ContactStatus, error) {
	var raw string
	err := s.db.QueryRow(ctx, "SELECT status FROM contatos WHERE tenant = $1 AND telefone = $2", tenantID, contact).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.StatusUnknown, nil
	}
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	return entities.ParseContactStatus(raw)
}

func (s *PostgresStore) CompareAndSwapStatus(ctx context.Context, tenantID, contact string, from, to entities.ContactStatus) (bool, error) {
	var tag pgconn.CommandTag
	var err error
	if from == entities.StatusUnknown {
		tag, err = s.db.Exec(ctx, `
			INSERT INTO contatos (tenant, telefone, status, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (tenant, telefone) DO NOTHING
		`, tenantID, contact, string(to))
	} else {
		tag, err = s.db.Exec(ctx, `
			UPDATE contatos SET status = $4, updated_at = NOW()
			WHERE tenant = $1 AND telefone = $2 AND status = $3
		`, tenantID, contact, string(from), string(to))
	}
	if err != nil {
		return false, fmt.Errorf("swap status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Close() error {
	return nil
}

func scanMessage(row pgx.Row) (entities.Message, error) {
	var m entities.Message
	var channel, author string
	err := row.Scan(&m.ID, &m.TenantID, &m.Contact, &channel, &author, &m.Type, &m.Content, &m.ProviderMessageID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scan message: %w", err)
	}
	m.Channel = entities.Channel(channel)
	m.Author = entities.Author(author)
	return m, nil
}
