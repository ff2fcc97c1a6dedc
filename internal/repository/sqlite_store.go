package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"project_atendimento/internal/entities"
)

// SQLiteStore mirrors PostgresStore on database/sql. Timestamps are unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *entities.Message) (bool, error) {
	msg.Type = msgType(msg)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO mensagens (tenant, telefone, origem, autor, tipo, conteudo, message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING id
	`, msg.TenantID, msg.Contact, string(msg.Channel), string(msg.Author), msg.Type,
		msg.Content, nullable(msg.ProviderMessageID), msg.CreatedAt.UnixNano()).Scan(&msg.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert message: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) HasProviderMessage(ctx context.Context, tenantID, providerMessageID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM mensagens WHERE tenant = ? AND message_id = ?)",
		tenantID, providerMessageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup message id: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStore) RecentMessages(ctx context.Context, tenantID, contact string, limit int, excludeID int64) ([]entities.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant, telefone, origem, autor, tipo, conteudo, COALESCE(message_id, ''), created_at
		FROM mensagens
		WHERE tenant = ? AND telefone = ? AND id <> ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, tenantID, contact, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	messages := []entities.Message{}
	for rows.Next() {
		m, err := scanSQLiteMessage(rows)
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

func (s *SQLiteStore) LastMessage(ctx context.Context, tenantID, contact string) (*entities.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant, telefone, origem, autor, tipo, conteudo, COALESCE(message_id, ''), created_at
		FROM mensagens
		WHERE tenant = ? AND telefone = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, tenantID, contact)
	m, err := scanSQLiteMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) GetStatus(ctx context.Context, tenantID, contact string) (entities.ContactStatus, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT status FROM contatos WHERE tenant = ? AND telefone = ?", tenantID, contact).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.StatusUnknown, nil
	}
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	return entities.ParseContactStatus(raw)
}

func (s *SQLiteStore) CompareAndSwapStatus(ctx context.Context, tenantID, contact string, from, to entities.ContactStatus) (bool, error) {
	now := time.Now().UnixNano()
	var res sql.Result
	var err error
	if from == entities.StatusUnknown {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO contatos (tenant, telefone, status, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (tenant, telefone) DO NOTHING
		`, tenantID, contact, string(to), now)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE contatos SET status = ?, updated_at = ?
			WHERE tenant = ? AND telefone = ? AND status = ?
		`, string(to), now, tenantID, contact, string(from))
	}
	if err != nil {
		return false, fmt.Errorf("swap status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap status: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMessage(row rowScanner) (entities.Message, error) {
	var m entities.Message
	var channel, author string
	var createdAt int64
	err := row.Scan(&m.ID, &m.TenantID, &m.Contact, &channel, &author, &m.Type, &m.Content, &m.ProviderMessageID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scan message: %w", err)
	}
	m.Channel = entities.Channel(channel)
	m.Author = entities.Author(author)
	m.CreatedAt = time.Unix(0, createdAt)
	return m, nil
}
