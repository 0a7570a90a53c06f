// Package store persists contact messages.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"farmshop/internal/contact/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

const messageColumns = `id, name, email, subject, message, read, created_at, updated_at`

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "pgx")}
}

func (s *PostgresStore) Create(ctx context.Context, m *models.Message) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `INSERT INTO contact_messages (`+messageColumns+`)
		VALUES (:id, :name, :email, :subject, :message, :read, :created_at, :updated_at)`, m)
	if err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}

// List returns messages newest first. limit <= 0 means no limit.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM contact_messages ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	var out []*models.Message
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetRead(ctx context.Context, messageID id.MessageID, read bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contact_messages SET read = $1, updated_at = $2 WHERE id = $3`, read, at, messageID)
	if err != nil {
		return fmt.Errorf("set message read: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, messageID id.MessageID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("delete contact message: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) CountUnread(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contact_messages WHERE NOT read`); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}

// ListUnread returns unread messages newest first.
func (s *PostgresStore) ListUnread(ctx context.Context, limit int) ([]*models.Message, error) {
	var out []*models.Message
	if err := s.db.SelectContext(ctx, &out, `SELECT `+messageColumns+` FROM contact_messages
		WHERE NOT read ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}
	return out, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
