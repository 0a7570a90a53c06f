package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/tx"
)

// PostgresStore keeps events in the audit_events table. It joins a
// transaction carried by ctx, so an event recorded inside a unit of work
// commits or rolls back with it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}
	var userID any
	if !event.UserID.IsNil() {
		userID = event.UserID.String()
	}

	_, err = tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (id, event_type, user_id, subject, attributes, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), string(event.Type), userID, event.Subject, string(attrs), event.RequestID, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the most recent limit events, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, `
		SELECT event_type, user_id, subject, attributes, request_id, created_at
		FROM audit_events
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e      Event
			typ    string
			userID uuid.NullUUID
			attrs  []byte
		)
		if err := rows.Scan(&typ, &userID, &e.Subject, &attrs, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Type = EventType(typ)
		if userID.Valid {
			e.UserID = id.UserID(userID.UUID)
		}
		if err := json.Unmarshal(attrs, &e.Attributes); err != nil {
			return nil, fmt.Errorf("decode audit attributes: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
