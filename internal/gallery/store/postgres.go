// Package store persists gallery image metadata.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"farmshop/internal/gallery/models"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
)

var dialect = goqu.Dialect("postgres")

var imageColumns = []any{"id", "title", "description", "image_url", "position", "created_at"}

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "pgx")}
}

// List returns images by position, then upload time.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Image, error) {
	query, args, err := dialect.From("gallery_images").
		Select(imageColumns...).
		Order(goqu.C("position").Asc(), goqu.C("created_at").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build gallery query: %w", err)
	}
	var out []*models.Image
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Find(ctx context.Context, imageID id.ImageID) (*models.Image, error) {
	query, args, err := dialect.From("gallery_images").
		Select(imageColumns...).
		Where(goqu.C("id").Eq(imageID.String())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build gallery query: %w", err)
	}
	var img models.Image
	if err := s.db.GetContext(ctx, &img, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find gallery image: %w", err)
	}
	return &img, nil
}

func (s *PostgresStore) Create(ctx context.Context, img *models.Image) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `INSERT INTO gallery_images
		(id, title, description, image_url, position, created_at)
		VALUES (:id, :title, :description, :image_url, :position, :created_at)`, img)
	if err != nil {
		return fmt.Errorf("create gallery image: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, img *models.Image) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE gallery_images SET title = $1, description = $2, position = $3 WHERE id = $4`,
		img.Title, img.Description, img.Position, img.ID)
	if err != nil {
		return fmt.Errorf("update gallery image: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, imageID id.ImageID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("delete gallery image: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM gallery_images`); err != nil {
		return 0, fmt.Errorf("count gallery images: %w", err)
	}
	return n, nil
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
