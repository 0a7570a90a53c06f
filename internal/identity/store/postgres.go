package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"farmshop/internal/identity/models"
	"farmshop/internal/platform/postgres"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/platform/tx"
)

const dialect = "postgres"

const userColumns = `id, email, password_hash, first_name, last_name, phone, address, city, state, zip_code, is_admin, created_at, updated_at`

var userColumnList = []any{
	"id", "email", "password_hash", "first_name", "last_name", "phone", "address",
	"city", "state", "zip_code", "is_admin", "created_at", "updated_at",
}

// PostgresStore keeps users and profiles in one row.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "pgx")}
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := sqlx.NamedExecContext(ctx, tx.Ext(ctx, s.db), `INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password_hash, :first_name, :last_name, :phone, :address, :city, :state,
			:zip_code, :is_admin, :created_at, :updated_at)`, u)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := sqlx.GetContext(ctx, tx.Ext(ctx, s.db), &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// UpdateProfile writes the editable profile fields only.
func (s *PostgresStore) UpdateProfile(ctx context.Context, u *models.User) error {
	res, err := sqlx.NamedExecContext(ctx, tx.Ext(ctx, s.db), `UPDATE users SET
		first_name = :first_name, last_name = :last_name, phone = :phone, address = :address,
		city = :city, state = :state, zip_code = :zip_code, updated_at = :updated_at
		WHERE id = :id`, u)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) SetAdmin(ctx context.Context, userID id.UserID, isAdmin bool, at time.Time) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET is_admin = $1, updated_at = $2 WHERE id = $3`, isAdmin, at, userID)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res)
}

// List searches email and name, ordered by email.
func (s *PostgresStore) List(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	ds := goqu.Dialect(dialect).From("users").Select(userColumnList...).Order(goqu.I("email").Asc())
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + q + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("email").ILike(like),
			goqu.C("first_name").ILike(like),
			goqu.C("last_name").ILike(like),
			goqu.L("first_name || ' ' || last_name").ILike(like),
		))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}
	users := []*models.User{}
	if err := sqlx.SelectContext(ctx, tx.Ext(ctx, s.db), &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, tx.Ext(ctx, s.db), &n, `SELECT count(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
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
