package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"farmshop/internal/catalog/models"
	"farmshop/internal/platform/postgres"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/platform/tx"
)

const productColumns = `id, name, description, price, unit, stock_quantity, category_id, disabled, image_url, created_at, updated_at`

// PostgresStore persists the catalog through sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "pgx")}
}

func (s *PostgresStore) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE ($1 OR NOT disabled) AND ($2::uuid IS NULL OR category_id = $2)
		ORDER BY name`
	var products []*models.Product
	if err := sqlx.SelectContext(ctx, tx.Ext(ctx, s.db), &products, query, filter.IncludeDisabled, categoryArg(filter.CategoryID)); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	var p models.Product
	err := sqlx.GetContext(ctx, tx.Ext(ctx, s.db), &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *models.Product) error {
	_, err := tx.Ext(ctx, s.db).ExecContext(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Description, p.Price, p.Unit, p.StockQuantity, categoryArg(p.CategoryID),
		p.Disabled, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrInvalidState
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx, `UPDATE products SET
		name = $2, description = $3, price = $4, unit = $5, stock_quantity = $6,
		category_id = $7, disabled = $8, image_url = $9, updated_at = $10
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Unit, p.StockQuantity, categoryArg(p.CategoryID),
		p.Disabled, p.ImageURL, p.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrInvalidState
		}
		return fmt.Errorf("update product: %w", err)
	}
	return requireAffected(res)
}

// AdjustStock applies delta atomically in SQL. There is no floor: stock may
// go negative when concurrent checkouts oversell.
func (s *PostgresStore) AdjustStock(ctx context.Context, productID id.ProductID, delta int) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $1 WHERE id = $2`, delta, productID)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) DetachCategory(ctx context.Context, categoryID id.CategoryID) error {
	if _, err := tx.Ext(ctx, s.db).ExecContext(ctx,
		`UPDATE products SET category_id = NULL WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("detach category: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := sqlx.SelectContext(ctx, tx.Ext(ctx, s.db), &categories,
		`SELECT id, name, created_at FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *PostgresStore) FindCategory(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	var c models.Category
	err := sqlx.GetContext(ctx, tx.Ext(ctx, s.db), &c, `SELECT id, name, created_at FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := sqlx.NamedExecContext(ctx, tx.Ext(ctx, s.db),
		`INSERT INTO categories (id, name, created_at) VALUES (:id, :name, :created_at)`, c)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, c.Name, c.ID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, categoryID id.CategoryID) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}

// categoryArg turns an optional category into a SQL argument, NULL when unset.
func categoryArg(c *id.CategoryID) any {
	if c == nil {
		return nil
	}
	return *c
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
