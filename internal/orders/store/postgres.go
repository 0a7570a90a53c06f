// Package store persists orders and their lines.
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
	"github.com/lib/pq"

	"farmshop/internal/orders/models"
	"farmshop/internal/platform/postgres"
	id "farmshop/pkg/domain"
	"farmshop/pkg/platform/sentinel"
	"farmshop/pkg/platform/tx"
)

const dialect = "postgres"

var orderColumns = []any{
	"id", "order_number", "user_id", "status", "total_amount",
	"shipping_address", "shipping_city", "shipping_state", "shipping_zip",
	"delivery_method", "customer_name", "created_at", "updated_at",
}

const itemsQuery = `SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, p.name, p.unit
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	WHERE oi.order_id = ANY($1)
	ORDER BY p.name`

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, "pgx")}
}

// Create inserts the order and its lines in one transaction and sets the
// assigned order number on o.
func (s *PostgresStore) Create(ctx context.Context, o *models.Order) error {
	return tx.Run(ctx, s.db.DB, func(ctx context.Context) error {
		q := tx.Ext(ctx, s.db)
		row := q.QueryRowxContext(ctx, `INSERT INTO orders (
				id, user_id, status, total_amount, shipping_address, shipping_city, shipping_state,
				shipping_zip, delivery_method, customer_name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING order_number`,
			o.ID, o.UserID, o.Status, o.TotalAmount, o.ShippingAddress, o.ShippingCity, o.ShippingState,
			o.ShippingZip, o.DeliveryMethod, o.CustomerName, o.CreatedAt, o.UpdatedAt)
		if err := row.Scan(&o.Number); err != nil {
			if postgres.IsForeignKeyViolation(err) {
				return sentinel.ErrInvalidState
			}
			return fmt.Errorf("insert order: %w", err)
		}
		if len(o.Items) == 0 {
			return nil
		}

		rows := make([]any, 0, len(o.Items))
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			rows = append(rows, goqu.Record{
				"id":         o.Items[i].ID,
				"order_id":   o.ID,
				"product_id": o.Items[i].ProductID,
				"quantity":   o.Items[i].Quantity,
				"unit_price": o.Items[i].UnitPrice,
			})
		}
		query, args, err := goqu.Dialect(dialect).Insert("order_items").Rows(rows...).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build order items insert: %w", err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			if postgres.IsForeignKeyViolation(err) {
				return sentinel.ErrInvalidState
			}
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, orderID id.OrderID) (*models.Order, error) {
	query, args, err := goqu.Dialect(dialect).From("orders").Select(orderColumns...).
		Where(goqu.C("id").Eq(orderID)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build order query: %w", err)
	}
	var o models.Order
	if err := sqlx.GetContext(ctx, tx.Ext(ctx, s.db), &o, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	orders := []*models.Order{&o}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Order, error) {
	ds := goqu.Dialect(dialect).From("orders").Select(orderColumns...).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.I("created_at").Desc())
	return s.list(ctx, ds)
}

// ListAdmin filters by status and a free-text query over order number,
// customer name and status, newest first.
func (s *PostgresStore) ListAdmin(ctx context.Context, filter models.AdminFilter) ([]*models.Order, error) {
	ds := goqu.Dialect(dialect).From("orders").Select(orderColumns...).
		Order(goqu.I("created_at").Desc())
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + q + "%"
		ds = ds.Where(goqu.Or(
			goqu.L("order_number::text").Like(like),
			goqu.C("customer_name").ILike(like),
			goqu.C("status").ILike(like),
		))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	return s.list(ctx, ds)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, orderID id.OrderID, status models.Status, at time.Time) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, status, at, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireAffected(res)
}

// Delete removes the order; its lines go with it through ON DELETE CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, orderID id.OrderID) error {
	res, err := tx.Ext(ctx, s.db).ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) CountByUser(ctx context.Context, userID id.UserID) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, tx.Ext(ctx, s.db), &n, `SELECT count(*) FROM orders WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) list(ctx context.Context, ds *goqu.SelectDataset) ([]*models.Order, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build order query: %w", err)
	}
	var orders []*models.Order
	if err := sqlx.SelectContext(ctx, tx.Ext(ctx, s.db), &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the lines of all orders in one query.
func (s *PostgresStore) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[id.OrderID]*models.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID.String())
		byID[o.ID] = o
		o.Items = []models.Item{}
	}
	var items []models.Item
	if err := sqlx.SelectContext(ctx, tx.Ext(ctx, s.db), &items, itemsQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	for _, it := range items {
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return nil
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
