package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/domain"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/internal/repository"
	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/database"
	apperrors "github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithStockDecrement persists the order, its items, and the stock
// decrements atomically. Each decrement is conditional on sufficient stock,
// so two orders racing for the last units cannot both succeed: the losing
// transaction rolls back with an insufficient stock error and persists
// nothing.
func (r *OrderRepository) CreateWithStockDecrement(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range o.Items {
		item := &o.Items[i]

		ct, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return fmt.Errorf("decrement stock for product %s: %w", item.ProductID, err)
		}
		if ct.RowsAffected() == 0 {
			var available int
			if err := tx.QueryRow(ctx,
				`SELECT stock FROM products WHERE id = $1`, item.ProductID,
			).Scan(&available); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NotFound("product", item.ProductID)
				}
				return fmt.Errorf("read stock for product %s: %w", item.ProductID, err)
			}
			return apperrors.InsufficientStock(item.Name, item.Quantity, available)
		}
	}

	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping_address: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, shipping_address, payment_method,
			items_cents, tax_cents, shipping_cents, total_cents,
			is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID,
		o.UserID,
		addressJSON,
		o.PaymentMethod,
		int64(o.Totals.Items),
		int64(o.Totals.Tax),
		int64(o.Totals.Shipping),
		int64(o.Totals.Total),
		o.IsPaid,
		o.PaidAt,
		o.IsDelivered,
		o.DeliveredAt,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, name, image, variant_key,
				variant_display, unit_price_cents, quantity, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID,
			o.ID,
			item.ProductID,
			item.Name,
			item.Image,
			string(item.VariantKey),
			item.VariantDisplay,
			int64(item.UnitPrice),
			item.Quantity,
			o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, shipping_address, payment_method,
	items_cents, tax_cents, shipping_cents, total_cents,
	is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at`

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	o, err := scanOrderFields(r.db.QueryRow(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// ListByUser returns a customer's orders, newest first, with items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	userFilter := userID
	return r.list(ctx, repository.OrderFilter{UserID: &userFilter, Page: page, PerPage: perPage})
}

// List returns orders matching the filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	return r.list(ctx, filter)
}

func (r *OrderRepository) list(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.IsPaid != nil {
		conditions = append(conditions, fmt.Sprintf("is_paid = $%d", argIndex))
		args = append(args, *filter.IsPaid)
		argIndex++
	}

	if filter.IsDelivered != nil {
		conditions = append(conditions, fmt.Sprintf("is_delivered = $%d", argIndex))
		args = append(args, *filter.IsDelivered)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders     []domain.Order
		totalCount int
	)

	for rows.Next() {
		o, err := scanOrderFields(func(dest ...any) error {
			dest = append(dest, &totalCount)
			return rows.Scan(dest...)
		})
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, totalCount, nil
}

// MarkPaid records payment on an order.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $1, updated_at = $1
		WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

// MarkDelivered records delivery on an order.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = $1, updated_at = $1
		WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("mark order delivered: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, name, image, variant_key, variant_display,
		       unit_price_cents, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item       domain.OrderItem
			variantKey string
			unitPrice  int64
		)
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.Name,
			&item.Image,
			&variantKey,
			&item.VariantDisplay,
			&unitPrice,
			&item.Quantity,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.VariantKey = domain.VariantKey(variantKey)
		item.UnitPrice = domain.Cents(unitPrice)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}
	o.Items = items

	return nil
}

func scanOrderFields(scan func(dest ...any) error) (*domain.Order, error) {
	var (
		o           domain.Order
		addressJSON []byte
		items       int64
		tax         int64
		shipping    int64
		total       int64
	)

	if err := scan(
		&o.ID,
		&o.UserID,
		&addressJSON,
		&o.PaymentMethod,
		&items,
		&tax,
		&shipping,
		&total,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if addressJSON != nil {
		if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping_address: %w", err)
		}
	}

	o.Totals = domain.OrderTotals{
		Items:    domain.Cents(items),
		Tax:      domain.Cents(tax),
		Shipping: domain.Cents(shipping),
		Total:    domain.Cents(total),
	}

	return &o, nil
}
