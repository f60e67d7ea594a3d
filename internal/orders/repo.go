package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repo uses.
type DB interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct{ DB DB }

// SaveOrder writes the header and all lines in one transaction. Either every
// row is committed or none is.
// Idempotent via external_id: if an order with the same external id already
// exists its id is returned with existed=true and nothing is written.
func (r *Repo) SaveOrder(ctx context.Context, agg billing.OrderAggregate) (orderID int64, existed bool, err error) {
	ext := agg.Header.ExternalID
	if ext != "" {
		if orderID, existed, err = r.orderByExternalID(ctx, ext); err != nil || existed {
			return orderID, existed, err
		}
	}

	orderID, err = r.insertAggregate(ctx, agg)
	if err != nil && ext != "" && isUniqueViolation(err) {
		// lost the race to a concurrent save of the same external id
		if id, ok, lerr := r.orderByExternalID(ctx, ext); lerr == nil && ok {
			return id, true, nil
		}
	}
	if err != nil {
		return 0, false, err
	}
	return orderID, false, nil
}

func (r *Repo) orderByExternalID(ctx context.Context, ext string) (int64, bool, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `SELECT order_id FROM orders WHERE external_id=$1`, ext).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: lookup external id: %w", ErrPersistence, err)
	}
	return id, true, nil
}

func (r *Repo) insertAggregate(ctx context.Context, agg billing.OrderAggregate) (orderID int64, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", ErrPersistence, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	orderID, err = insertOrder(ctx, tx, agg.Header)
	if err != nil {
		return 0, fmt.Errorf("%w: insert order: %w", ErrPersistence, err)
	}
	if err = insertOrderItems(ctx, tx, orderID, agg.Lines); err != nil {
		return 0, fmt.Errorf("%w: insert items for order %d: %w", ErrPersistence, orderID, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ErrPersistence, err)
	}
	return orderID, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, h billing.OrderHeader) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO orders(external_id, mode, payment, ordered_at, subtotal, discount_pct, discount_amount, tip_pct, tip_amount, total)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING order_id`,
		h.ExternalID, string(h.Mode), string(h.Payment), h.Timestamp, h.Subtotal,
		h.DiscountPct, h.DiscountAmount, h.TipPct, h.TipAmount, h.Total,
	).Scan(&id)
	return id, err
}

func insertOrderItems(ctx context.Context, tx pgx.Tx, orderID int64, lines []billing.OrderLine) error {
	for _, l := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, item_id, qty, total, item_name, unit_price, gst_rate, gst_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			orderID, l.ItemID, l.Qty, l.Total, l.Name, l.UnitPrice, l.GSTRate, l.GSTAmount,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const orderColumns = `order_id, external_id, mode, payment, ordered_at, subtotal, discount_pct, discount_amount, tip_pct, tip_amount, total`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var mode, payment string
	err := row.Scan(&o.ID, &o.ExternalID, &mode, &payment, &o.OrderedAt, &o.Subtotal,
		&o.DiscountPct, &o.DiscountAmount, &o.TipPct, &o.TipAmount, &o.Total)
	o.Mode = billing.Mode(mode)
	o.Payment = billing.Payment(payment)
	return o, err
}

func (r *Repo) GetOrder(ctx context.Context, orderID int64) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	return o, err
}

// ListOrders returns matching orders, newest first.
func (r *Repo) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	var where []string
	var args []any
	if f.OrderID != 0 {
		args = append(args, f.OrderID)
		where = append(where, fmt.Sprintf("order_id = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, fmt.Sprintf("ordered_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where = append(where, fmt.Sprintf("ordered_at <= $%d", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += " ORDER BY ordered_at DESC, order_id DESC"

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) GetOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, item_id, qty, total, item_name, unit_price, gst_rate, gst_amount
		FROM order_items WHERE order_id=$1 ORDER BY line_no`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.OrderID, &it.ItemID, &it.Qty, &it.Total,
			&it.Name, &it.UnitPrice, &it.GSTRate, &it.GSTAmount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ClearOrders deletes every order and order line. Orders are never deleted
// one at a time.
func (r *Repo) ClearOrders(ctx context.Context) (deleted int64, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", ErrPersistence, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM order_items`); err != nil {
		return 0, fmt.Errorf("%w: delete items: %w", ErrPersistence, err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, fmt.Errorf("%w: delete orders: %w", ErrPersistence, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ErrPersistence, err)
	}
	return ct.RowsAffected(), nil
}
