package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const menuColumns = `item_id, item_name, category, price, gst_rate, image_url`

const uniqueViolation = "23505"

func scanMenuItem(row pgx.Row) (billing.MenuItem, error) {
	var m billing.MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Price, &m.GSTRate, &m.ImageURL)
	return m, err
}

// ListMenu returns the whole menu, or one category of it when category is set.
func (r *Repo) ListMenu(ctx context.Context, category string) ([]billing.MenuItem, error) {
	q := `SELECT ` + menuColumns + ` FROM menu`
	var args []any
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY category, item_name`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) FetchMenuItem(ctx context.Context, itemID int64) (billing.MenuItem, error) {
	m, err := scanMenuItem(r.DB.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu WHERE item_id=$1`, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return billing.MenuItem{}, fmt.Errorf("%w: %d", ErrMenuItemNotFound, itemID)
	}
	return m, err
}

func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT DISTINCT category FROM menu ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) AddMenuItem(ctx context.Context, m billing.MenuItem) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO menu(item_name, category, price, gst_rate, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING item_id`,
		m.Name, m.Category, m.Price, m.GSTRate, m.ImageURL,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateMenuItem, m.Name)
	}
	return id, err
}

// UpdateMenuItem overwrites the item in place; past orders keep their own
// price snapshot.
func (r *Repo) UpdateMenuItem(ctx context.Context, m billing.MenuItem) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE menu SET item_name=$2, category=$3, price=$4, gst_rate=$5, image_url=$6
		WHERE item_id=$1`,
		m.ID, m.Name, m.Category, m.Price, m.GSTRate, m.ImageURL,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateMenuItem, m.Name)
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrMenuItemNotFound, m.ID)
	}
	return nil
}

func (r *Repo) DeleteMenuItem(ctx context.Context, itemID int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM menu WHERE item_id=$1`, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrMenuItemNotFound, itemID)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
