package orders

import (
	"context"
	"fmt"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
)

// rangeClause renders an inclusive ordered_at filter for the given column
// prefix, numbering placeholders after the args already present.
func rangeClause(col string, rg Range, args []any) (string, []any) {
	var clause string
	if !rg.From.IsZero() {
		args = append(args, rg.From)
		clause += fmt.Sprintf(" AND %s >= $%d", col, len(args))
	}
	if !rg.To.IsZero() {
		args = append(args, rg.To)
		clause += fmt.Sprintf(" AND %s <= $%d", col, len(args))
	}
	return clause, args
}

func (r *Repo) SalesByDate(ctx context.Context, rg Range) ([]DailySales, error) {
	where, args := rangeClause("ordered_at", rg, nil)
	rows, err := r.DB.Query(ctx, `
		SELECT DATE(ordered_at) AS order_date, SUM(total)
		FROM orders WHERE TRUE`+where+`
		GROUP BY order_date ORDER BY order_date`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailySales
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Date, &d.Sales); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) SalesByPayment(ctx context.Context, rg Range) ([]PaymentSales, error) {
	where, args := rangeClause("ordered_at", rg, nil)
	rows, err := r.DB.Query(ctx, `
		SELECT payment, SUM(total)
		FROM orders WHERE TRUE`+where+`
		GROUP BY payment ORDER BY payment`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentSales
	for rows.Next() {
		var p PaymentSales
		var method string
		if err := rows.Scan(&method, &p.Sales); err != nil {
			return nil, err
		}
		p.Payment = billing.Payment(method)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) TotalRevenue(ctx context.Context, rg Range) (float64, error) {
	where, args := rangeClause("ordered_at", rg, nil)
	var total float64
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE TRUE`+where, args...).Scan(&total)
	return total, err
}

func (r *Repo) OrderCount(ctx context.Context, rg Range) (int64, error) {
	where, args := rangeClause("ordered_at", rg, nil)
	var n int64
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE TRUE`+where, args...).Scan(&n)
	return n, err
}

// SalesByCategory sums pre-GST sales per menu category, preferring the unit
// price captured on the order line over the current menu price.
func (r *Repo) SalesByCategory(ctx context.Context, rg Range) ([]CategorySales, error) {
	where, args := rangeClause("o.ordered_at", rg, nil)
	rows, err := r.DB.Query(ctx, `
		SELECT COALESCE(m.category, 'Uncategorized') AS category,
		       SUM(oi.qty * COALESCE(oi.unit_price, m.price, 0))
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.order_id
		LEFT JOIN menu m ON oi.item_id = m.item_id
		WHERE TRUE`+where+`
		GROUP BY 1 ORDER BY 2 DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategorySales
	for rows.Next() {
		var c CategorySales
		if err := rows.Scan(&c.Category, &c.Sales); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MostSoldItems ranks items by quantity sold. Items deleted from the menu
// without a name snapshot are reported as "Item {id}".
func (r *Repo) MostSoldItems(ctx context.Context, rg Range, topN int) ([]ItemSold, error) {
	where, args := rangeClause("o.ordered_at", rg, nil)
	args = append(args, topN)
	rows, err := r.DB.Query(ctx, `
		SELECT oi.item_id, COALESCE(MAX(m.item_name), MAX(oi.item_name)), SUM(oi.qty) AS total_qty
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.order_id
		LEFT JOIN menu m ON oi.item_id = m.item_id
		WHERE TRUE`+where+`
		GROUP BY oi.item_id
		ORDER BY total_qty DESC, oi.item_id
		LIMIT $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemSold
	for rows.Next() {
		var it ItemSold
		var name *string
		if err := rows.Scan(&it.ItemID, &name, &it.Qty); err != nil {
			return nil, err
		}
		if name != nil {
			it.Name = *name
		} else {
			it.Name = fmt.Sprintf("Item %d", it.ItemID)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
