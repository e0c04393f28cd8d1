// Package analyticsdb runs the aggregate queries over the sales_data table.
package analyticsdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries groups the read-only analytics statements.
type Queries struct {
	db DBTX
}

// New wraps a connection handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// FilterParams carries a pre-built WHERE clause and its bound values. Where
// must only contain column names and $n placeholders.
type FilterParams struct {
	Where string
	Args  []any
}

// distinctColumns whitelists the columns DistinctValues may read.
var distinctColumns = map[string]string{
	"brand":              `SELECT DISTINCT brand FROM sales_data WHERE brand IS NOT NULL ORDER BY brand`,
	"productSubcategory": `SELECT DISTINCT productSubcategory FROM sales_data WHERE productSubcategory IS NOT NULL ORDER BY productSubcategory`,
	"store":              `SELECT DISTINCT store FROM sales_data WHERE store IS NOT NULL ORDER BY store`,
}

// DistinctValues lists the non-null values of a filter column across the
// whole table.
func (q *Queries) DistinctValues(ctx context.Context, column string) ([]string, error) {
	query, ok := distinctColumns[column]
	if !ok {
		return nil, fmt.Errorf("analyticsdb: column %q not listable", column)
	}
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

const breakdownQuery = `
SELECT
	productSubcategory,
	COALESCE(SUM(sales), 0)::float8 AS sales,
	COALESCE(SUM(revenue), 0)::float8 AS revenue,
	COUNT(*) AS order_count
FROM sales_data
%s
GROUP BY productSubcategory
ORDER BY sales DESC`

// BreakdownRow is one product subcategory group.
type BreakdownRow struct {
	ProductSubcategory pgtype.Text
	Sales              float64
	Revenue            float64
	OrderCount         int64
}

// Breakdown aggregates filtered records per product subcategory.
func (q *Queries) Breakdown(ctx context.Context, arg FilterParams) ([]BreakdownRow, error) {
	rows, err := q.db.Query(ctx, fmt.Sprintf(breakdownQuery, arg.Where), arg.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BreakdownRow{}
	for rows.Next() {
		var i BreakdownRow
		if err := rows.Scan(&i.ProductSubcategory, &i.Sales, &i.Revenue, &i.OrderCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const totalsQuery = `
SELECT
	COALESCE(SUM(sales), 0)::float8 AS total_sales,
	COALESCE(SUM(revenue), 0)::float8 AS total_revenue,
	COUNT(*) AS total_orders,
	COALESCE(AVG(revenue), 0)::float8 AS average_order_value
FROM sales_data
%s`

// TotalsRow is the single-row aggregate over the filtered records.
type TotalsRow struct {
	TotalSales        float64
	TotalRevenue      float64
	TotalOrders       int64
	AverageOrderValue float64
}

// Totals aggregates filtered records without grouping.
func (q *Queries) Totals(ctx context.Context, arg FilterParams) (TotalsRow, error) {
	row := q.db.QueryRow(ctx, fmt.Sprintf(totalsQuery, arg.Where), arg.Args...)
	var i TotalsRow
	err := row.Scan(&i.TotalSales, &i.TotalRevenue, &i.TotalOrders, &i.AverageOrderValue)
	return i, err
}
