package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/inventory-sales/internal/core/domain"
)

var ErrLockConflict = errors.New("inventory row is locked by a concurrent update")

type SQLAdapter struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLAdapter(db *sql.DB, dialect Dialect) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: dialect}
}

func (a *SQLAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *SQLAdapter) ListInventory(ctx context.Context, filter domain.StockFilter) ([]domain.InventoryStatus, error) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString(`
		SELECT i.product_id, i.quantity, i.low_stock_threshold, i.last_updated, p.name, p.category_id
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE 1 = 1`)

	if filter.LowStockOnly != nil {
		if *filter.LowStockOnly {
			q.WriteString(` AND i.quantity <= i.low_stock_threshold`)
		} else {
			q.WriteString(` AND i.quantity > i.low_stock_threshold`)
		}
	}
	if filter.CategoryID != nil {
		q.WriteString(` AND p.category_id = ?`)
		args = append(args, *filter.CategoryID)
	}
	q.WriteString(` ORDER BY i.product_id`)

	rows, err := a.db.QueryContext(ctx, a.dialect.rebind(q.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	statuses := make([]domain.InventoryStatus, 0)
	for rows.Next() {
		inv, product, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, domain.NewInventoryStatus(inv, product))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return statuses, nil
}

func (a *SQLAdapter) UpdateInventory(ctx context.Context, productID int64, fn func(inv *domain.Inventory) error) (*domain.InventoryStatus, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, a.dialect.rebind(`
		SELECT i.product_id, i.quantity, i.low_stock_threshold, i.last_updated, p.name, p.category_id
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.product_id = ?
		FOR UPDATE`), productID)

	inv, product, err := scanInventory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInventoryNotFound
	}
	if err != nil {
		return nil, a.lockErr(err)
	}

	if err := fn(&inv); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, a.dialect.rebind(`
		UPDATE inventory
		SET quantity = ?, last_updated = ?
		WHERE product_id = ?`),
		inv.Quantity, inv.LastUpdated.UTC(), productID,
	)
	if err != nil {
		return nil, a.lockErr(fmt.Errorf("update inventory: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, a.lockErr(fmt.Errorf("commit: %w", err))
	}

	status := domain.NewInventoryStatus(inv, product)
	return &status, nil
}

func (a *SQLAdapter) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString(`SELECT s.id, s.product_id, s.quantity, s.unit_price, s.total_price, s.sale_date FROM sales s`)

	byCategory := len(filter.ProductIDs) == 0 && len(filter.CategoryIDs) > 0
	if byCategory {
		q.WriteString(` JOIN products p ON p.id = s.product_id`)
	}
	q.WriteString(` WHERE 1 = 1`)
	args = appendDateBounds(&q, args, filter.Start, filter.End)

	switch {
	case len(filter.ProductIDs) > 0:
		q.WriteString(` AND s.product_id IN (` + placeholders(len(filter.ProductIDs)) + `)`)
		for _, id := range filter.ProductIDs {
			args = append(args, id)
		}
	case byCategory:
		q.WriteString(` AND p.category_id IN (` + placeholders(len(filter.CategoryIDs)) + `)`)
		for _, id := range filter.CategoryIDs {
			args = append(args, id)
		}
	}
	q.WriteString(` ORDER BY s.sale_date DESC, s.id DESC`)

	rows, err := a.db.QueryContext(ctx, a.dialect.rebind(q.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Quantity, &s.UnitPrice, &s.TotalPrice, &s.SaleDate); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return sales, nil
}

func (a *SQLAdapter) SalePoints(ctx context.Context, window domain.SaleWindow) ([]domain.SalePoint, error) {
	query, args := windowQuery(`SELECT s.sale_date, s.quantity, s.total_price FROM sales s`, window)
	query += ` ORDER BY s.sale_date`

	rows, err := a.db.QueryContext(ctx, a.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query sale points: %w", err)
	}
	defer rows.Close()

	points := make([]domain.SalePoint, 0)
	for rows.Next() {
		var p domain.SalePoint
		if err := rows.Scan(&p.SaleDate, &p.Quantity, &p.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan sale point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale points: %w", err)
	}
	return points, nil
}

func (a *SQLAdapter) SumRevenue(ctx context.Context, window domain.SaleWindow) (decimal.Decimal, error) {
	query, args := windowQuery(`SELECT COALESCE(SUM(s.total_price), 0) FROM sales s`, window)

	var total decimal.NullDecimal
	if err := a.db.QueryRowContext(ctx, a.dialect.rebind(query), args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (a *SQLAdapter) lockErr(err error) error {
	if isLockConflict(err) {
		return fmt.Errorf("%w: %v", ErrLockConflict, err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInventory(row rowScanner) (domain.Inventory, domain.Product, error) {
	var (
		inv     domain.Inventory
		product domain.Product
	)
	err := row.Scan(&inv.ProductID, &inv.Quantity, &inv.LowStockThreshold, &inv.LastUpdated, &product.Name, &product.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inv, product, err
		}
		return inv, product, fmt.Errorf("scan inventory: %w", err)
	}
	product.ID = inv.ProductID
	return inv, product, nil
}

func windowQuery(base string, window domain.SaleWindow) (string, []any) {
	var (
		q    strings.Builder
		args []any
	)
	q.WriteString(base)
	if window.CategoryID != nil {
		q.WriteString(` JOIN products p ON p.id = s.product_id`)
	}
	q.WriteString(` WHERE 1 = 1`)
	args = appendDateBounds(&q, args, window.Start, window.End)
	if window.CategoryID != nil {
		q.WriteString(` AND p.category_id = ?`)
		args = append(args, *window.CategoryID)
	}
	return q.String(), args
}

func appendDateBounds(q *strings.Builder, args []any, start, end *time.Time) []any {
	if start != nil {
		q.WriteString(` AND s.sale_date >= ?`)
		args = append(args, start.UTC())
	}
	if end != nil {
		q.WriteString(` AND s.sale_date <= ?`)
		args = append(args, end.UTC())
	}
	return args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
