package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/oforidesmond/pulse-pos/internal/pos"
)

// SearchResult is one page of a product search.
type SearchResult struct {
	Products []pos.Product `json:"products"`

	// Page is the page actually returned, after clamping the request
	// into [1, TotalPages].
	Page       int `json:"page"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ReplaceProducts atomically swaps the entire catalog: delete-all plus
// bulk insert in one transaction. If any row fails the whole batch
// rolls back and the previous catalog remains intact.
func (s *Store) ReplaceProducts(ctx context.Context, products []pos.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace products: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("replace products: delete: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products
		(id, sku, name, selling_price, stock_quantity, name_lower, sku_lower)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace products: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.SKU, p.Name, p.SellingPrice, p.StockQuantity,
			strings.ToLower(p.Name), strings.ToLower(p.SKU),
		); err != nil {
			return fmt.Errorf("replace products: insert %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace products: commit: %w", err)
	}
	return nil
}

// UpsertProducts inserts or replaces products by id without touching
// the rest of the catalog. The full replace is the primary sync path;
// this exists for incremental corrections.
func (s *Store) UpsertProducts(ctx context.Context, products []pos.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert products: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO products
		(id, sku, name, selling_price, stock_quantity, name_lower, sku_lower)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("upsert products: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.SKU, p.Name, p.SellingPrice, p.StockQuantity,
			strings.ToLower(p.Name), strings.ToLower(p.SKU),
		); err != nil {
			return fmt.Errorf("upsert products: insert %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert products: commit: %w", err)
	}
	return nil
}

// CountProducts returns the catalog size.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// SearchProducts returns one page of a case-insensitive substring
// search over product name, sku and id. A blank or whitespace-only
// query is treated as no filter and returns the full catalog ordered
// by name.
//
// TotalPages is max(ceil(total/pageSize), 1) and the requested page is
// clamped into [1, TotalPages], so a caller can never page off the end.
func (s *Store) SearchProducts(ctx context.Context, page, pageSize int, query string) (SearchResult, error) {
	if pageSize < 1 {
		pageSize = 1
	}

	where := ""
	var args []any
	q := strings.TrimSpace(strings.ToLower(query))
	if q != "" {
		pattern := "%" + escapeLike(q) + "%"
		where = `WHERE name_lower LIKE ? ESCAPE '\'
			OR sku_lower LIKE ? ESCAPE '\'
			OR LOWER(id) LIKE ? ESCAPE '\'`
		args = []any{pattern, pattern, pattern}
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM products %s`, where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return SearchResult{}, fmt.Errorf("search products: count: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	pageQuery := fmt.Sprintf(`
		SELECT id, sku, name, selling_price, stock_quantity
		FROM products %s
		ORDER BY name_lower ASC, id ASC
		LIMIT ? OFFSET ?
	`, where)
	rows, err := s.db.QueryContext(ctx, pageQuery, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search products: query: %w", err)
	}
	defer rows.Close()

	products := []pos.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return SearchResult{}, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return SearchResult{}, fmt.Errorf("search products: iterate: %w", err)
	}

	return SearchResult{
		Products:   products,
		Page:       page,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// FindProductByCode looks a product up by exact sku (case-insensitive)
// or exact id, for barcode-scan entry. Returns ErrNotFound when
// nothing matches.
func (s *Store) FindProductByCode(ctx context.Context, code string) (pos.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sku, name, selling_price, stock_quantity
		FROM products
		WHERE sku_lower = ? OR id = ?
		LIMIT 1
	`, strings.ToLower(code), code)

	p, err := scanProductRow(row)
	if err == sql.ErrNoRows {
		return pos.Product{}, fmt.Errorf("find product %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return pos.Product{}, fmt.Errorf("find product %q: %w", code, err)
	}
	return p, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct reads one product row, coercing NULL numerics to 0 and
// NULL text to "".
func scanProduct(rows *sql.Rows) (pos.Product, error) {
	p, err := scanProductRow(rows)
	if err != nil {
		return pos.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

func scanProductRow(row rowScanner) (pos.Product, error) {
	var (
		p     pos.Product
		sku   sql.NullString
		price sql.NullFloat64
		stock sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &sku, &p.Name, &price, &stock); err != nil {
		return pos.Product{}, err
	}
	p.SKU = sku.String
	p.SellingPrice = price.Float64
	p.StockQuantity = stock.Float64
	return p, nil
}

// escapeLike escapes LIKE metacharacters so a user query matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
