package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oforidesmond/pulse-pos/internal/pos"
)

// SaleFilter selects which sales ListSales returns.
type SaleFilter int

const (
	// AllSales returns every sale, newest first.
	AllSales SaleFilter = iota
	// PendingSales returns unsynced sales, oldest first - the order the
	// push loop submits them in.
	PendingSales
)

// UpsertSale inserts or replaces a sale by id together with all its
// line items in one transaction. Existing items for the id are deleted
// and rewritten, so a replayed write converges on the same state.
func (s *Store) UpsertSale(ctx context.Context, sale pos.Sale) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert sale: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO sales
		(id, receipt_number, user_id, customer_name, created_at, sale_date, sale_time,
		 subtotal, discount, total_amount, amount_paid, change_given, payment_method, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sale.ID,
		sale.ReceiptNumber,
		sale.UserID,
		sale.CustomerName,
		sale.CreatedAt.UTC().Format(time.RFC3339Nano),
		sale.Date,
		sale.Time,
		sale.Subtotal,
		sale.Discount,
		sale.TotalAmount,
		sale.AmountPaid,
		sale.ChangeGiven,
		sale.PaymentMethod,
		boolToInt(sale.Synced),
	)
	if err != nil {
		return fmt.Errorf("upsert sale: insert sale: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, sale.ID); err != nil {
		return fmt.Errorf("upsert sale: delete items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sale_items (sale_id, product_id, name, price, quantity)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("upsert sale: prepare items: %w", err)
	}
	defer stmt.Close()

	for _, it := range sale.Items {
		if _, err := stmt.ExecContext(ctx, sale.ID, it.ProductID, it.Name, it.Price, it.Quantity); err != nil {
			return fmt.Errorf("upsert sale: insert item %q: %w", it.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert sale: commit: %w", err)
	}
	return nil
}

// ListSales returns sales matching the filter, hydrated with their
// line items. AllSales orders newest first; PendingSales orders oldest
// first so pushes submit in creation order.
func (s *Store) ListSales(ctx context.Context, filter SaleFilter) ([]pos.Sale, error) {
	query := `
		SELECT id, receipt_number, user_id, customer_name, created_at, sale_date, sale_time,
		       subtotal, discount, total_amount, amount_paid, change_given, payment_method, synced
		FROM sales
		ORDER BY created_at DESC, id ASC
	`
	if filter == PendingSales {
		query = `
			SELECT id, receipt_number, user_id, customer_name, created_at, sale_date, sale_time,
			       subtotal, discount, total_amount, amount_paid, change_given, payment_method, synced
			FROM sales
			WHERE synced = 0
			ORDER BY created_at ASC, id ASC
		`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sales: query: %w", err)
	}
	defer rows.Close()

	sales := []pos.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: iterate: %w", err)
	}

	for i := range sales {
		items, err := s.readSaleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}

	return sales, nil
}

// GetSale retrieves a single sale with its items by id.
// Returns ErrNotFound if the sale does not exist.
func (s *Store) GetSale(ctx context.Context, id string) (pos.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, receipt_number, user_id, customer_name, created_at, sale_date, sale_time,
		       subtotal, discount, total_amount, amount_paid, change_given, payment_method, synced
		FROM sales
		WHERE id = ?
	`, id)

	sale, err := scanSaleRow(row)
	if err == sql.ErrNoRows {
		return pos.Sale{}, fmt.Errorf("get sale %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return pos.Sale{}, fmt.Errorf("get sale %q: %w", id, err)
	}

	items, err := s.readSaleItems(ctx, id)
	if err != nil {
		return pos.Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

// MarkSynced flips a sale's synced flag after a successful remote
// submission. Returns ErrNotFound for an unknown id.
func (s *Store) MarkSynced(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sales SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark synced %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark synced %q: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("mark synced %q: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteSale removes a sale and its line items in one transaction.
func (s *Store) DeleteSale(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete sale: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, id); err != nil {
		return fmt.Errorf("delete sale %q: items: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete sale %q: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete sale %q: commit: %w", id, err)
	}
	return nil
}

// CountPending returns the number of sales awaiting remote submission.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales WHERE synced = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

// readSaleItems returns a sale's line items in insertion order.
func (s *Store) readSaleItems(ctx context.Context, saleID string) ([]pos.SaleItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, price, quantity
		FROM sale_items
		WHERE sale_id = ?
		ORDER BY id ASC
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("read sale items: query: %w", err)
	}
	defer rows.Close()

	items := []pos.SaleItem{}
	for rows.Next() {
		var (
			it        pos.SaleItem
			productID sql.NullString
			price     sql.NullFloat64
			quantity  sql.NullFloat64
		)
		if err := rows.Scan(&productID, &it.Name, &price, &quantity); err != nil {
			return nil, fmt.Errorf("read sale items: scan: %w", err)
		}
		it.ProductID = productID.String
		it.Price = price.Float64
		it.Quantity = quantity.Float64
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sale items: iterate: %w", err)
	}
	return items, nil
}

func scanSale(rows *sql.Rows) (pos.Sale, error) {
	sale, err := scanSaleRow(rows)
	if err != nil {
		return pos.Sale{}, fmt.Errorf("scan sale: %w", err)
	}
	return sale, nil
}

func scanSaleRow(row rowScanner) (pos.Sale, error) {
	var (
		sale         pos.Sale
		userID       sql.NullString
		customerName sql.NullString
		createdAt    string
		saleDate     sql.NullString
		saleTime     sql.NullString
		subtotal     sql.NullFloat64
		discount     sql.NullFloat64
		totalAmount  sql.NullFloat64
		amountPaid   sql.NullFloat64
		changeGiven  sql.NullFloat64
		payment      sql.NullString
		synced       int
	)
	err := row.Scan(
		&sale.ID, &sale.ReceiptNumber, &userID, &customerName, &createdAt,
		&saleDate, &saleTime, &subtotal, &discount, &totalAmount,
		&amountPaid, &changeGiven, &payment, &synced,
	)
	if err != nil {
		return pos.Sale{}, err
	}

	sale.UserID = userID.String
	sale.CustomerName = customerName.String
	sale.Date = saleDate.String
	sale.Time = saleTime.String
	sale.Subtotal = subtotal.Float64
	sale.Discount = discount.Float64
	sale.TotalAmount = totalAmount.Float64
	sale.AmountPaid = amountPaid.Float64
	sale.ChangeGiven = changeGiven.Float64
	sale.PaymentMethod = payment.String
	sale.Synced = synced != 0

	if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		sale.CreatedAt = t
	}

	return sale, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
