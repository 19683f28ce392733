package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store persists items and suppliers.
type Store interface {
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context) ([]*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, id string) error

	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]*Supplier, error)
	CreateSupplier(ctx context.Context, supplier *Supplier) error
	DeleteSupplier(ctx context.Context, id string) error

	Summary(ctx context.Context) (*Summary, error)
}

// SQLStore is a database/sql backed Store.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a Store on top of an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the inventory tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS suppliers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			contact_email TEXT,
			phone TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate suppliers: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS inventory_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			supplier_id TEXT NOT NULL REFERENCES suppliers(id),
			quantity INTEGER NOT NULL DEFAULT 0,
			price NUMERIC NOT NULL DEFAULT 0,
			minimum_quantity INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate inventory_items: %w", err)
	}
	return nil
}

func (s *SQLStore) GetItem(ctx context.Context, id string) (*Item, error) {
	item := &Item{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, supplier_id, quantity, price, minimum_quantity, created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.SupplierID, &item.Quantity,
		&item.Price, &item.MinimumQuantity, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}
	return item, nil
}

func (s *SQLStore) ListItems(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, supplier_id, quantity, price, minimum_quantity, created_at, updated_at
		FROM inventory_items
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
		err := rows.Scan(&item.ID, &item.Name, &item.SupplierID, &item.Quantity,
			&item.Price, &item.MinimumQuantity, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLStore) CreateItem(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (id, name, supplier_id, quantity, price, minimum_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.Name, item.SupplierID, item.Quantity, item.Price,
		item.MinimumQuantity, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (s *SQLStore) UpdateItem(ctx context.Context, item *Item) error {
	item.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = $1, supplier_id = $2, quantity = $3, price = $4,
		    minimum_quantity = $5, updated_at = $6
		WHERE id = $7
	`, item.Name, item.SupplierID, item.Quantity, item.Price,
		item.MinimumQuantity, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	supplier := &Supplier{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact_email, phone, created_at
		FROM suppliers
		WHERE id = $1
	`, id).Scan(&supplier.ID, &supplier.Name, &supplier.ContactEmail,
		&supplier.Phone, &supplier.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query supplier: %w", err)
	}
	return supplier, nil
}

func (s *SQLStore) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact_email, phone, created_at
		FROM suppliers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*Supplier
	for rows.Next() {
		supplier := &Supplier{}
		err := rows.Scan(&supplier.ID, &supplier.Name, &supplier.ContactEmail,
			&supplier.Phone, &supplier.CreatedAt)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}

func (s *SQLStore) CreateSupplier(ctx context.Context, supplier *Supplier) error {
	if supplier.ID == "" {
		supplier.ID = uuid.NewString()
	}
	supplier.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, contact_email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, supplier.ID, supplier.Name, supplier.ContactEmail, supplier.Phone, supplier.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteSupplier(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary computes the read-only analytics aggregate.
func (s *SQLStore) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(quantity * price), 0),
		       COALESCE(SUM(CASE WHEN quantity < minimum_quantity THEN 1 ELSE 0 END), 0)
		FROM inventory_items
	`).Scan(&summary.ItemCount, &summary.TotalUnits, &summary.TotalValue, &summary.BelowMinimum)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&summary.SupplierCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}
	return summary, nil
}
