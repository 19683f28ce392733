// Package inventory implements the write path for stock items and
// suppliers. Updates pass through the field-level mutation policy before
// anything is persisted, and every accepted or denied mutation is handed
// to the audit sink with a classified severity.
package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

// Item is a stock item.
type Item struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SupplierID      string    `json:"supplier_id"`
	Quantity        int       `json:"quantity"`
	Price           float64   `json:"price"`
	MinimumQuantity int       `json:"minimum_quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Supplier is a goods supplier referenced by items.
type Supplier struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ItemUpdate is the incoming change-set for an item update. All fields
// are submitted; the field policy only evaluates the ones that actually
// differ from the persisted snapshot.
type ItemUpdate struct {
	Name            string  `json:"name"`
	SupplierID      string  `json:"supplier_id"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	MinimumQuantity int     `json:"minimum_quantity"`
}

// Validate checks the update payload before any policy evaluation.
func (u ItemUpdate) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("item name must not be blank")
	}
	if u.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if u.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// formatPrice renders prices consistently so snapshot diffs compare
// values, not float formatting.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// Snapshot renders the item's policy-relevant fields for diffing.
func (i *Item) Snapshot() authz.FieldValues {
	return authz.FieldValues{
		authz.FieldName:            i.Name,
		authz.FieldSupplierID:      i.SupplierID,
		authz.FieldQuantity:        strconv.Itoa(i.Quantity),
		authz.FieldPrice:           formatPrice(i.Price),
		authz.FieldMinimumQuantity: strconv.Itoa(i.MinimumQuantity),
	}
}

// Snapshot renders the incoming change-set for diffing.
func (u ItemUpdate) Snapshot() authz.FieldValues {
	return authz.FieldValues{
		authz.FieldName:            u.Name,
		authz.FieldSupplierID:      u.SupplierID,
		authz.FieldQuantity:        strconv.Itoa(u.Quantity),
		authz.FieldPrice:           formatPrice(u.Price),
		authz.FieldMinimumQuantity: strconv.Itoa(u.MinimumQuantity),
	}
}

// Summary is the analytics aggregate exposed read-only.
type Summary struct {
	ItemCount      int     `json:"item_count"`
	SupplierCount  int     `json:"supplier_count"`
	TotalUnits     int     `json:"total_units"`
	TotalValue     float64 `json:"total_value"`
	BelowMinimum   int     `json:"below_minimum"`
}
