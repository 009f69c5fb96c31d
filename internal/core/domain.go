package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the business date format used by sales (YYYY-MM-DD).
const DateLayout = "2006-01-02"

type (
	// CatalogItem is one sellable product. ItemName is the natural key.
	CatalogItem struct {
		ItemName  string `json:"itemName"`
		Category  string `json:"category"`
		UnitPrice Money  `json:"unitPrice"`
	}

	// Draft is a sale ready to be persisted. The store adds ID and CreatedAt.
	Draft struct {
		Date       string `json:"date"`
		ItemName   string `json:"itemName"`
		Category   string `json:"category"`
		UnitPrice  Money  `json:"unitPrice"`
		Quantity   int    `json:"quantity"`
		TotalPrice Money  `json:"totalPrice"`
	}

	// Transaction is one recorded sale, immutable once created.
	Transaction struct {
		ID         string    `json:"id"`
		CreatedAt  time.Time `json:"createdAt"`
		Date       string    `json:"date"`
		ItemName   string    `json:"itemName"`
		Category   string    `json:"category"`
		UnitPrice  Money     `json:"unitPrice"`
		Quantity   int       `json:"quantity"`
		TotalPrice Money     `json:"totalPrice"`
	}
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnparseableDate = errors.New("unparseable date")
	ErrPersistence     = errors.New("persistence failure")

	ErrEmptyItemName = errors.New("empty item name")
	ErrEmptyCategory = errors.New("empty category")
	ErrNegativePrice = errors.New("negative unit price")
)

// NewDraft snapshots the catalog item and computes the total price once.
func NewDraft(item CatalogItem, quantity int, date string) Draft {
	return Draft{
		Date:       date,
		ItemName:   item.ItemName,
		Category:   item.Category,
		UnitPrice:  item.UnitPrice,
		Quantity:   quantity,
		TotalPrice: item.UnitPrice.MulInt(quantity),
	}
}

// Validate checks a catalog entry before it is accepted into a catalog.
func (c CatalogItem) Validate() error {
	if strings.TrimSpace(c.ItemName) == "" {
		return ErrEmptyItemName
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if c.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ValidateQuantity rejects zero and negative quantities.
func ValidateQuantity(q int) error {
	if q <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD business date as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrUnparseableDate
	}
	return t, nil
}

// Transaction materializes the draft with store-assigned identity.
func (d Draft) Transaction(id string, createdAt time.Time) Transaction {
	return Transaction{
		ID:         id,
		CreatedAt:  createdAt,
		Date:       d.Date,
		ItemName:   d.ItemName,
		Category:   d.Category,
		UnitPrice:  d.UnitPrice,
		Quantity:   d.Quantity,
		TotalPrice: d.TotalPrice,
	}
}

// Draft returns the caller-supplied part of the transaction.
func (t Transaction) Draft() Draft {
	return Draft{
		Date:       t.Date,
		ItemName:   t.ItemName,
		Category:   t.Category,
		UnitPrice:  t.UnitPrice,
		Quantity:   t.Quantity,
		TotalPrice: t.TotalPrice,
	}
}
