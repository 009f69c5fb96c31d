package core

import (
	"errors"
	"testing"
	"time"
)

func TestCatalogItemValidate(t *testing.T) {
	good := CatalogItem{ItemName: "Coffee", Category: "beverage", UnitPrice: MoneyFromInt(50)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	free := CatalogItem{ItemName: "Water", Category: "beverage"}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero price should be allowed, got %v", err)
	}

	cases := []struct {
		item CatalogItem
		want error
	}{
		{CatalogItem{ItemName: " ", Category: "c", UnitPrice: MoneyFromInt(1)}, ErrEmptyItemName},
		{CatalogItem{ItemName: "a", Category: "", UnitPrice: MoneyFromInt(1)}, ErrEmptyCategory},
		{CatalogItem{ItemName: "a", Category: "c", UnitPrice: MoneyFromInt(-1)}, ErrNegativePrice},
	}
	for i, tc := range cases {
		if err := tc.item.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestValidateQuantity(t *testing.T) {
	for _, q := range []int{0, -1, -100} {
		if err := ValidateQuantity(q); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d expected ErrInvalidQuantity, got %v", q, err)
		}
	}
	if err := ValidateQuantity(1); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 5 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, s := range []string{"", "2024-13-01", "05/03/2024", "2024-02-30", "yesterday"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrUnparseableDate) {
			t.Fatalf("%q expected ErrUnparseableDate, got %v", s, err)
		}
	}
}

func TestNewDraftSnapshotsPrice(t *testing.T) {
	item := CatalogItem{ItemName: "Coffee", Category: "beverage", UnitPrice: MoneyFromInt(50)}
	d := NewDraft(item, 3, "2024-03-05")
	if !d.TotalPrice.Equal(MoneyFromInt(150)) {
		t.Fatalf("expected total 150, got %s", d.TotalPrice)
	}

	// Later price changes must not leak into the snapshot.
	item.UnitPrice = MoneyFromInt(80)
	if !d.UnitPrice.Equal(MoneyFromInt(50)) {
		t.Fatalf("draft price changed to %s", d.UnitPrice)
	}

	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	tx := d.Transaction("id-1", created)
	if tx.ID != "id-1" || !tx.CreatedAt.Equal(created) {
		t.Fatalf("unexpected identity: %+v", tx)
	}
	if tx.Draft() != d {
		t.Fatalf("draft round trip mismatch: %+v vs %+v", tx.Draft(), d)
	}
}
