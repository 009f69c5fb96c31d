package core

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	price, _ := ParseMoney("0.10")
	total := Money{}
	for i := 0; i < 3; i++ {
		total = total.Add(price)
	}
	want, _ := ParseMoney("0.3")
	if !total.Equal(want) {
		t.Fatalf("expected exact 0.3, got %s", total)
	}
	if got := MoneyFromInt(45).MulInt(3); !got.Equal(MoneyFromInt(135)) {
		t.Fatalf("expected 135, got %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	price, _ := ParseMoney("49.95")
	b, err := json.Marshal(struct {
		P Money `json:"p"`
	}{price})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"p":49.95}` {
		t.Fatalf("unexpected json %s", b)
	}

	var back struct {
		P Money `json:"p"`
	}
	if err := json.Unmarshal([]byte(`{"p":"12.5"}`), &back); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if back.P.String() != "12.5" {
		t.Fatalf("expected 12.5, got %s", back.P)
	}
}

func TestMoneyFormat(t *testing.T) {
	got := MoneyFromInt(150).Format("THB")
	if !strings.Contains(got, "150") {
		t.Fatalf("expected formatted amount to contain 150, got %q", got)
	}
	if MoneyFromInt(1).Format("") != MoneyFromInt(1).Format(DefaultCurrency) {
		t.Fatalf("empty currency should fall back to %s", DefaultCurrency)
	}
}
