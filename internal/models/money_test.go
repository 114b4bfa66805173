package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneySubAndIsPositive(t *testing.T) {
	amount := NewMoneyFromDecimal(decimal.RequireFromString("1000"))
	fee := NewMoneyFromDecimal(decimal.RequireFromString("100"))

	payout := amount.Sub(fee)
	if payout.String() != "900.00" {
		t.Fatalf("payout want 900.00 got %s", payout.String())
	}
	if !payout.IsPositive() {
		t.Fatalf("payout should be positive")
	}
	if fee.Sub(amount).IsPositive() {
		t.Fatalf("negative amount should not be positive")
	}
}

func TestMoneyMarshalJSON(t *testing.T) {
	m := NewMoneyFromDecimal(decimal.RequireFromString("1000.5"))
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `"1000.50"` {
		t.Fatalf(`want "1000.50" got %s`, b)
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"99.995"`), &m); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if m.String() != "100.00" {
		t.Fatalf("string amount want 100.00 got %s", m.String())
	}

	if err := json.Unmarshal([]byte(`1000`), &m); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if m.String() != "1000.00" {
		t.Fatalf("number amount want 1000.00 got %s", m.String())
	}

	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}
