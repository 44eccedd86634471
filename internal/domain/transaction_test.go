package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCommissionFee(t *testing.T) {
	rate := decimal.RequireFromString("0.015")

	tests := []struct {
		amount string
		want   string
	}{
		{"100.00", "1.50"},
		{"100.50", "1.51"},   // 1.5075 rounds up
		{"1.00", "0.02"},     // 0.015 rounds half up
		{"0.33", "0.00"},     // 0.00495 rounds down
		{"333.33", "5.00"},   // 4.99995 rounds up
		{"999999999", "15000000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got := CommissionFee(amount, rate)
			if got.String() != decimal.RequireFromString(tt.want).String() {
				t.Errorf("CommissionFee(%s) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		SenderID:      1,
		ReceiverID:    2,
		Amount:        decimal.RequireFromString("100.00"),
		CommissionFee: decimal.RequireFromString("1.50"),
		TotalDebited:  decimal.RequireFromString("101.50"),
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("self transfer", func(t *testing.T) {
		tx := valid
		tx.ReceiverID = tx.SenderID
		if err := tx.Validate(); err != ErrSelfTransfer {
			t.Errorf("expected ErrSelfTransfer, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		tx := valid
		tx.Amount = decimal.Zero
		if err := tx.Validate(); err != ErrInvalidAmount {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("total mismatch", func(t *testing.T) {
		tx := valid
		tx.TotalDebited = decimal.RequireFromString("101.00")
		if err := tx.Validate(); err != ErrTransferFailed {
			t.Errorf("expected ErrTransferFailed, got %v", err)
		}
	})
}
