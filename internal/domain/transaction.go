package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses. Failures never produce a row, so only one exists.
const (
	TransactionStatusCompleted = "completed"
)

// Transaction is an immutable ledger record of one completed transfer.
type Transaction struct {
	CreatedAt     time.Time
	ID            string
	Sender        *AccountRef
	Receiver      *AccountRef
	SenderID      int64
	ReceiverID    int64
	Amount        decimal.Decimal
	CommissionFee decimal.Decimal
	TotalDebited  decimal.Decimal
	BalanceAfter  decimal.Decimal
	Status        string
}

// CommissionFee computes the fee for a gross amount at the given rate,
// rounded half away from zero to 2 decimal places. Amounts are always
// positive, so this is standard half-up rounding.
func CommissionFee(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// Validate checks the internal consistency of a ledger record.
func (t *Transaction) Validate() error {
	if t.SenderID == t.ReceiverID {
		return ErrSelfTransfer
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !t.TotalDebited.Equal(t.Amount.Add(t.CommissionFee)) {
		return ErrTransferFailed
	}

	return nil
}
