package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a user account that holds a spendable balance.
type Account struct {
	ID             int64
	Name           string
	Email          string
	HashedPassword string
	Balance        decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if the account balance covers a debit of total.
func (a *Account) ValidateDebit(total decimal.Decimal) error {
	if a.Balance.LessThan(total) {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the new balance after a debit.
func (a *Account) ApplyDebit(total decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(total)
}

// ApplyCredit returns the new balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// AccountRef is the public projection of an account embedded in API responses.
type AccountRef struct {
	ID   int64
	Name string
}

// Ref returns the public projection of the account.
func (a *Account) Ref() *AccountRef {
	return &AccountRef{ID: a.ID, Name: a.Name}
}
