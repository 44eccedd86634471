package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/usecase"
)

// RegisterRequest represents a request to create an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate returns a field error map; empty means the request is valid.
func (r *RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if err := domain.ValidateAccountName(r.Name); err != nil {
		errs["name"] = err.Error()
	}
	if err := domain.ValidateEmail(r.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := domain.ValidatePassword(r.Password); err != nil {
		errs["password"] = err.Error()
	}

	return errs
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

// LoginRequest represents login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate returns a field error map; empty means the request is valid.
func (r *LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "email is required"
	}
	if r.Password == "" {
		errs["password"] = "password is required"
	}

	return errs
}

// CreateTransactionRequest represents a request to transfer money. The
// sender is always the authenticated caller.
type CreateTransactionRequest struct {
	ReceiverID int64           `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Validate returns a field error map; empty means the request is valid.
func (r *CreateTransactionRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if r.ReceiverID <= 0 {
		errs["receiver_id"] = "receiver_id is required"
	}
	if err := domain.ValidateAmount(r.Amount); err != nil {
		errs["amount"] = err.Error()
	}

	return errs
}

// ToUseCaseInput converts to use case input for the given sender.
func (r *CreateTransactionRequest) ToUseCaseInput(senderID int64) usecase.TransferInput {
	return usecase.TransferInput{
		SenderID:   senderID,
		ReceiverID: r.ReceiverID,
		Amount:     r.Amount,
	}
}

// AddMoneyRequest represents a deposit to the caller's own account.
type AddMoneyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Validate returns a field error map; empty means the request is valid.
func (r *AddMoneyRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if err := domain.ValidateAmount(r.Amount); err != nil {
		errs["amount"] = err.Error()
	}

	return errs
}
