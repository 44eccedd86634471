package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/usecase"
)

// AccountService is the account surface the handlers depend on.
type AccountService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.Account, error)
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ValidateReceiver(ctx context.Context, callerID, receiverID int64) (*domain.AccountRef, error)
	AddMoney(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// TransferService is the transfer surface the handlers depend on.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
}

// LedgerService is the ledger read surface the handlers depend on.
type LedgerService interface {
	ListForAccount(ctx context.Context, accountID int64, page int) (*usecase.AccountStatement, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyResult, error)
}
