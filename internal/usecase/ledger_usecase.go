package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/olek/paywire/internal/domain"
)

// LedgerUseCase handles read access to the transaction ledger.
type LedgerUseCase struct {
	ledgerRepo  TransactionRepository
	accountRepo AccountRepository
	rate        decimal.Decimal
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo TransactionRepository, accountRepo AccountRepository, rate decimal.Decimal) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		rate:        rate,
	}
}

// AccountStatement is one page of an account's ledger history plus its
// current balance.
type AccountStatement struct {
	Transactions []*domain.Transaction
	Balance      decimal.Decimal
	Page         int
	PerPage      int
}

// ListForAccount returns a page of ledger entries where the account is
// sender or receiver, newest first, along with the current balance.
func (uc *LedgerUseCase) ListForAccount(ctx context.Context, accountID int64, page int) (*AccountStatement, error) {
	if page < 1 {
		page = 1
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * DefaultPageSize

	transactions, err := uc.ledgerRepo.ListByAccount(ctx, accountID, DefaultPageSize, offset)
	if err != nil {
		return nil, err
	}

	return &AccountStatement{
		Transactions: transactions,
		Balance:      account.Balance,
		Page:         page,
		PerPage:      DefaultPageSize,
	}, nil
}

// GetTransaction retrieves a single ledger entry by ID.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.ledgerRepo.GetByID(ctx, id)
}

// ConsistencyResult is the outcome of a ledger audit sweep.
type ConsistencyResult struct {
	Consistent       bool
	InconsistentRows []string
}

// CheckConsistency verifies that every ledger row satisfies
// total_debited = amount + commission_fee and
// commission_fee = round(amount * rate, 2).
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyResult, error) {
	ids, err := uc.ledgerRepo.ListInconsistent(ctx, uc.rate)
	if err != nil {
		return nil, err
	}

	return &ConsistencyResult{
		Consistent:       len(ids) == 0,
		InconsistentRows: ids,
	}, nil
}
