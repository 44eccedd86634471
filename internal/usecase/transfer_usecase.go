package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olek/paywire/internal/domain"
)

// TransferUseCase is the balance-transfer engine. It owns the only write
// path to account balances and ledger rows.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledgerRepo  TransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	rate        decimal.Decimal
}

// NewTransferUseCase creates a new TransferUseCase with the given
// commission rate.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	ledgerRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	rate decimal.Decimal,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		rate:        rate,
	}
}

// TransferInput represents one requested transfer. SenderID must come from
// the authenticated caller, never from the request body.
type TransferInput struct {
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal
}

// Transfer moves Amount from sender to receiver, charging the commission
// fee on top of the debited amount. It executes as one atomic unit: either
// both balances move and a ledger row is appended, or nothing changes.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, classifyStorageErr(err)
	}
	defer tx.Rollback(ctx)

	// Lock both rows in ascending ID order regardless of transfer
	// direction. Opposite-direction transfers between the same pair then
	// acquire locks in the same order and cannot deadlock.
	ids := lockOrder(input.SenderID, input.ReceiverID)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, classifyStorageErr(err)
	}

	var sender, receiver *domain.Account
	for _, a := range accounts {
		if a.ID == input.SenderID {
			sender = a
		}
		if a.ID == input.ReceiverID {
			receiver = a
		}
	}

	if receiver == nil {
		return nil, domain.ErrReceiverNotFound
	}

	if sender == nil {
		return nil, domain.ErrAccountNotFound
	}

	if input.SenderID == input.ReceiverID {
		return nil, domain.ErrSelfTransfer
	}

	fee := domain.CommissionFee(input.Amount, uc.rate)
	total := input.Amount.Add(fee)

	// Revalidate against the locked state; a concurrent transfer may have
	// drained the balance since the caller's read.
	if err := sender.ValidateDebit(total); err != nil {
		return nil, err
	}

	senderBalance, err := uc.accountRepo.AdjustBalance(ctx, tx, sender.ID, total.Neg())
	if err != nil {
		return nil, classifyStorageErr(err)
	}

	receiverBalance, err := uc.accountRepo.AdjustBalance(ctx, tx, receiver.ID, input.Amount)
	if err != nil {
		return nil, classifyStorageErr(err)
	}

	txn := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		SenderID:      sender.ID,
		ReceiverID:    receiver.ID,
		Amount:        input.Amount,
		CommissionFee: fee,
		TotalDebited:  total,
		BalanceAfter:  senderBalance,
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.Create(ctx, tx, txn); err != nil {
		return nil, classifyStorageErr(err)
	}

	// Stage one balance event per account. The rows commit atomically with
	// the transfer, so the publisher can only ever see committed changes.
	events := []*domain.OutboxEvent{
		uc.balanceEvent(sender.ID, senderBalance, txn.CreatedAt),
		uc.balanceEvent(receiver.ID, receiverBalance, txn.CreatedAt),
	}
	for _, event := range events {
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, classifyStorageErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyStorageErr(err)
	}

	txn.Sender = sender.Ref()
	txn.Receiver = receiver.Ref()

	return txn, nil
}

func (uc *TransferUseCase) balanceEvent(accountID int64, balance decimal.Decimal, at time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   strconv.FormatInt(accountID, 10),
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeBalanceUpdated,
		Payload: map[string]any{
			"user_id": accountID,
			"balance": balance.StringFixed(2),
		},
		CreatedAt: at,
	}
}

// lockOrder returns the unique account IDs in canonical (ascending) lock
// acquisition order.
func lockOrder(a, b int64) []int64 {
	if a == b {
		return []int64{a}
	}

	ids := []int64{a, b}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// classifyStorageErr keeps domain sentinels intact and folds anything
// unexpected into ErrTransferFailed so callers see a closed error set.
// The cause stays on the chain so retriers can still inspect driver
// errors underneath.
func classifyStorageErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrLockTimeout),
		errors.Is(err, domain.ErrBalanceInvariant),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrReceiverNotFound):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}
}
