package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository over the
// append-only transactions table.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create appends a ledger row within tx. Rows are never updated or
// deleted afterwards.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (id, sender_id, receiver_id, amount, commission_fee, total_debited, balance_after, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.SenderID,
		txn.ReceiverID,
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.CommissionFee),
		decimalToNumeric(txn.TotalDebited),
		decimalToNumeric(txn.BalanceAfter),
		txn.Status,
		timeToPgTimestamptz(txn.CreatedAt),
	)

	return mapPgError(err)
}

const transactionColumns = `
	t.id, t.sender_id, t.receiver_id, t.amount, t.commission_fee, t.total_debited, t.balance_after, t.status, t.created_at,
	s.name, rcv.name
`

const transactionJoins = `
	FROM transactions t
	JOIN accounts s ON s.id = t.sender_id
	JOIN accounts rcv ON rcv.id = t.receiver_id
`

// GetByID retrieves a single ledger row with both party names expanded.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT` + transactionColumns + transactionJoins + `WHERE t.id = $1`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return txn, nil
}

// ListByAccount lists ledger rows where the account is sender or receiver,
// newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT` + transactionColumns + transactionJoins + `
		WHERE t.sender_id = $1 OR t.receiver_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// ListInconsistent returns the IDs of ledger rows whose stored fee or
// total disagrees with the commission arithmetic at the given rate.
func (r *TransactionRepository) ListInconsistent(ctx context.Context, rate decimal.Decimal) ([]string, error) {
	query := `
		SELECT id
		FROM transactions
		WHERE total_debited <> amount + commission_fee
		   OR commission_fee <> round(amount * $1, 2)
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, decimalToNumeric(rate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn           domain.Transaction
		amount        pgtype.Numeric
		commissionFee pgtype.Numeric
		totalDebited  pgtype.Numeric
		balanceAfter  pgtype.Numeric
		createdAt     pgtype.Timestamptz
		senderName    string
		receiverName  string
	)

	err := row.Scan(
		&txn.ID,
		&txn.SenderID,
		&txn.ReceiverID,
		&amount,
		&commissionFee,
		&totalDebited,
		&balanceAfter,
		&txn.Status,
		&createdAt,
		&senderName,
		&receiverName,
	)
	if err != nil {
		return nil, err
	}

	txn.Amount = numericToDecimal(amount)
	txn.CommissionFee = numericToDecimal(commissionFee)
	txn.TotalDebited = numericToDecimal(totalDebited)
	txn.BalanceAfter = numericToDecimal(balanceAfter)
	txn.CreatedAt = createdAt.Time
	txn.Sender = &domain.AccountRef{ID: txn.SenderID, Name: senderName}
	txn.Receiver = &domain.AccountRef{ID: txn.ReceiverID, Name: receiverName}

	return &txn, nil
}
