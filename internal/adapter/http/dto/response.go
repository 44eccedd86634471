package dto

import (
	"time"

	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/usecase"
)

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ValidationErrorResponse carries per-field validation errors.
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromDomain converts a domain account to its response form.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Balance:   a.Balance.StringFixed(2),
		CreatedAt: a.CreatedAt,
	}
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	Token   string           `json:"token"`
	Account *AccountResponse `json:"account"`
}

// PartyResponse identifies one side of a transaction.
type PartyResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func partyFromRef(ref *domain.AccountRef) *PartyResponse {
	if ref == nil {
		return nil
	}
	return &PartyResponse{ID: ref.ID, Name: ref.Name}
}

// TransactionResponse is the API representation of a ledger entry.
type TransactionResponse struct {
	ID            string         `json:"id"`
	Sender        *PartyResponse `json:"sender,omitempty"`
	Receiver      *PartyResponse `json:"receiver,omitempty"`
	Amount        string         `json:"amount"`
	CommissionFee string         `json:"commission_fee"`
	TotalDebited  string         `json:"total_debited"`
	BalanceAfter  string         `json:"balance_after"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to its response form.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		Sender:        partyFromRef(t.Sender),
		Receiver:      partyFromRef(t.Receiver),
		Amount:        t.Amount.StringFixed(2),
		CommissionFee: t.CommissionFee.StringFixed(2),
		TotalDebited:  t.TotalDebited.StringFixed(2),
		BalanceAfter:  t.BalanceAfter.StringFixed(2),
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
	}
}

// CreateTransactionResponse is returned when a transfer completes.
type CreateTransactionResponse struct {
	Message     string               `json:"message"`
	Transaction *TransactionResponse `json:"transaction"`
}

// TransactionListResponse is one page of an account's ledger history.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Balance      string                 `json:"balance"`
	Page         int                    `json:"page"`
	PerPage      int                    `json:"per_page"`
}

// StatementFromDomain converts an account statement to its response form.
func StatementFromDomain(s *usecase.AccountStatement) *TransactionListResponse {
	transactions := make([]*TransactionResponse, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		transactions = append(transactions, TransactionFromDomain(t))
	}

	return &TransactionListResponse{
		Transactions: transactions,
		Balance:      s.Balance.StringFixed(2),
		Page:         s.Page,
		PerPage:      s.PerPage,
	}
}

// AddMoneyResponse is returned when a deposit completes.
type AddMoneyResponse struct {
	Message string `json:"message"`
	Balance string `json:"balance"`
}

// ValidateReceiverResponse reports whether an account can receive a
// transfer from the caller.
type ValidateReceiverResponse struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message,omitempty"`
	User    *PartyResponse `json:"user,omitempty"`
}

// ConsistencyResponse is the outcome of a ledger audit sweep.
type ConsistencyResponse struct {
	Consistent       bool     `json:"consistent"`
	InconsistentRows []string `json:"inconsistent_rows,omitempty"`
}

// ConsistencyFromDomain converts an audit result to its response form.
func ConsistencyFromDomain(r *usecase.ConsistencyResult) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:       r.Consistent,
		InconsistentRows: r.InconsistentRows,
	}
}
