package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olek/paywire/internal/adapter/http/dto"
	"github.com/olek/paywire/internal/adapter/http/middleware"
	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/infrastructure/metrics"
	"github.com/olek/paywire/internal/usecase"
)

// TransactionHandler handles transfer creation and ledger reads.
type TransactionHandler struct {
	transfers TransferService
	ledger    LedgerService
	retrier   usecase.Retrier
	metrics   *metrics.Metrics
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transfers TransferService, ledger LedgerService, retrier usecase.Retrier, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{
		transfers: transfers,
		ledger:    ledger,
		retrier:   retrier,
		metrics:   m,
	}
}

// Create executes a transfer from the caller to the requested receiver.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	input := req.ToUseCaseInput(principal.AccountID)

	start := time.Now()

	var transaction *domain.Transaction
	op := func() error {
		var err error
		transaction, err = h.transfers.Transfer(r.Context(), input)
		return err
	}

	var err error
	if h.retrier != nil {
		err = h.retrier.Retry(r.Context(), op)
	} else {
		err = op()
	}

	if err != nil {
		if h.metrics != nil {
			h.metrics.TransferErrors.WithLabelValues(transferErrorType(err)).Inc()
		}
		writeDomainError(w, err)

		return
	}

	if h.metrics != nil {
		h.metrics.TransfersCreated.Inc()
		h.metrics.TransferDuration.Observe(time.Since(start).Seconds())
		h.metrics.TransferAmount.Observe(transaction.Amount.InexactFloat64())
	}

	writeJSON(w, http.StatusCreated, dto.CreateTransactionResponse{
		Message:     "transaction completed successfully",
		Transaction: dto.TransactionFromDomain(transaction),
	})
}

// List returns one page of the caller's ledger history plus the current
// balance.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	page := parseIntQuery(r, "page", 1)

	statement, err := h.ledger.ListForAccount(r.Context(), principal.AccountID, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(statement))
}

// Get retrieves a single ledger entry. Callers only see entries they took
// part in.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	transaction, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if transaction.SenderID != principal.AccountID && transaction.ReceiverID != principal.AccountID {
		writeDomainError(w, domain.ErrTransactionNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// Consistency runs a ledger audit sweep.
func (h *TransactionHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromDomain(result))
}

// transferErrorType buckets transfer errors for metrics labels.
func transferErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, domain.ErrReceiverNotFound):
		return "receiver_not_found"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrBalanceInvariant):
		return "balance_invariant"
	default:
		return "internal"
	}
}
