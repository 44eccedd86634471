package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olek/paywire/internal/adapter/http/dto"
	"github.com/olek/paywire/internal/adapter/http/middleware"
	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/infrastructure/metrics"
)

// AccountHandler handles receiver validation and deposits.
type AccountHandler struct {
	accounts AccountService
	metrics  *metrics.Metrics
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, m *metrics.Metrics) *AccountHandler {
	return &AccountHandler{accounts: accounts, metrics: m}
}

// ValidateReceiver checks whether the account in the URL can receive a
// transfer from the caller.
func (h *AccountHandler) ValidateReceiver(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	receiverID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", "")
		return
	}

	receiver, err := h.accounts.ValidateReceiver(r.Context(), principal.AccountID, receiverID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReceiverNotFound):
			writeJSON(w, http.StatusNotFound, dto.ValidateReceiverResponse{
				Valid:   false,
				Message: err.Error(),
			})
		case errors.Is(err, domain.ErrSelfTransfer):
			writeJSON(w, http.StatusBadRequest, dto.ValidateReceiverResponse{
				Valid:   false,
				Message: err.Error(),
			})
		default:
			writeDomainError(w, err)
		}

		return
	}

	writeJSON(w, http.StatusOK, dto.ValidateReceiverResponse{
		Valid: true,
		User:  &dto.PartyResponse{ID: receiver.ID, Name: receiver.Name},
	})
}

// AddMoney credits the caller's own balance.
func (h *AccountHandler) AddMoney(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AddMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	balance, err := h.accounts.AddMoney(r.Context(), principal.AccountID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.DepositsCreated.Inc()
	}

	writeJSON(w, http.StatusOK, dto.AddMoneyResponse{
		Message: "money added successfully",
		Balance: balance.StringFixed(2),
	})
}
