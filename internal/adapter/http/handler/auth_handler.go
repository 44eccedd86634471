package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/olek/paywire/internal/adapter/http/dto"
	"github.com/olek/paywire/internal/adapter/http/middleware"
	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/infrastructure/auth"
	"github.com/olek/paywire/internal/infrastructure/metrics"
	"github.com/olek/paywire/internal/usecase"
)

// AuthHandler handles registration, login and the current-account endpoint.
type AuthHandler struct {
	accounts   AccountService
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts AccountService, jwtManager *auth.JWTManager, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		jwtManager: jwtManager,
		metrics:    m,
	}
}

// Register creates a new account and returns an access token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	account, err := h.accounts.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeValidationError(w, map[string]string{"email": err.Error()})
			return
		}

		writeDomainError(w, err)

		return
	}

	token, err := h.jwtManager.Generate(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", "")
		return
	}

	if h.metrics != nil {
		h.metrics.AccountsCreated.Inc()
	}

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token:   token,
		Account: dto.AccountFromDomain(account),
	})
}

// Login authenticates credentials and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), usecase.AuthenticateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.AuthAttempts.WithLabelValues("failure").Inc()
		}
		writeDomainError(w, err)

		return
	}

	token, err := h.jwtManager.Generate(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", "")
		return
	}

	if h.metrics != nil {
		h.metrics.AuthAttempts.WithLabelValues("success").Inc()
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token:   token,
		Account: dto.AccountFromDomain(account),
	})
}

// Me returns the authenticated caller's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), principal.AccountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
