package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	adaptershttp "github.com/olek/paywire/internal/adapter/http"
	"github.com/olek/paywire/internal/adapter/http/dto"
	"github.com/olek/paywire/internal/adapter/http/handler"
	postgresRepo "github.com/olek/paywire/internal/adapter/repository/postgres"
	"github.com/olek/paywire/internal/infrastructure/auth"
	"github.com/olek/paywire/internal/infrastructure/config"
	"github.com/olek/paywire/internal/usecase"
	"github.com/olek/paywire/tests/testutil"
)

type testApp struct {
	Router     http.Handler
	JWTManager *auth.JWTManager

	AccountUC  *usecase.AccountUseCase
	TransferUC *usecase.TransferUseCase
	LedgerUC   *usecase.LedgerUseCase

	OutboxRepo  *postgresRepo.OutboxRepository
	AccountRepo *postgresRepo.AccountRepository
}

func newTestApp(t *testing.T, testDB *testutil.TestDB) *testApp {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	pool := testDB.Pool
	txManager := postgresRepo.NewTxManager(pool, 2*time.Second)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(txManager, accountRepo)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transactionRepo, outboxRepo, idGen, cfg.CommissionRate)
	ledgerUC := usecase.NewLedgerUseCase(transactionRepo, accountRepo, cfg.CommissionRate)

	jwtManager := auth.NewJWTManager("integration-secret", time.Hour)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(accountUC, jwtManager, nil),
		AccountHandler:     handler.NewAccountHandler(accountUC, nil),
		TransactionHandler: handler.NewTransactionHandler(transferUC, ledgerUC, postgresRepo.NewRetrier(zerolog.Nop()), nil),
		HealthHandler:      handler.NewHealthHandler(pool, nil),
		JWTManager:         jwtManager,
		Logger:             zerolog.Nop(),
	})

	return &testApp{
		Router:      router,
		JWTManager:  jwtManager,
		AccountUC:   accountUC,
		TransferUC:  transferUC,
		LedgerUC:    ledgerUC,
		OutboxRepo:  outboxRepo,
		AccountRepo: accountRepo,
	}
}

// login exchanges fixture credentials for a bearer token through the API.
func (app *testApp) login(t *testing.T, email string) string {
	t.Helper()

	body, _ := json.Marshal(dto.LoginRequest{Email: email, Password: testutil.TestPassword})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed for %s: %d %s", email, rec.Code, rec.Body.String())
	}

	var resp dto.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	return resp.Token
}

func (app *testApp) doJSON(t *testing.T, method, target, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	return rec
}
