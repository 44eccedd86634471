package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	postgresRepo "github.com/olek/paywire/internal/adapter/repository/postgres"
	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/infrastructure/config"
	"github.com/olek/paywire/internal/infrastructure/logger"
	"github.com/olek/paywire/internal/infrastructure/postgres"
	"github.com/olek/paywire/internal/usecase"
)

const seedPassword = "password123"

func main() {
	rootCmd := &cobra.Command{
		Use:   "paywire-cli",
		Short: "PayWire operations tool",
		Long:  `Database migrations, demo data seeding and ledger diagnostics for PayWire.`,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := setup()
			if err != nil {
				return err
			}
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, appLogger)
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := setup()
			if err != nil {
				return err
			}
			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, appLogger)
		},
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo accounts with starting balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsistency(cmd.Context())
		},
	}

	rootCmd.AddCommand(migrateCmd, seedCmd, consistencyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})

	return cfg, appLogger, nil
}

func runSeed(ctx context.Context) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	accountRepo := postgresRepo.NewAccountRepository(pool)

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0

	for _, account := range demoAccounts(rng) {
		account.HashedPassword = string(hashed)

		if err := accountRepo.Create(ctx, account); err != nil {
			if errors.Is(err, domain.ErrEmailTaken) {
				appLogger.Info().Str("email", account.Email).Msg("account already exists, skipping")
				continue
			}
			return fmt.Errorf("failed to create %s: %w", account.Email, err)
		}

		created++
		appLogger.Info().
			Int64("id", account.ID).
			Str("email", account.Email).
			Str("balance", account.Balance.StringFixed(2)).
			Msg("seeded account")
	}

	fmt.Printf("Seeded %d accounts (password: %s)\n", created, seedPassword)

	return nil
}

func runConsistency(ctx context.Context) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	ledgerUC := usecase.NewLedgerUseCase(
		postgresRepo.NewTransactionRepository(pool),
		postgresRepo.NewAccountRepository(pool),
		cfg.CommissionRate,
	)

	result, err := ledgerUC.CheckConsistency(ctx)
	if err != nil {
		return fmt.Errorf("consistency check failed to run: %w", err)
	}

	printJSON(result)

	if !result.Consistent {
		return fmt.Errorf("ledger is inconsistent: %d bad rows", len(result.InconsistentRows))
	}

	fmt.Println("Consistency check PASSED")

	return nil
}

// demoAccounts builds the fixed demo roster with randomized starting
// balances between 1000 and 10000.
func demoAccounts(rng *rand.Rand) []*domain.Account {
	names := []string{
		"Alice Johnson", "Bob Smith", "Carol Williams", "Dave Brown",
		"Erin Davis", "Frank Miller", "Grace Wilson", "Henry Moore",
		"Ivy Taylor", "Jack Anderson",
	}

	accounts := make([]*domain.Account, 0, len(names))
	now := time.Now().UTC()

	for _, name := range names {
		first := strings.ToLower(strings.Fields(name)[0])
		balance := decimal.NewFromInt(1000 + rng.Int63n(9001))

		accounts = append(accounts, &domain.Account{
			Name:      name,
			Email:     first + "@paywire.dev",
			Balance:   balance,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return accounts
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
