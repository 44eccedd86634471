package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrBalanceInvariant = errors.New("balance adjustment would go negative")

	// Transfer errors
	ErrInvalidAmount       = errors.New("amount is out of range")
	ErrReceiverNotFound    = errors.New("receiver not found")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLockTimeout         = errors.New("timed out waiting for account lock")
	ErrTransferFailed      = errors.New("transfer failed")

	// Ledger errors
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
