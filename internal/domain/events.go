package domain

import (
	"strconv"
	"time"
)

// Event types
const (
	EventTypeBalanceUpdated = "balance.updated"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event staged for post-commit delivery.
// Rows are written in the same transaction as the state change they
// describe, so they become visible to the publisher only after commit.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BalanceChannel is the pub/sub channel carrying an account's balance
// updates.
func BalanceChannel(accountID int64) string {
	return "balance." + strconv.FormatInt(accountID, 10)
}

// BalanceUpdatedEvent payload, delivered to the account's private channel.
type BalanceUpdatedEvent struct {
	UserID  int64  `json:"user_id"`
	Balance string `json:"balance"`
}
