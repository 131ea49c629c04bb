// Package notification defines the append-only message log the workflow
// writes to as a side effect. Delivery and display belong to an external
// collaborator; this subsystem only appends and lists.
package notification

import (
	"context"
	"time"
)

// Notification is one message addressed to a principal's account.
type Notification struct {
	ID        int64
	AccountID int64
	Message   string
	CreatedAt time.Time
}

// Sink is the port the workflow appends to. Entries are never mutated or
// deleted.
type Sink interface {
	// Append records a message for the account.
	Append(ctx context.Context, accountID int64, message string) error

	// ListByAccount returns the account's notifications, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]Notification, error)
}
