// Package issues persists customer support tickets recorded during
// conversations.
package issues

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for issue persistence.
var (
	ErrEmptyName        = errors.New("customer name is empty")
	ErrEmptyDescription = errors.New("issue description is empty")
)

// Issue is one recorded customer complaint.
type Issue struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerName string    `gorm:"index;not null" json:"customer_name"`
	Description  string    `gorm:"not null" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists and retrieves issues.
type Store interface {
	// Create records a new issue. Name and description must be non-empty.
	Create(ctx context.Context, customerName, description string) (*Issue, error)

	// List returns issues newest first. A non-empty customerName matches
	// as a substring of the recorded name; empty matches every customer.
	// A positive limit bounds the result.
	List(ctx context.Context, customerName string, limit int) ([]Issue, error)

	// Close releases the underlying database handle.
	Close() error
}
