package main

import (
	"context"
	"time"
)

// StoredClassification is one persisted classification row, as read
// back for export.
type StoredClassification struct {
	CustomerID       string
	WAID             string
	Tag              string
	Confidence       float64
	Justification    string
	SpecificDetail   string
	ImprovementNote  string
	TokensUsed       int
	ProcessingTimeMS int
	ClassifiedAt     time.Time
}

// Store is the persistence collaborator consumed by the batch runner.
// Implementations: SQLiteStore (local runs, tests) and PostgresStore
// (production chat database).
type Store interface {
	// ExistsResult reports whether the customer already has a
	// persisted classification.
	ExistsResult(ctx context.Context, customerID string) (bool, error)
	// FetchWindow returns up to limit most-recent customer/agent
	// messages, newest first.
	FetchWindow(ctx context.Context, customerID string, limit int) (ConversationWindow, error)
	// SaveResult persists exactly one classification for the customer.
	SaveResult(ctx context.Context, customerID, waID string, result ClassificationResult) error
	// LookupWAID resolves the customer's WhatsApp ID, or "" when the
	// customer row is missing.
	LookupWAID(ctx context.Context, customerID string) (string, error)
	// ListResults returns all persisted classifications, newest first.
	ListResults(ctx context.Context) ([]StoredClassification, error)
	Close() error
}
