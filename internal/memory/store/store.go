package store

import (
	"context"

	"github.com/bbookman/mom0mind/internal/models"
)

// Store persists memory records and retrieves them by similarity to a
// query. Implementations own the embedding of record and query text.
type Store interface {
	// Add embeds and persists a record. The record's vector is computed
	// from its text if not already set.
	Add(ctx context.Context, record *models.MemoryRecord) error
	// Search returns up to limit records for userID ordered by relevance
	// to the query.
	Search(ctx context.Context, query, userID string, limit int) ([]models.MemoryRecord, error)
	// GetAll returns every record stored for userID.
	GetAll(ctx context.Context, userID string) ([]models.MemoryRecord, error)
	// Reset removes all records for userID.
	Reset(ctx context.Context, userID string) error
}
