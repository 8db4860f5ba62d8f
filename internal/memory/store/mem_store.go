package store

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bbookman/mom0mind/internal/embedding"
	"github.com/bbookman/mom0mind/internal/models"
)

// MemStore is an in-memory Store. It backs tests and single-process runs
// where standing up Milvus is not worth it.
type MemStore struct {
	embedder embedding.Embedding

	mu      sync.RWMutex
	records map[string][]models.MemoryRecord // keyed by user id
}

// NewMemStore creates an empty MemStore. embedder may be nil; without it
// search falls back to insertion order.
func NewMemStore(embedder embedding.Embedding) *MemStore {
	return &MemStore{
		embedder: embedder,
		records:  make(map[string][]models.MemoryRecord),
	}
}

// Add stores a record, embedding its text when an embedder is configured.
func (s *MemStore) Add(ctx context.Context, record *models.MemoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if len(record.Vector) == 0 && s.embedder != nil {
		v, err := s.embedder.Embed(ctx, record.Text)
		if err != nil {
			return err
		}
		record.Vector = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.UserID] = append(s.records[record.UserID], *record)
	return nil
}

// Search ranks the user's records by cosine similarity to the query
// embedding and returns the top limit.
func (s *MemStore) Search(ctx context.Context, query, userID string, limit int) ([]models.MemoryRecord, error) {
	var queryVector []float32
	if s.embedder != nil {
		v, err := s.embedder.Embed(ctx, query)
		if err != nil {
			return nil, err
		}
		queryVector = v
	}

	s.mu.RLock()
	stored := s.records[userID]
	out := make([]models.MemoryRecord, len(stored))
	copy(out, stored)
	s.mu.RUnlock()

	if queryVector != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return cosine(queryVector, out[i].Vector) > cosine(queryVector, out[j].Vector)
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetAll returns a copy of every record stored for the user.
func (s *MemStore) GetAll(ctx context.Context, userID string) ([]models.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MemoryRecord, len(s.records[userID]))
	copy(out, s.records[userID])
	return out, nil
}

// Reset drops the user's records.
func (s *MemStore) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
