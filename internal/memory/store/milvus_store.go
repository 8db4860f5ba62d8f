package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bbookman/mom0mind/internal/database/milvus"
	"github.com/bbookman/mom0mind/internal/embedding"
	"github.com/bbookman/mom0mind/internal/models"
)

// MilvusStore is an implementation of the Store interface backed by a
// Milvus collection.
type MilvusStore struct {
	client   *milvus.Client
	embedder embedding.Embedding
}

// NewMilvusStore creates a new MilvusStore. The collection is ensured on
// first use via the client's EnsureCollection.
func NewMilvusStore(client *milvus.Client, embedder embedding.Embedding) *MilvusStore {
	return &MilvusStore{client: client, embedder: embedder}
}

// Add embeds the record text and inserts it into the collection.
func (s *MilvusStore) Add(ctx context.Context, record *models.MemoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	vector := record.Vector
	if len(vector) == 0 {
		v, err := s.embedder.Embed(ctx, record.Text)
		if err != nil {
			return fmt.Errorf("embed record: %w", err)
		}
		vector = v
		record.Vector = v
	}

	return s.client.Insert(ctx, record.ID, record.UserID, record.Text, record.Source, record.CreatedAt.Unix(), vector)
}

// Search embeds the query and runs a similarity search filtered by user.
func (s *MilvusStore) Search(ctx context.Context, query, userID string, limit int) ([]models.MemoryRecord, error) {
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.client.Search(ctx, userID, limit, queryVector)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var records []models.MemoryRecord
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			id, _ := result.IDs.GetAsString(i)
			rec := models.MemoryRecord{ID: id}
			// Output fields come back in the requested order.
			rec.UserID, _ = result.Fields[0].GetAsString(i)
			rec.Text, _ = result.Fields[1].GetAsString(i)
			rec.Source, _ = result.Fields[2].GetAsString(i)
			createdAt, _ := result.Fields[3].GetAsInt64(i)
			rec.CreatedAt = time.Unix(createdAt, 0)
			records = append(records, rec)
		}
	}
	return records, nil
}

// GetAll queries every record for the user without vector search.
func (s *MilvusStore) GetAll(ctx context.Context, userID string) ([]models.MemoryRecord, error) {
	rs, err := s.client.QueryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	idCol := rs.GetColumn(milvus.FieldID)
	userCol := rs.GetColumn(milvus.FieldUserID)
	textCol := rs.GetColumn(milvus.FieldText)
	sourceCol := rs.GetColumn(milvus.FieldSource)
	createdCol := rs.GetColumn(milvus.FieldCreatedAt)
	if idCol == nil {
		return nil, nil
	}

	records := make([]models.MemoryRecord, 0, idCol.Len())
	for i := 0; i < idCol.Len(); i++ {
		var rec models.MemoryRecord
		rec.ID, _ = idCol.GetAsString(i)
		rec.UserID, _ = userCol.GetAsString(i)
		rec.Text, _ = textCol.GetAsString(i)
		rec.Source, _ = sourceCol.GetAsString(i)
		createdAt, _ := createdCol.GetAsInt64(i)
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, nil
}

// Reset deletes all records for the user and flushes the collection so
// the deletion is durable before the call returns.
func (s *MilvusStore) Reset(ctx context.Context, userID string) error {
	if err := s.client.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.client.Flush(ctx)
}
