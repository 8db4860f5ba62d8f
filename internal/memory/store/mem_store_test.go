package store

import (
	"context"
	"strings"
	"testing"

	"github.com/bbookman/mom0mind/internal/models"
)

// hashEmbedder is a deterministic stand-in embedder: a crude bag-of-letters
// vector, enough to make similar texts rank close.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v, nil
}

func (h hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = h.Embed(ctx, t)
	}
	return out, nil
}

func TestMemStoreAddAssignsIDAndTimestamp(t *testing.T) {
	st := NewMemStore(nil)
	rec := models.MemoryRecord{UserID: "bruce", Text: "Bruce lives in Seattle."}
	if err := st.Add(context.Background(), &rec); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if rec.ID == "" {
		t.Error("Add left ID empty")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Add left CreatedAt zero")
	}
}

func TestMemStoreSearchRanksBySimilarity(t *testing.T) {
	st := NewMemStore(hashEmbedder{})
	ctx := context.Background()

	for _, text := range []string{
		"Bruce works at Globex.",
		"Bruce's favorite food is ramen.",
	} {
		if err := st.Add(ctx, &models.MemoryRecord{UserID: "bruce", Text: text}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	records, err := st.Search(ctx, "favorite food ramen", "bruce", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !strings.Contains(records[0].Text, "ramen") {
		t.Errorf("top result = %q, want the food fact", records[0].Text)
	}
}

func TestMemStoreSearchHonorsLimit(t *testing.T) {
	st := NewMemStore(nil)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := st.Add(ctx, &models.MemoryRecord{UserID: "bruce", Text: "Fact."}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	records, err := st.Search(ctx, "anything", "bruce", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestMemStoreResetIsPerUser(t *testing.T) {
	st := NewMemStore(nil)
	ctx := context.Background()
	_ = st.Add(ctx, &models.MemoryRecord{UserID: "bruce", Text: "Bruce lives in Seattle."})
	_ = st.Add(ctx, &models.MemoryRecord{UserID: "alice", Text: "Alice lives in Tokyo."})

	if err := st.Reset(ctx, "bruce"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	bruce, _ := st.GetAll(ctx, "bruce")
	alice, _ := st.GetAll(ctx, "alice")
	if len(bruce) != 0 {
		t.Errorf("bruce still has %d records", len(bruce))
	}
	if len(alice) != 1 {
		t.Errorf("alice's records were dropped: %d", len(alice))
	}
}
