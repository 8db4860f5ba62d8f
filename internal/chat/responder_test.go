package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/bbookman/mom0mind/internal/models"
)

func memories(texts ...string) []models.MemoryRecord {
	records := make([]models.MemoryRecord, len(texts))
	for i, text := range texts {
		records[i] = models.MemoryRecord{Text: text, UserID: "bruce"}
	}
	return records
}

func TestRespondResolvesFirstPersonPronouns(t *testing.T) {
	r := NewResponder()
	answer, err := r.Respond(models.ChatContext{
		UserID: "bruce",
		Query:  "What's my favorite food?",
		Memories: memories(
			"Bruce's favorite food is ramen.",
			"Bruce lives in Seattle.",
		),
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(answer, "ramen") {
		t.Errorf("answer = %q, want it to mention ramen", answer)
	}
	if strings.Contains(answer, "Seattle") {
		t.Errorf("answer = %q, pulled in an unrelated memory", answer)
	}
}

func TestRespondEmptyQuery(t *testing.T) {
	r := NewResponder()
	for _, q := range []string{"", "   ", "\n"} {
		if _, err := r.Respond(models.ChatContext{UserID: "bruce", Query: q}); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Respond(%q): got %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestRespondNeverFabricates(t *testing.T) {
	r := NewResponder()
	answer, err := r.Respond(models.ChatContext{
		UserID:   "bruce",
		Query:    "What team does Bruce support?",
		Memories: memories("Bruce's favorite food is ramen."),
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(answer, "don't have that information") {
		t.Errorf("answer = %q, want an explicit not-known reply", answer)
	}
}

func TestRespondNoMemories(t *testing.T) {
	r := NewResponder()
	answer, err := r.Respond(models.ChatContext{UserID: "bruce", Query: "Where do I live?"})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(answer, "don't have that information") {
		t.Errorf("answer = %q", answer)
	}
}

func TestRespondSynonymMatching(t *testing.T) {
	r := NewResponder()
	answer, err := r.Respond(models.ChatContext{
		UserID:   "bruce",
		Query:    "What do I like to eat?",
		Memories: memories("Bruce's favorite food is ramen."),
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(answer, "ramen") {
		t.Errorf("answer = %q, synonym expansion did not reach the food fact", answer)
	}
}

func TestResolvePronouns(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"What's my favorite food?", "What's Bruce's favorite food?"},
		{"Where do I live?", "Where do Bruce live?"},
		{"Tell me about me.", "Tell Bruce about Bruce."},
	}
	for _, tc := range cases {
		if got := ResolvePronouns(tc.query, "bruce"); got != tc.want {
			t.Errorf("ResolvePronouns(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}
