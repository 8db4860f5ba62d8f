package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/bbookman/mom0mind/internal/llm"
	"github.com/bbookman/mom0mind/internal/prompt"
)

type stubLLM struct {
	text string
	err  error
}

func (s stubLLM) GenerateContent(_ context.Context, _ *llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.text}, nil
}

func newLLMExtractor(t *testing.T, model llm.LLM) *LLMExtractor {
	t.Helper()
	prompts, err := prompt.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewLLMExtractor(model, prompts)
}

func TestLLMExtractorParsesFactList(t *testing.T) {
	ext := newLLMExtractor(t, stubLLM{text: `{"facts": ["The user lives in Seattle.", "Alice loves hiking."]}`})

	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: "some journal text"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	if facts[0].Text != "The user lives in Seattle." {
		t.Errorf("fact 0 = %q", facts[0].Text)
	}
}

func TestLLMExtractorStripsCodeFences(t *testing.T) {
	ext := newLLMExtractor(t, stubLLM{text: "```json\n{\"facts\": [\"The user has a dog.\"]}\n```"})

	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: "text"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 1 || facts[0].Text != "The user has a dog." {
		t.Errorf("facts = %+v", facts)
	}
}

func TestLLMExtractorCapsFactCount(t *testing.T) {
	ext := newLLMExtractor(t, stubLLM{
		text: `{"facts": ["a b.", "c d.", "e f.", "g h.", "i j.", "k l.", "m n."]}`,
	})

	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: "text"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != maxFactsPerCall {
		t.Errorf("got %d facts, want %d", len(facts), maxFactsPerCall)
	}
}

func TestLLMExtractorEmptyContent(t *testing.T) {
	ext := newLLMExtractor(t, stubLLM{text: `{"facts": []}`})
	if _, err := ext.Extract(context.Background(), ExtractRequest{Content: ""}); !errors.Is(err, ErrNoExtractableContent) {
		t.Errorf("got %v, want ErrNoExtractableContent", err)
	}
}

func TestLLMExtractorModelError(t *testing.T) {
	ext := newLLMExtractor(t, stubLLM{err: errors.New("model unavailable")})
	if _, err := ext.Extract(context.Background(), ExtractRequest{Content: "text"}); err == nil {
		t.Error("expected an error from the failing model")
	}
}

func TestLLMExtractorAnnotatesTemporalContext(t *testing.T) {
	ext := newLLMExtractor(t, stubLLM{text: `{"facts": ["The user met Alice on 2024-03-10."]}`})

	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: "text", TimeContext: "2024-03-10"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if facts[0].TemporalContext != "2024-03-10" {
		t.Errorf("temporal context = %q", facts[0].TemporalContext)
	}
}
