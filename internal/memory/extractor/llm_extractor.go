package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bbookman/mom0mind/internal/llm"
	"github.com/bbookman/mom0mind/internal/models"
	"github.com/bbookman/mom0mind/internal/prompt"
)

// LLMExtractor is an Extractor implementation that delegates the linguistic
// judgment to a language model guided by the fact_extraction prompt. The
// output contract is the same as RuleExtractor's.
type LLMExtractor struct {
	client  llm.LLM
	prompts *prompt.Registry
}

// NewLLMExtractor creates a new LLMExtractor.
func NewLLMExtractor(client llm.LLM, prompts *prompt.Registry) *LLMExtractor {
	return &LLMExtractor{client: client, prompts: prompts}
}

// Extract renders the extraction prompt, calls the model, and parses the
// returned JSON fact list.
func (e *LLMExtractor) Extract(ctx context.Context, req ExtractRequest) ([]models.Fact, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrNoExtractableContent
	}

	rendered, err := e.prompts.Render("memory/fact_extraction", map[string]string{
		"content":      req.Content,
		"context":      req.Context,
		"time_context": req.TimeContext,
	})
	if err != nil {
		return nil, fmt.Errorf("render extraction prompt: %w", err)
	}

	resp, err := e.client.GenerateContent(ctx, &llm.Request{Prompt: rendered})
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	var parsed struct {
		Facts []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(jsonBody(resp.Text)), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal extraction response: %w", err)
	}

	var facts []models.Fact
	for _, text := range parsed.Facts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		facts = append(facts, models.Fact{
			Text:            text,
			Language:        detectLanguage(text),
			TemporalContext: temporalReference(text, req.TimeContext),
		})
		if len(facts) == maxFactsPerCall {
			break
		}
	}
	return facts, nil
}

// jsonBody strips markdown code fences some models wrap around JSON output.
func jsonBody(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
