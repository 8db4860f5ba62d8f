package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtractResolvesSubjectsAndDates(t *testing.T) {
	ext := NewRuleExtractor()
	facts, err := ext.Extract(context.Background(), ExtractRequest{
		Content:     "Met Alice for coffee yesterday, she loves hiking.",
		TimeContext: "2024-03-10",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2: %+v", len(facts), facts)
	}

	if facts[0].Text != "The user met Alice for coffee on 2024-03-10." {
		t.Errorf("fact 0 = %q", facts[0].Text)
	}
	if facts[0].TemporalContext != "2024-03-10" {
		t.Errorf("fact 0 temporal context = %q", facts[0].TemporalContext)
	}
	if facts[1].Text != "Alice loves hiking." {
		t.Errorf("fact 1 = %q", facts[1].Text)
	}
}

func TestExtractFirstPersonRewrites(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"I have a golden retriever named Max.", "The user has a golden retriever named Max."},
		{"I am a teacher at Lincoln High.", "The user is a teacher at Lincoln High."},
		{"My favorite food is ramen.", "The user's favorite food is ramen."},
		{"We visited Portland.", "The user and others visited Portland."},
	}

	ext := NewRuleExtractor()
	for _, tc := range cases {
		facts, err := ext.Extract(context.Background(), ExtractRequest{Content: tc.content})
		if err != nil {
			t.Errorf("Extract(%q): %v", tc.content, err)
			continue
		}
		if len(facts) != 1 || facts[0].Text != tc.want {
			t.Errorf("Extract(%q) = %+v, want one fact %q", tc.content, facts, tc.want)
		}
	}
}

func TestExtractLeadingRelativeDay(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"Yesterday I met Alice for coffee.", "The user met Alice for coffee on 2024-03-10."},
		{"Yesterday I visited Portland.", "The user visited Portland on 2024-03-10."},
	}

	ext := NewRuleExtractor()
	for _, tc := range cases {
		facts, err := ext.Extract(context.Background(), ExtractRequest{
			Content:     tc.content,
			TimeContext: "2024-03-10",
		})
		if err != nil {
			t.Errorf("Extract(%q): %v", tc.content, err)
			continue
		}
		if len(facts) != 1 || facts[0].Text != tc.want {
			t.Errorf("Extract(%q) = %+v, want one fact %q", tc.content, facts, tc.want)
			continue
		}
		if facts[0].TemporalContext != "2024-03-10" {
			t.Errorf("Extract(%q) temporal context = %q", tc.content, facts[0].TemporalContext)
		}
	}
}

func TestExtractEmptyInput(t *testing.T) {
	ext := NewRuleExtractor()
	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := ext.Extract(context.Background(), ExtractRequest{Content: content}); !errors.Is(err, ErrNoExtractableContent) {
			t.Errorf("Extract(%q): got %v, want ErrNoExtractableContent", content, err)
		}
	}
}

func TestExtractFiltersSmallTalk(t *testing.T) {
	ext := NewRuleExtractor()
	facts, err := ext.Extract(context.Background(), ExtractRequest{
		Content: "Hello! How are you? Thanks. I live in Seattle.",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1: %+v", len(facts), facts)
	}
	if facts[0].Text != "The user lives in Seattle." {
		t.Errorf("fact = %q", facts[0].Text)
	}
}

func TestExtractGreetingOnlyYieldsNoFacts(t *testing.T) {
	ext := NewRuleExtractor()
	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: "Hello! How are you?"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("got %d facts from a greeting, want 0: %+v", len(facts), facts)
	}
}

func TestExtractCapsFactCount(t *testing.T) {
	content := strings.Repeat("I like apples. ", 12)
	ext := NewRuleExtractor()
	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: content})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) > maxFactsPerCall {
		t.Errorf("got %d facts, cap is %d", len(facts), maxFactsPerCall)
	}
}

func TestExtractPreservesSourceLanguage(t *testing.T) {
	ext := NewRuleExtractor()
	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: "我喜欢吃拉面。"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1: %+v", len(facts), facts)
	}
	if facts[0].Language != "zh" {
		t.Errorf("language = %q, want zh", facts[0].Language)
	}
	if !strings.Contains(facts[0].Text, "拉面") {
		t.Errorf("fact text was translated or mangled: %q", facts[0].Text)
	}
}

func TestExtractUnresolvablePronounDropped(t *testing.T) {
	ext := NewRuleExtractor()
	facts, err := ext.Extract(context.Background(), ExtractRequest{Content: "She loves hiking."})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("a pronoun clause with no antecedent must be dropped, got %+v", facts)
	}
}
