package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/bbookman/mom0mind/internal/models"
)

// ErrInconsistentPartition signals that the valid/invalid partition does not
// cover the input exactly once. It indicates a validator bug and is fatal
// for the batch; no facts from it should be stored.
var ErrInconsistentPartition = errors.New("validator: partition does not cover input exactly")

// bare pronouns that cannot stand as a fact subject.
var floatingPronouns = map[string]bool{
	"he": true, "she": true, "they": true, "it": true, "i": true,
	"we": true, "you": true, "this": true, "that": true, "his": true,
	"her": true, "their": true, "my": true,
}

// relationPatterns key a fact to (subject, relation) so two facts about the
// same subject and relation but different objects can be caught as a
// direct contradiction.
var relationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?) (lives) in (.+?)\.?$`),
	regexp.MustCompile(`(?i)^(.+?) (works) (?:at|for) (.+?)\.?$`),
	regexp.MustCompile(`(?i)^(.+?)'s (favorite .+?) is (.+?)\.?$`),
	regexp.MustCompile(`(?i)^(.+?) (was born) (?:in|on) (.+?)\.?$`),
	regexp.MustCompile(`(?i)^(.+?) (is) (\d+) years old\.?$`),
}

// datePatterns pick out candidate temporal tokens; each candidate must then
// parse under one of dateLayouts.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`),
	regexp.MustCompile(`\d{4}/\d{1,2}/\d{1,2}`),
	regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}, \d{4}`),
	regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{1,2}, \d{4}`),
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Validator partitions candidate facts into valid and invalid with reasons.
// Criteria is carried for reporting; the check order itself is fixed:
// subject, specificity, contradiction, temporal.
type Validator struct {
	classifier Classifier
	criteria   map[string]string
}

// New creates a Validator. A nil classifier falls back to the rule-based one.
func New(classifier Classifier, criteria map[string]string) *Validator {
	if classifier == nil {
		classifier = NewRuleClassifier()
	}
	return &Validator{classifier: classifier, criteria: criteria}
}

// Validate runs every candidate through the check sequence. The result is an
// exhaustive partition: each input fact lands in exactly one of ValidFacts
// or InvalidFacts, in input order within each list. Suggestions flag
// systematic issues and never move a fact between the two lists.
func (v *Validator) Validate(facts []models.Fact) (models.ValidationResult, error) {
	result := models.ValidationResult{}

	relations := make([]relation, len(facts))
	for i, f := range facts {
		relations[i] = extractRelation(f.Text)
	}

	missingDates := 0
	vagueCount := 0
	contradictions := false

	for i, fact := range facts {
		if reason := v.checkFact(i, fact, relations); reason != "" {
			result.InvalidFacts = append(result.InvalidFacts, models.InvalidFact{Fact: fact, Reason: reason})
			if reason == "not specific enough" {
				vagueCount++
			}
			if strings.HasPrefix(reason, "contradicts") {
				contradictions = true
			}
			continue
		}
		if fact.TemporalContext == "" && pastTense(fact.Text) {
			missingDates++
		}
		result.ValidFacts = append(result.ValidFacts, fact)
	}

	if missingDates >= 2 {
		result.Suggestions = append(result.Suggestions, "consider specifying dates explicitly for past events")
	}
	if vagueCount >= 2 {
		result.Suggestions = append(result.Suggestions, "add concrete details such as names, dates, or quantities")
	}
	if contradictions {
		result.Suggestions = append(result.Suggestions, "resolve contradictory statements before resubmitting")
	}

	if len(result.ValidFacts)+len(result.InvalidFacts) != len(facts) {
		return models.ValidationResult{}, ErrInconsistentPartition
	}
	return result, nil
}

// checkFact returns the first failing check's reason, or "" when the fact
// passes all of them.
func (v *Validator) checkFact(i int, fact models.Fact, relations []relation) string {
	words := strings.Fields(fact.Text)
	if len(words) < 2 && !nonLatinText(fact.Text) {
		return "not a complete sentence"
	}
	if floatingPronouns[subjectWord(words)] {
		return "ambiguous subject"
	}

	if !v.classifier.Classify(fact) {
		return "not specific enough"
	}

	if relations[i].key != "" {
		for j := range relations {
			if j == i || relations[j].key != relations[i].key {
				continue
			}
			if !strings.EqualFold(relations[j].object, relations[i].object) {
				return fmt.Sprintf("contradicts fact %d", j)
			}
		}
	}

	for _, pattern := range datePatterns {
		for _, candidate := range pattern.FindAllString(fact.Text, -1) {
			if !parseableDate(candidate) {
				return "malformed temporal reference"
			}
		}
	}

	return ""
}

var monthTokens = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "oct": true, "nov": true,
	"dec": true,
}

// subjectWord returns the word carrying the sentence subject, skipping a
// leading temporal phrase ("On 2024-03-10 I met Alice" -> "i").
func subjectWord(words []string) string {
	i := 0
	switch strings.ToLower(strings.Trim(words[0], ",.;:!?")) {
	case "on", "in":
		j := 1
		for j < len(words) && temporalToken(words[j]) {
			j++
		}
		if j > 1 && j < len(words) {
			i = j
		}
	}
	return strings.ToLower(strings.Trim(words[i], ",.;:!?"))
}

func temporalToken(w string) bool {
	w = strings.Trim(strings.ToLower(w), ",.;:!?")
	if w == "" {
		return false
	}
	if strings.IndexFunc(w, unicode.IsDigit) >= 0 {
		return true
	}
	return monthTokens[w]
}

type relation struct {
	key    string // normalized subject + relation
	object string
}

func extractRelation(text string) relation {
	for _, p := range relationPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		subject := strings.ToLower(strings.TrimSpace(m[1]))
		rel := strings.ToLower(strings.TrimSpace(m[2]))
		return relation{
			key:    subject + "|" + rel,
			object: strings.TrimSpace(m[3]),
		}
	}
	return relation{}
}

func parseableDate(candidate string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, candidate); err == nil {
			return true
		}
	}
	return false
}

// nonLatinText reports whether the text carries letters outside the Latin
// script, which makes space-based word counting meaningless.
func nonLatinText(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.In(r, unicode.Latin) {
			return true
		}
	}
	return false
}

func pastTense(text string) bool {
	for _, w := range strings.Fields(text) {
		w = strings.ToLower(strings.Trim(w, ",.;:!?"))
		if w == "met" || w == "went" || w == "was" || w == "were" || strings.HasSuffix(w, "ed") {
			return true
		}
	}
	return false
}

// FormatResult renders the three labeled sections consumed by downstream
// tooling: VALID:, INVALID:, SUGGESTIONS:.
func FormatResult(res models.ValidationResult) string {
	var b strings.Builder
	b.WriteString("VALID:\n")
	for _, f := range res.ValidFacts {
		fmt.Fprintf(&b, "- %s\n", f.Text)
	}
	b.WriteString("INVALID:\n")
	for _, f := range res.InvalidFacts {
		fmt.Fprintf(&b, "- %s (%s)\n", f.Fact.Text, f.Reason)
	}
	b.WriteString("SUGGESTIONS:\n")
	for _, s := range res.Suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return b.String()
}
