package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bbookman/mom0mind/internal/models"
)

// Classifier decides whether a fact is specific enough to store. The default
// is rule-based; callers needing real linguistic judgment can inject an
// implementation backed by a model.
type Classifier interface {
	Classify(fact models.Fact) bool
}

var numberPattern = regexp.MustCompile(`\d`)

// RuleClassifier accepts a fact when it carries at least one concrete
// detail: a number, a date, a proper name, or a quoted entity.
type RuleClassifier struct{}

// NewRuleClassifier creates a new RuleClassifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify reports whether the fact contains a concrete detail.
func (c *RuleClassifier) Classify(fact models.Fact) bool {
	if numberPattern.MatchString(fact.Text) {
		return true
	}
	if strings.ContainsAny(fact.Text, `"“”'`) {
		return true
	}
	// Casing conveys nothing outside Latin scripts, so the proper-name
	// heuristic below cannot judge multilingual facts.
	if nonLatinText(fact.Text) {
		return true
	}
	return hasProperName(fact.Text)
}

// commonStarters are capitalized sentence openers that carry no naming
// signal on their own.
var commonStarters = map[string]bool{
	"the": true, "a": true, "an": true, "it": true, "he": true, "she": true,
	"they": true, "we": true, "i": true, "my": true, "this": true,
	"that": true, "there": true, "on": true, "in": true, "at": true,
}

// hasProperName reports a capitalized word that is not a common sentence
// opener and not the generic "The user" subject. A sentence-initial name
// ("Alice loves hiking.") counts.
func hasProperName(text string) bool {
	words := strings.Fields(text)
	for i, w := range words {
		w = strings.Trim(w, ",.;:!?'\"")
		if w == "" || w == "The" {
			continue
		}
		if i == 0 && commonStarters[strings.ToLower(w)] {
			continue
		}
		if i == 1 && strings.EqualFold(words[0], "the") && strings.EqualFold(w, "user") {
			continue
		}
		if unicode.IsUpper([]rune(w)[0]) {
			return true
		}
	}
	return false
}
