package extractor

import (
	"context"
	"strings"
	"unicode"

	"github.com/bbookman/mom0mind/internal/models"
)

// maxFactsPerCall caps the number of facts produced from one input unit.
const maxFactsPerCall = 5

// greetings and filler that never carry a storable fact.
var smallTalk = []string{
	"hello", "hi there", "hey", "good morning", "good afternoon",
	"good evening", "how are you", "how's it going", "thanks", "thank you",
	"you're welcome", "bye", "goodbye", "see you", "nice to meet you",
	"no problem", "sounds good", "ok", "okay",
}

// factVerbs mark a clause as carrying a personal fact, preference, event or
// relationship. A clause with none of these is discarded.
var factVerbs = map[string]bool{
	"is": true, "am": true, "are": true, "was": true, "were": true, "has": true,
	"have": true, "had": true, "likes": true, "like": true, "loves": true,
	"love": true, "hates": true, "hate": true, "prefers": true,
	"prefer": true, "enjoys": true, "enjoy": true, "lives": true,
	"live": true, "lived": true, "works": true, "work": true,
	"worked": true, "met": true, "meets": true, "moved": true,
	"visited": true, "visits": true, "went": true, "plays": true,
	"play": true, "played": true, "studied": true, "studies": true,
	"owns": true, "own": true, "bought": true, "born": true,
	"married": true, "eats": true, "eat": true, "drinks": true,
	"drink": true, "speaks": true, "speak": true, "celebrated": true,
	"started": true, "finished": true, "graduated": true, "joined": true,
	"adopted": true, "traveled": true, "travelled": true,
}

// firstPersonConjugation rewrites the verb when a first-person clause gets
// "The user" as its subject ("I have" -> "The user has").
var firstPersonConjugation = map[string]string{
	"am": "is", "have": "has", "was": "was", "do": "does", "go": "goes",
}

// pastTense verbs keep their form when a first-person subject is rewritten
// ("I met" -> "The user met", never "mets").
var pastTense = map[string]bool{
	"was": true, "were": true, "had": true, "met": true, "moved": true,
	"lived": true, "worked": true, "visited": true, "went": true,
	"played": true, "studied": true, "bought": true, "born": true,
	"married": true, "celebrated": true, "started": true, "finished": true,
	"graduated": true, "joined": true, "adopted": true, "traveled": true,
	"travelled": true,
}

// relativeDays are replaced with the request's time context when one is
// given, anchoring the fact to an absolute date.
var relativeDays = []string{
	"yesterday", "today", "tomorrow", "this morning", "this afternoon",
	"this evening", "tonight", "last night",
}

// RuleExtractor is the deterministic Extractor implementation. It needs no
// model call: clauses are split, filtered and rewritten by a fixed rule set.
type RuleExtractor struct{}

// NewRuleExtractor creates a new RuleExtractor.
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

// Extract produces up to five subject-explicit facts from req.Content.
// An input with no qualifying clause yields an empty slice, not an error;
// only input with no sentence material at all is an ExtractionFailure.
func (e *RuleExtractor) Extract(_ context.Context, req ExtractRequest) ([]models.Fact, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrNoExtractableContent
	}

	clauses := splitClauses(content)
	if len(clauses) == 0 {
		return nil, ErrNoExtractableContent
	}

	var facts []models.Fact
	lastEntity := ""
	for _, clause := range clauses {
		text, ok := e.rewriteClause(clause, lastEntity, req.TimeContext)
		if entity := namedEntity(clause); entity != "" {
			lastEntity = entity
		}
		if !ok {
			continue
		}

		fact := models.Fact{
			Text:          text,
			Language:      detectLanguage(clause),
			SourceExcerpt: clause,
		}
		if temporal := temporalReference(text, req.TimeContext); temporal != "" {
			fact.TemporalContext = temporal
		}
		facts = append(facts, fact)
		if len(facts) == maxFactsPerCall {
			break
		}
	}

	return facts, nil
}

// rewriteClause turns one clause into a complete, subject-explicit sentence,
// or reports that the clause carries no storable fact.
func (e *RuleExtractor) rewriteClause(clause, lastEntity, timeContext string) (string, bool) {
	clause = strings.TrimSpace(clause)
	if clause == "" || isSmallTalk(clause) {
		return "", false
	}
	clause = stripLeadingDay(clause)

	// CJK text has no space-delimited words; the count check only applies
	// to Latin-script clauses.
	words := strings.Fields(clause)
	if len(words) < 2 && !containsNonLatin(clause) {
		return "", false
	}

	if !hasFactVerb(words) && !containsNonLatin(clause) {
		return "", false
	}

	first := strings.ToLower(strings.Trim(words[0], ",.;:!?"))
	switch {
	case first == "i":
		// "I have a dog" -> "The user has a dog."
		verb := strings.ToLower(words[1])
		if conj, ok := firstPersonConjugation[verb]; ok {
			words[1] = conj
		} else if factVerbs[verb] && !pastTense[verb] && !strings.HasSuffix(verb, "s") {
			words[1] = verb + "s"
		}
		clause = "The user " + strings.Join(words[1:], " ")
	case first == "my":
		// "My favorite food is ramen" -> "The user's favorite food is ramen."
		clause = "The user's " + strings.Join(words[1:], " ")
	case first == "she" || first == "he" || first == "they":
		if lastEntity == "" {
			return "", false // pronoun with nothing to bind to
		}
		clause = lastEntity + " " + strings.Join(words[1:], " ")
	case first == "we":
		clause = "The user and others " + strings.Join(words[1:], " ")
	case factVerbs[first]:
		// Clause starts with a verb, subject omitted: "Met Alice for coffee".
		clause = "The user " + lowerFirst(clause)
	}

	if timeContext != "" {
		clause = anchorRelativeDays(clause, timeContext)
	}

	return sentence(clause), true
}

func isSmallTalk(clause string) bool {
	lc := strings.ToLower(strings.TrimRight(clause, ".!?"))
	for _, phrase := range smallTalk {
		if lc == phrase || strings.HasPrefix(lc, phrase+",") || strings.HasPrefix(lc, phrase+" ") && len(lc) < len(phrase)+12 {
			return true
		}
	}
	return false
}

func hasFactVerb(words []string) bool {
	for _, w := range words {
		if factVerbs[strings.ToLower(strings.Trim(w, ",.;:!?'\""))] {
			return true
		}
	}
	return false
}

// namedEntity returns the last capitalized word that is not sentence-initial,
// the most recent candidate for later pronoun resolution.
func namedEntity(clause string) string {
	words := strings.Fields(clause)
	entity := ""
	for i, w := range words {
		if i == 0 {
			continue
		}
		w = strings.Trim(w, ",.;:!?'\"")
		if w == "" {
			continue
		}
		r := []rune(w)
		if unicode.IsUpper(r[0]) && !allUpper(w) {
			entity = w
		}
	}
	return entity
}

func allUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// stripLeadingDay moves a leading relative-day phrase to the end of the
// clause so subject resolution sees the real first word
// ("Yesterday I met Alice" -> "I met Alice yesterday").
func stripLeadingDay(clause string) string {
	lc := strings.ToLower(clause)
	for _, day := range relativeDays {
		if !strings.HasPrefix(lc, day) {
			continue
		}
		if len(lc) > len(day) && lc[len(day)] != ' ' && lc[len(day)] != ',' {
			continue // word boundary, not a prefix like "todays"
		}
		rest := strings.TrimLeft(clause[len(day):], " ,")
		if rest == "" {
			return clause
		}
		switch strings.ToLower(strings.Trim(strings.Fields(rest)[0], ",.;:!?")) {
		case "i", "my", "we", "she", "he", "they":
			return rest + " " + lc[:len(day)]
		}
		return clause
	}
	return clause
}

// anchorRelativeDays replaces relative day words with the absolute time
// context ("yesterday" -> "on 2024-03-10").
func anchorRelativeDays(clause, timeContext string) string {
	lc := strings.ToLower(clause)
	for _, day := range relativeDays {
		idx := strings.Index(lc, day)
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(clause[:idx]) + " on " + timeContext + clause[idx+len(day):]
	}
	return clause
}

// temporalReference reports the temporal phrase embedded in the fact text.
func temporalReference(text, timeContext string) string {
	if timeContext != "" && strings.Contains(text, timeContext) {
		return timeContext
	}
	return ""
}

// splitClauses breaks content into clause-sized candidate units: sentence
// terminators first, then commas and semicolons inside each sentence.
func splitClauses(content string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range content {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}

	var clauses []string
	for _, s := range sentences {
		for _, c := range strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ';' || r == '，' || r == '；'
		}) {
			c = strings.TrimSpace(strings.TrimRight(c, ".!?。！？"))
			if c != "" {
				clauses = append(clauses, c)
			}
		}
	}
	return clauses
}

// sentence capitalizes the clause and terminates it with a period.
func sentence(clause string) string {
	clause = strings.TrimSpace(clause)
	r := []rune(clause)
	if len(r) > 0 && unicode.IsLower(r[0]) {
		r[0] = unicode.ToUpper(r[0])
		clause = string(r)
	}
	if !strings.HasSuffix(clause, ".") && !strings.HasSuffix(clause, "。") {
		clause += "."
	}
	return clause
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) > 0 {
		r[0] = unicode.ToLower(r[0])
	}
	return string(r)
}

func containsNonLatin(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.In(r, unicode.Latin) {
			return true
		}
	}
	return false
}

// detectLanguage is a coarse script-based guess; the fact text itself is
// never translated.
func detectLanguage(s string) string {
	for _, r := range s {
		switch {
		case unicode.In(r, unicode.Han):
			return "zh"
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			return "ja"
		case unicode.In(r, unicode.Hangul):
			return "ko"
		case unicode.In(r, unicode.Cyrillic):
			return "ru"
		}
	}
	return "en"
}
