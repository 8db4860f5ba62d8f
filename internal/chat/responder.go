package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bbookman/mom0mind/internal/models"
)

// ErrEmptyQuery is returned when a chat turn arrives with no query text.
var ErrEmptyQuery = errors.New("chat: empty query")

// stopwords carry no signal when matching a query against fact text.
var stopwords = map[string]bool{
	"what": true, "whats": true, "is": true, "are": true, "the": true,
	"a": true, "an": true, "do": true, "does": true, "did": true,
	"to": true, "of": true, "for": true, "about": true, "who": true,
	"where": true, "when": true, "how": true, "i": true, "me": true,
	"my": true, "tell": true, "know": true, "you": true,
}

// synonyms connect common query phrasings to the vocabulary facts tend to
// use, so "what do I like to eat" reaches a "favorite food" fact.
var synonyms = map[string][]string{
	"eat": {"food", "eats"}, "eating": {"food"}, "food": {"eat"},
	"like": {"favorite", "likes", "loves"}, "likes": {"favorite", "loves"},
	"love": {"favorite", "loves"}, "drink": {"beverage", "drinks"},
	"job": {"works", "work"}, "live": {"lives", "home"},
	"hobby": {"enjoys", "likes", "plays"}, "hobbies": {"enjoys", "likes", "plays"},
	"from": {"born", "lives"},
}

// Responder answers a query strictly from the supplied memories. It is the
// deterministic fallback behind the LLM-backed chat service and the part
// that owns pronoun resolution.
type Responder struct{}

// NewResponder creates a new Responder.
func NewResponder() *Responder {
	return &Responder{}
}

// Respond resolves first-person pronouns to the bound user, matches the
// query against the fact texts by term overlap, and answers only from the
// matched facts. When nothing matches it says so instead of guessing.
func (r *Responder) Respond(chatCtx models.ChatContext) (string, error) {
	if strings.TrimSpace(chatCtx.Query) == "" {
		return "", ErrEmptyQuery
	}

	resolved := ResolvePronouns(chatCtx.Query, chatCtx.UserID)
	queryTerms := expandTerms(tokenize(resolved))
	// The user's own name appears in nearly every fact, so it carries no
	// relevance signal.
	delete(queryTerms, stem(strings.ToLower(chatCtx.UserID)))
	delete(queryTerms, "user")

	bestScore := 0
	var answers []string
	for _, mem := range chatCtx.Memories {
		score := overlap(queryTerms, tokenize(mem.Text))
		switch {
		case score > bestScore:
			bestScore = score
			answers = []string{mem.Text}
		case score == bestScore && score > 0:
			answers = append(answers, mem.Text)
		}
	}

	if bestScore == 0 {
		return fmt.Sprintf("I don't have that information about %s.", chatCtx.UserID), nil
	}
	return strings.Join(answers, " "), nil
}

// ResolvePronouns rewrites the closed set of first-person pronouns to the
// named user. It is a fixed substitution table, not a grammar pass.
func ResolvePronouns(query, userID string) string {
	name := displayName(userID)
	subs := map[string]string{
		"i": name, "me": name, "my": name + "'s", "mine": name + "'s",
		"i'm": name + " is", "i've": name + " has",
	}

	words := strings.Fields(query)
	for i, w := range words {
		trimmed := strings.Trim(w, ",.;:!?")
		if repl, ok := subs[strings.ToLower(trimmed)]; ok {
			words[i] = strings.Replace(w, trimmed, repl, 1)
		}
	}
	return strings.Join(words, " ")
}

// displayName capitalizes a plain user id for use in prose ("bruce" ->
// "Bruce"); ids that already carry casing or punctuation pass through.
func displayName(userID string) string {
	if userID == "" {
		return "the user"
	}
	r := []rune(userID)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}

func tokenize(s string) []string {
	var terms []string
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'' || r > 127)
	}) {
		w = strings.TrimSuffix(w, "'s")
		w = strings.Trim(w, "'")
		if w == "" || stopwords[w] {
			continue
		}
		terms = append(terms, stem(w))
	}
	return terms
}

// stem strips plural/verb suffixes just enough for overlap matching.
func stem(w string) string {
	if len(w) > 4 && strings.HasSuffix(w, "ies") {
		return w[:len(w)-3] + "y"
	}
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}

func expandTerms(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms)*2)
	for _, t := range terms {
		set[t] = true
		for _, syn := range synonyms[t] {
			set[stem(syn)] = true
		}
	}
	return set
}

func overlap(queryTerms map[string]bool, factTerms []string) int {
	seen := make(map[string]bool, len(factTerms))
	score := 0
	for _, t := range factTerms {
		if queryTerms[t] && !seen[t] {
			score++
			seen[t] = true
		}
	}
	return score
}
