package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bbookman/mom0mind/internal/config"
	"github.com/bbookman/mom0mind/internal/llm"
	"github.com/bbookman/mom0mind/internal/models"
	"github.com/bbookman/mom0mind/internal/prompt"
	"github.com/bbookman/mom0mind/pkg/circuitbreaker"
	"github.com/bbookman/mom0mind/pkg/logger"
)

// ErrTimeout is returned when the model does not answer within the
// configured response timeout. The accompanying message is still safe to
// show to the user.
var ErrTimeout = errors.New("chat: response timed out")

// Searcher retrieves the memories most relevant to a query for one user.
// The memory service implements it.
type Searcher interface {
	Search(ctx context.Context, query, userID string, limit int) ([]models.MemoryRecord, error)
}

// Service answers user queries from stored memories. Retrieval feeds a
// rendered prompt into the model; when the model is unavailable or times
// out, the deterministic responder answers from the same memories instead.
type Service struct {
	memories  Searcher
	client    llm.LLM
	breaker   *circuitbreaker.Breaker
	prompts   *prompt.Registry
	responder *Responder
	opts      config.ChatOptions
	log       *logger.Logger
}

// NewService wires a chat service. client may be nil, in which case every
// answer comes from the deterministic responder.
func NewService(memories Searcher, client llm.LLM, breaker *circuitbreaker.Breaker, prompts *prompt.Registry, opts config.ChatOptions, log *logger.Logger) *Service {
	return &Service{
		memories:  memories,
		client:    client,
		breaker:   breaker,
		prompts:   prompts,
		responder: NewResponder(),
		opts:      opts,
		log:       log,
	}
}

// Chat runs one turn for userID. The returned string is always suitable
// for display; a non-nil error reports what went wrong alongside it.
func (s *Service) Chat(ctx context.Context, userID, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	records, err := s.memories.Search(ctx, query, userID, s.opts.MaxContextMemories)
	if err != nil {
		s.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("memory search failed, answering without context")
		records = nil
	}

	chatCtx := models.ChatContext{UserID: userID, Memories: records, Query: query}

	if s.client == nil {
		return s.responder.Respond(chatCtx)
	}

	answer, err := s.generate(ctx, chatCtx)
	if err == nil {
		return answer, nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("model response timed out")
		msg, rerr := s.prompts.Render("chat/error_response", map[string]string{
			"query":         query,
			"error_message": "the response took too long; please try again",
		})
		if rerr != nil {
			msg = "The response took too long. Please try again."
		}
		return msg, ErrTimeout
	}

	s.log.WithError(models.ErrorInfo{Message: err.Error()}).Warn("model unavailable, falling back to direct answer")
	return s.responder.Respond(chatCtx)
}

// generate renders the chat prompt and queries the model under the
// circuit breaker and the configured response timeout.
func (s *Service) generate(ctx context.Context, chatCtx models.ChatContext) (string, error) {
	rendered, err := s.prompts.Render("chat/user_interaction", map[string]string{
		"user_id": chatCtx.UserID,
		"context": memoryContext(chatCtx),
		"query":   ResolvePronouns(chatCtx.Query, chatCtx.UserID),
	})
	if err != nil {
		return "", fmt.Errorf("render chat prompt: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout())
	defer cancel()

	var resp *llm.Response
	call := func() error {
		var cerr error
		resp, cerr = s.client.GenerateContent(callCtx, &llm.Request{
			Prompt:      rendered,
			Temperature: s.opts.Temperature,
		})
		return cerr
	}

	if s.breaker != nil {
		err = s.breaker.Do(call)
	} else {
		err = call()
	}
	if err != nil {
		if callCtx.Err() != nil {
			return "", context.DeadlineExceeded
		}
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// memoryContext renders retrieved memories as the fact block the chat
// prompt expects. Without memories the model is told so explicitly, which
// keeps it from inventing details.
func memoryContext(chatCtx models.ChatContext) string {
	if len(chatCtx.Memories) == 0 {
		return fmt.Sprintf("No specific information available about %s.", chatCtx.UserID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Facts about %s:\n", chatCtx.UserID)
	for _, mem := range chatCtx.Memories {
		fmt.Fprintf(&b, "- %s\n", mem.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
