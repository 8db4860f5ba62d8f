package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bbookman/mom0mind/internal/memory/extractor"
	"github.com/bbookman/mom0mind/internal/memory/store"
	"github.com/bbookman/mom0mind/internal/memory/validator"
	"github.com/bbookman/mom0mind/internal/models"
	"github.com/bbookman/mom0mind/pkg/logger"
)

// ErrTimeout reports that an upstream call (model or store) did not finish
// in time. Callers are expected to skip the unit of work and continue.
var ErrTimeout = errors.New("memory: operation timed out")

// IsTimeout reports whether err is a timeout, either ours or a context
// deadline bubbling up from a client library.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// AddInput is one unit of raw content to memorize.
type AddInput struct {
	Content     string
	UserID      string
	Source      string // origin of the content, usually a file path
	TimeContext string // temporal anchor for relative dates, e.g. file date
}

// AddResult summarizes one AddMemory call.
type AddResult struct {
	Stored     []models.MemoryRecord
	Validation models.ValidationResult
}

// MemoryService runs the extract -> validate -> store pipeline and serves
// retrieval over the stored records.
type MemoryService struct {
	extractor extractor.Extractor
	validator *validator.Validator
	store     store.Store
	log       *logger.Logger
}

// NewMemoryService creates a new MemoryService.
func NewMemoryService(ext extractor.Extractor, val *validator.Validator, st store.Store, log *logger.Logger) *MemoryService {
	return &MemoryService{
		extractor: ext,
		validator: val,
		store:     st,
		log:       log,
	}
}

// AddMemory extracts facts from the content, validates them, and stores
// the valid ones. Invalid facts are reported in the result, never stored.
// An extraction failure on empty content returns
// extractor.ErrNoExtractableContent unchanged.
func (s *MemoryService) AddMemory(ctx context.Context, input AddInput) (*AddResult, error) {
	facts, err := s.extractor.Extract(ctx, extractor.ExtractRequest{
		Content:     input.Content,
		TimeContext: input.TimeContext,
	})
	if err != nil {
		if errors.Is(err, extractor.ErrNoExtractableContent) {
			return nil, err
		}
		if IsTimeout(err) {
			return nil, fmt.Errorf("extract facts: %w", ErrTimeout)
		}
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	result, err := s.validator.Validate(facts)
	if err != nil {
		return nil, fmt.Errorf("validate facts: %w", err)
	}

	out := &AddResult{Validation: result}
	for _, fact := range result.ValidFacts {
		record := models.MemoryRecord{
			ID:        uuid.New().String(),
			UserID:    input.UserID,
			Text:      fact.Text,
			Source:    input.Source,
			CreatedAt: time.Now(),
		}
		if err := s.store.Add(ctx, &record); err != nil {
			if IsTimeout(err) {
				return out, fmt.Errorf("store fact: %w", ErrTimeout)
			}
			s.log.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to store fact")
			return out, fmt.Errorf("store fact: %w", err)
		}
		out.Stored = append(out.Stored, record)
	}

	s.log.WithPayload(map[string]interface{}{
		"source":  input.Source,
		"stored":  len(out.Stored),
		"invalid": len(result.InvalidFacts),
	}).Info("memory added")
	return out, nil
}

// ErrInvalidFact reports that a single fact failed validation. The reason
// is appended to the error text.
var ErrInvalidFact = errors.New("memory: fact failed validation")

// AddFact runs a single pre-extracted fact through validation and stores
// it when it passes. A fact the validator rejects is never stored.
func (s *MemoryService) AddFact(ctx context.Context, userID, text, source string) (*models.MemoryRecord, error) {
	result, err := s.validator.Validate([]models.Fact{{Text: text}})
	if err != nil {
		return nil, fmt.Errorf("validate fact: %w", err)
	}
	if len(result.InvalidFacts) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFact, result.InvalidFacts[0].Reason)
	}

	record := models.MemoryRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		Source:    source,
		CreatedAt: time.Now(),
	}
	if err := s.store.Add(ctx, &record); err != nil {
		return nil, fmt.Errorf("store fact: %w", err)
	}
	return &record, nil
}

// Search returns up to limit memories relevant to the query for userID.
func (s *MemoryService) Search(ctx context.Context, query, userID string, limit int) ([]models.MemoryRecord, error) {
	records, err := s.store.Search(ctx, query, userID, limit)
	if err != nil {
		if IsTimeout(err) {
			return nil, fmt.Errorf("search memories: %w", ErrTimeout)
		}
		return nil, fmt.Errorf("search memories: %w", err)
	}
	return records, nil
}

// GetAll returns every memory stored for userID.
func (s *MemoryService) GetAll(ctx context.Context, userID string) ([]models.MemoryRecord, error) {
	records, err := s.store.GetAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get memories: %w", err)
	}
	return records, nil
}

// Reset removes every memory stored for userID.
func (s *MemoryService) Reset(ctx context.Context, userID string) error {
	if err := s.store.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset memories: %w", err)
	}
	s.log.WithPayload(map[string]interface{}{"user_id": userID}).Warn("memories reset")
	return nil
}
