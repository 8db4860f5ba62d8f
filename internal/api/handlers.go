package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bbookman/mom0mind/internal/chat"
	"github.com/bbookman/mom0mind/internal/diagnose"
	"github.com/bbookman/mom0mind/internal/memory/extractor"
	"github.com/bbookman/mom0mind/internal/memory/service"
	"github.com/bbookman/mom0mind/internal/memory/validator"
	"github.com/bbookman/mom0mind/internal/models"
	"github.com/bbookman/mom0mind/pkg/logger"
)

// API provides the HTTP handlers over the memory and chat services.
type API struct {
	memoryService *service.MemoryService
	chatService   *chat.Service
	logger        *logger.Logger
	checks        map[string]func(context.Context) error
}

// NewAPI creates a new API handler. checks are named dependency probes
// (vector store, dedupe cache) reported through /healthz; nil disables them.
func NewAPI(memoryService *service.MemoryService, chatService *chat.Service, logger *logger.Logger, checks map[string]func(context.Context) error) *API {
	return &API{
		memoryService: memoryService,
		chatService:   chatService,
		logger:        logger,
		checks:        checks,
	}
}

// AddMemoryHandler runs raw content through the extraction pipeline and
// stores the valid facts.
func (a *API) AddMemoryHandler(c *gin.Context) {
	var payload struct {
		UserID      string `json:"user_id" binding:"required"`
		Content     string `json:"content" binding:"required"`
		Source      string `json:"source"`
		TimeContext string `json:"time_context"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		a.logger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if payload.Source == "" {
		payload.Source = "api"
	}

	result, err := a.memoryService.AddMemory(c.Request.Context(), service.AddInput{
		Content:     payload.Content,
		UserID:      payload.UserID,
		Source:      payload.Source,
		TimeContext: payload.TimeContext,
	})
	switch {
	case errors.Is(err, extractor.ErrNoExtractableContent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no extractable content"})
		return
	case errors.Is(err, validator.ErrInconsistentPartition):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation produced an inconsistent result"})
		return
	case service.IsTimeout(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "processing timed out, please retry"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add memory"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"stored":      result.Stored,
		"invalid":     result.Validation.InvalidFacts,
		"suggestions": result.Validation.Suggestions,
	})
}

// GetMemoriesHandler lists a user's memories; with a q parameter it runs
// a relevance search instead.
func (a *API) GetMemoriesHandler(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if query := c.Query("q"); query != "" {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		records, err := a.memoryService.Search(c.Request.Context(), query, userID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search memories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"memories": records})
		return
	}

	records, err := a.memoryService.GetAll(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve memories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": records})
}

// ResetMemoriesHandler removes every memory for a user.
func (a *API) ResetMemoriesHandler(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if err := a.memoryService.Reset(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset memories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// ChatHandler answers a query from the user's stored memories.
func (a *API) ChatHandler(c *gin.Context) {
	var payload struct {
		UserID string `json:"user_id" binding:"required"`
		Query  string `json:"query"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	answer, err := a.chatService.Chat(c.Request.Context(), payload.UserID, payload.Query)
	switch {
	case errors.Is(err, chat.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	case errors.Is(err, chat.ErrTimeout):
		// The answer is a user-facing retry suggestion.
		c.JSON(http.StatusGatewayTimeout, gin.H{"response": answer})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}

// DiagnoseHandler classifies a reported error and returns guidance. The
// report is advisory; it never changes stored state.
func (a *API) DiagnoseHandler(c *gin.Context) {
	var payload struct {
		ErrorMessage string `json:"error_message" binding:"required"`
		Operation    string `json:"operation"`
		SystemState  string `json:"system_state"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	report := diagnose.Diagnose(diagnose.Signal{
		ErrorMessage: payload.ErrorMessage,
		Operation:    payload.Operation,
		SystemState:  payload.SystemState,
		Timestamp:    time.Now(),
	})
	c.JSON(http.StatusOK, report)
}

// HealthHandler reports liveness and the state of each registered
// dependency probe. Any failing probe degrades the response to 503.
func (a *API) HealthHandler(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}

	if len(a.checks) > 0 {
		deps := gin.H{}
		for name, check := range a.checks {
			if err := check(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				deps[name] = err.Error()
				continue
			}
			deps[name] = "ok"
		}
		body["dependencies"] = deps
	}

	c.JSON(status, body)
}
