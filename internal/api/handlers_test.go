package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bbookman/mom0mind/internal/chat"
	"github.com/bbookman/mom0mind/internal/config"
	"github.com/bbookman/mom0mind/internal/memory/extractor"
	"github.com/bbookman/mom0mind/internal/memory/service"
	"github.com/bbookman/mom0mind/internal/memory/store"
	"github.com/bbookman/mom0mind/internal/memory/validator"
	"github.com/bbookman/mom0mind/internal/prompt"
	"github.com/bbookman/mom0mind/pkg/logger"
)

func newTestRouter(t *testing.T, checks map[string]func(context.Context) error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("api-test", "")
	st := store.NewMemStore(nil)
	memorySvc := service.NewMemoryService(extractor.NewRuleExtractor(), validator.New(nil, nil), st, log)

	prompts, err := prompt.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	chatSvc := chat.NewService(memorySvc, nil, nil, prompts, config.ChatOptions{MaxContextMemories: 5, ResponseTimeout: 5}, log)

	return NewRouter(NewAPI(memorySvc, chatSvc, log, checks), config.ServerConfig{})
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHealthzReportsFailingDependency(t *testing.T) {
	router := newTestRouter(t, map[string]func(context.Context) error{
		"milvus": func(context.Context) error { return nil },
		"redis":  func(context.Context) error { return errors.New("connection refused") },
	})

	w := doJSON(router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"status":"degraded"`) {
		t.Errorf("body = %s", body)
	}
	if !strings.Contains(body, `"milvus":"ok"`) || !strings.Contains(body, "connection refused") {
		t.Errorf("dependency detail missing: %s", body)
	}
}

func TestAddAndListMemories(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/memories", map[string]string{
		"user_id": "bruce",
		"content": "I live in Seattle.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/api/v1/memories?user_id=bruce", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Seattle") {
		t.Errorf("list body = %s", w.Body.String())
	}
}

func TestAddMemoryRequiresFields(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodPost, "/api/v1/memories", map[string]string{"user_id": "bruce"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAddMemoryNoExtractableContent(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodPost, "/api/v1/memories", map[string]string{
		"user_id": "bruce",
		"content": "   ",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestResetMemories(t *testing.T) {
	router := newTestRouter(t, nil)

	doJSON(router, http.MethodPost, "/api/v1/memories", map[string]string{
		"user_id": "bruce",
		"content": "I live in Seattle.",
	})
	w := doJSON(router, http.MethodDelete, "/api/v1/memories?user_id=bruce", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/v1/memories?user_id=bruce", nil)
	if strings.Contains(w.Body.String(), "Seattle") {
		t.Errorf("memories survived reset: %s", w.Body.String())
	}
}

func TestResetRequiresUserID(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodDelete, "/api/v1/memories", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	doJSON(router, http.MethodPost, "/api/v1/memories", map[string]string{
		"user_id": "bruce",
		"content": "My favorite food is ramen.",
	})

	w := doJSON(router, http.MethodPost, "/api/v1/chat", map[string]string{
		"user_id": "bruce",
		"query":   "What's my favorite food?",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "ramen") {
		t.Errorf("chat body = %s", w.Body.String())
	}
}

func TestChatEmptyQuery(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodPost, "/api/v1/chat", map[string]string{
		"user_id": "bruce",
		"query":   "",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDiagnosticsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodPost, "/api/v1/diagnostics", map[string]string{
		"error_message": "dial tcp 127.0.0.1:19530: connection refused",
		"operation":     "milvus insert",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"classification":"connection"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mw := RateLimitMiddleware(config.RateLimiterConfig{
		Enabled:     true,
		Algorithm:   "fixedWindow",
		FixedWindow: config.FixedWindowConfig{Limit: 2, Window: "1m"},
	})

	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first requests blocked: %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", codes[2])
	}
}
