package cli

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/bbookman/mom0mind/internal/chat"
	"github.com/bbookman/mom0mind/internal/config"
	"github.com/bbookman/mom0mind/internal/database/milvus"
	"github.com/bbookman/mom0mind/internal/database/redis"
	"github.com/bbookman/mom0mind/internal/embedding"
	"github.com/bbookman/mom0mind/internal/llm"
	"github.com/bbookman/mom0mind/internal/memory/extractor"
	"github.com/bbookman/mom0mind/internal/memory/service"
	"github.com/bbookman/mom0mind/internal/memory/store"
	"github.com/bbookman/mom0mind/internal/memory/validator"
	"github.com/bbookman/mom0mind/internal/prompt"
	"github.com/bbookman/mom0mind/pkg/circuitbreaker"
	"github.com/bbookman/mom0mind/pkg/logger"
)

// app holds the wired services shared by the CLI commands.
type app struct {
	cfg           *config.Config
	log           *logger.Logger
	memoryService *service.MemoryService
	chatService   *chat.Service
	dedupe        *goredis.Client
	health        map[string]func(context.Context) error
	close         func()
}

// buildApp loads the config and wires the full pipeline. Optional pieces
// (model client, Redis dedupe) degrade to nil instead of failing startup.
func buildApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.New("mom0mind", cfg.Processing.UserID)

	embedder, err := embedding.NewModel(cfg.Memory.Embedder)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	prompts, err := prompt.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if cfg.PromptsDirectory != "" {
		if err := prompts.LoadDir(cfg.PromptsDirectory); err != nil {
			return nil, fmt.Errorf("load prompt overrides: %w", err)
		}
	}

	var closers []func()
	health := make(map[string]func(context.Context) error)
	var st store.Store
	switch cfg.Memory.VectorStore.Provider {
	case "milvus":
		client, err := milvus.GetClient(ctx, cfg.Memory.VectorStore.Config)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		closers = append(closers, client.Close)
		health["milvus"] = client.HealthCheck
		st = store.NewMilvusStore(client, embedder)
	case "memory":
		st = store.NewMemStore(embedder)
	default:
		return nil, fmt.Errorf("未知的向量存储提供商: %s", cfg.Memory.VectorStore.Provider)
	}

	var model llm.LLM
	if cfg.Memory.LLM.Provider != "" {
		model, err = llm.NewClient(cfg.Memory.LLM)
		if err != nil {
			return nil, fmt.Errorf("init llm: %w", err)
		}
	}

	var ext extractor.Extractor = extractor.NewRuleExtractor()
	if model != nil {
		ext = extractor.NewLLMExtractor(model, prompts)
	}

	memorySvc := service.NewMemoryService(ext, validator.New(nil, nil), st, log)

	var breaker *circuitbreaker.Breaker
	if cb := cfg.Server.CircuitBreaker; cb.Enabled {
		timeout, err := time.ParseDuration(cb.Timeout)
		if err != nil {
			timeout = 30 * time.Second
		}
		breaker = circuitbreaker.New(circuitbreaker.Settings{
			FailureThreshold: cb.FailureThreshold,
			SuccessThreshold: cb.SuccessThreshold,
			Timeout:          timeout,
		})
	}
	chatSvc := chat.NewService(memorySvc, model, breaker, prompts, cfg.Chat, log)

	var dedupe *goredis.Client
	if cfg.Dedupe.Redis.Enabled {
		dedupe, err = redis.GetClient(cfg.Dedupe.Redis)
		if err != nil {
			// Dedupe is an optimization; run without it.
			log.Warn("Redis 不可用，禁用摄取去重: " + err.Error())
			dedupe = nil
		} else {
			closers = append(closers, func() { _ = redis.Close() })
			health["redis"] = redis.HealthCheck
		}
	}

	return &app{
		cfg:           cfg,
		log:           log,
		memoryService: memorySvc,
		chatService:   chatSvc,
		dedupe:        dedupe,
		health:        health,
		close: func() {
			for _, fn := range closers {
				fn()
			}
		},
	}, nil
}
