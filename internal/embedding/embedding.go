package embedding

import (
	"context"
	"fmt"

	"github.com/bbookman/mom0mind/internal/config"
)

// Embedding 定义了所有 embedding 模型需要实现的接口。
type Embedding interface {
	// Embed 为单个文本生成嵌入向量。
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch 为一批文本生成嵌入向量。
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// NewModel 根据配置创建并返回一个新的 Embedding 模型实例。
func NewModel(cfg config.EmbedderSection) (Embedding, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaModel(cfg.Config.Model, cfg.Config.OllamaBaseURL)
	case "openai":
		return NewOpenAIModel(cfg.Config.APIKey, cfg.Config.Model)
	case "gemini":
		return NewGoogleModel(cfg.Config.APIKey, cfg.Config.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
