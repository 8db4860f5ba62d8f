package llm

import (
	"context"
	"fmt"

	"github.com/bbookman/mom0mind/internal/config"
)

// Request 是一次文本生成请求。Temperature 和 MaxTokens 为零值时
// 由各客户端使用其服务端默认值。
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response 是一次文本生成的结果。
type Response struct {
	Text  string
	Model string
}

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
func NewClient(cfg config.LLMSection) (LLM, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.Config.Model, cfg.Config.OllamaBaseURL)
	case "openai":
		return NewOpenAI(cfg.Config.Model, cfg.Config.APIKey, cfg.Config.OpenAIBaseURL)
	case "gemini":
		return NewGemini(context.Background(), cfg.Config.Model, cfg.Config.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
