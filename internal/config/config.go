package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"encoding/json"

	"gopkg.in/yaml.v3"
)

// VectorStoreConfig 定义了向量数据库的连接和集合配置。
type VectorStoreConfig struct {
	CollectionName     string `json:"collection_name" yaml:"collection_name"`         // 集合名称
	Host               string `json:"host" yaml:"host"`                               // 服务主机地址
	Port               int    `json:"port" yaml:"port"`                               // 服务端口
	EmbeddingModelDims int    `json:"embedding_model_dims" yaml:"embedding_model_dims"` // 向量维度
}

// Address 返回 "host:port" 形式的连接地址。
func (c VectorStoreConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// VectorStoreSection 包含向量数据库提供商及其配置。
type VectorStoreSection struct {
	Provider string            `json:"provider" yaml:"provider"` // 提供商 (例如: "milvus")
	Config   VectorStoreConfig `json:"config" yaml:"config"`
}

// LLMModelConfig 定义了 LLM 模型的配置。
type LLMModelConfig struct {
	Model         string  `json:"model" yaml:"model"`                             // 模型名称
	Temperature   float64 `json:"temperature" yaml:"temperature"`                 // 采样温度
	MaxTokens     int     `json:"max_tokens" yaml:"max_tokens"`                   // 最大生成 token 数
	OllamaBaseURL string  `json:"ollama_base_url,omitempty" yaml:"ollama_base_url"` // Ollama 服务地址
	OpenAIBaseURL string  `json:"openai_base_url,omitempty" yaml:"openai_base_url"` // OpenAI 兼容服务地址
	APIKey        string  `json:"api_key,omitempty" yaml:"api_key"`               // API 密钥
}

// LLMSection 包含 LLM 提供商及其配置。
type LLMSection struct {
	Provider string         `json:"provider" yaml:"provider"` // 提供商 (例如: "ollama", "openai", "gemini")
	Config   LLMModelConfig `json:"config" yaml:"config"`
}

// EmbedderModelConfig 定义了 Embedding 模型的配置。
type EmbedderModelConfig struct {
	Model         string `json:"model" yaml:"model"`                             // 模型名称
	OllamaBaseURL string `json:"ollama_base_url,omitempty" yaml:"ollama_base_url"` // Ollama 服务地址
	APIKey        string `json:"api_key,omitempty" yaml:"api_key"`               // API 密钥
}

// EmbedderSection 包含 Embedding 提供商及其配置。
type EmbedderSection struct {
	Provider string              `json:"provider" yaml:"provider"`
	Config   EmbedderModelConfig `json:"config" yaml:"config"`
}

// MemoryConfig 汇总了记忆系统依赖的三个外部客户端配置。
type MemoryConfig struct {
	VectorStore VectorStoreSection `json:"vector_store" yaml:"vector_store"`
	LLM         LLMSection         `json:"llm" yaml:"llm"`
	Embedder    EmbedderSection    `json:"embedder" yaml:"embedder"`
}

// ProcessingOptions 定义了批量摄取 markdown 文件的选项。
type ProcessingOptions struct {
	Recursive           bool     `json:"recursive" yaml:"recursive"`                         // 是否递归遍历目录
	FileExtensions      []string `json:"file_extensions" yaml:"file_extensions"`             // 接受的文件扩展名 (例如: [".md"])
	UserID              string   `json:"user_id" yaml:"user_id"`                             // 记忆归属的默认用户
	BatchSize           int      `json:"batch_size" yaml:"batch_size"`                       // 每批处理的条目数
	DelayBetweenBatches float64  `json:"delay_between_batches" yaml:"delay_between_batches"` // 批次间隔 (秒)
}

// Delay 返回批次之间的等待时长。
func (p ProcessingOptions) Delay() time.Duration {
	return time.Duration(p.DelayBetweenBatches * float64(time.Second))
}

// ChatOptions 定义了聊天回答的选项。
type ChatOptions struct {
	Temperature        float64 `json:"temperature" yaml:"temperature"`                   // LLM 采样温度
	MaxContextMemories int     `json:"max_context_memories" yaml:"max_context_memories"` // 上下文中最多包含的记忆条数
	ResponseTimeout    float64 `json:"response_timeout" yaml:"response_timeout"`         // 回答超时 (秒)
}

// Timeout 返回单次回答允许的最长时长。
func (c ChatOptions) Timeout() time.Duration {
	return time.Duration(c.ResponseTimeout * float64(time.Second))
}

// RotationConfig 定义了日志文件轮转策略。
type RotationConfig struct {
	MaxSizeMB  int `json:"max_size_mb" yaml:"max_size_mb"`   // 单个日志文件上限 (MB)
	MaxBackups int `json:"max_backups" yaml:"max_backups"`   // 保留的历史文件数
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"` // 保留天数
}

// LoggingConfig 定义了日志记录器的配置。
type LoggingConfig struct {
	Level     string         `json:"level" yaml:"level"`         // 日志级别 (例如: "info", "debug")
	Directory string         `json:"directory" yaml:"directory"` // 日志目录；为空时输出到标准输出
	Rotation  RotationConfig `json:"rotation" yaml:"rotation"`   // 轮转策略
	Format    string         `json:"format" yaml:"format"`       // "json" 或 "text"
}

// KafkaIntakeConfig 定义了会话事件摄取的 Kafka 配置。
type KafkaIntakeConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"` // Broker 地址列表
	Topic   string   `json:"topic" yaml:"topic"`     // 会话事件主题
	GroupID string   `json:"group_id" yaml:"group_id"`
}

// IntakeConfig 包含所有可选的事件摄取来源。
type IntakeConfig struct {
	Kafka KafkaIntakeConfig `json:"kafka" yaml:"kafka"`
}

// RedisDedupeConfig 定义了摄取去重缓存的 Redis 配置。
type RedisDedupeConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Address  string `json:"address" yaml:"address"` // Redis 服务器地址 (例如: "localhost:6379")
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// DedupeConfig 包含摄取去重相关的配置。
type DedupeConfig struct {
	Redis RedisDedupeConfig `json:"redis" yaml:"redis"`
}

// TokenBucketConfig 定义了令牌桶限流算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `json:"rate" yaml:"rate"` // 每秒生成的令牌数
	Capacity int     `json:"capacity" yaml:"capacity"`
}

// FixedWindowConfig 定义了固定窗口计数器限流算法的配置。
type FixedWindowConfig struct {
	Limit  int    `json:"limit" yaml:"limit"`
	Window string `json:"window" yaml:"window"` // 例如: "1m", "30s"
}

// RateLimiterConfig 定义了 API 限流器的配置。
type RateLimiterConfig struct {
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Algorithm   string            `json:"algorithm" yaml:"algorithm"` // 支持: "tokenBucket", "fixedWindow"
	TokenBucket TokenBucketConfig `json:"token_bucket" yaml:"token_bucket"`
	FixedWindow FixedWindowConfig `json:"fixed_window" yaml:"fixed_window"`
}

// CircuitBreakerConfig 定义了包裹 LLM 调用的熔断器配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `json:"enabled" yaml:"enabled"`
	FailureThreshold uint32 `json:"failure_threshold" yaml:"failure_threshold"`
	SuccessThreshold uint32 `json:"success_threshold" yaml:"success_threshold"`
	Timeout          string `json:"timeout" yaml:"timeout"` // 例如: "30s"
}

// ServerConfig 定义了 HTTP API 的配置。
type ServerConfig struct {
	Address        string               `json:"address" yaml:"address"` // 监听地址 (例如: ":8080")
	RateLimiter    RateLimiterConfig    `json:"rate_limiter" yaml:"rate_limiter"`
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker" yaml:"circuit_breaker"`
}

// Config 是整个配置文件的根结构。进程启动时加载一次，
// 之后作为不可变值显式传入各组件的构造函数。
type Config struct {
	Memory              MemoryConfig      `json:"memory_config" yaml:"memory_config"`
	MarkdownDirectories []string          `json:"markdown_directories" yaml:"markdown_directories"`
	PromptsDirectory    string            `json:"prompts_directory,omitempty" yaml:"prompts_directory"` // 站点自定义提示词目录，覆盖内置模板

	Processing          ProcessingOptions `json:"processing_options" yaml:"processing_options"`
	Chat                ChatOptions       `json:"chat_options" yaml:"chat_options"`
	Logging             LoggingConfig     `json:"logging" yaml:"logging"`
	Intake              IntakeConfig      `json:"intake" yaml:"intake"`
	Dedupe              DedupeConfig      `json:"dedupe" yaml:"dedupe"`
	Server              ServerConfig      `json:"server" yaml:"server"`
}

// Load 从指定路径加载并解析配置文件。JSON 是默认格式，
// 扩展名为 .yaml/.yml 时按 YAML 解析。
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 '%s': %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置失败: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置失败: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Processing.UserID == "" {
		c.Processing.UserID = "default"
	}
	if c.Processing.BatchSize <= 0 {
		c.Processing.BatchSize = 10
	}
	if len(c.Processing.FileExtensions) == 0 {
		c.Processing.FileExtensions = []string{".md"}
	}
	if c.Chat.MaxContextMemories <= 0 {
		c.Chat.MaxContextMemories = 5
	}
	if c.Chat.ResponseTimeout <= 0 {
		c.Chat.ResponseTimeout = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
}

func (c *Config) validate() error {
	if c.Memory.VectorStore.Provider == "" {
		return fmt.Errorf("配置缺少 memory_config.vector_store.provider")
	}
	if c.Memory.Embedder.Provider == "" {
		return fmt.Errorf("配置缺少 memory_config.embedder.provider")
	}
	if c.Memory.VectorStore.Config.EmbeddingModelDims <= 0 {
		return fmt.Errorf("memory_config.vector_store.config.embedding_model_dims 必须为正数")
	}
	return nil
}
