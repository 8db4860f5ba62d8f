package kafka

import (
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bbookman/mom0mind/internal/config"
)

// Client 持有用于会话事件摄取的 Kafka reader 单例实例。
type Client struct {
	Reader *kafka.Reader
	Config config.KafkaIntakeConfig
}

var (
	client  *Client
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化并返回一个 Client 实例。
// 首次调用时会建立管理连接并确保摄取主题存在。
func GetClient(cfg config.KafkaIntakeConfig) (*Client, error) {
	once.Do(func() {
		if len(cfg.Brokers) == 0 {
			initErr = fmt.Errorf("未配置 Kafka brokers")
			return
		}
		if cfg.Topic == "" {
			initErr = fmt.Errorf("未配置 Kafka topic")
			return
		}

		conn, err := kafka.Dial("tcp", cfg.Brokers[0])
		if err != nil {
			initErr = fmt.Errorf("kafka 初始化连接失败: %w", err)
			return
		}
		defer conn.Close()

		partitions, err := conn.ReadPartitions()
		if err != nil {
			initErr = fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
			return
		}
		exists := false
		for _, p := range partitions {
			if p.Topic == cfg.Topic {
				exists = true
				break
			}
		}
		if !exists {
			err = conn.CreateTopics(kafka.TopicConfig{
				Topic:             cfg.Topic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			})
			if err != nil {
				initErr = fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
				return
			}
		}

		groupID := cfg.GroupID
		if groupID == "" {
			groupID = "mom0mind-intake"
		}
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  groupID,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
			Dialer: &kafka.Dialer{
				Timeout: 10 * time.Second,
			},
		})

		client = &Client{Reader: reader, Config: cfg}
	})

	return client, initErr
}

// Close 安全地关闭 Kafka reader。
func (c *Client) Close() error {
	if c.Reader != nil {
		return c.Reader.Close()
	}
	return nil
}
