package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bbookman/mom0mind/internal/database/kafka"
	"github.com/bbookman/mom0mind/internal/memory/extractor"
	"github.com/bbookman/mom0mind/internal/memory/service"
	"github.com/bbookman/mom0mind/internal/models"
	"github.com/bbookman/mom0mind/pkg/logger"
)

// KafkaConsumer consumes conversation events from a Kafka topic and feeds
// them through the memory pipeline.
type KafkaConsumer struct {
	kafkaClient   *kafka.Client
	memoryService *service.MemoryService
	logger        *logger.Logger
}

// NewKafkaConsumer creates a new KafkaConsumer.
func NewKafkaConsumer(kafkaClient *kafka.Client, memoryService *service.MemoryService, logger *logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		kafkaClient:   kafkaClient,
		memoryService: memoryService,
		logger:        logger,
	}
}

// Start runs the consume loop in a background goroutine until ctx is done.
// Only model-role events carry no user facts, so they are skipped early.
func (c *KafkaConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.kafkaClient.Reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to fetch message")
				continue
			}

			var event models.ConversationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to unmarshal message")
				continue
			}

			if event.Role == models.SpeakerUser {
				_, err := c.memoryService.AddMemory(ctx, service.AddInput{
					Content:     event.Text,
					UserID:      event.User,
					Source:      "conversation",
					TimeContext: event.CreatedAt.Format("2006-01-02"),
				})
				if err != nil && !errors.Is(err, extractor.ErrNoExtractableContent) {
					c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to add memory")
					continue
				}
			}

			if err := c.kafkaClient.Reader.CommitMessages(ctx, msg); err != nil {
				c.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("failed to commit message")
			}
		}
	}()
}
