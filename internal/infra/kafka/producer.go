package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"forumyzer-go/internal/config"
	"forumyzer-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// 留言板事件类型
const (
	EventBoardUpdated = "updated"
	EventBoardEnded   = "ended"
	EventBoardDeleted = "deleted"
)

// BoardEvent 留言板变更事件消息体
// API 进程在每次持久化后发布，worker 消费后同步 ES 与归档
type BoardEvent struct {
	Type         string    `json:"type"`
	BoardID      string    `json:"board_id"`
	VideoID      string    `json:"video_id"`
	IsLive       bool      `json:"is_live"`
	MessageCount int       `json:"message_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// BoardEventPublisher 将留言板事件写入指定 topic
type BoardEventPublisher struct {
	topic string
}

func NewBoardEventPublisher(topic string) *BoardEventPublisher {
	return &BoardEventPublisher{topic: topic}
}

// Publish 发布留言板事件
func (p *BoardEventPublisher) Publish(ctx context.Context, event *BoardEvent) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal board event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte("board-" + event.BoardID),
		Value: payload,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send board event: %w", err)
	}

	logger.Debug("Board event sent",
		zap.String("type", event.Type),
		zap.String("board_id", event.BoardID),
		zap.String("topic", p.topic),
	)

	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
