package kafka

import (
	"context"
	"encoding/json"
	"time"

	"forumyzer-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BoardEventHandler 处理留言板事件的回调函数
type BoardEventHandler func(event *BoardEvent) error

// StartBoardEventConsumer 启动留言板事件消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartBoardEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handler BoardEventHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka board event consumer stopped")
	}()

	logger.Info("Kafka board event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var event BoardEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("Failed to unmarshal board event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(&event); err != nil {
			logger.Error("Failed to handle board event",
				zap.String("type", event.Type),
				zap.String("board_id", event.BoardID),
				zap.Error(err),
			)
		}
	}
}
