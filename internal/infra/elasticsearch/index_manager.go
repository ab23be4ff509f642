package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"forumyzer-go/internal/config"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

// GetBoardsIndexMapping 返回 boards 索引的 mapping
func GetBoardsIndexMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"id": {"type": "keyword"},
				"video_id": {"type": "keyword"},
				"video_title": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
				},
				"video_channel": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword", "ignore_above": 200}}
				},
				"is_live": {"type": "boolean"},
				"is_public": {"type": "boolean"},
				"user_id": {"type": "keyword"},
				"message_count": {"type": "long"},
				"total_comments": {"type": "long"},
				"removed_comments": {"type": "long"},
				"created_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"updated_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"ended_at": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
			}
		}
	}`
}

// EnsureBoardsIndex 确保 boards 索引存在，不存在则创建
func EnsureBoardsIndex(ctx context.Context) error {
	indexName := boardsIndexName()

	exists, err := IndicesExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		logger.Info("Elasticsearch boards index already exists", zap.String("index", indexName))
		return nil
	}

	body := bytes.NewReader([]byte(GetBoardsIndexMapping()))
	resp, err := IndicesCreate(ctx, indexName, body)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index failed: %s", resp.String())
	}

	logger.Info("Elasticsearch boards index created", zap.String("index", indexName))
	return nil
}

// InitIndexes 初始化所有索引（启动时调用）
func InitIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return EnsureBoardsIndex(ctx)
}

func boardsIndexName() string {
	cfg := config.GetElasticsearch()
	indexName := cfg.Index["boards"]
	if indexName == "" {
		indexName = "boards"
	}
	return indexName
}
