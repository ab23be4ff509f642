package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"forumyzer-go/internal/config"
	"forumyzer-go/internal/model"
	"forumyzer-go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var (
	client        *minio.Client
	archiveBucket string
)

// Init 初始化 MinIO 客户端并确保归档 Bucket 存在
func Init(cfg *config.MinIOConfig) error {
	var err error
	client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	archiveBucket = cfg.ArchiveBucket
	if archiveBucket == "" {
		archiveBucket = "board-archives"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, archiveBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", archiveBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, archiveBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", archiveBucket, err)
		}
		logger.Info("MinIO bucket created", zap.String("bucket", archiveBucket))
	}

	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("archive_bucket", archiveBucket),
	)

	return nil
}

// Get 获取 MinIO 客户端实例
func Get() *minio.Client {
	return client
}

// ArchiveObjectName 归档对象名，按留言板ID归档，重复归档覆盖旧快照
func ArchiveObjectName(boardID string) string {
	return fmt.Sprintf("boards/%s.json", boardID)
}

// ArchiveBoard 把留言板完整快照（含评论树与统计）归档为 JSON 对象
// 直播结束后调用，归档后的留言板即使被删除仍可导出
func ArchiveBoard(ctx context.Context, board *model.MessageBoard) (string, error) {
	if client == nil {
		return "", fmt.Errorf("minio client not initialized")
	}

	payload, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal board snapshot: %w", err)
	}

	objectName := ArchiveObjectName(board.ID)
	_, err = client.PutObject(ctx, archiveBucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}

	logger.Info("Board archived",
		zap.String("board_id", board.ID),
		zap.String("object", objectName),
		zap.Int("bytes", len(payload)),
	)
	return objectName, nil
}

// GetPresignedURL 生成归档对象的预签名下载 URL
func GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if client == nil {
		return "", fmt.Errorf("minio client not initialized")
	}
	reqParams := make(url.Values)
	presignedURL, err := client.PresignedGetObject(ctx, archiveBucket, objectName, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return presignedURL.String(), nil
}

// RemoveArchive 删除归档对象，对象不存在视为成功
func RemoveArchive(ctx context.Context, boardID string) error {
	if client == nil {
		return fmt.Errorf("minio client not initialized")
	}
	return client.RemoveObject(ctx, archiveBucket, ArchiveObjectName(boardID), minio.RemoveObjectOptions{})
}
