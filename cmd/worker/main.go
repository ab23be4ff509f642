package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forumyzer-go/internal/config"
	"forumyzer-go/internal/infra/database"
	infraES "forumyzer-go/internal/infra/elasticsearch"
	infraKafka "forumyzer-go/internal/infra/kafka"
	infraMinio "forumyzer-go/internal/infra/minio"
	"forumyzer-go/internal/repository"
	"forumyzer-go/internal/service"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

// 直播板超过该时长没有任何更新就视为失联，由 worker 兜底结束
const staleLiveThreshold = 10 * time.Minute

const staleSweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	esAvailable := true
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, ES sync disabled", zap.Error(err))
		esAvailable = false
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
	}

	boardRepo := repository.NewBoardRepository(database.Get())
	searchService := service.NewSearchService(boardRepo)

	// 启动时全量重建一次索引，弥补离线期间漏掉的事件
	if esAvailable {
		if success, failed, err := searchService.SyncBoardsToES(); err != nil {
			logger.Warn("Initial board sync to ES failed", zap.Error(err))
		} else {
			logger.Info("Initial board sync to ES completed",
				zap.Int("success", success),
				zap.Int("failed", failed),
			)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	// 兜底扫描：结束长时间没有更新的直播板
	go runStaleLiveSweep(ctx, boardRepo, searchService, esAvailable)

	topic := cfg.Kafka.Topics["board_events"]
	groupID := "forumyzer-board-worker"

	logger.Info("Board event worker started",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	eventHandler := func(event *infraKafka.BoardEvent) error {
		return handleBoardEvent(event, boardRepo, searchService, esAvailable)
	}

	infraKafka.StartBoardEventConsumer(ctx, cfg.Kafka.Brokers, topic, groupID, eventHandler)
}

// handleBoardEvent 根据事件类型同步 ES 与归档
func handleBoardEvent(event *infraKafka.BoardEvent, boardRepo *repository.BoardRepository, searchService *service.SearchService, esAvailable bool) error {
	logger.Debug("Processing board event",
		zap.String("type", event.Type),
		zap.String("board_id", event.BoardID),
	)

	switch event.Type {
	case infraKafka.EventBoardUpdated:
		if esAvailable {
			return searchService.SyncBoardToES(event.BoardID)
		}
		return nil

	case infraKafka.EventBoardEnded:
		board, err := boardRepo.GetByID(event.BoardID)
		if err != nil {
			return err
		}

		ctx, cancelArchive := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelArchive()

		if _, err := infraMinio.ArchiveBoard(ctx, board); err != nil {
			logger.Error("Failed to archive ended board",
				zap.String("board_id", event.BoardID),
				zap.Error(err),
			)
		}

		if esAvailable {
			return searchService.SyncBoardToES(event.BoardID)
		}
		return nil

	case infraKafka.EventBoardDeleted:
		ctx, cancelDelete := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelDelete()

		if err := infraMinio.RemoveArchive(ctx, event.BoardID); err != nil {
			logger.Warn("Failed to remove board archive",
				zap.String("board_id", event.BoardID),
				zap.Error(err),
			)
		}
		if esAvailable {
			return infraES.DeleteBoard(ctx, event.BoardID)
		}
		return nil

	default:
		logger.Warn("Unknown board event type", zap.String("type", event.Type))
		return nil
	}
}

// runStaleLiveSweep 周期性结束失联的直播板
// API 进程崩溃后遗留 is_live=true 的留言板，由这里兜底收尾
func runStaleLiveSweep(ctx context.Context, boardRepo *repository.BoardRepository, searchService *service.SearchService, esAvailable bool) {
	ticker := time.NewTicker(staleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		boards, err := boardRepo.ListActiveLive()
		if err != nil {
			logger.Error("Failed to list active live boards", zap.Error(err))
			continue
		}

		cutoff := time.Now().Add(-staleLiveThreshold)
		for i := range boards {
			board := &boards[i]
			if board.UpdatedAt.After(cutoff) {
				continue
			}

			ended, err := boardRepo.MarkEnded(board.ID, time.Now())
			if err != nil {
				logger.Error("Failed to end stale live board",
					zap.String("board_id", board.ID),
					zap.Error(err),
				)
				continue
			}
			if !ended {
				continue
			}

			logger.Info("Stale live board ended",
				zap.String("board_id", board.ID),
				zap.String("video_id", board.VideoID),
				zap.Time("last_update", board.UpdatedAt),
			)

			archiveCtx, cancelArchive := context.WithTimeout(ctx, 30*time.Second)
			if fresh, err := boardRepo.GetByID(board.ID); err == nil {
				if _, err := infraMinio.ArchiveBoard(archiveCtx, fresh); err != nil {
					logger.Error("Failed to archive stale board", zap.Error(err))
				}
			}
			cancelArchive()

			if esAvailable {
				if err := searchService.SyncBoardToES(board.ID); err != nil {
					logger.Warn("Failed to sync stale board to ES", zap.Error(err))
				}
			}
		}
	}
}
