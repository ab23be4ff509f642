package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	infraKafka "forumyzer-go/internal/infra/kafka"
	"forumyzer-go/internal/model"
	"forumyzer-go/internal/repository"
	"forumyzer-go/pkg/logger"
	"forumyzer-go/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventPublisher 留言板事件发布端口，nil 时跳过发布
type EventPublisher interface {
	Publish(ctx context.Context, event *infraKafka.BoardEvent) error
}

const (
	defaultPollingIntervalMillis = 5000

	shareCacheKeyPrefix = "board:share:"
	shareCacheTTL       = 30 * time.Second
)

// BoardService 留言板聚合服务
// 所有留言板写入都经由该服务，单写者模型，不做跨请求加锁
type BoardService struct {
	store  repository.BoardStore
	cache  *redis.Client // 可为 nil
	events EventPublisher
}

func NewBoardService(store repository.BoardStore, cache *redis.Client, events EventPublisher) *BoardService {
	return &BoardService{store: store, cache: cache, events: events}
}

// BoardInput 一次分类/轮询批次的留言板数据
type BoardInput struct {
	VideoID      string
	VideoTitle   string
	VideoChannel string
	IsLive       bool
	LiveChatID   *string
	Threads      []model.Comment
	// RemovedComments 本批次被垃圾过滤掉的条数
	RemovedComments int
}

// CreateOrUpdate 按 videoId 创建或更新留言板
// 更新时先合并线程，再对合并后的完整评论树重算统计；
// MessageCount 累加本批次大小而非去重后的增量，因此它可以超过
// len(Threads)，这是沿用的刻意行为
func (s *BoardService) CreateOrUpdate(ctx context.Context, input *BoardInput, userID *string) (*model.MessageBoard, error) {
	existing, err := s.store.GetByVideoID(input.VideoID)
	if err != nil && !errors.Is(err, repository.ErrBoardNotFound) {
		return nil, err
	}

	if existing != nil {
		removed := existing.Stats.RemovedComments + input.RemovedComments
		existing.Threads = MergeThreads(existing.Threads, input.Threads)
		existing.Stats = CalculateStats(existing.Threads)
		existing.Stats.RemovedComments = removed
		existing.IsLive = input.IsLive
		existing.LiveChatID = input.LiveChatID
		existing.MessageCount += len(input.Threads)
		existing.UpdatedAt = time.Now()

		if err := s.store.Update(existing); err != nil {
			return nil, fmt.Errorf("update board: %w", err)
		}

		s.invalidateShareCache(ctx, existing.ShareToken)
		s.publishEvent(ctx, infraKafka.EventBoardUpdated, existing)
		return existing, nil
	}

	threads := MergeThreads(nil, input.Threads)
	stats := CalculateStats(threads)
	stats.RemovedComments = input.RemovedComments

	board := &model.MessageBoard{
		ID:                    utils.NewBoardID(),
		VideoID:               input.VideoID,
		VideoTitle:            input.VideoTitle,
		VideoChannel:          input.VideoChannel,
		IsLive:                input.IsLive,
		LiveChatID:            input.LiveChatID,
		Threads:               threads,
		Stats:                 stats,
		UserID:                userID,
		IsPublic:              true,
		ShareToken:            utils.NewShareToken(),
		MessageCount:          len(threads),
		PollingIntervalMillis: defaultPollingIntervalMillis,
	}

	if err := s.store.Create(board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	logger.Info("Message board created",
		zap.String("board_id", board.ID),
		zap.String("video_id", board.VideoID),
		zap.Int("threads", len(board.Threads)),
	)

	s.publishEvent(ctx, infraKafka.EventBoardUpdated, board)
	return board, nil
}

// FindByVideoID 按视频ID查找，不存在时返回 nil 而非错误
func (s *BoardService) FindByVideoID(videoID string) (*model.MessageBoard, error) {
	board, err := s.store.GetByVideoID(videoID)
	if errors.Is(err, repository.ErrBoardNotFound) {
		return nil, nil
	}
	return board, err
}

// FindByID 按留言板ID查找，不存在时返回 nil 而非错误
func (s *BoardService) FindByID(id string) (*model.MessageBoard, error) {
	board, err := s.store.GetByID(id)
	if errors.Is(err, repository.ErrBoardNotFound) {
		return nil, nil
	}
	return board, err
}

// FindByShareToken 按分享令牌查找，优先读缓存
// 分享令牌是读取留言板的唯一凭证
func (s *BoardService) FindByShareToken(ctx context.Context, token string) (*model.MessageBoard, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, shareCacheKeyPrefix+token).Bytes()
		if err == nil {
			var board model.MessageBoard
			if err := json.Unmarshal(cached, &board); err == nil {
				return &board, nil
			}
		}
	}

	board, err := s.store.GetByShareToken(token)
	if errors.Is(err, repository.ErrBoardNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(board); err == nil {
			if err := s.cache.Set(ctx, shareCacheKeyPrefix+token, payload, shareCacheTTL).Err(); err != nil {
				logger.Warn("Failed to cache board by share token", zap.Error(err))
			}
		}
	}

	return board, nil
}

// FindByUser 获取用户的留言板列表，userID 为 nil 时返回全部（演示用宽松默认）
func (s *BoardService) FindByUser(userID *string) ([]model.MessageBoard, error) {
	return s.store.ListByUser(userID)
}

// GetActiveLiveBoards 获取所有直播中的留言板
func (s *BoardService) GetActiveLiveBoards() ([]model.MessageBoard, error) {
	return s.store.ListActiveLive()
}

// UpdatePageToken 更新直播轮询游标，留言板不存在时静默跳过
func (s *BoardService) UpdatePageToken(boardID string, token *string) error {
	return s.store.UpdatePageToken(boardID, token)
}

// MarkAsEnded 标记直播结束
func (s *BoardService) MarkAsEnded(ctx context.Context, boardID string) (bool, error) {
	ended, err := s.store.MarkEnded(boardID, time.Now())
	if err != nil || !ended {
		return ended, err
	}

	board, err := s.store.GetByID(boardID)
	if err == nil && board != nil {
		s.invalidateShareCache(ctx, board.ShareToken)
		s.publishEvent(ctx, infraKafka.EventBoardEnded, board)
	}

	logger.Info("Message board marked as ended", zap.String("board_id", boardID))
	return true, nil
}

// DeleteBoard 删除留言板，返回是否实际发生删除
func (s *BoardService) DeleteBoard(ctx context.Context, boardID string) (bool, error) {
	board, err := s.FindByID(boardID)
	if err != nil {
		return false, err
	}
	if board == nil {
		return false, nil
	}

	deleted, err := s.store.Delete(boardID)
	if err != nil || !deleted {
		return deleted, err
	}

	s.invalidateShareCache(ctx, board.ShareToken)
	s.publishEvent(ctx, infraKafka.EventBoardDeleted, board)
	return true, nil
}

func (s *BoardService) invalidateShareCache(ctx context.Context, token string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Del(ctx, shareCacheKeyPrefix+token).Err(); err != nil {
		logger.Warn("Failed to invalidate board share cache", zap.Error(err))
	}
}

// publishEvent 发布留言板事件，发布失败不阻塞主流程
func (s *BoardService) publishEvent(ctx context.Context, eventType string, board *model.MessageBoard) {
	if s.events == nil {
		return
	}

	event := &infraKafka.BoardEvent{
		Type:         eventType,
		BoardID:      board.ID,
		VideoID:      board.VideoID,
		IsLive:       board.IsLive,
		MessageCount: board.MessageCount,
		OccurredAt:   time.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish board event",
			zap.String("type", eventType),
			zap.String("board_id", board.ID),
			zap.Error(err),
		)
	}
}

// MergeThreads 将新线程合并进既有线程
// 与既有 ID 重复的新线程被丢弃（先写入者胜），合并后整体按发布时间倒序重排；
// 缺失或无法解析的时间视为最旧。新线程彼此之间不做去重，唯一性由抓取方保证
func MergeThreads(existing, incoming []model.Comment) []model.Comment {
	existingIDs := make(map[string]struct{}, len(existing))
	for i := range existing {
		existingIDs[existing[i].ID] = struct{}{}
	}

	merged := make([]model.Comment, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	for _, thread := range incoming {
		if _, dup := existingIDs[thread.ID]; dup {
			continue
		}
		merged = append(merged, thread)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedTime().After(merged[j].PublishedTime())
	})

	return merged
}

// CalculateStats 递归统计评论树的分类分布
// 各分类百分比独立四舍五入，总和不保证为 100；空集时全部为 0
func CalculateStats(threads []model.Comment) model.BoardStats {
	counts := make(map[model.Category]int, len(model.AllCategories))
	total := 0

	var walk func(comments []model.Comment)
	walk = func(comments []model.Comment) {
		for i := range comments {
			total++
			category := comments[i].Category
			if !category.Valid() {
				category = model.CategoryGenuine
			}
			counts[category]++
			if len(comments[i].Replies) > 0 {
				walk(comments[i].Replies)
			}
		}
	}
	walk(threads)

	stats := model.BoardStats{
		TotalComments: total,
		Categories:    make(map[model.Category]model.CategoryStat, len(model.AllCategories)),
	}
	for _, category := range model.AllCategories {
		count := counts[category]
		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(count) / float64(total) * 100))
		}
		stats.Categories[category] = model.CategoryStat{Count: count, Percentage: percentage}
	}

	return stats
}
