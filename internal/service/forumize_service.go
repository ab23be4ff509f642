package service

import (
	"context"
	"fmt"

	"forumyzer-go/internal/model"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

// CommentSource 视频评论数据源契约
// 返回的评论 ID 在单次调用内必须全局唯一
type CommentSource interface {
	FetchCommentThreads(ctx context.Context, videoID string, maxResults int) ([]model.Comment, error)
}

const defaultMaxResults = 50

// ForumizeOptions 评论抓取与分类选项
type ForumizeOptions struct {
	MaxResults   int
	UseAI        bool
	RemoveSpam   bool
	VideoTitle   string
	VideoChannel string
}

// ForumizeService 静态评论区处理管线：抓取 → 分类 → 过滤 → 统计 → 持久化
type ForumizeService struct {
	source   CommentSource
	classify *ClassifyService
	boards   *BoardService
}

func NewForumizeService(source CommentSource, classify *ClassifyService, boards *BoardService) *ForumizeService {
	return &ForumizeService{source: source, classify: classify, boards: boards}
}

// Forumize 将一个视频的评论区转换为分类留言板
// 抓取失败直接向调用方传播（评论源没有备用方案）；分类总是能完成（必要时降级）
func (s *ForumizeService) Forumize(ctx context.Context, videoID string, opts ForumizeOptions, userID *string) (*model.MessageBoard, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	threads, err := s.source.FetchCommentThreads(ctx, videoID, maxResults)
	if err != nil {
		return nil, fmt.Errorf("fetch comments for video %s: %w", videoID, err)
	}

	classified := s.classify.ClassifyThreads(ctx, threads, opts.UseAI)

	removed := 0
	if opts.RemoveSpam {
		before := countComments(classified)
		classified = RemoveSpam(classified)
		removed = before - countComments(classified)
	}

	board, err := s.boards.CreateOrUpdate(ctx, &BoardInput{
		VideoID:         videoID,
		VideoTitle:      opts.VideoTitle,
		VideoChannel:    opts.VideoChannel,
		IsLive:          false,
		Threads:         classified,
		RemovedComments: removed,
	}, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Video forumized",
		zap.String("video_id", videoID),
		zap.Int("threads", len(classified)),
		zap.Int("removed", removed),
		zap.Bool("use_ai", opts.UseAI),
	)

	return board, nil
}

// countComments 递归统计评论树的总条数
func countComments(comments []model.Comment) int {
	total := 0
	for i := range comments {
		total++
		total += countComments(comments[i].Replies)
	}
	return total
}
