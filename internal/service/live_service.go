package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"forumyzer-go/internal/infra/youtube"
	"forumyzer-go/internal/model"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

// LiveSource 直播状态与聊天消息数据源契约
type LiveSource interface {
	CheckLive(ctx context.Context, videoID string) (*youtube.LiveStatus, error)
	FetchChatPage(ctx context.Context, liveChatID string, pageToken *string) (*youtube.ChatPage, error)
}

// 未开播时返回给调用方的原因描述
const (
	reasonNotLive       = "Video is not currently live"
	reasonScheduledOnly = "Stream is scheduled but not live yet"
	reasonNoChat        = "Live chat is not available for this video"
)

// LiveOptions 直播处理选项
type LiveOptions struct {
	UseAI      bool
	RemoveSpam bool
	PageToken  *string
}

// LiveStartResult 开始追踪直播的结果
// 未开播时 IsLive 为 false 且 Error 给出原因，不视为调用失败
type LiveStartResult struct {
	IsLive             bool                `json:"isLive"`
	Error              string              `json:"error,omitempty"`
	ScheduledStartTime *string             `json:"scheduledStartTime,omitempty"`
	AlreadyActive      bool                `json:"alreadyActive,omitempty"`
	Board              *model.MessageBoard `json:"board,omitempty"`
}

// livePoller 单个视频的轮询句柄
// 每个 videoId 至多存在一个未触发的调度回调
type livePoller struct {
	boardID string
	cancel  context.CancelFunc
}

// LiveService 直播轮询协调器
// 每个 videoId 对应一个独立的轮询 goroutine：抓取 → 分类 → 合并 → 持久化 → 重新调度
type LiveService struct {
	source   LiveSource
	classify *ClassifyService
	boards   *BoardService

	mu      sync.Mutex
	pollers map[string]*livePoller
}

func NewLiveService(source LiveSource, classify *ClassifyService, boards *BoardService) *LiveService {
	return &LiveService{
		source:   source,
		classify: classify,
		boards:   boards,
		pollers:  make(map[string]*livePoller),
	}
}

// Start 开始追踪一个直播
// 已在轮询的视频是幂等空操作，直接返回当前留言板；
// 首个周期内的抓取或分类错误向调用方传播且不会注册轮询
func (s *LiveService) Start(ctx context.Context, videoID string, opts LiveOptions, userID *string) (*LiveStartResult, error) {
	s.mu.Lock()
	if poller, active := s.pollers[videoID]; active {
		boardID := poller.boardID
		s.mu.Unlock()

		board, err := s.boards.FindByID(boardID)
		if err != nil {
			return nil, err
		}
		return &LiveStartResult{IsLive: true, AlreadyActive: true, Board: board}, nil
	}
	s.mu.Unlock()

	status, err := s.source.CheckLive(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("check live status for video %s: %w", videoID, err)
	}

	if !status.IsLive {
		reason := reasonNotLive
		if status.IsUpcoming {
			reason = reasonScheduledOnly
		}
		return &LiveStartResult{
			IsLive:             false,
			Error:              reason,
			ScheduledStartTime: status.ScheduledStartTime,
		}, nil
	}
	if status.LiveChatID == nil {
		return &LiveStartResult{IsLive: false, Error: reasonNoChat}, nil
	}

	board, page, err := s.runCycle(ctx, videoID, status, opts.PageToken, opts, userID)
	if err != nil {
		return nil, err
	}

	pollCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if _, raced := s.pollers[videoID]; raced {
		// 并发的两个 start 请求，后注册者让步
		s.mu.Unlock()
		cancel()
		return &LiveStartResult{IsLive: true, AlreadyActive: true, Board: board}, nil
	}
	s.pollers[videoID] = &livePoller{boardID: board.ID, cancel: cancel}
	s.mu.Unlock()

	go s.pollLoop(pollCtx, videoID, board.ID, status, page, opts, userID)

	logger.Info("Live polling started",
		zap.String("video_id", videoID),
		zap.String("board_id", board.ID),
		zap.Int("interval_ms", page.PollingIntervalMillis),
	)

	return &LiveStartResult{IsLive: true, Board: board}, nil
}

// Stop 停止追踪并标记留言板结束，返回是否存在被停止的轮询
// 停止是协作式的：取消下一次调度，不打断进行中的周期
func (s *LiveService) Stop(ctx context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	poller, active := s.pollers[videoID]
	if active {
		delete(s.pollers, videoID)
	}
	s.mu.Unlock()

	if !active {
		return false, nil
	}

	poller.cancel()
	if _, err := s.boards.MarkAsEnded(ctx, poller.boardID); err != nil {
		return true, err
	}

	logger.Info("Live polling stopped",
		zap.String("video_id", videoID),
		zap.String("board_id", poller.boardID),
	)
	return true, nil
}

// Shutdown 取消全部轮询，进程退出前调用
func (s *LiveService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for videoID, poller := range s.pollers {
		poller.cancel()
		delete(s.pollers, videoID)
	}
}

// ActiveCount 当前轮询中的视频数
func (s *LiveService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pollers)
}

// pollLoop 单个视频的轮询主循环
// 周期内的任何错误只终止该视频的轮询，不影响其他视频
func (s *LiveService) pollLoop(ctx context.Context, videoID, boardID string, status *youtube.LiveStatus, page *youtube.ChatPage, opts LiveOptions, userID *string) {
	token := page.NextPageToken
	interval := page.PollingIntervalMillis

	for {
		timer := time.NewTimer(time.Duration(interval) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		opts.PageToken = nil
		if token != "" {
			cursor := token
			opts.PageToken = &cursor
		}

		_, nextPage, err := s.runCycle(ctx, videoID, status, opts.PageToken, opts, userID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Live poll cycle failed, stopping polling",
				zap.String("video_id", videoID),
				zap.Error(err),
			)
			s.endPolling(videoID, boardID)
			return
		}

		if nextPage.OfflineAt != nil {
			logger.Info("Live stream went offline",
				zap.String("video_id", videoID),
				zap.Stringp("offline_at", nextPage.OfflineAt),
			)
			s.endPolling(videoID, boardID)
			return
		}

		token = nextPage.NextPageToken
		if nextPage.PollingIntervalMillis > 0 {
			interval = nextPage.PollingIntervalMillis
		}
	}
}

// runCycle 执行一个 抓取 → 分类 → 过滤 → 合并持久化 周期
func (s *LiveService) runCycle(ctx context.Context, videoID string, status *youtube.LiveStatus, pageToken *string, opts LiveOptions, userID *string) (*model.MessageBoard, *youtube.ChatPage, error) {
	page, err := s.source.FetchChatPage(ctx, *status.LiveChatID, pageToken)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch live chat for video %s: %w", videoID, err)
	}

	comments := chatMessagesToComments(page.Messages)
	classified := s.classify.Classify(ctx, comments, opts.UseAI)

	removed := 0
	if opts.RemoveSpam {
		before := len(classified)
		classified = RemoveSpam(classified)
		removed = before - len(classified)
	}

	board, err := s.boards.CreateOrUpdate(ctx, &BoardInput{
		VideoID:         videoID,
		VideoTitle:      status.VideoTitle,
		VideoChannel:    status.ChannelTitle,
		IsLive:          true,
		LiveChatID:      status.LiveChatID,
		Threads:         classified,
		RemovedComments: removed,
	}, userID)
	if err != nil {
		return nil, nil, err
	}

	board.PollingIntervalMillis = page.PollingIntervalMillis

	var nextToken *string
	if page.NextPageToken != "" {
		cursor := page.NextPageToken
		nextToken = &cursor
	}
	if err := s.boards.UpdatePageToken(board.ID, nextToken); err != nil {
		return nil, nil, err
	}
	board.LastPageToken = nextToken

	return board, page, nil
}

// endPolling 注销轮询并标记留言板结束
func (s *LiveService) endPolling(videoID, boardID string) {
	s.mu.Lock()
	poller, active := s.pollers[videoID]
	if active {
		delete(s.pollers, videoID)
	}
	s.mu.Unlock()

	if active {
		poller.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.boards.MarkAsEnded(ctx, boardID); err != nil {
		logger.Error("Failed to mark board as ended",
			zap.String("board_id", boardID),
			zap.Error(err),
		)
	}
}

// chatMessagesToComments 将直播聊天消息转换为评论结构
func chatMessagesToComments(messages []youtube.ChatMessage) []model.Comment {
	comments := make([]model.Comment, 0, len(messages))
	for _, msg := range messages {
		comments = append(comments, model.Comment{
			ID:          msg.ID,
			Author:      msg.Author,
			Text:        msg.Text,
			PublishedAt: msg.PublishedAt,
			Replies:     []model.Comment{},
			Metadata: &model.CommentMetadata{
				IsChatOwner:     msg.IsChatOwner,
				IsChatModerator: msg.IsChatModerator,
				IsChatSponsor:   msg.IsChatSponsor,
				ProfileImageURL: msg.ProfileImageURL,
			},
		})
	}
	return comments
}
