package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"forumyzer-go/internal/infra/youtube"
	"forumyzer-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLiveSource 可编程的直播数据源
type fakeLiveSource struct {
	mu         sync.Mutex
	status     *youtube.LiveStatus
	statusErr  error
	page       *youtube.ChatPage
	pageErr    error
	fetchCalls int
}

func (f *fakeLiveSource) CheckLive(_ context.Context, _ string) (*youtube.LiveStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeLiveSource) FetchChatPage(_ context.Context, _ string, _ *string) (*youtube.ChatPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	return f.page, f.pageErr
}

func newLiveServiceForTest(source LiveSource) (*LiveService, *fakeBoardStore) {
	store := newFakeBoardStore()
	boards := NewBoardService(store, nil, nil)
	classify := NewClassifyService(nil)
	return NewLiveService(source, classify, boards), store
}

func liveChatID(id string) *string {
	return &id
}

func TestLiveStartNotLive(t *testing.T) {
	ctx := context.Background()

	t.Run("offline video", func(t *testing.T) {
		source := &fakeLiveSource{status: &youtube.LiveStatus{IsLive: false}}
		svc, _ := newLiveServiceForTest(source)

		result, err := svc.Start(ctx, "vid-1", LiveOptions{}, nil)

		require.NoError(t, err)
		assert.False(t, result.IsLive)
		assert.Equal(t, "Video is not currently live", result.Error)
		assert.Nil(t, result.Board)
		assert.Equal(t, 0, svc.ActiveCount())
	})

	t.Run("scheduled stream", func(t *testing.T) {
		scheduled := "2026-09-01T18:00:00Z"
		source := &fakeLiveSource{status: &youtube.LiveStatus{
			IsLive:             false,
			IsUpcoming:         true,
			ScheduledStartTime: &scheduled,
		}}
		svc, _ := newLiveServiceForTest(source)

		result, err := svc.Start(ctx, "vid-2", LiveOptions{}, nil)

		require.NoError(t, err)
		assert.False(t, result.IsLive)
		assert.Equal(t, "Stream is scheduled but not live yet", result.Error)
		require.NotNil(t, result.ScheduledStartTime)
		assert.Equal(t, scheduled, *result.ScheduledStartTime)
	})

	t.Run("live without chat", func(t *testing.T) {
		source := &fakeLiveSource{status: &youtube.LiveStatus{IsLive: true}}
		svc, _ := newLiveServiceForTest(source)

		result, err := svc.Start(ctx, "vid-3", LiveOptions{}, nil)

		require.NoError(t, err)
		assert.False(t, result.IsLive)
		assert.Equal(t, "Live chat is not available for this video", result.Error)
	})

	t.Run("check live failure propagates", func(t *testing.T) {
		source := &fakeLiveSource{statusErr: errors.New("api quota exceeded")}
		svc, _ := newLiveServiceForTest(source)

		_, err := svc.Start(ctx, "vid-4", LiveOptions{}, nil)
		require.Error(t, err)
		assert.Equal(t, 0, svc.ActiveCount())
	})
}

func TestLiveStartFirstCycle(t *testing.T) {
	ctx := context.Background()

	source := &fakeLiveSource{
		status: &youtube.LiveStatus{
			IsLive:       true,
			LiveChatID:   liveChatID("chat-1"),
			VideoTitle:   "Launch Stream",
			ChannelTitle: "Some Channel",
		},
		page: &youtube.ChatPage{
			Messages: []youtube.ChatMessage{
				{ID: "m1", Author: "alice", Text: "hello everyone", PublishedAt: "2024-05-01T10:00:00Z"},
				{ID: "m2", Author: "bob", Text: "buy now at www.spam.com", PublishedAt: "2024-05-01T10:00:05Z", IsChatModerator: true},
			},
			NextPageToken: "tok-1",
			// 间隔拉长，测试期间不会触发第二个周期
			PollingIntervalMillis: 600000,
		},
	}
	svc, _ := newLiveServiceForTest(source)
	defer svc.Shutdown()

	result, err := svc.Start(ctx, "vid-live", LiveOptions{RemoveSpam: false}, nil)
	require.NoError(t, err)

	assert.True(t, result.IsLive)
	assert.False(t, result.AlreadyActive)
	require.NotNil(t, result.Board)
	assert.Equal(t, 1, svc.ActiveCount())

	board := result.Board
	assert.True(t, board.IsLive)
	assert.Equal(t, "Launch Stream", board.VideoTitle)
	assert.Equal(t, "Some Channel", board.VideoChannel)
	require.NotNil(t, board.LastPageToken)
	assert.Equal(t, "tok-1", *board.LastPageToken)
	assert.Equal(t, 600000, board.PollingIntervalMillis)

	require.Len(t, board.Threads, 2)
	// 聊天消息按发布时间倒序落入留言板
	assert.Equal(t, "m2", board.Threads[0].ID)
	assert.Equal(t, model.CategorySpam, board.Threads[0].Category)
	require.NotNil(t, board.Threads[0].Metadata)
	assert.True(t, board.Threads[0].Metadata.IsChatModerator)
	assert.Equal(t, model.CategoryGenuine, board.Threads[1].Category)

	t.Run("second start is a no-op", func(t *testing.T) {
		again, err := svc.Start(ctx, "vid-live", LiveOptions{}, nil)
		require.NoError(t, err)
		assert.True(t, again.IsLive)
		assert.True(t, again.AlreadyActive)
		require.NotNil(t, again.Board)
		assert.Equal(t, board.ID, again.Board.ID)
		assert.Equal(t, 1, svc.ActiveCount())
	})

	t.Run("stop ends the board", func(t *testing.T) {
		stopped, err := svc.Stop(ctx, "vid-live")
		require.NoError(t, err)
		assert.True(t, stopped)
		assert.Equal(t, 0, svc.ActiveCount())

		ended, err := svc.boards.FindByID(board.ID)
		require.NoError(t, err)
		assert.False(t, ended.IsLive)
		assert.NotNil(t, ended.EndedAt)
	})

	t.Run("stop without active polling", func(t *testing.T) {
		stopped, err := svc.Stop(ctx, "vid-live")
		require.NoError(t, err)
		assert.False(t, stopped)
	})
}

func TestLiveStartRemovesSpam(t *testing.T) {
	source := &fakeLiveSource{
		status: &youtube.LiveStatus{IsLive: true, LiveChatID: liveChatID("chat-2")},
		page: &youtube.ChatPage{
			Messages: []youtube.ChatMessage{
				{ID: "m1", Author: "alice", Text: "hello everyone", PublishedAt: "2024-05-01T10:00:00Z"},
				{ID: "m2", Author: "bot", Text: "free money at www.scam.com", PublishedAt: "2024-05-01T10:00:05Z"},
			},
			PollingIntervalMillis: 600000,
		},
	}
	svc, _ := newLiveServiceForTest(source)
	defer svc.Shutdown()

	result, err := svc.Start(context.Background(), "vid-spam", LiveOptions{RemoveSpam: true}, nil)
	require.NoError(t, err)

	require.NotNil(t, result.Board)
	require.Len(t, result.Board.Threads, 1)
	assert.Equal(t, "m1", result.Board.Threads[0].ID)
	assert.Equal(t, 1, result.Board.Stats.RemovedComments)
}

func TestLiveStartFetchFailure(t *testing.T) {
	source := &fakeLiveSource{
		status:  &youtube.LiveStatus{IsLive: true, LiveChatID: liveChatID("chat-3")},
		pageErr: errors.New("chat disabled"),
	}
	svc, _ := newLiveServiceForTest(source)

	_, err := svc.Start(context.Background(), "vid-err", LiveOptions{}, nil)
	require.Error(t, err)
	assert.Equal(t, 0, svc.ActiveCount())
}
