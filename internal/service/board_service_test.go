package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"forumyzer-go/internal/model"
	"forumyzer-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBoardStore 内存版 BoardStore，测试用
type fakeBoardStore struct {
	mu     sync.Mutex
	boards map[string]*model.MessageBoard
}

func newFakeBoardStore() *fakeBoardStore {
	return &fakeBoardStore{boards: make(map[string]*model.MessageBoard)}
}

func (s *fakeBoardStore) Create(board *model.MessageBoard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	board.CreatedAt = now
	board.UpdatedAt = now
	copied := *board
	s.boards[board.ID] = &copied
	return nil
}

func (s *fakeBoardStore) Update(board *model.MessageBoard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[board.ID]; !ok {
		return repository.ErrBoardNotFound
	}
	copied := *board
	s.boards[board.ID] = &copied
	return nil
}

func (s *fakeBoardStore) GetByID(id string) (*model.MessageBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[id]
	if !ok {
		return nil, repository.ErrBoardNotFound
	}
	copied := *board
	return &copied, nil
}

func (s *fakeBoardStore) GetByVideoID(videoID string) (*model.MessageBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, board := range s.boards {
		if board.VideoID == videoID {
			copied := *board
			return &copied, nil
		}
	}
	return nil, repository.ErrBoardNotFound
}

func (s *fakeBoardStore) GetByShareToken(token string) (*model.MessageBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, board := range s.boards {
		if board.ShareToken == token {
			copied := *board
			return &copied, nil
		}
	}
	return nil, repository.ErrBoardNotFound
}

func (s *fakeBoardStore) ListByUser(userID *string) ([]model.MessageBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var boards []model.MessageBoard
	for _, board := range s.boards {
		if userID != nil && (board.UserID == nil || *board.UserID != *userID) {
			continue
		}
		boards = append(boards, *board)
	}
	return boards, nil
}

func (s *fakeBoardStore) ListActiveLive() ([]model.MessageBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var boards []model.MessageBoard
	for _, board := range s.boards {
		if board.IsLive {
			boards = append(boards, *board)
		}
	}
	return boards, nil
}

func (s *fakeBoardStore) UpdatePageToken(boardID string, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[boardID]
	if !ok {
		return nil
	}
	board.LastPageToken = token
	board.UpdatedAt = time.Now()
	return nil
}

func (s *fakeBoardStore) MarkEnded(boardID string, endedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[boardID]
	if !ok {
		return false, nil
	}
	board.IsLive = false
	board.EndedAt = &endedAt
	return true, nil
}

func (s *fakeBoardStore) Delete(boardID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[boardID]; !ok {
		return false, nil
	}
	delete(s.boards, boardID)
	return true, nil
}

func comment(id, publishedAt string) model.Comment {
	return model.Comment{
		ID:          id,
		Author:      "author-" + id,
		Text:        "text " + id,
		PublishedAt: publishedAt,
		Category:    model.CategoryGenuine,
	}
}

func TestMergeThreads(t *testing.T) {
	t.Run("dedup against existing and resort", func(t *testing.T) {
		existing := []model.Comment{
			comment("a", "2024-05-01T10:00:00Z"),
			comment("b", "2024-05-01T09:00:00Z"),
		}
		incoming := []model.Comment{
			comment("b", "2024-05-01T09:00:00Z"), // 已存在，丢弃
			comment("c", "2024-05-01T11:00:00Z"),
			comment("d", "2024-05-01T08:00:00Z"),
		}

		merged := MergeThreads(existing, incoming)

		require.Len(t, merged, 4)
		assert.Equal(t, "c", merged[0].ID)
		assert.Equal(t, "a", merged[1].ID)
		assert.Equal(t, "b", merged[2].ID)
		assert.Equal(t, "d", merged[3].ID)
	})

	t.Run("unparseable timestamps sort last", func(t *testing.T) {
		existing := []model.Comment{comment("old", "not-a-timestamp")}
		incoming := []model.Comment{comment("new", "2024-05-01T10:00:00Z")}

		merged := MergeThreads(existing, incoming)

		require.Len(t, merged, 2)
		assert.Equal(t, "new", merged[0].ID)
		assert.Equal(t, "old", merged[1].ID)
	})

	t.Run("duplicates within one batch are kept", func(t *testing.T) {
		// 批内去重由抓取方负责，合并只对既有线程去重
		incoming := []model.Comment{
			comment("x", "2024-05-01T10:00:00Z"),
			comment("x", "2024-05-01T10:00:00Z"),
		}

		merged := MergeThreads(nil, incoming)
		assert.Len(t, merged, 2)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Empty(t, MergeThreads(nil, nil))
		assert.Len(t, MergeThreads([]model.Comment{comment("a", "2024-05-01T10:00:00Z")}, nil), 1)
	})
}

func TestCalculateStats(t *testing.T) {
	t.Run("counts nested replies", func(t *testing.T) {
		spam := comment("s", "2024-05-01T10:00:00Z")
		spam.Category = model.CategorySpam

		top := comment("t", "2024-05-01T09:00:00Z")
		top.Category = model.CategoryQuestion
		top.Replies = []model.Comment{spam, comment("r", "2024-05-01T09:30:00Z")}

		stats := CalculateStats([]model.Comment{top, comment("g", "2024-05-01T08:00:00Z")})

		assert.Equal(t, 4, stats.TotalComments)
		assert.Equal(t, 1, stats.Categories[model.CategorySpam].Count)
		assert.Equal(t, 1, stats.Categories[model.CategoryQuestion].Count)
		assert.Equal(t, 2, stats.Categories[model.CategoryGenuine].Count)
		assert.Equal(t, 25, stats.Categories[model.CategorySpam].Percentage)
		assert.Equal(t, 50, stats.Categories[model.CategoryGenuine].Percentage)
	})

	t.Run("invalid category counts as genuine", func(t *testing.T) {
		c := comment("a", "2024-05-01T10:00:00Z")
		c.Category = model.Category("nonsense")

		stats := CalculateStats([]model.Comment{c})
		assert.Equal(t, 1, stats.Categories[model.CategoryGenuine].Count)
	})

	t.Run("empty input yields zeroes for all categories", func(t *testing.T) {
		stats := CalculateStats(nil)

		assert.Equal(t, 0, stats.TotalComments)
		require.Len(t, stats.Categories, len(model.AllCategories))
		for _, category := range model.AllCategories {
			assert.Equal(t, 0, stats.Categories[category].Count)
			assert.Equal(t, 0, stats.Categories[category].Percentage)
		}
	})
}

func TestCreateOrUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates board on first call", func(t *testing.T) {
		store := newFakeBoardStore()
		svc := NewBoardService(store, nil, nil)

		threads := []model.Comment{
			comment("a", "2024-05-01T10:00:00Z"),
			comment("b", "2024-05-01T09:00:00Z"),
		}

		board, err := svc.CreateOrUpdate(ctx, &BoardInput{
			VideoID:         "vid-1",
			VideoTitle:      "My Video",
			Threads:         threads,
			RemovedComments: 3,
		}, nil)

		require.NoError(t, err)
		assert.NotEmpty(t, board.ID)
		assert.NotEmpty(t, board.ShareToken)
		assert.True(t, board.IsPublic)
		assert.Equal(t, 2, board.MessageCount)
		assert.Equal(t, 2, board.Stats.TotalComments)
		assert.Equal(t, 3, board.Stats.RemovedComments)
		assert.Equal(t, 5000, board.PollingIntervalMillis)
	})

	t.Run("merges and accumulates on update", func(t *testing.T) {
		store := newFakeBoardStore()
		svc := NewBoardService(store, nil, nil)

		first, err := svc.CreateOrUpdate(ctx, &BoardInput{
			VideoID: "vid-2",
			Threads: []model.Comment{
				comment("a", "2024-05-01T10:00:00Z"),
				comment("b", "2024-05-01T09:00:00Z"),
			},
			RemovedComments: 1,
		}, nil)
		require.NoError(t, err)

		// 第二批与第一批有一条重叠
		second, err := svc.CreateOrUpdate(ctx, &BoardInput{
			VideoID: "vid-2",
			Threads: []model.Comment{
				comment("b", "2024-05-01T09:00:00Z"),
				comment("c", "2024-05-01T11:00:00Z"),
				comment("d", "2024-05-01T08:00:00Z"),
			},
			RemovedComments: 2,
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, second.Threads, 4)
		// MessageCount 累加批次大小而非去重后的增量
		assert.Equal(t, 5, second.MessageCount)
		assert.Equal(t, 4, second.Stats.TotalComments)
		assert.Equal(t, 3, second.Stats.RemovedComments)
	})

	t.Run("stats stay consistent with merged threads", func(t *testing.T) {
		store := newFakeBoardStore()
		svc := NewBoardService(store, nil, nil)

		spam := comment("s", "2024-05-01T10:00:00Z")
		spam.Category = model.CategorySpam

		_, err := svc.CreateOrUpdate(ctx, &BoardInput{
			VideoID: "vid-3",
			Threads: []model.Comment{spam},
		}, nil)
		require.NoError(t, err)

		board, err := svc.CreateOrUpdate(ctx, &BoardInput{
			VideoID: "vid-3",
			Threads: []model.Comment{comment("g", "2024-05-01T11:00:00Z")},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, 2, board.Stats.TotalComments)
		assert.Equal(t, 1, board.Stats.Categories[model.CategorySpam].Count)
		assert.Equal(t, 1, board.Stats.Categories[model.CategoryGenuine].Count)
	})
}

func TestFindOperations(t *testing.T) {
	ctx := context.Background()
	store := newFakeBoardStore()
	svc := NewBoardService(store, nil, nil)

	board, err := svc.CreateOrUpdate(ctx, &BoardInput{
		VideoID: "vid-find",
		Threads: []model.Comment{comment("a", "2024-05-01T10:00:00Z")},
	}, nil)
	require.NoError(t, err)

	t.Run("find by id", func(t *testing.T) {
		got, err := svc.FindByID(board.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, board.VideoID, got.VideoID)
	})

	t.Run("missing board returns nil without error", func(t *testing.T) {
		got, err := svc.FindByID("no-such-id")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("find by share token without cache", func(t *testing.T) {
		got, err := svc.FindByShareToken(ctx, board.ShareToken)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, board.ID, got.ID)

		missing, err := svc.FindByShareToken(ctx, "bogus-token")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestMarkAsEndedAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newFakeBoardStore()
	svc := NewBoardService(store, nil, nil)

	board, err := svc.CreateOrUpdate(ctx, &BoardInput{
		VideoID: "vid-live",
		IsLive:  true,
		Threads: []model.Comment{comment("a", "2024-05-01T10:00:00Z")},
	}, nil)
	require.NoError(t, err)

	t.Run("live board shows up in active list", func(t *testing.T) {
		active, err := svc.GetActiveLiveBoards()
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("mark as ended", func(t *testing.T) {
		ended, err := svc.MarkAsEnded(ctx, board.ID)
		require.NoError(t, err)
		assert.True(t, ended)

		got, err := svc.FindByID(board.ID)
		require.NoError(t, err)
		assert.False(t, got.IsLive)
		assert.NotNil(t, got.EndedAt)

		active, err := svc.GetActiveLiveBoards()
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("mark as ended on missing board", func(t *testing.T) {
		ended, err := svc.MarkAsEnded(ctx, "no-such-id")
		require.NoError(t, err)
		assert.False(t, ended)
	})

	t.Run("delete board", func(t *testing.T) {
		deleted, err := svc.DeleteBoard(ctx, board.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		again, err := svc.DeleteBoard(ctx, board.ID)
		require.NoError(t, err)
		assert.False(t, again)
	})
}
