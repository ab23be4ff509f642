package repository

import (
	"errors"
	"time"

	"forumyzer-go/internal/model"

	"gorm.io/gorm"
)

// ErrBoardNotFound 留言板不存在
// 端口级哨兵错误，调用方不需要感知具体存储引擎
var ErrBoardNotFound = errors.New("留言板不存在")

// BoardStore 留言板持久化端口
// 业务层只依赖该接口，不关心具体存储引擎
type BoardStore interface {
	Create(board *model.MessageBoard) error
	Update(board *model.MessageBoard) error
	GetByID(id string) (*model.MessageBoard, error)
	GetByVideoID(videoID string) (*model.MessageBoard, error)
	GetByShareToken(token string) (*model.MessageBoard, error)
	ListByUser(userID *string) ([]model.MessageBoard, error)
	ListActiveLive() ([]model.MessageBoard, error)
	UpdatePageToken(boardID string, token *string) error
	MarkEnded(boardID string, endedAt time.Time) (bool, error)
	Delete(boardID string) (bool, error)
}

type BoardRepository struct {
	db *gorm.DB
}

var _ BoardStore = (*BoardRepository)(nil)

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(board *model.MessageBoard) error {
	return r.db.Create(board).Error
}

// Update 整体保存留言板（合并后的线程、统计与游标）
func (r *BoardRepository) Update(board *model.MessageBoard) error {
	return r.db.Save(board).Error
}

func (r *BoardRepository) GetByID(id string) (*model.MessageBoard, error) {
	var board model.MessageBoard
	err := r.db.Where("id = ?", id).First(&board).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &board, nil
}

func (r *BoardRepository) GetByVideoID(videoID string) (*model.MessageBoard, error) {
	var board model.MessageBoard
	err := r.db.Where("video_id = ?", videoID).First(&board).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &board, nil
}

func (r *BoardRepository) GetByShareToken(token string) (*model.MessageBoard, error) {
	var board model.MessageBoard
	err := r.db.Where("share_token = ?", token).First(&board).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &board, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBoardNotFound
	}
	return err
}

// ListByUser 获取用户的留言板列表
// userID 为 nil 时返回全部（演示用的宽松默认行为）
func (r *BoardRepository) ListByUser(userID *string) ([]model.MessageBoard, error) {
	query := r.db.Model(&model.MessageBoard{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var boards []model.MessageBoard
	err := query.Order("updated_at DESC").Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// ListActiveLive 获取所有直播中的留言板，供后台轮询调度使用
func (r *BoardRepository) ListActiveLive() ([]model.MessageBoard, error) {
	var boards []model.MessageBoard
	err := r.db.Where("is_live = ?", true).Order("updated_at DESC").Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// UpdatePageToken 更新直播轮询游标，留言板不存在时静默跳过
func (r *BoardRepository) UpdatePageToken(boardID string, token *string) error {
	return r.db.Model(&model.MessageBoard{}).
		Where("id = ?", boardID).
		Updates(map[string]interface{}{
			"last_page_token": token,
			"updated_at":      time.Now(),
		}).Error
}

// MarkEnded 标记直播结束
func (r *BoardRepository) MarkEnded(boardID string, endedAt time.Time) (bool, error) {
	result := r.db.Model(&model.MessageBoard{}).
		Where("id = ?", boardID).
		Updates(map[string]interface{}{
			"is_live":  false,
			"ended_at": endedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByIDs 按ID集合批量获取，顺序不保证
func (r *BoardRepository) GetByIDs(ids []string) ([]model.MessageBoard, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var boards []model.MessageBoard
	err := r.db.Where("id IN ?", ids).Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// SearchBoards 按标题/频道模糊搜索公开留言板（ES 不可用时的降级路径）
func (r *BoardRepository) SearchBoards(q string, isLive *bool, offset, limit int) ([]model.MessageBoard, int64, error) {
	query := r.db.Model(&model.MessageBoard{}).Where("is_public = ?", true)
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("video_title ILIKE ? OR video_channel ILIKE ?", pattern, pattern)
	}
	if isLive != nil {
		query = query.Where("is_live = ?", *isLive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boards []model.MessageBoard
	err := query.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&boards).Error
	if err != nil {
		return nil, 0, err
	}
	return boards, total, nil
}

// Delete 删除留言板，返回是否实际发生删除
func (r *BoardRepository) Delete(boardID string) (bool, error) {
	result := r.db.Where("id = ?", boardID).Delete(&model.MessageBoard{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
