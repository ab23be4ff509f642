package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CategoryStat 单个分类的统计值
type CategoryStat struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// BoardStats 留言板分类统计
// 各分类的百分比独立四舍五入，相加不保证等于 100
type BoardStats struct {
	TotalComments   int                       `json:"totalComments"`
	RemovedComments int                       `json:"removedComments"`
	Categories      map[Category]CategoryStat `json:"categories"`
}

func (s BoardStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *BoardStats) Scan(value interface{}) error {
	if value == nil {
		*s = BoardStats{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for BoardStats: %T", value)
	}
	return json.Unmarshal(data, s)
}

// MessageBoard 留言板模型：一个视频的评论分类聚合结果
type MessageBoard struct {
	ID           string `gorm:"primaryKey;size:36;comment:留言板ID" json:"id"`
	VideoID      string `gorm:"size:64;not null;uniqueIndex:idx_boards_video_id;comment:视频ID" json:"videoId"`
	VideoTitle   string `gorm:"size:500;comment:视频标题" json:"videoTitle"`
	VideoChannel string `gorm:"size:200;comment:频道名称" json:"videoChannel"`

	IsLive     bool    `gorm:"default:false;index:idx_boards_is_live;comment:是否直播中" json:"isLive"`
	LiveChatID *string `gorm:"size:128;comment:直播聊天ID" json:"liveChatId"`

	Threads CommentThreads `gorm:"type:jsonb;comment:评论树" json:"threads"`
	Stats   BoardStats     `gorm:"type:jsonb;comment:分类统计" json:"stats"`

	UserID     *string `gorm:"size:64;index:idx_boards_user_id;comment:所属用户ID" json:"userId"`
	IsPublic   bool    `gorm:"default:true;comment:是否公开" json:"isPublic"`
	ShareToken string  `gorm:"size:36;uniqueIndex:idx_boards_share_token;comment:分享令牌" json:"shareToken"`

	// MessageCount 累计收到的消息数，只增不减
	// 按每次合并前的批次大小累加，去重后可能大于 len(Threads)
	MessageCount          int     `gorm:"default:0;comment:累计消息数" json:"messageCount"`
	LastPageToken         *string `gorm:"size:256;comment:直播轮询游标" json:"lastPageToken"`
	PollingIntervalMillis int     `gorm:"default:5000;comment:轮询间隔毫秒" json:"pollingIntervalMillis"`

	CreatedAt time.Time  `gorm:"autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime;comment:更新时间" json:"updatedAt"`
	EndedAt   *time.Time `gorm:"comment:直播结束时间" json:"endedAt"`
}

func (MessageBoard) TableName() string {
	return "message_boards"
}
