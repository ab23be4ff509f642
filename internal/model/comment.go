package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Category 评论分类
type Category string

const (
	CategorySpam       Category = "spam"
	CategoryBot        Category = "bot"
	CategoryToxic      Category = "toxic"
	CategoryGenuine    Category = "genuine"
	CategoryQuestion   Category = "question"
	CategoryFeedback   Category = "feedback"
	CategoryDiscussion Category = "discussion"
)

// AllCategories 全部已知分类（顺序固定，用于统计输出）
var AllCategories = []Category{
	CategorySpam,
	CategoryBot,
	CategoryToxic,
	CategoryGenuine,
	CategoryQuestion,
	CategoryFeedback,
	CategoryDiscussion,
}

// Valid 是否为已知分类
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// CommentMetadata 直播聊天消息携带的作者附加信息
type CommentMetadata struct {
	IsChatOwner     bool   `json:"isChatOwner,omitempty"`
	IsChatModerator bool   `json:"isChatModerator,omitempty"`
	IsChatSponsor   bool   `json:"isChatSponsor,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Comment 一条评论或直播聊天消息
// Replies 构成两级评论树（顶层评论 + 直接回复），结构上允许更深的嵌套
type Comment struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	PublishedAt string    `json:"publishedAt"`
	LikeCount   int64     `json:"likeCount"`
	Replies     []Comment `json:"replies"`

	// 分类结果，由 ClassifyService 填充
	Category             Category         `json:"category,omitempty"`
	Confidence           float64          `json:"confidence,omitempty"`
	ShouldRemove         bool             `json:"shouldRemove,omitempty"`
	ClassificationReason string           `json:"classificationReason,omitempty"`
	Metadata             *CommentMetadata `json:"metadata,omitempty"`
}

// PublishedTime 解析发布时间，缺失或无法解析时返回零值（排序时视为最旧）
func (c *Comment) PublishedTime() time.Time {
	if c.PublishedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, c.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CommentThreads 评论树列表，存储为 JSONB 列
type CommentThreads []Comment

func (t CommentThreads) Value() (driver.Value, error) {
	if t == nil {
		t = CommentThreads{}
	}
	return json.Marshal(t)
}

func (t *CommentThreads) Scan(value interface{}) error {
	if value == nil {
		*t = CommentThreads{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for CommentThreads: %T", value)
	}
	return json.Unmarshal(data, t)
}
