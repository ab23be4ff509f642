package dto

import (
	"time"

	"forumyzer-go/internal/model"
)

// BoardInfo 留言板详情
type BoardInfo struct {
	ID                    string               `json:"id"`
	VideoID               string               `json:"video_id"`
	VideoTitle            string               `json:"video_title"`
	VideoChannel          string               `json:"video_channel"`
	IsLive                bool                 `json:"is_live"`
	LiveChatID            *string              `json:"live_chat_id,omitempty"`
	Threads               model.CommentThreads `json:"threads"`
	Stats                 model.BoardStats     `json:"stats"`
	UserID                *string              `json:"user_id,omitempty"`
	IsPublic              bool                 `json:"is_public"`
	ShareToken            string               `json:"share_token"`
	MessageCount          int                  `json:"message_count"`
	PollingIntervalMillis int                  `json:"polling_interval_millis"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
	EndedAt               *time.Time           `json:"ended_at,omitempty"`
}

// BoardBrief 列表中的留言板简要信息，不携带评论树
type BoardBrief struct {
	ID            string     `json:"id"`
	VideoID       string     `json:"video_id"`
	VideoTitle    string     `json:"video_title"`
	VideoChannel  string     `json:"video_channel"`
	IsLive        bool       `json:"is_live"`
	IsPublic      bool       `json:"is_public"`
	ShareToken    string     `json:"share_token"`
	MessageCount  int        `json:"message_count"`
	TotalComments int        `json:"total_comments"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

// BoardListData 留言板列表响应数据
type BoardListData struct {
	Boards []BoardBrief `json:"boards"`
	Total  int          `json:"total"`
}

// BoardEndData 结束直播留言板的响应数据
type BoardEndData struct {
	Stopped bool       `json:"stopped"`
	Board   *BoardInfo `json:"board,omitempty"`
}

func NewBoardInfo(b *model.MessageBoard) *BoardInfo {
	if b == nil {
		return nil
	}
	return &BoardInfo{
		ID:                    b.ID,
		VideoID:               b.VideoID,
		VideoTitle:            b.VideoTitle,
		VideoChannel:          b.VideoChannel,
		IsLive:                b.IsLive,
		LiveChatID:            b.LiveChatID,
		Threads:               b.Threads,
		Stats:                 b.Stats,
		UserID:                b.UserID,
		IsPublic:              b.IsPublic,
		ShareToken:            b.ShareToken,
		MessageCount:          b.MessageCount,
		PollingIntervalMillis: b.PollingIntervalMillis,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
		EndedAt:               b.EndedAt,
	}
}

func NewBoardBrief(b *model.MessageBoard) BoardBrief {
	return BoardBrief{
		ID:            b.ID,
		VideoID:       b.VideoID,
		VideoTitle:    b.VideoTitle,
		VideoChannel:  b.VideoChannel,
		IsLive:        b.IsLive,
		IsPublic:      b.IsPublic,
		ShareToken:    b.ShareToken,
		MessageCount:  b.MessageCount,
		TotalComments: b.Stats.TotalComments,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		EndedAt:       b.EndedAt,
	}
}

func NewBoardList(boards []model.MessageBoard) *BoardListData {
	briefs := make([]BoardBrief, 0, len(boards))
	for i := range boards {
		briefs = append(briefs, NewBoardBrief(&boards[i]))
	}
	return &BoardListData{Boards: briefs, Total: len(briefs)}
}
