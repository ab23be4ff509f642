package dto

import "time"

// SearchBoardRequest 留言板搜索请求参数
type SearchBoardRequest struct {
	Q        string `form:"q"`
	IsLive   *bool  `form:"is_live"`
	Sort     string `form:"sort"` // relevance, time, size
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SearchBoardInfo 搜索结果中的留言板信息
type SearchBoardInfo struct {
	ID            string              `json:"id"`
	VideoID       string              `json:"video_id"`
	VideoTitle    string              `json:"video_title"`
	VideoChannel  string              `json:"video_channel"`
	IsLive        bool                `json:"is_live"`
	ShareToken    string              `json:"share_token"`
	MessageCount  int                 `json:"message_count"`
	TotalComments int                 `json:"total_comments"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Highlight     map[string][]string `json:"highlight,omitempty"`
}

// SearchBoardData 搜索结果
type SearchBoardData struct {
	Boards     []SearchBoardInfo `json:"boards"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int64             `json:"total_pages"`
}
