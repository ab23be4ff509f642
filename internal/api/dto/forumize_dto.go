package dto

// ForumizeRequest 静态评论区转留言板请求
type ForumizeRequest struct {
	VideoID      string `json:"video_id" binding:"required"`
	VideoTitle   string `json:"video_title"`
	VideoChannel string `json:"video_channel"`
	MaxResults   int    `json:"max_results" binding:"omitempty,min=1,max=100"`
	UseAI        bool   `json:"use_ai"`
	RemoveSpam   *bool  `json:"remove_spam"` // 缺省为 true
}

// ShouldRemoveSpam 缺省开启垃圾过滤
func (r *ForumizeRequest) ShouldRemoveSpam() bool {
	if r.RemoveSpam == nil {
		return true
	}
	return *r.RemoveSpam
}
