package dto

// LiveStartRequest 开始追踪直播聊天请求
type LiveStartRequest struct {
	VideoID    string `json:"video_id" binding:"required"`
	UseAI      bool   `json:"use_ai"`
	RemoveSpam *bool  `json:"remove_spam"` // 缺省为 true
}

// ShouldRemoveSpam 缺省开启垃圾过滤
func (r *LiveStartRequest) ShouldRemoveSpam() bool {
	if r.RemoveSpam == nil {
		return true
	}
	return *r.RemoveSpam
}

// LiveStopRequest 停止追踪直播聊天请求
type LiveStopRequest struct {
	VideoID string `json:"video_id" binding:"required"`
}

// LiveStartData 开始追踪直播的响应数据
type LiveStartData struct {
	IsLive             bool       `json:"is_live"`
	AlreadyActive      bool       `json:"already_active,omitempty"`
	Error              string     `json:"error,omitempty"`
	ScheduledStartTime *string    `json:"scheduled_start_time,omitempty"`
	Board              *BoardInfo `json:"board,omitempty"`
}

// LiveStopData 停止追踪直播的响应数据
type LiveStopData struct {
	Stopped bool `json:"stopped"`
}
