package handler

import (
	"forumyzer-go/internal/api/dto"
	"forumyzer-go/internal/api/middleware"
	"forumyzer-go/internal/api/response"
	"forumyzer-go/internal/service"
	"forumyzer-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LiveHandler struct {
	liveService *service.LiveService
}

func NewLiveHandler(liveService *service.LiveService) *LiveHandler {
	return &LiveHandler{liveService: liveService}
}

// Start POST /api/v1/forumize/live
// 视频未开播时返回 200 与原因说明，不视为错误
func (h *LiveHandler) Start(c *gin.Context) {
	var req dto.LiveStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	var userID *string
	if id, ok := middleware.GetCurrentUserID(c); ok {
		userID = &id
	}

	result, err := h.liveService.Start(c.Request.Context(), req.VideoID, service.LiveOptions{
		UseAI:      req.UseAI,
		RemoveSpam: req.ShouldRemoveSpam(),
	}, userID)
	if err != nil {
		logger.Error("Start live polling failed",
			zap.String("video_id", req.VideoID),
			zap.Error(err),
		)
		response.InternalError(c, "直播追踪启动失败")
		return
	}

	data := &dto.LiveStartData{
		IsLive:             result.IsLive,
		AlreadyActive:      result.AlreadyActive,
		Error:              result.Error,
		ScheduledStartTime: result.ScheduledStartTime,
		Board:              dto.NewBoardInfo(result.Board),
	}

	if !result.IsLive {
		response.OK(c, "视频未在直播", data)
		return
	}
	response.OK(c, "直播追踪已启动", data)
}

// Stop POST /api/v1/forumize/live/stop
func (h *LiveHandler) Stop(c *gin.Context) {
	var req dto.LiveStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	stopped, err := h.liveService.Stop(c.Request.Context(), req.VideoID)
	if err != nil {
		logger.Error("Stop live polling failed",
			zap.String("video_id", req.VideoID),
			zap.Error(err),
		)
		response.InternalError(c, "直播追踪停止失败")
		return
	}

	if !stopped {
		response.NotFound(c, "该视频没有进行中的直播追踪")
		return
	}
	response.OK(c, "直播追踪已停止", &dto.LiveStopData{Stopped: true})
}
