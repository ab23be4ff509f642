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

type ForumizeHandler struct {
	forumizeService *service.ForumizeService
}

func NewForumizeHandler(forumizeService *service.ForumizeService) *ForumizeHandler {
	return &ForumizeHandler{forumizeService: forumizeService}
}

// Forumize 把视频评论区转换为分类留言板
// @Summary 评论区转留言板
// @Description 抓取视频评论，按类别分类后生成（或增量更新）留言板
// @Tags 留言板
// @Accept json
// @Produce json
// @Param request body dto.ForumizeRequest true "转换参数"
// @Success 200 {object} response.Response{data=dto.BoardInfo} "转换成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Router /forumize [post]
func (h *ForumizeHandler) Forumize(c *gin.Context) {
	var req dto.ForumizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	var userID *string
	if id, ok := middleware.GetCurrentUserID(c); ok {
		userID = &id
	}

	board, err := h.forumizeService.Forumize(c.Request.Context(), req.VideoID, service.ForumizeOptions{
		MaxResults:   req.MaxResults,
		UseAI:        req.UseAI,
		RemoveSpam:   req.ShouldRemoveSpam(),
		VideoTitle:   req.VideoTitle,
		VideoChannel: req.VideoChannel,
	}, userID)
	if err != nil {
		logger.Error("Forumize failed",
			zap.String("video_id", req.VideoID),
			zap.Error(err),
		)
		response.InternalError(c, "评论区转换失败")
		return
	}

	response.OK(c, "转换成功", dto.NewBoardInfo(board))
}
