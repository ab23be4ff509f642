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

type BoardHandler struct {
	boardService *service.BoardService
	liveService  *service.LiveService
}

func NewBoardHandler(boardService *service.BoardService, liveService *service.LiveService) *BoardHandler {
	return &BoardHandler{boardService: boardService, liveService: liveService}
}

// List 获取留言板列表
// @Summary 留言板列表
// @Description 已登录用户返回自己的留言板，匿名访问返回全部
// @Tags 留言板
// @Produce json
// @Success 200 {object} response.Response{data=dto.BoardListData} "获取成功"
// @Router /boards [get]
func (h *BoardHandler) List(c *gin.Context) {
	var userID *string
	if id, ok := middleware.GetCurrentUserID(c); ok {
		userID = &id
	}

	boards, err := h.boardService.FindByUser(userID)
	if err != nil {
		logger.Error("List boards failed", zap.Error(err))
		response.InternalError(c, "获取留言板列表失败")
		return
	}

	response.OK(c, "获取成功", dto.NewBoardList(boards))
}

// Get GET /api/v1/boards/:id
func (h *BoardHandler) Get(c *gin.Context) {
	board, err := h.boardService.FindByID(c.Param("id"))
	if err != nil {
		logger.Error("Get board failed", zap.String("board_id", c.Param("id")), zap.Error(err))
		response.InternalError(c, "获取留言板失败")
		return
	}
	if board == nil {
		response.NotFound(c, "留言板不存在")
		return
	}

	response.OK(c, "获取成功", dto.NewBoardInfo(board))
}

// GetByShareToken GET /api/v1/boards/share/:token
// 分享令牌是匿名读取留言板的唯一凭证，非公开留言板不可通过令牌访问
func (h *BoardHandler) GetByShareToken(c *gin.Context) {
	board, err := h.boardService.FindByShareToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		logger.Error("Get board by share token failed", zap.Error(err))
		response.InternalError(c, "获取留言板失败")
		return
	}
	if board == nil || !board.IsPublic {
		response.NotFound(c, "留言板不存在")
		return
	}

	response.OK(c, "获取成功", dto.NewBoardInfo(board))
}

// End POST /api/v1/boards/:id/end
// 结束直播留言板：先停掉进行中的轮询（若有），再标记结束
func (h *BoardHandler) End(c *gin.Context) {
	boardID := c.Param("id")

	board, err := h.boardService.FindByID(boardID)
	if err != nil {
		logger.Error("End board failed", zap.String("board_id", boardID), zap.Error(err))
		response.InternalError(c, "结束留言板失败")
		return
	}
	if board == nil {
		response.NotFound(c, "留言板不存在")
		return
	}

	stopped, err := h.liveService.Stop(c.Request.Context(), board.VideoID)
	if err != nil {
		logger.Error("Stop live polling failed", zap.String("board_id", boardID), zap.Error(err))
		response.InternalError(c, "结束留言板失败")
		return
	}
	if !stopped {
		// 没有进行中的轮询（worker 重启后遗留的直播板），直接标记结束
		if _, err := h.boardService.MarkAsEnded(c.Request.Context(), boardID); err != nil {
			logger.Error("Mark board as ended failed", zap.String("board_id", boardID), zap.Error(err))
			response.InternalError(c, "结束留言板失败")
			return
		}
	}

	ended, err := h.boardService.FindByID(boardID)
	if err != nil {
		logger.Error("Reload ended board failed", zap.String("board_id", boardID), zap.Error(err))
		response.InternalError(c, "结束留言板失败")
		return
	}

	response.OK(c, "留言板已结束", &dto.BoardEndData{
		Stopped: stopped,
		Board:   dto.NewBoardInfo(ended),
	})
}

// Delete DELETE /api/v1/boards/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	boardID := c.Param("id")

	board, err := h.boardService.FindByID(boardID)
	if err != nil {
		logger.Error("Delete board failed", zap.String("board_id", boardID), zap.Error(err))
		response.InternalError(c, "删除留言板失败")
		return
	}
	if board == nil {
		response.NotFound(c, "留言板不存在")
		return
	}

	// 直播板先停轮询再删除
	if board.IsLive {
		if _, err := h.liveService.Stop(c.Request.Context(), board.VideoID); err != nil {
			logger.Warn("Stop live polling before delete failed",
				zap.String("board_id", boardID),
				zap.Error(err),
			)
		}
	}

	deleted, err := h.boardService.DeleteBoard(c.Request.Context(), boardID)
	if err != nil {
		logger.Error("Delete board failed", zap.String("board_id", boardID), zap.Error(err))
		response.InternalError(c, "删除留言板失败")
		return
	}
	if !deleted {
		response.NotFound(c, "留言板不存在")
		return
	}

	response.OK(c, "删除成功", nil)
}
