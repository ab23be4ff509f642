package handler

import (
	"strconv"

	"forumyzer-go/internal/api/dto"
	"forumyzer-go/internal/api/response"
	"forumyzer-go/internal/service"
	"forumyzer-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchBoards 搜索留言板
// @Summary 搜索留言板
// @Description 按视频标题/频道关键词搜索公开留言板
// @Tags 搜索
// @Produce json
// @Param q query string false "搜索关键词"
// @Param is_live query bool false "只看直播中"
// @Param sort query string false "排序方式: relevance, time, size" default(relevance)
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=dto.SearchBoardData} "搜索成功"
// @Failure 400 {object} response.ErrorResponse "请求参数无效"
// @Router /boards/search [get]
func (h *SearchHandler) SearchBoards(c *gin.Context) {
	var req dto.SearchBoardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	if v := c.Query("is_live"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.IsLive = &b
		}
	}

	data, err := h.searchService.SearchBoards(&req)
	if err != nil {
		logger.Error("Search boards failed", zap.Error(err))
		response.InternalError(c, "搜索失败")
		return
	}

	response.OK(c, "搜索成功", data)
}

// SyncBoardsToES 同步留言板到ES
// @Summary 同步留言板到ES
// @Description 将数据库中的留言板全量同步到 Elasticsearch
// @Tags 搜索
// @Produce json
// @Success 200 {object} response.Response "同步成功"
// @Failure 500 {object} response.ErrorResponse "同步失败"
// @Router /boards/search/sync [post]
func (h *SearchHandler) SyncBoardsToES(c *gin.Context) {
	success, failed, err := h.searchService.SyncBoardsToES()
	if err != nil {
		logger.Error("Sync boards to ES failed", zap.Error(err))
		response.InternalError(c, "同步失败")
		return
	}

	response.OK(c, "同步完成", gin.H{
		"success": success,
		"failed":  failed,
	})
}
