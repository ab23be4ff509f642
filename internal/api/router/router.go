package router

import (
	"forumyzer-go/internal/api/handler"
	"forumyzer-go/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由
func Setup(
	r *gin.Engine,
	forumizeHandler *handler.ForumizeHandler,
	liveHandler *handler.LiveHandler,
	boardHandler *handler.BoardHandler,
	searchHandler *handler.SearchHandler,
) {
	v1 := r.Group("/api/v1")

	// --- 转换模块 ---
	forumize := v1.Group("/forumize", middleware.AuthOptional())
	{
		forumize.POST("", forumizeHandler.Forumize)
		forumize.POST("/live", liveHandler.Start)
		forumize.POST("/live/stop", liveHandler.Stop)
	}

	// --- 留言板模块 ---
	boards := v1.Group("/boards")
	{
		// 公开接口（不需要登录）
		boards.GET("/search", searchHandler.SearchBoards)
		boards.GET("/share/:token", boardHandler.GetByShareToken)

		boardsOpt := boards.Group("", middleware.AuthOptional())
		{
			boardsOpt.GET("", boardHandler.List)
			boardsOpt.GET("/:id", boardHandler.Get)
			boardsOpt.POST("/:id/end", boardHandler.End)
			boardsOpt.DELETE("/:id", boardHandler.Delete)
		}

		// 运维接口
		boardsAuth := boards.Group("", middleware.AuthRequired())
		{
			boardsAuth.POST("/search/sync", searchHandler.SyncBoardsToES)
		}
	}
}
