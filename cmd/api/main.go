package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"forumyzer-go/internal/api/handler"
	"forumyzer-go/internal/api/middleware"
	"forumyzer-go/internal/api/router"
	"forumyzer-go/internal/config"
	"forumyzer-go/internal/infra/database"
	infraES "forumyzer-go/internal/infra/elasticsearch"
	"forumyzer-go/internal/infra/gemini"
	infraKafka "forumyzer-go/internal/infra/kafka"
	infraRedis "forumyzer-go/internal/infra/redis"
	"forumyzer-go/internal/infra/youtube"
	"forumyzer-go/internal/model"
	"forumyzer-go/internal/repository"
	"forumyzer-go/internal/service"
	"forumyzer-go/pkg/logger"

	_ "forumyzer-go/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Forumyzer API
// @version 1.0
// @description YouTube 评论区转留言板服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@forumyzer.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// 加载配置文件
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	// 自动迁移数据库表
	if err := database.AutoMigrate(&model.MessageBoard{}); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 初始化Redis（可选，失败则分享令牌不走缓存）
	var cacheClient = infraRedis.Client
	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis init failed, share token cache disabled", zap.Error(err))
	} else {
		defer infraRedis.Close()
		cacheClient = infraRedis.Get()
	}

	// 初始化Kafka生产者
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	// 初始化 Elasticsearch（可选，失败则搜索降级到 DB）
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
	}

	// YouTube Data API 客户端
	ytClient, err := youtube.NewClient(&cfg.YouTube)
	if err != nil {
		logger.Fatal("Failed to init youtube client", zap.Error(err))
	}

	// Gemini 分类后端（可选，未配置则恒定使用关键词规则）
	var aiBackend service.AIBackend
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), &cfg.Gemini)
		if err != nil {
			logger.Warn("Gemini init failed, AI classification disabled", zap.Error(err))
		} else {
			aiBackend = geminiClient
		}
	} else {
		logger.Info("Gemini API key not configured, using keyword classification only")
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	boardRepo := repository.NewBoardRepository(db)

	var publisher service.EventPublisher
	if topic, ok := cfg.Kafka.Topics["board_events"]; ok {
		publisher = infraKafka.NewBoardEventPublisher(topic)
	}

	boardService := service.NewBoardService(boardRepo, cacheClient, publisher)
	classifyService := service.NewClassifyService(aiBackend)
	forumizeService := service.NewForumizeService(ytClient, classifyService, boardService)
	liveService := service.NewLiveService(ytClient, classifyService, boardService)
	searchService := service.NewSearchService(boardRepo)
	defer liveService.Shutdown()

	forumizeHandler := handler.NewForumizeHandler(forumizeService)
	liveHandler := handler.NewLiveHandler(liveService)
	boardHandler := handler.NewBoardHandler(boardService, liveService)
	searchHandler := handler.NewSearchHandler(searchService)

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)
	r.GET("/", rootHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, forumizeHandler, liveHandler, boardHandler, searchHandler)

	// 启动服务器
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.Bool("gemini_enabled", aiBackend != nil),
	)

	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// healthCheckHandler 健康检查接口
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	logger.Debug("Health check requested", zap.String("ip", c.ClientIP()))

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"mode":      cfg.App.Mode,
	})
}

// rootHandler 根路径处理器
func rootHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"mode":    cfg.App.Mode,
		"docs":    fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.App.Port),
	})
}
