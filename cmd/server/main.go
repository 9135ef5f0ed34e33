package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"linktrack-platform/internal/config"
	"linktrack-platform/internal/correlator"
	"linktrack-platform/internal/export"
	"linktrack-platform/internal/handler"
	"linktrack-platform/internal/middleware"
	"linktrack-platform/internal/model"
	"linktrack-platform/internal/platform"
	"linktrack-platform/internal/store"
	"linktrack-platform/internal/tracker"
	"linktrack-platform/pkg/database"
	auth "linktrack-platform/pkg/jwt"
	"linktrack-platform/pkg/logger"
	"linktrack-platform/pkg/redis"

	_ "linktrack-platform/docs"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title 链接归因平台 API
// @version 1.0
// @description 追踪深链点击并把群内活动关联回来源链接
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	logger.InitLogger()
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		sugaredLogger.Fatalf("配置加载失败: %v", err)
	}

	db, err := database.InitMySQL(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库连接成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewClient(&redis.Config{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败: %v", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	// 机器人网关客户端: 会话解析与成员状态查询
	gateway := platform.NewGatewayClient(cfg.Gateway.BaseURL, time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second)

	dataStore := store.New(db)
	trackerService := tracker.NewService(
		dataStore, gateway, rdb,
		cfg.Gateway.BotUsername,
		time.Duration(cfg.Tracker.CacheTTLHours)*time.Hour,
		sugaredLogger,
	)
	activityCorrelator := correlator.New(dataStore, sugaredLogger)
	exportAggregator := export.New(dataStore, gateway, cfg.Tracker.ExportWorkers, sugaredLogger)
	sugaredLogger.Info("✅ 追踪服务初始化成功")

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	sugaredLogger.Info("✅ 认证管理器初始化成功")

	if err := createAdminUser(db); err != nil {
		sugaredLogger.Errorf("创建管理员失败: %v", err)
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMiddleware := middleware.AuthMiddleware(tokenManager)
	rateLimitMiddleware := middleware.RateLimit(rdb, &cfg.RateLimit)
	router.Use(rateLimitMiddleware)

	linkHandler := handler.NewLinkHandler(trackerService, exportAggregator)
	gatewayHandler := handler.NewGatewayHandler(trackerService, activityCorrelator)
	authHandler := handler.NewAuthHandler(db, rdb, tokenManager)

	registerRoutes(router, linkHandler, gatewayHandler, authHandler, authMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sugaredLogger.Infof("🚀 服务启动成功, 监听端口 %d", cfg.Server.Port)
	sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugaredLogger.Fatalf("服务启动失败: %v", err)
	}
}

func registerRoutes(
	router *gin.Engine,
	linkHandler *handler.LinkHandler,
	gatewayHandler *handler.GatewayHandler,
	authHandler *handler.AuthHandler,
	authMiddleware gin.HandlerFunc,
) {
	router.GET("/health", linkHandler.HealthCheck)

	// 网关端点: 深链点击与群组消息，走内网不做用户鉴权
	gateway := router.Group("/gateway")
	{
		gateway.POST("/clicks", gatewayHandler.HandleClick)
		gateway.POST("/messages", gatewayHandler.HandleMessage)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	api := router.Group("/api")
	api.Use(authMiddleware)
	{
		api.GET("/me", authHandler.GetCurrentUser)
		api.GET("/stats", linkHandler.GetStats)
		api.POST("/links", linkHandler.CreateLink)
		api.GET("/links", linkHandler.ListLinks)
		api.GET("/links/:id", linkHandler.GetLink)
		api.DELETE("/links/:id", linkHandler.DeleteLink)
		api.GET("/links/:id/export", linkHandler.ExportSummary)
		api.GET("/links/:id/export/roster.csv", linkHandler.ExportRosterCSV)
		api.GET("/links/:id/export/activity.csv", linkHandler.ExportActivityCSV)
	}
}

func createAdminUser(db *gorm.DB) error {
	var existing model.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return nil
	}

	admin := model.User{Username: "admin", Email: "admin@linktrack.local", Role: "admin", IsActive: true}
	if err := admin.SetPassword("admin"); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infow("✅ 默认管理员创建成功", "username", "admin")
	return nil
}
