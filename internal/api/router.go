package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fittrack/internal/api/handlers"
	foodHandler "fittrack/internal/api/handlers/food"
	"fittrack/internal/api/handlers/health"
	recordsHandler "fittrack/internal/api/handlers/records"
	trainingHandler "fittrack/internal/api/handlers/training"
	"fittrack/internal/api/middleware"
	"fittrack/internal/core/ai/cache"
	"fittrack/internal/core/ai/queue"
	"fittrack/internal/core/food"
	"fittrack/internal/core/image"
	"fittrack/internal/core/records"
	"fittrack/internal/core/training"
	"fittrack/internal/infrastructure/config"
	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由使用的服務；Cache 與 Queue 可為 nil
type Services struct {
	Store       store.KV
	Cache       *cache.CacheManager
	Queue       *queue.Manager
	Pipeline    *food.Pipeline
	Portions    *food.PortionTable
	Generations *food.Generations
	Photos      *image.Service
	Records     *records.Repository
	Engine      *training.Engine
}

func (s *Services) validate() error {
	switch {
	case s == nil:
		return errors.New("services are required")
	case s.Store == nil:
		return errors.New("store is required")
	case s.Pipeline == nil:
		return errors.New("food pipeline is required")
	case s.Portions == nil:
		return errors.New("portion table is required")
	case s.Photos == nil:
		return errors.New("photo service is required")
	case s.Records == nil:
		return errors.New("record repository is required")
	case s.Engine == nil:
		return errors.New("recommendation engine is required")
	}
	return nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *Services) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if err := svc.validate(); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}
	if svc.Generations == nil {
		svc.Generations = food.NewGenerations()
	}

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", foodHandler.FormIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 全局中間件：設置超時和服務
	timeout := cfg.Server.RequestTimeout
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set(health.ContextConfig, cfg)
		c.Set(health.ContextStore, svc.Store)
		c.Set(health.ContextCache, svc.Cache)
		c.Set(health.ContextQueue, svc.Queue)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(common.ErrGatewayTimeout.Status, common.ErrorResponse{
				Code:    common.ErrGatewayTimeout.Code,
				Message: common.ErrGatewayTimeout.Message,
			})
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// AI 路由共用同一個限流器
	aiLimit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		aiLimit = middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	foodH := foodHandler.NewHandler(svc.Pipeline, svc.Portions, svc.Photos, svc.Generations)
	recordsH := recordsHandler.NewHandler(svc.Records)
	trainingH := trainingHandler.NewHandler(svc.Engine, svc.Records)

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Deduplication(cfg))
	{
		foodGroup := api.Group("/food")
		{
			foodGroup.POST("/estimate", aiLimit, foodH.HandleEstimate)
			foodGroup.POST("/photo", aiLimit, foodH.HandlePhoto)
			foodGroup.GET("/units", foodH.HandleUnits)
		}

		api.GET("/meals", recordsH.ListMeals)
		api.POST("/meals", recordsH.AddMeal)
		api.DELETE("/meals/:id", recordsH.DeleteMeal)

		api.GET("/workouts", recordsH.ListWorkouts)
		api.POST("/workouts", recordsH.AddWorkout)
		api.GET("/workouts/records", recordsH.PersonalRecords)
		api.DELETE("/workouts/:id", recordsH.DeleteWorkout)

		api.GET("/profile", recordsH.GetProfile)
		api.PUT("/profile", recordsH.UpdateProfile)
		api.PUT("/settings/api-key", recordsH.SetAPIKey)

		programGroup := api.Group("/programs")
		{
			programGroup.GET("", recordsH.ListPrograms)
			programGroup.POST("", recordsH.AddProgram)
			programGroup.PUT("/current", recordsH.SwitchProgram)
			programGroup.DELETE("/:id", recordsH.DeleteProgram)
			programGroup.POST("/exercises", recordsH.AddProgramExercise)
			programGroup.DELETE("/exercises/:id", recordsH.DeleteProgramExercise)
			programGroup.GET("/logs", recordsH.ListProgramLogs)
			programGroup.POST("/logs", recordsH.AddProgramLog)
			programGroup.DELETE("/logs/:id", recordsH.DeleteProgramLog)
		}

		trainingGroup := api.Group("/training")
		{
			trainingGroup.GET("/recommendations", aiLimit, trainingH.HandleRecommendations)
			trainingGroup.GET("/rpe", trainingH.HandleRPE)
		}

		dataGroup := api.Group("/data")
		{
			dataGroup.GET("/export", recordsH.Export)
			dataGroup.DELETE("", recordsH.Reset)
		}
	}

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		handlers.RespondError(c, common.ErrMethodNotAllowed)
	})
	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, common.ErrNotFound)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("store_backend", cfg.Store.Backend),
		zap.Bool("cache_enabled", svc.Cache != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
