package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fittrack/internal/api"
	"fittrack/internal/core/ai/cache"
	"fittrack/internal/core/ai/estimator"
	"fittrack/internal/core/ai/gemini"
	"fittrack/internal/core/ai/queue"
	"fittrack/internal/core/food"
	"fittrack/internal/core/image"
	"fittrack/internal/core/records"
	"fittrack/internal/core/training"
	"fittrack/internal/infrastructure/config"
	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("gemini_api_key", config.MaskAPIKey(cfg.Gemini.APIKey)),
		zap.Strings("gemini_models", cfg.Gemini.Models),
		zap.String("store_backend", cfg.Store.Backend),
	)

	// 初始化儲存
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	kv, err := store.Open(startCtx, cfg.Store)
	cancelStart()
	if err != nil {
		common.LogFatal("Failed to open store", zap.Error(err))
	}
	defer kv.Close()

	// 載入食物資料庫
	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		common.LogFatal("Failed to load food catalog", zap.Error(err))
	}
	common.LogInfo("食物資料庫已載入", zap.Int("entries", catalog.Len()))

	// 初始化快取
	cacheManager := cache.NewManager(cfg.Cache, kv)
	var resultCache food.ResultCache
	var cacheClearer records.CacheClearer
	if cacheManager != nil {
		resultCache = cacheManager
		cacheClearer = cacheManager
	}

	repo := records.NewRepository(kv, cfg.Store.KeyPrefix, cfg.Gemini.APIKey, cacheClearer)

	// 初始化 AI
	ladder, err := gemini.NewLadder(gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.AttemptTimeout), cfg.Gemini)
	if err != nil {
		common.LogFatal("Failed to initialize model ladder", zap.Error(err))
	}
	aiQueue := queue.NewManager(cfg.Queue)
	defer aiQueue.Close()
	generator := gemini.NewGenerator(ladder, repo, cfg.Gemini).WithLimiter(aiQueue)

	services := &api.Services{
		Store:       kv,
		Cache:       cacheManager,
		Queue:       aiQueue,
		Pipeline:    food.NewPipeline(food.NewKnowledgeBase(catalog), resultCache, estimator.New(generator)),
		Portions:    food.DefaultPortionTable(),
		Generations: food.NewGenerations(),
		Photos:      image.NewService(cfg.Image.MaxSizeBytes),
		Records:     repo,
		Engine:      training.NewEngine(generator),
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, services)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// loadCatalog 有設定檔案路徑時使用外部資料，否則使用內嵌資料
func loadCatalog(cfg config.CatalogConfig) (*food.Catalog, error) {
	if cfg.Path != "" {
		return food.LoadCatalogFile(cfg.Path)
	}
	return food.DefaultCatalog()
}
