package health

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"fittrack/internal/core/ai/cache"
	"fittrack/internal/core/ai/queue"
	"fittrack/internal/infrastructure/config"
	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 注入到 gin.Context 的鍵
const (
	ContextConfig = "config"
	ContextStore  = "store"
	ContextCache  = "cache_manager"
	ContextQueue  = "queue_manager"
)

// readinessKey 就緒檢查時讀取的鍵，不存在也代表儲存可用
const readinessKey = "__readiness__"

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Store     string                 `json:"store"`
	Models    []string               `json:"models"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	value, _ := c.Get(ContextConfig)
	cfg, ok := value.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid configuration type",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// 構建響應
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Store:     cfg.Store.Backend,
		Models:    cfg.Gemini.Models,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if cm, ok := c.Get(ContextCache); ok {
		if manager, ok := cm.(*cache.CacheManager); ok && manager != nil {
			response.Cache = manager.GetStats()
		}
	}

	if qm, ok := c.Get(ContextQueue); ok {
		if manager, ok := qm.(*queue.Manager); ok && manager != nil {
			response.Queue = manager.GetQueueStatus()
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：確認鍵值儲存可以讀取
func ReadinessCheck(c *gin.Context) {
	value, _ := c.Get(ContextStore)
	kv, ok := value.(store.KV)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "store not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := kv.Get(ctx, readinessKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
