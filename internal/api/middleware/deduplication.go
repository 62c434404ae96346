package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fittrack/internal/infrastructure/config"
	"fittrack/internal/pkg/common"
)

const defaultDedupWindow = 1 * time.Second

// deduplicator 記錄最近的 POST 請求指紋
type deduplicator struct {
	mu        sync.Mutex
	window    time.Duration
	requests  map[string]time.Time
	lastPrune time.Time
}

// seen 回傳指紋是否在時間窗內出現過，並記錄本次請求
func (d *deduplicator) seen(fingerprint string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// 定期清理過期指紋
	if now.Sub(d.lastPrune) > 10*d.window {
		for k, t := range d.requests {
			if now.Sub(t) > d.window {
				delete(d.requests, k)
			}
		}
		d.lastPrune = now
	}

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Deduplication 請求去重中間件：同一客戶端在時間窗內送出相同的 POST 請求會被拒絕
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	d := &deduplicator{
		window:   defaultDedupWindow,
		requests: make(map[string]time.Time),
	}
	if cfg != nil && cfg.DedupWindow > 0 {
		d.window = cfg.DedupWindow
	}

	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		hash := sha256.New()
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					abortTooLarge(c)
					return
				}
				c.AbortWithStatusJSON(common.ErrInvalidRequest.Status, common.ErrorResponse{
					Code:    common.ErrInvalidRequest.Code,
					Message: common.ErrInvalidRequest.Message,
				})
				return
			}
			hash.Write(body)

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + c.GetHeader("X-Form-ID") + ":" + hex.EncodeToString(hash.Sum(nil))

		if d.seen(fingerprint, time.Now()) {
			common.LogInfo("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Aynı istek kısa süre içinde tekrar gönderildi",
			})
			return
		}

		c.Next()
	}
}
