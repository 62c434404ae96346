package queue

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"fittrack/internal/infrastructure/config"
	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

// 隊列錯誤
var (
	ErrQueueFull   = common.NewError(common.ErrCodeServiceUnavailable, "AI kuyruğu dolu, lütfen biraz sonra tekrar deneyin", http.StatusServiceUnavailable, nil)
	ErrQueueClosed = common.NewError(common.ErrCodeServiceUnavailable, "Servis kapanıyor", http.StatusServiceUnavailable, nil)
)

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	Active         int `json:"active"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 限制同時進行的 AI 呼叫數，其餘請求排隊等待；等待數超過上限時直接拒絕
type Manager struct {
	slots     chan struct{}
	workers   int
	maxSize   int
	waiting   int64
	processed int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	common.LogInfo("AI 隊列已初始化",
		zap.Int("workers", cfg.Workers),
		zap.Int("max_queue_size", cfg.MaxSize),
	)
	return &Manager{
		slots:   make(chan struct{}, cfg.Workers),
		workers: cfg.Workers,
		maxSize: cfg.MaxSize,
		done:    make(chan struct{}),
	}
}

// Run 取得執行名額後呼叫 fn；等待中 ctx 取消時回傳 ctx.Err()
func (m *Manager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if atomic.AddInt64(&m.waiting, 1) > int64(m.maxSize) {
		atomic.AddInt64(&m.waiting, -1)
		common.LogWarn("AI queue is full", zap.Int("max_queue_size", m.maxSize))
		return ErrQueueFull
	}

	select {
	case m.slots <- struct{}{}:
		atomic.AddInt64(&m.waiting, -1)
	case <-ctx.Done():
		atomic.AddInt64(&m.waiting, -1)
		return ctx.Err()
	case <-m.done:
		atomic.AddInt64(&m.waiting, -1)
		return ErrQueueClosed
	}

	defer func() {
		<-m.slots
		atomic.AddInt64(&m.processed, 1)
	}()
	return fn(ctx)
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    int(atomic.LoadInt64(&m.waiting)),
		Active:         len(m.slots),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 關閉隊列管理器，等待中的請求會收到 ErrQueueClosed
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}
