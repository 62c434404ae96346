package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"fittrack/internal/core/food"
	"fittrack/internal/infrastructure/config"
	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

// Compile-time interface check.
var _ food.ResultCache = (*CacheManager)(nil)

// Entry 快取中保存的 AI 估計結果
type Entry struct {
	food.NutritionEstimate
	CachedAt time.Time `json:"cachedAt"`
}

// CacheManager 以鍵值儲存保存 AI 估計結果。
// 項目寫入後不再更新；TTL 為 0 時永不過期。
type CacheManager struct {
	kv     store.KV
	prefix string
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	stats cacheStats
}

// cacheStats 緩存統計
type cacheStats struct {
	hits    int64
	misses  int64
	corrupt int64
	errors  int64
}

// NewManager 創建新的緩存管理器，快取停用時回傳 nil
func NewManager(cfg config.CacheConfig, kv store.KV) *CacheManager {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("前綴", cfg.KeyPrefix),
		zap.Duration("存活時間", cfg.TTL),
	)

	return &CacheManager{
		kv:     kv,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Key 快取鍵：只轉小寫並去除前後空白，不做重音正規化
func Key(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get 讀取快取；不存在、過期或資料損毀都視為未命中
func (m *CacheManager) Get(ctx context.Context, query string) (*food.NutritionEstimate, bool) {
	key := Key(query)
	if key == "" {
		return nil, false
	}

	entry, err := m.load(ctx, key)
	if err != nil {
		m.mu.Lock()
		m.stats.misses++
		switch {
		case errors.Is(err, store.ErrNotFound):
		case errors.Is(err, errCorruptEntry):
			m.stats.corrupt++
			common.LogWarn("快取資料損毀，視為未命中", zap.String("鍵", key), zap.Error(err))
		default:
			m.stats.errors++
			common.LogWarn("讀取快取失敗", zap.String("鍵", key), zap.Error(err))
		}
		m.mu.Unlock()
		common.LogCacheMiss("food", key)
		return nil, false
	}

	if m.ttl > 0 && m.now().Sub(entry.CachedAt) > m.ttl {
		m.mu.Lock()
		m.stats.misses++
		m.mu.Unlock()
		common.LogInfo("快取已過期", zap.String("鍵", key))
		return nil, false
	}

	m.mu.Lock()
	m.stats.hits++
	m.mu.Unlock()
	common.LogCacheHit("food", key)

	est := entry.NutritionEstimate
	return &est, true
}

// Put 寫入快取。已有有效項目時不覆蓋。
func (m *CacheManager) Put(ctx context.Context, query string, estimate food.NutritionEstimate) error {
	key := Key(query)
	if key == "" {
		return nil
	}

	// 序列化寫入，避免並發請求互相覆蓋
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, err := m.load(ctx, key); err == nil {
		if m.ttl == 0 || m.now().Sub(existing.CachedAt) <= m.ttl {
			return nil
		}
	}

	data, err := json.Marshal(Entry{NutritionEstimate: estimate, CachedAt: m.now()})
	if err != nil {
		m.stats.errors++
		return err
	}
	if err := m.kv.Set(ctx, m.prefix+key, data); err != nil {
		m.stats.errors++
		return err
	}

	common.LogInfo("快取已儲存", zap.String("鍵", key))
	return nil
}

// Clear 清除所有快取項目
func (m *CacheManager) Clear(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return store.DeletePrefix(ctx, m.kv, m.prefix)
}

// GetStats 獲取緩存統計信息
func (m *CacheManager) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"corrupt":   m.stats.corrupt,
		"errors":    m.stats.errors,
		"hit_ratio": ratio,
	}
}

var errCorruptEntry = errors.New("corrupt cache entry")

func (m *CacheManager) load(ctx context.Context, key string) (*Entry, error) {
	data, err := m.kv.Get(ctx, m.prefix+key)
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errors.Join(errCorruptEntry, err)
	}
	if entry.Name == "" || entry.Calories < 0 {
		return nil, errCorruptEntry
	}
	return &entry, nil
}
