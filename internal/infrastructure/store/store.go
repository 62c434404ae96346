package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fittrack/internal/infrastructure/config"
	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNotFound 鍵不存在
var ErrNotFound = errors.New("store: key not found")

// KV 是應用資料的鍵值儲存介面，值為序列化後的 JSON
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys 回傳所有以 prefix 開頭的鍵
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open 依設定建立儲存後端
func Open(ctx context.Context, cfg config.StoreConfig) (KV, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.StoreRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Load 讀取並解析 JSON 值；鍵不存在或資料損毀時回傳 fallback
func Load[T any](ctx context.Context, kv KV, key string, fallback T) T {
	data, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			common.LogWarn("讀取儲存資料失敗", zap.String("key", key), zap.Error(err))
		}
		return fallback
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		common.LogWarn("儲存資料損毀，使用預設值", zap.String("key", key), zap.Error(err))
		return fallback
	}
	return value
}

// Save 將值序列化為 JSON 後寫入
func Save(ctx context.Context, kv KV, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// DeletePrefix 刪除所有以 prefix 開頭的鍵，回傳刪除數量
func DeletePrefix(ctx context.Context, kv KV, prefix string) (int, error) {
	keys, err := kv.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		if err := kv.Delete(ctx, key); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}
