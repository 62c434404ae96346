package cache

import (
	"context"
	"testing"
	"time"

	"fittrack/internal/core/food"
	"fittrack/internal/infrastructure/config"
	"fittrack/internal/infrastructure/store"
)

func newTestManager(ttl time.Duration) (*CacheManager, *store.MemoryStore) {
	kv := store.NewMemoryStore()
	m := NewManager(config.CacheConfig{Enabled: true, TTL: ttl, KeyPrefix: "food_cache:"}, kv)
	return m, kv
}

func TestCacheRoundTrip(t *testing.T) {
	m, _ := newTestManager(0)
	ctx := context.Background()
	est := food.NutritionEstimate{Name: "Kinoa Kasesi", Calories: 320, Protein: 9.5, Carbs: 40, Fat: 12.1}

	if got, ok := m.Get(ctx, "Kinoa Kasesi"); ok {
		t.Fatalf("unseen key returned %+v", got)
	}

	if err := m.Put(ctx, "  Kinoa Kasesi ", est); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := m.Get(ctx, "kinoa kasesi")
	if !ok {
		t.Fatal("Get after Put missed")
	}
	if *got != est {
		t.Errorf("Get = %+v, want %+v", *got, est)
	}
}

func TestCacheKeyIsNotDiacriticNormalized(t *testing.T) {
	m, _ := newTestManager(0)
	ctx := context.Background()

	m.Put(ctx, "Çiğ Börek", food.NutritionEstimate{Name: "Çiğ Börek", Calories: 300})

	if _, ok := m.Get(ctx, "cig borek"); ok {
		t.Error("ascii-folded query hit the cache")
	}
	if _, ok := m.Get(ctx, "çiğ börek"); !ok {
		t.Error("lower-cased query missed the cache")
	}
}

func TestCacheEntriesAreNeverUpdated(t *testing.T) {
	m, _ := newTestManager(0)
	ctx := context.Background()

	m.Put(ctx, "zzzz", food.NutritionEstimate{Name: "ilk", Calories: 100})
	m.Put(ctx, "zzzz", food.NutritionEstimate{Name: "ikinci", Calories: 200})

	got, ok := m.Get(ctx, "zzzz")
	if !ok || got.Name != "ilk" {
		t.Errorf("Get = %+v, want first write", got)
	}
}

func TestCorruptEntryReadsAsMiss(t *testing.T) {
	m, kv := newTestManager(0)
	ctx := context.Background()

	kv.Set(ctx, "food_cache:bozuk", []byte(`{"name": "x", "calories": `))
	if _, ok := m.Get(ctx, "bozuk"); ok {
		t.Error("corrupt entry returned a hit")
	}

	// 損毀的項目可以重新寫入
	if err := m.Put(ctx, "bozuk", food.NutritionEstimate{Name: "Düzgün", Calories: 50}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got, ok := m.Get(ctx, "bozuk"); !ok || got.Name != "Düzgün" {
		t.Errorf("Get after repair = %+v, %v", got, ok)
	}

	if stats := m.GetStats(); stats["corrupt"].(int64) != 1 {
		t.Errorf("corrupt count = %v, want 1", stats["corrupt"])
	}
}

func TestCacheTTL(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Put(ctx, "zzzz", food.NutritionEstimate{Name: "eski", Calories: 10})

	now = now.Add(30 * time.Minute)
	if _, ok := m.Get(ctx, "zzzz"); !ok {
		t.Error("entry expired too early")
	}

	now = now.Add(time.Hour)
	if _, ok := m.Get(ctx, "zzzz"); ok {
		t.Error("expired entry returned a hit")
	}

	m.Put(ctx, "zzzz", food.NutritionEstimate{Name: "yeni", Calories: 20})
	if got, ok := m.Get(ctx, "zzzz"); !ok || got.Name != "yeni" {
		t.Errorf("expired entry was not replaced: %+v", got)
	}
}

func TestClear(t *testing.T) {
	m, kv := newTestManager(0)
	ctx := context.Background()

	m.Put(ctx, "a", food.NutritionEstimate{Name: "A", Calories: 1})
	m.Put(ctx, "b", food.NutritionEstimate{Name: "B", Calories: 2})
	kv.Set(ctx, "fittrack_meals", []byte(`[]`))

	n, err := m.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("entry survived Clear")
	}
	if _, err := kv.Get(ctx, "fittrack_meals"); err != nil {
		t.Error("Clear removed unrelated key")
	}
}

func TestDisabledCacheIsNil(t *testing.T) {
	if m := NewManager(config.CacheConfig{Enabled: false}, store.NewMemoryStore()); m != nil {
		t.Error("disabled cache should be nil")
	}
}
