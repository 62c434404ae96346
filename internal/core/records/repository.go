package records

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"fittrack/internal/core/ai/gemini"
	"fittrack/internal/core/training"
	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

// 儲存鍵（不含前綴）
const (
	keyWorkouts      = "workouts"
	keyMeals         = "meals"
	keyProfile       = "profile"
	keyPrograms      = "programs"
	keyLegacyProgram = "program"
	keyProgramLogs   = "programLogs"
	keyAPIKey        = "gemini_key"
)

const dateLayout = "2006-01-02"

// Compile-time interface check.
var _ gemini.KeySource = (*Repository)(nil)

// CacheClearer 全部重設時一併清除的結果快取
type CacheClearer interface {
	Clear(ctx context.Context) (int, error)
}

// Repository 使用者資料存取層。讀取時資料損毀視為空值。
type Repository struct {
	kv          store.KV
	prefix      string
	fallbackKey string
	cache       CacheClearer
	now         func() time.Time

	// 讀取-修改-寫入需要序列化
	mu sync.Mutex
}

// NewRepository 創建資料存取層；fallbackKey 為使用者未設定 API 金鑰時使用的設定值，cache 可為 nil
func NewRepository(kv store.KV, prefix, fallbackKey string, cache CacheClearer) *Repository {
	return &Repository{
		kv:          kv,
		prefix:      prefix,
		fallbackKey: fallbackKey,
		cache:       cache,
		now:         time.Now,
	}
}

func (r *Repository) key(name string) string {
	return r.prefix + name
}

func (r *Repository) today() string {
	return r.now().Format(dateLayout)
}

// Meals 回傳所有餐點
func (r *Repository) Meals(ctx context.Context) []Meal {
	return store.Load(ctx, r.kv, r.key(keyMeals), []Meal{})
}

// MealsOn 回傳指定日期的餐點
func (r *Repository) MealsOn(ctx context.Context, date string) []Meal {
	out := []Meal{}
	for _, m := range r.Meals(ctx) {
		if m.Date == date {
			out = append(out, m)
		}
	}
	return out
}

// AddMeal 新增餐點，未指定日期時使用今天
func (r *Repository) AddMeal(ctx context.Context, meal Meal) (Meal, error) {
	meal.Name = strings.TrimSpace(meal.Name)
	if meal.Name == "" {
		return Meal{}, common.NewValidationError("yemek adı boş olamaz")
	}
	if meal.Calories < 0 || meal.Protein < 0 || meal.Carbs < 0 || meal.Fat < 0 {
		return Meal{}, common.NewValidationError("besin değerleri negatif olamaz")
	}
	if meal.ID == "" {
		meal.ID = common.GenerateUUID()
	}
	if meal.Date == "" {
		meal.Date = r.today()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.Meals(ctx)
	list = append(list, meal)
	if err := store.Save(ctx, r.kv, r.key(keyMeals), list); err != nil {
		return Meal{}, err
	}
	return meal, nil
}

// DeleteMeal 刪除餐點
func (r *Repository) DeleteMeal(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.Meals(ctx)
	kept, removed := removeByID(list, id, func(m Meal) string { return m.ID })
	if !removed {
		return store.ErrNotFound
	}
	return store.Save(ctx, r.kv, r.key(keyMeals), kept)
}

// Workouts 回傳所有重量訓練記錄（依日期排序）
func (r *Repository) Workouts(ctx context.Context) []Workout {
	return store.Load(ctx, r.kv, r.key(keyWorkouts), []Workout{})
}

// AddWorkout 新增訓練記錄，回傳是否為新的個人紀錄
func (r *Repository) AddWorkout(ctx context.Context, w Workout) (Workout, bool, error) {
	w.Exercise = strings.TrimSpace(w.Exercise)
	if w.Exercise == "" || w.Weight <= 0 || w.Sets <= 0 || w.Reps <= 0 {
		return Workout{}, false, common.NewValidationError("Tüm alanları doldurun")
	}
	if w.ID == "" {
		w.ID = common.GenerateUUID()
	}
	if w.Date == "" {
		w.Date = r.today()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.Workouts(ctx)
	prev, ok := personalRecords(list)[w.Exercise]
	isPR := !ok || w.Weight > prev.Weight

	list = append(list, w)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	if err := store.Save(ctx, r.kv, r.key(keyWorkouts), list); err != nil {
		return Workout{}, false, err
	}
	return w, isPR, nil
}

// DeleteWorkout 刪除訓練記錄
func (r *Repository) DeleteWorkout(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept, removed := removeByID(r.Workouts(ctx), id, func(w Workout) string { return w.ID })
	if !removed {
		return store.ErrNotFound
	}
	return store.Save(ctx, r.kv, r.key(keyWorkouts), kept)
}

// PersonalRecords 每個動作的最大重量
func (r *Repository) PersonalRecords(ctx context.Context) map[string]PersonalRecord {
	return personalRecords(r.Workouts(ctx))
}

func personalRecords(list []Workout) map[string]PersonalRecord {
	prs := make(map[string]PersonalRecord)
	for _, w := range list {
		if pr, ok := prs[w.Exercise]; !ok || w.Weight > pr.Weight {
			prs[w.Exercise] = PersonalRecord{Weight: w.Weight, Sets: w.Sets, Reps: w.Reps, Date: w.Date}
		}
	}
	return prs
}

// UsedExercises 曾記錄過的動作名稱（排序後去重）
func (r *Repository) UsedExercises(ctx context.Context) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, w := range r.Workouts(ctx) {
		if !seen[w.Exercise] {
			seen[w.Exercise] = true
			out = append(out, w.Exercise)
		}
	}
	sort.Strings(out)
	return out
}

// Profile 回傳使用者資料
func (r *Repository) Profile(ctx context.Context) Profile {
	return store.Load(ctx, r.kv, r.key(keyProfile), DefaultProfile)
}

// SetProfile 更新使用者資料
func (r *Repository) SetProfile(ctx context.Context, p Profile) error {
	if p.Height <= 0 || p.Age <= 0 || p.BodyWeight <= 0 || p.CalorieGoal <= 0 {
		return common.NewValidationError("profil değerleri pozitif olmalı")
	}
	return store.Save(ctx, r.kv, r.key(keyProfile), p)
}

// APIKey 回傳使用者設定的金鑰，未設定時使用環境設定
func (r *Repository) APIKey(ctx context.Context) string {
	data, err := r.kv.Get(ctx, r.key(keyAPIKey))
	if err == nil && strings.TrimSpace(string(data)) != "" {
		return strings.TrimSpace(string(data))
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		common.LogWarn("讀取 API 金鑰失敗", zap.Error(err))
	}
	return r.fallbackKey
}

// SetAPIKey 保存使用者的金鑰，空字串表示移除
func (r *Repository) SetAPIKey(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return r.kv.Delete(ctx, r.key(keyAPIKey))
	}
	return r.kv.Set(ctx, r.key(keyAPIKey), []byte(apiKey))
}

// Export 匯出訓練、餐點與使用者資料
func (r *Repository) Export(ctx context.Context) Export {
	return Export{
		Workouts:   r.Workouts(ctx),
		Meals:      r.Meals(ctx),
		Profile:    r.Profile(ctx),
		ExportedAt: r.now().UTC(),
	}
}

// Reset 刪除所有使用者資料與結果快取
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed, err := store.DeletePrefix(ctx, r.kv, r.prefix)
	if err != nil {
		return err
	}

	cleared := 0
	if r.cache != nil {
		if cleared, err = r.cache.Clear(ctx); err != nil {
			return err
		}
	}

	common.LogInfo("所有資料已清除", zap.Int("keys", removed), zap.Int("cache_entries", cleared))
	return nil
}

func removeByID[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	kept := make([]T, 0, len(list))
	removed := false
	for _, item := range list {
		if idOf(item) == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}

// loadProgramLogs 計畫訓練記錄與 training 共用型別
func (r *Repository) loadProgramLogs(ctx context.Context) []training.ExerciseLogRecord {
	return store.Load(ctx, r.kv, r.key(keyProgramLogs), []training.ExerciseLogRecord{})
}
