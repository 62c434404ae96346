package food

import (
	"context"
	"strings"
	"time"

	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

// Estimator 生成式 AI 估計器
type Estimator interface {
	EstimateText(ctx context.Context, description string) (NutritionEstimate, error)
	EstimateImage(ctx context.Context, imageBase64, mimeType string) (NutritionEstimate, error)
}

// ResultCache 保存 AI 估計結果，避免重複呼叫
type ResultCache interface {
	Get(ctx context.Context, query string) (*NutritionEstimate, bool)
	Put(ctx context.Context, query string, estimate NutritionEstimate) error
}

// Pipeline 依序嘗試資料庫、快取、AI 三層解析食物描述
type Pipeline struct {
	kb        *KnowledgeBase
	cache     ResultCache
	estimator Estimator
}

// NewPipeline 創建解析管線，cache 可為 nil（停用快取）
func NewPipeline(kb *KnowledgeBase, cache ResultCache, estimator Estimator) *Pipeline {
	return &Pipeline{
		kb:        kb,
		cache:     cache,
		estimator: estimator,
	}
}

// Resolve 解析文字描述。資料庫命中時不讀寫快取；AI 成功後寫入快取。
// AI 的錯誤原樣回傳。
func (p *Pipeline) Resolve(ctx context.Context, description string) (Resolution, error) {
	if strings.TrimSpace(description) == "" {
		return Resolution{}, common.NewValidationError("yemek açıklaması boş olamaz")
	}

	if est, ok := p.kb.Resolve(description); ok {
		common.LogDebug("資料庫命中", zap.String("query", description), zap.String("name", est.Name))
		return Resolution{NutritionEstimate: est, Tier: TierCatalog}, nil
	}

	if p.cache != nil {
		if est, ok := p.cache.Get(ctx, description); ok {
			return Resolution{NutritionEstimate: *est, Tier: TierCache}, nil
		}
	}

	start := time.Now()
	est, err := p.estimator.EstimateText(ctx, description)
	if err != nil {
		common.LogWarn("AI 估計失敗",
			zap.String("query", description),
			zap.Duration("耗時", time.Since(start)),
			zap.Error(err),
		)
		return Resolution{}, err
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, description, est); err != nil {
			common.LogWarn("寫入快取失敗", zap.String("query", description), zap.Error(err))
		}
	}

	return Resolution{NutritionEstimate: est, Tier: TierAI}, nil
}

// ResolveImage 以照片估計營養值，不經過資料庫與快取
func (p *Pipeline) ResolveImage(ctx context.Context, imageBase64, mimeType string) (Resolution, error) {
	if imageBase64 == "" {
		return Resolution{}, common.NewValidationError("fotoğraf verisi boş olamaz")
	}
	est, err := p.estimator.EstimateImage(ctx, imageBase64, mimeType)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{NutritionEstimate: est, Tier: TierAI}, nil
}
