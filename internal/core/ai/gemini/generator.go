package gemini

import (
	"context"
	"strings"

	"fittrack/internal/infrastructure/config"
	"fittrack/internal/pkg/common"
)

// KeySource 提供目前的 API 金鑰，空字串表示未設定
type KeySource interface {
	APIKey(ctx context.Context) string
}

// StaticKey 固定的 API 金鑰
type StaticKey string

// APIKey 實現 KeySource
func (k StaticKey) APIKey(ctx context.Context) string {
	return string(k)
}

// Limiter 限制同時進行的模型呼叫，由 queue.Manager 實作
type Limiter interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Generator 組合金鑰、生成參數與模型階梯，回傳模型輸出的文字
type Generator struct {
	ladder  *Ladder
	keys    KeySource
	config  GenerationConfig
	limiter Limiter
}

// NewGenerator 創建文字生成器
func NewGenerator(ladder *Ladder, keys KeySource, cfg config.GeminiConfig) *Generator {
	return &Generator{
		ladder: ladder,
		keys:   keys,
		config: GenerationConfig{
			Temperature:      cfg.Temperature,
			MaxOutputTokens:  cfg.MaxOutputTokens,
			ResponseMimeType: cfg.ResponseMimeType,
		},
	}
}

// WithLimiter 設定呼叫限制器
func (g *Generator) WithLimiter(l Limiter) *Generator {
	g.limiter = l
	return g
}

// Generate 送出一則訊息並回傳回應文字。
// 沒有金鑰時不發出任何請求，直接回傳 ConfigurationError。
func (g *Generator) Generate(ctx context.Context, parts ...Part) (string, error) {
	key := strings.TrimSpace(g.keys.APIKey(ctx))
	if key == "" {
		return "", common.NewConfigurationError("Gemini API anahtarı tanımlı değil")
	}

	genConfig := g.config
	req := &GenerateRequest{
		Contents:         []Content{{Parts: parts}},
		GenerationConfig: &genConfig,
	}

	var resp *GenerateResponse
	call := func(ctx context.Context) error {
		var err error
		resp, _, err = g.ladder.Generate(ctx, key, req)
		return err
	}

	var err error
	if g.limiter != nil {
		err = g.limiter.Run(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", common.NewResponseFormatError("AI yanıt vermedi", "")
	}
	return text, nil
}

// GenerateText 只含文字的請求
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.Generate(ctx, Part{Text: prompt})
}
