package estimator

import (
	"context"
	"strings"

	"fittrack/internal/core/ai/gemini"
	"fittrack/internal/core/food"
	"fittrack/internal/pkg/common"
)

// DefaultName 模型沒有回傳名稱時使用
const DefaultName = "AI Tahmin"

const defaultImageMimeType = "image/jpeg"

// Compile-time interface check.
var _ food.Estimator = (*Estimator)(nil)

// TextGenerator 送出訊息並回傳模型文字，由 gemini.Generator 實作
type TextGenerator interface {
	Generate(ctx context.Context, parts ...gemini.Part) (string, error)
}

// Estimator 以生成式模型估計營養值
type Estimator struct {
	gen TextGenerator
}

// New 創建估計器
func New(gen TextGenerator) *Estimator {
	return &Estimator{gen: gen}
}

// EstimateText 以文字描述估計營養值
func (e *Estimator) EstimateText(ctx context.Context, description string) (food.NutritionEstimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return food.NutritionEstimate{}, common.NewValidationError("yemek açıklaması boş olamaz")
	}

	raw, err := e.gen.Generate(ctx, gemini.Part{Text: textPrompt(description)})
	if err != nil {
		return food.NutritionEstimate{}, err
	}
	return ParseEstimate(raw)
}

// EstimateImage 以照片估計營養值，imageBase64 不含 data URI 前綴
func (e *Estimator) EstimateImage(ctx context.Context, imageBase64, mimeType string) (food.NutritionEstimate, error) {
	if imageBase64 == "" {
		return food.NutritionEstimate{}, common.NewValidationError("fotoğraf verisi boş olamaz")
	}
	if mimeType == "" {
		mimeType = defaultImageMimeType
	}

	raw, err := e.gen.Generate(ctx,
		gemini.Part{Text: imagePrompt()},
		gemini.Part{InlineData: &gemini.InlineData{MimeType: mimeType, Data: imageBase64}},
	)
	if err != nil {
		return food.NutritionEstimate{}, err
	}
	return ParseEstimate(raw)
}

// ParseEstimate 從模型文字取出並正規化營養值。
// 找不到數字型的 calories 時回傳 ResponseFormatError。
func ParseEstimate(raw string) (food.NutritionEstimate, error) {
	obj, err := common.ExtractJSONObjectFunc(raw, "calories", hasNumericCalories)
	if err != nil {
		// 有 calories 鍵但不是數字時給出較明確的訊息
		if _, keyErr := common.ExtractJSONObject(raw, "calories"); keyErr == nil {
			return food.NutritionEstimate{}, common.NewResponseFormatError("AI yanıtında kalori yok", raw)
		}
		return food.NutritionEstimate{}, common.NewResponseFormatError("AI yanıtı okunamadı", raw)
	}

	calories, _ := common.NumberValue(obj["calories"])

	name, _ := obj["name"].(string)
	if name = strings.TrimSpace(name); name == "" {
		name = DefaultName
	}

	return food.NutritionEstimate{
		Name:     name,
		Calories: food.RoundCalories(calories),
		Protein:  macro(obj["protein"]),
		Carbs:    macro(obj["carbs"]),
		Fat:      macro(obj["fat"]),
	}, nil
}

func hasNumericCalories(obj map[string]interface{}) bool {
	_, ok := common.NumberValue(obj["calories"])
	return ok
}

func macro(v interface{}) float64 {
	n, ok := common.NumberValue(v)
	if !ok {
		return 0
	}
	return food.RoundMacro(n)
}
