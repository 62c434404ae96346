package food

import "math"

// NutritionEstimate 一次查詢的營養估計結果，所有數值皆不為負
type NutritionEstimate struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Tier 估計結果的來源
type Tier string

const (
	TierCatalog Tier = "catalog"
	TierCache   Tier = "cache"
	TierAI      Tier = "ai"
)

// Resolution 解析管線的輸出
type Resolution struct {
	NutritionEstimate
	Tier Tier `json:"tier"`
}

// MaxCalories 卡路里上限，超過時截斷以免整數溢位
const MaxCalories = math.MaxInt32

// RoundCalories 四捨五入到整數，負值與非數字視為 0，過大的值截斷為 MaxCalories
func RoundCalories(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= MaxCalories {
		return MaxCalories
	}
	return int(math.Round(v))
}

// RoundMacro 四捨五入到小數點後一位，負值與非數字視為 0
func RoundMacro(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Round(v*10) / 10
}
