package food

import (
	"regexp"
	"strconv"
	"strings"
)

// QuantitySpec 數量解析結果。GramAmount 不為 nil 時以克數換算，否則以 Multiplier 倍數換算。
type QuantitySpec struct {
	Multiplier float64
	GramAmount *float64
	Residual   string
}

// 超過上限的數量視為沒有寫數量
const (
	MaxGrams      = 100000 // 100 kg
	MaxMultiplier = 1000
)

var (
	// 單位必須是完整單字，避免 "2 gozleme" 被讀成 2 克的 "ozleme"
	quantityPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)(?:\s*(porsiyon|adet|tane|dilim|kase|bardak|tabak|kasik|gram|gr|g|kg)\b)?\s*`)
	compactGrams    = regexp.MustCompile(`^(\d+)g\s+`)
)

// ParseQuantity 解析開頭的數量與單位，回傳剩餘的（已正規化）查詢文字
func ParseQuantity(query string) QuantitySpec {
	q := strings.TrimSpace(Normalize(query))
	spec := QuantitySpec{Multiplier: 1, Residual: q}

	if m := quantityPattern.FindStringSubmatch(q); m != nil {
		num, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		spec.Residual = strings.TrimSpace(q[len(m[0]):])
		if err == nil && num > 0 {
			switch m[2] {
			case "gram", "gr", "g":
				if num <= MaxGrams {
					spec.GramAmount = &num
				}
			case "kg":
				if grams := num * 1000; grams <= MaxGrams {
					spec.GramAmount = &grams
				}
			default:
				if num <= MaxMultiplier {
					spec.Multiplier = num
				}
			}
		}
	}

	if spec.GramAmount == nil {
		if m := compactGrams.FindStringSubmatch(spec.Residual); m != nil {
			if grams, err := strconv.ParseFloat(m[1], 64); err == nil && grams > 0 && grams <= MaxGrams {
				spec.GramAmount = &grams
				spec.Residual = strings.TrimSpace(spec.Residual[len(m[0]):])
			}
		}
	}

	return spec
}
