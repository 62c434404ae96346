package training

import (
	"math"
	"strconv"
)

const easyEffort = "Oldukça basit efor."

var rpeMeanings = map[float64]string{
	10:  "Ne daha fazla ağırlık, ne daha fazla tekrar yapılamazdı, maksimum efor.",
	9.5: "Belki 1 tekrar ya da biraz daha ağır yapılabilirdi.",
	9:   "1 tekrar daha yapılabilirdi. (Tankta 1 kaldı)",
	8.5: "Kesin 1, belki 2 tekrar yapılabilirdi.",
	8:   "2 tekrar daha yapılabilirdi.",
	7.5: "Kesin 2, belki 3 tekrar yapılabilirdi.",
	7:   "3 tekrar daha yapılabilirdi.",
	6.5: "4-5 tekrar daha yapılabilirdi.",
	6:   "4-5 tekrar daha yapılabilirdi.",
	5.5: "4-5 tekrar daha yapılabilirdi.",
	5:   "4-5 tekrar daha yapılabilirdi.",
}

// DescribeRPE 回傳 RPE 數值的說明文字，未列出的值依區間歸類
func DescribeRPE(value float64) string {
	if math.IsNaN(value) {
		return "Zorluk seviyesi seçin."
	}
	if text, ok := rpeMeanings[value]; ok {
		return text
	}
	switch {
	case value <= 4.5:
		return easyEffort
	case value <= 6:
		return rpeMeanings[6]
	default:
		return "Zorluk seviyesi seçin."
	}
}

// formatKg 去掉多餘的小數，60 → "60"，62.5 → "62.5"
func formatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
