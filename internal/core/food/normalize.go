package food

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// turkishFold 必須在轉小寫之前套用，否則 "İ" 會變成 "i" 加上組合點
var turkishFold = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ş", "s", "Ş", "s",
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ü", "u", "Ü", "u",
	"ö", "o", "Ö", "o",
)

// Normalize 將食物描述轉為比對用的形式：土耳其字母轉 ASCII、轉小寫、去除其他重音符號。
// 結果是冪等的：Normalize(Normalize(s)) == Normalize(s)。
func Normalize(text string) string {
	folded := strings.ToLower(turkishFold.Replace(text))

	// transform.Chain 有狀態，不能共用
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, folded)
	if err != nil {
		return folded
	}
	return out
}
