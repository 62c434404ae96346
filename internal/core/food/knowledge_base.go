package food

import (
	"regexp"
	"strconv"
	"strings"
)

// MatchThreshold 低於此分數視為資料庫未命中
const MatchThreshold = 30

// nominalPortionGrams 沒有每 100 克資料時，預設份量假設的重量
const nominalPortionGrams = 200

var portionNote = regexp.MustCompile(`\(.*\)`)

// Match 資料庫比對結果
type Match struct {
	Entry Entry
	Alias string
	Score float64
}

// KnowledgeBase 以模糊比對查詢內建食物資料庫
type KnowledgeBase struct {
	catalog *Catalog
}

// NewKnowledgeBase 創建知識庫
func NewKnowledgeBase(catalog *Catalog) *KnowledgeBase {
	return &KnowledgeBase{catalog: catalog}
}

// Lookup 找出分數最高的 (資料, 別名)，同分時保留資料庫中較前面的一筆。
// 空字串或最高分低於 MatchThreshold 時回傳 nil。
func (kb *KnowledgeBase) Lookup(residual string) *Match {
	q := strings.TrimSpace(Normalize(residual))
	if q == "" {
		return nil
	}
	words := strings.Fields(q)

	var best *Match
	for i, aliases := range kb.catalog.aliases {
		for _, alias := range aliases {
			score := scoreAlias(q, words, alias)
			if best == nil || score > best.Score {
				best = &Match{Entry: kb.catalog.entries[i], Alias: alias, Score: score}
			}
		}
	}

	if best == nil || best.Score < MatchThreshold {
		return nil
	}
	return best
}

func scoreAlias(q string, words []string, alias string) float64 {
	switch {
	case q == alias:
		return 100
	case strings.Contains(q, alias):
		return 80
	case strings.Contains(alias, q):
		return 60
	}

	aliasWords := strings.Fields(alias)
	matched := 0
	for _, w := range words {
		for _, aw := range aliasWords {
			if strings.Contains(aw, w) || strings.Contains(w, aw) {
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return 0
	}
	return float64(matched) / float64(len(words)) * 50
}

// Scale 依數量換算營養值
func Scale(entry Entry, spec QuantitySpec) NutritionEstimate {
	if spec.GramAmount != nil {
		grams := *spec.GramAmount
		base := Macros{Calories: entry.Calories, Protein: entry.Protein, Carbs: entry.Carbs, Fat: entry.Fat}
		factor := grams / nominalPortionGrams
		if entry.Per100g != nil {
			base = *entry.Per100g
			factor = grams / 100
		}
		return NutritionEstimate{
			Name:     withGramNote(entry.Name, grams),
			Calories: RoundCalories(base.Calories * factor),
			Protein:  RoundMacro(base.Protein * factor),
			Carbs:    RoundMacro(base.Carbs * factor),
			Fat:      RoundMacro(base.Fat * factor),
		}
	}

	m := spec.Multiplier
	if m <= 0 {
		m = 1
	}
	name := entry.Name
	if m > 1 {
		name = formatNumber(m) + "x " + name
	}
	return NutritionEstimate{
		Name:     name,
		Calories: RoundCalories(entry.Calories * m),
		Protein:  RoundMacro(entry.Protein * m),
		Carbs:    RoundMacro(entry.Carbs * m),
		Fat:      RoundMacro(entry.Fat * m),
	}
}

// Resolve 解析數量、比對資料庫並換算；未命中時回傳 false
func (kb *KnowledgeBase) Resolve(query string) (NutritionEstimate, bool) {
	spec := ParseQuantity(query)
	match := kb.Lookup(spec.Residual)
	if match == nil {
		return NutritionEstimate{}, false
	}
	return Scale(match.Entry, spec), true
}

func withGramNote(name string, grams float64) string {
	note := "(" + formatNumber(grams) + "g)"
	if portionNote.MatchString(name) {
		return portionNote.ReplaceAllLiteralString(name, note)
	}
	return name + " " + note
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
