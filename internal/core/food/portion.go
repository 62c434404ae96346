package food

import (
	"strconv"
	"strings"
)

// PortionCategory 決定一個食物可以使用哪些份量單位
type PortionCategory string

const (
	CategoryPortion PortionCategory = "porsiyon_gram"
	CategoryPlate   PortionCategory = "tabak_gram"
	CategoryCount   PortionCategory = "adet_gram"
	CategoryBowl    PortionCategory = "kase_gram"
	CategoryCup     PortionCategory = "bardak_gram"
	CategorySpoon   PortionCategory = "kasik_gram"
	CategorySlice   PortionCategory = "dilim_gram"
	CategoryGram    PortionCategory = "sadece_gram"
)

// Unit 份量單位，Value 會直接組進查詢文字
type Unit struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	unitPortion = Unit{Value: "porsiyon", Label: "Porsiyon"}
	unitGram    = Unit{Value: "gram", Label: "Gram (g)"}
	unitCount   = Unit{Value: "adet", Label: "Adet"}
	unitSlice   = Unit{Value: "dilim", Label: "Dilim"}
	unitBowl    = Unit{Value: "kase", Label: "Kase"}
	unitCup     = Unit{Value: "bardak", Label: "Bardak"}
	unitPlate   = Unit{Value: "tabak", Label: "Tabak"}
	unitSpoon   = Unit{Value: "kaşık", Label: "Kaşık"}
)

type categoryKeywords struct {
	category PortionCategory
	keywords []string
}

// PortionTable 食物名稱到份量單位的唯讀對照表
type PortionTable struct {
	rules []categoryKeywords
	units map[PortionCategory][]Unit
}

// DefaultPortionTable 內建的分類規則，依優先順序排列
func DefaultPortionTable() *PortionTable {
	return newPortionTable([]categoryKeywords{
		{CategoryPortion, []string{
			"et ", "köfte", "biftek", "steak", "kuşbaşı", "pirzola", "ciğer", "sucuk", "sote",
			"tavuk", "chicken", "nugget", "balık", "somon", "salmon", "ton balığı", "tuna",
			"karides", "shrimp", "hamsi", "levrek", "çupra", "midye", "kebap", "kebab", "döner",
			"iskender", "tantuni", "kokoreç", "beyti", "adana", "urfa", "dürüm", "musakka",
			"türlü", "bamya", "enginar", "çılbır", "menemen", "omlet", "karnıyarık",
			"imam bayıldı", "fasulye", "nohut", "dolma", "sarma", "çiğ köfte", "künefe", "mantı",
			"sahanda",
		}},
		{CategoryPlate, []string{
			"pilav", "pirinç", "bulgur", "rice", "makarna", "spagetti", "pasta", "noodle",
			"erişte", "salata", "salad", "sezar", "caesar", "çoban", "yulaf", "oat", "granola",
		}},
		{CategoryCount, []string{
			"muz", "banana", "elma", "apple", "portakal", "orange", "karpuz", "watermelon",
			"çilek", "üzüm", "avokado", "ceviz", "walnut", "badem", "almond", "fındık", "fıstık",
			"kestane", "yumurta", "egg", "baklava", "tulumba", "kurabiye", "cookie", "lokum",
			"çikolata", "dondurma", "simit", "poğaça", "açma", "bazlama", "gözleme", "lahmacun",
			"hamburger", "burger", "tost", "toast", "zeytin", "cips", "chips", "kraker", "cracker",
			"sigara böreği",
		}},
		{CategoryBowl, []string{
			"çorba", "soup", "mercimek", "ezogelin", "tarhana", "yayla", "işkembe", "sütlaç",
			"kazandibi", "aşure", "cacık", "yoğurt",
		}},
		{CategoryCup, []string{
			"ayran", "süt", "milk", "çay", "tea", "kahve", "coffee", "kola", "cola", "meyve suyu",
			"juice", "smoothie", "protein shake", "protein tozu", "whey", "şalgam",
		}},
		{CategorySpoon, []string{
			"bal", "honey", "tereyağı", "butter", "reçel", "jam", "humus", "hummus", "ezme",
		}},
		{CategorySlice, []string{
			"pizza", "pide", "börek", "ekmek", "bread", "kek", "cake", "revani", "helva", "peynir",
			"cheese", "kaşar", "güllaç", "kabak tatlısı", "patates kızartması", "french fries",
		}},
	}, map[PortionCategory][]Unit{
		CategoryPortion: {unitPortion, unitGram},
		CategoryPlate:   {unitPlate, unitPortion, unitGram},
		CategoryCount:   {unitCount, unitGram},
		CategoryBowl:    {unitBowl, unitCup, unitGram},
		CategoryCup:     {unitCup, unitGram},
		CategorySpoon:   {unitSpoon, unitGram},
		CategorySlice:   {unitSlice, unitCount, unitGram},
		CategoryGram:    {unitGram},
	})
}

// newPortionTable 建立對照表，關鍵字在建立時正規化
func newPortionTable(rules []categoryKeywords, units map[PortionCategory][]Unit) *PortionTable {
	t := &PortionTable{
		rules: make([]categoryKeywords, len(rules)),
		units: units,
	}
	for i, r := range rules {
		keywords := make([]string, len(r.keywords))
		for j, kw := range r.keywords {
			keywords[j] = Normalize(kw)
		}
		t.rules[i] = categoryKeywords{category: r.category, keywords: keywords}
	}
	return t
}

// Classify 回傳第一個有關鍵字出現在名稱中的分類，都沒有時為 CategoryGram
func (t *PortionTable) Classify(foodName string) PortionCategory {
	name := strings.TrimSpace(Normalize(foodName))
	if name == "" {
		return CategoryGram
	}
	for _, r := range t.rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return r.category
			}
		}
	}
	return CategoryGram
}

// UnitsFor 回傳分類可用的單位，第一個為預設單位
func (t *PortionTable) UnitsFor(category PortionCategory) []Unit {
	units, ok := t.units[category]
	if !ok {
		units = t.units[CategoryGram]
	}
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

// PortionQuery 組合 "<數量> <單位> <名稱>" 查詢文字
func PortionQuery(amount float64, unit, name string) string {
	if amount <= 0 {
		amount = 1
	}
	if unit = strings.TrimSpace(unit); unit == "" {
		unit = unitPortion.Value
	}
	return strconv.FormatFloat(amount, 'f', -1, 64) + " " + unit + " " + strings.TrimSpace(name)
}
