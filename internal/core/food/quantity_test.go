package food

import "testing"

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		multiplier float64
		grams      float64 // 0 表示沒有克數
		residual   string
	}{
		{"count unit", "2 porsiyon baklava", 2, 0, "baklava"},
		{"compact grams", "200g tavuk göğsü", 1, 200, "tavuk gogsu"},
		{"spaced grams", "150 gram tavuk göğsü", 1, 150, "tavuk gogsu"},
		{"gr abbreviation", "80 gr yulaf", 1, 80, "yulaf"},
		{"kilograms with comma", "1,5 kg pilav", 1, 1500, "pilav"},
		{"decimal dot multiplier", "1.5 kase mercimek", 1.5, 0, "mercimek"},
		{"tane", "3 tane elma", 3, 0, "elma"},
		{"bare number", "2 yumurta", 2, 0, "yumurta"},
		{"unit prefix of a word", "2 gozleme", 2, 0, "gozleme"},
		{"spoon unit", "1 kaşık bal", 1, 0, "bal"},
		{"no quantity", "  Mercimek Çorbası ", 1, 0, "mercimek corbasi"},
		{"secondary gram pass", "1 porsiyon 150g tavuk but", 1, 150, "tavuk but"},
		{"absurd kilograms ignored", "99999999999999999999999 kg elma", 1, 0, "elma"},
		{"absurd count ignored", "99999999999999999999999 porsiyon elma", 1, 0, "elma"},
		{"absurd compact grams ignored", "5000000g pilav", 1, 0, "pilav"},
		{"upper gram bound kept", "100000 gram pilav", 1, 100000, "pilav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuantity(tt.query)
			if got.Multiplier != tt.multiplier {
				t.Errorf("multiplier = %v, want %v", got.Multiplier, tt.multiplier)
			}
			switch {
			case tt.grams == 0 && got.GramAmount != nil:
				t.Errorf("gram amount = %v, want nil", *got.GramAmount)
			case tt.grams != 0 && got.GramAmount == nil:
				t.Errorf("gram amount = nil, want %v", tt.grams)
			case tt.grams != 0 && *got.GramAmount != tt.grams:
				t.Errorf("gram amount = %v, want %v", *got.GramAmount, tt.grams)
			}
			if got.Residual != tt.residual {
				t.Errorf("residual = %q, want %q", got.Residual, tt.residual)
			}
		})
	}
}
