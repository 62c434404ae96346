package training

import (
	"encoding/json"
	"fmt"
)

const coachPrompt = `Sen bir fitness koçusun. Aşağıdaki antrenman verilerini analiz et ve her hareket için sonraki antrenmanda ne yapılması gerektiğini öner.

Kurallar:
- RPE 1-4: kolay, ağırlık artırılabilir
- RPE 5-7: uygun zorluk, duruma göre küçük artış veya aynı kal
- RPE 8-10: çok zor, ağırlık azaltılmalı veya set/tekrar düşürülmeli
- Progressive overload prensibi uygula
- Ağırlık artışını 2.5kg adımlarla öner
- Türkçe cevap ver

Veriler:
%s

JSON formatında cevap ver. Her hareket için:
{"recommendations": [
  {
    "exercise": "hareket adı",
    "action": "increase" | "maintain" | "decrease",
    "suggestedWeight": 62.5,
    "suggestion": "kısa tavsiye metni, ör: Ağırlık artır: 60kg → 62.5kg, 3×10",
    "reasoning": "kısa açıklama"
  }
]}
Sadece JSON döndür, başka bir şey yazma.`

func buildPrompt(history []exerciseHistory) (string, error) {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(coachPrompt, string(data)), nil
}
