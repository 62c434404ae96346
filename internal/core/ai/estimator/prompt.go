package estimator

import (
	"fmt"
	"strings"
)

const responseShape = `{"name": "yemek adı (Türkçe)", "calories": 0, "protein": 0, "carbs": 0, "fat": 0}`

func textPrompt(description string) string {
	description = strings.ReplaceAll(description, `"`, "'")
	return fmt.Sprintf(`Sen bir beslenme uzmanısın. Kullanıcı şu yemeği sordu: "%s". `+
		`Bu yemeğin yaklaşık besin değerlerini tahmin et. Miktar belirtilmişse değerleri o miktara göre hesapla. `+
		`Cevabını yalnızca JSON formatında ver: %s. `+
		`Değerler: calories=kcal, protein/carbs/fat=gram.`, description, responseShape)
}

func imagePrompt() string {
	return `Bu fotoğraftaki yemeği analiz et ve görünen porsiyonun besin değerlerini tahmin et. ` +
		`Cevabını yalnızca JSON formatında ver: ` + responseShape + `. ` +
		`Değerler: calories=kcal, protein/carbs/fat=gram.`
}
