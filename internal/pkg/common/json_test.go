package common

import (
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		calories float64
	}{
		{"plain", `{"name":"Elma","calories":95,"protein":0.5}`, 95},
		{"fenced", "```json\n{\"name\": \"Elma\", \"calories\": 95}\n```", 95},
		{"fenced without language", "```\n{\"calories\": 120}\n```", 120},
		{"prose around", `İşte tahmin: {"name": "Mantı", "calories": 450, "protein": 18} Afiyet olsun!`, 450},
		{"earlier object without key", `{"note": "estimate"} then {"name": "Pilav", "calories": 350}`, 350},
		{"nested object", `Sonuç: {"name": "Tost", "calories": 310, "detail": {"source": "ai"}} bitti`, 310},
		{"unquoted keys", `{name: "Ayran", calories: 76, protein: 3.4,}`, 76},
		{"missing closing brace", `{"name": "Lahmacun", "calories": 280, "protein": 12`, 280},
		{"string calories", `{"name": "Çay", "calories": "2"}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractJSONObject(tt.raw, "calories")
			if err != nil {
				t.Fatalf("ExtractJSONObject: %v", err)
			}
			got, ok := NumberValue(obj["calories"])
			if !ok {
				t.Fatalf("calories %v is not numeric", obj["calories"])
			}
			if got != tt.calories {
				t.Errorf("calories = %v, want %v", got, tt.calories)
			}
		})
	}
}

func TestExtractJSONObjectFuncSkipsRejectedCandidates(t *testing.T) {
	numeric := func(obj map[string]interface{}) bool {
		_, ok := NumberValue(obj["calories"])
		return ok
	}

	tests := []struct {
		name     string
		raw      string
		calories float64
	}{
		{"string before number", `{"name":"Z","calories":"abc"} ve {"name":"W","calories":90}`, 90},
		{"fenced list", "```json\n{\"calories\": null}\n{\"calories\": 210}\n```", 210},
		{"unquoted keys later", `{calories: "bilinmiyor"} {name: "Ayran", calories: 76}`, 76},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractJSONObjectFunc(tt.raw, "calories", numeric)
			if err != nil {
				t.Fatalf("ExtractJSONObjectFunc: %v", err)
			}
			if got, _ := NumberValue(obj["calories"]); got != tt.calories {
				t.Errorf("calories = %v, want %v", got, tt.calories)
			}
		})
	}

	if _, err := ExtractJSONObjectFunc(`{"calories":"abc"}`, "calories", numeric); !errors.Is(err, ErrNoJSONObject) {
		t.Errorf("err = %v, want ErrNoJSONObject", err)
	}
}

func TestExtractJSONObjectFailures(t *testing.T) {
	for _, raw := range []string{
		"",
		"Üzgünüm, bu yemeği tanımıyorum.",
		`{"name": "Elma"}`,
		"```json\n```",
	} {
		if obj, err := ExtractJSONObject(raw, "calories"); !errors.Is(err, ErrNoJSONObject) {
			t.Errorf("ExtractJSONObject(%q) = %v, %v; want ErrNoJSONObject", raw, obj, err)
		}
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", `[{"exercise":"Squat"},{"exercise":"Bench"}]`, 2},
		{"wrapped", "```json\n{\"recommendations\": [{\"exercise\": \"Squat\"}]}\n```", 1},
		{"prose", `Öneriler: [{"exercise": "Deadlift"}] bu kadar`, 1},
	}

	for _, tt := range tests {
		items, err := ExtractJSONArray(tt.raw, "recommendations")
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if len(items) != tt.want {
			t.Errorf("%s: got %d items, want %d", tt.name, len(items), tt.want)
		}
	}

	if _, err := ExtractJSONArray("yok", "recommendations"); !errors.Is(err, ErrNoJSONArray) {
		t.Errorf("err = %v, want ErrNoJSONArray", err)
	}
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{float64(3), 3, true},
		{"12,5", 12.5, true},
		{" 7 ", 7, true},
		{"yüksek", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := NumberValue(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NumberValue(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
