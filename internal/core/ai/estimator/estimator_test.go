package estimator

import (
	"context"
	"strings"
	"testing"

	"fittrack/internal/core/ai/gemini"
	"fittrack/internal/core/food"
	"fittrack/internal/pkg/common"
)

type fakeGenerator struct {
	reply string
	err   error
	parts []gemini.Part
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, parts ...gemini.Part) (string, error) {
	f.calls++
	f.parts = parts
	return f.reply, f.err
}

func TestParseEstimate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want food.NutritionEstimate
	}{
		{
			"clean",
			`{"name":"Kinoa Salatası","calories":321.6,"protein":9.04,"carbs":40.26,"fat":12}`,
			food.NutritionEstimate{Name: "Kinoa Salatası", Calories: 322, Protein: 9, Carbs: 40.3, Fat: 12},
		},
		{
			"fenced with missing name",
			"```json\n{\"calories\": 150, \"protein\": \"5,5\", \"carbs\": 20}\n```",
			food.NutritionEstimate{Name: DefaultName, Calories: 150, Protein: 5.5, Carbs: 20, Fat: 0},
		},
		{
			"prose and negative macro",
			`Tahminim şöyle: {"name": "Simit", "calories": 280, "protein": 9, "carbs": 55, "fat": -2} (yaklaşık)`,
			food.NutritionEstimate{Name: "Simit", Calories: 280, Protein: 9, Carbs: 55, Fat: 0},
		},
		{
			"skips object with non numeric calories",
			`{"name":"Z","calories":"abc"} ve {"name":"W","calories":90}`,
			food.NutritionEstimate{Name: "W", Calories: 90},
		},
		{
			"huge calories clamped",
			`{"name":"N","calories":1e30}`,
			food.NutritionEstimate{Name: "N", Calories: food.MaxCalories},
		},
		{
			"non numeric macro",
			`{"name": "Çorba", "calories": 120, "protein": "bilinmiyor"}`,
			food.NutritionEstimate{Name: "Çorba", Calories: 120},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEstimate(tt.raw)
			if err != nil {
				t.Fatalf("ParseEstimate: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseEstimateRejectsUnreadableResponse(t *testing.T) {
	long := strings.Repeat("x", 300)
	for _, raw := range []string{
		"Bu yemeği tanımıyorum.",
		`{"name": "Elma", "calories": "çok"}`,
		long,
	} {
		_, err := ParseEstimate(raw)
		var target *common.ResponseFormatError
		if !common.IsResponseFormatError(err) {
			t.Errorf("ParseEstimate(%.20q) err = %v, want response format error", raw, err)
			continue
		}
		target = err.(*common.ResponseFormatError)
		if len([]rune(target.Excerpt)) > 100 {
			t.Errorf("excerpt too long: %d runes", len([]rune(target.Excerpt)))
		}
	}
}

func TestEstimateTextSendsPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: `{"name":"Mantı","calories":450,"protein":18,"carbs":50,"fat":19}`}
	e := New(gen)

	got, err := e.EstimateText(context.Background(), `1 porsiyon "ev" mantısı`)
	if err != nil {
		t.Fatalf("EstimateText: %v", err)
	}
	if got.Calories != 450 || got.Name != "Mantı" {
		t.Errorf("unexpected estimate %+v", got)
	}
	if len(gen.parts) != 1 || !strings.Contains(gen.parts[0].Text, "1 porsiyon 'ev' mantısı") {
		t.Errorf("prompt parts = %+v", gen.parts)
	}
}

func TestEstimateImageAttachesInlineData(t *testing.T) {
	gen := &fakeGenerator{reply: `{"name":"Menemen","calories":250,"protein":12,"carbs":8,"fat":18}`}
	e := New(gen)

	if _, err := e.EstimateImage(context.Background(), "aGVsbG8=", ""); err != nil {
		t.Fatalf("EstimateImage: %v", err)
	}
	if len(gen.parts) != 2 || gen.parts[1].InlineData == nil {
		t.Fatalf("parts = %+v", gen.parts)
	}
	if gen.parts[1].InlineData.MimeType != "image/jpeg" || gen.parts[1].InlineData.Data != "aGVsbG8=" {
		t.Errorf("inline data = %+v", gen.parts[1].InlineData)
	}
}

func TestEstimatePropagatesGeneratorErrors(t *testing.T) {
	gen := &fakeGenerator{err: common.NewConfigurationError("anahtar yok")}
	e := New(gen)

	if _, err := e.EstimateText(context.Background(), "elma"); !common.IsConfigurationError(err) {
		t.Errorf("err = %v, want configuration error", err)
	}
	if _, err := e.EstimateText(context.Background(), "  "); !common.IsValidationError(err) {
		t.Errorf("empty description err = %v, want validation error", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}
