package training

import (
	"fmt"
	"math"
)

// WeightStep 每次調整的重量（kg）
const WeightStep = 2.5

// ruleAction 依最近一次 RPE 決定方向：≤4 加重，≤7 維持，其餘減重
func ruleAction(rpe RPE) Action {
	switch {
	case rpe <= 4:
		return ActionIncrease
	case rpe <= 7:
		return ActionMaintain
	default:
		return ActionDecrease
	}
}

// stepWeight 依方向調整重量，減重不低於 0
func stepWeight(weight float64, action Action) float64 {
	switch action {
	case ActionIncrease:
		return weight + WeightStep
	case ActionDecrease:
		return math.Max(weight-WeightStep, 0)
	default:
		return weight
	}
}

func suggestionText(action Action, last ExerciseLogRecord, next float64) string {
	switch action {
	case ActionIncrease:
		return fmt.Sprintf("Ağırlık artır: %skg → %skg, %d×%d", formatKg(last.Weight), formatKg(next), last.Sets, last.Reps)
	case ActionDecrease:
		return fmt.Sprintf("Ağırlık düşür veya tekrar azalt: %skg → %skg", formatKg(last.Weight), formatKg(next))
	default:
		return fmt.Sprintf("Aynı ağırlıkla devam: %skg, %d×%d", formatKg(last.Weight), last.Sets, last.Reps)
	}
}

// ruleRecommendation 以最近一次記錄產生確定性建議，組數與次數不變
func ruleRecommendation(exercise string, last ExerciseLogRecord) Recommendation {
	action := ruleAction(last.RPE)
	next := stepWeight(last.Weight, action)
	return Recommendation{
		Exercise:        exercise,
		Action:          action,
		CurrentWeight:   last.Weight,
		SuggestedWeight: next,
		SuggestedSets:   last.Sets,
		SuggestedReps:   last.Reps,
		LastRPE:         last.RPE,
		Suggestion:      suggestionText(action, last, next),
	}
}
