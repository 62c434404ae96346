package training

import (
	"context"
	"math"
	"sort"
	"strings"

	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

// 無法產生建議時回傳的訊息
const (
	MessageEmpty        = "Programınıza hareket ekleyin ve antrenman kaydedin."
	MessageInsufficient = "Antrenman kayıtlarınız henüz analiz için yeterli değil."
)

// recentLogLimit 每個動作送給 AI 的最近記錄數
const recentLogLimit = 5

// TextGenerator 由 gemini.Generator 實作
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Engine 漸進超負荷建議引擎。AI 失敗時改用固定規則。
type Engine struct {
	gen TextGenerator
}

// NewEngine 創建建議引擎，gen 為 nil 時只使用規則
func NewEngine(gen TextGenerator) *Engine {
	return &Engine{gen: gen}
}

type exerciseGroup struct {
	exercise ProgramExercise
	logs     []ExerciseLogRecord // 由新到舊
}

// Recommend 依計畫動作與訓練記錄產生下次訓練建議
func (e *Engine) Recommend(ctx context.Context, program []ProgramExercise, logs []ExerciseLogRecord) Result {
	if len(program) == 0 || len(logs) == 0 {
		return Result{Source: SourceNone, Message: MessageEmpty, Recommendations: []Recommendation{}}
	}

	groups := groupLogs(program, logs)
	if len(groups) == 0 {
		return Result{Source: SourceNone, Message: MessageInsufficient, Recommendations: []Recommendation{}}
	}

	if e.gen != nil {
		recs, err := e.recommendWithAI(ctx, groups)
		if err == nil {
			return Result{Source: SourceAI, Recommendations: recs}
		}
		common.LogWarn("AI recommendation failed, using rules",
			zap.Int("exercises", len(groups)),
			zap.Error(err),
		)
	}

	recs := make([]Recommendation, 0, len(groups))
	for _, g := range groups {
		recs = append(recs, ruleRecommendation(g.exercise.Exercise, g.logs[0]))
	}
	return Result{Source: SourceRules, Recommendations: recs}
}

// groupLogs 依計畫順序分組，同日期時後寫入的記錄排前面
func groupLogs(program []ProgramExercise, logs []ExerciseLogRecord) []exerciseGroup {
	ordered := make([]ExerciseLogRecord, len(logs))
	for i, l := range logs {
		ordered[len(logs)-1-i] = l
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date > ordered[j].Date
	})

	groups := make([]exerciseGroup, 0, len(program))
	for _, ex := range program {
		var recent []ExerciseLogRecord
		for _, l := range ordered {
			if l.Exercise != ex.Exercise {
				continue
			}
			recent = append(recent, l)
			if len(recent) == recentLogLimit {
				break
			}
		}
		if len(recent) == 0 {
			continue
		}
		groups = append(groups, exerciseGroup{exercise: ex, logs: recent})
	}
	return groups
}

func (e *Engine) recommendWithAI(ctx context.Context, groups []exerciseGroup) ([]Recommendation, error) {
	history := make([]exerciseHistory, 0, len(groups))
	for _, g := range groups {
		h := exerciseHistory{
			Exercise:   g.exercise.Exercise,
			TargetSets: g.exercise.TargetSets,
			TargetReps: g.exercise.TargetReps,
			RecentLogs: make([]historyLog, 0, len(g.logs)),
		}
		for _, l := range g.logs {
			h.RecentLogs = append(h.RecentLogs, historyLog{Date: l.Date, Weight: l.Weight, Sets: l.Sets, Reps: l.Reps, RPE: l.RPE})
		}
		history = append(history, h)
	}

	prompt, err := buildPrompt(history)
	if err != nil {
		return nil, err
	}

	raw, err := e.gen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	items, err := common.ExtractJSONArray(raw, "recommendations")
	if err != nil {
		return nil, common.NewResponseFormatError("AI yanıtı okunamadı", raw)
	}

	recs := parseRecommendations(items, groups)
	if len(recs) == 0 {
		return nil, common.NewResponseFormatError("Tavsiye oluşturulamadı", raw)
	}
	return recs, nil
}

// parseRecommendations 丟棄未知動作、重複動作與無效 action 的項目
func parseRecommendations(items []interface{}, groups []exerciseGroup) []Recommendation {
	byName := make(map[string]exerciseGroup, len(groups))
	for _, g := range groups {
		if _, ok := byName[g.exercise.Exercise]; !ok {
			byName[g.exercise.Exercise] = g
		}
	}

	seen := make(map[string]bool)
	recs := make([]Recommendation, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := strings.TrimSpace(stringField(obj, "exercise"))
		g, ok := byName[name]
		if !ok || seen[name] {
			continue
		}
		action := Action(strings.ToLower(strings.TrimSpace(stringField(obj, "action"))))
		if !action.valid() {
			continue
		}
		seen[name] = true

		last := g.logs[0]
		rec := Recommendation{
			Exercise:        name,
			Action:          action,
			CurrentWeight:   last.Weight,
			SuggestedWeight: stepWeight(last.Weight, action),
			SuggestedSets:   last.Sets,
			SuggestedReps:   last.Reps,
			LastRPE:         last.RPE,
			Suggestion:      strings.TrimSpace(stringField(obj, "suggestion")),
			Rationale:       strings.TrimSpace(stringField(obj, "reasoning")),
		}
		if w, ok := common.NumberValue(obj["suggestedWeight"]); ok && w >= 0 && !math.IsInf(w, 0) {
			rec.SuggestedWeight = w
		}
		if n, ok := common.NumberValue(obj["suggestedSets"]); ok && n >= 1 {
			rec.SuggestedSets = int(n)
		}
		if n, ok := common.NumberValue(obj["suggestedReps"]); ok && n >= 1 {
			rec.SuggestedReps = int(n)
		}
		if rec.Rationale == "" {
			rec.Rationale = strings.TrimSpace(stringField(obj, "rationale"))
		}
		if rec.Suggestion == "" {
			rec.Suggestion = suggestionText(action, last, rec.SuggestedWeight)
		}
		recs = append(recs, rec)
	}
	return recs
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}
