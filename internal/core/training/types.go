package training

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RPE 自覺用力程度，JSON 可為數字或數字字串
type RPE float64

// UnmarshalJSON 接受 8、8.5、"8"、"8,5"
func (r *RPE) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*r = RPE(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid rpe %s", string(data))
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		*r = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid rpe %q", s)
	}
	*r = RPE(n)
	return nil
}

// ExerciseLogRecord 一次訓練記錄
type ExerciseLogRecord struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	RPE      RPE     `json:"rpe"`
}

// ProgramExercise 計畫中的動作與目標組數
type ProgramExercise struct {
	ID         string `json:"id"`
	Exercise   string `json:"exercise"`
	TargetSets int    `json:"targetSets"`
	TargetReps int    `json:"targetReps"`
}

// Action 建議的調整方向
type Action string

const (
	ActionIncrease Action = "increase"
	ActionMaintain Action = "maintain"
	ActionDecrease Action = "decrease"
)

func (a Action) valid() bool {
	switch a {
	case ActionIncrease, ActionMaintain, ActionDecrease:
		return true
	}
	return false
}

// Recommendation 單一動作的下次訓練建議
type Recommendation struct {
	Exercise        string  `json:"exercise"`
	Action          Action  `json:"action"`
	CurrentWeight   float64 `json:"currentWeight"`
	SuggestedWeight float64 `json:"suggestedWeight"`
	SuggestedSets   int     `json:"suggestedSets"`
	SuggestedReps   int     `json:"suggestedReps"`
	LastRPE         RPE     `json:"lastRpe"`
	Suggestion      string  `json:"suggestion"`
	Rationale       string  `json:"rationale,omitempty"`
}

// Source 建議來源
type Source string

const (
	SourceAI    Source = "ai"
	SourceRules Source = "rules"
	SourceNone  Source = "none"
)

// Result 建議結果；Source 為 none 時只有 Message
type Result struct {
	Source          Source           `json:"source"`
	Message         string           `json:"message,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

// exerciseHistory 提供給 AI 的單一動作摘要，RecentLogs 由新到舊
type exerciseHistory struct {
	Exercise   string       `json:"exercise"`
	TargetSets int          `json:"targetSets"`
	TargetReps int          `json:"targetReps"`
	RecentLogs []historyLog `json:"recentLogs"`
}

type historyLog struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	RPE    RPE     `json:"rpe"`
}
