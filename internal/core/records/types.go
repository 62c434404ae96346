package records

import (
	"time"

	"fittrack/internal/core/training"
)

// Meal 一筆餐點記錄
type Meal struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	MealTime string  `json:"mealTime"`
}

// Workout 一筆重量訓練記錄
type Workout struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
}

// PersonalRecord 單一動作的最大重量
type PersonalRecord struct {
	Weight float64 `json:"weight"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Date   string  `json:"date"`
}

// Profile 使用者基本資料
type Profile struct {
	Height      float64 `json:"height"`
	Age         int     `json:"age"`
	BodyWeight  float64 `json:"bodyWeight"`
	CalorieGoal int     `json:"calorieGoal"`
}

// DefaultProfile 尚未設定時的預設值
var DefaultProfile = Profile{Height: 175, Age: 25, BodyWeight: 75, CalorieGoal: 2000}

// Program 訓練計畫
type Program struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Exercises []training.ProgramExercise `json:"exercises"`
}

// Programs 所有計畫與目前選取的計畫
type Programs struct {
	CurrentID string    `json:"currentId"`
	Items     []Program `json:"items"`
}

// Current 回傳目前計畫，找不到時回傳第一個
func (p Programs) Current() Program {
	for _, item := range p.Items {
		if item.ID == p.CurrentID {
			return item
		}
	}
	if len(p.Items) == 0 {
		return Program{}
	}
	return p.Items[0]
}

func (p *Programs) index(id string) int {
	for i, item := range p.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Export 匯出內容
type Export struct {
	Workouts   []Workout `json:"workouts"`
	Meals      []Meal    `json:"meals"`
	Profile    Profile   `json:"profile"`
	ExportedAt time.Time `json:"exportedAt"`
}
