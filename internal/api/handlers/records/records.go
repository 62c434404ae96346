package records

import (
	"fmt"
	"net/http"

	"fittrack/internal/api/handlers"
	recordService "fittrack/internal/core/records"
	"fittrack/internal/core/training"
	"fittrack/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

// APIKeyRequest 設定 API 金鑰，空字串表示移除
type APIKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// ProgramRequest 新增計畫或切換目前計畫
type ProgramRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Handler 使用者資料處理程序
type Handler struct {
	repo *recordService.Repository
}

// NewHandler 創建新的使用者資料處理程序
func NewHandler(repo *recordService.Repository) *Handler {
	return &Handler{repo: repo}
}

// ListMeals 處理 GET /meals，可用 ?date= 過濾
func (h *Handler) ListMeals(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		c.JSON(http.StatusOK, gin.H{"meals": h.repo.MealsOn(c.Request.Context(), date)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": h.repo.Meals(c.Request.Context())})
}

// AddMeal 處理 POST /meals
func (h *Handler) AddMeal(c *gin.Context) {
	var meal recordService.Meal
	if !handlers.BindJSON(c, &meal) {
		return
	}
	saved, err := h.repo.AddMeal(c.Request.Context(), meal)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteMeal 處理 DELETE /meals/:id
func (h *Handler) DeleteMeal(c *gin.Context) {
	if err := h.repo.DeleteMeal(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWorkouts 處理 GET /workouts
func (h *Handler) ListWorkouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workouts": h.repo.Workouts(c.Request.Context())})
}

// AddWorkout 處理 POST /workouts，回應中標示是否為新的個人紀錄
func (h *Handler) AddWorkout(c *gin.Context) {
	var w recordService.Workout
	if !handlers.BindJSON(c, &w) {
		return
	}
	saved, isPR, err := h.repo.AddWorkout(c.Request.Context(), w)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	message := fmt.Sprintf("%s: %gkg × %d×%d ✓", saved.Exercise, saved.Weight, saved.Sets, saved.Reps)
	if isPR {
		message = fmt.Sprintf("🏆 Yeni PR! %s: %g kg", saved.Exercise, saved.Weight)
	}
	c.JSON(http.StatusCreated, gin.H{"workout": saved, "isPR": isPR, "message": message})
}

// DeleteWorkout 處理 DELETE /workouts/:id
func (h *Handler) DeleteWorkout(c *gin.Context) {
	if err := h.repo.DeleteWorkout(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PersonalRecords 處理 GET /workouts/records
func (h *Handler) PersonalRecords(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"records":   h.repo.PersonalRecords(ctx),
		"exercises": h.repo.UsedExercises(ctx),
	})
}

// GetProfile 處理 GET /profile
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.repo.Profile(c.Request.Context()))
}

// UpdateProfile 處理 PUT /profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var p recordService.Profile
	if !handlers.BindJSON(c, &p) {
		return
	}
	if err := h.repo.SetProfile(c.Request.Context(), p); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SetAPIKey 處理 PUT /settings/api-key，回應只含遮罩後的金鑰
func (h *Handler) SetAPIKey(c *gin.Context) {
	var req APIKeyRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := h.repo.SetAPIKey(ctx, req.APIKey); err != nil {
		handlers.RespondError(c, err)
		return
	}
	key := h.repo.APIKey(ctx)
	c.JSON(http.StatusOK, gin.H{"configured": key != "", "apiKey": maskedKey(key)})
}

func maskedKey(key string) string {
	if key == "" {
		return ""
	}
	return config.MaskAPIKey(key)
}

// ListPrograms 處理 GET /programs
func (h *Handler) ListPrograms(c *gin.Context) {
	data, err := h.repo.Programs(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currentId": data.CurrentID, "items": data.Items, "current": data.Current()})
}

// AddProgram 處理 POST /programs
func (h *Handler) AddProgram(c *gin.Context) {
	var req ProgramRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	p, err := h.repo.AddProgram(c.Request.Context(), req.Name)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// SwitchProgram 處理 PUT /programs/current
func (h *Handler) SwitchProgram(c *gin.Context) {
	var req ProgramRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := h.repo.SwitchProgram(ctx, req.ID); err != nil {
		handlers.RespondError(c, err)
		return
	}
	p, err := h.repo.CurrentProgram(ctx)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProgram 處理 DELETE /programs/:id
func (h *Handler) DeleteProgram(c *gin.Context) {
	if err := h.repo.DeleteProgram(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddProgramExercise 處理 POST /programs/exercises
func (h *Handler) AddProgramExercise(c *gin.Context) {
	var ex training.ProgramExercise
	if !handlers.BindJSON(c, &ex) {
		return
	}
	saved, err := h.repo.AddProgramExercise(c.Request.Context(), ex)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteProgramExercise 處理 DELETE /programs/exercises/:id
func (h *Handler) DeleteProgramExercise(c *gin.Context) {
	if err := h.repo.DeleteProgramExercise(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProgramLogs 處理 GET /programs/logs
func (h *Handler) ListProgramLogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logs": h.repo.ProgramLogs(c.Request.Context())})
}

// AddProgramLog 處理 POST /programs/logs
func (h *Handler) AddProgramLog(c *gin.Context) {
	var log training.ExerciseLogRecord
	if !handlers.BindJSON(c, &log) {
		return
	}
	saved, err := h.repo.AddProgramLog(c.Request.Context(), log)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteProgramLog 處理 DELETE /programs/logs/:id
func (h *Handler) DeleteProgramLog(c *gin.Context) {
	if err := h.repo.DeleteProgramLog(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export 處理 GET /data/export，以附件下載
func (h *Handler) Export(c *gin.Context) {
	exp := h.repo.Export(c.Request.Context())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="fittrack-yedek-%s.json"`, exp.ExportedAt.Format("2006-01-02")))
	c.IndentedJSON(http.StatusOK, exp)
}

// Reset 處理 DELETE /data
func (h *Handler) Reset(c *gin.Context) {
	if err := h.repo.Reset(c.Request.Context()); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tüm veriler silindi"})
}
