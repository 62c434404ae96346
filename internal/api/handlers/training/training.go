package training

import (
	"net/http"
	"strconv"
	"strings"

	"fittrack/internal/api/handlers"
	recordService "fittrack/internal/core/records"
	trainingService "fittrack/internal/core/training"
	"fittrack/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecommendationsResponse 目前計畫的下次訓練建議
type RecommendationsResponse struct {
	ProgramID   string `json:"programId"`
	ProgramName string `json:"programName"`
	trainingService.Result
}

// Handler 訓練建議處理程序
type Handler struct {
	engine *trainingService.Engine
	repo   *recordService.Repository
}

// NewHandler 創建新的訓練建議處理程序
func NewHandler(engine *trainingService.Engine, repo *recordService.Repository) *Handler {
	return &Handler{engine: engine, repo: repo}
}

// HandleRecommendations 處理 GET /training/recommendations
func (h *Handler) HandleRecommendations(c *gin.Context) {
	ctx := c.Request.Context()

	program, err := h.repo.CurrentProgram(ctx)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	result := h.engine.Recommend(ctx, program.Exercises, h.repo.ProgramLogs(ctx))

	common.LogInfo("訓練建議完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("program", program.Name),
		zap.String("source", string(result.Source)),
		zap.Int("count", len(result.Recommendations)),
	)

	c.JSON(http.StatusOK, RecommendationsResponse{
		ProgramID:   program.ID,
		ProgramName: program.Name,
		Result:      result,
	})
}

// HandleRPE 處理 GET /training/rpe?value=
func (h *Handler) HandleRPE(c *gin.Context) {
	raw := strings.ReplaceAll(c.Query("value"), ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 1 || value > 10 {
		handlers.RespondError(c, common.NewValidationError("RPE 1 ile 10 arasında olmalı"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": value, "description": trainingService.DescribeRPE(value)})
}
