package food

import (
	"net/http"
	"strings"

	"fittrack/internal/api/handlers"
	foodService "fittrack/internal/core/food"
	"fittrack/internal/core/image"
	"fittrack/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FormIDHeader 同一表單的連續請求以此標頭識別
const FormIDHeader = "X-Form-ID"

// EstimateRequest 文字估計請求，可直接給描述或以數量、單位、名稱組成
type EstimateRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Name        string  `json:"name,omitempty"`
}

// PhotoRequest 照片估計請求，image 可為 data URI 或 base64
type PhotoRequest struct {
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mime_type,omitempty"`
}

// EstimateResponse 估計結果與來源層級
type EstimateResponse struct {
	Query    string                        `json:"query,omitempty"`
	Estimate foodService.NutritionEstimate `json:"estimate"`
	Tier     foodService.Tier              `json:"tier"`
}

// UnitsResponse 食物名稱對應的份量單位
type UnitsResponse struct {
	Category foodService.PortionCategory `json:"category"`
	Units    []foodService.Unit          `json:"units"`
	Default  string                      `json:"default"`
}

// Handler 食物估計處理程序
type Handler struct {
	pipeline    *foodService.Pipeline
	portions    *foodService.PortionTable
	photos      *image.Service
	generations *foodService.Generations
}

// NewHandler 創建新的食物估計處理程序
func NewHandler(pipeline *foodService.Pipeline, portions *foodService.PortionTable, photos *image.Service, generations *foodService.Generations) *Handler {
	return &Handler{
		pipeline:    pipeline,
		portions:    portions,
		photos:      photos,
		generations: generations,
	}
}

// HandleEstimate 處理 POST /food/estimate
func (h *Handler) HandleEstimate(c *gin.Context) {
	var req EstimateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	query := strings.TrimSpace(req.Description)
	if query == "" && strings.TrimSpace(req.Name) != "" {
		query = foodService.PortionQuery(req.Amount, req.Unit, req.Name)
	}

	formID, token := h.begin(c)

	res, err := h.pipeline.Resolve(c.Request.Context(), query)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if !h.current(c, formID, token) {
		return
	}

	common.LogInfo("食物估計完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("query", query),
		zap.String("tier", string(res.Tier)),
		zap.Int("calories", res.Calories),
	)

	c.JSON(http.StatusOK, EstimateResponse{Query: query, Estimate: res.NutritionEstimate, Tier: res.Tier})
}

// HandlePhoto 處理 POST /food/photo
func (h *Handler) HandlePhoto(c *gin.Context) {
	var req PhotoRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	photo, err := h.photos.Prepare(req.Image, req.MimeType)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	formID, token := h.begin(c)

	res, err := h.pipeline.ResolveImage(c.Request.Context(), photo.Data, photo.MimeType)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if !h.current(c, formID, token) {
		return
	}

	common.LogInfo("照片估計完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("mime_type", photo.MimeType),
		zap.Int("calories", res.Calories),
	)

	c.JSON(http.StatusOK, EstimateResponse{Estimate: res.NutritionEstimate, Tier: res.Tier})
}

// HandleUnits 處理 GET /food/units?name=
func (h *Handler) HandleUnits(c *gin.Context) {
	category := h.portions.Classify(c.Query("name"))
	units := h.portions.UnitsFor(category)

	resp := UnitsResponse{Category: category, Units: units}
	if len(units) > 0 {
		resp.Default = units[0].Value
	}
	c.JSON(http.StatusOK, resp)
}

// begin 有表單識別碼時取得新的請求世代
func (h *Handler) begin(c *gin.Context) (string, uint64) {
	formID := strings.TrimSpace(c.GetHeader(FormIDHeader))
	if formID == "" || h.generations == nil {
		return "", 0
	}
	return formID, h.generations.Begin(formID)
}

// current 較新的請求已開始時回應 409，避免舊結果覆蓋表單
func (h *Handler) current(c *gin.Context, formID string, token uint64) bool {
	if formID == "" || h.generations.IsCurrent(formID, token) {
		return true
	}
	handlers.RespondError(c, common.ErrSuperseded)
	return false
}
