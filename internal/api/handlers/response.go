package handlers

import (
	"errors"

	"fittrack/internal/infrastructure/store"
	"fittrack/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將錯誤轉換為統一的錯誤回應；詳細信息只在開發模式顯示
func RespondError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		err = common.ErrNotFound
	}
	apiErr := common.HTTPError(err)

	fields := []zap.Field{
		zap.String("code", apiErr.Code),
		zap.Int("status", apiErr.Status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	var format *common.ResponseFormatError
	if errors.As(err, &format) {
		fields = append(fields, zap.String("raw_excerpt", format.Excerpt))
	}
	if apiErr.Status >= 500 {
		common.LogError("Request failed", fields...)
	} else {
		common.LogWarn("Request rejected", fields...)
	}

	resp := common.ErrorResponse{Code: apiErr.Code, Message: apiErr.Message}
	if gin.Mode() == gin.DebugMode && apiErr.Err != nil {
		resp.Details = apiErr.Err.Error()
	}
	c.AbortWithStatusJSON(apiErr.Status, resp)
}

// BindJSON 解析請求體，失敗時回應 400
func BindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		RespondError(c, common.NewValidationError("Geçersiz istek: "+err.Error()))
		return false
	}
	return true
}
