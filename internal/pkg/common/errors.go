package common

import (
	"errors"
	"net/http"
	"unicode/utf8"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Unwrap 支援 errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// ValidationError 表示驗證錯誤（例如空白的食物描述）
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// ConfigurationError 表示缺少必要設定，例如沒有 API 金鑰
type ConfigurationError struct {
	message string
}

func (e *ConfigurationError) Error() string {
	return e.message
}

// NewConfigurationError 創建設定錯誤
func NewConfigurationError(message string) error {
	return &ConfigurationError{message: message}
}

// IsConfigurationError 檢查是否為設定錯誤
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// NetworkError 表示所有模型嘗試都失敗，message 為最後一次記錄的錯誤
type NetworkError struct {
	message string
	Err     error
}

func (e *NetworkError) Error() string {
	return e.message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError 創建網路錯誤
func NewNetworkError(message string, err error) error {
	return &NetworkError{message: message, Err: err}
}

// IsNetworkError 檢查是否為網路錯誤
func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// ResponseFormatError 表示模型回應無法解析，Excerpt 保留原始文字前 100 個字元
type ResponseFormatError struct {
	message string
	Excerpt string
}

func (e *ResponseFormatError) Error() string {
	if e.Excerpt == "" {
		return e.message
	}
	return e.message + ": " + e.Excerpt
}

// NewResponseFormatError 創建回應格式錯誤
func NewResponseFormatError(message, raw string) error {
	return &ResponseFormatError{message: message, Excerpt: Excerpt(raw, 100)}
}

// IsResponseFormatError 檢查是否為回應格式錯誤
func IsResponseFormatError(err error) bool {
	var target *ResponseFormatError
	return errors.As(err, &target)
}

// Excerpt 截取前 n 個字元（以 rune 計算）
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// HTTPError 將領域錯誤轉換為 API 錯誤
func HTTPError(err error) *CustomError {
	var custom *CustomError
	var format *ResponseFormatError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &custom):
		return custom
	case IsValidationError(err):
		return NewError(ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest, err)
	case IsConfigurationError(err):
		return NewError(ErrCodeMissingAPIKey, err.Error(), http.StatusPreconditionFailed, err)
	case errors.As(err, &format):
		// 訊息帶有原始回應的前 100 個字元
		return NewError(ErrCodeBadAIResponse, format.Error(), http.StatusBadGateway, err)
	case IsNetworkError(err):
		return NewError(ErrCodeServiceUnavailable, err.Error(), http.StatusServiceUnavailable, err)
	default:
		return NewError(ErrCodeInternalError, "Sunucu hatası", http.StatusInternalServerError, err)
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"  // 413
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 業務錯誤
	ErrCodeMissingAPIKey = "MISSING_API_KEY"    // 412
	ErrCodeBadAIResponse = "BAD_AI_RESPONSE"    // 502
	ErrCodeSuperseded    = "REQUEST_SUPERSEDED" // 409
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "Geçersiz istek", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "Kayıt bulunamadı", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "Desteklenmeyen istek yöntemi", http.StatusMethodNotAllowed, nil)
	ErrRequestTooLarge  = NewError(ErrCodeRequestTooLarge, "İstek gövdesi çok büyük", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "Çok fazla istek, lütfen biraz bekleyin", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError  = NewError(ErrCodeInternalError, "Sunucu hatası", http.StatusInternalServerError, nil)
	ErrGatewayTimeout = NewError(ErrCodeGatewayTimeout, "İstek zaman aşımına uğradı", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrInvalidImageFormat = NewError("INVALID_IMAGE_FORMAT", "Geçersiz fotoğraf verisi", http.StatusBadRequest, nil)
	ErrInvalidImageSize   = NewError("INVALID_IMAGE_SIZE", "Fotoğraf boyutu sınırı aşıyor", http.StatusBadRequest, nil)
	ErrInvalidImageType   = NewError("INVALID_IMAGE_TYPE", "Desteklenmeyen fotoğraf türü", http.StatusBadRequest, nil)
	ErrSuperseded         = NewError(ErrCodeSuperseded, "Daha yeni bir istek var, sonuç yok sayıldı", http.StatusConflict, nil)
)
