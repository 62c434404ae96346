package image

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// Photo 驗證後的照片，Data 為不含前綴的 base64
type Photo struct {
	Data     string
	MimeType string
	Width    int
	Height   int
	Size     int
}

// Service 照片驗證服務
type Service struct {
	maxSizeBytes int64
}

// NewService 創建新的照片驗證服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{maxSizeBytes: maxSizeBytes}
}

// Prepare 接受 data URI 或純 base64，檢查大小與格式後回傳可送給模型的資料。
// MIME 類型以實際解碼出的格式為準。
func (s *Service) Prepare(data, mimeType string) (Photo, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Photo{}, common.ErrInvalidImageFormat
	}

	// 解析 data URI
	if strings.HasPrefix(data, "data:") {
		header, payload, ok := strings.Cut(data, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return Photo{}, common.ErrInvalidImageFormat
		}
		mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		data = payload
	}

	// 解碼 base64 數據
	decoded, err := decodeBase64(data)
	if err != nil {
		common.LogImageProcessing("warn", "base64 çözülemedi", zap.Error(err))
		return Photo{}, common.ErrInvalidImageFormat
	}

	// 檢查文件大小
	if int64(len(decoded)) > s.maxSizeBytes {
		common.LogImageProcessing("warn", "fotoğraf çok büyük",
			zap.Int("size", len(decoded)),
			zap.Int64("max_size", s.maxSizeBytes),
		)
		return Photo{}, common.ErrInvalidImageSize
	}

	// 只讀取標頭即可確認格式
	cfg, format, err := image.DecodeConfig(bytes.NewReader(decoded))
	if err != nil {
		common.LogImageProcessing("warn", "fotoğraf çözülemedi",
			zap.String("claimed_mime", mimeType),
			zap.Error(err),
		)
		return Photo{}, common.ErrInvalidImageType
	}
	if !isSupportedFormat(format) {
		return Photo{}, common.ErrInvalidImageType
	}

	photo := Photo{
		Data:     base64.StdEncoding.EncodeToString(decoded),
		MimeType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     len(decoded),
	}

	common.LogImageProcessing("info", "fotoğraf hazır",
		zap.String("mime_type", photo.MimeType),
		zap.Int("width", photo.Width),
		zap.Int("height", photo.Height),
		zap.Int("size", photo.Size),
	)
	return photo, nil
}

func decodeBase64(data string) ([]byte, error) {
	data = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, data)

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
