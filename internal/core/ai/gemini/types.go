package gemini

import (
	"fmt"
	"strings"
)

// Candidate 模型階梯上的一個 (API 版本, 模型) 組合
type Candidate struct {
	Version string
	Model   string
}

func (c Candidate) String() string {
	return c.Version + "/" + c.Model
}

// ParseCandidates 解析 "version/model" 清單，保留順序
func ParseCandidates(specs []string) ([]Candidate, error) {
	out := make([]Candidate, 0, len(specs))
	for _, s := range specs {
		version, model, ok := strings.Cut(strings.TrimSpace(s), "/")
		if !ok || version == "" || model == "" {
			return nil, fmt.Errorf("invalid model %q, expected version/model", s)
		}
		out = append(out, Candidate{Version: version, Model: strings.TrimPrefix(model, "models/")})
	}
	return out, nil
}

// GenerateRequest generateContent 請求
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content 一則訊息
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part 訊息的一部分：文字或內嵌圖片
type Part struct {
	Text       string      `json:"text,omitempty"`
	Thought    bool        `json:"thought,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData base64 編碼的內嵌資料
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// GenerationConfig 生成參數
type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

// GenerateResponse generateContent 回應
type GenerateResponse struct {
	Candidates []ResponseCandidate `json:"candidates"`
}

// ResponseCandidate 回應中的一個候選答案
type ResponseCandidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// Text 取出第一個候選答案的文字。
// 優先使用非思考部分；全部都是思考部分時才退回使用所有文字。
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	parts := r.Candidates[0].Content.Parts

	var sb strings.Builder
	for _, p := range parts {
		if p.Text != "" && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() > 0 {
		return sb.String()
	}
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Model 模型清單中的一筆
type Model struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// ID 去除 "models/" 前綴的模型名稱
func (m Model) ID() string {
	return strings.TrimPrefix(m.Name, "models/")
}

// Supports 是否支援指定的生成方法
func (m Model) Supports(method string) bool {
	for _, s := range m.SupportedGenerationMethods {
		if s == method {
			return true
		}
	}
	return false
}

type listModelsResponse struct {
	Models        []Model `json:"models"`
	NextPageToken string  `json:"nextPageToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError 非 2xx 的 HTTP 回應
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API hatası: %d", e.StatusCode)
}
