package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Transport 與生成式 API 溝通的介面，測試時以假實作替換
type Transport interface {
	GenerateContent(ctx context.Context, apiKey string, c Candidate, req *GenerateRequest) (*GenerateResponse, error)
	ListModels(ctx context.Context, apiKey, version string) ([]Model, error)
}

// Compile-time interface check.
var _ Transport = (*Client)(nil)

// maxModelPages 模型清單最多讀取的頁數
const maxModelPages = 5

// Client 以 resty 呼叫 REST API，金鑰放在查詢參數
type Client struct {
	client *resty.Client
}

// NewClient 創建 API 客戶端
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Client{client: client}
}

// GenerateContent 呼叫 /{version}/models/{model}:generateContent
func (c *Client) GenerateContent(ctx context.Context, apiKey string, cand Candidate, req *GenerateRequest) (*GenerateResponse, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(req).
		Post(fmt.Sprintf("/%s/models/%s:generateContent", cand.Version, cand.Model))
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", cand, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, apiError(resp)
	}

	var result GenerateResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse response from %s: %w", cand, err)
	}
	return &result, nil
}

// ListModels 列出指定 API 版本可用的模型
func (c *Client) ListModels(ctx context.Context, apiKey, version string) ([]Model, error) {
	var models []Model
	pageToken := ""

	for page := 0; page < maxModelPages; page++ {
		req := c.client.R().
			SetContext(ctx).
			SetQueryParam("key", apiKey).
			SetQueryParam("pageSize", "1000")
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}

		resp, err := req.Get(fmt.Sprintf("/%s/models", version))
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, apiError(resp)
		}

		var result listModelsResponse
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return nil, fmt.Errorf("failed to parse model list: %w", err)
		}
		models = append(models, result.Models...)

		if result.NextPageToken == "" {
			break
		}
		pageToken = result.NextPageToken
	}

	return models, nil
}

// apiError 盡量取出 API 回傳的錯誤訊息
func apiError(resp *resty.Response) error {
	var body errorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error.Message != "" {
		return &APIError{StatusCode: resp.StatusCode(), Message: body.Error.Message}
	}
	return &APIError{StatusCode: resp.StatusCode()}
}
