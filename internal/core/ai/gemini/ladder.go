package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fittrack/internal/infrastructure/config"
	"fittrack/internal/pkg/common"

	"go.uber.org/zap"
)

const generateContentMethod = "generateContent"

// Ladder 依序嘗試設定中的模型，全部失敗後查詢模型清單再試。
// 嘗試是循序的，第一個 HTTP 成功即停止。
type Ladder struct {
	transport        Transport
	rungs            []Candidate
	discoveryVersion string
	familyMarker     string
	attemptTimeout   time.Duration
}

// NewLadder 依設定建立模型階梯
func NewLadder(transport Transport, cfg config.GeminiConfig) (*Ladder, error) {
	rungs, err := ParseCandidates(cfg.Models)
	if err != nil {
		return nil, err
	}
	if len(rungs) == 0 {
		return nil, fmt.Errorf("model ladder is empty")
	}

	timeout := cfg.AttemptTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Ladder{
		transport:        transport,
		rungs:            rungs,
		discoveryVersion: cfg.DiscoveryVersion,
		familyMarker:     cfg.FamilyMarker,
		attemptTimeout:   timeout,
	}, nil
}

// Generate 回傳第一個成功的回應與使用的模型。
// 全部失敗時回傳 NetworkError，訊息為最後一次記錄的錯誤。
func (l *Ladder) Generate(ctx context.Context, apiKey string, req *GenerateRequest) (*GenerateResponse, Candidate, error) {
	tried := make(map[Candidate]bool, len(l.rungs))
	var lastErr error

	for _, c := range l.rungs {
		if err := ctx.Err(); err != nil {
			return nil, Candidate{}, common.NewNetworkError(err.Error(), err)
		}
		tried[c] = true
		resp, err := l.attempt(ctx, apiKey, c, req)
		if err == nil {
			return resp, c, nil
		}
		lastErr = err
	}

	if l.discoveryVersion != "" {
		discovered, err := l.discover(ctx, apiKey)
		if err != nil {
			lastErr = err
		}
		for _, c := range discovered {
			if tried[c] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, Candidate{}, common.NewNetworkError(err.Error(), err)
			}
			tried[c] = true
			resp, err := l.attempt(ctx, apiKey, c, req)
			if err == nil {
				common.LogInfo("使用自動發現的模型", zap.String("model", c.String()))
				return resp, c, nil
			}
			lastErr = err
		}
	}

	if lastErr == nil {
		return nil, Candidate{}, common.NewNetworkError("no suitable model found", nil)
	}
	return nil, Candidate{}, common.NewNetworkError(lastErr.Error(), lastErr)
}

func (l *Ladder) attempt(ctx context.Context, apiKey string, c Candidate, req *GenerateRequest) (*GenerateResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, l.attemptTimeout)
	defer cancel()

	start := time.Now()
	resp, err := l.transport.GenerateContent(attemptCtx, apiKey, c, req)
	common.LogAICall(c.String(), time.Since(start), err)
	return resp, err
}

// discover 列出支援 generateContent 且名稱含有 familyMarker 的模型
func (l *Ladder) discover(ctx context.Context, apiKey string) ([]Candidate, error) {
	listCtx, cancel := context.WithTimeout(ctx, l.attemptTimeout)
	defer cancel()

	models, err := l.transport.ListModels(listCtx, apiKey, l.discoveryVersion)
	if err != nil {
		common.LogWarn("模型清單查詢失敗", zap.String("version", l.discoveryVersion), zap.Error(err))
		return nil, err
	}

	var out []Candidate
	for _, m := range models {
		id := m.ID()
		if !m.Supports(generateContentMethod) || !strings.Contains(id, l.familyMarker) {
			continue
		}
		out = append(out, Candidate{Version: l.discoveryVersion, Model: id})
	}

	common.LogDebug("模型清單查詢完成",
		zap.Int("total", len(models)),
		zap.Int("usable", len(out)),
	)
	return out, nil
}
