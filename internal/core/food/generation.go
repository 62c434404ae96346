package food

import (
	"sync"
	"time"
)

const (
	generationTTL        = time.Hour
	generationPruneAfter = 1024
)

type generation struct {
	token   uint64
	started time.Time
}

// Generations 追蹤每個表單最新一次請求。
// 較舊的請求完成時 IsCurrent 回傳 false，呼叫端應丟棄結果而不覆蓋表單。
type Generations struct {
	mu    sync.Mutex
	next  uint64
	forms map[string]generation
}

// NewGenerations 創建請求世代追蹤器
func NewGenerations() *Generations {
	return &Generations{forms: make(map[string]generation)}
}

// Begin 為表單開始新的請求，回傳本次請求的 token
func (g *Generations) Begin(formID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if len(g.forms) >= generationPruneAfter {
		for id, gen := range g.forms {
			if now.Sub(gen.started) > generationTTL {
				delete(g.forms, id)
			}
		}
	}

	g.next++
	g.forms[formID] = generation{token: g.next, started: now}
	return g.next
}

// IsCurrent 檢查 token 是否仍是表單最新的請求
func (g *Generations) IsCurrent(formID string, token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	gen, ok := g.forms[formID]
	return ok && gen.token == token
}
