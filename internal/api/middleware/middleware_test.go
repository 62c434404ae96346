package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fittrack/internal/infrastructure/config"
	"fittrack/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterRefillsFractionally(t *testing.T) {
	rl := NewRateLimiter(2, 2*time.Second)
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst should be allowed")
	}
	if rl.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("clients must not share buckets")
	}

	// 每 500ms 累積半個令牌
	now = now.Add(500 * time.Millisecond)
	if rl.Allow("a") {
		t.Fatal("half a token is not enough")
	}
	now = now.Add(500 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatal("token should have refilled after one second")
	}
}

func TestDeduplicationRejectsRepeatedPost(t *testing.T) {
	r := gin.New()
	r.Use(Deduplication(&config.Config{DedupWindow: time.Minute}))
	r.POST("/meals", func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func(body, formID string) int {
		req := httptest.NewRequest(http.MethodPost, "/meals", strings.NewReader(body))
		if formID != "" {
			req.Header.Set("X-Form-ID", formID)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := send(`{"name":"Elma"}`, ""); got != http.StatusCreated {
		t.Fatalf("first request = %d", got)
	}
	if got := send(`{"name":"Elma"}`, ""); got != http.StatusTooManyRequests {
		t.Errorf("duplicate request = %d, want 429", got)
	}
	if got := send(`{"name":"Armut"}`, ""); got != http.StatusCreated {
		t.Errorf("different body = %d", got)
	}
	if got := send(`{"name":"Elma"}`, "form-2"); got != http.StatusCreated {
		t.Errorf("different form = %d", got)
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestDeduplicationRejectsOversizedChunkedBody(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.Use(Deduplication(&config.Config{DedupWindow: time.Minute}))
	handled := false
	r.POST("/meals", func(c *gin.Context) {
		handled = true
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/meals", strings.NewReader(`{"name":"Mercimek Çorbası"}`))
	req.ContentLength = -1 // chunked: 長度未知，只能在讀取時發現超出上限
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
	if !strings.Contains(w.Body.String(), common.ErrCodeRequestTooLarge) {
		t.Errorf("body = %s", w.Body.String())
	}
	if handled {
		t.Error("handler ran with a truncated body")
	}
}
