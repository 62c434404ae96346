package common

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewValidationError("boş"), http.StatusBadRequest},
		{NewConfigurationError("anahtar yok"), http.StatusPreconditionFailed},
		{NewResponseFormatError("okunamadı", "garbage"), http.StatusBadGateway},
		{NewNetworkError("overloaded", nil), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", NewValidationError("x")), http.StatusBadRequest},
		{ErrSuperseded, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPError(tt.err); got.Status != tt.status {
			t.Errorf("HTTPError(%v).Status = %d, want %d", tt.err, got.Status, tt.status)
		}
	}

	if HTTPError(nil) != nil {
		t.Error("HTTPError(nil) should be nil")
	}
}

func TestResponseFormatErrorExcerpt(t *testing.T) {
	raw := ""
	for i := 0; i < 150; i++ {
		raw += "ş"
	}
	err := NewResponseFormatError("AI yanıtı okunamadı", raw).(*ResponseFormatError)
	if n := len([]rune(err.Excerpt)); n != 100 {
		t.Errorf("excerpt has %d runes, want 100", n)
	}
}

func TestHTTPErrorKeepsResponseExcerpt(t *testing.T) {
	err := fmt.Errorf("estimate: %w", NewResponseFormatError("AI yanıtı okunamadı", "Bu bir yemek değil"))
	got := HTTPError(err)
	if got.Code != ErrCodeBadAIResponse {
		t.Errorf("code = %s", got.Code)
	}
	if got.Message != "AI yanıtı okunamadı: Bu bir yemek değil" {
		t.Errorf("message = %q", got.Message)
	}
}
