package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "secret" {
			t.Errorf("key query = %q", r.URL.Query().Get("key"))
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("generation config = %+v", req.GenerationConfig)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 || req.Contents[0].Parts[1].InlineData == nil {
			t.Errorf("contents = %+v", req.Contents)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"calories\": 95}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	resp, err := c.GenerateContent(context.Background(), "secret", Candidate{Version: "v1beta", Model: "gemini-2.5-flash"}, &GenerateRequest{
		Contents: []Content{{Parts: []Part{
			{Text: "bu nedir"},
			{InlineData: &InlineData{MimeType: "image/jpeg", Data: "aGVsbG8="}},
		}}},
		GenerationConfig: &GenerationConfig{Temperature: 0.1, MaxOutputTokens: 2048, ResponseMimeType: "application/json"},
	})
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if resp.Text() != `{"calories": 95}` {
		t.Errorf("text = %q", resp.Text())
	}
}

func TestClientSurfacesAPIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.GenerateContent(context.Background(), "bad", Candidate{Version: "v1", Model: "gemini-2.0-flash"}, &GenerateRequest{})

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %T %v, want *APIError", err, err)
	}
	if apiErr.StatusCode != 400 || apiErr.Message != "API key not valid. Please pass a valid API key." {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestClientErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.GenerateContent(context.Background(), "k", Candidate{Version: "v1", Model: "m"}, &GenerateRequest{})
	if err == nil || err.Error() != "API hatası: 500" {
		t.Fatalf("err = %v", err)
	}
}

func TestClientListModelsFollowsPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"models":[{"name":"models/gemini-2.5-flash","supportedGenerationMethods":["generateContent"]}],"nextPageToken":"p2"}`))
			return
		}
		w.Write([]byte(`{"models":[{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	models, err := c.ListModels(context.Background(), "k", "v1beta")
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].ID() != "gemini-2.5-flash" || !models[0].Supports("generateContent") {
		t.Errorf("unexpected first model %+v", models[0])
	}
}

func TestParseCandidates(t *testing.T) {
	got, err := ParseCandidates([]string{"v1beta/gemini-2.5-flash", " v1/models/gemini-1.5-flash "})
	if err != nil {
		t.Fatalf("ParseCandidates: %v", err)
	}
	if got[0] != (Candidate{"v1beta", "gemini-2.5-flash"}) || got[1] != (Candidate{"v1", "gemini-1.5-flash"}) {
		t.Errorf("got %v", got)
	}

	if _, err := ParseCandidates([]string{"gemini-2.5-flash"}); err == nil {
		t.Error("expected error for missing version")
	}
}
