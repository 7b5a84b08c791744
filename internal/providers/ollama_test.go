package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaBackend_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("unexpected method: %s", r.Method)
		}

		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-vl" {
			t.Errorf("model = %q, want test-vl", req.Model)
		}
		if len(req.Images) != 1 {
			t.Errorf("images = %d, want 1", len(req.Images))
		}
		if req.Stream {
			t.Error("stream should be false")
		}

		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "# Page\n\nExtracted text."})
	}))
	defer server.Close()

	backend := NewOllamaBackend(OllamaConfig{
		BaseURL:     server.URL,
		VisionModel: "test-vl",
	})

	text, err := backend.Extract(context.Background(), []byte("fake png"), "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "# Page\n\nExtracted text." {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestOllamaBackend_Select(t *testing.T) {
	t.Run("valid reply", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ollamaGenerateResponse{
				Response: `{"pick": "B", "text": "candidate b text"}`,
			})
		}))
		defer server.Close()

		backend := NewOllamaBackend(OllamaConfig{BaseURL: server.URL})
		adj, err := backend.Select(context.Background(), "before", "candidate a text", "candidate b text", "after")
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if adj.Pick != "B" {
			t.Errorf("Pick = %q, want B", adj.Pick)
		}
		if adj.Text != "candidate b text" {
			t.Errorf("Text = %q", adj.Text)
		}
	})

	t.Run("fenced reply", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ollamaGenerateResponse{
				Response: "```json\n{\"pick\": \"A\"}\n```",
			})
		}))
		defer server.Close()

		backend := NewOllamaBackend(OllamaConfig{BaseURL: server.URL})
		adj, err := backend.Select(context.Background(), "", "text a", "text b", "")
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if adj.Pick != "A" {
			t.Errorf("Pick = %q, want A", adj.Pick)
		}
		if adj.Text != "text a" {
			t.Errorf("empty text should default to picked candidate, got %q", adj.Text)
		}
	})

	t.Run("malformed reply is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "not json at all"})
		}))
		defer server.Close()

		backend := NewOllamaBackend(OllamaConfig{BaseURL: server.URL})
		if _, err := backend.Select(context.Background(), "", "a", "b", ""); err == nil {
			t.Fatal("expected error for malformed reply")
		}
	})

	t.Run("invalid pick rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(ollamaGenerateResponse{
				Response: `{"pick": "C", "text": "whatever"}`,
			})
		}))
		defer server.Close()

		backend := NewOllamaBackend(OllamaConfig{BaseURL: server.URL})
		if _, err := backend.Select(context.Background(), "", "a", "b", ""); err == nil {
			t.Fatal("expected error for pick outside {A,B}")
		}
	})

	t.Run("server error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		backend := NewOllamaBackend(OllamaConfig{BaseURL: server.URL, MaxRetries: 1})
		if _, err := backend.Select(context.Background(), "", "a", "b", ""); err == nil {
			t.Fatal("expected error for HTTP 500")
		}
	})
}

func TestParseAdjudication_ProseWrapped(t *testing.T) {
	adj, err := parseAdjudication(`Sure! Here is my selection: {"pick": "B", "text": "chosen"} as requested.`, "a", "b")
	if err != nil {
		t.Fatalf("parseAdjudication() error = %v", err)
	}
	if adj.Pick != "B" || adj.Text != "chosen" {
		t.Errorf("got %+v", adj)
	}
}
