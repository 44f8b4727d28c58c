package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if client := NewClient(Config{APIKey: "   "}); client != nil {
		t.Fatalf("expected nil client for blank api key")
	}
	if client := NewClient(Config{APIKey: "sk-test"}); client == nil {
		t.Fatalf("expected client for configured api key")
	}
}

func TestCheckModel(t *testing.T) {
	t.Parallel()

	var gotAuth, gotReferer, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")

		switch r.URL.Path {
		case "/models/openai/gpt-4o-mini":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":       "openai/gpt-4o-mini",
				"object":   "model",
				"created":  0,
				"owned_by": "openai",
			})
		default:
			http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:  srv.URL,
		APIKey:   "sk-test",
		SiteURL:  "https://clinic.example",
		SiteName: "clinic",
	})
	if client == nil {
		t.Fatalf("client not constructed")
	}

	ctx := context.Background()
	if err := CheckModel(ctx, client, "openai/gpt-4o-mini"); err != nil {
		t.Fatalf("CheckModel: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotReferer != "https://clinic.example" || gotTitle != "clinic" {
		t.Fatalf("attribution headers = %q / %q", gotReferer, gotTitle)
	}

	if err := CheckModel(ctx, client, "openai/unknown-model"); err == nil {
		t.Fatalf("expected error for unknown model")
	}
	if err := CheckModel(ctx, nil, "openai/gpt-4o-mini"); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := CheckModel(ctx, client, "  "); err == nil {
		t.Fatalf("expected error for blank model name")
	}
}
