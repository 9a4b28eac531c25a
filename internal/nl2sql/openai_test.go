package nl2sql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStripSQLFences(t *testing.T) {
	got := StripSQLFences("```sql\nSELECT 1;\n```")
	if got != "SELECT 1;" {
		t.Fatalf("StripSQLFences() = %q", got)
	}
}

func TestStripSQLFencesWithoutLanguageTag(t *testing.T) {
	got := StripSQLFences("```\nSELECT COUNT(*) FROM videos\n```")
	if got != "SELECT COUNT(*) FROM videos" {
		t.Fatalf("StripSQLFences() = %q", got)
	}
}

func TestStripSQLFencesLeavesBareSQLAlone(t *testing.T) {
	got := StripSQLFences("  SELECT 1  ")
	if got != "SELECT 1" {
		t.Fatalf("StripSQLFences() = %q", got)
	}
}

func TestTranslateSendsPromptAndStripsFences(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "```sql\nSELECT COUNT(*) FROM videos\n```"}},
			},
		})
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}

	sql, err := translator.Translate(context.Background(), "Сколько всего видео?")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if sql != "SELECT COUNT(*) FROM videos" {
		t.Fatalf("Translate() = %q", sql)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", captured.Model)
	}
	if captured.Temperature != 0.1 {
		t.Fatalf("temperature = %v", captured.Temperature)
	}
	if captured.MaxTokens != 500 {
		t.Fatalf("max_tokens = %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "video_snapshots") {
		t.Fatal("user prompt should carry the schema description")
	}
	if !strings.Contains(captured.Messages[1].Content, "Сколько всего видео?") {
		t.Fatal("user prompt should carry the question")
	}
}

func TestTranslateFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}
	if _, err := translator.Translate(context.Background(), "вопрос"); err == nil {
		t.Fatal("expected error for HTTP 502")
	}
}

func TestTranslateFailsOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}
	if _, err := translator.Translate(context.Background(), "вопрос"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewOpenAITranslatorRequiresCredentials(t *testing.T) {
	if _, err := NewOpenAITranslator(OpenAIConfig{APIKey: "key"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewOpenAITranslator(OpenAIConfig{BaseURL: "https://api.openai.com"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
