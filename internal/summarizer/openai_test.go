package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testOpenAI(baseURL string) *OpenAISummarizer {
	s := NewOpenAISummarizer("test-key", "gpt-4o-mini", "Summarize:", 4096)
	s.baseURL = baseURL
	return s
}

func TestOpenAISummarize(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"content":"Summary: a quiet day."}}]}`)
	}))
	defer server.Close()

	s := testOpenAI(server.URL)
	got, err := s.Summarize(context.Background(), "2025-03-10T12:00:00Z alice: hello")
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if got != "Summary: a quiet day." {
		t.Errorf("Summarize = %q", got)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "Summarize:" {
		t.Errorf("system message = %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" || !strings.Contains(gotReq.Messages[1].Content, "alice") {
		t.Errorf("user message = %+v", gotReq.Messages[1])
	}
}

func TestOpenAISummarizeEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer server.Close()

	s := testOpenAI(server.URL)
	_, err := s.Summarize(context.Background(), "transcript")
	if err == nil {
		t.Fatal("Expected error for empty choices")
	}
	if !errors.Is(err, ErrNoCompletion) {
		t.Errorf("error = %v, want ErrNoCompletion", err)
	}
}

func TestOpenAISummarizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"bad key"}}`)
	}))
	defer server.Close()

	s := testOpenAI(server.URL)
	_, err := s.Summarize(context.Background(), "transcript")
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestOpenAISummarizeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	s := testOpenAI(server.URL)
	if _, err := s.Summarize(context.Background(), "transcript"); err == nil {
		t.Fatal("Expected transport error")
	}
}

func TestNewRequiresSecret(t *testing.T) {
	t.Setenv("OPEN_AI_SECRET", "")
	cfg := testConfig("openai")
	if _, err := New(cfg); err == nil {
		t.Fatal("Expected error when OPEN_AI_SECRET is unset")
	}

	t.Setenv("OPEN_AI_SECRET", "sk-test")
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := s.(*OpenAISummarizer); !ok {
		t.Errorf("New returned %T, want *OpenAISummarizer", s)
	}
}

func TestNewGeminiProvider(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test")
	s, err := New(testConfig("gemini"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := s.(*GeminiSummarizer); !ok {
		t.Errorf("New returned %T, want *GeminiSummarizer", s)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(testConfig("cohere")); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}
