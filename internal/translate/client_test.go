package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientTranslateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Fatalf("unexpected authorization header %q", got)
		}

		var req struct {
			Text           string `json:"text"`
			TargetLanguage string `json:"targetLanguage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TargetLanguage != "en" {
			t.Fatalf("unexpected target language %q", req.TargetLanguage)
		}

		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "good morning"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	out, err := client.Translate(context.Background(), "goedemorgen", LanguageEnglish, "token-123")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if out != "good morning" {
		t.Fatalf("unexpected translation %q", out)
	}
}

func TestClientTranslateRateLimitedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Translate(context.Background(), "tekst", LanguageEnglish, "token")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate-limited error got %v", err)
	}
}

func TestClientTranslatePaymentRequiredStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Translate(context.Background(), "tekst", LanguageEnglish, "token")
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected payment-required error got %v", err)
	}
}

func TestClientTranslateErrorInPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Translate(context.Background(), "tekst", LanguageEnglish, "token")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate-limited error from payload got %v", err)
	}
}

func TestClientTranslateEmptyResultIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": ""})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Translate(context.Background(), "tekst", LanguageEnglish, "token"); err == nil {
		t.Fatal("expected error for empty translation")
	}
}

func TestKnownLanguage(t *testing.T) {
	for _, code := range []string{"nl", "en", "tr", "ar"} {
		if !KnownLanguage(code) {
			t.Fatalf("%s should be known", code)
		}
	}
	if KnownLanguage("de") {
		t.Fatal("de is not a supported target")
	}
}
