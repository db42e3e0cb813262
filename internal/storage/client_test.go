package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"foto.jpg", "foto.jpg"},
		{"mijn foto (1).JPEG", "mijn_foto__1_.jpeg"},
		{"..verborgen.png", "verborgen.png"},
		{"geen-extensie", "geen-extensie.jpg"},
		{"raar.!!", "raar.jpg"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	got := SanitizeFileName(strings.Repeat("a", 300) + ".jpg")
	if len(got) > 204 {
		t.Fatalf("base name should be capped, got length %d", len(got))
	}
}

func TestObjectPath(t *testing.T) {
	now := time.UnixMilli(1767349800000)
	got := ObjectPath("user-1", "report-9", "mijn foto.jpg", now)
	want := "user-1/report-9/1767349800000-mijn_foto.jpg"
	if got != want {
		t.Fatalf("ObjectPath = %q, want %q", got, want)
	}
}

func TestIsPath(t *testing.T) {
	if !IsPath("user-1/report-9/1-foto.jpg") {
		t.Fatal("relative reference is a path")
	}
	if IsPath("https://cdn.example/foto.jpg") {
		t.Fatal("absolute URL is not a path")
	}
}

func TestUpload(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "activity-photos")
	stored, err := client.Upload(context.Background(), "user-1/report-9/1-foto.jpg", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if stored != "user-1/report-9/1-foto.jpg" {
		t.Fatalf("upload should return the path reference, got %q", stored)
	}
	if !strings.HasPrefix(gotPath, "/object/activity-photos/") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotType != "image/jpeg" || string(gotBody) != "jpeg-bytes" {
		t.Fatalf("unexpected upload payload type=%q body=%q", gotType, gotBody)
	}
}

func TestSignedURLsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/object/sign/activity-photos" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		var req struct {
			Paths     []string `json:"paths"`
			ExpiresIn int      `json:"expiresIn"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode sign request: %v", err)
		}
		if req.ExpiresIn != 3600 {
			t.Fatalf("expected one-hour expiry, got %d", req.ExpiresIn)
		}
		out := make([]map[string]string, 0, len(req.Paths))
		for _, path := range req.Paths {
			out = append(out, map[string]string{"path": path, "signedUrl": "https://signed.example/" + path})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "activity-photos")
	signed, err := client.SignedURLs(context.Background(), []string{"a/b/1.jpg", "a/b/2.jpg"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(signed) != 2 {
		t.Fatalf("expected two signed entries, got %v", signed)
	}
	if signed["a/b/1.jpg"] != "https://signed.example/a/b/1.jpg" {
		t.Fatalf("unexpected signed url %q", signed["a/b/1.jpg"])
	}
}

func TestSignedURLsEmptyInput(t *testing.T) {
	client := NewClient("http://unused", "bucket")
	signed, err := client.SignedURLs(context.Background(), nil, time.Hour)
	if err != nil || len(signed) != 0 {
		t.Fatalf("empty input should not call the store, got %v %v", signed, err)
	}
}
