package persistence

import (
	"testing"
	"time"

	"github.com/ilisirali/EA/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	in := &domain.Cursor{
		CreatedAt: time.Date(2026, time.March, 2, 14, 30, 15, 123456789, time.UTC),
		ID:        "report-42",
	}

	token := EncodeCursor(in)
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	out, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestEncodeNilCursor(t *testing.T) {
	if got := EncodeCursor(nil); got != "" {
		t.Fatalf("nil cursor should encode to empty token, got %q", got)
	}
}

func TestDecodeEmptyToken(t *testing.T) {
	out, err := DecodeCursor("  ")
	if err != nil || out != nil {
		t.Fatalf("blank token should decode to nil, got %v %v", out, err)
	}
}

func TestDecodeInvalidToken(t *testing.T) {
	if _, err := DecodeCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, err := DecodeCursor("aGVsbG8="); err == nil {
		t.Fatal("expected error for token without separator")
	}
}
