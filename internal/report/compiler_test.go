package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"testing"
	"time"

	"github.com/ilisirali/EA/internal/domain"
)

// stubFetcher serves canned photo bytes; URLs in failures return an error.
type stubFetcher struct {
	blob     []byte
	failures map[string]bool
	calls    []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if f.failures[url] {
		return nil, errors.New("download failed")
	}
	return f.blob, nil
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func testWeek() domain.WeeklyWork {
	week := domain.NewWeeklyWork()
	week.SetDay(domain.Monday, domain.DayEntry{
		Work:       "fundering uitgraven en bekisting plaatsen",
		Location:   "Utrecht",
		Hours:      8,
		Uitvoerder: "K. Visser",
	})
	week.SetDay(domain.Friday, domain.DayEntry{
		Work:     "afwerken en opruimen",
		Meerwerk: "extra straatwerk voorzijde",
		Location: "Utrecht",
		Hours:    6.5,
	})
	return week
}

func TestCompileProducesDocument(t *testing.T) {
	fetcher := &stubFetcher{blob: testJPEG(t)}
	compiler := NewCompiler(fetcher,
		WithCompilerClock(func() time.Time {
			return time.Date(2026, time.March, 6, 17, 0, 0, 0, time.UTC)
		}),
	)

	doc, err := compiler.Compile(context.Background(), Input{
		Week:       testWeek(),
		WeekStart:  time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		PreparedBy: "Jan Jansen",
		Photos: []Photo{
			{Day: domain.Monday, URL: "https://example.test/a.jpg"},
			{Day: domain.Monday, URL: "https://example.test/b.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
	if doc.Pages < 1 {
		t.Fatalf("expected at least one page, got %d", doc.Pages)
	}
	if doc.FileName != "Werkrapport_Week10_Jan_Jansen.pdf" {
		t.Fatalf("unexpected file name %q", doc.FileName)
	}
	if len(fetcher.calls) != 2 {
		t.Fatalf("expected both photos fetched, got %v", fetcher.calls)
	}
}

func TestCompileSkipsFailedPhotos(t *testing.T) {
	fetcher := &stubFetcher{
		blob:     testJPEG(t),
		failures: map[string]bool{"https://example.test/broken.jpg": true},
	}
	compiler := NewCompiler(fetcher, WithCompilerLogger(log.New(io.Discard, "", 0)))

	doc, err := compiler.Compile(context.Background(), Input{
		Week:      testWeek(),
		WeekStart: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		Photos: []Photo{
			{Day: domain.Monday, URL: "https://example.test/broken.jpg"},
			{Day: domain.Friday, URL: "https://example.test/ok.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("a failed photo must not abort the document: %v", err)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestCompileWithoutFetcher(t *testing.T) {
	compiler := NewCompiler(nil)

	doc, err := compiler.Compile(context.Background(), Input{
		Week:       testWeek(),
		WeekStart:  time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		PreparedBy: "Jan",
		Photos:     []Photo{{Day: domain.Monday, URL: "https://example.test/a.jpg"}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if doc.Pages != 1 {
		t.Fatalf("short week without photos should fit one page, got %d", doc.Pages)
	}
}
