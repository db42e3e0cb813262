package report

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ilisirali/EA/internal/domain"
	"github.com/ilisirali/EA/internal/observability"
)

// Dutch labels are hardcoded in the generated document regardless of the
// viewer's UI language.
var pdfLabels = struct {
	Report, Opsteller, Uitvoerder, Period, Day, Desc,
	Meerwerk, Locatie, Hours, Total, Week, GeneratedOn string
}{
	Report:      "WERKRAPPORT",
	Opsteller:   "OPSTELLER",
	Uitvoerder:  "UITVOERDER",
	Period:      "PERIODE",
	Day:         "DAG",
	Desc:        "BESCHRIJVING",
	Meerwerk:    "MEERWERK",
	Locatie:     "LOCATIE",
	Hours:       "UREN",
	Total:       "TOTAAL",
	Week:        "Week",
	GeneratedOn: "GEGENEREERD OP",
}

var dutchDays = map[domain.DayKey]string{
	domain.Monday:    "MAANDAG",
	domain.Tuesday:   "DINSDAG",
	domain.Wednesday: "WOENSDAG",
	domain.Thursday:  "DONDERDAG",
	domain.Friday:    "VRIJDAG",
	domain.Saturday:  "ZATERDAG",
}

// PhotoFetcher retrieves embed-ready photo bytes for a stored reference.
type PhotoFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Photo is one photo attached to the report, tagged with its owning day.
type Photo struct {
	Day domain.DayKey
	URL string
}

// Input carries everything the compiler needs for one document.
type Input struct {
	Week       domain.WeeklyWork
	WeekStart  time.Time
	PreparedBy string
	Photos     []Photo
}

// Document is a compiled report ready for the share/save boundary.
type Document struct {
	Bytes    []byte
	FileName string
	Pages    int
}

// Compiler renders weekly work records into PDF documents. Each Compile call
// is independent; the compiler holds no per-document state.
type Compiler struct {
	fetcher PhotoFetcher
	now     func() time.Time
	logger  *log.Logger
}

// NewCompiler constructs a Compiler. fetcher may be nil when no photos will
// ever be embedded.
func NewCompiler(fetcher PhotoFetcher, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		fetcher: fetcher,
		now:     time.Now,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompilerOption customises compiler construction.
type CompilerOption func(*Compiler)

// WithCompilerClock injects the timestamp source for footers and metrics.
func WithCompilerClock(now func() time.Time) CompilerOption {
	return func(c *Compiler) { c.now = now }
}

// WithCompilerLogger overrides the default logger.
func WithCompilerLogger(logger *log.Logger) CompilerOption {
	return func(c *Compiler) { c.logger = logger }
}

// nonAlphanumeric matches runs of characters replaced in file names.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FileName derives the deterministic document name from the ISO week number
// and the preparer's name.
func FileName(weekStart time.Time, preparedBy string) string {
	_, week := weekStart.ISOWeek()
	name := nonAlphanumeric.ReplaceAllString(preparedBy, "_")
	name = trimUnderscores(name)
	if name == "" {
		name = "Rapport"
	}
	return fmt.Sprintf("Werkrapport_Week%d_%s.pdf", week, name)
}

func trimUnderscores(s string) string {
	for len(s) > 0 && s[0] == '_' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '_' {
		s = s[:len(s)-1]
	}
	return s
}

// Compile renders the document. Individual photo failures are skipped; only
// a failure of the PDF engine itself aborts the document.
func (c *Compiler) Compile(ctx context.Context, input Input) (*Document, error) {
	start := c.now()

	// Photos are fetched sequentially up front so the grid only lays out
	// photos that actually decoded, preserving left-to-right order.
	embedded := c.fetchPhotos(ctx, input.Photos)
	counts := make(map[domain.DayKey]int, len(embedded))
	for key, blobs := range embedded {
		counts[key] = len(blobs)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 9)
	split := func(text string, width float64) []string {
		return pdf.SplitText(text, width)
	}
	plan := planLayout(input.Week, counts, split)

	c.drawBanner(pdf)
	c.drawMetadata(pdf, input)
	drawTableHeader(pdf, metaY+15)

	page := 1
	for _, row := range plan.Rows {
		for page < row.Page {
			pdf.AddPage()
			page++
		}
		if row.PageBreak {
			drawTableHeader(pdf, pageTopY)
		}
		drawRow(pdf, row)
		page = drawPhotos(pdf, page, row, embedded[row.Day])
	}

	for page < plan.TotalPage {
		pdf.AddPage()
		page++
	}
	drawTotal(pdf, plan)

	c.drawFooters(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf generation: %w", err)
	}

	observability.RecordPDFGenerated(c.now().Sub(start).Seconds())

	return &Document{
		Bytes:    buf.Bytes(),
		FileName: FileName(input.WeekStart, input.PreparedBy),
		Pages:    pdf.PageCount(),
	}, nil
}

// fetchPhotos downloads and downscales each photo, keyed and ordered by day.
// A failed photo is logged and dropped; the rest of the document proceeds.
func (c *Compiler) fetchPhotos(ctx context.Context, photos []Photo) map[domain.DayKey][][]byte {
	out := make(map[domain.DayKey][][]byte)
	if c.fetcher == nil {
		return out
	}
	for _, photo := range photos {
		data, err := c.fetcher.Fetch(ctx, photo.URL)
		if err != nil {
			c.logger.Printf("pdf: skipping photo for %s: %v", photo.Day, err)
			observability.RecordPDFPhotoSkipped()
			continue
		}
		out[photo.Day] = append(out[photo.Day], data)
	}
	return out
}

func (c *Compiler) drawBanner(pdf *gofpdf.Fpdf) {
	pdf.SetFillColor(30, 41, 59)
	pdf.Rect(0, 0, pageWidth, bannerHeight, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(margin, 20, "EA APP")

	pdf.SetFont("Helvetica", "B", 18)
	textRight(pdf, pageWidth-margin, 25, pdfLabels.Report)
}

func (c *Compiler) drawMetadata(pdf *gofpdf.Fpdf, input Input) {
	_, week := input.WeekStart.ISOWeek()
	period := fmt.Sprintf("%s - %s (%s %d)",
		input.WeekStart.Format("02.01.2006"),
		input.WeekStart.AddDate(0, 0, 5).Format("02.01.2006"),
		pdfLabels.Week, week)

	pdf.SetTextColor(50, 50, 50)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(margin, metaY-4, pdfLabels.Period)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(margin, metaY, period)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(margin+70, metaY-4, pdfLabels.Opsteller)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(margin+70, metaY, orDash(input.PreparedBy))

	// One supervisor for the whole document, lifted from the first
	// populated day even though it is stored per day.
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(margin+130, metaY-4, pdfLabels.Uitvoerder)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(margin+130, metaY, orDash(input.Week.Uitvoerder()))
}

func drawTableHeader(pdf *gofpdf.Fpdf, y float64) {
	pdf.SetFillColor(248, 250, 252)
	pdf.Rect(margin, y, tableWidth, headerRowH, "F")
	pdf.SetDrawColor(226, 232, 240)
	pdf.Line(margin, y, margin+tableWidth, y)
	pdf.Line(margin, y+headerRowH, margin+tableWidth, y+headerRowH)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(100, 116, 139)
	pdf.Text(cols.Day, y+6.5, pdfLabels.Day)
	pdf.Text(cols.Desc, y+6.5, pdfLabels.Desc)
	pdf.Text(cols.Meer, y+6.5, pdfLabels.Meerwerk)
	pdf.Text(cols.Loc, y+6.5, pdfLabels.Locatie)
	textRight(pdf, cols.Hours, y+6.5, pdfLabels.Hours)
}

func drawRow(pdf *gofpdf.Fpdf, row dayRow) {
	pdf.SetDrawColor(241, 245, 249)
	pdf.Line(margin, row.Y+row.Height, margin+tableWidth, row.Y+row.Height)

	pdf.SetTextColor(30, 41, 59)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(cols.Day, row.Y+8, dutchDays[row.Day])

	pdf.SetFont("Helvetica", "", 9)
	drawLines(pdf, cols.Desc, row.Y+8, row.WorkLines)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 116, 139)
	drawLines(pdf, cols.Meer, row.Y+8, row.MeerLines)
	drawLines(pdf, cols.Loc, row.Y+8, row.LocLines)

	pdf.SetTextColor(30, 41, 59)
	pdf.SetFont("Helvetica", "B", 8)
	textRight(pdf, cols.Hours, row.Y+8, fmt.Sprintf("%vH", row.Hours))
}

// drawPhotos places a row's thumbnails, adding pages as the grid overflows.
// Pure photo-overflow pages get no table header.
func drawPhotos(pdf *gofpdf.Fpdf, page int, row dayRow, blobs [][]byte) int {
	for _, cell := range row.Photos {
		if cell.Index >= len(blobs) {
			break
		}
		for page < cell.Page {
			pdf.AddPage()
			page++
		}

		name := fmt.Sprintf("%s-%d", row.Day, cell.Index)
		opts := gofpdf.ImageOptions{ImageType: "JPEG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(blobs[cell.Index]))

		pdf.SetDrawColor(226, 232, 240)
		pdf.Rect(cell.X-0.5, cell.Y-0.5, photoSize+1, photoSize+1, "D")
		pdf.ImageOptions(name, cell.X, cell.Y, photoSize, photoSize, false, opts, 0, "")
	}
	return page
}

func drawTotal(pdf *gofpdf.Fpdf, plan layoutPlan) {
	y := plan.TotalY

	pdf.SetFillColor(241, 245, 249)
	pdf.Rect(margin+120, y, 60, 15, "F")
	pdf.SetDrawColor(30, 41, 59)
	pdf.Line(margin+120, y, margin+tableWidth, y)

	pdf.SetTextColor(30, 41, 59)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(margin+125, y+9.5, pdfLabels.Total)
	pdf.SetFont("Helvetica", "B", 14)
	textRight(pdf, cols.Hours, y+10, fmt.Sprintf("%v UREN", plan.TotalHours))
}

func (c *Compiler) drawFooters(pdf *gofpdf.Fpdf) {
	generated := fmt.Sprintf("%s: %s", pdfLabels.GeneratedOn, c.now().Format("02.01.2006 15:04"))
	count := pdf.PageCount()
	for i := 1; i <= count; i++ {
		pdf.SetPage(i)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		label := fmt.Sprintf("EA APP - OFFICIEEL WERKRAPPORT - PAGINA %d VAN %d", i, count)
		textCenter(pdf, pageWidth/2, footerY, label)
		pdf.Text(margin, footerY, generated)
	}
}

func drawLines(pdf *gofpdf.Fpdf, x, y float64, lines []string) {
	for i, line := range lines {
		pdf.Text(x, y+float64(i)*lineHeight, line)
	}
}

func textRight(pdf *gofpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s), y, s)
}

func textCenter(pdf *gofpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
}
