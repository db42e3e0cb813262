// Package report compiles a weekly work record into a paginated PDF
// document. Layout is planned ahead of drawing so pagination is
// deterministic and testable without a PDF engine.
package report

import (
	"github.com/ilisirali/EA/internal/domain"
)

// Page geometry, in mm on A4 portrait.
const (
	pageWidth    = 210.0
	margin       = 15.0
	tableWidth   = 180.0
	bannerHeight = 40.0
	metaY        = 50.0
	headerRowH   = 10.0
	pageTopY     = 20.0
	rowBottomY   = 270.0 // rows crossing this start a new page
	photoBottomY = 275.0 // photo grid may run slightly deeper
	totalBottomY = 260.0
	footerY      = 285.0

	rowMinHeight = 15.0
	lineHeight   = 5.0
	rowPadding   = 6.0

	photoSize    = 35.0
	photoSpacing = 5.0

	descWrapWidth = 70.0
	meerWrapWidth = 35.0
	locWrapWidth  = 35.0
)

// Column anchors for the day table.
var cols = struct {
	Day, Desc, Meer, Loc, Hours float64
}{
	Day:   margin + 2,
	Desc:  margin + 22,
	Meer:  margin + 95,
	Loc:   margin + 135,
	Hours: margin + 175,
}

// photoMaxX is the right edge available to the photo grid.
const photoMaxX = margin + 175 + 5 // cols.Hours + 5

// splitFunc wraps text to a column width, returning the wrapped lines.
// Production uses the PDF engine's measurer; tests substitute their own.
type splitFunc func(text string, width float64) []string

// RowHeight computes a day row's height from its wrapped line counts: the
// row grows to fit the longest text block, with a 15-unit floor.
func RowHeight(workLines, meerLines int) float64 {
	h := rowMinHeight
	if v := float64(workLines)*lineHeight + rowPadding; v > h {
		h = v
	}
	if v := float64(meerLines)*lineHeight + rowPadding; v > h {
		h = v
	}
	return h
}

// photoCell places one photo thumbnail in the grid.
type photoCell struct {
	Index int
	Page  int
	X, Y  float64
}

// dayRow is one planned table row plus its photo grid.
type dayRow struct {
	Day       domain.DayKey
	WorkLines []string
	MeerLines []string
	LocLines  []string
	Hours     float64
	Height    float64
	Page      int
	Y         float64
	PageBreak bool // a text-row overflow break: the table header is redrawn
	Photos    []photoCell
}

// layoutPlan is the full planned document.
type layoutPlan struct {
	Rows       []dayRow
	Pages      int
	TotalHours float64
	TotalPage  int
	TotalY     float64
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// photoGrid lays out count thumbnails left to right from the description
// column, wrapping at maxX and breaking to a new page when vertical space
// runs out. Photo-overflow pages do not redraw the table header.
func photoGrid(count, page int, y, maxX float64) (cells []photoCell, endPage int, endY float64) {
	x := cols.Desc
	for i := 0; i < count; i++ {
		if y+photoSize > photoBottomY {
			page++
			y = pageTopY
			x = cols.Desc
		}
		cells = append(cells, photoCell{Index: i, Page: page, X: x, Y: y})
		x += photoSize + photoSpacing
		if x+photoSize > maxX {
			x = cols.Desc
			y += photoSize + photoSpacing
		}
	}
	if x == cols.Desc {
		y += 10
	} else {
		y += photoSize + 10
	}
	return cells, page, y
}

// planLayout performs the single deterministic pass over the six day keys in
// calendar order. Days with no work text and no hours contribute nothing.
func planLayout(week domain.WeeklyWork, photoCounts map[domain.DayKey]int, split splitFunc) layoutPlan {
	plan := layoutPlan{Pages: 1, TotalHours: week.TotalHours()}

	page := 1
	y := metaY + 15 + headerRowH // first row sits below the metadata strip and table header

	for _, key := range domain.DayOrder {
		entry := week.Day(key)
		if entry.Empty() {
			continue
		}

		row := dayRow{
			Day:       key,
			WorkLines: split(orDash(entry.Work), descWrapWidth),
			MeerLines: split(orDash(entry.Meerwerk), meerWrapWidth),
			LocLines:  split(orDash(entry.Location), locWrapWidth),
			Hours:     entry.Hours,
		}
		row.Height = RowHeight(len(row.WorkLines), len(row.MeerLines))

		if y+row.Height > rowBottomY {
			page++
			y = pageTopY + headerRowH
			row.PageBreak = true
		}
		row.Page = page
		row.Y = y
		y += row.Height

		if n := photoCounts[key]; n > 0 {
			y += photoSpacing
			row.Photos, page, y = photoGrid(n, page, y, photoMaxX)
		}

		plan.Rows = append(plan.Rows, row)
	}

	y += 10
	if y > totalBottomY {
		page++
		y = pageTopY
	}
	plan.TotalPage = page
	plan.TotalY = y
	plan.Pages = page

	return plan
}
