package domain

import (
	"context"
	"time"
)

// Report is the canonical work-report record stored in PostgreSQL. The
// description column is opaque at this level: either a weekly JSON envelope
// or legacy free text (see ParseDescription).
type Report struct {
	ID           string
	UserID       string
	Description  string
	Location     *string
	ActivityDate time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Photos       []Photo
}

// Photo is a stored photo reference attached to a report. FileURL is either
// a storage path needing signed-URL resolution or an absolute URL.
type Photo struct {
	ID        string
	ReportID  string
	FileURL   string
	Day       *DayKey
	CreatedAt time.Time
}

// Cursor models the pagination token for report listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ReportRepository captures persistence operations.
type ReportRepository interface {
	Create(ctx context.Context, report Report) error
	Get(ctx context.Context, reportID string) (*Report, error)
	List(ctx context.Context, filterUserID string, cursor *Cursor, limit int) ([]Report, *Cursor, error)
	Update(ctx context.Context, report Report) error
	Delete(ctx context.Context, reportID string) error
	AddPhoto(ctx context.Context, photo Photo) error
	GetPhoto(ctx context.Context, photoID string) (*Photo, error)
	ListPhotos(ctx context.Context, reportID string) ([]Photo, error)
	DeletePhoto(ctx context.Context, photoID string) (*Photo, error)
}
