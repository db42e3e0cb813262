package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrReportNotFound is returned when a report cannot be located.
	ErrReportNotFound = errors.New("report not found")
	// ErrPhotoNotFound is returned when a photo cannot be located.
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrValidation marks input rejected before reaching the storage boundary.
	ErrValidation = errors.New("validation failed")
)

const (
	maxDescriptionLength = 5000
	maxLocationLength    = 200
)

// EventPublisher delivers report lifecycle events to downstream consumers.
type EventPublisher interface {
	ReportCreated(ctx context.Context, report Report)
	ReportDeleted(ctx context.Context, reportID, userID string)
}

// NoopPublisher discards events. Used in tests and when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) ReportCreated(context.Context, Report) {}

func (NoopPublisher) ReportDeleted(context.Context, string, string) {}

// Service orchestrates report workflows.
type Service struct {
	repo   ReportRepository
	events EventPublisher
}

// NewService constructs a Service.
func NewService(repo ReportRepository, events EventPublisher) *Service {
	if events == nil {
		events = NoopPublisher{}
	}
	return &Service{repo: repo, events: events}
}

// CreateReportInput captures the payload from the API layer.
type CreateReportInput struct {
	UserID       string
	Description  string
	Location     string
	ActivityDate time.Time
}

func validateDescription(description string) error {
	if description == "" || len(description) > maxDescriptionLength {
		return fmt.Errorf("%w: description must be between 1 and %d characters", ErrValidation, maxDescriptionLength)
	}
	return nil
}

func validateLocation(location string) error {
	if len(location) > maxLocationLength {
		return fmt.Errorf("%w: location must be under %d characters", ErrValidation, maxLocationLength)
	}
	return nil
}

// normalizeWeekly re-serialises weekly descriptions so hour clamps and the
// recomputed total always hold before anything is persisted.
func normalizeWeekly(description string) (string, error) {
	parsed := ParseDescription(description)
	if !parsed.IsWeekly() {
		return description, nil
	}
	days := parsed.Weekly.Days
	for _, key := range DayOrder {
		entry := days.Day(key)
		entry.Hours = ClampHours(entry.Hours)
		days.SetDay(key, entry)
	}
	return Description{Weekly: &WeeklyReport{Days: days}}.Serialize()
}

// CreateReport validates and persists a new report, then emits the created event.
func (s *Service) CreateReport(ctx context.Context, input CreateReportInput) (*Report, error) {
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := validateLocation(input.Location); err != nil {
		return nil, err
	}

	description, err := normalizeWeekly(input.Description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := Report{
		ID:           uuid.NewString(),
		UserID:       input.UserID,
		Description:  description,
		ActivityDate: input.ActivityDate.UTC().Truncate(24 * time.Hour),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Location != "" {
		location := input.Location
		report.Location = &location
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.events.ReportCreated(ctx, report)
	return &report, nil
}

// GetReport fetches a report by ID, including its photo references.
func (s *Service) GetReport(ctx context.Context, reportID string) (*Report, error) {
	report, err := s.repo.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// ListReports fetches reports with cursor pagination, optionally filtered by user.
func (s *Service) ListReports(ctx context.Context, filterUserID string, cursor *Cursor, limit int) ([]Report, *Cursor, error) {
	return s.repo.List(ctx, filterUserID, cursor, limit)
}

// UpdateReportInput captures an edit to an existing report. The description
// keeps its original mode: simple records stay simple.
type UpdateReportInput struct {
	Description  string
	Location     string
	ActivityDate *time.Time
}

// UpdateReport validates and applies an edit.
func (s *Service) UpdateReport(ctx context.Context, reportID string, input UpdateReportInput) (*Report, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := validateLocation(input.Location); err != nil {
		return nil, err
	}

	description, err := normalizeWeekly(input.Description)
	if err != nil {
		return nil, err
	}

	report.Description = description
	report.Location = nil
	if input.Location != "" {
		location := input.Location
		report.Location = &location
	}
	if input.ActivityDate != nil {
		report.ActivityDate = input.ActivityDate.UTC().Truncate(24 * time.Hour)
	}
	report.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *report); err != nil {
		return nil, err
	}
	return report, nil
}

// DeleteReport removes a report and emits the deleted event.
func (s *Service) DeleteReport(ctx context.Context, reportID string) error {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reportID); err != nil {
		return err
	}
	s.events.ReportDeleted(ctx, report.ID, report.UserID)
	return nil
}

// AttachPhoto records an uploaded photo reference against a report.
func (s *Service) AttachPhoto(ctx context.Context, reportID, fileURL string, day *DayKey) (*Photo, error) {
	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, err
	}
	photo := Photo{
		ID:        uuid.NewString(),
		ReportID:  reportID,
		FileURL:   fileURL,
		Day:       day,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}
	return &photo, nil
}

// GetPhoto fetches a photo reference by id.
func (s *Service) GetPhoto(ctx context.Context, photoID string) (*Photo, error) {
	photo, err := s.repo.GetPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}

// DeletePhoto removes a photo reference by id.
func (s *Service) DeletePhoto(ctx context.Context, photoID string) (*Photo, error) {
	photo, err := s.repo.DeletePhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}
