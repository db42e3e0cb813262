package api

import (
	"context"
	"errors"

	"github.com/ilisirali/EA/internal/domain"
)

// memRepo is an in-memory domain.ReportRepository for handler tests.
type memRepo struct {
	reports []domain.Report
	photos  []domain.Photo
}

func newMemRepo() *memRepo {
	return &memRepo{}
}

func (m *memRepo) Create(_ context.Context, report domain.Report) error {
	m.reports = append(m.reports, report)
	return nil
}

func (m *memRepo) Get(_ context.Context, reportID string) (*domain.Report, error) {
	for _, report := range m.reports {
		if report.ID == reportID {
			out := report
			for _, photo := range m.photos {
				if photo.ReportID == reportID {
					out.Photos = append(out.Photos, photo)
				}
			}
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memRepo) List(_ context.Context, filterUserID string, _ *domain.Cursor, limit int) ([]domain.Report, *domain.Cursor, error) {
	out := make([]domain.Report, 0)
	for _, report := range m.reports {
		if filterUserID != "" && report.UserID != filterUserID {
			continue
		}
		withPhotos := report
		for _, photo := range m.photos {
			if photo.ReportID == report.ID {
				withPhotos.Photos = append(withPhotos.Photos, photo)
			}
		}
		out = append(out, withPhotos)
		if len(out) == limit {
			break
		}
	}
	return out, nil, nil
}

func (m *memRepo) Update(_ context.Context, report domain.Report) error {
	for i := range m.reports {
		if m.reports[i].ID == report.ID {
			m.reports[i] = report
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memRepo) Delete(_ context.Context, reportID string) error {
	for i := range m.reports {
		if m.reports[i].ID == reportID {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memRepo) AddPhoto(_ context.Context, photo domain.Photo) error {
	m.photos = append(m.photos, photo)
	return nil
}

func (m *memRepo) GetPhoto(_ context.Context, photoID string) (*domain.Photo, error) {
	for _, photo := range m.photos {
		if photo.ID == photoID {
			out := photo
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memRepo) ListPhotos(_ context.Context, reportID string) ([]domain.Photo, error) {
	out := make([]domain.Photo, 0)
	for _, photo := range m.photos {
		if photo.ReportID == reportID {
			out = append(out, photo)
		}
	}
	return out, nil
}

func (m *memRepo) DeletePhoto(_ context.Context, photoID string) (*domain.Photo, error) {
	for i := range m.photos {
		if m.photos[i].ID == photoID {
			out := m.photos[i]
			m.photos = append(m.photos[:i], m.photos[i+1:]...)
			return &out, nil
		}
	}
	return nil, nil
}
