// Package postgres provides pgx-backed persistence for reports and photos.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ilisirali/EA/internal/domain"
)

// Repository provides Postgres-backed persistence for reports and their photos.
//
// Schema:
//
//	activities(activity_id uuid pk, user_id uuid, description text,
//	           location text null, activity_date date,
//	           created_at timestamptz, updated_at timestamptz)
//	activity_photos(photo_id uuid pk, activity_id uuid fk on delete cascade,
//	                file_url text, day text null, created_at timestamptz)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reportColumns = `activity_id, user_id, description, location, activity_date, created_at, updated_at`

func scanReport(row pgx.Row) (*domain.Report, error) {
	var report domain.Report
	if err := row.Scan(&report.ID, &report.UserID, &report.Description, &report.Location, &report.ActivityDate, &report.CreatedAt, &report.UpdatedAt); err != nil {
		return nil, err
	}
	return &report, nil
}

// Create persists a new report.
func (r *Repository) Create(ctx context.Context, report domain.Report) error {
	const stmt = `INSERT INTO activities (activity_id, user_id, description, location, activity_date, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := r.pool.Exec(ctx, stmt,
		report.ID,
		report.UserID,
		report.Description,
		report.Location,
		report.ActivityDate,
		report.CreatedAt,
		report.UpdatedAt,
	)
	return err
}

// Get retrieves a report by ID, including its photo references in insertion order.
func (r *Repository) Get(ctx context.Context, reportID string) (*domain.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM activities WHERE activity_id=$1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	photos, err := r.ListPhotos(ctx, reportID)
	if err != nil {
		return nil, err
	}
	report.Photos = photos
	return report, nil
}

// List returns reports newest first with cursor pagination, optionally
// filtered to one user. Photos are loaded in one query for the whole page.
func (r *Repository) List(ctx context.Context, filterUserID string, cursor *domain.Cursor, limit int) ([]domain.Report, *domain.Cursor, error) {
	args := []interface{}{limit + 1}
	query := `SELECT ` + reportColumns + ` FROM activities`

	where := ""
	if filterUserID != "" {
		args = append(args, filterUserID)
		where = ` WHERE user_id=$2`
	}
	if cursor != nil {
		args = append(args, cursor.CreatedAt, cursor.ID)
		clause := ` WHERE`
		if where != "" {
			clause = where + ` AND`
		}
		n := len(args)
		where = fmt.Sprintf(`%s (created_at, activity_id) < ($%d,$%d)`, clause, n-1, n)
	}

	query += where + ` ORDER BY created_at DESC, activity_id DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	reports := make([]domain.Report, 0, limit)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(reports) > limit {
		reports = reports[:limit]
		last := reports[limit-1]
		next = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	if err := r.attachPhotos(ctx, reports); err != nil {
		return nil, nil, err
	}
	return reports, next, nil
}

func (r *Repository) attachPhotos(ctx context.Context, reports []domain.Report) error {
	if len(reports) == 0 {
		return nil
	}

	ids := make([]string, 0, len(reports))
	index := make(map[string]int, len(reports))
	for i, report := range reports {
		ids = append(ids, report.ID)
		index[report.ID] = i
	}

	const query = `SELECT photo_id, activity_id, file_url, day, created_at
        FROM activity_photos WHERE activity_id = ANY($1) ORDER BY created_at, photo_id`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var photo domain.Photo
		if err := rows.Scan(&photo.ID, &photo.ReportID, &photo.FileURL, &photo.Day, &photo.CreatedAt); err != nil {
			return err
		}
		i := index[photo.ReportID]
		reports[i].Photos = append(reports[i].Photos, photo)
	}
	return rows.Err()
}

// Update rewrites a report's editable columns.
func (r *Repository) Update(ctx context.Context, report domain.Report) error {
	const stmt = `UPDATE activities SET description=$2, location=$3, activity_date=$4, updated_at=$5
        WHERE activity_id=$1`

	_, err := r.pool.Exec(ctx, stmt,
		report.ID,
		report.Description,
		report.Location,
		report.ActivityDate,
		report.UpdatedAt,
	)
	return err
}

// Delete removes a report; photo references cascade.
func (r *Repository) Delete(ctx context.Context, reportID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE activity_id=$1`, reportID)
	return err
}

// AddPhoto records a photo reference.
func (r *Repository) AddPhoto(ctx context.Context, photo domain.Photo) error {
	const stmt = `INSERT INTO activity_photos (photo_id, activity_id, file_url, day, created_at)
        VALUES ($1,$2,$3,$4,$5)`

	_, err := r.pool.Exec(ctx, stmt,
		photo.ID,
		photo.ReportID,
		photo.FileURL,
		photo.Day,
		photo.CreatedAt,
	)
	return err
}

// GetPhoto retrieves a photo reference by id.
func (r *Repository) GetPhoto(ctx context.Context, photoID string) (*domain.Photo, error) {
	const query = `SELECT photo_id, activity_id, file_url, day, created_at
        FROM activity_photos WHERE photo_id=$1`

	var photo domain.Photo
	err := r.pool.QueryRow(ctx, query, photoID).Scan(&photo.ID, &photo.ReportID, &photo.FileURL, &photo.Day, &photo.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

// ListPhotos returns a report's photo references in insertion order.
func (r *Repository) ListPhotos(ctx context.Context, reportID string) ([]domain.Photo, error) {
	const query = `SELECT photo_id, activity_id, file_url, day, created_at
        FROM activity_photos WHERE activity_id=$1 ORDER BY created_at, photo_id`

	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]domain.Photo, 0)
	for rows.Next() {
		var photo domain.Photo
		if err := rows.Scan(&photo.ID, &photo.ReportID, &photo.FileURL, &photo.Day, &photo.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

// DeletePhoto removes a photo reference by id, returning the removed row.
func (r *Repository) DeletePhoto(ctx context.Context, photoID string) (*domain.Photo, error) {
	const stmt = `DELETE FROM activity_photos WHERE photo_id=$1
        RETURNING photo_id, activity_id, file_url, day, created_at`

	var photo domain.Photo
	err := r.pool.QueryRow(ctx, stmt, photoID).Scan(&photo.ID, &photo.ReportID, &photo.FileURL, &photo.Day, &photo.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}
