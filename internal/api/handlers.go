// Package api exposes HTTP handlers for the report service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ilisirali/EA/internal/auth"
	"github.com/ilisirali/EA/internal/domain"
	"github.com/ilisirali/EA/internal/geo"
	"github.com/ilisirali/EA/internal/persistence"
	"github.com/ilisirali/EA/internal/report"
	"github.com/ilisirali/EA/internal/storage"
	"github.com/ilisirali/EA/internal/translate"
)

// Page size bounds for report listings.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// objectStore captures the storage operations the handlers need.
type objectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	SignedURLs(ctx context.Context, paths []string, ttl time.Duration) (map[string]string, error)
}

// geocoder captures the reverse-geocoding operation.
type geocoder interface {
	Reverse(ctx context.Context, lat, lon float64, language string) (*geo.Place, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service      *domain.Service
	queue        *translate.Queue
	backend      translate.Backend
	compiler     *report.Compiler
	store        objectStore
	geocoder     geocoder
	signedURLTTL time.Duration
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, queue *translate.Queue, backend translate.Backend, compiler *report.Compiler, store objectStore, geocoder geocoder, signedURLTTL time.Duration) *Handler {
	return &Handler{
		service:      service,
		queue:        queue,
		backend:      backend,
		compiler:     compiler,
		store:        store,
		geocoder:     geocoder,
		signedURLTTL: signedURLTTL,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/reports", h.reports)
	mux.HandleFunc("/v1/reports/", h.reportByID)
	mux.HandleFunc("/v1/photos/", h.photoByID)
	mux.HandleFunc("/v1/translate", h.translateDirect)
	mux.HandleFunc("/v1/translate/auto", h.translateAuto)
	mux.HandleFunc("/v1/geocode/reverse", h.reverseGeocode)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createReport(w, r)
	case http.MethodGet:
		h.listReports(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) reportByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/reports/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing report id")
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getReport(w, r, id)
		case http.MethodPut:
			h.updateReport(w, r, id)
		case http.MethodDelete:
			h.deleteReport(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		}
	case "pdf":
		h.exportPDF(w, r, id)
	case "photos":
		h.uploadPhotos(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

// CreateReportRequest is the payload for POST /v1/reports.
type CreateReportRequest struct {
	Description  string `json:"description"`
	Location     string `json:"location"`
	ActivityDate string `json:"activity_date"`
}

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeReportsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope reports:write required")
		return
	}

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activityDate, err := time.Parse("2006-01-02", req.ActivityDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "activity_date must be YYYY-MM-DD")
		return
	}

	created, err := h.service.CreateReport(r.Context(), domain.CreateReportInput{
		UserID:       claims.Subject,
		Description:  strings.TrimSpace(req.Description),
		Location:     strings.TrimSpace(req.Location),
		ActivityDate: activityDate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, h.toReportView(r.Context(), *created))
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if !canSee(claims, found.UserID) {
		writeError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}

	writeJSON(w, http.StatusOK, h.toReportView(r.Context(), *found))
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireRead(w, r)
	if !ok {
		return
	}

	// Non-admins only ever see their own reports; admins may filter by user.
	filterUserID := claims.Subject
	if claims.HasScope(auth.ScopeReportsAdmin) {
		filterUserID = r.URL.Query().Get("user_id")
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	reports, next, err := h.service.ListReports(r.Context(), filterUserID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	signed := h.signPhotoURLs(r.Context(), reports)
	items := make([]ReportView, 0, len(reports))
	for _, rep := range reports {
		items = append(items, toReportViewSigned(rep, signed))
	}

	writeJSON(w, http.StatusOK, ListReportsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

// UpdateReportRequest is the payload for PUT /v1/reports/{id}.
type UpdateReportRequest struct {
	Description  string `json:"description"`
	Location     string `json:"location"`
	ActivityDate string `json:"activity_date,omitempty"`
}

func (h *Handler) updateReport(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeReportsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope reports:write required")
		return
	}

	existing, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if !canSee(claims, existing.UserID) {
		writeError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}

	var req UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	input := domain.UpdateReportInput{
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
	}
	if req.ActivityDate != "" {
		activityDate, err := time.Parse("2006-01-02", req.ActivityDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "activity_date must be YYYY-MM-DD")
			return
		}
		input.ActivityDate = &activityDate
	}

	updated, err := h.service.UpdateReport(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.toReportView(r.Context(), *updated))
}

func (h *Handler) deleteReport(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeReportsAdmin) {
		writeError(w, http.StatusForbidden, "forbidden", "scope reports:admin required")
		return
	}

	if err := h.service.DeleteReport(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func requireRead(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasScope(auth.ScopeReportsRead) && !claims.HasScope(auth.ScopeReportsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope reports:read required")
		return nil, false
	}
	return claims, true
}

func canSee(claims *auth.Claims, ownerID string) bool {
	return claims.Subject == ownerID || claims.HasScope(auth.ScopeReportsAdmin)
}

// PhotoView exposes one photo with its resolved URL.
type PhotoView struct {
	PhotoID string  `json:"photo_id"`
	FileURL string  `json:"file_url"`
	Day     *string `json:"day,omitempty"`
}

// ReportView exposes full details about a report. TotalHours is recomputed
// from the day entries for weekly records, never read from the stored cache.
type ReportView struct {
	ReportID     string      `json:"report_id"`
	UserID       string      `json:"user_id"`
	Description  string      `json:"description"`
	Location     *string     `json:"location,omitempty"`
	ActivityDate string      `json:"activity_date"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Weekly       bool        `json:"weekly"`
	TotalHours   float64     `json:"total_hours"`
	WeekNumber   int         `json:"week_number"`
	Photos       []PhotoView `json:"photos"`
}

// ListReportsResponse packages list results.
type ListReportsResponse struct {
	Items      []ReportView `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// signPhotoURLs resolves stored photo paths to signed URLs in one batch call
// across every report in the page. Absolute URLs pass through untouched.
func (h *Handler) signPhotoURLs(ctx context.Context, reports []domain.Report) map[string]string {
	paths := make([]string, 0)
	for _, rep := range reports {
		for _, photo := range rep.Photos {
			if storage.IsPath(photo.FileURL) {
				paths = append(paths, photo.FileURL)
			}
		}
	}
	if len(paths) == 0 || h.store == nil {
		return map[string]string{}
	}
	signed, err := h.store.SignedURLs(ctx, paths, h.signedURLTTL)
	if err != nil {
		// Unsigned paths still render as references; the client retries later.
		return map[string]string{}
	}
	return signed
}

func (h *Handler) toReportView(ctx context.Context, rep domain.Report) ReportView {
	signed := h.signPhotoURLs(ctx, []domain.Report{rep})
	return toReportViewSigned(rep, signed)
}

func toReportViewSigned(rep domain.Report, signed map[string]string) ReportView {
	parsed := domain.ParseDescription(rep.Description)
	_, week := rep.ActivityDate.ISOWeek()

	view := ReportView{
		ReportID:     rep.ID,
		UserID:       rep.UserID,
		Description:  rep.Description,
		Location:     rep.Location,
		ActivityDate: rep.ActivityDate.Format("2006-01-02"),
		CreatedAt:    rep.CreatedAt,
		UpdatedAt:    rep.UpdatedAt,
		Weekly:       parsed.IsWeekly(),
		TotalHours:   parsed.TotalHours(),
		WeekNumber:   week,
		Photos:       make([]PhotoView, 0, len(rep.Photos)),
	}

	for _, photo := range rep.Photos {
		url := photo.FileURL
		if resolved, ok := signed[photo.FileURL]; ok {
			url = resolved
		}
		var day *string
		if photo.Day != nil {
			s := string(*photo.Day)
			day = &s
		}
		view.Photos = append(view.Photos, PhotoView{PhotoID: photo.ID, FileURL: url, Day: day})
	}
	return view
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
