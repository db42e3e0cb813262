package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ilisirali/EA/internal/auth"
	"github.com/ilisirali/EA/internal/domain"
	"github.com/ilisirali/EA/internal/images"
	"github.com/ilisirali/EA/internal/storage"
)

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 50 << 20

// UploadPhotosResponse lists the photo references created by one upload.
type UploadPhotosResponse struct {
	Photos []PhotoView `json:"photos"`
}

// uploadPhotos handles POST /v1/reports/{id}/photos. The request is
// multipart form data with one or more files under "photos" and an optional
// "day" value tagging them all. Every file is recompressed to bounded JPEG
// before it reaches storage.
func (h *Handler) uploadPhotos(w http.ResponseWriter, r *http.Request, reportID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeReportsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope reports:write required")
		return
	}

	found, err := h.service.GetReport(r.Context(), reportID)
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

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse multipart form")
		return
	}

	var day *domain.DayKey
	if raw := r.FormValue("day"); raw != "" {
		parsed, ok := domain.ParseDayKey(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown day key")
			return
		}
		day = &parsed
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "no photos provided")
		return
	}

	views := make([]PhotoView, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to read uploaded file")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to read uploaded file")
			return
		}

		compressed, err := images.Compress(data, images.UploadMaxWidth, images.UploadMaxHeight, images.UploadQuality)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "file is not a supported image")
			return
		}

		path := storage.ObjectPath(found.UserID, found.ID, header.Filename, time.Now())
		stored, err := h.store.Upload(r.Context(), path, compressed, "image/jpeg")
		if err != nil {
			writeError(w, http.StatusBadGateway, "storage_error", err.Error())
			return
		}

		photo, err := h.service.AttachPhoto(r.Context(), found.ID, stored, day)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}

		var dayValue *string
		if photo.Day != nil {
			s := string(*photo.Day)
			dayValue = &s
		}
		views = append(views, PhotoView{PhotoID: photo.ID, FileURL: photo.FileURL, Day: dayValue})
	}

	writeJSON(w, http.StatusCreated, UploadPhotosResponse{Photos: views})
}

// photoByID handles DELETE /v1/photos/{id}.
func (h *Handler) photoByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeReportsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope reports:write required")
		return
	}

	photoID := strings.TrimPrefix(r.URL.Path, "/v1/photos/")
	if photoID == "" || strings.Contains(photoID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing photo id")
		return
	}

	photo, err := h.service.GetPhoto(r.Context(), photoID)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	// Ownership must be provable before anything is removed.
	owner, err := h.service.GetReport(r.Context(), photo.ReportID)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if !canSee(claims, owner.UserID) {
		writeError(w, http.StatusNotFound, "not_found", "photo not found")
		return
	}

	if _, err := h.service.DeletePhoto(r.Context(), photoID); err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
