package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ilisirali/EA/internal/domain"
	"github.com/ilisirali/EA/internal/report"
	"github.com/ilisirali/EA/internal/storage"
)

// exportPDF handles GET /v1/reports/{id}/pdf. Only weekly records can be
// rendered; legacy free-text reports are rejected. Photos tagged with a day
// are embedded; untagged photos are left out of the document.
func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request, reportID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireRead(w, r)
	if !ok {
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

	parsed := domain.ParseDescription(found.Description)
	if !parsed.IsWeekly() {
		writeError(w, http.StatusUnprocessableEntity, "not_weekly", "report is not a weekly record")
		return
	}

	preparedBy := claims.FullName
	if claims.Subject != found.UserID || preparedBy == "" {
		// An admin exporting someone else's week labels it with the
		// owner; without a profile name the owner id has to do.
		preparedBy = found.UserID
	}

	signed := h.signPhotoURLs(r.Context(), []domain.Report{*found})
	photos := make([]report.Photo, 0, len(found.Photos))
	for _, photo := range found.Photos {
		if photo.Day == nil {
			continue
		}
		url := photo.FileURL
		if storage.IsPath(photo.FileURL) {
			resolved, ok := signed[photo.FileURL]
			if !ok {
				continue
			}
			url = resolved
		}
		photos = append(photos, report.Photo{Day: *photo.Day, URL: url})
	}

	doc, err := h.compiler.Compile(r.Context(), report.Input{
		Week:       parsed.Weekly.Days,
		WeekStart:  found.ActivityDate,
		PreparedBy: preparedBy,
		Photos:     photos,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}
