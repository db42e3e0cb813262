package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ilisirali/EA/internal/geo"
)

// ReverseGeocodeResponse is the payload for GET /v1/geocode/reverse. MapsURL
// is always present once coordinates are known, even when the address lookup
// degrades to the raw coordinates.
type ReverseGeocodeResponse struct {
	DisplayName string `json:"display_name"`
	MapsURL     string `json:"maps_url"`
}

func (h *Handler) reverseGeocode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireRead(w, r); !ok {
		return
	}

	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "lat and lon must be valid coordinates")
		return
	}
	language := r.URL.Query().Get("language")

	place, err := h.geocoder.Reverse(r.Context(), lat, lon, language)
	if err != nil {
		if errors.Is(err, geo.ErrPermissionDenied) {
			writeError(w, http.StatusForbidden, "location_permission_denied", "location lookup was refused, retry after granting permission")
			return
		}
		// Address lookup failed; the maps link still works for the coordinates.
		writeJSON(w, http.StatusOK, ReverseGeocodeResponse{MapsURL: geo.MapsURL(lat, lon)})
		return
	}

	writeJSON(w, http.StatusOK, ReverseGeocodeResponse{
		DisplayName: place.DisplayName,
		MapsURL:     place.MapsURL,
	})
}
