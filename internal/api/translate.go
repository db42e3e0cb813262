package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ilisirali/EA/internal/auth"
	"github.com/ilisirali/EA/internal/translate"
)

// TranslateRequest is the payload for both translate endpoints.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

// TranslateResponse carries the translation outcome. Translated is false
// when the text came back untouched; Reason says why.
type TranslateResponse struct {
	Text       string `json:"text"`
	Translated bool   `json:"translated"`
	Cached     bool   `json:"cached,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func decodeTranslateRequest(w http.ResponseWriter, r *http.Request) (*TranslateRequest, *auth.Claims, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return nil, nil, false
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, nil, false
	}

	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return nil, nil, false
	}
	if !translate.KnownLanguage(req.TargetLanguage) {
		writeError(w, http.StatusBadRequest, "validation_failed", "unsupported target language")
		return nil, nil, false
	}
	return &req, claims, true
}

// translateDirect handles POST /v1/translate: a single immediate backend
// call whose failures are surfaced, including the rate-limit and payment
// classes. Interactive translation flows use this endpoint.
func (h *Handler) translateDirect(w http.ResponseWriter, r *http.Request) {
	req, claims, ok := decodeTranslateRequest(w, r)
	if !ok {
		return
	}

	translated, err := h.backend.Translate(r.Context(), req.Text, translate.Language(req.TargetLanguage), claims.RawToken)
	if err != nil {
		switch {
		case errors.Is(err, translate.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate_limited", "translation rate limit reached, try again later")
		case errors.Is(err, translate.ErrPaymentRequired):
			writeError(w, http.StatusPaymentRequired, "payment_required", "translation credit exhausted")
		default:
			writeError(w, http.StatusBadGateway, "translate_error", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{Text: translated, Translated: true})
}

// translateAuto handles POST /v1/translate/auto: the queued, silent path.
// The response is always 200; a failed translation returns the original
// text with the fallback reason.
func (h *Handler) translateAuto(w http.ResponseWriter, r *http.Request) {
	req, claims, ok := decodeTranslateRequest(w, r)
	if !ok {
		return
	}

	res := h.queue.Translate(r.Context(), req.Text, translate.Language(req.TargetLanguage), claims.RawToken)
	writeJSON(w, http.StatusOK, TranslateResponse{
		Text:       res.Text,
		Translated: res.Translated,
		Cached:     res.Cached,
		Reason:     res.Reason,
	})
}
