package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/devtrace/devtrace/internal/clientinfo"
	"github.com/devtrace/devtrace/internal/tracker"
)

// TrackHandler accepts the anonymous tracking beacon. The rate-limit
// middleware sits in front of it in the router.
type TrackHandler struct {
	Recorder *tracker.Recorder
}

func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	var payload tracker.Payload
	if r.Body != nil {
		// A beacon with an unreadable body can still be keyed by header.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	apiKey := payload.APIKey
	if apiKey == "" {
		apiKey = r.Header.Get("x-api-key")
	}
	if apiKey == "" {
		jsonError(w, "API key required", http.StatusBadRequest)
		return
	}

	meta := tracker.RequestMeta{
		IP:        clientinfo.ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	if _, err := h.Recorder.Record(apiKey, payload, meta); err != nil {
		if errors.Is(err, tracker.ErrUnknownKey) {
			jsonError(w, "Invalid API key", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("tracking failed")
		jsonError(w, "Failed to track visit", http.StatusInternalServerError)
		return
	}

	jsonOK(w, http.StatusCreated, map[string]any{"message": "Visit tracked successfully"})
}
