package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/devtrace/devtrace/internal/verify"
)

// WebsiteHandler exposes the site-ownership verification sub-API.
type WebsiteHandler struct {
	Verify *verify.Service
}

type addSiteRequest struct {
	URL string `json:"url"`
}

func (h *WebsiteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	site, err := h.Verify.Add(req.URL)
	switch {
	case errors.Is(err, verify.ErrInvalidURL):
		jsonError(w, "Invalid URL. Must start with http:// or https://", http.StatusBadRequest)
	case errors.Is(err, verify.ErrAlreadyRegistered):
		jsonError(w, "Website already registered", http.StatusConflict)
	case err != nil:
		log.Error().Err(err).Msg("add site failed")
		jsonError(w, "Failed to add website", http.StatusInternalServerError)
	default:
		jsonOK(w, http.StatusCreated, map[string]any{
			"message":         "Website added. Please verify ownership.",
			"verificationTag": verify.MetaTag(site.Code),
			"site":            site,
		})
	}
}

type verifySiteRequest struct {
	SiteID int64 `json:"siteId"`
}

func (h *WebsiteHandler) VerifySite(w http.ResponseWriter, r *http.Request) {
	var req verifySiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	verified, err := h.Verify.Verify(r.Context(), req.SiteID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		jsonError(w, "Site not found", http.StatusNotFound)
	case errors.Is(err, verify.ErrUpstream):
		// The site could not be checked; distinct from "tag not present".
		jsonError(w, "Could not fetch site for verification", http.StatusBadGateway)
	case err != nil:
		log.Error().Err(err).Msg("verification failed")
		jsonError(w, "Failed to verify website", http.StatusInternalServerError)
	case !verified:
		respond(w, http.StatusOK, map[string]any{"success": false, "verified": false})
	default:
		respond(w, http.StatusOK, map[string]any{"success": true, "verified": true})
	}
}
