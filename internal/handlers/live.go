package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/devtrace/devtrace/internal/auth"
	"github.com/devtrace/devtrace/internal/live"
	"github.com/devtrace/devtrace/internal/models"
)

// LiveHandler upgrades authenticated dashboard connections and joins them
// to one notification scope per owned project.
type LiveHandler struct {
	DB   *sql.DB
	Hub  *live.Hub
	Auth *auth.Verifier

	upgrader websocket.Upgrader
}

func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	// Authenticate before upgrading so a bad credential fails the
	// handshake with an explicit status.
	token := auth.BearerToken(r)
	if token == "" {
		jsonError(w, "Authentication token required", http.StatusUnauthorized)
		return
	}
	userID, err := h.Auth.Verify(token)
	if err != nil {
		jsonError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	projects, err := models.ListProjectsByOwner(h.DB, userID)
	if err != nil {
		log.Error().Err(err).Msg("load projects for subscription failed")
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure.
		return
	}

	h.Hub.Subscribe(live.NewClient(conn), ids)
}
