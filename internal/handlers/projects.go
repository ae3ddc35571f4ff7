package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/devtrace/devtrace/internal/auth"
	"github.com/devtrace/devtrace/internal/cache"
	"github.com/devtrace/devtrace/internal/models"
)

type ProjectHandler struct {
	DB    *sql.DB
	Cache *cache.ProjectCache
}

type createProjectRequest struct {
	Name    string `json:"name"`
	SiteURL string `json:"siteUrl"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.SiteURL == "" {
		jsonError(w, "Name and siteUrl are required", http.StatusBadRequest)
		return
	}
	if !models.ValidateSiteURL(req.SiteURL) {
		jsonError(w, "Invalid URL. Must start with http:// or https://", http.StatusBadRequest)
		return
	}

	apiKey, err := models.GenerateAPIKey()
	if err != nil {
		log.Error().Err(err).Msg("api key generation failed")
		jsonError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}

	project := &models.Project{
		Owner:   auth.UserID(r.Context()),
		Name:    req.Name,
		SiteURL: req.SiteURL,
		APIKey:  apiKey,
	}
	if err := models.CreateProject(h.DB, project); err != nil {
		log.Error().Err(err).Msg("create project failed")
		jsonError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}

	jsonOK(w, http.StatusCreated, map[string]any{"project": project})
}

// MyWebsites lists the caller's projects with their visit totals attached.
func (h *ProjectHandler) MyWebsites(w http.ResponseWriter, r *http.Request) {
	owner := auth.UserID(r.Context())
	projects, err := models.ListProjectsByOwner(h.DB, owner)
	if err != nil {
		log.Error().Err(err).Msg("list projects failed")
		jsonError(w, "Failed to fetch websites", http.StatusInternalServerError)
		return
	}

	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	counts, err := models.VisitCountsForProjects(h.DB, ids)
	if err != nil {
		log.Error().Err(err).Msg("visit counts failed")
		jsonError(w, "Failed to fetch websites", http.StatusInternalServerError)
		return
	}

	type projectWithStats struct {
		models.Project
		Stats struct {
			TotalVisits int `json:"totalVisits"`
		} `json:"stats"`
	}
	out := make([]projectWithStats, len(projects))
	for i, p := range projects {
		out[i].Project = p
		out[i].Stats.TotalVisits = counts[p.ID]
	}

	jsonOK(w, http.StatusOK, map[string]any{"projects": out})
}

func (h *ProjectHandler) Visits(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 50
	}

	visits, total, err := models.ListVisits(h.DB, project.ID, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("list visits failed")
		jsonError(w, "Failed to fetch visits", http.StatusInternalServerError)
		return
	}
	unique, err := models.UniqueVisitorCount(h.DB, project.ID)
	if err != nil {
		log.Error().Err(err).Msg("unique visitors failed")
		jsonError(w, "Failed to fetch visits", http.StatusInternalServerError)
		return
	}
	if visits == nil {
		visits = []models.Visit{}
	}

	jsonOK(w, http.StatusOK, map[string]any{
		"visits": visits,
		"summary": map[string]any{
			"totalVisits":    total,
			"uniqueVisitors": unique,
		},
		"project": project,
	})
}

func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	summary, err := models.ProjectSummary(h.DB, project.ID)
	if err != nil {
		log.Error().Err(err).Msg("project summary failed")
		jsonError(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}

	jsonOK(w, http.StatusOK, map[string]any{"stats": summary})
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	h.Cache.Invalidate(project.APIKey)
	if err := models.DeleteProject(h.DB, project.ID); err != nil {
		log.Error().Err(err).Msg("delete project failed")
		jsonError(w, "Failed to delete project", http.StatusInternalServerError)
		return
	}

	jsonOK(w, http.StatusOK, map[string]any{"message": "Project deleted successfully"})
}

// ownedProject is the authorization guard shared by every per-project
// route: 404 for an unknown project, 403 when the caller is not its owner.
func (h *ProjectHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid project id", http.StatusBadRequest)
		return nil, false
	}

	project, err := models.GetProjectByID(h.DB, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "Project not found", http.StatusNotFound)
			return nil, false
		}
		log.Error().Err(err).Msg("load project failed")
		jsonError(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}

	if project.Owner != auth.UserID(r.Context()) {
		jsonError(w, "Access denied", http.StatusForbidden)
		return nil, false
	}
	return project, true
}
