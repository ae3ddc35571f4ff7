package tracker

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devtrace/devtrace/internal/cache"
	"github.com/devtrace/devtrace/internal/clientinfo"
	"github.com/devtrace/devtrace/internal/geo"
	"github.com/devtrace/devtrace/internal/live"
	"github.com/devtrace/devtrace/internal/models"
)

// ErrUnknownKey means the beacon carried a tracking key that matches no
// project. Nothing is written in that case.
var ErrUnknownKey = errors.New("unknown tracking key")

// Payload is the beacon body a monitored page sends.
type Payload struct {
	APIKey    string `json:"apiKey"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
	Timestamp string `json:"timestamp"`
	VisitorID string `json:"visitorId"`
	Client    struct {
		UA string `json:"ua"`
	} `json:"client"`
}

// RequestMeta carries the transport-level facts the beacon body cannot.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Publisher receives each persisted visit for live fan-out.
type Publisher interface {
	Publish(projectID int64, eventType string, data any)
}

// Recorder is the ingestion entry point: it validates the tracking key,
// derives geo and client-signature facts, persists the visit, and notifies
// live subscribers.
type Recorder struct {
	db    *sql.DB
	geo   *geo.Reader
	cache *cache.ProjectCache
	pub   Publisher
}

func NewRecorder(db *sql.DB, geoReader *geo.Reader, projectCache *cache.ProjectCache, pub Publisher) *Recorder {
	return &Recorder{db: db, geo: geoReader, cache: projectCache, pub: pub}
}

// Record persists exactly one visit for a valid tracking key and publishes
// it to the project's live subscribers. Duplicate beacons produce duplicate
// visits; there is no dedup key.
func (rec *Recorder) Record(apiKey string, p Payload, meta RequestMeta) (*models.Visit, error) {
	project, err := rec.projectByKey(apiKey)
	if err != nil {
		return nil, err
	}

	rawUA := p.Client.UA
	if rawUA == "" {
		rawUA = meta.UserAgent
	}
	sig := clientinfo.ParseUserAgent(rawUA)
	loc := rec.geo.Lookup(meta.IP)

	path := p.Path
	if path == "" {
		path = "/"
	}

	// The beacon may carry its own timestamp; trusted as observed.
	createdAt := time.Now().UTC()
	if p.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
			createdAt = ts.UTC()
		}
	}

	visit := &models.Visit{
		ProjectID: project.ID,
		VisitorID: p.VisitorID,
		IP:        meta.IP,
		Country:   loc.Country,
		Region:    loc.Region,
		City:      loc.City,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		UserAgent: rawUA,
		Browser:   sig.Browser,
		OS:        sig.OS,
		Device:    sig.Device,
		Path:      path,
		Referrer:  p.Referrer,
		CreatedAt: createdAt,
	}
	if err := models.InsertVisit(rec.db, visit); err != nil {
		return nil, err
	}

	// Persist and fan-out are not atomic together; a crash here loses only
	// the notification.
	rec.pub.Publish(project.ID, live.EventVisit, visit)

	log.Debug().
		Int64("project_id", project.ID).
		Str("path", visit.Path).
		Str("country", visit.Country).
		Msg("visit recorded")

	return visit, nil
}

func (rec *Recorder) projectByKey(apiKey string) (*models.Project, error) {
	if project, found := rec.cache.Get(apiKey); found {
		return project, nil
	}
	project, err := models.GetProjectByAPIKey(rec.db, apiKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownKey
		}
		return nil, err
	}
	rec.cache.Set(apiKey, project)
	return project, nil
}
