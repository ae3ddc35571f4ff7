package tracker

import (
	"database/sql"
	"testing"
	"time"

	"github.com/devtrace/devtrace/internal/cache"
	"github.com/devtrace/devtrace/internal/db"
	"github.com/devtrace/devtrace/internal/geo"
	"github.com/devtrace/devtrace/internal/models"
)

type capturingPublisher struct {
	events []struct {
		projectID int64
		eventType string
	}
}

func (c *capturingPublisher) Publish(projectID int64, eventType string, data any) {
	c.events = append(c.events, struct {
		projectID int64
		eventType string
	}{projectID, eventType})
}

func setupRecorder(t *testing.T) (*Recorder, *sql.DB, *models.Project, *capturingPublisher) {
	t.Helper()
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })

	key, err := models.GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	project := &models.Project{Owner: "user-1", Name: "Blog", SiteURL: "https://example.com", APIKey: key}
	if err := models.CreateProject(d, project); err != nil {
		t.Fatal(err)
	}

	geoReader, _ := geo.Open("")
	projectCache, err := cache.New(100)
	if err != nil {
		t.Fatal(err)
	}
	pub := &capturingPublisher{}
	return NewRecorder(d, geoReader, projectCache, pub), d, project, pub
}

func visitCount(t *testing.T, d *sql.DB) int {
	t.Helper()
	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM visits`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	return count
}

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestRecord_PersistsOneVisitAndNotifiesOnce(t *testing.T) {
	rec, d, project, pub := setupRecorder(t)

	p := Payload{Path: "/home"}
	p.Client.UA = chromeUA
	visit, err := rec.Record(project.APIKey, p, RequestMeta{IP: "8.8.8.8"})
	if err != nil {
		t.Fatal(err)
	}

	if visitCount(t, d) != 1 {
		t.Errorf("visit count = %d, want 1", visitCount(t, d))
	}
	if len(pub.events) != 1 {
		t.Fatalf("notifications = %d, want 1", len(pub.events))
	}
	if pub.events[0].projectID != project.ID {
		t.Errorf("notification project = %d, want %d", pub.events[0].projectID, project.ID)
	}

	if visit.Browser != "Chrome" {
		t.Errorf("browser = %q, want Chrome", visit.Browser)
	}
	if visit.OS != "Windows" {
		t.Errorf("os = %q, want Windows", visit.OS)
	}
	if visit.Device != "desktop" {
		t.Errorf("device = %q, want desktop", visit.Device)
	}
	if visit.Path != "/home" {
		t.Errorf("path = %q, want /home", visit.Path)
	}
	// No geo database in tests, so a public address resolves to Unknown.
	if visit.Country != "Unknown" {
		t.Errorf("country = %q, want Unknown", visit.Country)
	}
}

func TestRecord_UnknownKey_WritesNothing(t *testing.T) {
	rec, d, _, pub := setupRecorder(t)

	_, err := rec.Record("0000000000000000000000000000000000000000000000000000000000000000", Payload{}, RequestMeta{})
	if err != ErrUnknownKey {
		t.Fatalf("err = %v, want ErrUnknownKey", err)
	}
	if visitCount(t, d) != 0 {
		t.Errorf("visit count = %d, want 0", visitCount(t, d))
	}
	if len(pub.events) != 0 {
		t.Errorf("notifications = %d, want 0", len(pub.events))
	}
}

func TestRecord_PrivateAddress_ResolvesLocal(t *testing.T) {
	rec, _, project, _ := setupRecorder(t)

	visit, err := rec.Record(project.APIKey, Payload{}, RequestMeta{IP: "192.168.1.10"})
	if err != nil {
		t.Fatal(err)
	}
	if visit.Country != "Local" || visit.City != "Local" {
		t.Errorf("geo = %q/%q, want Local/Local", visit.Country, visit.City)
	}
}

func TestRecord_HeaderUA_WhenPayloadOmitsClient(t *testing.T) {
	rec, _, project, _ := setupRecorder(t)

	visit, err := rec.Record(project.APIKey, Payload{}, RequestMeta{UserAgent: chromeUA})
	if err != nil {
		t.Fatal(err)
	}
	if visit.Browser != "Chrome" {
		t.Errorf("browser = %q, want Chrome (from request header)", visit.Browser)
	}
}

func TestRecord_ClientTimestampTrusted(t *testing.T) {
	rec, _, project, _ := setupRecorder(t)

	want := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	visit, err := rec.Record(project.APIKey, Payload{Timestamp: want.Format(time.RFC3339)}, RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	if !visit.CreatedAt.Equal(want) {
		t.Errorf("createdAt = %v, want %v", visit.CreatedAt, want)
	}
}

func TestRecord_BadTimestampFallsBackToNow(t *testing.T) {
	rec, _, project, _ := setupRecorder(t)

	before := time.Now().UTC().Add(-time.Second)
	visit, err := rec.Record(project.APIKey, Payload{Timestamp: "yesterday-ish"}, RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	if visit.CreatedAt.Before(before) {
		t.Errorf("createdAt = %v, want receipt time", visit.CreatedAt)
	}
}

func TestRecord_DefaultsPathToRoot(t *testing.T) {
	rec, _, project, _ := setupRecorder(t)

	visit, err := rec.Record(project.APIKey, Payload{}, RequestMeta{})
	if err != nil {
		t.Fatal(err)
	}
	if visit.Path != "/" {
		t.Errorf("path = %q, want /", visit.Path)
	}
}

func TestRecord_DuplicateBeacons_DuplicateVisits(t *testing.T) {
	rec, d, project, _ := setupRecorder(t)

	for j := 0; j < 3; j++ {
		if _, err := rec.Record(project.APIKey, Payload{Path: "/same"}, RequestMeta{IP: "8.8.8.8"}); err != nil {
			t.Fatal(err)
		}
	}
	if visitCount(t, d) != 3 {
		t.Errorf("visit count = %d, want 3 (no dedup)", visitCount(t, d))
	}
}

func TestRecord_SecondLookupServedFromCache(t *testing.T) {
	rec, d, project, _ := setupRecorder(t)

	if _, err := rec.Record(project.APIKey, Payload{}, RequestMeta{}); err != nil {
		t.Fatal(err)
	}

	// Remove the row behind the cache; the key should still resolve.
	if _, err := d.Exec(`DELETE FROM visits`); err != nil {
		t.Fatal(err)
	}
	if _, found := rec.cache.Get(project.APIKey); !found {
		t.Fatal("expected project to be cached after first record")
	}
}
