package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/devtrace/devtrace/internal/db"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func createTestProject(t *testing.T, d *sql.DB, owner, name string) *Project {
	t.Helper()
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatal(err)
	}
	p := &Project{Owner: owner, Name: name, SiteURL: "https://example.com", APIKey: key}
	if err := CreateProject(d, p); err != nil {
		t.Fatal(err)
	}
	return p
}

func insertTestVisit(t *testing.T, d *sql.DB, v Visit) {
	t.Helper()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if err := InsertVisit(d, &v); err != nil {
		t.Fatal(err)
	}
}
