package models

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

type Project struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	SiteURL   string    `json:"siteUrl"`
	APIKey    string    `json:"apiKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// GenerateAPIKey returns a 256-bit tracking key, hex-encoded (64 chars).
// Collision probability is negligible and not handled.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidateSiteURL reports whether raw is an absolute http or https URL.
func ValidateSiteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func CreateProject(db *sql.DB, p *Project) error {
	res, err := db.Exec(
		`INSERT INTO projects (owner, name, site_url, api_key) VALUES (?, ?, ?, ?)`,
		p.Owner, p.Name, p.SiteURL, p.APIKey,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	id, _ := res.LastInsertId()
	p.ID = id

	// Re-read to get timestamps
	got, err := GetProjectByID(db, id)
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

func GetProjectByID(db *sql.DB, id int64) (*Project, error) {
	row := db.QueryRow(`SELECT id, owner, name, site_url, api_key, created_at FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func GetProjectByAPIKey(db *sql.DB, apiKey string) (*Project, error) {
	row := db.QueryRow(`SELECT id, owner, name, site_url, api_key, created_at FROM projects WHERE api_key = ?`, apiKey)
	return scanProject(row)
}

func ListProjectsByOwner(db *sql.DB, owner string) ([]Project, error) {
	rows, err := db.Query(
		`SELECT id, owner, name, site_url, api_key, created_at FROM projects WHERE owner = ? ORDER BY created_at DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Owner, &p.Name, &p.SiteURL, &p.APIKey, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and, via the schema's cascade, its visit
// history. Ownership is enforced by the handler guard, not here.
func DeleteProject(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanProject(row *sql.Row) (*Project, error) {
	p := &Project{}
	if err := row.Scan(&p.ID, &p.Owner, &p.Name, &p.SiteURL, &p.APIKey, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}
