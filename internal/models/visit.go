package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Visit struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	VisitorID string    `json:"visitorId,omitempty"`
	IP        string    `json:"ip"`
	Country   string    `json:"country"`
	Region    string    `json:"region"`
	City      string    `json:"city"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	UserAgent string    `json:"ua"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer"`
	CreatedAt time.Time `json:"createdAt"`
}

func InsertVisit(db *sql.DB, v *Visit) error {
	res, err := db.Exec(
		`INSERT INTO visits (project_id, visitor_id, ip, country, region, city, latitude, longitude, user_agent, browser, os, device, path, referrer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ProjectID, v.VisitorID, v.IP, v.Country, v.Region, v.City, v.Latitude, v.Longitude,
		v.UserAgent, v.Browser, v.OS, v.Device, v.Path, v.Referrer, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	id, _ := res.LastInsertId()
	v.ID = id
	return nil
}

// ListVisits returns one page of a project's visit history, newest first,
// along with the total count.
func ListVisits(db *sql.DB, projectID int64, page, pageSize int) ([]Visit, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM visits WHERE project_id = ?`, projectID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}

	rows, err := db.Query(
		`SELECT id, project_id, visitor_id, ip, country, region, city, latitude, longitude, user_agent, browser, os, device, path, referrer, created_at
		 FROM visits WHERE project_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		projectID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(
			&v.ID, &v.ProjectID, &v.VisitorID, &v.IP, &v.Country, &v.Region, &v.City,
			&v.Latitude, &v.Longitude, &v.UserAgent, &v.Browser, &v.OS, &v.Device,
			&v.Path, &v.Referrer, &v.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}
