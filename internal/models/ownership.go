package models

import (
	"database/sql"
	"fmt"
	"time"
)

// OwnershipToken is the one-time code a site owner must publish in a meta
// tag to prove control of a site URL.
type OwnershipToken struct {
	ID        int64     `json:"id"`
	SiteURL   string    `json:"siteUrl"`
	Code      string    `json:"code"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

func CreateOwnershipToken(db *sql.DB, siteURL, code string) (*OwnershipToken, error) {
	res, err := db.Exec(
		`INSERT INTO ownership_tokens (site_url, code, verified) VALUES (?, ?, 0)`,
		siteURL, code,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ownership token: %w", err)
	}
	id, _ := res.LastInsertId()
	return GetOwnershipTokenByID(db, id)
}

func GetOwnershipTokenByID(db *sql.DB, id int64) (*OwnershipToken, error) {
	row := db.QueryRow(`SELECT id, site_url, code, verified, created_at FROM ownership_tokens WHERE id = ?`, id)
	return scanOwnershipToken(row)
}

func GetOwnershipTokenByURL(db *sql.DB, siteURL string) (*OwnershipToken, error) {
	row := db.QueryRow(`SELECT id, site_url, code, verified, created_at FROM ownership_tokens WHERE site_url = ?`, siteURL)
	return scanOwnershipToken(row)
}

func MarkOwnershipVerified(db *sql.DB, id int64) error {
	res, err := db.Exec(`UPDATE ownership_tokens SET verified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanOwnershipToken(row *sql.Row) (*OwnershipToken, error) {
	o := &OwnershipToken{}
	var verified int
	if err := row.Scan(&o.ID, &o.SiteURL, &o.Code, &verified, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Verified = verified == 1
	return o, nil
}
