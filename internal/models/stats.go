package models

import (
	"database/sql"
	"fmt"
)

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalVisits      int         `json:"totalVisits"`
	UniqueVisitors   int         `json:"uniqueVisitors"`
	Browsers         []NameCount `json:"browsers"`
	OperatingSystems []NameCount `json:"operatingSystems"`
	TopCountries     []NameCount `json:"topCountries"`
}

const topCountriesLimit = 10

func VisitCount(db *sql.DB, projectID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM visits WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

// UniqueVisitorCount counts distinct client addresses. The address is the
// canonical uniqueness key for a project's visitors.
func UniqueVisitorCount(db *sql.DB, projectID int64) (int, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(DISTINCT ip) FROM visits WHERE project_id = ? AND ip != ''`,
		projectID,
	).Scan(&count)
	return count, err
}

// ProjectSummary computes the rollup statistics for a project on demand.
func ProjectSummary(db *sql.DB, projectID int64) (*Summary, error) {
	total, err := VisitCount(db, projectID)
	if err != nil {
		return nil, fmt.Errorf("total visits: %w", err)
	}
	unique, err := UniqueVisitorCount(db, projectID)
	if err != nil {
		return nil, fmt.Errorf("unique visitors: %w", err)
	}
	browsers, err := groupedCounts(db, projectID, "browser", 0)
	if err != nil {
		return nil, fmt.Errorf("browsers: %w", err)
	}
	oses, err := groupedCounts(db, projectID, "os", 0)
	if err != nil {
		return nil, fmt.Errorf("operating systems: %w", err)
	}
	countries, err := groupedCounts(db, projectID, "country", topCountriesLimit)
	if err != nil {
		return nil, fmt.Errorf("top countries: %w", err)
	}

	return &Summary{
		TotalVisits:      total,
		UniqueVisitors:   unique,
		Browsers:         browsers,
		OperatingSystems: oses,
		TopCountries:     countries,
	}, nil
}

// groupedCounts aggregates visits by one column, count descending with the
// column value as a stable tiebreak. limit <= 0 means unbounded.
func groupedCounts(db *sql.DB, projectID int64, column string, limit int) ([]NameCount, error) {
	query := fmt.Sprintf(
		`SELECT %s, COUNT(*) AS cnt FROM visits WHERE project_id = ? AND %s != '' GROUP BY %s ORDER BY cnt DESC, %s ASC`,
		column, column, column, column,
	)
	args := []any{projectID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []NameCount{}
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		results = append(results, nc)
	}
	return results, rows.Err()
}

// VisitCountsForProjects returns per-project visit totals for the owner's
// project listing.
func VisitCountsForProjects(db *sql.DB, ids []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	placeholders := "?"
	args := make([]any, len(ids))
	args[0] = ids[0]
	for i := 1; i < len(ids); i++ {
		placeholders += ",?"
		args[i] = ids[i]
	}

	query := fmt.Sprintf(`SELECT project_id, COUNT(*) FROM visits WHERE project_id IN (%s) GROUP BY project_id`, placeholders)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("visit counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan visit count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}
