package store

import (
	"context"
	"database/sql"
)

type Stats struct {
	TotalJobs            int            `json:"total_jobs"`
	TotalApplications    int            `json:"total_applications"`
	TotalResumes         int            `json:"total_resumes"`
	JobsBySite           map[string]int `json:"jobs_by_site"`
	ApplicationsByStatus map[string]int `json:"applications_by_status"`
}

func GetStats(ctx context.Context, db *sql.DB) (Stats, error) {
	s := Stats{
		JobsBySite:           map[string]int{},
		ApplicationsByStatus: map[string]int{},
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&s.TotalJobs); err != nil {
		return s, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications;`).Scan(&s.TotalApplications); err != nil {
		return s, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes;`).Scan(&s.TotalResumes); err != nil {
		return s, err
	}

	if err := groupCount(ctx, db, `SELECT site, COUNT(*) FROM jobs GROUP BY site;`, s.JobsBySite); err != nil {
		return s, err
	}
	if err := groupCount(ctx, db, `SELECT status, COUNT(*) FROM applications GROUP BY status;`, s.ApplicationsByStatus); err != nil {
		return s, err
	}
	return s, nil
}

func groupCount(ctx context.Context, db *sql.DB, query string, into map[string]int) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}
