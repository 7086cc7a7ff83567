package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobsearch-engine/internal/domain"
)

type Job struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	JobType     string  `json:"job_type,omitempty"`
	URL         string  `json:"job_url"`
	Description string  `json:"description,omitempty"`
	SalaryMin   float64 `json:"salary_min,omitempty"`
	SalaryMax   float64 `json:"salary_max,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Site        string  `json:"site"`
	Source      string  `json:"source"`
	DatePosted  string  `json:"date_posted,omitempty"`
	ScrapedAt   string  `json:"scraped_at"`
}

type ListJobsOpts struct {
	Limit    int
	Offset   int
	Company  string
	Location string
	Site     string
}

// InsertListingIfNew stores a scraped listing, deduplicating on job_url.
// Returns whether a new row was actually inserted.
func InsertListingIfNew(db *sql.DB, l domain.Listing) (added bool, err error) {
	posted := ""
	if l.PostedAt != nil {
		posted = l.PostedAt.UTC().Format(time.RFC3339)
	}
	// relies on unique index on job_url WHERE job_url != ''
	_, err = db.Exec(`
INSERT OR IGNORE INTO jobs
  (title, company, location, job_type, job_url, description,
   salary_min, salary_max, currency, site, source, date_posted, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		l.Title, l.Company, l.Location, l.JobType, l.URL, l.Description,
		l.SalaryMin, l.SalaryMax, l.Currency, l.Site, l.Source, posted,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}

	// changes() distinguishes a fresh insert from an IGNOREd duplicate.
	var changes int
	if e := db.QueryRow(`SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

func ListJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts) ([]Job, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var (
		where []string
		args  []any
	)
	if opts.Company != "" {
		where = append(where, "company LIKE ?")
		args = append(args, "%"+opts.Company+"%")
	}
	if opts.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+opts.Location+"%")
	}
	if opts.Site != "" {
		where = append(where, "site = ?")
		args = append(args, opts.Site)
	}

	query := `
SELECT id, title, company, location, job_type, job_url, description,
       salary_min, salary_max, currency, site, source, date_posted, scraped_at
FROM jobs`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY scraped_at DESC, id DESC\nLIMIT ? OFFSET ?;"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location, &j.JobType, &j.URL,
			&j.Description, &j.SalaryMin, &j.SalaryMax, &j.Currency,
			&j.Site, &j.Source, &j.DatePosted, &j.ScrapedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func GetJob(ctx context.Context, db *sql.DB, id int64) (Job, error) {
	var j Job
	err := db.QueryRowContext(ctx, `
SELECT id, title, company, location, job_type, job_url, description,
       salary_min, salary_max, currency, site, source, date_posted, scraped_at
FROM jobs WHERE id = ?;`, id).Scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.JobType, &j.URL,
		&j.Description, &j.SalaryMin, &j.SalaryMax, &j.Currency,
		&j.Site, &j.Source, &j.DatePosted, &j.ScrapedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, err
	}
	return j, nil
}

// ReplaceJobSkills rewrites the skill rows attached to a job.
func ReplaceJobSkills(ctx context.Context, db *sql.DB, jobID int64, skills []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM job_skills WHERE job_id = ?;`, jobID); err != nil {
		return err
	}
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO job_skills (job_id, skill) VALUES (?, ?);`, jobID, s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func JobSkills(ctx context.Context, db *sql.DB, jobID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT skill FROM job_skills WHERE job_id = ? ORDER BY id;`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func CleanupOldJobs(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM jobs
WHERE scraped_at < datetime('now', '-3 months')
  AND id NOT IN (SELECT job_id FROM applications);
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
