package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Application statuses move saved -> applied -> interviewing -> offer/rejected.
var ValidStatuses = map[string]bool{
	"saved":        true,
	"applied":      true,
	"interviewing": true,
	"offer":        true,
	"rejected":     true,
}

type Application struct {
	ID         int64   `json:"id"`
	JobID      int64   `json:"job_id"`
	ResumeID   *int64  `json:"resume_id,omitempty"`
	Status     string  `json:"status"`
	MatchScore float64 `json:"match_score"`
	Notes      string  `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// ApplicationUpdate carries the fields a PATCH may change; nil means
// leave as-is.
type ApplicationUpdate struct {
	Status     *string
	Notes      *string
	MatchScore *float64
}

func CreateApplication(ctx context.Context, db *sql.DB, jobID int64, resumeID *int64, status string) (Application, error) {
	if status == "" {
		status = "saved"
	}
	if !ValidStatuses[status] {
		return Application{}, fmt.Errorf("invalid status %q", status)
	}
	if _, err := GetJob(ctx, db, jobID); err != nil {
		return Application{}, fmt.Errorf("job %d: %w", jobID, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
INSERT INTO applications (job_id, resume_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?);`, jobID, resumeID, status, now, now)
	if err != nil {
		return Application{}, fmt.Errorf("create application: %w", err)
	}

	a := Application{JobID: jobID, ResumeID: resumeID, Status: status, CreatedAt: now, UpdatedAt: now}
	a.ID, _ = res.LastInsertId()
	return a, nil
}

func ListApplications(ctx context.Context, db *sql.DB, status string) ([]Application, error) {
	query := `
SELECT id, job_id, resume_id, status, match_score, notes, created_at, updated_at
FROM applications`
	var args []any
	if status != "" {
		query += "\nWHERE status = ?"
		args = append(args, status)
	}
	query += "\nORDER BY updated_at DESC, id DESC;"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		var resumeID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.JobID, &resumeID, &a.Status,
			&a.MatchScore, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if resumeID.Valid {
			a.ResumeID = &resumeID.Int64
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func GetApplication(ctx context.Context, db *sql.DB, id int64) (Application, error) {
	var a Application
	var resumeID sql.NullInt64
	err := db.QueryRowContext(ctx, `
SELECT id, job_id, resume_id, status, match_score, notes, created_at, updated_at
FROM applications WHERE id = ?;`, id).Scan(&a.ID, &a.JobID, &resumeID,
		&a.Status, &a.MatchScore, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, err
	}
	if resumeID.Valid {
		a.ResumeID = &resumeID.Int64
	}
	return a, nil
}

func UpdateApplication(ctx context.Context, db *sql.DB, id int64, upd ApplicationUpdate) (Application, error) {
	var (
		sets []string
		args []any
	)
	if upd.Status != nil {
		if !ValidStatuses[*upd.Status] {
			return Application{}, fmt.Errorf("invalid status %q", *upd.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if upd.MatchScore != nil {
		sets = append(sets, "match_score = ?")
		args = append(args, *upd.MatchScore)
	}
	if len(sets) == 0 {
		return Application{}, errors.New("no fields to update")
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	res, err := db.ExecContext(ctx,
		"UPDATE applications SET "+strings.Join(sets, ", ")+" WHERE id = ?;", args...)
	if err != nil {
		return Application{}, fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Application{}, ErrNotFound
	}
	return GetApplication(ctx, db, id)
}
