package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Resume struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Content   string   `json:"content,omitempty"`
	Skills    []string `json:"skills"`
	CreatedAt string   `json:"created_at"`
}

func InsertResume(ctx context.Context, db *sql.DB, name, content string, skills []string) (Resume, error) {
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, _ := json.Marshal(skills)
	now := time.Now().UTC().Format(time.RFC3339)

	res, err := db.ExecContext(ctx, `
INSERT INTO resumes (name, content, skills, created_at)
VALUES (?, ?, ?, ?);`, name, content, string(skillsJSON), now)
	if err != nil {
		return Resume{}, fmt.Errorf("insert resume: %w", err)
	}

	r := Resume{Name: name, Content: content, Skills: skills, CreatedAt: now}
	r.ID, _ = res.LastInsertId()
	return r, nil
}

func ListResumes(ctx context.Context, db *sql.DB) ([]Resume, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, name, content, skills, created_at
FROM resumes ORDER BY created_at DESC, id DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		var r Resume
		var skillsJSON string
		if err := rows.Scan(&r.ID, &r.Name, &r.Content, &skillsJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(skillsJSON), &r.Skills)
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetResume(ctx context.Context, db *sql.DB, id int64) (Resume, error) {
	var r Resume
	var skillsJSON string
	err := db.QueryRowContext(ctx, `
SELECT id, name, content, skills, created_at
FROM resumes WHERE id = ?;`, id).Scan(&r.ID, &r.Name, &r.Content, &skillsJSON, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}
	_ = json.Unmarshal([]byte(skillsJSON), &r.Skills)
	return r, nil
}
