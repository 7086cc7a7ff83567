package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsearch-engine/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func sampleListing(url string) domain.Listing {
	now := time.Now().UTC()
	return domain.Listing{
		Title:     "Scrum Master",
		Company:   "Acme",
		Location:  "Remote, USA",
		JobType:   "fulltime",
		URL:       url,
		Site:      "indeed",
		Source:    "indeed",
		SalaryMin: 90000,
		SalaryMax: 120000,
		Currency:  "USD",
		PostedAt:  &now,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestInsertListingDedupesOnURL(t *testing.T) {
	db := openTestDB(t)

	added, err := InsertListingIfNew(db.Pool, sampleListing("https://x.example/jobs/1"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = InsertListingIfNew(db.Pool, sampleListing("https://x.example/jobs/1"))
	require.NoError(t, err)
	assert.False(t, added, "same job_url must be ignored")

	added, err = InsertListingIfNew(db.Pool, sampleListing("https://x.example/jobs/2"))
	require.NoError(t, err)
	assert.True(t, added)

	jobs, err := ListJobs(context.Background(), db.Pool, ListJobsOpts{})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestListJobsFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	l1 := sampleListing("https://x.example/1")
	l2 := sampleListing("https://x.example/2")
	l2.Company = "Globex"
	l2.Location = "Austin, TX"
	l2.Site = "linkedin"
	for _, l := range []domain.Listing{l1, l2} {
		_, err := InsertListingIfNew(db.Pool, l)
		require.NoError(t, err)
	}

	got, err := ListJobs(ctx, db.Pool, ListJobsOpts{Company: "glob"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Globex", got[0].Company)

	got, err = ListJobs(ctx, db.Pool, ListJobsOpts{Site: "linkedin"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = ListJobs(ctx, db.Pool, ListJobsOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetJobNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := GetJob(context.Background(), db.Pool, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplicationLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := InsertListingIfNew(db.Pool, sampleListing("https://x.example/1"))
	require.NoError(t, err)
	jobs, err := ListJobs(ctx, db.Pool, ListJobsOpts{})
	require.NoError(t, err)
	jobID := jobs[0].ID

	app, err := CreateApplication(ctx, db.Pool, jobID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "saved", app.Status)

	status := "applied"
	notes := "sent via referral"
	score := 0.82
	got, err := UpdateApplication(ctx, db.Pool, app.ID, ApplicationUpdate{
		Status: &status, Notes: &notes, MatchScore: &score,
	})
	require.NoError(t, err)
	assert.Equal(t, "applied", got.Status)
	assert.Equal(t, "sent via referral", got.Notes)
	assert.Equal(t, 0.82, got.MatchScore)

	list, err := ListApplications(ctx, db.Pool, "applied")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = ListApplications(ctx, db.Pool, "rejected")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateApplicationRequiresExistingJob(t *testing.T) {
	db := openTestDB(t)
	_, err := CreateApplication(context.Background(), db.Pool, 42, nil, "saved")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateApplicationRejectsEmptyAndBadStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := UpdateApplication(ctx, db.Pool, 1, ApplicationUpdate{})
	assert.Error(t, err)

	bad := "ghosted"
	_, err = UpdateApplication(ctx, db.Pool, 1, ApplicationUpdate{Status: &bad})
	assert.Error(t, err)

	good := "applied"
	_, err = UpdateApplication(ctx, db.Pool, 999, ApplicationUpdate{Status: &good})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r, err := InsertResume(ctx, db.Pool, "main", "ten years of agile", []string{"scrum", "kanban"})
	require.NoError(t, err)
	require.NotZero(t, r.ID)

	got, err := GetResume(ctx, db.Pool, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"scrum", "kanban"}, got.Skills)

	all, err := ListResumes(ctx, db.Pool)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = GetResume(ctx, db.Pool, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobSkillsReplace(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := InsertListingIfNew(db.Pool, sampleListing("https://x.example/1"))
	require.NoError(t, err)
	jobs, _ := ListJobs(ctx, db.Pool, ListJobsOpts{})
	id := jobs[0].ID

	require.NoError(t, ReplaceJobSkills(ctx, db.Pool, id, []string{"go", "sql", ""}))
	skills, err := JobSkills(ctx, db.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, skills)

	require.NoError(t, ReplaceJobSkills(ctx, db.Pool, id, []string{"agile"}))
	skills, _ = JobSkills(ctx, db.Pool, id)
	assert.Equal(t, []string{"agile"}, skills)
}

func TestCleanupOldJobs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, url := range []string{"https://x.example/1", "https://x.example/2", "https://x.example/3"} {
		_, err := InsertListingIfNew(db.Pool, sampleListing(url))
		require.NoError(t, err)
	}
	jobs, err := ListJobs(ctx, db.Pool, ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	// age two of them past the retention window
	_, err = db.Pool.Exec(`
UPDATE jobs SET scraped_at = strftime('%Y-%m-%dT%H:%M:%SZ','now','-120 days')
WHERE id IN (?, ?);`, jobs[0].ID, jobs[1].ID)
	require.NoError(t, err)

	// an application pins its job regardless of age
	_, err = CreateApplication(ctx, db.Pool, jobs[0].ID, nil, "applied")
	require.NoError(t, err)

	deleted, err := CleanupOldJobs(db.Pool)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := ListJobs(ctx, db.Pool, ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, j := range remaining {
		assert.NotEqual(t, jobs[1].ID, j.ID, "old unpinned job must be gone")
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := InsertListingIfNew(db.Pool, sampleListing("https://x.example/1"))
	require.NoError(t, err)
	l := sampleListing("https://x.example/2")
	l.Site = "linkedin"
	_, err = InsertListingIfNew(db.Pool, l)
	require.NoError(t, err)

	jobs, _ := ListJobs(ctx, db.Pool, ListJobsOpts{})
	_, err = CreateApplication(ctx, db.Pool, jobs[0].ID, nil, "applied")
	require.NoError(t, err)

	s, err := GetStats(ctx, db.Pool)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalJobs)
	assert.Equal(t, 1, s.TotalApplications)
	assert.Equal(t, 1, s.JobsBySite["indeed"])
	assert.Equal(t, 1, s.JobsBySite["linkedin"])
	assert.Equal(t, 1, s.ApplicationsByStatus["applied"])
}
