package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsearch-engine/internal/scrape/types"
)

func TestDefaultPassesValidation(t *testing.T) {
	cfg := Default()
	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK(), "errors: %v", res.Errors)
}

func TestEnsureUserConfigBootstrapsAndRoundTrips(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 38471, cfg.App.Port)
	assert.Equal(t, []string{"indeed", "linkedin"}, cfg.Scrape.DefaultSites)
	assert.Equal(t, 3, cfg.Scrape.Backoff.MaxRetries)

	// second call must not clobber the existing file
	cfg.App.Port = 40000
	require.NoError(t, SaveAtomic(path, cfg))
	again, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	cfg2, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40000, cfg2.App.Port)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	require.NoError(t, SaveAtomic(path, Default()))
	cfg := Default()
	cfg.App.Port = 9999
	require.NoError(t, SaveAtomic(path, cfg))

	_, err := os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Scrape.DefaultSites = []string{" Indeed ", "indeed", "linkedin", ""}
	cfg.Searches = []Search{
		{SearchTerm: "  scrum master ", Sites: []string{"glassdoor"}},
		{SearchTerm: "", Sites: []string{"monster"}},
	}

	out, res := NormalizeAndValidate(cfg)
	assert.Equal(t, []string{"indeed", "linkedin"}, out.Scrape.DefaultSites)
	assert.Equal(t, "scrum master", out.Searches[0].SearchTerm)
	assert.False(t, res.OK())
	assert.Len(t, res.Errors, 2) // missing search_term, unknown site
}

func TestValidateRanges(t *testing.T) {
	cfg := Default()
	cfg.App.Port = 0
	cfg.Scrape.ResultsWanted = 500
	cfg.Scrape.HoursOld = 0
	cfg.Scrape.Backoff.ExponentialBase = 0.5

	_, res := NormalizeAndValidate(cfg)
	require.False(t, res.OK())
	assert.Len(t, res.Errors, 4)
}

func TestRatePoliciesDropUnknownSites(t *testing.T) {
	cfg := Default()
	cfg.Scrape.Sites["monster"] = SiteRate{MaxPerMinute: 5, MaxPerHour: 50, MinDelaySeconds: 1}

	pols := cfg.RatePolicies()
	_, ok := pols[types.Site("monster")]
	assert.False(t, ok, "unknown site entries must be dropped")
	assert.Len(t, pols, len(cfg.Scrape.Sites)-1)

	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "monster")
}

func TestPolicyConversions(t *testing.T) {
	cfg := Default()
	pols := cfg.RatePolicies()
	ind, ok := pols[types.SiteIndeed]
	require.True(t, ok)
	assert.Equal(t, 10, ind.MaxPerMinute)
	assert.Equal(t, 2*time.Second, ind.MinDelay)

	bp := cfg.BackoffPolicy()
	assert.Equal(t, 3, bp.MaxRetries)
	assert.Equal(t, time.Second, bp.InitialDelay)
	assert.Equal(t, time.Minute, bp.MaxDelay)
	assert.True(t, bp.Jitter)

	assert.Equal(t, 2*time.Second, cfg.BatchPause())
}
