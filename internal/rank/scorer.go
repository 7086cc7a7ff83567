package rank

import "jobsearch-engine/internal/store"

// Scorer rates how well a job fits a candidate's resume.
type Scorer interface {
	Score(job store.Job, resume store.Resume) (score float64, matched []string)
}
