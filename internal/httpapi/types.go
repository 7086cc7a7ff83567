package httpapi

import "jobsearch-engine/internal/domain"

type searchRequest struct {
	SearchTerm    string   `json:"search_term"`
	Location      string   `json:"location"`
	Sites         []string `json:"sites"`
	ResultsWanted int      `json:"results_wanted"`
	HoursOld      int      `json:"hours_old"`
}

type siteResult struct {
	Count    int              `json:"count"`
	Fallback bool             `json:"fallback"`
	Error    string           `json:"error,omitempty"`
	Jobs     []domain.Listing `json:"jobs"`
}

type searchResponse struct {
	Success   bool                  `json:"success"`
	TotalJobs int                   `json:"total_jobs"`
	Results   map[string]siteResult `json:"results"`
	Timestamp string                `json:"timestamp"`
}
