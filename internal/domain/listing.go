package domain

import "time"

// Listing is one scraped job posting. The orchestrator treats it as opaque;
// only the store and the API layer look inside.
type Listing struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	JobType     string     `json:"job_type,omitempty"`
	URL         string     `json:"job_url"`
	Description string     `json:"description,omitempty"`
	SalaryMin   float64    `json:"salary_min,omitempty"`
	SalaryMax   float64    `json:"salary_max,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Site        string     `json:"site"`   // which board it came from
	Source      string     `json:"source"` // scrape/fallback provenance
	PostedAt    *time.Time `json:"date_posted,omitempty"`
}
