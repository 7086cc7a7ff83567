package scrape

import (
	"time"

	"jobsearch-engine/internal/domain"
)

// FallbackSource marks listings substituted when a board returned nothing.
const FallbackSource = "MockDB"

// FallbackListings is the substitute result set used when a fetch fails or
// comes back empty, so the caller always receives something to show. Each
// call returns a fresh copy stamped with the requested site.
func FallbackListings(site string) []domain.Listing {
	posted := func(daysAgo int) *time.Time {
		t := time.Now().AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour)
		return &t
	}
	return []domain.Listing{
		{
			Title:    "Scrum Master",
			Company:  "TechCorp",
			Location: "Remote",
			URL:      "https://techcorp.com/jobs/scrum-master",
			Site:     site,
			Source:   FallbackSource,
			PostedAt: posted(1),
		},
		{
			Title:    "Agile Coach",
			Company:  "Velocity Labs",
			Location: "New York, NY",
			URL:      "https://velocitylabs.com/jobs/agile-coach",
			Site:     site,
			Source:   FallbackSource,
			PostedAt: posted(2),
		},
	}
}
