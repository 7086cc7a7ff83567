package rank

import (
	"strings"

	"jobsearch-engine/internal/store"
)

// KeywordScorer scores a job by the share of resume skills that appear
// in the job's title or description. Score is 0..1.
type KeywordScorer struct{}

func (KeywordScorer) Score(job store.Job, resume store.Resume) (float64, []string) {
	skills := resume.Skills
	if len(skills) == 0 {
		skills = tokenizeSkills(resume.Content)
	}
	if len(skills) == 0 {
		return 0, nil
	}

	text := strings.ToLower(job.Title + " " + job.Description)

	var matched []string
	for _, s := range skills {
		n := strings.ToLower(strings.TrimSpace(s))
		if n == "" {
			continue
		}
		if strings.Contains(text, n) {
			matched = append(matched, s)
		}
	}
	return float64(len(matched)) / float64(len(skills)), uniq(matched)
}

// tokenizeSkills falls back to plain words when a resume carries no
// explicit skill list. Short words are noise.
func tokenizeSkills(content string) []string {
	var out []string
	seen := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(content)) {
		w = strings.Trim(w, ".,;:!()\"'")
		if len(w) < 4 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
