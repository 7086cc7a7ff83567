package util

import (
	"regexp"
	"strconv"
	"strings"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// InferJobType pulls a coarse employment type out of free text.
func InferJobType(text string) string {
	blob := strings.ToLower(text)

	switch {
	case strings.Contains(blob, "full-time") || strings.Contains(blob, "full time") || strings.Contains(blob, "fulltime"):
		return "fulltime"
	case strings.Contains(blob, "part-time") || strings.Contains(blob, "part time"):
		return "parttime"
	case strings.Contains(blob, "contract"):
		return "contract"
	case strings.Contains(blob, "intern"):
		return "internship"
	default:
		return ""
	}
}

var salaryRangeRe = regexp.MustCompile(`\$(\d[\d,]*(?:\.\d+)?[kK]?)(?:\s*(?:-|–|to)\s*\$?(\d[\d,]*(?:\.\d+)?[kK]?))?`)

// ParseSalaryRange scans free text for a dollar amount or range like
// "$90,000 - $120,000" or "$95k". A single amount fills both bounds.
func ParseSalaryRange(text string) (lo, hi float64, currency string, ok bool) {
	m := salaryRangeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, "", false
	}
	lo = ParseSalary(m[1])
	if lo == 0 {
		return 0, 0, "", false
	}
	hi = lo
	if m[2] != "" {
		if v := ParseSalary(m[2]); v >= lo {
			hi = v
		}
	}
	return lo, hi, "USD", true
}

// ParseSalary extracts a numeric salary bound from strings like "$120,000",
// "120k" or "120000". Returns 0 when nothing parseable is found.
func ParseSalary(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(CleanText(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	mult := 1.0
	if strings.HasSuffix(strings.ToLower(s), "k") {
		mult = 1000
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * mult
}
