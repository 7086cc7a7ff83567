package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Senior Go Engineer", CleanText("  Senior Go \n Engineer  "))
	assert.Equal(t, "", CleanText("   "))
}

func TestNormalizeLocation(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Location: New York, NY", "New York, NY"},
		{"Austin, TX, Austin, TX", "Austin, TX"},
		{"  Remote ", "Remote"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeLocation(c.in), "input %q", c.in)
	}
}

func TestInferJobType(t *testing.T) {
	assert.Equal(t, "fulltime", InferJobType("Full-Time position"))
	assert.Equal(t, "contract", InferJobType("6 month contract role"))
	assert.Equal(t, "internship", InferJobType("Summer Intern"))
	assert.Equal(t, "", InferJobType("just a job"))
}

func TestParseSalary(t *testing.T) {
	assert.Equal(t, 120000.0, ParseSalary("$120,000"))
	assert.Equal(t, 95000.0, ParseSalary("95k"))
	assert.Equal(t, 0.0, ParseSalary("competitive"))
}

func TestParseSalaryRange(t *testing.T) {
	lo, hi, cur, ok := ParseSalaryRange("Pay: $90,000 - $120,000 per year")
	assert.True(t, ok)
	assert.Equal(t, 90000.0, lo)
	assert.Equal(t, 120000.0, hi)
	assert.Equal(t, "USD", cur)

	lo, hi, _, ok = ParseSalaryRange("Up to $95k DOE")
	assert.True(t, ok)
	assert.Equal(t, 95000.0, lo)
	assert.Equal(t, hi, lo)

	_, _, _, ok = ParseSalaryRange("competitive compensation")
	assert.False(t, ok)
}

func TestCanonicalizeURL(t *testing.T) {
	in := "https://Boards.Example.com/jobs/123?utm_source=feed&ref=abc#apply"
	got := CanonicalizeURL(in)
	assert.Equal(t, "https://boards.example.com/jobs/123?ref=abc", got)
	assert.Equal(t, "", CanonicalizeURL("   "))
}
