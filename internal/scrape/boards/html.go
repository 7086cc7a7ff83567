package boards

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/scrape/types"
	"jobsearch-engine/internal/scrape/util"
)

// selectors describes how to pull job cards out of a board's search page.
type selectors struct {
	searchPath string // sprintf pattern: query, location
	card       string
	title      string
	company    string
	location   string
	link       string // empty means the card itself is the anchor
	snippet    string
}

var siteSelectors = map[types.Site]selectors{
	types.SiteIndeed: {
		searchPath: "/jobs?q=%s&l=%s",
		card:       "div.job_seen_beacon",
		title:      "h2.jobTitle span[title], h2.jobTitle span",
		company:    "[data-testid='company-name']",
		location:   "[data-testid='text-location']",
		link:       "h2.jobTitle a",
		snippet:    "div.job-snippet",
	},
	types.SiteLinkedIn: {
		searchPath: "/jobs/search?keywords=%s&location=%s",
		card:       "div.base-search-card",
		title:      "h3.base-search-card__title",
		company:    "h4.base-search-card__subtitle",
		location:   "span.job-search-card__location",
		link:       "a.base-card__full-link",
	},
	types.SiteGlassdoor: {
		searchPath: "/Job/jobs.htm?sc.keyword=%s&locKeyword=%s",
		card:       "li[data-test='jobListing']",
		title:      "a[data-test='job-title']",
		company:    "span.EmployerProfile_compactEmployerName__9MGcV, div.employer-name",
		location:   "div[data-test='emp-location']",
		link:       "a[data-test='job-title']",
		snippet:    "div[data-test='descSnippet']",
	},
	types.SiteGoogle: {
		searchPath: "/search?q=%s+jobs+near+%s&ibp=htl;jobs",
		card:       "div.job-card, li.iFjolb",
		title:      "div.job-title, div.BjJfJf",
		company:    "div.job-company, div.vNEEBe",
		location:   "div.job-location, div.Qk80Jf",
		link:       "a",
	},
}

func (c *Client) fetchHTML(ctx context.Context, q types.Query) ([]domain.Listing, error) {
	sel, ok := siteSelectors[q.Site]
	if !ok {
		return nil, fmt.Errorf("no selectors for site %q", q.Site)
	}

	searchURL := c.base(q.Site) + fmt.Sprintf(sel.searchPath,
		url.QueryEscape(q.SearchTerm), url.QueryEscape(q.Location))

	res, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("%s get: %w", q.Site, err)
	}
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s parse: %w", q.Site, err)
	}

	baseURL, _ := url.Parse(searchURL)

	var out []domain.Listing
	doc.Find(sel.card).Each(func(_ int, card *goquery.Selection) {
		title := util.CleanText(card.Find(sel.title).First().Text())
		if title == "" {
			return
		}
		l := domain.Listing{
			Title:    title,
			Company:  util.CleanText(card.Find(sel.company).First().Text()),
			Location: util.NormalizeLocation(card.Find(sel.location).First().Text()),
		}
		if sel.snippet != "" {
			l.Description = util.CleanText(card.Find(sel.snippet).First().Text())
			l.JobType = util.InferJobType(l.Description)
			if lo, hi, cur, ok := util.ParseSalaryRange(l.Description); ok {
				l.SalaryMin, l.SalaryMax, l.Currency = lo, hi, cur
			}
		}
		l.URL = cardLink(card, sel.link, baseURL)
		out = append(out, l)
	})
	return out, nil
}

// cardLink resolves the card's href against the page URL so relative
// board links come out absolute.
func cardLink(card *goquery.Selection, linkSel string, base *url.URL) string {
	a := card
	if linkSel != "" {
		a = card.Find(linkSel).First()
	}
	href, ok := a.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
