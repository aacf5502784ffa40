package source

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"civicnews/internal/model"
)

// The compiled feed list. Adding or removing an outlet means editing this
// slice; the pipeline never special-cases individual sources.
var feeds = []model.FeedSource{
	// Tier 1: national outlets with dedicated politics desks.
	{Name: "NPR Politics", URL: "https://feeds.npr.org/1014/rss.xml", Category: "politics", Type: model.FeedTypeRSS, Tier: 1, Credibility: 92},
	{Name: "PBS NewsHour Politics", URL: "https://www.pbs.org/newshour/feeds/rss/politics", Category: "politics", Type: model.FeedTypeRSS, Tier: 1, Credibility: 93},
	{Name: "AP Politics", URL: "https://apnews.com/hub/politics/rss", Category: "politics", Type: model.FeedTypeRSS, Tier: 1, Credibility: 95},
	{Name: "The Hill", URL: "https://thehill.com/homenews/feed/", Category: "congress", Type: model.FeedTypeRSS, Tier: 1, Credibility: 85},

	// Tier 2: beltway trade press.
	{Name: "Politico", URL: "https://www.politico.com/rss/politics-news.xml", Category: "politics", Type: model.FeedTypeRSS, Tier: 2, Credibility: 82},
	{Name: "Roll Call", URL: "https://rollcall.com/feed/", Category: "congress", Type: model.FeedTypeRSS, Tier: 2, Credibility: 84},
	{Name: "Government Executive", URL: "https://www.govexec.com/rss/all/", Category: "agencies", Type: model.FeedTypeRSS, Tier: 2, Credibility: 80},
	{Name: "SCOTUSblog", URL: "https://www.scotusblog.com/feed/", Category: "courts", Type: model.FeedTypeRSS, Tier: 2, Credibility: 88},

	// Tier 3: official publications, sitemap-indexed.
	{Name: "White House", URL: "https://www.whitehouse.gov/briefing-room/sitemap.xml", Category: "executive", Type: model.FeedTypeSitemap, Tier: 3, Credibility: 75},
	{Name: "Congress.gov", URL: "https://www.congress.gov/sitemap/news.xml", Category: "congress", Type: model.FeedTypeSitemap, Tier: 3, Credibility: 78},
	{Name: "C-SPAN", URL: "https://www.c-span.org/rss/?output=rss", Category: "politics", Type: model.FeedTypeRSS, Tier: 3, Credibility: 90},
}

// Registry is the validated, immutable source list.
type Registry struct {
	sources []model.FeedSource
}

// Load validates the compiled feed list and returns the registry. A bad entry
// is a programming error and fails startup.
func Load() (*Registry, error) {
	return NewRegistry(feeds)
}

// NewRegistry builds a registry from an explicit source list, validating
// every entry and ordering by tier.
func NewRegistry(sources []model.FeedSource) (*Registry, error) {
	for _, s := range sources {
		if err := validate(s); err != nil {
			return nil, fmt.Errorf("feed source %q: %w", s.Name, err)
		}
	}
	sorted := make([]model.FeedSource, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tier < sorted[j].Tier })
	return &Registry{sources: sorted}, nil
}

func validate(s model.FeedSource) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("empty name")
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q", s.URL)
	}
	if s.Type != model.FeedTypeRSS && s.Type != model.FeedTypeSitemap {
		return fmt.Errorf("unknown type %q", s.Type)
	}
	if s.Tier < 1 || s.Tier > 3 {
		return fmt.Errorf("tier %d out of range", s.Tier)
	}
	if s.Credibility < 0 || s.Credibility > 100 {
		return fmt.Errorf("credibility %d out of range", s.Credibility)
	}
	return nil
}

// All returns the sources in tier order.
func (r *Registry) All() []model.FeedSource {
	out := make([]model.FeedSource, len(r.sources))
	copy(out, r.sources)
	return out
}

func (r *Registry) Len() int {
	return len(r.sources)
}

// Filter narrows the registry by source-name and category tokens, preserving
// tier order. Empty filters match everything.
func (r *Registry) Filter(names, categories []string) []model.FeedSource {
	var out []model.FeedSource
	for _, s := range r.sources {
		if !matchToken(Slug(s.Name), names) && !matchToken(strings.ToLower(s.Name), names) {
			continue
		}
		if !matchToken(strings.ToLower(s.Category), categories) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchToken(value string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || t == "all" || t == value {
			return true
		}
	}
	return false
}

// Slug converts an outlet name into its stable identifier token.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
