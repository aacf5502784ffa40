package source

import (
	"net/url"
	"strings"
)

// Rating is the credibility/bias pair attached to persisted article records.
type Rating struct {
	Credibility int
	Bias        string
}

// DefaultRating is used when an outlet appears in neither the registry nor
// the fallback table.
var DefaultRating = Rating{Credibility: 70, Bias: "unknown"}

// One canonical row per outlet domain. Registry entries take precedence over
// this table.
var domainRatings = map[string]Rating{
	"npr.org":            {Credibility: 92, Bias: "center-left"},
	"pbs.org":            {Credibility: 93, Bias: "center"},
	"apnews.com":         {Credibility: 95, Bias: "center"},
	"reuters.com":        {Credibility: 95, Bias: "center"},
	"thehill.com":        {Credibility: 85, Bias: "center"},
	"politico.com":       {Credibility: 82, Bias: "center-left"},
	"rollcall.com":       {Credibility: 84, Bias: "center"},
	"govexec.com":        {Credibility: 80, Bias: "center"},
	"scotusblog.com":     {Credibility: 88, Bias: "center"},
	"whitehouse.gov":     {Credibility: 75, Bias: "government"},
	"congress.gov":       {Credibility: 78, Bias: "government"},
	"c-span.org":         {Credibility: 90, Bias: "center"},
	"nytimes.com":        {Credibility: 88, Bias: "center-left"},
	"wsj.com":            {Credibility: 88, Bias: "center-right"},
	"washingtonpost.com": {Credibility: 87, Bias: "center-left"},
	"axios.com":          {Credibility: 83, Bias: "center"},
	"thedispatch.com":    {Credibility: 80, Bias: "center-right"},
}

var paywalledDomains = map[string]bool{
	"nytimes.com":        true,
	"wsj.com":            true,
	"washingtonpost.com": true,
	"thedispatch.com":    true,
}

// Rate resolves the credibility/bias for an article URL or outlet name:
// registry match first, then the fallback domain table, then DefaultRating.
func (r *Registry) Rate(nameOrURL string) Rating {
	needle := strings.ToLower(strings.TrimSpace(nameOrURL))
	for _, s := range r.sources {
		if strings.Contains(needle, strings.ToLower(s.Name)) || strings.Contains(needle, Domain(s.URL)) {
			return Rating{Credibility: s.Credibility, Bias: registryBias(s.URL)}
		}
	}
	if rating, ok := lookupDomain(Domain(needle)); ok {
		return rating
	}
	return DefaultRating
}

func registryBias(sourceURL string) string {
	if rating, ok := lookupDomain(Domain(sourceURL)); ok {
		return rating.Bias
	}
	return DefaultRating.Bias
}

// lookupDomain matches the host or any registrable parent against the table,
// so feeds.npr.org resolves to the npr.org row.
func lookupDomain(host string) (Rating, bool) {
	for host != "" {
		if rating, ok := domainRatings[host]; ok {
			return rating, true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return Rating{}, false
}

// Paywalled reports whether the outlet behind the URL is known to paywall.
func Paywalled(articleURL string) bool {
	host := Domain(articleURL)
	for host != "" {
		if paywalledDomains[host] {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return false
}

// Domain extracts the registrable host from a URL, dropping the www prefix.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
