package cache

import (
	"time"

	"github.com/google/uuid"

	"civicnews/internal/model"
)

// DefaultFallback builds the static article list served when every source
// fails or nothing relevant survives. Each call stamps the articles with the
// current time; the result is never written to either cache tier.
func DefaultFallback() []model.Article {
	now := time.Now()
	fallback := []model.Article{
		{
			Title:       "How a Bill Becomes Law: The Congressional Process Explained",
			Description: "A walkthrough of the federal legislative process, from introduction and committee markup to floor votes and the president's desk.",
			URL:         "https://www.congress.gov/legislative-process",
			Source:      model.SourceRef{ID: "congress-gov", Name: "Congress.gov"},
			Category:    "congress",
			Relevance:   60,
			Tier:        3,
			Credibility: 78,
		},
		{
			Title:       "Understanding the Supreme Court's Current Term",
			Description: "An overview of the cases before the Supreme Court this term and what the rulings could mean for federal law.",
			URL:         "https://www.scotusblog.com/case-files/terms",
			Source:      model.SourceRef{ID: "scotusblog", Name: "SCOTUSblog"},
			Category:    "courts",
			Relevance:   55,
			Tier:        2,
			Credibility: 88,
		},
		{
			Title:       "What the Executive Branch Does Between Elections",
			Description: "How executive orders, agency rulemaking, and the federal budget process shape policy outside the legislative calendar.",
			URL:         "https://www.whitehouse.gov/administration",
			Source:      model.SourceRef{ID: "white-house", Name: "White House"},
			Category:    "executive",
			Relevance:   50,
			Tier:        3,
			Credibility: 75,
		},
	}
	for i := range fallback {
		fallback[i].ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(fallback[i].URL)).String()
		fallback[i].PublishedAt = now
	}
	return fallback
}
