package rss

import (
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"civicnews/internal/classify"
	"civicnews/internal/model"
)

// Parser turns raw feed text into RawFeedItems. Well-formed syndication
// documents go through gofeed; anything it chokes on falls back to tolerant
// block extraction, which trades strictness for coverage of the malformed
// feeds real outlets ship.
type Parser struct {
	strict *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{strict: gofeed.NewParser()}
}

var (
	itemBlockRe  = regexp.MustCompile(`(?is)<item\b.*?</item>`)
	entryBlockRe = regexp.MustCompile(`(?is)<entry\b.*?</entry>`)
	urlBlockRe   = regexp.MustCompile(`(?is)<url>.*?</url>`)
	atomLinkRe   = regexp.MustCompile(`(?is)<link[^>]*href="([^"]+)"`)
)

var (
	descriptionTags = []string{"description", "summary", "content:encoded", "content", "media:description"}
	dateTags        = []string{"pubDate", "published", "updated", "dc:date", "lastBuildDate"}
)

// Parse extracts items from raw feed text. It never returns an error: a body
// that yields nothing usable yields an empty slice.
func (p *Parser) Parse(raw string, src model.FeedSource) []model.RawFeedItem {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if src.Type == model.FeedTypeSitemap {
		return p.parseSitemap(raw, src)
	}
	items := p.parseStrict(raw, src)
	if len(items) == 0 {
		items = p.parseTolerant(raw, src)
	}
	return items
}

func (p *Parser) parseStrict(raw string, src model.FeedSource) []model.RawFeedItem {
	feed, err := p.strict.ParseString(raw)
	if err != nil {
		return nil
	}

	var items []model.RawFeedItem
	for _, it := range feed.Items {
		desc := it.Description
		if desc == "" {
			desc = it.Content
		}
		published := time.Now()
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}
		if item, ok := buildItem(it.Title, desc, it.Link, published, src.Name); ok {
			items = append(items, item)
		}
	}
	return items
}

func (p *Parser) parseTolerant(raw string, src model.FeedSource) []model.RawFeedItem {
	blocks := itemBlockRe.FindAllString(raw, -1)
	if len(blocks) == 0 {
		blocks = entryBlockRe.FindAllString(raw, -1)
	}

	var items []model.RawFeedItem
	for _, block := range blocks {
		title := firstTag(block, "title")
		desc := firstTag(block, descriptionTags...)
		link := extractLink(block)
		published := parseDate(firstTag(block, dateTags...))
		if item, ok := buildItem(title, desc, link, published, src.Name); ok {
			items = append(items, item)
		}
	}
	return items
}

// Sitemap feeds carry no titles or descriptions; only topically relevant URLs
// are kept and the title is synthesized from the last path segment.
func (p *Parser) parseSitemap(raw string, src model.FeedSource) []model.RawFeedItem {
	var items []model.RawFeedItem
	for _, block := range urlBlockRe.FindAllString(raw, -1) {
		loc := strings.TrimSpace(firstTag(block, "loc"))
		if !ValidLink(loc) {
			continue
		}
		slug := strings.ToLower(strings.Join(strings.Split(path.Base(strings.TrimSuffix(loc, "/")), "-"), " "))
		if !classify.MatchesTopic(slug) {
			continue
		}
		title := titleFromPath(loc)
		published := parseDate(firstTag(block, "lastmod"))
		if item, ok := buildItem(title, synthesizeDescription(title), loc, published, src.Name); ok {
			items = append(items, item)
		}
	}
	return items
}

func titleFromPath(loc string) string {
	base := path.Base(strings.TrimSuffix(loc, "/"))
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return TitleCase(base)
}

// buildItem runs the cleanup pipeline and accepts the item only when title,
// description, and link all survive.
func buildItem(title, desc, link string, published time.Time, sourceName string) (model.RawFeedItem, bool) {
	cleanedTitle, ok := CleanTitle(title)
	if !ok {
		return model.RawFeedItem{}, false
	}
	cleanedDesc := CleanDescription(desc, cleanedTitle)
	link = strings.TrimSpace(link)
	if cleanedDesc == "" || !ValidLink(link) {
		return model.RawFeedItem{}, false
	}
	return model.RawFeedItem{
		Title:       cleanedTitle,
		Description: cleanedDesc,
		Link:        link,
		PublishedAt: published,
		SourceName:  sourceName,
	}, true
}

var (
	tagRes   = map[string]*regexp.Regexp{}
	tagResMu sync.Mutex
)

// tagRe matches <tag>...</tag>, preferring CDATA-wrapped content. Compiled
// once per tag name.
func tagRe(tag string) *regexp.Regexp {
	tagResMu.Lock()
	defer tagResMu.Unlock()
	if re, ok := tagRes[tag]; ok {
		return re
	}
	re := regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `[^>]*>\s*(?:<!\[CDATA\[(.*?)\]\]>|(.*?))\s*</` + regexp.QuoteMeta(tag) + `>`)
	tagRes[tag] = re
	return re
}

// firstTag returns the first non-empty value among the tag variants, in the
// given priority order.
func firstTag(block string, tags ...string) string {
	for _, tag := range tags {
		m := tagRe(tag).FindStringSubmatch(block)
		if m == nil {
			continue
		}
		value := m[1]
		if value == "" {
			value = m[2]
		}
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// extractLink tries the link tag content, then an Atom href attribute, then a
// permalink guid. First valid absolute URL wins.
func extractLink(block string) string {
	if v := strings.TrimSpace(firstTag(block, "link")); ValidLink(v) {
		return v
	}
	if m := atomLinkRe.FindStringSubmatch(block); m != nil && ValidLink(m[1]) {
		return m[1]
	}
	if v := strings.TrimSpace(firstTag(block, "guid")); ValidLink(v) {
		return v
	}
	return ""
}

// parseDate is lenient by contract: any unparseable date becomes now.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s != "" {
		if t, err := dateparse.ParseAny(s); err == nil {
			return t
		}
	}
	return time.Now()
}
