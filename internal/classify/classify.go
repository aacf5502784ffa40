// Package classify scores text for civic/government relevance. It is a
// deterministic keyword classifier: no state, no I/O, same answer every time.
package classify

import "strings"

// Topic keywords: the subject matter itself.
var topicKeywords = []string{
	"congress", "senate", "house of representatives", "white house",
	"supreme court", "legislation", "bill", "law", "policy", "election",
	"vote", "voting", "ballot", "democracy", "constitution", "amendment",
	"federal", "government", "governor", "legislature", "civic",
	"impeachment", "executive order", "judiciary", "regulation", "statute",
	"referendum", "caucus", "electoral",
}

// Named entities: institutions and figures that signal civic coverage even
// without a topic keyword.
var entityKeywords = []string{
	"capitol", "pentagon", "state department", "justice department",
	"speaker of the house", "majority leader", "minority leader",
	"attorney general", "chief justice", "oval office", "west wing",
	"federal reserve", "scotus", "potus", "gop",
}

// Exclusion list: categories that disqualify regardless of keyword hits.
var exclusionKeywords = []string{
	"touchdown", "nba", "nfl", "mlb", "playoff", "recipe", "cooking",
	"celebrity", "horoscope", "weather forecast", "fashion week",
	"travel deals", "lottery", "box office", "kardashian", "red carpet",
	"gossip", "lifestyle tips",
}

// Weighted buckets for the inclusion stage. Keyword presence alone over-admits
// tangential mentions; the weighted score has to clear a floor too.
var (
	institutionTerms = []string{
		"congress", "senate", "house of representatives", "supreme court",
		"white house", "capitol", "federal court",
	}
	processTerms = []string{
		"legislation", "bill", "vote", "veto", "hearing", "ruling",
		"confirmation", "executive order", "amendment", "filibuster",
		"markup", "appropriations", "subpoena",
	}
	partyTerms = []string{
		"democrat", "republican", "gop", "bipartisan", "speaker",
		"senator", "representative", "president", "justice", "lawmaker",
	}
	departmentTerms = []string{
		"department of", "agency", "epa", "fbi", "doj", "irs", "pentagon",
		"homeland security", "state department", "treasury",
	}
)

const (
	institutionWeight = 10
	processWeight     = 6
	partyWeight       = 4
	departmentWeight  = 2

	inclusionThreshold = 6
)

// Scoring buckets, separate from the inclusion floor.
var (
	highValueTerms = []string{
		"congress", "senate", "supreme court", "white house",
		"executive order", "impeachment", "constitution",
	}
	mediumValueTerms = []string{
		"legislation", "bill", "vote", "election", "ruling", "hearing",
		"federal", "veto", "confirmation",
	}
	lowValueTerms = []string{
		"policy", "government", "political", "senator", "representative",
		"law", "regulation", "governor",
	}
)

const (
	highValue    = 15
	mediumValue  = 8
	lowValue     = 3
	topicBonus   = 2
	maxRelevance = 100
)

// Result is the classifier's verdict for one candidate text.
type Result struct {
	Included bool
	Score    int
}

// Evaluate decides inclusion and computes the 0-100 relevance score for the
// combined title+description text.
func Evaluate(text string) Result {
	t := strings.ToLower(text)

	if matchesAny(t, exclusionKeywords) {
		return Result{}
	}
	if !matchesAny(t, topicKeywords) && !matchesAny(t, entityKeywords) {
		return Result{}
	}

	weighted := countMatches(t, institutionTerms)*institutionWeight +
		countMatches(t, processTerms)*processWeight +
		countMatches(t, partyTerms)*partyWeight +
		countMatches(t, departmentTerms)*departmentWeight
	if weighted < inclusionThreshold {
		return Result{}
	}

	score := countMatches(t, highValueTerms)*highValue +
		countMatches(t, mediumValueTerms)*mediumValue +
		countMatches(t, lowValueTerms)*lowValue +
		countMatches(t, topicKeywords)*topicBonus
	if score > maxRelevance {
		score = maxRelevance
	}
	return Result{Included: true, Score: score}
}

// MatchesTopic is the cheap pre-check used for sitemap URLs: a keyword or
// entity hit with no exclusion hit.
func MatchesTopic(text string) bool {
	t := strings.ToLower(text)
	if matchesAny(t, exclusionKeywords) {
		return false
	}
	return matchesAny(t, topicKeywords) || matchesAny(t, entityKeywords)
}

func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// countMatches counts distinct terms present, not occurrences.
func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}
