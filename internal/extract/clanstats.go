package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxContainerClimb = 10

var (
	clanStatsLabelRE = regexp.MustCompile(`(?i)\bclan\s+stats\b`)
	rankTokenRE      = regexp.MustCompile(`(?i)^\d+(st|nd|rd|th)$`)
	numericTokenRE   = regexp.MustCompile(`^[\d,\.]+$`)
	intTokenRE       = regexp.MustCompile(`^[\d,]+$`)
)

// extractClanStats locates the clan stats block and token-walks it.
//
// The block has no table structure; it is a cluster of label/value text
// nodes. The anchor is an element whose own text contains "Clan Stats",
// promoted to the nearest ancestor that also mentions the expected labels.
func extractClanStats(doc *goquery.Document) ClanStatsResult {
	container := findClanStatsContainer(doc)
	if container == nil {
		return ClanStatsResult{Err: ErrNotFound}
	}

	tokens := strippedStrings(container)
	lower := make([]string, len(tokens))
	for i, t := range tokens {
		lower[i] = strings.ToLower(t)
	}

	valueAfter := func(label string) string {
		ll := strings.ToLower(label)
		for i, tok := range lower {
			if tok != ll {
				continue
			}
			for j := i + 1; j < len(tokens) && j < i+6; j++ {
				if numericTokenRE.MatchString(tokens[j]) {
					return tokens[j]
				}
			}
		}
		return ""
	}

	// finish labels carry an ordinal rank just before them ("4th
	// Projected Finish 8,500") and the numeric value after
	pickRankAndValue := func(label string) (rank, value string) {
		ll := strings.ToLower(label)
		for i, tok := range lower {
			if tok != ll {
				continue
			}
			if i > 0 && rankTokenRE.MatchString(lower[i-1]) {
				rank = tokens[i-1]
			}
			if i+1 < len(tokens) && intTokenRE.MatchString(tokens[i+1]) {
				value = tokens[i+1]
				return rank, value
			}
			for j := i + 1; j < len(tokens) && j < i+6; j++ {
				if intTokenRE.MatchString(tokens[j]) {
					value = tokens[j]
					break
				}
			}
			return rank, value
		}
		return "", ""
	}

	avgRaw := valueAfter("Avg")
	if avgRaw == "" {
		avgRaw = valueAfter("Average")
	}
	battlesRaw := valueAfter("Battles")
	if battlesRaw == "" {
		battlesRaw = valueAfter("Battles left")
	}
	duelsRaw := valueAfter("Duels")
	if duelsRaw == "" {
		duelsRaw = valueAfter("Duels left")
	}

	projectedRank, projectedVal := pickRankAndValue("Projected Finish")
	bestRank, bestVal := pickRankAndValue("Best Possible Finish")
	worstRank, worstVal := pickRankAndValue("Worst Possible Finish")

	return ClanStatsResult{Stats: ClanStats{
		Avg:            parseFloat(avgRaw),
		BattlesLeft:    parseInt(battlesRaw),
		DuelsLeft:      parseInt(duelsRaw),
		ProjectedValue: parseInt(projectedVal),
		ProjectedRank:  projectedRank,
		BestValue:      parseInt(bestVal),
		BestRank:       bestRank,
		WorstValue:     parseInt(worstVal),
		WorstRank:      worstRank,
	}}
}

// findClanStatsContainer returns the smallest ancestor of a "Clan Stats"
// label that also contains the battles/duels/projected labels, or nil.
func findClanStatsContainer(doc *goquery.Document) *goquery.Selection {
	var container *goquery.Selection

	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !clanStatsLabelRE.MatchString(ownText(s)) {
			return true
		}

		cur := s
		for i := 0; i < maxContainerClimb && cur.Length() > 0; i++ {
			txt := strings.ToLower(joinedText(cur))
			if strings.Contains(txt, "battles left") &&
				strings.Contains(txt, "duels left") &&
				strings.Contains(txt, "projected finish") {
				container = cur
				return false
			}
			cur = cur.Parent()
		}
		return true
	})

	return container
}
