package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Race standings render as one anchor per clan, linking to that clan's
// own race page. The anchor text concatenates rank, name, trophy count,
// three battle counters, and the fame total.
var (
	raceHrefRE = regexp.MustCompile(`^/clan/[A-Z0-9]+/race$`)
	raceRowRE  = regexp.MustCompile(`^\s*(\d+)\s+(.*?)\s+(\d+)\s+(\d+)\s+(\d+)\s+([\d.,]+)\s*$`)
)

type raceKey struct {
	rank   int
	name   string
	trophy int
	fame   float64
}

// extractRaceRows finds race standing rows anywhere in the document.
//
// Rows whose text does not match the expected shape are skipped rather
// than failing the region; the region fails only when no row matches.
func extractRaceRows(doc *goquery.Document) RaceResult {
	var rows []RaceRow
	seen := make(map[raceKey]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !raceHrefRE.MatchString(strings.TrimSpace(href)) {
			return
		}

		text := joinedText(a)
		if text == "" || text[0] < '0' || text[0] > '9' {
			return
		}

		m := raceRowRE.FindStringSubmatch(text)
		if m == nil {
			return
		}

		rank, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		name := strings.TrimSpace(m[2])
		trophy, err := strconv.Atoi(m[3])
		if err != nil {
			return
		}
		fame, err := strconv.ParseFloat(strings.ReplaceAll(m[6], ",", "."), 64)
		if err != nil {
			return
		}

		// the same standing can appear in more than one widget on the page
		key := raceKey{rank: rank, name: name, trophy: trophy, fame: fame}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		rows = append(rows, RaceRow{Rank: rank, Name: name, Trophy: trophy, Fame: fame})
	})

	if len(rows) == 0 {
		return RaceResult{Err: ErrNotFound}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	return RaceResult{Rows: rows}
}
