package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// decksPerDay is the fixed number of war attacks a player gets per day.
const decksPerDay = 4

// extractBattlesLeft finds the per-player deck usage table and buckets
// players by how many attacks they still have today.
//
// The table is identified by its header set rather than position: it must
// contain both a "Player" and a "Decks Used Today" column.
func extractBattlesLeft(doc *goquery.Document) BattlesResult {
	table := findBattlesTable(doc)
	if table == nil {
		return BattlesResult{Err: ErrNotFound}
	}

	headerRow := table.Find("tr").First()
	if headerRow.Length() == 0 {
		return BattlesResult{Err: ErrNotFound}
	}

	var headers []string
	headerRow.Find("th, td").Each(func(_ int, c *goquery.Selection) {
		headers = append(headers, strings.ToLower(joinedText(c)))
	})

	idxPlayer := indexOf(headers, "player")
	idxToday := indexOf(headers, "decks used today")
	if idxPlayer < 0 || idxToday < 0 {
		return BattlesResult{Err: ErrNotFound}
	}

	buckets := map[int][]string{4: {}, 3: {}, 2: {}, 1: {}}

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}

		cells := tr.Find("td, th")
		if cells.Length() <= idxPlayer || cells.Length() <= idxToday {
			return
		}

		player := joinedText(cells.Eq(idxPlayer))
		if player == "" {
			return
		}

		decksToday := 0
		if v := parseInt(joinedText(cells.Eq(idxToday))); v != nil {
			decksToday = *v
		}

		remaining := decksPerDay - decksToday
		if _, ok := buckets[remaining]; ok {
			buckets[remaining] = append(buckets[remaining], player)
		}
	})

	return BattlesResult{Buckets: buckets}
}

// findBattlesTable returns the first table whose headers include both
// wanted columns, or nil.
func findBattlesTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headerSet := make(map[string]struct{})

		ths := table.Find("th")
		if ths.Length() > 0 {
			ths.Each(func(_ int, c *goquery.Selection) {
				headerSet[strings.ToLower(joinedText(c))] = struct{}{}
			})
		} else {
			firstRow := table.Find("tr").First()
			if firstRow.Length() == 0 {
				return true
			}
			firstRow.Find("td, th").Each(func(_ int, c *goquery.Selection) {
				headerSet[strings.ToLower(joinedText(c))] = struct{}{}
			})
		}

		if _, ok := headerSet["player"]; !ok {
			return true
		}
		if _, ok := headerSet["decks used today"]; !ok {
			return true
		}
		found = table
		return false
	})

	return found
}

func indexOf(ss []string, want string) int {
	for i, s := range ss {
		if s == want {
			return i
		}
	}
	return -1
}
