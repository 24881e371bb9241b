// Package extract locates the three stat regions inside the upstream
// page markup: race standings, clan stats, and battles remaining.
//
// The upstream page has no machine-readable contract, so each region is
// found via a small set of structural heuristics (anchor href patterns,
// label text, table header sets) evaluated independently. A region that
// cannot be located reports [ErrNotFound] for itself only; the other two
// regions are unaffected.
package extract

import (
	"bytes"
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// Sentinel errors describing per-region outcomes.
var (
	// ErrNotFound means the region's anchor or structure was not present.
	ErrNotFound = errors.New("region not found")

	// ErrMalformed means the markup could not be parsed at all.
	ErrMalformed = errors.New("malformed markup")
)

// RaceRow is one clan's standing in the current river race.
type RaceRow struct {
	Rank   int
	Name   string
	Trophy int
	Fame   float64
}

// ClanStats holds the configured clan's aggregate war numbers.
//
// Every field is optional: the upstream block frequently renders with
// gaps, and a partially filled struct is still worth publishing.
type ClanStats struct {
	Avg         *float64
	BattlesLeft *int
	DuelsLeft   *int

	ProjectedValue *int
	ProjectedRank  string
	BestValue      *int
	BestRank       string
	WorstValue     *int
	WorstRank      string
}

// RaceResult is the outcome of extracting the race standings region.
type RaceResult struct {
	Rows []RaceRow
	Err  error
}

// ClanStatsResult is the outcome of extracting the clan stats region.
type ClanStatsResult struct {
	Stats ClanStats
	Err   error
}

// BattlesResult is the outcome of extracting the battles-left region.
// Buckets maps attacks remaining (4..1) to player names, in page order.
type BattlesResult struct {
	Buckets map[int][]string
	Err     error
}

// Results bundles the three per-region outcomes of one extraction pass.
type Results struct {
	Race        RaceResult
	ClanStats   ClanStatsResult
	BattlesLeft BattlesResult
}

// AllFailed reports whether every region failed, which callers treat the
// same as a failed fetch.
func (r Results) AllFailed() bool {
	return r.Race.Err != nil && r.ClanStats.Err != nil && r.BattlesLeft.Err != nil
}

// Extract parses the raw page body and runs the three region extractors.
//
// Extract never returns an error and never panics: a body that cannot be
// parsed at all yields [ErrMalformed] for every region, and a structural
// mismatch in one region is confined to that region's result.
func Extract(body []byte) Results {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Results{
			Race:        RaceResult{Err: ErrMalformed},
			ClanStats:   ClanStatsResult{Err: ErrMalformed},
			BattlesLeft: BattlesResult{Err: ErrMalformed},
		}
	}

	// these tags pollute text-node walking with JS and CSS
	doc.Find("script, style, noscript").Remove()

	var res Results
	guard(func() { res.Race = extractRaceRows(doc) }, func() { res.Race = RaceResult{Err: ErrMalformed} })
	guard(func() { res.ClanStats = extractClanStats(doc) }, func() { res.ClanStats = ClanStatsResult{Err: ErrMalformed} })
	guard(func() { res.BattlesLeft = extractBattlesLeft(doc) }, func() { res.BattlesLeft = BattlesResult{Err: ErrMalformed} })
	return res
}

// guard confines a panic in one region extractor to that region.
func guard(fn func(), onPanic func()) {
	defer func() {
		if recover() != nil {
			onPanic()
		}
	}()
	fn()
}
