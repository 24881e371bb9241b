// Package store defines the snapshot document and holds the latest
// successfully produced one.
//
// Snapshot is the storage representation of a scrape outcome, optimized
// for JSON serialization: it is served to clients verbatim. The package
// also provides [Slot], a single optionally-empty holder for the last
// known-good snapshot with a pub/sub mechanism for pushing new snapshots
// to connected clients (via Server-Sent Events).
package store

import "time"

// Fixed section keys. All three are present in every snapshot.
const (
	SectionRace        = "race"
	SectionClanStats   = "clan_stats"
	SectionBattlesLeft = "battles_left"
)

// Human labels for the three sections.
const (
	TitleRace        = "Race"
	TitleClanStats   = "Clan Stats"
	TitleBattlesLeft = "Battles left (today)"
)

// Section is one named text block inside a snapshot.
type Section struct {
	// Title is the human label shown above the block.
	Title string `json:"title"`

	// Text is the plain-text block: newline-separated rows, never raw
	// markup. When extraction failed it carries the placeholder text.
	Text string `json:"text"`
}

// Snapshot is the single JSON document representing the latest scrape
// outcome.
//
// A snapshot is constructed fresh on every successful run and never
// mutated afterwards; degraded responses are value copies with OK and
// Error adjusted.
type Snapshot struct {
	// GeneratedAtISO is the generation time in RFC 3339 form, for display.
	GeneratedAtISO string `json:"generated_at_iso"`

	// GeneratedAtEpochMS is the generation time in epoch milliseconds,
	// for client-side countdown and staleness math.
	GeneratedAtEpochMS int64 `json:"generated_at_epoch_ms"`

	// UpdateIntervalSeconds is the configured refresh interval echoed
	// into every snapshot.
	UpdateIntervalSeconds int `json:"update_interval_seconds"`

	// Sections always contains the keys race, clan_stats, battles_left.
	Sections map[string]Section `json:"sections"`

	// CopyAllText is the deterministic concatenation of the three
	// section texts, separated by one blank line, in fixed order.
	CopyAllText string `json:"copy_all_text"`

	// OK is false when this document was produced from the cache or
	// from placeholders after a failed refresh.
	OK bool `json:"ok"`

	// Error carries a message when OK is false.
	Error string `json:"error,omitempty"`
}

// NewSnapshot assembles a snapshot from the three section texts.
//
// Pure construction: no I/O and no failure path. Interval validation
// happens in configuration, not here.
func NewSnapshot(now time.Time, interval time.Duration, raceText, clanText, battlesText, copyAll string) Snapshot {
	now = now.UTC()
	return Snapshot{
		GeneratedAtISO:        now.Format(time.RFC3339),
		GeneratedAtEpochMS:    now.UnixMilli(),
		UpdateIntervalSeconds: int(interval / time.Second),
		Sections: map[string]Section{
			SectionRace:        {Title: TitleRace, Text: raceText},
			SectionClanStats:   {Title: TitleClanStats, Text: clanText},
			SectionBattlesLeft: {Title: TitleBattlesLeft, Text: battlesText},
		},
		CopyAllText: copyAll,
		OK:          true,
	}
}

// Degraded returns a copy of the snapshot marked as degraded with the
// given error message. The receiver is not modified.
func (s Snapshot) Degraded(msg string) Snapshot {
	s.OK = false
	s.Error = msg
	return s
}
