// Package format renders extraction results as fixed, copy-ready text
// blocks.
//
// The output is pasted into chat messages verbatim, so every block has a
// stable shape: a header line naming the section, one row per line, and
// the same number rendering for the same input. Formatting is pure string
// assembly; identical inputs always produce byte-identical output.
package format

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/raceboard/internal/extract"
)

// Placeholder replaces a section's body when its extraction failed.
const Placeholder = "No data available."

// Section header lines. The display layer and the copy-all contract both
// depend on these exact strings.
const (
	raceHeader    = "Race standings (top 5):"
	clanHeader    = "Clan Stats:"
	battlesHeader = "Battles left (today):"
)

const topN = 5

// Race renders the race standings block: the top five clans with fame
// and trophy counts, plus their average fame.
func Race(res extract.RaceResult) string {
	if res.Err != nil || len(res.Rows) == 0 {
		return raceHeader + "\n" + Placeholder
	}

	rows := res.Rows
	if len(rows) > topN {
		rows = rows[:topN]
	}

	parts := []string{raceHeader}
	var fameSum float64
	for i, row := range rows {
		parts = append(parts, fmt.Sprintf("%d. 🏆 %s — Fame: %.0f | Trophy: %d", i+1, row.Name, row.Fame, row.Trophy))
		fameSum += row.Fame
	}
	parts = append(parts, fmt.Sprintf("Avg fame (top 5): %s", groupedFloat(fameSum/float64(len(rows)))))

	return strings.Join(parts, "\n")
}

// ClanStats renders the clan stats block. Missing fields render as "?"
// so the line layout stays stable.
func ClanStats(res extract.ClanStatsResult) string {
	if res.Err != nil {
		return clanHeader + "\n" + Placeholder
	}

	st := res.Stats
	lines := []string{
		clanHeader,
		fmt.Sprintf("📊 avg %s    ⚔️ Battles left: %s    🤝 Duels left: %s    🎯 Projected Finish %s (%s)",
			floatOrUnknown(st.Avg), intOrUnknown(st.BattlesLeft), intOrUnknown(st.DuelsLeft),
			intOrUnknown(st.ProjectedValue), rankOrUnknown(st.ProjectedRank)),
		fmt.Sprintf("🏁 Best Possible Finish %s (%s)    💀 Worst Possible Finish %s (%s)",
			intOrUnknown(st.BestValue), rankOrUnknown(st.BestRank),
			intOrUnknown(st.WorstValue), rankOrUnknown(st.WorstRank)),
	}
	return strings.Join(lines, "\n")
}

// BattlesLeft renders the battles-left block: one group per remaining
// attack count (4 down to 1), empty groups omitted.
func BattlesLeft(res extract.BattlesResult) string {
	if res.Err != nil {
		return battlesHeader + "\n" + Placeholder
	}

	labels := []struct {
		remaining int
		label     string
	}{
		{4, "🟥 4 attacks left:"},
		{3, "🟧 3 attacks left:"},
		{2, "🟨 2 attacks left:"},
		{1, "🟩 1 attack left:"},
	}

	parts := []string{battlesHeader}
	for _, l := range labels {
		players := res.Buckets[l.remaining]
		if len(players) == 0 {
			continue
		}
		lines := []string{l.label}
		for _, p := range players {
			lines = append(lines, "- "+p)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

// CopyAll concatenates the three section texts in the fixed order
// race → clan stats → battles left, separated by exactly one blank line.
func CopyAll(race, clan, battles string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{race, clan, battles} {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// groupedFloat renders a float with comma thousands grouping and two
// decimals: 12345.6 → "12,345.60".
func groupedFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	return groupThousands(s[:dot]) + s[dot:]
}

// europeanFloat renders a float in the style the clan stats block uses
// upstream: 1234.56 → "1.234,56".
func europeanFloat(v float64) string {
	s := groupedFloat(v)
	s = strings.ReplaceAll(s, ",", "\x00")
	s = strings.ReplaceAll(s, ".", ",")
	return strings.ReplaceAll(s, "\x00", ".")
}

// groupThousands inserts commas into a non-negative integer literal.
func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	n := len(digits)
	for i, c := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func floatOrUnknown(v *float64) string {
	if v == nil {
		return "?"
	}
	return europeanFloat(*v)
}

func intOrUnknown(v *int) string {
	if v == nil {
		return "?"
	}
	return groupThousands(fmt.Sprintf("%d", *v))
}

func rankOrUnknown(r string) string {
	if r == "" {
		return "?"
	}
	return r
}
