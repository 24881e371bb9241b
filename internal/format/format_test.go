package format

import (
	"strings"
	"testing"

	"github.com/jpalmerr/raceboard/internal/extract"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func sampleRows() []extract.RaceRow {
	return []extract.RaceRow{
		{Rank: 1, Name: "ClanName", Trophy: 2500, Fame: 950},
		{Rank: 2, Name: "Rival Clan", Trophy: 2400, Fame: 910.5},
	}
}

func TestRace(t *testing.T) {
	got := Race(extract.RaceResult{Rows: sampleRows()})

	want := strings.Join([]string{
		"Race standings (top 5):",
		"1. 🏆 ClanName — Fame: 950 | Trophy: 2500",
		"2. 🏆 Rival Clan — Fame: 910 | Trophy: 2400",
		"Avg fame (top 5): 930.25",
	}, "\n")

	if got != want {
		t.Errorf("Race() =\n%s\nwant\n%s", got, want)
	}
}

func TestRace_SingleRowFixture(t *testing.T) {
	got := Race(extract.RaceResult{Rows: []extract.RaceRow{
		{Rank: 1, Name: "ClanName", Trophy: 2500, Fame: 950},
	}})

	if !strings.Contains(got, "1. 🏆 ClanName — Fame: 950 | Trophy: 2500") {
		t.Errorf("Race() missing fixture row:\n%s", got)
	}
	if strings.Contains(got, "Rival") {
		t.Errorf("Race() contains a row for another clan:\n%s", got)
	}
}

func TestRace_TopFiveOnly(t *testing.T) {
	rows := make([]extract.RaceRow, 8)
	for i := range rows {
		rows[i] = extract.RaceRow{Rank: i + 1, Name: "Clan", Trophy: 2000, Fame: 100}
	}

	got := Race(extract.RaceResult{Rows: rows})
	if strings.Contains(got, "6. ") {
		t.Errorf("Race() renders more than five rows:\n%s", got)
	}
	if !strings.Contains(got, "5. ") {
		t.Errorf("Race() missing fifth row:\n%s", got)
	}
}

func TestRace_Placeholder(t *testing.T) {
	got := Race(extract.RaceResult{Err: extract.ErrNotFound})
	want := "Race standings (top 5):\n" + Placeholder
	if got != want {
		t.Errorf("Race() = %q, want %q", got, want)
	}
}

func TestClanStats(t *testing.T) {
	res := extract.ClanStatsResult{Stats: extract.ClanStats{
		Avg:            floatp(172.34),
		BattlesLeft:    intp(12),
		DuelsLeft:      intp(2),
		ProjectedValue: intp(8500),
		ProjectedRank:  "4th",
		BestValue:      intp(10000),
		BestRank:       "1st",
		WorstValue:     intp(7000),
		WorstRank:      "6th",
	}}

	got := ClanStats(res)
	want := strings.Join([]string{
		"Clan Stats:",
		"📊 avg 172,34    ⚔️ Battles left: 12    🤝 Duels left: 2    🎯 Projected Finish 8,500 (4th)",
		"🏁 Best Possible Finish 10,000 (1st)    💀 Worst Possible Finish 7,000 (6th)",
	}, "\n")

	if got != want {
		t.Errorf("ClanStats() =\n%s\nwant\n%s", got, want)
	}
}

func TestClanStats_MissingFields(t *testing.T) {
	got := ClanStats(extract.ClanStatsResult{Stats: extract.ClanStats{
		BattlesLeft: intp(3),
	}})

	if !strings.Contains(got, "avg ?") {
		t.Errorf("ClanStats() missing avg fallback:\n%s", got)
	}
	if !strings.Contains(got, "Battles left: 3") {
		t.Errorf("ClanStats() missing battles value:\n%s", got)
	}
	if !strings.Contains(got, "Projected Finish ? (?)") {
		t.Errorf("ClanStats() missing projected fallback:\n%s", got)
	}
}

func TestClanStats_EuropeanDecimals(t *testing.T) {
	got := ClanStats(extract.ClanStatsResult{Stats: extract.ClanStats{
		Avg: floatp(1234.56),
	}})

	if !strings.Contains(got, "avg 1.234,56") {
		t.Errorf("ClanStats() = %q, want european decimal 1.234,56", got)
	}
}

func TestClanStats_Placeholder(t *testing.T) {
	got := ClanStats(extract.ClanStatsResult{Err: extract.ErrNotFound})
	want := "Clan Stats:\n" + Placeholder
	if got != want {
		t.Errorf("ClanStats() = %q, want %q", got, want)
	}
}

func TestBattlesLeft(t *testing.T) {
	res := extract.BattlesResult{Buckets: map[int][]string{
		4: {"Alice"},
		3: {},
		2: {"Bob", "Eve"},
		1: {"Dave"},
	}}

	got := BattlesLeft(res)
	want := strings.Join([]string{
		"Battles left (today):",
		"",
		"🟥 4 attacks left:",
		"- Alice",
		"",
		"🟨 2 attacks left:",
		"- Bob",
		"- Eve",
		"",
		"🟩 1 attack left:",
		"- Dave",
	}, "\n")

	if got != want {
		t.Errorf("BattlesLeft() =\n%s\nwant\n%s", got, want)
	}
}

func TestBattlesLeft_AllEmpty(t *testing.T) {
	got := BattlesLeft(extract.BattlesResult{Buckets: map[int][]string{4: {}, 3: {}, 2: {}, 1: {}}})
	if got != "Battles left (today):" {
		t.Errorf("BattlesLeft() = %q, want header only", got)
	}
}

func TestBattlesLeft_Placeholder(t *testing.T) {
	got := BattlesLeft(extract.BattlesResult{Err: extract.ErrNotFound})
	want := "Battles left (today):\n" + Placeholder
	if got != want {
		t.Errorf("BattlesLeft() = %q, want %q", got, want)
	}
}

func TestCopyAll(t *testing.T) {
	got := CopyAll("race block", "clan block", "battles block")
	want := "race block\n\nclan block\n\nbattles block"
	if got != want {
		t.Errorf("CopyAll() = %q, want %q", got, want)
	}
}

func TestCopyAll_WithPlaceholders(t *testing.T) {
	race := Race(extract.RaceResult{Rows: sampleRows()})
	clan := ClanStats(extract.ClanStatsResult{Err: extract.ErrNotFound})
	battles := BattlesLeft(extract.BattlesResult{Err: extract.ErrNotFound})

	got := CopyAll(race, clan, battles)

	// fixed order race → clan stats → battles left with single blank lines
	raceIdx := strings.Index(got, "Race standings")
	clanIdx := strings.Index(got, "Clan Stats:")
	battlesIdx := strings.Index(got, "Battles left (today):")
	if !(raceIdx >= 0 && raceIdx < clanIdx && clanIdx < battlesIdx) {
		t.Errorf("CopyAll() sections out of order:\n%s", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("CopyAll() has more than one blank line between sections:\n%s", got)
	}
}

func TestDeterminism(t *testing.T) {
	res := extract.RaceResult{Rows: sampleRows()}
	first := Race(res)
	for i := 0; i < 10; i++ {
		if got := Race(res); got != first {
			t.Fatalf("Race() output changed between runs:\n%s\nvs\n%s", got, first)
		}
	}
}
