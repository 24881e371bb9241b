package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// raceState tracks the evolving standings served by the mock page.
type raceState struct {
	names    []string
	fame     []int
	trophy   []int
	players  []string
	decks    []int
	nextTick time.Time
}

// StartMockRacePage runs a mock clan race page at addr. The standings gain
// fame every 10-20 seconds so repeated scrapes show movement.
// Call this in a goroutine before creating the board.
func StartMockRacePage(addr string) {
	var (
		mu    sync.Mutex
		state = &raceState{
			names:    []string{"Thunder Kings", "Royal Giants", "Log Bait Inc", "Hog Riders", "Elixir Golems"},
			fame:     []int{3150, 2980, 2760, 2400, 2100},
			trophy:   []int{2873, 2764, 2691, 2550, 2487},
			players:  []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"},
			decks:    []int{0, 1, 2, 3, 4, 2},
			nextTick: time.Now().Add(time.Duration(10+rand.Intn(11)) * time.Second),
		}
	)

	http.HandleFunc("/clan/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/race") {
			http.NotFound(w, r)
			return
		}

		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		if time.Now().After(state.nextTick) {
			for i := range state.fame {
				state.fame[i] += 25 + rand.Intn(100)
			}
			for i := range state.decks {
				if state.decks[i] < 4 && rand.Intn(3) == 0 {
					state.decks[i]++
				}
			}
			state.nextTick = time.Now().Add(time.Duration(10+rand.Intn(11)) * time.Second)
			slog.Info("standings advanced", "leader_fame", state.fame[0])
		}
		page := renderRacePage(state)
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(page)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}

func renderRacePage(s *raceState) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Mock Race</title></head><body>\n")

	b.WriteString("<div id=\"standings\">\n")
	for i, name := range s.names {
		fmt.Fprintf(&b, "<a href=\"/clan/TAG%d/race\">%d %s %d 15 9 %d</a>\n",
			i, i+1, name, s.trophy[i], s.fame[i])
	}
	b.WriteString("</div>\n")

	battlesLeft := 0
	for _, d := range s.decks {
		battlesLeft += 4 - d
	}
	b.WriteString("<div id=\"stats\">\n<h2>Clan Stats</h2>\n")
	fmt.Fprintf(&b, "<span>Avg</span><span>%d,%02d</span>\n", s.fame[0]/20, rand.Intn(100))
	fmt.Fprintf(&b, "<span>Battles Left</span><span>%d</span>\n", battlesLeft)
	b.WriteString("<span>Duels Left</span><span>1</span>\n")
	fmt.Fprintf(&b, "<span>1st</span><span>Projected Finish</span><span>%d</span>\n", s.fame[0]+1200)
	b.WriteString("</div>\n")

	b.WriteString("<table>\n<tr><th>Player</th><th>Decks Used Today</th><th>Fame</th></tr>\n")
	for i, p := range s.players {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%d</td></tr>\n", p, s.decks[i], 400+i*37)
	}
	b.WriteString("</table>\n</body></html>\n")

	return b.String()
}
