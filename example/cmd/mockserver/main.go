// Standalone mock race page for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/raceboard serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

func main() {
	fmt.Println("Mock race page starting on :9999")
	fmt.Println("Standings advance every 10-20 seconds")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu       sync.Mutex
		names    = []string{"Thunder Kings", "Royal Giants", "Log Bait Inc", "Hog Riders", "Elixir Golems"}
		fame     = []int{3150, 2980, 2760, 2400, 2100}
		trophy   = []int{2873, 2764, 2691, 2550, 2487}
		players  = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"}
		decks    = []int{0, 1, 2, 3, 4, 2}
		nextTick = time.Now().Add(time.Duration(10+rand.Intn(11)) * time.Second)
	)

	http.HandleFunc("/clan/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/race") {
			http.NotFound(w, r)
			return
		}

		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		if time.Now().After(nextTick) {
			for i := range fame {
				fame[i] += 25 + rand.Intn(100)
			}
			for i := range decks {
				if decks[i] < 4 && rand.Intn(3) == 0 {
					decks[i]++
				}
			}
			nextTick = time.Now().Add(time.Duration(10+rand.Intn(11)) * time.Second)
			slog.Info("standings advanced", "leader_fame", fame[0])
		}

		var b strings.Builder
		b.WriteString("<html><body>\n<div>\n")
		for i, name := range names {
			fmt.Fprintf(&b, "<a href=\"/clan/TAG%d/race\">%d %s %d 15 9 %d</a>\n",
				i, i+1, name, trophy[i], fame[i])
		}
		b.WriteString("</div>\n<div>\n<h2>Clan Stats</h2>\n")
		battlesLeft := 0
		for _, d := range decks {
			battlesLeft += 4 - d
		}
		fmt.Fprintf(&b, "<span>Avg</span><span>%d,%02d</span>\n", fame[0]/20, rand.Intn(100))
		fmt.Fprintf(&b, "<span>Battles Left</span><span>%d</span>\n", battlesLeft)
		b.WriteString("<span>Duels Left</span><span>1</span>\n")
		fmt.Fprintf(&b, "<span>1st</span><span>Projected Finish</span><span>%d</span>\n", fame[0]+1200)
		b.WriteString("</div>\n<table>\n<tr><th>Player</th><th>Decks Used Today</th></tr>\n")
		for i, p := range players {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td></tr>\n", p, decks[i])
		}
		b.WriteString("</table>\n</body></html>\n")
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(b.String()))
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
