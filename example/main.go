package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/raceboard"
)

func main() {
	// start mock race page (see mock_server.go)
	go StartMockRacePage(":9999")
	time.Sleep(100 * time.Millisecond)

	board, err := raceboard.New(
		raceboard.WithURL("http://localhost:9999/clan/DEMO/race"),
		raceboard.WithUpdateInterval(30*time.Second),
		raceboard.WithPort(8080),
	)
	if err != nil {
		slog.Error("failed to create board", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Raceboard Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   curl http://localhost:8080/api/snapshot             ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   The mock race page advances every 10-20 seconds,    ║")
	fmt.Println("  ║   so repeated requests show fresh standings.          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := board.Start(ctx); err != nil {
		slog.Error("raceboard error", "error", err)
		os.Exit(1)
	}
}
