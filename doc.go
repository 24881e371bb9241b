// Package raceboard republishes clan-war statistics from an upstream
// stats page as a small JSON document and copy-ready text blocks.
//
// On every request to its snapshot endpoint, raceboard fetches the
// configured clan's race page, locates three regions in the markup (race
// standings, clan stats, battles remaining), normalizes each into a
// fixed-format plain-text block, and serves the result as one versioned
// snapshot. The upstream page has no machine-readable contract, so
// extraction is best-effort: a region that cannot be located degrades to
// placeholder text, and a failed refresh is answered from the last
// known-good snapshot.
//
// # Quick start
//
//	board, _ := raceboard.New(raceboard.WithClanTag("9YP8UY"))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	board.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// raceboard uses the functional options pattern:
//
//	board, err := raceboard.New(
//	    raceboard.WithClanTag("9YP8UY"),
//	    raceboard.WithPort(9090),
//	    raceboard.WithFetchTimeout(10 * time.Second),
//	    raceboard.WithUpdateInterval(5 * time.Minute),
//	)
//
// The standalone binary under cmd/raceboard drives the same surface from
// a YAML file; see the config package.
package raceboard
