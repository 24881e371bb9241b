package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/raceboard/internal/format"
	"github.com/jpalmerr/raceboard/internal/store"
)

const fixtureHTML = `<html><body>
<div>
  <a href="/clan/9YP8UY/race">1 ClanName 2500 12 8 950</a>
  <a href="/clan/ABC123/race">2 Rival Clan 2400 11 7 910</a>
</div>
<div>
  <h2>Clan Stats</h2>
  <span>Avg</span><span>172,34</span>
  <span>Battles Left</span><span>12</span>
</div>
<table>
  <tr><th>Player</th><th>Decks Used Today</th></tr>
  <tr><td>Alice</td><td>0</td></tr>
  <tr><td>Bob</td><td>2</td></tr>
</table>
</body></html>`

// stubFetcher serves queued bodies or errors in order, repeating the last
// entry once exhausted.
type stubFetcher struct {
	bodies []string
	errs   []error
	calls  int
}

func (f *stubFetcher) FetchWithRetry(_ context.Context, _ string) ([]byte, error) {
	i := f.calls
	f.calls++
	if i >= len(f.bodies) {
		i = len(f.bodies) - 1
	}
	if err := f.errs[i]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[i]), nil
}

func newService(f Fetcher, opts ...Option) *Service {
	return New(f, "https://cwstats.com/clan/9YP8UY/race", 5*time.Minute, opts...)
}

func TestSnapshot_Success(t *testing.T) {
	svc := newService(&stubFetcher{bodies: []string{fixtureHTML}, errs: []error{nil}})

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v, want nil", err)
	}
	if !snap.OK {
		t.Error("OK = false, want true")
	}
	if snap.UpdateIntervalSeconds != 300 {
		t.Errorf("UpdateIntervalSeconds = %d, want 300", snap.UpdateIntervalSeconds)
	}

	race := snap.Sections[store.SectionRace].Text
	if !strings.Contains(race, "1. 🏆 ClanName — Fame: 950 | Trophy: 2500") {
		t.Errorf("race section missing formatted row:\n%s", race)
	}

	battles := snap.Sections[store.SectionBattlesLeft].Text
	if !strings.Contains(battles, "- Alice") || !strings.Contains(battles, "- Bob") {
		t.Errorf("battles section missing players:\n%s", battles)
	}

	if !strings.Contains(snap.CopyAllText, race) {
		t.Error("CopyAllText does not embed the race section")
	}
}

func TestSnapshot_PartialExtractionStillOK(t *testing.T) {
	// page carries only the race region
	page := `<html><body><div>
<a href="/clan/9YP8UY/race">1 ClanName 2500 12 8 950</a>
</div></body></html>`
	svc := newService(&stubFetcher{bodies: []string{page}, errs: []error{nil}})

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v, want nil", err)
	}
	if !snap.OK {
		t.Error("OK = false, want true for partial extraction")
	}
	if got := snap.Sections[store.SectionClanStats].Text; !strings.Contains(got, format.Placeholder) {
		t.Errorf("clan stats section = %q, want placeholder", got)
	}
}

func TestSnapshot_FetchError(t *testing.T) {
	wantErr := errors.New("connection refused")
	svc := newService(&stubFetcher{bodies: []string{""}, errs: []error{wantErr}})

	_, err := svc.Snapshot(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Snapshot() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSnapshot_NoRegions(t *testing.T) {
	f := &stubFetcher{bodies: []string{"<html><body>nothing here</body></html>"}, errs: []error{nil}}
	svc := newService(f)

	_, err := svc.Snapshot(context.Background())
	if !errors.Is(err, ErrNoRegions) {
		t.Errorf("Snapshot() error = %v, want ErrNoRegions", err)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (refetch disabled by default)", f.calls)
	}
}

func TestSnapshot_RetryOnMalformed(t *testing.T) {
	f := &stubFetcher{
		bodies: []string{"<html><body>maintenance</body></html>", fixtureHTML},
		errs:   []error{nil, nil},
	}
	svc := newService(f, WithRetryOnMalformed(true))

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v, want nil", err)
	}
	if f.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (one refetch)", f.calls)
	}
	if !snap.OK {
		t.Error("OK = false after successful refetch, want true")
	}
}

func TestSnapshot_RetryOnMalformedStillEmpty(t *testing.T) {
	f := &stubFetcher{
		bodies: []string{"<html></html>", "<html></html>"},
		errs:   []error{nil, nil},
	}
	svc := newService(f, WithRetryOnMalformed(true))

	_, err := svc.Snapshot(context.Background())
	if !errors.Is(err, ErrNoRegions) {
		t.Errorf("Snapshot() error = %v, want ErrNoRegions", err)
	}
	if f.calls != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls)
	}
}

func TestSnapshot_TimestampsAdvance(t *testing.T) {
	svc := newService(&stubFetcher{bodies: []string{fixtureHTML}, errs: []error{nil}})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	first, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	second, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if second.GeneratedAtEpochMS <= first.GeneratedAtEpochMS {
		t.Errorf("GeneratedAtEpochMS did not advance: %d then %d",
			first.GeneratedAtEpochMS, second.GeneratedAtEpochMS)
	}
}

func TestFallback(t *testing.T) {
	svc := newService(&stubFetcher{bodies: []string{""}, errs: []error{errors.New("boom")}})

	snap := svc.Fallback(errors.New("fetch https://cwstats.com: timeout"))
	if snap.OK {
		t.Error("OK = true, want false")
	}
	if snap.Error != "fetch https://cwstats.com: timeout" {
		t.Errorf("Error = %q, want the cause message", snap.Error)
	}
	for key, section := range snap.Sections {
		if !strings.Contains(section.Text, format.Placeholder) {
			t.Errorf("section %q = %q, want placeholder", key, section.Text)
		}
	}
	if snap.UpdateIntervalSeconds != 300 {
		t.Errorf("UpdateIntervalSeconds = %d, want 300", snap.UpdateIntervalSeconds)
	}
}

func TestFallback_NilCause(t *testing.T) {
	svc := newService(&stubFetcher{bodies: []string{""}, errs: []error{nil}})

	snap := svc.Fallback(nil)
	if snap.Error != "upstream unavailable" {
		t.Errorf("Error = %q, want %q", snap.Error, "upstream unavailable")
	}
}
