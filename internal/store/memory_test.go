package store

import (
	"testing"
	"time"
)

func sampleSnapshot(t *testing.T) Snapshot {
	t.Helper()
	return NewSnapshot(
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		5*time.Minute,
		"race text", "clan text", "battles text",
		"race text\n\nclan text\n\nbattles text",
	)
}

func TestNewSnapshot(t *testing.T) {
	snap := sampleSnapshot(t)

	if snap.GeneratedAtISO != "2025-06-01T12:00:00Z" {
		t.Errorf("GeneratedAtISO = %q, want %q", snap.GeneratedAtISO, "2025-06-01T12:00:00Z")
	}
	if snap.GeneratedAtEpochMS != 1748779200000 {
		t.Errorf("GeneratedAtEpochMS = %d, want 1748779200000", snap.GeneratedAtEpochMS)
	}
	if snap.UpdateIntervalSeconds != 300 {
		t.Errorf("UpdateIntervalSeconds = %d, want 300", snap.UpdateIntervalSeconds)
	}
	if !snap.OK {
		t.Error("OK = false, want true")
	}

	for _, key := range []string{SectionRace, SectionClanStats, SectionBattlesLeft} {
		if _, ok := snap.Sections[key]; !ok {
			t.Errorf("Sections missing key %q", key)
		}
	}
	if snap.Sections[SectionRace].Title != TitleRace {
		t.Errorf("race title = %q, want %q", snap.Sections[SectionRace].Title, TitleRace)
	}
	if snap.Sections[SectionBattlesLeft].Text != "battles text" {
		t.Errorf("battles text = %q, want %q", snap.Sections[SectionBattlesLeft].Text, "battles text")
	}
}

func TestSnapshot_Degraded(t *testing.T) {
	snap := sampleSnapshot(t)
	degraded := snap.Degraded("upstream timed out")

	if degraded.OK {
		t.Error("Degraded().OK = true, want false")
	}
	if degraded.Error != "upstream timed out" {
		t.Errorf("Degraded().Error = %q, want %q", degraded.Error, "upstream timed out")
	}

	// the original must stay untouched
	if !snap.OK || snap.Error != "" {
		t.Errorf("receiver mutated: OK=%v Error=%q", snap.OK, snap.Error)
	}
	if degraded.CopyAllText != snap.CopyAllText {
		t.Errorf("Degraded() changed CopyAllText: %q", degraded.CopyAllText)
	}
}

func TestSlot_LatestEmpty(t *testing.T) {
	slot := NewSlot()
	if _, ok := slot.Latest(); ok {
		t.Error("Latest() on empty slot = ok, want not ok")
	}
}

func TestSlot_ReplaceAndLatest(t *testing.T) {
	slot := NewSlot()
	snap := sampleSnapshot(t)

	slot.Replace(snap)

	got, ok := slot.Latest()
	if !ok {
		t.Fatal("Latest() not ok after Replace")
	}
	if got.GeneratedAtEpochMS != snap.GeneratedAtEpochMS {
		t.Errorf("Latest().GeneratedAtEpochMS = %d, want %d", got.GeneratedAtEpochMS, snap.GeneratedAtEpochMS)
	}

	// last writer wins
	second := snap
	second.GeneratedAtEpochMS++
	slot.Replace(second)

	got, _ = slot.Latest()
	if got.GeneratedAtEpochMS != second.GeneratedAtEpochMS {
		t.Errorf("Latest().GeneratedAtEpochMS = %d, want %d", got.GeneratedAtEpochMS, second.GeneratedAtEpochMS)
	}
}

func TestSlot_Subscribe(t *testing.T) {
	slot := NewSlot()
	ch := slot.Subscribe()
	defer slot.Unsubscribe(ch)

	snap := sampleSnapshot(t)
	slot.Replace(snap)

	select {
	case got := <-ch:
		if got.GeneratedAtEpochMS != snap.GeneratedAtEpochMS {
			t.Errorf("subscriber got GeneratedAtEpochMS = %d, want %d", got.GeneratedAtEpochMS, snap.GeneratedAtEpochMS)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the snapshot")
	}
}

func TestSlot_Unsubscribe(t *testing.T) {
	slot := NewSlot()
	ch := slot.Subscribe()

	slot.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}

	// safe to call again
	slot.Unsubscribe(ch)
}

func TestSlot_SlowSubscriberDoesNotBlock(t *testing.T) {
	slot := NewSlot()
	_ = slot.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			slot.Replace(sampleSnapshot(t))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Replace blocked on a slow subscriber")
	}
}
