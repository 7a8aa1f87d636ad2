package systick

import (
	"testing"
	"time"
)

// newTestClock returns a SysTick whose time source is the returned pointer.
// Tests advance time by mutating *cur; the tick driver never runs.
func newTestClock(t *testing.T, freqHz uint32) (*SysTick, *time.Time) {
	t.Helper()
	s, err := New(freqHz)
	if err != nil {
		t.Fatalf("New(%d): %v", freqHz, err)
	}
	cur := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return cur }
	s.lastTick = cur
	return s, &cur
}

func TestNewRejectsLowFrequency(t *testing.T) {
	for _, freq := range []uint32{0, 1, 999} {
		if _, err := New(freq); err == nil {
			t.Errorf("New(%d): expected error, got nil", freq)
		}
	}
}

func TestNewReloadValue(t *testing.T) {
	s, err := New(12000000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Reload() != 11999 {
		t.Errorf("reload: got %d, want 11999", s.Reload())
	}
}

func TestNowMsAdvancesPerTick(t *testing.T) {
	s, _ := newTestClock(t, 12000000)
	if got := s.NowMs(); got != 0 {
		t.Errorf("NowMs before any tick: got %d, want 0", got)
	}
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	if got := s.NowMs(); got != 5 {
		t.Errorf("NowMs after 5 ticks: got %d, want 5", got)
	}
}

func TestElapsedMsWrapsAround(t *testing.T) {
	// Reading order a then b; the count wrapped past 2^32 in between.
	a := uint32(0xFFFFFFF0)
	b := uint32(0x00000010)
	if got := ElapsedMs(a, b); got != 0x20 {
		t.Errorf("ElapsedMs across wrap: got %d, want %d", got, 0x20)
	}
	if got := ElapsedMs(42, 42); got != 0 {
		t.Errorf("ElapsedMs same reading: got %d, want 0", got)
	}
}

func TestNowUsSubMillisecondResolution(t *testing.T) {
	s, cur := newTestClock(t, 12000000)
	s.Tick()
	*cur = cur.Add(250 * time.Microsecond)

	// 3 ticks into ms 1: 250us at 12 ticks/us = 3000 counter ticks.
	got := s.NowUs()
	want := uint32(1*1000 + 250)
	if got != want {
		t.Errorf("NowUs: got %d, want %d", got, want)
	}
}

func TestNowUsPinsBeforeTickDriverFires(t *testing.T) {
	s, cur := newTestClock(t, 12000000)
	s.Tick()
	// Two milliseconds pass but the driver hasn't ticked again: the
	// counter pins at the end of its period instead of reporting more
	// than 999us into the current millisecond.
	*cur = cur.Add(2 * time.Millisecond)
	got := s.NowUs()
	if got < 1999 || got >= 2000 {
		t.Errorf("NowUs with stalled driver: got %d, want in [1999, 2000)", got)
	}
}

func TestSleepMsWaitsForTicks(t *testing.T) {
	s, _ := newTestClock(t, 12000000)
	parks := 0
	s.park = func(time.Duration) {
		parks++
		s.Tick()
	}
	s.SleepMs(5)
	if parks != 5 {
		t.Errorf("parks: got %d, want 5", parks)
	}
}

func TestSleepMsAcrossWraparound(t *testing.T) {
	s, _ := newTestClock(t, 12000000)
	s.ticks = 0xFFFFFFFE
	parks := 0
	s.park = func(time.Duration) {
		parks++
		s.Tick()
	}
	s.SleepMs(4)
	if parks != 4 {
		t.Errorf("parks across wrap: got %d, want 4", parks)
	}
}

func TestSleepUsDelegatesWholeMilliseconds(t *testing.T) {
	s, cur := newTestClock(t, 12000000)
	parks := 0
	s.park = func(time.Duration) {
		parks++
		*cur = cur.Add(time.Millisecond)
		s.Tick()
	}
	s.SleepUs(3000)
	if parks != 3 {
		t.Errorf("parks: got %d, want 3", parks)
	}
}

func TestSleepUsSubMillisecondPollsCounter(t *testing.T) {
	s, cur := newTestClock(t, 1000000) // 1 tick per us
	polls := 0
	s.park = func(time.Duration) {
		polls++
		*cur = cur.Add(100 * time.Microsecond)
	}
	s.SleepUs(300)
	if polls != 3 {
		t.Errorf("polls: got %d, want 3", polls)
	}
}

func TestSleepUsRoundsUpTinyDelays(t *testing.T) {
	// At 1 MHz one counter tick is 1us. A 1us request must wait for a
	// full tick, never compute zero ticks and return immediately.
	s, cur := newTestClock(t, 1000000)
	polls := 0
	s.park = func(time.Duration) {
		polls++
		*cur = cur.Add(time.Microsecond)
	}
	s.SleepUs(1)
	if polls == 0 {
		t.Error("SleepUs(1) returned without waiting for a counter tick")
	}
}

func TestSleepUsZeroReturnsImmediately(t *testing.T) {
	s, _ := newTestClock(t, 1000000)
	s.park = func(time.Duration) {
		t.Fatal("SleepUs(0) parked")
	}
	s.SleepUs(0)
}
