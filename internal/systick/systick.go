// Package systick provides the monotonic millisecond clock for the timer
// core. It models a hardware down-counter that reloads once per millisecond:
// a 32-bit tick count advanced by the tick driver, plus a live counter value
// for sub-millisecond resolution. Elapsed-time arithmetic is modular, so
// readings stay correct across the ~49-day wraparound.
package systick

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// parkQuantum is how long the blocking sleeps yield the CPU between polls
// of the tick count. The busy-wait equivalent of a WFI instruction.
const parkQuantum = 50 * time.Microsecond

// SysTick is the millisecond clock. The tick driver (Run, or a test calling
// Tick directly) is the only writer of the tick count; everything else goes
// through the snapshot methods.
type SysTick struct {
	freqHz uint32
	reload uint32 // counter counts down from reload to 0 once per millisecond

	// mu is the interrupt-mask analogue: it makes the (ticks, counter)
	// pair read as one snapshot, so a tick cannot land between the reads.
	mu       sync.Mutex
	ticks    uint32    // milliseconds since New
	lastTick time.Time // instant of the most recent Tick

	now  func() time.Time    // injectable in tests
	park func(time.Duration) // how the sleep loops yield
}

// New configures a clock whose down-counter reloads once per millisecond at
// the given frequency. Frequencies below 1 kHz leave no counter ticks per
// millisecond and are rejected rather than dividing to zero.
func New(freqHz uint32) (*SysTick, error) {
	if freqHz < 1000 {
		return nil, fmt.Errorf("systick: frequency %d Hz too low, need at least 1 kHz", freqHz)
	}
	s := &SysTick{
		freqHz: freqHz,
		reload: freqHz/1000 - 1,
		now:    time.Now,
		park:   time.Sleep,
	}
	s.lastTick = s.now()
	return s, nil
}

// Reload returns the down-counter reload value (counter ticks per
// millisecond minus one).
func (s *SysTick) Reload() uint32 {
	return s.reload
}

// Tick advances the millisecond count by one and restarts the down-counter.
// Run calls this once per millisecond; tests call it directly.
func (s *SysTick) Tick() {
	s.mu.Lock()
	s.ticks++
	s.lastTick = s.now()
	s.mu.Unlock()
}

// Run drives Tick once per millisecond until ctx is cancelled.
func (s *SysTick) Run(ctx context.Context) {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick()
		}
	}
}

// NowMs returns milliseconds since New, modulo 2^32.
func (s *SysTick) NowMs() uint32 {
	s.mu.Lock()
	ms := s.ticks
	s.mu.Unlock()
	return ms
}

// counterValue returns the live down-counter register, derived from how far
// the current millisecond has progressed. Caller must hold mu.
func (s *SysTick) counterValue() uint32 {
	elapsed := s.now().Sub(s.lastTick)
	ticks := uint64(elapsed.Nanoseconds()) * uint64(s.freqHz) / 1e9
	if ticks > uint64(s.reload) {
		// The tick driver hasn't fired yet; pin at the end of the period.
		ticks = uint64(s.reload)
	}
	return s.reload - uint32(ticks)
}

// NowUs returns microseconds since New. The tick count and the counter
// register are read as one snapshot under mu; read separately, a tick
// landing between them would yield a torn value off by up to a millisecond.
func (s *SysTick) NowUs() uint32 {
	s.mu.Lock()
	ms := s.ticks
	val := s.counterValue()
	s.mu.Unlock()

	inTick := s.reload - val
	us := uint64(inTick) * 1000 / uint64(s.reload+1)
	return ms*1000 + uint32(us)
}

// SleepMs blocks until at least ms milliseconds have elapsed.
func (s *SysTick) SleepMs(ms uint32) {
	start := s.NowMs()
	for ElapsedMs(start, s.NowMs()) < ms {
		s.park(parkQuantum)
	}
}

// SleepUs blocks until at least us microseconds have elapsed. A duration of
// a millisecond or more delegates its whole milliseconds to SleepMs; the
// sub-millisecond remainder busy-polls the down-counter.
func (s *SysTick) SleepUs(us uint32) {
	if us >= 1000 {
		s.SleepMs(us / 1000)
		us %= 1000
	}
	if us == 0 {
		return
	}

	// Ceiling division: any nonzero request waits at least one counter
	// tick instead of truncating to an immediate return.
	need := (uint64(us)*uint64(s.freqHz) + 999999) / 1000000
	if need > uint64(s.reload) {
		// A single down-counter period is all this loop can observe;
		// bounding here keeps degenerate low frequencies terminating.
		need = uint64(s.reload)
	}

	s.mu.Lock()
	start := s.counterValue()
	s.mu.Unlock()

	for {
		s.mu.Lock()
		cur := s.counterValue()
		s.mu.Unlock()

		// The counter runs down, so elapsed ticks are start-cur; if it
		// reloaded since start, add back the full period.
		var elapsed uint32
		if cur <= start {
			elapsed = start - cur
		} else {
			elapsed = start + (s.reload - cur)
		}
		if uint64(elapsed) >= need {
			return
		}
		s.park(parkQuantum)
	}
}

// ElapsedMs returns now-start in 32-bit modular arithmetic. Correct even
// when the tick count has wrapped between the two readings.
func ElapsedMs(start, now uint32) uint32 {
	return now - start
}
