package countdown

import "github.com/sweeney/countdown-timer/internal/systick"

// Countdown is the four-state timer controller. It is the sole owner of
// the remaining and target values; the display only ever reads them.
type Countdown struct {
	state      State
	remaining  uint32
	target     uint32
	lastTickMs uint32
	counts     EventCounts
}

// New creates a Countdown in SET with the given target, clamped to
// [MinTarget, MaxSeconds]. Remaining starts equal to the target.
func New(target uint32) *Countdown {
	if target < MinTarget {
		target = MinTarget
	}
	if target > MaxSeconds {
		target = MaxSeconds
	}
	return &Countdown{state: StateSet, target: target, remaining: target}
}

// Process applies one main-loop sample: button edges first, in Input field
// order, then the per-second decrement. A press and a one-second boundary
// landing in the same sample therefore always apply the press first.
// Returns the events emitted, oldest first.
func (c *Countdown) Process(in Input) []Event {
	var events []Event
	emit := func(e *Event) {
		if e != nil {
			events = append(events, *e)
		}
	}

	if in.Select {
		emit(c.selectCountdown(in.NowMs))
	}
	if in.Increment {
		emit(c.increment(in.NowMs))
	}
	if in.StartPause {
		emit(c.startPause(in.NowMs))
	}
	if in.Reset {
		emit(c.reset(in.NowMs))
	}
	emit(c.advance(in.NowMs))

	for _, e := range events {
		c.count(e.Type)
	}
	return events
}

// selectCountdown reloads remaining from the target. Only meaningful in
// SET; elsewhere it is a no-op.
func (c *Countdown) selectCountdown(nowMs uint32) *Event {
	if c.state != StateSet {
		return nil
	}
	c.remaining = c.target
	return c.event(EventArmed, nowMs)
}

// increment bumps the target by TargetStep, wrapping past MaxSeconds back
// to MinTarget, and refreshes remaining to match. Only in SET.
func (c *Countdown) increment(nowMs uint32) *Event {
	if c.state != StateSet {
		return nil
	}
	c.target += TargetStep
	if c.target > MaxSeconds {
		c.target = MinTarget
	}
	c.remaining = c.target
	return c.event(EventTargetSet, nowMs)
}

func (c *Countdown) startPause(nowMs uint32) *Event {
	switch c.state {
	case StateSet:
		c.state = StateRunning
		c.remaining = c.target
		c.lastTickMs = nowMs
		return c.event(EventStarted, nowMs)
	case StateRunning:
		c.state = StatePaused
		return c.event(EventPaused, nowMs)
	case StatePaused:
		// Re-arm the one-second reference without touching remaining.
		c.state = StateRunning
		c.lastTickMs = nowMs
		return c.event(EventResumed, nowMs)
	case StateDone:
		c.state = StateSet
		c.remaining = c.target
		return c.event(EventArmed, nowMs)
	}
	return nil
}

// reset returns to SET from any state, unconditionally.
func (c *Countdown) reset(nowMs uint32) *Event {
	c.state = StateSet
	c.remaining = c.target
	return c.event(EventReset, nowMs)
}

// advance applies the per-second decrement while RUNNING. The reference
// tick moves forward by exactly 1000 per elapsed window rather than
// resetting to now, so partial progress into the next second is kept and
// seconds never drift long. A stalled loop catches up one window at a
// time; reaching zero completes the countdown.
func (c *Countdown) advance(nowMs uint32) *Event {
	for c.state == StateRunning && systick.ElapsedMs(c.lastTickMs, nowMs) >= 1000 {
		c.lastTickMs += 1000
		if c.remaining > 0 {
			c.remaining--
		}
		if c.remaining == 0 {
			c.state = StateDone
			return c.event(EventCompleted, nowMs)
		}
	}
	return nil
}

func (c *Countdown) event(typ EventType, nowMs uint32) *Event {
	return &Event{
		Type:      typ,
		State:     c.state,
		Remaining: c.remaining,
		Target:    c.target,
		NowMs:     nowMs,
	}
}

func (c *Countdown) count(typ EventType) {
	switch typ {
	case EventStarted:
		c.counts.Starts++
	case EventPaused:
		c.counts.Pauses++
	case EventResumed:
		c.counts.Resumes++
	case EventCompleted:
		c.counts.Completions++
	case EventReset:
		c.counts.Resets++
	}
}

// State returns the current controller state.
func (c *Countdown) State() State {
	return c.state
}

// Remaining returns the seconds left on the countdown.
func (c *Countdown) Remaining() uint32 {
	return c.remaining
}

// Target returns the configured target in seconds.
func (c *Countdown) Target() uint32 {
	return c.target
}

// Counts returns the transition counts since boot.
func (c *Countdown) Counts() EventCounts {
	return c.counts
}
