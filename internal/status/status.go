// Package status provides a thread-safe status tracker for the
// countdown-timer daemon. The main loop writes it; HTTP handlers read it.
package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/countdown-timer/internal/countdown"
)

// Config contains daemon configuration for display.
type Config struct {
	FreqHz      uint32
	TargetSec   uint32
	DebounceMs  uint32
	SliceUs     uint32
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         countdown.State
	Remaining     uint32
	Target        uint32
	Counts        countdown.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Face returns the remaining time as the display shows it, MM:SS.
func (s Snapshot) Face() string {
	return Face(s.Remaining)
}

// Face formats whole seconds as MM:SS.
func Face(seconds uint32) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     countdown.StateSet,
			Remaining: cfg.TargetSec,
			Target:    cfg.TargetSec,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the timer state. Called from the main loop every cycle.
func (t *Tracker) Update(state countdown.State, remaining, target uint32, counts countdown.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Remaining = remaining
	t.snap.Target = target
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
