// Package countdown contains the timer state machine. This package has NO
// I/O and no real time: callers feed it debounced button edges plus the
// current millisecond tick, and it reports transitions as events.
package countdown

// State is the controller state.
type State string

const (
	StateSet     State = "SET" // idle, target editable
	StateRunning State = "RUNNING"
	StatePaused  State = "PAUSED"
	StateDone    State = "DONE" // terminal until acknowledged
)

// Target and remaining-time bounds, in seconds.
const (
	DefaultTarget = 60
	MinTarget     = 10
	MaxSeconds    = 5999 // 99:59
	TargetStep    = 10
)

// EventType identifies a state machine transition.
type EventType string

const (
	EventArmed     EventType = "ARMED"      // remaining reloaded from target
	EventTargetSet EventType = "TARGET_SET" // target incremented (or wrapped)
	EventStarted   EventType = "STARTED"
	EventPaused    EventType = "PAUSED"
	EventResumed   EventType = "RESUMED"
	EventCompleted EventType = "COMPLETED"
	EventReset     EventType = "RESET"
)

// Event records a transition, with the machine's state after it applied.
type Event struct {
	Type      EventType
	State     State
	Remaining uint32
	Target    uint32
	NowMs     uint32
}

// Input is one main-loop sample: the debounced button edges observed this
// iteration plus the current millisecond tick. Buttons apply in field
// order, always before the per-second check.
type Input struct {
	Select     bool // countdown-select: reload remaining while in SET
	Increment  bool // bump target while in SET
	StartPause bool
	Reset      bool
	NowMs      uint32
}

// EventCounts tracks transitions since boot, for heartbeats and the status
// page.
type EventCounts struct {
	Starts      int
	Pauses      int
	Resumes     int
	Completions int
	Resets      int
}
