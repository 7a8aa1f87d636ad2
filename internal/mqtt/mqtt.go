// Package mqtt publishes timer telemetry with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/countdown-timer/internal/countdown"
	"github.com/sweeney/countdown-timer/internal/status"
)

// Topic is the MQTT topic for timer transition events.
const Topic = "home/countdown-timer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/countdown-timer/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a timer transition event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is a timer transition stamped with the wall-clock time it was
// observed. The millisecond tick stays internal to the control loop.
type Event struct {
	Timestamp time.Time
	Type      countdown.EventType
	State     countdown.State
	Remaining uint32
	Target    uint32
}

// SystemEvent represents a system lifecycle event (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message structure for timer events.
type Payload struct {
	Timer TimerPayload `json:"timer"`
}

// TimerPayload contains the timer event details.
type TimerPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Face      string `json:"face"`
	Remaining uint32 `json:"remaining_seconds"`
	Target    uint32 `json:"target_seconds"`
}

// FormatPayload creates the JSON payload for a timer event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Timer: TimerPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(event.State),
			Face:      status.Face(event.Remaining),
			Remaining: event.Remaining,
			Target:    event.Target,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message structure for simple system events that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
