package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	Face          string     `json:"face"`
	RemainingSec  uint32     `json:"remaining_seconds"`
	TargetSec     uint32     `json:"target_seconds"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Starts      int `json:"starts"`
	Pauses      int `json:"pauses"`
	Resumes     int `json:"resumes"`
	Completions int `json:"completions"`
	Resets      int `json:"resets"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	FreqHz      uint32 `json:"freq_hz"`
	TargetSec   uint32 `json:"target_seconds"`
	DebounceMs  uint32 `json:"debounce_ms"`
	SliceUs     uint32 `json:"slice_us"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		State:         string(snap.State),
		Face:          snap.Face(),
		RemainingSec:  snap.Remaining,
		TargetSec:     snap.Target,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Starts:      snap.Counts.Starts,
			Pauses:      snap.Counts.Pauses,
			Resumes:     snap.Counts.Resumes,
			Completions: snap.Counts.Completions,
			Resets:      snap.Counts.Resets,
		},
		Config: ConfigJSON{
			FreqHz:      snap.Config.FreqHz,
			TargetSec:   snap.Config.TargetSec,
			DebounceMs:  snap.Config.DebounceMs,
			SliceUs:     snap.Config.SliceUs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status payload for an MQTT system
// event (STARTUP, SHUTDOWN, HEARTBEAT), with the event name and optional
// reason folded in.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
