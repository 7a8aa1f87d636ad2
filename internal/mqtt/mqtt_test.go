package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sweeney/countdown-timer/internal/countdown"
)

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Type:      countdown.EventStarted,
		State:     countdown.StateRunning,
		Remaining: 125,
		Target:    125,
	}

	data, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Timer.Event != "STARTED" {
		t.Errorf("event: got %q, want STARTED", p.Timer.Event)
	}
	if p.Timer.State != "RUNNING" {
		t.Errorf("state: got %q, want RUNNING", p.Timer.State)
	}
	if p.Timer.Face != "02:05" {
		t.Errorf("face: got %q, want 02:05", p.Timer.Face)
	}
	if p.Timer.Timestamp != "2026-03-01T09:30:00Z" {
		t.Errorf("timestamp: got %q", p.Timer.Timestamp)
	}
	if p.Timer.Remaining != 125 || p.Timer.Target != 125 {
		t.Errorf("seconds: got remaining=%d target=%d", p.Timer.Remaining, p.Timer.Target)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}

	var p SystemPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", p.System.Event)
	}
	if p.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", p.System.Reason)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	data, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("payload: got %s, want raw passthrough", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()
	event := Event{Timestamp: time.Now(), Type: countdown.EventPaused, State: countdown.StatePaused, Remaining: 30, Target: 60}

	if err := f.Publish(event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(f.Events) != 1 || f.Events[0].Type != countdown.EventPaused {
		t.Errorf("events: got %+v", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("payloads: got %d, want 1", len(f.Payloads))
	}

	f.PublishError = errors.New("broker gone")
	if err := f.Publish(event); err == nil {
		t.Error("expected configured publish error")
	}
}

func TestDiscardPublisher(t *testing.T) {
	p := Discard()
	if err := p.Publish(Event{}); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{}); err != nil {
		t.Errorf("PublishSystem: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestReplayQueueFIFO(t *testing.T) {
	q := newReplayQueue(4)
	for i := 0; i < 3; i++ {
		q.push(queuedMsg{topic: fmt.Sprintf("t%d", i)})
	}
	if q.len() != 3 {
		t.Fatalf("len: got %d, want 3", q.len())
	}

	out := q.drain()
	if len(out) != 3 {
		t.Fatalf("drained: got %d, want 3", len(out))
	}
	for i, msg := range out {
		if want := fmt.Sprintf("t%d", i); msg.topic != want {
			t.Errorf("message %d: got topic %q, want %q", i, msg.topic, want)
		}
	}
	if q.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", q.len())
	}
}

func TestReplayQueueOverflowDropsOldest(t *testing.T) {
	q := newReplayQueue(3)
	for i := 0; i < 5; i++ {
		q.push(queuedMsg{topic: fmt.Sprintf("t%d", i)})
	}

	out := q.drain()
	if len(out) != 3 {
		t.Fatalf("drained: got %d, want 3", len(out))
	}
	// t0 and t1 were overwritten.
	want := []string{"t2", "t3", "t4"}
	for i, w := range want {
		if out[i].topic != w {
			t.Errorf("message %d: got %q, want %q", i, out[i].topic, w)
		}
	}
}

func TestReplayQueueDrainEmpty(t *testing.T) {
	q := newReplayQueue(2)
	if out := q.drain(); out != nil {
		t.Errorf("drain of empty queue: got %v, want nil", out)
	}
}
