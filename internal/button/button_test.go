package button

import (
	"errors"
	"testing"

	"github.com/sweeney/countdown-timer/internal/gpio"
)

// fakeSleeper records settle delays instead of blocking.
type fakeSleeper struct {
	slept []uint32
}

func (s *fakeSleeper) SleepMs(ms uint32) {
	s.slept = append(s.slept, ms)
}

func newTestButton(t *testing.T) (*Debouncer, *Button, *gpio.FakeConn, *fakeSleeper) {
	t.Helper()
	conn := gpio.NewFakeConn()
	pin := gpio.Pin{Port: 1, Offset: 20}
	if err := conn.Configure(pin, gpio.Input, gpio.PullUp); err != nil {
		t.Fatalf("configure: %v", err)
	}
	sleeper := &fakeSleeper{}
	return New(conn, sleeper, 50), &Button{Pin: pin}, conn, sleeper
}

func mustPoll(t *testing.T, d *Debouncer, b *Button) bool {
	t.Helper()
	pressed, err := d.Poll(b)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	return pressed
}

func TestPressReportedOncePerActuation(t *testing.T) {
	d, b, conn, _ := newTestButton(t)
	// Active-low: High is idle, Low is pressed.
	conn.Script(b.Pin, gpio.High, gpio.Low, gpio.Low, gpio.High, gpio.Low)

	want := []bool{false, true, false, false, true}
	for i, w := range want {
		if got := mustPoll(t, d, b); got != w {
			t.Errorf("poll %d: got %v, want %v", i, got, w)
		}
	}
}

func TestHeldButtonReportsOnlyTransition(t *testing.T) {
	d, b, conn, _ := newTestButton(t)
	conn.Script(b.Pin, gpio.Low) // pressed and held forever

	if !mustPoll(t, d, b) {
		t.Fatal("first poll of held button: want pressed")
	}
	for i := 0; i < 10; i++ {
		if mustPoll(t, d, b) {
			t.Fatalf("poll %d while held: want not pressed", i+1)
		}
	}
}

func TestEdgeBlocksForSettleWindow(t *testing.T) {
	d, b, conn, sleeper := newTestButton(t)
	conn.Script(b.Pin, gpio.High, gpio.Low, gpio.Low)

	mustPoll(t, d, b) // idle: no delay
	if len(sleeper.slept) != 0 {
		t.Fatalf("slept on idle poll: %v", sleeper.slept)
	}

	mustPoll(t, d, b) // edge: settle
	if len(sleeper.slept) != 1 || sleeper.slept[0] != 50 {
		t.Fatalf("settle after edge: got %v, want [50]", sleeper.slept)
	}

	mustPoll(t, d, b) // still held: no further delay
	if len(sleeper.slept) != 1 {
		t.Fatalf("slept while held: %v", sleeper.slept)
	}
}

// One physical press whose bounce falls inside the settle window yields one
// event: the bouncing levels land during the blocking delay and are never
// sampled, so the next poll sees the settled pressed level.
func TestBounceWithinSettleWindowYieldsOnePress(t *testing.T) {
	d, b, conn, _ := newTestButton(t)
	conn.Script(b.Pin, gpio.Low, gpio.Low, gpio.High)

	presses := 0
	for i := 0; i < 2; i++ { // edge poll + post-settle poll
		if mustPoll(t, d, b) {
			presses++
		}
	}
	if presses != 1 {
		t.Errorf("presses: got %d, want 1", presses)
	}
}

func TestPollPropagatesReadError(t *testing.T) {
	d, b, conn, _ := newTestButton(t)
	conn.ReadError = errors.New("test read failure")

	if _, err := d.Poll(b); err == nil {
		t.Error("expected read error")
	}
}
