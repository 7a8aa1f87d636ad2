// Command countdown-timer drives a 4-digit 7-segment countdown display from
// four GPIO push-buttons: select, increment, start/pause and reset. The
// remaining time is shown as MM:SS, state transitions are published to MQTT,
// and an HTTP endpoint serves the current status.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/countdown-timer/internal/button"
	"github.com/sweeney/countdown-timer/internal/countdown"
	"github.com/sweeney/countdown-timer/internal/display"
	"github.com/sweeney/countdown-timer/internal/gpio"
	"github.com/sweeney/countdown-timer/internal/mqtt"
	"github.com/sweeney/countdown-timer/internal/status"
	"github.com/sweeney/countdown-timer/internal/systick"
	"github.com/sweeney/countdown-timer/internal/web"
)

const (
	defaultFreqHz = 12000000

	// 2ms per digit puts the full four-digit refresh at 125Hz, fast
	// enough that persistence of vision hides the multiplexing.
	defaultSliceUs = 2000
)

// Board wiring. Buttons are active-low with pull-ups; segment and
// digit-enable lines drive the display directly.
var (
	pinSelect     = gpio.Pin{Port: 1, Offset: 20}
	pinIncrement  = gpio.Pin{Port: 1, Offset: 21}
	pinStartPause = gpio.Pin{Port: 1, Offset: 22}
	pinReset      = gpio.Pin{Port: 1, Offset: 23}

	segPins = [8]gpio.Pin{
		{Port: 0, Offset: 0}, {Port: 0, Offset: 1}, {Port: 0, Offset: 2}, {Port: 0, Offset: 3},
		{Port: 0, Offset: 4}, {Port: 0, Offset: 5}, {Port: 0, Offset: 6}, {Port: 0, Offset: 7},
	}
	digitPins = [4]gpio.Pin{
		{Port: 2, Offset: 0}, {Port: 2, Offset: 1}, {Port: 2, Offset: 2}, {Port: 2, Offset: 3},
	}
)

func main() {
	freq := flag.Uint("freq", defaultFreqHz, "tick clock frequency in Hz")
	target := flag.Uint("target", countdown.DefaultTarget, "default countdown target in seconds")
	debounce := flag.Uint("debounce", button.DefaultSettleMs, "button debounce window in milliseconds")
	slice := flag.Uint("slice", defaultSliceUs, "display multiplex slice in microseconds")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "heartbeat interval (0 to disable)")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable telemetry)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	readButtons := flag.Bool("read-buttons", false, "print current button levels and exit")

	flag.Parse()

	if err := run(uint32(*freq), uint32(*target), uint32(*debounce), uint32(*slice), *heartbeat, *broker, *httpAddr, *readButtons); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(freqHz, target, debounceMs, sliceUs uint32, heartbeat time.Duration, broker, httpAddr string, readButtons bool) error {
	conn := gpio.NewRealConn()
	defer conn.Close()

	buttons, err := configureButtons(conn)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}

	if readButtons {
		return printButtons(conn)
	}

	clk, err := systick.New(freqHz)
	if err != nil {
		return fmt.Errorf("init clock: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go clk.Run(ctx)

	mux, err := display.NewMux(conn, segPins, digitPins)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}

	var pub mqtt.Publisher = mqtt.Discard()
	var connStatus mqtt.ConnectionStatus
	if broker != "" {
		rp, err := mqtt.NewRealPublisher(broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		pub = rp
		connStatus = rp
	}
	defer pub.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		FreqHz:      freqHz,
		TargetSec:   target,
		DebounceMs:  debounceMs,
		SliceUs:     sliceUs,
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
	})

	// Publish startup event with a full status snapshot.
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := pub.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: freq=%dHz target=%ds debounce=%dms slice=%dus broker=%s heartbeat=%v",
		freqHz, target, debounceMs, sliceUs, broker, heartbeat)

	deb := button.New(conn, clk, debounceMs)
	cd := countdown.New(target)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(deb, buttons, cd, mux, pub, connStatus, tracker, heartbeat, sliceUs, clk.NowMs, clk.SleepUs, time.Now, sigCh)
}

// buttonSet holds the four debounced inputs in poll order.
type buttonSet struct {
	sel   button.Button
	inc   button.Button
	start button.Button
	reset button.Button
}

func configureButtons(conn gpio.Conn) (*buttonSet, error) {
	for _, p := range []gpio.Pin{pinSelect, pinIncrement, pinStartPause, pinReset} {
		if err := conn.Configure(p, gpio.Input, gpio.PullUp); err != nil {
			return nil, fmt.Errorf("configure %s: %w", p, err)
		}
	}
	return &buttonSet{
		sel:   button.Button{Pin: pinSelect},
		inc:   button.Button{Pin: pinIncrement},
		start: button.Button{Pin: pinStartPause},
		reset: button.Button{Pin: pinReset},
	}, nil
}

// runLoop is the cooperative main cycle: poll the buttons, advance the
// state machine, render one display digit, sleep one multiplex slice.
// Collaborators come in as parameters so tests can drive the loop with
// fakes and a scripted clock.
func runLoop(deb *button.Debouncer, buttons *buttonSet, cd *countdown.Countdown, mux *display.Mux, pub mqtt.Publisher, connStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, sliceUs uint32, nowMs func() uint32, sleepUs func(uint32), now func() time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if connStatus != nil {
				tracker.SetMQTTConnected(connStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "SHUTDOWN",
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := pub.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			}
			return nil
		default:
		}

		// Buttons before the time check: a press and a one-second
		// boundary in the same iteration apply the press first.
		in := pollEdges(deb, buttons)
		in.NowMs = nowMs()
		events := cd.Process(in)

		for _, e := range events {
			log.Printf("event: %s (state=%s remaining=%d target=%d)", e.Type, e.State, e.Remaining, e.Target)
			if err := pub.Publish(mqtt.Event{
				Timestamp: now(),
				Type:      e.Type,
				State:     e.State,
				Remaining: e.Remaining,
				Target:    e.Target,
			}); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
		}

		if err := mux.Render(display.FrameFor(cd.Remaining())); err != nil {
			log.Printf("display write error: %v", err)
		}

		tracker.Update(cd.State(), cd.Remaining(), cd.Target(), cd.Counts())
		if connStatus != nil {
			tracker.SetMQTTConnected(connStatus.IsConnected())
		}

		if heartbeat > 0 && now().Sub(lastHeartbeat) >= heartbeat {
			lastHeartbeat = now()
			snap := tracker.Snapshot()
			log.Printf("heartbeat: uptime=%v state=%s starts=%d completions=%d resets=%d",
				snap.Uptime(), snap.State, snap.Counts.Starts, snap.Counts.Completions, snap.Counts.Resets)
			hb := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := pub.PublishSystem(hb); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}

		sleepUs(sliceUs)
	}
}

func pollEdges(deb *button.Debouncer, buttons *buttonSet) countdown.Input {
	var in countdown.Input
	var err error
	if in.Select, err = deb.Poll(&buttons.sel); err != nil {
		log.Printf("gpio read error: %v", err)
	}
	if in.Increment, err = deb.Poll(&buttons.inc); err != nil {
		log.Printf("gpio read error: %v", err)
	}
	if in.StartPause, err = deb.Poll(&buttons.start); err != nil {
		log.Printf("gpio read error: %v", err)
	}
	if in.Reset, err = deb.Poll(&buttons.reset); err != nil {
		log.Printf("gpio read error: %v", err)
	}
	return in
}

// printButtons reads the four inputs once and reports raw and logical
// levels. Bring-up aid for checking the wiring.
func printButtons(conn gpio.Conn) error {
	inputs := []struct {
		name string
		pin  gpio.Pin
	}{
		{"SELECT", pinSelect},
		{"INCREMENT", pinIncrement},
		{"START/PAUSE", pinStartPause},
		{"RESET", pinReset},
	}
	for _, in := range inputs {
		raw, err := conn.Read(in.pin)
		if err != nil {
			return fmt.Errorf("read %s: %w", in.pin, err)
		}
		state := "released"
		if raw == gpio.Low {
			state = "pressed"
		}
		fmt.Printf("%-12s %-6s raw=%d %s\n", in.name, in.pin, raw, state)
	}
	return nil
}
