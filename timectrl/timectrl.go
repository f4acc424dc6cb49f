// Package timectrl drives board time. A plot can run in step with the wall
// clock or accelerated when replaying a scenario.
package timectrl

import (
	"sync"
	"time"
)

// Clock is the read side of board time. Components that only need to know
// what time it is on the board (motion loop, server broadcast, solve
// handlers) depend on this instead of the concrete controller.
type Clock interface {
	// Now returns the current board time.
	Now() time.Time
}

// Mode describes how the TimeController advances board time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still
	// stepping by Tick.
	Accelerated
)

// TimeController advances board time and notifies registered listeners on
// every tick. It implements Clock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []func(time.Time)
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
		stop:        make(chan struct{}),
	}
}

// Now returns the current board time. Implements Clock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps board time to the given instant without ticking listeners;
// used when a document carries its own start time.
func (tc *TimeController) SetTime(now time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = now
}

// AddListener registers a callback invoked on every tick. Listeners must be
// registered before Start.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Stop halts the run loop. Safe to call more than once.
func (tc *TimeController) Stop() {
	tc.stopOnce.Do(func() { close(tc.stop) })
}

// Start runs the controller in a separate goroutine until the given board
// duration has elapsed (zero means until Stop). It returns a channel that
// is closed when the controller finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		boardTime := tc.currentTime
		listeners := append([]func(time.Time){}, tc.listeners...)
		tc.mu.Unlock()

		elapsed := time.Duration(0)

		// Accelerated mode steps the same board tick on a much shorter
		// wall interval; a ticker keeps the loop polite either way.
		interval := tc.Tick
		if tc.Mode == Accelerated {
			interval = time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			select {
			case <-tc.stop:
				return
			case <-ticker.C:
			}

			boardTime = boardTime.Add(tc.Tick)
			elapsed += tc.Tick

			tc.mu.Lock()
			tc.currentTime = boardTime
			tc.mu.Unlock()

			for _, fn := range listeners {
				fn(boardTime)
			}
		}
	}()
	return done
}
