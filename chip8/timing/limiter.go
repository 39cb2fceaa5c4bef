// Package timing paces the emulator loop at the fixed host tick rate.
package timing

import "time"

// TicksPerSecond is the host tick rate the machine is specified against.
const TicksPerSecond = 60

// TickDuration returns the target duration of a single host tick.
func TickDuration() time.Duration {
	return time.Second / TicksPerSecond
}

// Limiter controls tick pacing for emulation.
type Limiter interface {
	// WaitForNextTick blocks until it's time for the next tick.
	// Returns immediately if timing is behind schedule.
	WaitForNextTick()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewFixedLimiter returns a limiter that paces ticks at the given rate.
func NewFixedLimiter(ticksPerSecond int) Limiter {
	if ticksPerSecond <= 0 {
		ticksPerSecond = TicksPerSecond
	}
	return &fixedLimiter{
		interval: time.Second / time.Duration(ticksPerSecond),
	}
}

type fixedLimiter struct {
	interval time.Duration
	next     time.Time
}

func (l *fixedLimiter) WaitForNextTick() {
	now := time.Now()
	if l.next.IsZero() {
		l.next = now.Add(l.interval)
		return
	}

	if wait := l.next.Sub(now); wait > 0 {
		time.Sleep(wait)
	}

	l.next = l.next.Add(l.interval)
	// If we fell far behind (pause, debugger, slow host), resync instead
	// of bursting to catch up.
	if now.Sub(l.next) > 4*l.interval {
		l.next = now.Add(l.interval)
	}
}

func (l *fixedLimiter) Reset() {
	l.next = time.Time{}
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextTick() {}
func (n *noOpLimiter) Reset()           {}
