package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickDuration(t *testing.T) {
	assert.Equal(t, time.Second/60, TickDuration())
}

func TestFixedLimiterFirstTickReturnsImmediately(t *testing.T) {
	l := NewFixedLimiter(60)

	start := time.Now()
	l.WaitForNextTick()
	assert.Less(t, time.Since(start), 5*time.Millisecond)
}

func TestFixedLimiterPacesTicks(t *testing.T) {
	l := NewFixedLimiter(100) // 10ms interval keeps the test fast

	l.WaitForNextTick() // arm
	start := time.Now()
	l.WaitForNextTick()
	l.WaitForNextTick()

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestFixedLimiterResetRearms(t *testing.T) {
	l := NewFixedLimiter(10) // 100ms interval

	l.WaitForNextTick()
	l.Reset()

	start := time.Now()
	l.WaitForNextTick()
	assert.Less(t, time.Since(start), 5*time.Millisecond, "first tick after reset does not sleep")
}

func TestNoOpLimiter(t *testing.T) {
	l := NewNoOpLimiter()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextTick()
	}
	l.Reset()
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
