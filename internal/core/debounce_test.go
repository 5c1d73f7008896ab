package core

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 10; i++ {
		d.Notify()
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// The timer must be disarmed after firing.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerNeverFiresEarly(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(100*time.Millisecond, func() { calls.Add(1) })

	d.Notify()
	time.Sleep(50 * time.Millisecond)
	d.Notify() // pushes the deadline out to a fresh quiet period
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load(), "fired before the quiet period elapsed")

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerFlushNow(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(time.Hour, func() { calls.Add(1) })

	d.Notify()
	d.FlushNow()
	assert.Equal(t, int32(1), calls.Load(), "FlushNow is synchronous")

	// The pending timer was cancelled, nothing else fires.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	d.FlushNow()
	assert.Equal(t, int32(2), calls.Load(), "FlushNow without a pending timer still flushes")
}

func TestDebouncerStop(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { calls.Add(1) })

	d.Notify()
	assert.True(t, d.Stop(), "a flush was pending")
	assert.False(t, d.Stop(), "second stop has nothing pending")

	d.Notify() // ignored after Stop
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// The shutdown path still drains explicitly.
	d.FlushNow()
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerCallbackNeverOverlaps(t *testing.T) {
	var inflight atomic.Int32
	var calls atomic.Int32
	d := NewDebouncer(5*time.Millisecond, func() {
		if !inflight.CompareAndSwap(0, 1) {
			t.Error("callback invoked concurrently with itself")
		}
		time.Sleep(30 * time.Millisecond)
		inflight.Store(0)
		calls.Add(1)
	})

	d.Notify()
	time.Sleep(15 * time.Millisecond) // first callback is now running
	d.Notify()                        // schedules a second fire behind it

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}
