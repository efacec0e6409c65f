package realtime

import (
	"sync/atomic"
	"testing"
	"time"

	"GameNightApi/internal/assert"
)

func TestDebouncerLastWriteWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var got atomic.Int64
	d.Call("5_score", func() { got.Store(1) })
	d.Call("5_score", func() { got.Store(2) })
	d.Call("5_score", func() { got.Store(3) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, got.Load(), 3)
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int64
	d.Call("5_score", func() { fired.Add(1) })
	d.Call("6_score", func() { fired.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, fired.Load(), 2)
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int64
	d.Call("5_score", func() { fired.Add(1) })
	d.Cancel("5_score")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, fired.Load(), 0)
	assert.Equal(t, d.Pending("5_score"), false)
}

func TestDebouncerCancelAll(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int64
	d.Call("5_score", func() { fired.Add(1) })
	d.Call("6_score", func() { fired.Add(1) })
	d.CancelAll()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, fired.Load(), 0)
}

func TestDebouncerSequentialWindows(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var fired atomic.Int64
	d.Call("5_score", func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)

	// A call after the window fired is a fresh window, not superseded.
	d.Call("5_score", func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, fired.Load(), 2)
}
