package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met within timeout")
}

func TestAddTimer_OneShot(t *testing.T) {
	m := NewTimerManager()

	var fired int32
	m.AddTimer(50*time.Millisecond, 0, func() { atomic.AddInt32(&fired, 1) })

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&fired) == 1 })

	// One-shot tasks do not re-arm.
	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("One-shot task fired %d times", got)
	}
}

func TestAddTimer_Interval(t *testing.T) {
	m := NewTimerManager()

	var fired int32
	id := m.AddTimer(50*time.Millisecond, 100*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&fired) >= 2 })
	m.RemoveTimer(id)
}

func TestRemoveTimer(t *testing.T) {
	m := NewTimerManager()

	var fired int32
	id := m.AddTimer(300*time.Millisecond, 0, func() { atomic.AddInt32(&fired, 1) })
	m.RemoveTimer(id)

	time.Sleep(600 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("Removed task fired %d times", got)
	}
}

func TestAddTimer_BurstOfDueTasks(t *testing.T) {
	m := NewTimerManager()

	// Every task comes due in the same tick; the scheduler must drain
	// them all without stalling.
	const n = 1500
	var fired int32
	for i := 0; i < n; i++ {
		m.AddTimer(0, 0, func() { atomic.AddInt32(&fired, 1) })
	}

	waitFor(t, 3*time.Second, func() bool { return atomic.LoadInt32(&fired) == n })
}
