package scheduler

import (
	"testing"
	"time"
)

func receive(t *testing.T, c *AlarmClock) Fire {
	t.Helper()
	select {
	case f := <-c.Fired():
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for alarm")
		return Fire{}
	}
}

func TestAlarmClock_OneShot(t *testing.T) {
	c := NewAlarmClock()
	defer c.Close()

	if err := c.Create("snooze", 10*time.Millisecond, 0); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	f := receive(t, c)
	if f.Name != "snooze" {
		t.Errorf("fired %q, want snooze", f.Name)
	}
	if !c.Accept(f) {
		t.Fatal("Accept() = false for a live alarm")
	}
	if c.Pending("snooze") {
		t.Error("one-shot alarm should be gone after Accept")
	}
	if c.Accept(f) {
		t.Error("Accept() should reject a fire twice")
	}
}

func TestAlarmClock_Periodic(t *testing.T) {
	c := NewAlarmClock()
	defer c.Close()

	c.Create("cycle", 5*time.Millisecond, 5*time.Millisecond)
	for i := 0; i < 3; i++ {
		if f := receive(t, c); !c.Accept(f) {
			t.Fatalf("fire %d rejected", i)
		}
	}
	if !c.Pending("cycle") {
		t.Error("periodic alarm should stay scheduled")
	}
}

func TestAlarmClock_ReplacedFireRejected(t *testing.T) {
	c := NewAlarmClock()
	defer c.Close()

	c.Create("cycle", 5*time.Millisecond, 0)
	f := receive(t, c)
	c.Create("cycle", time.Hour, 0)
	if c.Accept(f) {
		t.Error("fire from a replaced alarm should be rejected")
	}

	c.Clear("cycle")
	if c.Pending("cycle") {
		t.Error("Clear() left the alarm pending")
	}
}

func TestAlarmClock_Closed(t *testing.T) {
	c := NewAlarmClock()
	c.Close()
	if err := c.Create("x", time.Second, 0); err != ErrClockClosed {
		t.Errorf("Create() after Close = %v, want ErrClockClosed", err)
	}
	c.Close()
}
