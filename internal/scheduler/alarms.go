package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Timers creates and clears named alarms. A period of 0 makes a one-shot
// alarm. Creating an alarm replaces any alarm with the same name.
type Timers interface {
	Create(name string, delay, period time.Duration) error
	Clear(name string)
}

// Fire is one elapsed alarm as delivered by AlarmClock.
type Fire struct {
	Name string
	At   time.Time
	gen  uint64
}

var ErrClockClosed = errors.New("alarm clock is closed")

type alarm struct {
	gen     uint64
	period  time.Duration
	timer   *time.Timer
	oneShot bool
}

// AlarmClock implements Timers with time.AfterFunc. Fires are delivered on
// Fired and must be passed through Accept before acting on them, which
// drops fires from alarms that were cleared or replaced in the meantime.
type AlarmClock struct {
	mu     sync.Mutex
	gen    uint64
	alarms map[string]*alarm
	fired  chan Fire
	done   chan struct{}
	closed bool
}

func NewAlarmClock() *AlarmClock {
	return &AlarmClock{
		alarms: make(map[string]*alarm),
		fired:  make(chan Fire, 4),
		done:   make(chan struct{}),
	}
}

// Fired is the channel fires are delivered on.
func (c *AlarmClock) Fired() <-chan Fire {
	return c.fired
}

func (c *AlarmClock) Create(name string, delay, period time.Duration) error {
	if delay < 0 || period < 0 {
		return fmt.Errorf("alarm %s: negative delay or period", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClockClosed
	}
	c.stopLocked(name)

	c.gen++
	a := &alarm{gen: c.gen, period: period, oneShot: period == 0}
	a.timer = time.AfterFunc(delay, func() { c.fire(name, a) })
	c.alarms[name] = a
	return nil
}

func (c *AlarmClock) Clear(name string) {
	c.mu.Lock()
	c.stopLocked(name)
	c.mu.Unlock()
}

func (c *AlarmClock) stopLocked(name string) {
	if a, ok := c.alarms[name]; ok {
		a.timer.Stop()
		delete(c.alarms, name)
	}
}

// Pending reports whether an alarm with this name is scheduled.
func (c *AlarmClock) Pending(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.alarms[name]
	return ok
}

func (c *AlarmClock) fire(name string, a *alarm) {
	c.mu.Lock()
	if c.closed || c.alarms[name] != a {
		c.mu.Unlock()
		return
	}
	if !a.oneShot {
		a.timer.Reset(a.period)
	}
	c.mu.Unlock()

	select {
	case c.fired <- Fire{Name: name, At: time.Now(), gen: a.gen}:
	case <-c.done:
	}
}

// Accept reports whether f still belongs to a live alarm. Accepting a
// one-shot fire removes the alarm.
func (c *AlarmClock) Accept(f Fire) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.alarms[f.Name]
	if !ok || a.gen != f.gen {
		return false
	}
	if a.oneShot {
		delete(c.alarms, f.Name)
	}
	return true
}

// Close stops every alarm. Fires blocked on delivery are dropped.
func (c *AlarmClock) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for name := range c.alarms {
		c.stopLocked(name)
	}
	close(c.done)
}
