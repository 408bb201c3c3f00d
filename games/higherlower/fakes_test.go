/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package higherlower

import (
	"sync"
	"time"
)

// fakeClock only moves when Advance is called. Due callbacks run on the
// caller's goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)

	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type call struct {
	op     string
	target string
	conn   string
	ev     Event
}

// recorder is a Broadcaster that remembers every call in order.
type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) Subscribe(connID, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: "subscribe", target: code, conn: connID})
}

func (r *recorder) Publish(code string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: "publish", target: code, ev: ev})
}

func (r *recorder) Send(connID string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: "send", conn: connID, ev: ev})
}

func (r *recorder) Disband(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: "disband", target: code})
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// published lists the events broadcast to code, in order.
func (r *recorder) published(code string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, c := range r.calls {
		if c.op == "publish" && c.target == code {
			out = append(out, c.ev)
		}
	}
	return out
}

func (r *recorder) publishedNames(code string) []EventName {
	var names []EventName
	for _, ev := range r.published(code) {
		names = append(names, ev.Name)
	}
	return names
}

// sent lists the events delivered directly to connID.
func (r *recorder) sent(connID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, c := range r.calls {
		if c.op == "send" && c.conn == connID {
			out = append(out, c.ev)
		}
	}
	return out
}

func (r *recorder) subscribed(connID, code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.calls {
		if c.op == "subscribe" && c.conn == connID && c.target == code {
			return true
		}
	}
	return false
}

func (r *recorder) disbanded(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.calls {
		if c.op == "disband" && c.target == code {
			return true
		}
	}
	return false
}
