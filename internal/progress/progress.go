package progress

import (
	"sync"
	"time"
)

// Stage names the transfer phase a counter belongs to.
type Stage string

const (
	StageWhatsNew Stage = "whats-new"
	StageIndex    Stage = "index"
	StageROMs     Stage = "roms"
)

// Event is emitted every time a counter changes.
type Event struct {
	Stage     Stage
	Total     int
	Remaining int
	Failed    int
	Item      string
	Timestamp time.Time
}

// Done reports how many items have been dealt with so far.
func (e Event) Done() int {
	return e.Total - e.Remaining
}

// Counter tracks the number of transfers still outstanding in one phase.
// A fresh counter is created for every phase.
type Counter struct {
	mu        sync.RWMutex
	stage     Stage
	total     int
	remaining int
	failed    int
	listeners []func(Event)
}

func NewCounter(stage Stage, total int) *Counter {
	if total < 0 {
		total = 0
	}
	return &Counter{
		stage:     stage,
		total:     total,
		remaining: total,
		listeners: make([]func(Event), 0),
	}
}

// AddListener registers a callback invoked after every change.
func (c *Counter) AddListener(listener func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Complete records a finished transfer of item and returns the remaining count.
func (c *Counter) Complete(item string) int {
	c.mu.Lock()
	if c.remaining > 0 {
		c.remaining--
	}
	event := c.eventLocked(item)
	c.mu.Unlock()

	c.notifyListeners(event)
	return event.Remaining
}

// Fail records an item that could not be transferred. The remaining count is
// left untouched.
func (c *Counter) Fail(item string) {
	c.mu.Lock()
	c.failed++
	event := c.eventLocked(item)
	c.mu.Unlock()

	c.notifyListeners(event)
}

// Skip records an item that was already up to date.
func (c *Counter) Skip(item string) {
	c.mu.RLock()
	event := c.eventLocked(item)
	c.mu.RUnlock()

	c.notifyListeners(event)
}

func (c *Counter) eventLocked(item string) Event {
	return Event{
		Stage:     c.stage,
		Total:     c.total,
		Remaining: c.remaining,
		Failed:    c.failed,
		Item:      item,
		Timestamp: time.Now(),
	}
}

func (c *Counter) notifyListeners(event Event) {
	c.mu.RLock()
	listeners := make([]func(Event), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func (c *Counter) Remaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remaining
}

func (c *Counter) Stage() Stage {
	return c.stage
}

func (c *Counter) Total() int {
	return c.total
}

// State returns a snapshot of the counter.
func (c *Counter) State() Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eventLocked("")
}
