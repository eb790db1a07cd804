// Package timer implements the screening countdown.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// Ticker is the subset of *time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type Config struct {
	Duration  time.Duration
	WarnAt    time.Duration
	Interval  time.Duration
	NewTicker TickerFactory

	// Callbacks run on the countdown goroutine and carry the activation
	// they belong to, so a receiver can discard superseded ones.
	OnTick    func(activation uint64, remaining time.Duration)
	OnWarning func(activation uint64, remaining time.Duration)
	OnEnd     func(activation uint64)
}

// Countdown decrements a remaining duration once per interval while active.
// The warning fires once when remaining crosses WarnAt and the end fires
// once when it reaches zero. Each Start supersedes the previous activation.
type Countdown struct {
	cfg Config

	mu         sync.Mutex
	activation uint64
	active     bool
	warned     bool
	ended      bool
	remaining  time.Duration
	cancel     chan struct{}
}

func New(cfg Config) *Countdown {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewRealTicker
	}
	return &Countdown{cfg: cfg, remaining: cfg.Duration}
}

// Start resets the countdown to the full duration and begins ticking.
// Any earlier tick loop is cancelled first.
func (c *Countdown) Start() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.activation++
	c.active = true
	c.cancel = make(chan struct{})
	go c.run(c.activation, c.cancel)

	return c.activation
}

// Stop cancels ticking and resets the remaining time and warning state.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.active = false
	c.warned = false
	c.ended = false
	c.remaining = c.cfg.Duration
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining < 0 {
		return 0
	}
	return c.remaining
}

// Active reports whether an activation is in progress, including one whose
// end has already fired but has not been stopped yet.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Activation returns the current activation number.
func (c *Countdown) Activation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activation
}

func (c *Countdown) run(activation uint64, cancel <-chan struct{}) {
	if c.cfg.Duration <= 0 {
		c.finish(activation)
		return
	}

	ticker := c.cfg.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C():
			if done := c.tick(activation); done {
				return
			}
		}
	}
}

// tick applies one decrement and reports whether the loop should exit.
func (c *Countdown) tick(activation uint64) bool {
	c.mu.Lock()
	if activation != c.activation || !c.active || c.ended {
		c.mu.Unlock()
		return true
	}

	previous := c.remaining
	c.remaining -= c.cfg.Interval
	if c.remaining < 0 {
		c.remaining = 0
	}
	remaining := c.remaining

	warn := !c.warned && c.cfg.WarnAt > 0 && previous > c.cfg.WarnAt && remaining <= c.cfg.WarnAt
	if warn {
		c.warned = true
	}
	end := remaining == 0
	if end {
		c.ended = true
	}
	c.mu.Unlock()

	if c.cfg.OnTick != nil {
		c.cfg.OnTick(activation, remaining)
	}
	if warn && c.cfg.OnWarning != nil {
		c.cfg.OnWarning(activation, remaining)
	}
	if end && c.cfg.OnEnd != nil {
		c.cfg.OnEnd(activation)
	}
	return end
}

func (c *Countdown) finish(activation uint64) {
	c.mu.Lock()
	if activation != c.activation || !c.active || c.ended {
		c.mu.Unlock()
		return
	}
	c.ended = true
	c.remaining = 0
	c.mu.Unlock()

	if c.cfg.OnEnd != nil {
		c.cfg.OnEnd(activation)
	}
}

// FormatClock renders d as mm:ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
