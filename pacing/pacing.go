package pacing

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

type Op string

const (
	Navigate Op = "navigate"
	Modal    Op = "modal"
	Click    Op = "click"
	Field    Op = "field"
	Save     Op = "save"
)

// Window is an inclusive-exclusive [Min, Max) delay range.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// ParseWindow reads "min-max" in milliseconds, e.g. "400-900".
func ParseWindow(s string) (Window, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Window{}, fmt.Errorf("pacing window %q: want min-max", s)
	}
	minMs, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Window{}, fmt.Errorf("pacing window %q: %w", s, err)
	}
	maxMs, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return Window{}, fmt.Errorf("pacing window %q: %w", s, err)
	}
	if minMs < 0 || maxMs < minMs {
		return Window{}, fmt.Errorf("pacing window %q: invalid bounds", s)
	}
	return Window{Min: time.Duration(minMs) * time.Millisecond, Max: time.Duration(maxMs) * time.Millisecond}, nil
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.Min.Milliseconds(), w.Max.Milliseconds())
}

func DefaultWindows() map[Op]Window {
	ms := time.Millisecond
	return map[Op]Window{
		Navigate: {2000 * ms, 4000 * ms},
		Modal:    {1000 * ms, 2000 * ms},
		Click:    {400 * ms, 900 * ms},
		Field:    {150 * ms, 400 * ms},
		Save:     {1200 * ms, 2500 * ms},
	}
}

// Settler is the slice of the action surface pacing needs.
type Settler interface {
	WaitForNetworkIdle(timeout time.Duration) error
}

type Controller struct {
	windows map[Op]Window
	settle  time.Duration
	surface Settler

	sleep func(time.Duration)
	intn  func(int) int
}

func New(surface Settler, windows map[Op]Window, settle time.Duration) *Controller {
	merged := DefaultWindows()
	for op, w := range windows {
		merged[op] = w
	}
	return &Controller{
		windows: merged,
		settle:  settle,
		surface: surface,
		sleep:   time.Sleep,
		intn:    rand.Intn,
	}
}

// NoDelay returns a controller that never sleeps or waits. Used by tests
// and dry runs.
func NoDelay() *Controller {
	return &Controller{
		windows: map[Op]Window{},
		sleep:   func(time.Duration) {},
		intn:    func(int) int { return 0 },
	}
}

// SetSleep replaces the sleeper, mainly for tests.
func (c *Controller) SetSleep(fn func(time.Duration)) {
	c.sleep = fn
}

// Delay draws a random duration from op's window.
func (c *Controller) Delay(op Op) time.Duration {
	w, ok := c.windows[op]
	if !ok {
		return 0
	}
	span := int(w.Max - w.Min)
	if span <= 0 {
		return w.Min
	}
	return w.Min + time.Duration(c.intn(span))
}

// After paces the next remote mutation following op. Network-bound ops also
// wait for the network to settle; a settle timeout is not an error.
func (c *Controller) After(op Op) {
	if d := c.Delay(op); d > 0 {
		c.sleep(d)
	}

	if c.surface == nil || c.settle <= 0 {
		return
	}
	switch op {
	case Navigate, Modal, Save:
		if err := c.surface.WaitForNetworkIdle(c.settle); err != nil {
			log.Printf("[debug] pacing: network not idle after %s (%v)", op, err)
		}
	}
}
