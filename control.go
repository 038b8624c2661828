package taskloop

import (
	"sync"
	"time"
)

// outcome is the completion signal for a single iteration.
type outcome int

const (
	outcomeContinue outcome = iota
	outcomeStop
)

// Control is the per-iteration capability set handed to an Executer.
//
// Next and Stop signal the outcome of the current iteration; the first
// call wins and later signals on the same Control are ignored. SetDelay
// adjusts the pause before the next iteration. All three methods are safe
// to call from any goroutine the executer spawns.
type Control struct {
	once   sync.Once
	signal chan outcome

	mu          sync.Mutex
	override    time.Duration
	hasOverride bool
}

func newControl() *Control {
	return &Control{
		signal: make(chan outcome, 1),
	}
}

// Next signals successful completion of the current iteration. The loop
// re-evaluates its condition and, if it continues, pauses for the base
// delay (or the SetDelay override) before the next iteration.
func (c *Control) Next() {
	c.once.Do(func() {
		c.signal <- outcomeContinue
	})
}

// Stop terminates the loop after the current iteration. Deliberate exit
// and error exit share this path; callers that need to tell them apart
// should record the distinction in the shared data before calling Stop.
func (c *Control) Stop() {
	c.once.Do(func() {
		c.signal <- outcomeStop
	})
}

// SetDelay overrides the pause before the next iteration. The override
// covers that single pause and takes precedence over the base-delay reset
// performed by Next; once consumed, the base delay resumes. Negative
// values are treated as zero.
func (c *Control) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	c.override = d
	c.hasOverride = true
	c.mu.Unlock()
}

// delayOverride returns the pending SetDelay value, if any.
func (c *Control) delayOverride() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.override, c.hasOverride
}
