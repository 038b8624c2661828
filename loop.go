package taskloop

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Condition gates whether another iteration should begin. It receives the
// shared data value and returns true to continue.
type Condition func(data any) bool

// Executer is the caller-supplied unit of work executed once per
// iteration. It receives the shared data value and the Control for the
// current iteration. Every invocation must eventually call ctrl.Next or
// ctrl.Stop, directly or from a goroutine it spawns; until one of them is
// called the loop stays suspended.
type Executer func(data any, ctrl *Control)

// Config describes a loop. The zero value is valid: no condition, no
// executer, zero delay.
type Config struct {
	// Delay is the base pause between iterations. It is not applied
	// before the first iteration. Negative values are treated as zero.
	Delay time.Duration

	// Data is an opaque value passed by reference to Condition and
	// Executer on every iteration. Caller-supplied code may mutate it
	// freely between iterations; it is the intended channel for carrying
	// state across them.
	Data any

	// Condition, when set, is evaluated before each iteration (including
	// the first). Returning false terminates the loop. Nil means "always
	// continue".
	Condition Condition

	// Executer, when set, is invoked once per iteration. Nil makes each
	// iteration a no-op that still honors Delay and Condition.
	Executer Executer

	// Log receives debug-level iteration events. Nil discards them.
	Log logrus.FieldLogger
}

// Loop drives a sequential iteration loop described by a Config. All
// iteration state lives inside Run, so independent loops can run in the
// same process without interference and a single Loop value may be run
// more than once.
type Loop struct {
	cfg Config
	log logrus.FieldLogger
}

// New creates a Loop from cfg. The Data value is held by reference for
// the loop's lifetime, never copied.
func New(cfg Config) *Loop {
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	log := cfg.Log
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Loop{
		cfg: cfg,
		log: log.WithField("component", "taskloop"),
	}
}

// Run executes the loop until it terminates and then returns. Termination
// happens when the condition reports false, the executer calls Stop, the
// executer panics (the fault is swallowed, never propagated), or ctx is
// cancelled. Run produces no value and surfaces no error; it only ever
// completes.
//
// Exactly one executer invocation is in flight at any time: iteration N+1
// does not start before iteration N's Next or Stop has been observed. The
// first iteration runs with no pre-delay regardless of Config.Delay. An
// executer that never signals suspends the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	// The first iteration runs immediately; Config.Delay applies from
	// the second iteration on.
	delay := time.Duration(0)
	iteration := 0

	l.log.Debug("loop started")

	for {
		if ctx.Err() != nil {
			l.log.WithField("iterations", iteration).Debug("loop cancelled")
			return
		}

		if l.cfg.Condition != nil && !l.cfg.Condition(l.cfg.Data) {
			l.log.WithField("iterations", iteration).Debug("condition false, loop finished")
			return
		}

		if !pause(ctx, delay) {
			l.log.WithField("iterations", iteration).Debug("loop cancelled")
			return
		}

		iteration++

		if l.cfg.Executer == nil {
			// No-op iteration, still paced by the base delay.
			delay = l.cfg.Delay
			continue
		}

		ctrl := newControl()
		l.invoke(ctrl)

		select {
		case <-ctx.Done():
			l.log.WithField("iterations", iteration).Debug("loop cancelled")
			return

		case oc := <-ctrl.signal:
			if oc == outcomeStop {
				l.log.WithField("iterations", iteration).Debug("loop stopped")
				return
			}
		}

		// Next resets to the base delay unless SetDelay was called this
		// iteration, in which case the override wins for the next pause.
		if d, ok := ctrl.delayOverride(); ok {
			delay = d
		} else {
			delay = l.cfg.Delay
		}
	}
}

// invoke runs the executer for one iteration, translating a panic into
// Stop so that no fault escapes the loop.
func (l *Loop) invoke(ctrl *Control) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("panic", r).Debug("executer panicked, stopping loop")
			ctrl.Stop()
		}
	}()

	l.cfg.Executer(l.cfg.Data, ctrl)
}

// Run creates a Loop from cfg and runs it to completion.
func Run(ctx context.Context, cfg Config) {
	New(cfg).Run(ctx)
}

// pause sleeps for d, honoring ctx. It reports false if ctx was cancelled
// before the pause elapsed.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
