// Package taskloop implements a minimal sequential async-loop runner.
//
// A loop repeatedly invokes a caller-supplied task, waiting for each
// invocation to signal completion before deciding whether to continue:
// evaluate condition, pause, invoke task, await Next or Stop, repeat.
// Iterations never overlap, the first iteration runs without a pre-delay,
// and task faults terminate the loop instead of surfacing to the caller.
//
// All iteration state is local to a single Run call, so any number of
// independent loops can run in one process. See Config and Loop.Run for
// the contract details.
package taskloop
