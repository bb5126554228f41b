package trigger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jtomasevic/dowhen/pkg/gate"
)

const (
	printSite  Site = "print(x)"
	returnSite Site = "return x"
)

// recorder is an Action that remembers the events it ran for.
type recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *recorder) action(event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) Xs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Locals["x"].(int))
	}
	return out
}

func xGreaterThan(n int) Condition {
	return func(event *Event) (gate.Result, error) {
		return gate.Bool(event.Locals["x"].(int) > n), nil
	}
}

// loop plays an instrumented `for x := range n { print(x) }`.
func loop(t *testing.T, rt *Runtime, n int) {
	t.Helper()
	for x := 0; x < n; x++ {
		_, err := rt.Emit("loop", printSite, Locals{"x": x})
		require.NoError(t, err)
	}
}

func observedRuntime() (*Runtime, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewRuntime(WithLogger(zap.New(core))), logs
}
