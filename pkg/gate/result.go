package gate

import "fmt"

type resultKind uint8

const (
	kindFalse resultKind = iota
	kindTrue
	kindSignal
)

// Result is what a condition hands back to the trigger framework: a plain boolean, or an opaque
// signal defined by the framework (e.g. "stop calling me").
// Only True is truthy. Signals are falsy and are never decoded here.
type Result struct {
	kind    resultKind
	payload any
}

var (
	True  = Result{kind: kindTrue}
	False = Result{kind: kindFalse}
)

func Bool(b bool) Result {
	if b {
		return True
	}
	return False
}

// Signal wraps a framework-defined value. The payload must be comparable, results are matched with ==.
func Signal(payload any) Result {
	return Result{kind: kindSignal, payload: payload}
}

func (r Result) Truthy() bool {
	return r.kind == kindTrue
}

func (r Result) IsSignal() bool {
	return r.kind == kindSignal
}

// Payload returns the wrapped signal value. ok is false for boolean results.
func (r Result) Payload() (payload any, ok bool) {
	if r.kind != kindSignal {
		return nil, false
	}
	return r.payload, true
}

func (r Result) String() string {
	switch r.kind {
	case kindTrue:
		return "true"
	case kindSignal:
		return fmt.Sprintf("signal(%v)", r.payload)
	default:
		return "false"
	}
}
