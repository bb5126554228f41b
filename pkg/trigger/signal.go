package trigger

import "github.com/jtomasevic/dowhen/pkg/gate"

type disableSignal struct{}

func (disableSignal) String() string {
	return "DISABLE"
}

// Disable is returned by a condition to remove its trigger for good. The action is not run.
var Disable = gate.Signal(disableSignal{})

func IsDisable(result gate.Result) bool {
	payload, ok := result.Payload()
	if !ok {
		return false
	}
	_, disable := payload.(disableSignal)
	return disable
}
