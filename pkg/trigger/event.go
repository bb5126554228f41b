package trigger

import (
	"time"

	"github.com/google/uuid"
)

type EventID = uuid.UUID

// Site names an instrumented position, e.g. "print(x)" or "return x".
type Site = string

// Locals are the values captured at a site. Actions may modify them, the instrumented code reads
// them back from the Event returned by Emit.
type Locals = map[string]any

// Event represents a single time a site was reached.
type Event struct {
	ID        EventID
	Function  string
	Site      Site
	Locals    Locals
	Timestamp time.Time
}

func newEvent(function string, site Site, locals Locals) *Event {
	if locals == nil {
		locals = Locals{}
	}
	return &Event{
		ID:        uuid.New(),
		Function:  function,
		Site:      site,
		Locals:    locals,
		Timestamp: time.Now(),
	}
}

// Local returns the captured value of name.
func (e *Event) Local(name string) (any, bool) {
	v, ok := e.Locals[name]
	return v, ok
}
