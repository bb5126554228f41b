package trigger

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/jtomasevic/dowhen/pkg/gate"
)

var (
	ErrNilAction       = errors.New("nil action")
	ErrEmptySite       = errors.New("empty site")
	ErrTriggerNotFound = errors.New("trigger not found")
)

type TriggerID = uuid.UUID

// Action runs when the trigger's condition is truthy.
type Action func(event *Event) error

// Condition is what the runtime accepts as a trigger condition. Gated conditions fit as is.
type Condition = gate.Condition[*Event]

// Always is used when a trigger is registered without a condition.
func Always(*Event) (gate.Result, error) {
	return gate.True, nil
}

type Trigger struct {
	ID        TriggerID
	Name      string
	Site      Site
	Condition Condition
	Action    Action

	// maxTriggerCount removes the trigger after that many action runs (0 = unlimited).
	maxTriggerCount uint64
	fired           atomic.Uint64
}

type TriggerOption func(*Trigger)

// WithMaxTriggerCount sets the maximum number of times the action shall run.
func WithMaxTriggerCount(maxTriggerCount uint64) TriggerOption {
	return func(t *Trigger) {
		t.maxTriggerCount = maxTriggerCount
	}
}

func WithName(name string) TriggerOption {
	return func(t *Trigger) {
		t.Name = name
	}
}

func newTrigger(site Site, condition Condition, action Action, opts ...TriggerOption) (*Trigger, error) {
	if site == "" {
		return nil, ErrEmptySite
	}
	if action == nil {
		return nil, ErrNilAction
	}
	if condition == nil {
		condition = Always
	}

	t := &Trigger{
		ID:        uuid.New(),
		Site:      site,
		Condition: condition,
		Action:    action,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeFired
	outcomeDisabled
	outcomeExhausted
)

// process evaluates the condition once and runs the action when it holds.
func (t *Trigger) process(event *Event) (outcome, error) {
	result, err := t.Condition(event)
	if err != nil {
		return outcomeSkipped, errors.Wrapf(err, "condition of trigger %s at %q", t.ID, t.Site)
	}
	if IsDisable(result) {
		return outcomeDisabled, nil
	}
	if !result.Truthy() {
		return outcomeSkipped, nil
	}

	if err := t.Action(event); err != nil {
		return outcomeSkipped, errors.Wrapf(err, "action of trigger %s at %q", t.ID, t.Site)
	}

	if count := t.fired.Inc(); t.maxTriggerCount != 0 && count >= t.maxTriggerCount {
		return outcomeExhausted, nil
	}
	return outcomeFired, nil
}

// FireCount returns the number of completed action runs.
func (t *Trigger) FireCount() uint64 {
	return t.fired.Load()
}

func (t *Trigger) label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID.String()
}
