package trigger

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Runtime keeps the triggers registered per site and evaluates them whenever a site is reached.
//
// Conditions run synchronously inside Emit, one trigger after the other in registration order.
// The registry is safe for concurrent use; whether a condition is, is up to the condition.
type Runtime struct {
	mu     sync.RWMutex
	sites  map[Site]*linkedhashmap.Map
	index  map[TriggerID]*Trigger
	logger *zap.Logger
}

type Option func(*Runtime)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		sites:  make(map[Site]*linkedhashmap.Map),
		index:  make(map[TriggerID]*Trigger),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trigger for site. A nil condition always holds.
func (r *Runtime) Register(site Site, condition Condition, action Action, opts ...TriggerOption) (*Handler, error) {
	t, err := newTrigger(site, condition, action, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	triggers, ok := r.sites[site]
	if !ok {
		triggers = linkedhashmap.New()
		r.sites[site] = triggers
	}
	triggers.Put(t.ID, t)
	r.index[t.ID] = t
	r.mu.Unlock()

	r.logger.Debug("trigger registered", zap.String("site", site), zap.String("trigger", t.label()))

	return &Handler{runtime: r, trigger: t}, nil
}

// Remove unregisters the trigger. Future events at its site no longer evaluate its condition.
func (r *Runtime) Remove(id TriggerID) error {
	t, ok := r.remove(id)
	if !ok {
		return errors.Wrapf(ErrTriggerNotFound, "remove %s", id)
	}
	r.logger.Debug("trigger removed", zap.String("site", t.Site), zap.String("trigger", t.label()))
	return nil
}

func (r *Runtime) remove(id TriggerID) (*Trigger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.index[id]
	if !ok {
		return nil, false
	}
	delete(r.index, id)

	if triggers, ok := r.sites[t.Site]; ok {
		triggers.Remove(id)
		if triggers.Empty() {
			delete(r.sites, t.Site)
		}
	}
	return t, true
}

func (r *Runtime) registered(id TriggerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[id]
	return ok
}

// Triggers returns the number of triggers registered for site.
func (r *Runtime) Triggers(site Site) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if triggers, ok := r.sites[site]; ok {
		return triggers.Size()
	}
	return 0
}

func (r *Runtime) snapshot(site Site) []*Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	triggers, ok := r.sites[site]
	if !ok {
		return nil
	}
	values := triggers.Values()
	out := make([]*Trigger, 0, len(values))
	for _, v := range values {
		out = append(out, v.(*Trigger))
	}
	return out
}

// Emit reports that function reached site with the given locals and evaluates every trigger
// registered there. The returned event carries the locals as left by the actions.
//
// The first failing condition or action stops the evaluation and its error is returned, wrapped
// with the trigger and site. Triggers removed while Emit runs are skipped.
func (r *Runtime) Emit(function string, site Site, locals Locals) (*Event, error) {
	event := newEvent(function, site, locals)

	for _, t := range r.snapshot(site) {
		if !r.registered(t.ID) {
			continue
		}

		res, err := t.process(event)
		if err != nil {
			r.logger.Warn("trigger failed",
				zap.String("site", site),
				zap.String("trigger", t.label()),
				zap.Error(err))
			return event, err
		}

		switch res {
		case outcomeDisabled:
			if _, ok := r.remove(t.ID); ok {
				r.logger.Debug("trigger disabled", zap.String("site", site), zap.String("trigger", t.label()))
			}
		case outcomeExhausted:
			if _, ok := r.remove(t.ID); ok {
				r.logger.Debug("trigger reached max trigger count",
					zap.String("site", site),
					zap.String("trigger", t.label()),
					zap.Uint64("count", t.FireCount()))
			}
		}
	}

	return event, nil
}
